package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once

	blockBoundary = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|tr|table|blockquote|pre)>`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML, returns plain text
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes every tag and returns the unescaped text content on a single run.
// Script and style bodies are dropped entirely.
func StripHTML(s string) string {
	initPolicies()
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// HTMLToText converts an HTML body into a readable plain-text alternative.
// Block-level boundaries become line breaks, runs of blank lines collapse to one.
func HTMLToText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	initPolicies()

	s = blockBoundary.ReplaceAllStringFunc(s, func(m string) string {
		return m + "\n"
	})
	text := html.UnescapeString(strictPolicy.Sanitize(s))

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
