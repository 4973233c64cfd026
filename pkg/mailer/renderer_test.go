package mailer

import (
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

// countingFS counts ReadFile calls to observe caching.
type countingFS struct {
	fstest.MapFS
	reads *atomic.Int32
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.reads.Add(1)
	return c.MapFS.ReadFile(name)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/default.html": &fstest.MapFile{
			Data: []byte(`<html><title>{{.Metadata.Subject}}</title><body>{{.Content}}</body></html>`),
		},
		"welcome.md": &fstest.MapFile{
			Data: []byte("---\nSubject: Welcome {{.Name}}\n---\nHello **{{.Name}}**!\n\nWelcome to our service.\n"),
		},
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testFS())

	res, err := r.Render("default.html", "welcome.md", map[string]string{"Name": "Alice"})
	require.NoError(t, err)
	require.Contains(t, res.Text, "Hello **Alice**!")
	require.NotContains(t, res.Text, "<strong>")
	require.Contains(t, res.HTML, "<strong>Alice</strong>")
	require.Contains(t, res.HTML, "<body>")
	require.Equal(t, "Welcome {{.Name}}", res.Subject())
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testFS())

	t.Run("with layout and frontmatter", func(t *testing.T) {
		t.Parallel()

		res, err := r.RenderMarkdown("default.html", "---\nSubject: Inline\n---\n| a | b |\n|---|---|\n| 1 | 2 |\n")
		require.NoError(t, err)
		require.Equal(t, "Inline", res.Subject())
		require.Contains(t, res.HTML, "<title>Inline</title>")
		require.Contains(t, res.HTML, "<table>")
	})

	t.Run("without layout", func(t *testing.T) {
		t.Parallel()

		res, err := r.RenderMarkdown("", "~~gone~~ {{.NotATemplate}}")
		require.NoError(t, err)
		require.Contains(t, res.HTML, "<del>gone</del>")
		require.Contains(t, res.HTML, "{{.NotATemplate}}")
		require.NotContains(t, res.HTML, "<html>")
	})

	t.Run("bad frontmatter", func(t *testing.T) {
		t.Parallel()

		_, err := r.RenderMarkdown("", "---\nSubject: x\n")
		require.ErrorIs(t, err, ErrInvalidFrontmatter)
	})
}

func TestRenderer_Errors(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testFS())

	_, err := r.Render("default.html", "missing.md", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = r.Render("missing.html", "welcome.md", map[string]string{"Name": "Bob"})
	require.ErrorIs(t, err, ErrLayoutNotFound)

	broken := NewRenderer(fstest.MapFS{"bad.md": &fstest.MapFile{Data: []byte("{{.Name")}})
	_, err = broken.Render("", "bad.md", nil)
	require.ErrorIs(t, err, ErrRenderFailed)
}

func TestRenderer_CachesParsedFiles(t *testing.T) {
	t.Parallel()

	var reads atomic.Int32
	r := NewRenderer(&countingFS{MapFS: testFS(), reads: &reads})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			res, err := r.Render("default.html", "welcome.md", map[string]int{"Name": i})
			require.NoError(t, err)
			require.NotEmpty(t, res.HTML)
		})
	}
	wg.Wait()

	require.Equal(t, int32(2), reads.Load())
}

func TestDefaultFS(t *testing.T) {
	t.Parallel()

	fsys := DefaultFS()
	_, err := fs.Stat(fsys, "test.md")
	require.NoError(t, err)
	_, err = fs.Stat(fsys, "layouts/base.html")
	require.NoError(t, err)

	res, err := NewRenderer(fsys).Render("base.html", "test.md", map[string]any{
		"Host": "smtp.example.com", "Port": 587, "Mode": "auth", "SentAt": "now",
	})
	require.NoError(t, err)
	require.Contains(t, res.HTML, "smtp.example.com:587")
	require.Equal(t, "SMTP test from {{.Host}}", res.Subject())
}
