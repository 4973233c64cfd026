package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/wneessen/go-mail/log"
)

const (
	clientPrefix = "C: "
	serverPrefix = "S: "

	// maxTranscriptLines bounds memory for long DATA sessions; the oldest
	// lines are dropped first.
	maxTranscriptLines = 200
)

// transcript records one SMTP session and mirrors it to slog at debug level.
// It implements the go-mail logger interface.
type transcript struct {
	logger *slog.Logger
	lines  []string
	mu     sync.Mutex
}

func newTranscript(l *slog.Logger) *transcript {
	return &transcript{logger: l}
}

func (t *transcript) record(level slog.Level, l log.Log) {
	prefix := ""
	switch l.Direction {
	case log.DirClientToServer:
		prefix = clientPrefix
	case log.DirServerToClient:
		prefix = serverPrefix
	}
	line := prefix + strings.TrimRight(fmt.Sprintf(l.Format, l.Messages...), "\r\n")

	t.mu.Lock()
	if len(t.lines) == maxTranscriptLines {
		t.lines = append(t.lines[:0], t.lines[1:]...)
	}
	t.lines = append(t.lines, line)
	t.mu.Unlock()

	t.logger.Log(context.Background(), level, "smtp session", slog.String("line", line))
}

func (t *transcript) Errorf(l log.Log) { t.record(slog.LevelError, l) }
func (t *transcript) Warnf(l log.Log)  { t.record(slog.LevelWarn, l) }
func (t *transcript) Infof(l log.Log)  { t.record(slog.LevelDebug, l) }
func (t *transcript) Debugf(l log.Log) { t.record(slog.LevelDebug, l) }

// Lines returns a copy of the recorded lines.
func (t *transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// lastReply returns the most recent server line.
func (t *transcript) lastReply() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.lines) - 1; i >= 0; i-- {
		if s, ok := strings.CutPrefix(t.lines[i], serverPrefix); ok {
			return s
		}
	}
	return ""
}

// lastCommand returns the verb of the most recent client line, e.g. "RCPT TO".
func (t *transcript) lastCommand() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return commandBefore(t.lines, len(t.lines))
}

// failure is the most recent 4xx/5xx reply and the command that caused it.
type failure struct {
	reply   string
	command string
	code    int
}

// lastFailure finds the latest error reply. Replies to later commands such as
// RSET or NOOP do not hide it.
func (t *transcript) lastFailure() failure {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.lines) - 1; i >= 0; i-- {
		reply, ok := strings.CutPrefix(t.lines[i], serverPrefix)
		if !ok {
			continue
		}
		if code := replyCode(reply); code >= 400 {
			return failure{reply: reply, command: commandBefore(t.lines, i), code: code}
		}
	}
	return failure{}
}

func commandBefore(lines []string, end int) string {
	for i := end - 1; i >= 0; i-- {
		s, ok := strings.CutPrefix(lines[i], clientPrefix)
		if !ok || strings.HasPrefix(s, "<") {
			continue
		}
		verb, _, _ := strings.Cut(s, ":")
		f := strings.Fields(strings.ToUpper(verb))
		if len(f) == 0 {
			continue
		}
		if len(f) > 1 && (f[1] == "FROM" || f[1] == "TO") {
			return f[0] + " " + f[1]
		}
		return f[0]
	}
	return ""
}

func replyCode(reply string) int {
	if len(reply) < 3 {
		return 0
	}
	code, err := strconv.Atoi(reply[:3])
	if err != nil {
		return 0
	}
	return code
}
