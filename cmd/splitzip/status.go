package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/meigma/splitzip"
)

// newLogger builds the CLI logger. Interactive sessions get compact text
// output; piped stderr gets JSON lines for log collectors.
func newLogger(debug, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// statusLine renders a single self-overwriting progress line. It stays
// silent when the destination is not a terminal so piped stderr remains
// machine-readable.
type statusLine struct {
	w        io.Writer
	enabled  bool
	width    int
	lastDraw time.Time
}

func newStatusLine(f *os.File, wanted bool) *statusLine {
	return &statusLine{
		w:       f,
		enabled: wanted && term.IsTerminal(int(f.Fd())),
	}
}

// progress redraws the status line for a streaming event. Redraws are
// throttled so large entries do not flood the terminal, but the final
// event of an entry always lands.
func (s *statusLine) progress(ev splitzip.ProgressEvent) {
	if !s.enabled {
		return
	}
	final := ev.BytesTotal >= 0 && ev.BytesDone >= ev.BytesTotal
	if !final && time.Since(s.lastDraw) < 80*time.Millisecond {
		return
	}
	s.lastDraw = time.Now()

	var line string
	if ev.BytesTotal >= 0 {
		line = fmt.Sprintf("%s %s  %s / %s", bar(ev.BytesDone, ev.BytesTotal), ev.Name,
			splitzip.FormatSize(ev.BytesDone), splitzip.FormatSize(ev.BytesTotal))
	} else {
		line = fmt.Sprintf("%s  %s", ev.Name, splitzip.FormatSize(ev.BytesDone))
	}
	s.draw(line)
}

func (s *statusLine) draw(line string) {
	width := utf8.RuneCountInString(line)
	pad := ""
	if n := s.width - width; n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(s.w, "\r%s%s", line, pad)
	s.width = width
}

// clear erases the status line so regular output starts on a clean row.
func (s *statusLine) clear() {
	if !s.enabled || s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// bar renders a ten-cell progress bar such as "[████░░░░░░]".
func bar(done, total int64) string {
	const cells = 10
	filled := 0
	if total > 0 {
		filled = int(done * cells / total)
	}
	if filled > cells {
		filled = cells
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", cells-filled) + "]"
}
