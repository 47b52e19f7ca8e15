// Package debug writes a timestamped trace file, one line per event,
// tagged with a category. Until Enable is called every call is a no-op.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type logger struct {
	mu       sync.Mutex
	out      io.WriteCloser
	only     map[string]bool // empty means every category
	counters map[string]int
}

var std logger

// DefaultPath is ~/.config/go-phasewheel/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-phasewheel", "debug.log")
}

// Enable truncates path (DefaultPath when empty) and starts logging to it.
// With categories given, only those are written.
func Enable(path string, categories ...string) error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.out != nil {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	std.out = f
	std.counters = make(map[string]int)
	std.only = make(map[string]bool, len(categories))
	for _, c := range categories {
		std.only[c] = true
	}
	std.write("debug", "=== Debug logging started (%s) ===", describe(categories))
	return nil
}

// ParseCategories splits a comma separated list, dropping blanks
func ParseCategories(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func describe(categories []string) string {
	if len(categories) == 0 {
		return "all"
	}
	return strings.Join(categories, ",")
}

// Disable closes the log file
func Disable() {
	std.mu.Lock()
	defer std.mu.Unlock()
	if std.out != nil {
		std.out.Close()
		std.out = nil
	}
}

// Enabled reports whether logging is on
func Enabled() bool {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.out != nil
}

// write needs std.mu held
func (l *logger) write(category, format string, args ...any) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(l.out, "[%s] %-10s %s\n", ts, category, fmt.Sprintf(format, args...))
	if f, ok := l.out.(*os.File); ok {
		f.Sync() // flush immediately so we see logs even on crash
	}
}

func (l *logger) wants(category string) bool {
	return l.out != nil && (len(l.only) == 0 || l.only[category])
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if std.wants(category) {
		std.write(category, format, args...)
	}
}

// LogEvery logs only every n-th call with the same category and format
// (use for per-frame events)
func LogEvery(n int, category, format string, args ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if !std.wants(category) {
		return
	}
	key := category + format
	std.counters[key]++
	if count := std.counters[key]; count%max(n, 1) == 0 {
		std.write(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
