// Package progress reports batch and conversion progress on the terminal.
// All output goes to stderr so stdout stays machine-readable.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Bar renders an ASCII progress bar over a known number of files.
type Bar struct {
	Total   int
	Current int
	Failed  int
	Label   string
	Width   int
	Enabled bool

	out io.Writer
	mu  sync.Mutex
}

// New creates a progress bar writing to stderr.
// Disabled if stderr is not a TTY, if --json is set, or SHEETCANVAS_NO_PROGRESS=1.
func New(label string, total int) *Bar {
	return &Bar{
		Total:   total,
		Label:   label,
		Width:   30,
		Enabled: shouldEnable(),
		out:     os.Stderr,
	}
}

// NewTo creates an enabled bar writing to w.
func NewTo(w io.Writer, label string, total int) *Bar {
	return &Bar{Total: total, Label: label, Width: 30, Enabled: true, out: w}
}

// Done records one finished item and redraws. Failed items are counted
// separately and shown in the status line.
func (b *Bar) Done(item string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Current = min(b.Current+1, b.Total)
	if err != nil {
		b.Failed++
	}
	b.render(item)
}

// Finish prints a final summary line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.Enabled {
		return
	}
	mark := "✓"
	if b.Failed > 0 {
		mark = "✗"
	}
	fmt.Fprintf(b.writer(), "\r\033[K%s %s: %d/%d converted, %d failed\n",
		mark, b.Label, b.Current-b.Failed, b.Total, b.Failed)
}

func (b *Bar) render(item string) {
	if !b.Enabled {
		return
	}

	filled := 0
	if b.Total > 0 {
		filled = min(b.Current*b.Width/b.Total, b.Width)
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", b.Width-filled)
	fmt.Fprintf(b.writer(), "\r\033[K%s [%s] %d/%d  %s", b.Label, bar, b.Current, b.Total, item)
}

func (b *Bar) writer() io.Writer {
	if b.out == nil {
		return os.Stderr
	}
	return b.out
}

// Pct returns the current percentage (0-100) of the bar.
func (b *Bar) Pct() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Total == 0 {
		return 0
	}
	return float64(b.Current) / float64(b.Total) * 100
}

// Spinner shows activity while a single workbook converts.
type Spinner struct {
	Label   string
	Enabled bool

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: shouldEnable(),
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}

	s.mu.Lock()
	s.stopped = false
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Fprintf(os.Stderr, "\r\033[K%c %s", frames[i%len(frames)], s.Label)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Update changes the spinner label while it's running.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Label = label
}

// Stop stops the spinner and prints a result.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	if s.Enabled {
		fmt.Fprintf(os.Stderr, "\r\033[K✓ %s\n", result)
	}
}

func shouldEnable() bool {
	if os.Getenv("SHEETCANVAS_NO_PROGRESS") == "1" {
		return false
	}
	if os.Getenv("SHEETCANVAS_JSON") == "true" {
		return false
	}
	return isTTY()
}

func isTTY() bool {
	stat, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
