// Package progress renders translation progress on the terminal.
//
// On a TTY it draws a single redrawn bar (bubbles/progress). Otherwise it
// prints a plain "label: done/total (pct%)" line whenever the whole
// percentage changes, which keeps CI logs short.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const clearLine = "\r\x1b[2K"

// Reporter receives (done, total) updates. It is safe for concurrent use.
type Reporter struct {
	w     io.Writer
	label string
	tty   bool
	bar   progress.Model
	style lipgloss.Style

	mu       sync.Mutex
	done     int
	total    int
	lastPct  int
	drawn    bool
	finished bool
	started  time.Time
}

// New returns a Reporter writing to w. Bar mode is used when w is a
// terminal.
func New(w io.Writer, label string) *Reporter {
	return NewWithTTY(w, label, IsTerminal(w))
}

// NewWithTTY is New with explicit terminal detection.
func NewWithTTY(w io.Writer, label string, tty bool) *Reporter {
	return &Reporter{
		w:       w,
		label:   label,
		tty:     tty,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		style:   lipgloss.NewStyle().Bold(true),
		lastPct: -1,
		started: time.Now(),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Update records progress. Updates that do not advance done are ignored.
func (r *Reporter) Update(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished || done <= r.done || total <= 0 {
		return
	}
	if done > total {
		done = total
	}
	r.done, r.total = done, total

	if r.tty {
		r.draw()
		return
	}
	pct := done * 100 / total
	if pct != r.lastPct || done == total {
		r.lastPct = pct
		fmt.Fprintf(r.w, "%s: %d/%d (%d%%)\n", r.label, done, total, pct)
	}
}

// Printf writes a line without corrupting the bar.
func (r *Reporter) Printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tty && r.drawn {
		io.WriteString(r.w, clearLine)
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	io.WriteString(r.w, msg)
	if r.tty && r.drawn && !r.finished {
		r.draw()
	}
}

// Finish ends the bar line. Later updates are ignored.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return
	}
	r.finished = true
	if r.tty && r.drawn {
		io.WriteString(r.w, "\n")
	}
}

// Elapsed is the time since the reporter was created.
func (r *Reporter) Elapsed() time.Duration {
	return time.Since(r.started).Round(time.Second)
}

func (r *Reporter) draw() {
	pct := float64(r.done) / float64(r.total)
	fmt.Fprintf(r.w, "%s%s %s %d/%d", clearLine, r.style.Render(r.label), r.bar.ViewAs(pct), r.done, r.total)
	r.drawn = true
}
