// Package ui renders dockman's terminal output: section headers, one line
// per container step and aligned tables. Styling is only applied when the
// output is a terminal; otherwise plain text is written so logs and pipes
// stay readable.
package ui

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// UI provides styled terminal output.
type UI struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	styles styles

	// mu guards out, which the spinner goroutine also writes to.
	mu sync.Mutex
}

type styles struct {
	header lipgloss.Style
	bold   lipgloss.Style
	faint  lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	frame  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		bold:   r.NewStyle().Bold(true),
		faint:  r.NewStyle().Faint(true),
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")),
		frame:  r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// New creates a UI that writes to out and errOut.
// TTY detection is performed on out.
func New(out, errOut io.Writer) *UI {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(f.Fd())
	}
	return &UI{
		out:    out,
		errOut: errOut,
		isTTY:  tty,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// IsTTY reports whether the output is a terminal.
func (u *UI) IsTTY() bool {
	return u.isTTY
}

// paint renders s with st on a terminal and returns it unchanged otherwise.
func (u *UI) paint(st lipgloss.Style, s string) string {
	if !u.isTTY {
		return s
	}
	return st.Render(s)
}

// pick returns styled on a terminal and plain otherwise.
func (u *UI) pick(styled, plain string) string {
	if u.isTTY {
		return styled
	}
	return plain
}

// write sends s to out as is. Write errors are not recoverable in CLI
// output and are dropped.
func (u *UI) write(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, _ = io.WriteString(u.out, s)
}

func (u *UI) line(s string) {
	u.write(s + "\n")
}
