// Package notify reports lint and compile failures on the terminal.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/yacobolo/cssbuild"
)

// Terminal implements cssbuild.Notifier with lipgloss-styled output.
type Terminal struct {
	mu        sync.Mutex
	w         io.Writer
	useColors bool
}

// NewTerminal creates a notifier writing to w.
func NewTerminal(w io.Writer, useColors bool) *Terminal {
	return &Terminal{w: w, useColors: useColors}
}

// Notify prints one line per message under the label.
func (t *Terminal) Notify(messages []string, label string) {
	if len(messages) == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n",
		cssbuild.RenderStyle(cssbuild.StyleCyan, "["+label+"]", t.useColors),
		cssbuild.RenderStyle(cssbuild.StyleRed, "lint failed", t.useColors))
	for _, msg := range messages {
		fmt.Fprintf(&b, "  %s\n", cssbuild.RenderStyle(cssbuild.StyleYellow, msg, t.useColors))
	}
	t.write(b.String())
}

// OnError prints a failure line for the label.
func (t *Terminal) OnError(err error, label string) {
	if err == nil {
		return
	}
	t.write(fmt.Sprintf("%s %s %s\n",
		cssbuild.RenderStyle(cssbuild.StyleCyan, "["+label+"]", t.useColors),
		cssbuild.RenderStyle(cssbuild.StyleRed, "✖", t.useColors),
		err.Error()))
}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, s)
}
