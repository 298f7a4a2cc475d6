// Package clipboard publishes the three representations internal/selection
// computes (plain, HTML, VT) to whichever clipboard sinks are reachable:
// the OS clipboard via github.com/atotto/clipboard, and an OSC 52
// terminal escape via github.com/aymanbagabas/go-osc52/v2 (spec.md §4.F,
// §6's "publish(plain, html)" clipboard sink contract, expanded with a VT
// delivery path since a pager is commonly run over SSH/tmux where no OS
// clipboard utility is reachable but the terminal itself is).
//
// Grounded on eugeniofciuvasile-ssh-x-term's vterm.go, which calls
// clipboard.WriteAll directly on copy (internal/ui/components/vterm.go);
// go-osc52/v2 itself appears only as an indirect dependency across the
// pack (dcosson-h2, eugeniofciuvasile-ssh-x-term), so its usage here is
// grounded on its documented public API rather than a pack call site.
package clipboard

import (
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Sink publishes copied text. Publish never blocks on user interaction;
// a failure on one delivery path does not prevent the others.
type Sink interface {
	Publish(plain, html, vtForm string) error
}

// OSSink writes the plain representation to the OS clipboard via
// atotto/clipboard (xclip/xsel/wl-copy/pbcopy/clip.exe, whichever the
// platform provides). It never errors more information than
// ClipboardError wraps (spec.md §7).
type OSSink struct{}

func (OSSink) Publish(plain, html, vtForm string) error {
	if plain == "" {
		return nil
	}
	if err := clipboard.WriteAll(plain); err != nil {
		return &Error{Op: "os-clipboard", Err: err}
	}
	return nil
}

// TerminalSink writes the VT representation to w as an OSC 52 clipboard
// escape, which the terminal emulator itself (not the OS) interprets —
// the delivery path that still works over SSH/tmux with no local
// clipboard utility installed.
type TerminalSink struct {
	W             io.Writer
	TmuxPassthrough bool
}

func (t TerminalSink) Publish(plain, html, vtForm string) error {
	if vtForm == "" {
		return nil
	}
	seq := osc52.New(vtForm).Clipboard()
	if t.TmuxPassthrough {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(t.W); err != nil {
		return &Error{Op: "osc52", Err: err}
	}
	return nil
}

// HTMLSink delivers the HTML representation to the OS clipboard as an
// alternate-format (text/html) entry, alongside the plain-text entry
// OSSink writes to the default target. atotto/clipboard has no
// multi-format API, so this shells out the same way
// omertheroot-flagrep's copyToClipboard tries xclip/xsel/wl-copy in
// turn -- xsel has no MIME-type flag, so only the two tools that accept
// one (xclip's/wl-copy's -t) are tried. Neither being installed is not
// an error: HTML is an extra format, not the format spec.md §4.F
// requires at minimum.
type HTMLSink struct{}

func (HTMLSink) Publish(plain, html, vtForm string) error {
	if html == "" {
		return nil
	}
	cmd, err := htmlClipboardCommand()
	if err != nil {
		return nil
	}
	cmd.Stdin = strings.NewReader(html)
	if err := cmd.Run(); err != nil {
		return &Error{Op: "html-clipboard", Err: err}
	}
	return nil
}

func htmlClipboardCommand() (*exec.Cmd, error) {
	if _, err := exec.LookPath("xclip"); err == nil {
		return exec.Command("xclip", "-selection", "clipboard", "-t", "text/html"), nil
	}
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return exec.Command("wl-copy", "-t", "text/html"), nil
	}
	return nil, errNoHTMLTool
}

var errNoHTMLTool = errors.New("no html-capable clipboard tool found (xclip/wl-copy)")

// Multi publishes to every sink in order, collecting (not stopping on)
// individual failures. It returns nil as soon as at least one sink
// succeeded, and the first error encountered only when every sink
// failed.
type Multi struct {
	Sinks []Sink
}

func (m Multi) Publish(plain, html, vtForm string) error {
	var firstErr error
	succeeded := false
	for _, s := range m.Sinks {
		if err := s.Publish(plain, html, vtForm); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		succeeded = true
	}
	if succeeded {
		return nil
	}
	return firstErr
}

// Error is the ClipboardError taxonomy member of spec.md §7: a copy
// failed on a specific delivery path without interrupting the pager's
// event loop.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "clipboard: " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
