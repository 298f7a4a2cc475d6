// Package statusline renders the pager's footer row: spec.md §4.H's
// " --- <state> --- (<first>-<last> of <total>, <percent>%)", triggered
// on viewport motion, a change in total line count, or a resize.
//
// Grounded on scottpeterman-tetherssh/cli/terminal_display.go's viewport
// logging ("showing lines [%d-%d] of %d available", computed from
// scrollOffset/visibleLines/totalLines) for the first/last/total
// arithmetic — the nearest pack example to a scrollback position
// indicator, since the teacher's own viewport_state.go never renders a
// user-facing status text (its compositor draws window chrome
// elsewhere). Bright-white-on-black is internal/vt's legacy console
// attribute for "default foreground, maximum intensity".
package statusline

import (
	"fmt"

	"github.com/pagerctl/more/internal/console"
	"github.com/pagerctl/more/internal/vt"
)

// State is the three-way footer state spec.md §4.H names.
type State int

const (
	AwaitingData State = iota
	More
	End
)

func (s State) String() string {
	switch s {
	case End:
		return "End"
	case More:
		return "More"
	default:
		return "Awaiting data"
	}
}

// Attr is the bright-white-on-black legacy console attribute the status
// line always renders in.
var Attr = console.Attr(vt.MakeColor(0xF, 0x0))

// Compute decides the footer state: End once ingest has terminated and
// the viewport shows the last available line, Awaiting data while the
// viewport has not yet filled (fewer lines exist than fit on screen),
// More otherwise — there is more buffered content below the visible
// window, or ingest is still running with the viewport already full.
func Compute(last, total int, ingestDone, viewportFull bool) State {
	switch {
	case !viewportFull:
		return AwaitingData
	case ingestDone && last >= total:
		return End
	default:
		return More
	}
}

// Format renders the complete footer text for a 1-based [first,last] of
// total lines. total == 0 renders "0-0 of 0, 0%" rather than dividing by
// zero.
func Format(state State, first, last, total int) string {
	percent := 0
	if total > 0 {
		percent = last * 100 / total
	}
	return fmt.Sprintf(" --- %s --- (%d-%d of %d, %d%%)", state, first, last, total, percent)
}

// Renderer tracks the last-drawn footer text so a redraw that produces
// identical text is a no-op, and owns the row/window it draws into.
type Renderer struct {
	con console.Console
	row int
	last string
}

// New creates a renderer that draws into con at row (the bottom row of
// the viewport's window, per spec.md §4.H).
func New(con console.Console, row int) *Renderer {
	return &Renderer{con: con, row: row}
}

// SetRow repositions the footer, called on resize once the new window
// rectangle is known.
func (r *Renderer) SetRow(row int) { r.row = row }

// Draw erases the footer row and writes text starting at column 0 if it
// differs from the last-drawn text; returns whether it actually redrew.
func (r *Renderer) Draw(text string) bool {
	if text == r.last {
		return false
	}
	width, _ := r.con.Size()
	r.con.FillCells(0, r.row, width, ' ', Attr)
	r.con.WriteText(0, r.row, []byte(vt.StringToTextAttribute(vt.Color(Attr))+text))
	r.last = text
	return true
}
