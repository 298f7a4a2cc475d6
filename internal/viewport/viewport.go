// Package viewport holds the currently displayed window of logical
// lines, services scroll commands, and computes minimal console updates
// (spec.md §4.E). It is owned and driven exclusively by the pager's
// single event loop goroutine, the way the teacher's ViewportState is
// owned exclusively by the VTerm goroutine that feeds it
// (apps/texelterm/parser/viewport_state.go) — no internal locking.
package viewport

import (
	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/logical"
	"github.com/pagerctl/more/internal/vt"
)

// Update describes the minimal repaint a scroll operation requires, for
// the console renderer (internal/console, driven from internal/pager)
// to apply. Kind selects which fields are meaningful.
type Update struct {
	Kind       UpdateKind
	ScrollBy   int // for UpdateScroll: rows to move; positive after MoveDown, negative after MoveUp
	FromRow    int // first row needing a fresh write
	ToRow      int // last row (inclusive) needing a fresh write
}

// UpdateKind enumerates the shapes of console update a scroll can need.
type UpdateKind int

const (
	// UpdateNone means display didn't change.
	UpdateNone UpdateKind = iota
	// UpdateRows means rows [FromRow, ToRow] must be rewritten in place.
	UpdateRows
	// UpdateScroll means the console should hardware-scroll by ScrollBy
	// rows, then rows [FromRow, ToRow] (the newly revealed ones) must be
	// written.
	UpdateScroll
	// UpdateFull means the whole viewport must be repainted (resize,
	// regenerate).
	UpdateFull
)

// State is the viewport state machine of spec.md §4.E.
type State struct {
	store   *linestore.Store
	matches vt.MatchSource
	autoWrap bool

	width, height int

	display []*logical.Line
	staging []*logical.Line

	linesInViewport int
	linesInPage     int

	hScroll int // horizontal scroll offset, in cells

	filterOn bool

	outOfMemory bool

	// scrolled fires after any operation that moved the display window,
	// replacing the teacher's duck-typed scroll-notify callback with an
	// explicit channel per spec.md §9's redesign instruction.
	scrolled chan struct{}

	debugLog func(format string, args ...any)
}

// New creates a viewport bound to store, width x height cells, with
// autoWrap reporting the console's auto-wrap policy (spec.md §6).
func New(store *linestore.Store, matches vt.MatchSource, width, height int, autoWrap bool) *State {
	s := &State{
		store:    store,
		matches:  matches,
		autoWrap: autoWrap,
		width:    width,
		height:   height,
		display:  make([]*logical.Line, height),
		staging:  make([]*logical.Line, height),
		scrolled: make(chan struct{}, 1),
	}
	return s
}

// SetDebugLog installs an optional debug hook (spec.md §2 Ambient Stack,
// wired from the -dd flag). Nil disables it with zero overhead.
func (s *State) SetDebugLog(fn func(format string, args ...any)) {
	s.debugLog = fn
}

// Scrolled returns the channel that fires after any display-window
// change.
func (s *State) Scrolled() <-chan struct{} { return s.scrolled }

func (s *State) notifyScrolled() {
	if s.debugLog != nil {
		s.debugLog("[viewport] scrolled, lines_in_viewport=%d", s.linesInViewport)
	}
	select {
	case s.scrolled <- struct{}{}:
	default:
	}
}

// LinesInViewport returns the number of populated display rows.
func (s *State) LinesInViewport() int { return s.linesInViewport }

// Display returns the currently displayed logical lines,
// display[:LinesInViewport()].
func (s *State) Display() []*logical.Line { return s.display[:s.linesInViewport] }

// OutOfMemory reports whether the last operation degraded due to an
// allocation failure (spec.md §7 AllocationError).
func (s *State) OutOfMemory() bool { return s.outOfMemory }

// SetFilterMode toggles whether the viewport walks the filtered
// sublist (Next/PrevFiltered) or the full list (Next/Prev).
func (s *State) SetFilterMode(on bool) { s.filterOn = on }

func (s *State) storeNext(after *linestore.PhysicalLine) *linestore.PhysicalLine {
	if s.filterOn {
		return s.store.NextFiltered(after)
	}
	return s.store.Next(after)
}

func (s *State) storePrev(before *linestore.PhysicalLine) *linestore.PhysicalLine {
	if s.filterOn {
		return s.store.PrevFiltered(before)
	}
	return s.store.Prev(before)
}

// cursor names a logical line by its physical line and logical index.
// nextLogicalLine produces the logical line at a cursor, wrapping into
// the next physical line as needed, and reports false when the store has
// nothing more to offer.
type cursor struct {
	phys *linestore.PhysicalLine
	idx  int
}

func (s *State) nextLogicalLine(c cursor) (*logical.Line, cursor, bool) {
	phys := c.phys
	idx := c.idx
	for phys != nil {
		lines := logical.Generate(phys, idx, 1, s.width, s.autoWrap, s.matches)
		if len(lines) == 1 {
			return lines[0], cursor{phys: phys, idx: idx + 1}, true
		}
		phys = s.storeNext(phys)
		idx = 0
	}
	return nil, cursor{}, false
}

func (s *State) prevLogicalLine(c cursor) (*logical.Line, cursor, bool) {
	phys := c.phys
	idx := c.idx - 1
	for {
		if phys == nil {
			return nil, cursor{}, false
		}
		if idx < 0 {
			phys = s.storePrev(phys)
			if phys == nil {
				return nil, cursor{}, false
			}
			idx = logical.CountLogicalLinesOnPhysicalLine(phys, s.width, s.autoWrap, s.matches) - 1
			continue
		}
		lines := logical.Generate(phys, idx, 1, s.width, s.autoWrap, s.matches)
		if len(lines) == 1 {
			return lines[0], cursor{phys: phys, idx: idx}, true
		}
		idx--
	}
}

func cursorAfter(l *logical.Line) cursor {
	if l == nil {
		return cursor{}
	}
	return cursor{phys: l.Phys, idx: l.LogicalIndex + 1}
}

func cursorAt(l *logical.Line) cursor {
	if l == nil {
		return cursor{}
	}
	return cursor{phys: l.Phys, idx: l.LogicalIndex}
}

// AddNewLinesAtBottom pulls viewport_height - lines_in_page logical
// lines starting after the last displayed line, appending them to the
// display window (spec.md §4.E).
func (s *State) AddNewLinesAtBottom() Update {
	want := s.height - s.linesInPage
	if want <= 0 {
		return Update{Kind: UpdateNone}
	}

	var c cursor
	if s.linesInViewport > 0 {
		c = cursorAfter(s.display[s.linesInViewport-1])
	} else {
		first := s.storeNext(nil)
		if first == nil {
			return Update{Kind: UpdateNone}
		}
		c = cursor{phys: first, idx: 0}
	}

	fromRow := s.linesInViewport
	added := 0
	for added < want && s.linesInViewport < s.height {
		line, next, ok := s.nextLogicalLine(c)
		if !ok {
			break
		}
		s.display[s.linesInViewport] = line
		s.linesInViewport++
		s.linesInPage++
		added++
		c = next
	}
	if added == 0 {
		return Update{Kind: UpdateNone}
	}
	s.notifyScrolled()
	return Update{Kind: UpdateRows, FromRow: fromRow, ToRow: s.linesInViewport - 1}
}

// MoveDown scrolls the logical-line window down by n: the display
// shifts left (earlier lines drop off the top... conceptually the
// window advances) and n new logical lines are appended, clamped at
// end-of-buffer.
func (s *State) MoveDown(n int) Update {
	if n <= 0 || s.linesInViewport == 0 {
		return Update{Kind: UpdateNone}
	}

	moved := 0
	c := cursorAfter(s.display[s.linesInViewport-1])
	var pulled []*logical.Line
	for moved < n {
		line, next, ok := s.nextLogicalLine(c)
		if !ok {
			break
		}
		pulled = append(pulled, line)
		c = next
		moved++
	}
	if moved == 0 {
		return Update{Kind: UpdateNone}
	}

	if moved >= s.linesInViewport {
		// Scrolled past everything currently displayed: full repaint.
		copy(s.display, pulled[max(0, len(pulled)-s.height):])
		s.linesInViewport = min(len(pulled), s.height)
		s.notifyScrolled()
		return Update{Kind: UpdateFull}
	}

	copy(s.display, s.display[moved:s.linesInViewport])
	copy(s.display[s.linesInViewport-moved:], pulled)
	s.notifyScrolled()
	return Update{Kind: UpdateScroll, ScrollBy: moved, FromRow: s.linesInViewport - moved, ToRow: s.linesInViewport - 1}
}

// MoveUp is MoveDown's symmetric counterpart: it prepends n previous
// logical lines and shifts the display right.
func (s *State) MoveUp(n int) Update {
	if n <= 0 || s.linesInViewport == 0 {
		return Update{Kind: UpdateNone}
	}

	moved := 0
	c := cursorAt(s.display[0])
	var pulled []*logical.Line
	for moved < n {
		line, prev, ok := s.prevLogicalLine(c)
		if !ok {
			break
		}
		pulled = append([]*logical.Line{line}, pulled...)
		c = prev
		moved++
	}
	if moved == 0 {
		return Update{Kind: UpdateNone}
	}

	var keep int
	if moved >= s.height {
		// The new window starts at the earliest line pulled.
		pulled = pulled[:s.height]
		moved = s.height
		keep = 0
	} else {
		keep = s.height - moved
		if keep > s.linesInViewport {
			keep = s.linesInViewport
		}
	}

	copy(s.display[moved:moved+keep], s.display[:keep])
	copy(s.display[:moved], pulled[len(pulled)-moved:])
	s.linesInViewport = moved + keep
	if s.linesInViewport > s.height {
		s.linesInViewport = s.height
	}
	s.notifyScrolled()
	return Update{Kind: UpdateScroll, ScrollBy: -moved, FromRow: 0, ToRow: moved - 1}
}

// MoveLeft scrolls the console window left within the buffer width;
// it does not change the display array, only the rendered column
// offset (spec.md §4.E).
func (s *State) MoveLeft(n int) Update {
	s.hScroll -= n
	if s.hScroll < 0 {
		s.hScroll = 0
	}
	s.notifyScrolled()
	return Update{Kind: UpdateFull}
}

// MoveRight scrolls the console window right within the buffer width.
func (s *State) MoveRight(n int) Update {
	s.hScroll += n
	s.notifyScrolled()
	return Update{Kind: UpdateFull}
}

// HScroll returns the current horizontal scroll offset in cells.
func (s *State) HScroll() int { return s.hScroll }

// Regenerate clears the display array and rebuilds it starting at
// anchor's first logical line and moving forward; used on resize and
// filter change. Lines before anchor are not pulled in, so when anchor is
// near the end of the buffer the window is left partly empty.
func (s *State) Regenerate(anchor *linestore.PhysicalLine) Update {
	s.linesInViewport = 0
	s.linesInPage = 0
	if anchor == nil {
		anchor = s.storeNext(nil)
	}
	if anchor == nil {
		return Update{Kind: UpdateFull}
	}
	c := cursor{phys: anchor, idx: 0}
	for s.linesInViewport < s.height {
		line, next, ok := s.nextLogicalLine(c)
		if !ok {
			break
		}
		s.display[s.linesInViewport] = line
		s.linesInViewport++
		c = next
	}
	s.notifyScrolled()
	return Update{Kind: UpdateFull}
}

// Resize reallocates display/staging for new dimensions. If the width
// is unchanged, existing logical lines are preserved and the window is
// extended or truncated; if the width changed, the top-visible physical
// line is captured as an anchor and the viewport regenerates (spec.md
// §4.E) — a width change invalidates every existing line_offset/length
// pairing, so there is nothing to preserve.
func (s *State) Resize(newWidth, newHeight int) Update {
	if newWidth == s.width && newHeight == s.height {
		return Update{Kind: UpdateNone}
	}

	if newWidth != s.width {
		var anchor *linestore.PhysicalLine
		if s.linesInViewport > 0 {
			anchor = s.display[0].Phys
		}
		s.width = newWidth
		s.height = newHeight
		s.display = make([]*logical.Line, newHeight)
		s.staging = make([]*logical.Line, newHeight)
		return s.Regenerate(anchor)
	}

	newDisplay := make([]*logical.Line, newHeight)
	keep := min(s.linesInViewport, newHeight)
	copy(newDisplay, s.display[:keep])
	s.display = newDisplay
	s.staging = make([]*logical.Line, newHeight)
	s.height = newHeight
	s.linesInViewport = keep

	if keep < newHeight {
		s.linesInPage = 0
		s.AddNewLinesAtBottom()
	}
	s.notifyScrolled()
	return Update{Kind: UpdateFull}
}

// ResetPage resets lines_in_page to zero, allowing another full
// viewport of lines to be ingested before the "more" prompt is shown
// again (spec.md §4.E paging semantics). Called on space/page-down.
func (s *State) ResetPage() { s.linesInPage = 0 }

// LinesInPage returns the paging counter.
func (s *State) LinesInPage() int { return s.linesInPage }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
