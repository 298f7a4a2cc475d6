// Package console is the display/input boundary spec.md §6 calls the
// "Console sink" and "Input source": get_size, set_cursor, fill_cells,
// scroll_region, write_text, set_window_info, plus an event stream and
// an auto-wrap probe. internal/statusline and internal/pager are written
// against the Console interface, not against tcell directly, so they can
// be exercised with the fake in this package without a real terminal;
// internal/viewport and internal/selection do not touch the console.
//
// Grounded on texel/driver_tcell.go's TcellScreenDriver: the same thin
// wrap-one-method-per-Screen-call shape, extended with the cell-batching
// (FillCells) and scroll-region operations spec.md's console sink adds
// beyond what the teacher's compositor needed from tcell directly.
package console

// Rect is a console cell rectangle, left/top inclusive, right/bottom
// exclusive, matching Go slice-range convention.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Attr is the legacy 8-bit console attribute a cell is painted with;
// internal/vt.Color values are passed through unchanged (both packages
// keep the same bit layout, spec.md §4.B).
type Attr uint8

// Console is the sink spec.md §6 names: get_size, set_cursor,
// fill_cells, scroll_region, write_text, set_window_info, plus the
// auto-wrap flag the generator (§4.C) needs at startup.
type Console interface {
	// Size reports the console's current width/height in cells.
	Size() (width, height int)

	// SetCursor moves the text cursor; a negative y (e.g. y=-1) hides
	// it, matching HideCursor in the teacher's driver.
	SetCursor(x, y int)

	// FillCells paints count cells starting at (x,y), left to right,
	// with the given rune and attribute.
	FillCells(x, y, count int, ch rune, attr Attr)

	// ScrollRegion moves src's contents to dst (top-left destination
	// coordinate) and fills the cells src vacated with fill/blank
	// attribute — the primitive internal/pager's vertical scroll
	// (scrollConsole) is built on instead of a full repaint every time.
	ScrollRegion(src Rect, dstX, dstY int, fill rune, fillAttr Attr)

	// WriteText writes a string that may itself contain VT/CSI color
	// escapes (a logical.Line's Text, or a status line) starting at
	// (x,y), advancing the cursor as it goes.
	WriteText(x, y int, text []byte)

	// SetWindowInfo reports the rectangle of the console actually
	// reserved for the pager's viewport (as opposed to the status line
	// row, or any chrome the embedding terminal draws) — internal/
	// viewport.Resize and internal/statusline both key off it.
	SetWindowInfo(left, top, right, bottom int)

	// AutoWrap reports whether the console automatically advances the
	// cursor to a new line when text reaches the last column. The
	// generator (spec.md §4.C) needs this once at startup, not per call.
	AutoWrap() bool

	// PollEvent blocks for the next input event, or returns ok=false
	// once Close has been called and no more events will arrive.
	PollEvent() (Event, bool)

	// Show flushes buffered cell writes to the physical display.
	Show()

	// Close releases the console (restoring cooked terminal mode on a
	// real tcell-backed console) and unblocks any pending PollEvent.
	Close()
}

// EventKind distinguishes the input event types spec.md §6 lists.
type EventKind int

const (
	EventKeyDown EventKind = iota
	EventMouseDown
	EventMouseUp
	EventMouseMove
	EventMouseDoubleClick
	EventMouseWheel
	EventWindowResize
)

// ControlMask is a bitmask of modifier keys held during a key or mouse
// event.
type ControlMask uint8

const (
	ControlShift ControlMask = 1 << iota
	ControlAlt
	ControlCtrl
)

// MouseButton identifies which button a mouse event pertains to.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseRight
	MouseMiddle
	MouseWheelUp
	MouseWheelDown
)

// Event is one input event from the console's input source (spec.md
// §6): a key press, a mouse transition, or a window resize, carrying
// cell coordinates and a control-key mask as spec.md requires.
type Event struct {
	Kind EventKind

	// Key/Rune are set for EventKeyDown: Key is a named key (see the Key*
	// constants below) or KeyRune if Rune holds a printable character.
	Key  Key
	Rune rune

	// Col/Row are cell coordinates for mouse events and EventWindowResize
	// (new width/height, respectively).
	Col, Row int
	Button   MouseButton
	Control  ControlMask
}

// Key names the non-printable keys the pager's key bindings (spec.md §6)
// dispatch on.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeySpace
	KeyEsc
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
)
