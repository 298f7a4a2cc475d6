package console

// Fake is an in-memory Console for unit tests of internal/console,
// internal/statusline and internal/pager: it records every call
// instead of touching a real terminal, and lets a test inject Events
// through the Inject channel.
type Fake struct {
	Width, Height int
	AutoWrapFlag  bool

	CursorX, CursorY int
	Window           Rect
	Shown            int

	Cells map[[2]int]cell
	Writes []FakeWrite
	Scrolls []FakeScroll

	events chan Event
	closed bool
}

type cell struct {
	Ch   rune
	Attr Attr
}

// FakeWrite records one WriteText call.
type FakeWrite struct {
	X, Y int
	Text string
}

// FakeScroll records one ScrollRegion call.
type FakeScroll struct {
	Src        Rect
	DstX, DstY int
}

// NewFake creates a fake console of the given size. Events sent on the
// returned *Fake's Inject method are delivered in order by PollEvent.
func NewFake(width, height int, autoWrap bool) *Fake {
	return &Fake{
		Width: width, Height: height, AutoWrapFlag: autoWrap,
		Window: Rect{Left: 0, Top: 0, Right: width, Bottom: height},
		Cells:  make(map[[2]int]cell),
		events: make(chan Event, 64),
	}
}

func (f *Fake) Size() (int, int) { return f.Width, f.Height }

func (f *Fake) SetCursor(x, y int) { f.CursorX, f.CursorY = x, y }

func (f *Fake) FillCells(x, y, count int, ch rune, attr Attr) {
	for i := 0; i < count; i++ {
		f.Cells[[2]int{x + i, y}] = cell{Ch: ch, Attr: attr}
	}
}

func (f *Fake) ScrollRegion(src Rect, dstX, dstY int, fill rune, fillAttr Attr) {
	f.Scrolls = append(f.Scrolls, FakeScroll{Src: src, DstX: dstX, DstY: dstY})
	width := src.Right - src.Left
	height := src.Bottom - src.Top
	moved := make(map[[2]int]cell, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if c, ok := f.Cells[[2]int{src.Left + col, src.Top + row}]; ok {
				moved[[2]int{dstX + col, dstY + row}] = c
			}
		}
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			f.Cells[[2]int{src.Left + col, src.Top + row}] = cell{Ch: fill, Attr: fillAttr}
		}
	}
	for k, c := range moved {
		f.Cells[k] = c
	}
}

func (f *Fake) WriteText(x, y int, text []byte) {
	f.Writes = append(f.Writes, FakeWrite{X: x, Y: y, Text: string(text)})
}

func (f *Fake) SetWindowInfo(left, top, right, bottom int) {
	f.Window = Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

func (f *Fake) AutoWrap() bool { return f.AutoWrapFlag }

func (f *Fake) Show() { f.Shown++ }

func (f *Fake) Close() {
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}

// Inject enqueues ev to be returned by a future PollEvent call.
func (f *Fake) Inject(ev Event) {
	if f.closed {
		return
	}
	f.events <- ev
}

func (f *Fake) PollEvent() (Event, bool) {
	ev, ok := <-f.events
	return ev, ok
}
