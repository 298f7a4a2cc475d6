package console

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/pagerctl/more/internal/vt"
)

// TcellConsole adapts a tcell.Screen to Console, the way texel/
// driver_tcell.go adapts one to the compositor's ScreenDriver — one
// method per Screen call, plus the cell-batching and scroll-region
// operations spec.md's console sink adds.
type TcellConsole struct {
	screen tcell.Screen

	winLeft, winTop, winRight, winBottom int
	autoWrap                             bool
	events                               chan Event
	done                                 chan struct{}
}

// NewTcellConsole initializes screen and starts its event pump. screen
// is normally the result of tcell.NewScreen(); callers that want to
// inject a fake for testing higher layers should use Fake instead of
// this type.
func NewTcellConsole(screen tcell.Screen, autoWrap bool) (*TcellConsole, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	w, h := screen.Size()

	c := &TcellConsole{
		screen:    screen,
		winRight:  w,
		winBottom: h,
		autoWrap:  autoWrap,
		events:    make(chan Event, 16),
		done:      make(chan struct{}),
	}
	go c.pump()
	return c, nil
}

func (c *TcellConsole) Size() (int, int) { return c.screen.Size() }

func (c *TcellConsole) SetCursor(x, y int) {
	if y < 0 {
		c.screen.HideCursor()
		return
	}
	c.screen.ShowCursor(x, y)
}

func (c *TcellConsole) FillCells(x, y, count int, ch rune, attr Attr) {
	style := styleFromAttr(attr)
	for i := 0; i < count; i++ {
		c.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// ScrollRegion re-blits src's current contents to (dstX,dstY) by reading
// back every cell with GetContent and rewriting it at the shifted
// position, then fills the vacated cells — tcell has no native
// block-move primitive (texel's own compositor repaints cell-by-cell
// too; see texel/desktop.go's render pass), so this is the straightforward
// analogue of a block move over SetContent/GetContent.
func (c *TcellConsole) ScrollRegion(src Rect, dstX, dstY int, fill rune, fillAttr Attr) {
	width := src.Right - src.Left
	height := src.Bottom - src.Top
	if width <= 0 || height <= 0 {
		return
	}

	movingDown := dstY > src.Top
	rows := make([]int, height)
	for i := range rows {
		rows[i] = i
	}
	if movingDown {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	fillStyle := styleFromAttr(fillAttr)
	for _, row := range rows {
		for col := 0; col < width; col++ {
			mainc, combc, style, _ := c.screen.GetContent(src.Left+col, src.Top+row)
			c.screen.SetContent(dstX+col, dstY+row, mainc, combc, style)
		}
	}

	vacatedTop, vacatedHeight := src.Top, height
	if movingDown {
		vacatedHeight = dstY - src.Top
	} else {
		vacatedTop = src.Top + (dstY - src.Top) + height
		vacatedHeight = src.Top + height - vacatedTop
	}
	for row := 0; row < vacatedHeight; row++ {
		for col := 0; col < width; col++ {
			c.screen.SetContent(src.Left+col, vacatedTop+row, fill, nil, fillStyle)
		}
	}
}

// WriteText decodes VT/CSI color escapes inline (internal/vt's scanner
// already stripped highlight injection into the same escape form) and
// writes the resulting runs via SetContent, advancing the column as it
// goes — a console sink never re-parses already-clipped text beyond
// recognising the color-change escapes it must turn into a Style.
func (c *TcellConsole) WriteText(x, y int, text []byte) {
	col := x
	color := vt.Default
	i := 0
	for i < len(text) {
		if text[i] == 0x1b && i+1 < len(text) && text[i+1] == '[' {
			end := i + 2
			for end < len(text) && ((text[end] >= '0' && text[end] <= '9') || text[end] == ';') {
				end++
			}
			if end < len(text) && text[end] == 'm' {
				color = vt.FinalColorFromEscapeDefault(color, vt.Default, string(text[i+2:end]))
				i = end + 1
				continue
			}
		}
		r, size := decodeRune(text[i:])
		c.screen.SetContent(col, y, r, nil, styleFromAttr(Attr(color)))
		col++
		i += size
	}
}

func (c *TcellConsole) SetWindowInfo(left, top, right, bottom int) {
	c.winLeft, c.winTop, c.winRight, c.winBottom = left, top, right, bottom
}

func (c *TcellConsole) AutoWrap() bool { return c.autoWrap }

func (c *TcellConsole) Show() { c.screen.Show() }

func (c *TcellConsole) Close() {
	close(c.done)
	c.screen.Fini()
}

func (c *TcellConsole) PollEvent() (Event, bool) {
	select {
	case ev, ok := <-c.events:
		return ev, ok
	case <-c.done:
		return Event{}, false
	}
}

// pump translates tcell.Event values into console.Event and forwards
// them on c.events until PollEvent on the underlying screen returns nil
// (Fini was called) or c.done closes.
func (c *TcellConsole) pump() {
	defer close(c.events)
	var prevButtons tcell.ButtonMask
	for {
		raw := c.screen.PollEvent()
		if raw == nil {
			return
		}
		switch ev := raw.(type) {
		case *tcell.EventKey:
			select {
			case c.events <- keyEvent(ev):
			case <-c.done:
				return
			}
		case *tcell.EventResize:
			w, h := ev.Size()
			select {
			case c.events <- Event{Kind: EventWindowResize, Col: w, Row: h}:
			case <-c.done:
				return
			}
		case *tcell.EventMouse:
			for _, out := range mouseEvents(ev, prevButtons) {
				select {
				case c.events <- out:
				case <-c.done:
					return
				}
			}
			prevButtons = ev.Buttons()
		}
		select {
		case <-c.done:
			return
		default:
		}
	}
}

func keyEvent(ev *tcell.EventKey) Event {
	out := Event{Control: controlMaskFrom(ev.Modifiers())}
	switch ev.Key() {
	case tcell.KeyEnter:
		out.Kind, out.Key = EventKeyDown, KeyEnter
	case tcell.KeyEscape:
		out.Kind, out.Key = EventKeyDown, KeyEsc
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Kind, out.Key = EventKeyDown, KeyBackspace
	case tcell.KeyUp:
		out.Kind, out.Key = EventKeyDown, KeyUp
	case tcell.KeyDown:
		out.Kind, out.Key = EventKeyDown, KeyDown
	case tcell.KeyLeft:
		out.Kind, out.Key = EventKeyDown, KeyLeft
	case tcell.KeyRight:
		out.Kind, out.Key = EventKeyDown, KeyRight
	case tcell.KeyPgUp:
		out.Kind, out.Key = EventKeyDown, KeyPageUp
	case tcell.KeyPgDn:
		out.Kind, out.Key = EventKeyDown, KeyPageDown
	case tcell.KeyHome:
		out.Kind, out.Key = EventKeyDown, KeyHome
	case tcell.KeyEnd:
		out.Kind, out.Key = EventKeyDown, KeyEnd
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			out.Kind, out.Key = EventKeyDown, KeySpace
		} else {
			out.Kind, out.Key, out.Rune = EventKeyDown, KeyRune, ev.Rune()
		}
	default:
		out.Kind, out.Key, out.Rune = EventKeyDown, KeyRune, ev.Rune()
	}
	return out
}

// mouseEvents turns one tcell.EventMouse sample into zero or more
// console events: tcell reports level-triggered button state rather
// than edge-triggered down/up events, so a transition is detected by
// comparing against the previous sample's button mask — the same
// press/release-by-comparison pattern texel/desktop_engine_core.go's
// processMouseEvent uses. tcell has no native double-click detection;
// internal/selection escalates repeated same-point single clicks into
// double/triple itself (spec.md §9), so this driver never emits
// EventMouseDoubleClick.
func mouseEvents(ev *tcell.EventMouse, prev tcell.ButtonMask) []Event {
	x, y := ev.Position()
	buttons := ev.Buttons()
	control := controlMaskFrom(ev.Modifiers())

	if wx, wy := wheelDelta(buttons); wx != 0 || wy != 0 {
		return []Event{{Kind: EventMouseWheel, Col: x, Row: y, Button: wx2button(wx, wy), Control: control}}
	}

	button := buttonFrom(buttons)
	prevButton := buttonFrom(prev)

	switch {
	case button != MouseNone && prevButton == MouseNone:
		return []Event{{Kind: EventMouseDown, Col: x, Row: y, Button: button, Control: control}}
	case button == MouseNone && prevButton != MouseNone:
		return []Event{{Kind: EventMouseUp, Col: x, Row: y, Button: prevButton, Control: control}}
	case button != MouseNone && prevButton != MouseNone:
		return []Event{{Kind: EventMouseMove, Col: x, Row: y, Button: button, Control: control}}
	default:
		return nil
	}
}

func wheelDelta(mask tcell.ButtonMask) (dx, dy int) {
	if mask&tcell.WheelUp != 0 {
		return 0, -1
	}
	if mask&tcell.WheelDown != 0 {
		return 0, 1
	}
	if mask&tcell.WheelLeft != 0 {
		return -1, 0
	}
	if mask&tcell.WheelRight != 0 {
		return 1, 0
	}
	return 0, 0
}

func wx2button(dx, dy int) MouseButton {
	if dy < 0 {
		return MouseWheelUp
	}
	return MouseWheelDown
}

func buttonFrom(mask tcell.ButtonMask) MouseButton {
	switch {
	case mask&tcell.Button1 != 0:
		return MouseLeft
	case mask&tcell.Button2 != 0:
		return MouseMiddle
	case mask&tcell.Button3 != 0:
		return MouseRight
	default:
		return MouseNone
	}
}

func controlMaskFrom(mod tcell.ModMask) ControlMask {
	var c ControlMask
	if mod&tcell.ModShift != 0 {
		c |= ControlShift
	}
	if mod&tcell.ModAlt != 0 {
		c |= ControlAlt
	}
	if mod&tcell.ModCtrl != 0 {
		c |= ControlCtrl
	}
	return c
}

func styleFromAttr(attr Attr) tcell.Style {
	fg := legacyToTcell[attr&0x0F]
	bg := legacyToTcell[(attr>>4)&0x0F]
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}

// legacyToTcell maps the legacy console nibble (spec.md §4.B / internal/
// vt.Color's bit layout) to tcell's named ANSI colors.
var legacyToTcell = [16]tcell.Color{
	tcell.ColorBlack, tcell.ColorNavy, tcell.ColorGreen, tcell.ColorTeal,
	tcell.ColorMaroon, tcell.ColorPurple, tcell.ColorOlive, tcell.ColorSilver,
	tcell.ColorGray, tcell.ColorBlue, tcell.ColorLime, tcell.ColorAqua,
	tcell.ColorRed, tcell.ColorFuchsia, tcell.ColorYellow, tcell.ColorWhite,
}

func decodeRune(b []byte) (rune, int) {
	r, size := utf8.DecodeRune(b)
	if size <= 0 {
		size = 1
	}
	return r, size
}
