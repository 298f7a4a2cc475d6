package pager

import (
	"log"
	"math"
	"time"

	"github.com/pagerctl/more/internal/clipboard"
	"github.com/pagerctl/more/internal/console"
	"github.com/pagerctl/more/internal/ingest"
	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/logical"
	"github.com/pagerctl/more/internal/search"
	"github.com/pagerctl/more/internal/selection"
	"github.com/pagerctl/more/internal/statusline"
	"github.com/pagerctl/more/internal/viewport"
	"github.com/pagerctl/more/internal/vt"
)

// Config configures one Pager instance, sourced from cmd/more's flags.
type Config struct {
	// DebugDisplay wires -dd: every viewport change is rendered as a
	// full repaint (and every internal state transition is logged via
	// the standard log package) instead of the minimal console update
	// internal/viewport otherwise computes, for auditing internal
	// state (spec.md §6).
	DebugDisplay bool

	// FilterToSearch starts the viewport in filter-to-matches mode.
	FilterToSearch bool
}

// horizontalStep and verticalStep are the single-cell/single-logical-line
// increments spec.md §6 specifies for plain arrow keys.
const (
	horizontalStep = 1
	verticalStep   = 1
	wheelStep      = 3 // spec.md §9 open question: wheel scrolls the viewport, 3 logical lines per notch.
)

// Pager is the concurrency harness and event-loop owner of spec.md
// §4.G: it holds the line store, the search/filter engine, the
// viewport, selection and status-line state machines, and drives them
// from a single goroutine that multiplexes console input, the store's
// data-available signal, ingest completion, the selection auto-scroll
// ticker, and a 250ms status-refresh timer — the "Idle -> (input|data|
// timer) -> Dispatch -> Idle" state machine spec.md §4.E names.
type Pager struct {
	con     console.Console
	store   *linestore.Store
	table   *search.Table
	vp      *viewport.State
	sel     *selection.Machine
	status  *statusline.Renderer
	harness *ingest.Harness
	clip    clipboard.Sink

	cfg Config

	width, height int // viewport cell dimensions (console height minus the status row)

	filterOn bool
	search   searchUI

	lastIngestErr error
}

// New creates a Pager over con, appending/reading from store. harness
// may be nil for a store that is never appended to again (tests); clip
// may be nil to disable copy.
func New(con console.Console, store *linestore.Store, harness *ingest.Harness, clip clipboard.Sink, cfg Config) *Pager {
	w, h := con.Size()
	viewportHeight := h - 1
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	table := search.NewTable()
	vp := viewport.New(store, table, w, viewportHeight, con.AutoWrap())
	vp.SetFilterMode(cfg.FilterToSearch)

	p := &Pager{
		con:      con,
		store:    store,
		table:    table,
		vp:       vp,
		status:   statusline.New(con, viewportHeight),
		harness:  harness,
		clip:     clip,
		cfg:      cfg,
		width:    w,
		height:   viewportHeight,
		filterOn: cfg.FilterToSearch,
	}
	p.sel = selection.New(p.lineRunes, viewportHeight)

	con.SetWindowInfo(0, 0, w, viewportHeight)

	if cfg.DebugDisplay {
		vp.SetDebugLog(func(format string, args ...any) { log.Printf(format, args...) })
	}

	return p
}

// lineRunes satisfies selection.LineLookup: it re-derives a point's
// logical line from the store (rather than requiring it still be in
// the display window) and strips VT escapes to a cell-indexed rune
// slice, per spec.md's one-codepoint-one-cell non-goal.
func (p *Pager) lineRunes(pt selection.Point) []rune {
	if pt.Phys == nil {
		return nil
	}
	lines := logical.Generate(pt.Phys, pt.LogicalIndex, 1, p.width, p.con.AutoWrap(), p.table)
	if len(lines) != 1 {
		return nil
	}
	return vt.StripEscapes(lines[0].Text)
}

// Run starts the event loop and blocks until the user quits or the
// ingest source is exhausted with nothing ever produced (spec.md §5:
// "If the ingest terminates having produced zero lines, the viewport
// exits without entering interactive mode"). It returns the ingest
// harness's terminal error, if any, wrapped as *IngestErrorReport.
func (p *Pager) Run() error {
	defer p.con.Close()

	var ingestDone <-chan struct{}
	if p.harness != nil {
		ingestDone = p.harness.Done()
		select {
		case <-p.store.DataAvailable():
		case <-ingestDone:
		}
		if p.store.TotalCount() == 0 {
			if err := p.harness.Err(); err != nil {
				return &IngestErrorReport{Err: err}
			}
			return nil
		}
	}

	p.vp.AddNewLinesAtBottom()
	p.fullRepaint()

	inputCh := make(chan console.Event)
	go func() {
		defer close(inputCh)
		for {
			ev, ok := p.con.PollEvent()
			if !ok {
				return
			}
			inputCh <- ev
		}
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-inputCh:
			if !ok {
				p.shutdownIngest()
				return p.finalErr()
			}
			if p.handleEvent(ev) {
				p.shutdownIngest()
				return p.finalErr()
			}
			p.con.Show()

		case <-p.store.DataAvailable():
			p.onNewData()
			p.con.Show()

		case <-ingestDone:
			ingestDone = nil
			p.lastIngestErr = p.harness.Err()
			p.refreshStatus()
			p.con.Show()

		case delta := <-p.sel.Ticks():
			p.autoScroll(delta)
			p.con.Show()

		case <-ticker.C:
			p.refreshStatus()
			p.con.Show()
		}
	}
}

func (p *Pager) shutdownIngest() {
	if p.harness != nil {
		p.harness.Shutdown()
		<-p.harness.Done()
	}
}

func (p *Pager) finalErr() error {
	if p.lastIngestErr != nil {
		return &IngestErrorReport{Err: p.lastIngestErr}
	}
	return nil
}

// onNewData reacts to the store's data-available signal: if the
// viewport is not yet full (still "Awaiting data"), pull whatever
// became available onto the bottom of the display.
func (p *Pager) onNewData() {
	if p.vp.LinesInViewport() < p.height {
		u := p.vp.AddNewLinesAtBottom()
		p.applyUpdate(u)
	}
	p.refreshStatus()
}

// autoScroll applies one selection-edge auto-scroll tick: delta is +1
// or -1 logical lines (spec.md §4.F).
func (p *Pager) autoScroll(delta int) {
	var u viewport.Update
	if delta > 0 {
		u = p.vp.MoveDown(delta)
	} else {
		u = p.vp.MoveUp(-delta)
	}
	p.applyUpdate(u)
	p.refreshStatus()
}

// handleEvent dispatches one console event and returns true if the
// pager should quit.
func (p *Pager) handleEvent(ev console.Event) bool {
	switch ev.Kind {
	case console.EventKeyDown:
		return p.handleKey(ev)
	case console.EventMouseDown:
		p.handleMouseDown(ev)
	case console.EventMouseMove:
		p.handleMouseMove(ev)
	case console.EventMouseUp:
		p.handleMouseUp(ev)
	case console.EventMouseWheel:
		p.handleWheel(ev)
	case console.EventWindowResize:
		p.handleResize(ev.Col, ev.Row)
	}
	return false
}

func (p *Pager) handleKey(ev console.Event) bool {
	if p.search.active && ev.Control&console.ControlCtrl == 0 {
		switch ev.Key {
		case console.KeyRune:
			p.search.typeRune(ev.Rune)
			p.applySearchEdit()
			return false
		case console.KeyBackspace:
			p.search.backspace()
			p.applySearchEdit()
			return false
		case console.KeyEsc:
			p.search.exit()
			return false
		}
	}

	if ev.Control&console.ControlCtrl != 0 && ev.Key == console.KeyRune {
		if idx, ok := colorIndexForDigit(ev.Rune); ok {
			p.search.start(idx, p.table)
			return false
		}
	}

	switch ev.Key {
	case console.KeyRune:
		if ev.Rune == 'q' || ev.Rune == 'Q' {
			return true
		}
		if ev.Rune == '&' {
			p.toggleFilter()
		}
	case console.KeySpace:
		p.applyUpdate(p.vp.MoveDown(p.height))
		p.vp.ResetPage()
		p.refreshStatus()
	case console.KeyEnter:
		p.copySelection()
	case console.KeyUp:
		p.applyUpdate(p.vp.MoveUp(verticalStep))
		p.refreshStatus()
	case console.KeyDown:
		p.applyUpdate(p.vp.MoveDown(verticalStep))
		p.refreshStatus()
	case console.KeyLeft:
		p.applyUpdate(p.vp.MoveLeft(horizontalStep))
	case console.KeyRight:
		p.applyUpdate(p.vp.MoveRight(horizontalStep))
	case console.KeyPageUp:
		p.applyUpdate(p.vp.MoveUp(p.height))
		p.refreshStatus()
	case console.KeyPageDown:
		p.applyUpdate(p.vp.MoveDown(p.height))
		p.vp.ResetPage()
		p.refreshStatus()
	case console.KeyHome:
		p.applyUpdate(p.vp.Regenerate(p.store.Next(nil)))
		p.refreshStatus()
	case console.KeyEnd:
		p.applyUpdate(p.vp.MoveDown(math.MaxInt32))
		p.refreshStatus()
	}
	return false
}

// colorIndexForDigit maps Ctrl+1..Ctrl+9, Ctrl+0 to search.MaxPatterns
// color-index slots (1->0, 2->1, ..., 9->8, 0->9), matching spec.md
// §6's "Ctrl+1...Ctrl+N" binding for N=10.
func colorIndexForDigit(r rune) (int, bool) {
	switch {
	case r == '0':
		return 9, true
	case r >= '1' && r <= '9':
		return int(r-'1'), true
	}
	return 0, false
}

// applySearchEdit commits the in-progress pattern to the shared table
// and regenerates the viewport so highlighting (and, if filter mode is
// on, the filtered list) reflects the new pattern immediately.
func (p *Pager) applySearchEdit() {
	p.table.Set(p.search.colorIndex, p.search.text())
	p.regenerateForSearchChange()
}

func (p *Pager) toggleFilter() {
	p.filterOn = !p.filterOn
	p.vp.SetFilterMode(p.filterOn)
	p.regenerateForSearchChange()
}

// regenerateForSearchChange recomputes the filtered list (if filter
// mode is on) anchored at the top-visible physical line, then
// regenerates the viewport from the surviving anchor — spec.md §4.A's
// RecomputeFilter contract and §4.E's Regenerate, composed the way a
// pattern edit or filter toggle needs them.
func (p *Pager) regenerateForSearchChange() {
	var anchor *linestore.PhysicalLine
	if lines := p.vp.Display(); len(lines) > 0 {
		anchor = lines[0].Phys
	}
	if p.filterOn {
		anchor = p.store.RecomputeFilter(p.table.Predicate(), anchor)
	}
	p.applyUpdate(p.vp.Regenerate(anchor))
	p.refreshStatus()
}

func (p *Pager) handleWheel(ev console.Event) {
	if ev.Button == console.MouseWheelUp {
		p.applyUpdate(p.vp.MoveUp(wheelStep))
	} else {
		p.applyUpdate(p.vp.MoveDown(wheelStep))
	}
	p.refreshStatus()
}

func (p *Pager) handleResize(w, h int) {
	viewportHeight := h - 1
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	p.width, p.height = w, viewportHeight
	p.sel.SetHeight(viewportHeight)
	p.con.SetWindowInfo(0, 0, w, viewportHeight)
	p.status.SetRow(viewportHeight)
	p.applyUpdate(p.vp.Resize(w, viewportHeight))
	p.refreshStatus()
}

func (p *Pager) handleMouseDown(ev console.Event) {
	if ev.Button != console.MouseLeft {
		return
	}
	pt, ok := p.screenToPoint(ev.Col, ev.Row)
	if !ok {
		return
	}
	p.sel.Start(pt, ev.Row, selection.Single)
}

func (p *Pager) handleMouseMove(ev console.Event) {
	if ev.Button != console.MouseLeft {
		return
	}
	pt, ok := p.screenToPoint(ev.Col, ev.Row)
	if !ok {
		return
	}
	p.sel.Update(pt, ev.Row)
	p.repaintVisible()
}

func (p *Pager) handleMouseUp(ev console.Event) {
	pt, ok := p.screenToPoint(ev.Col, ev.Row)
	if !ok {
		pt = selection.Point{}
	}
	p.sel.Finish(pt, ev.Row)
	p.repaintVisible()
}

// screenToPoint resolves a console mouse cell (already clipped to the
// viewport's window rectangle by the caller's coordinate space) to a
// buffer-anchored selection.Point, for the displayed row it falls on.
func (p *Pager) screenToPoint(col, row int) (selection.Point, bool) {
	lines := p.vp.Display()
	if row < 0 || row >= len(lines) {
		return selection.Point{}, false
	}
	line := lines[row]
	return selection.Point{Phys: line.Phys, LogicalIndex: line.LogicalIndex, Col: col + p.vp.HScroll()}, true
}

// copySelection re-derives the plain/HTML/VT representations under the
// current selection and publishes them to the clipboard sink (spec.md
// §4.F). A clipboard failure is silent per spec.md §7 ClipboardError:
// the selection remains active either way.
func (p *Pager) copySelection() {
	r, ok := p.sel.Range()
	if !ok || p.clip == nil {
		return
	}
	plain, html, vtForm := selection.ExtractText(p.store, p.filterOn, p.table, p.width, p.con.AutoWrap(), r)
	_ = p.clip.Publish(plain, html, vtForm)
}

// refreshStatus recomputes and, if changed, redraws the footer row
// (spec.md §4.H): triggered on viewport motion, a total-count change,
// or resize — callers above call this after every operation that could
// move any of those three inputs.
func (p *Pager) refreshStatus() {
	total := p.store.TotalCount()
	if p.filterOn {
		total = p.store.FilteredCount()
	}
	lines := p.vp.Display()
	first, last := 0, 0
	if len(lines) > 0 {
		first = lineOrdinal(lines[0], p.filterOn)
		last = lineOrdinal(lines[len(lines)-1], p.filterOn)
	}
	ingestDone := p.harness == nil || isClosed(p.harness.Done())
	viewportFull := p.vp.LinesInViewport() >= p.height
	state := statusline.Compute(last, total, ingestDone, viewportFull)
	p.status.Draw(statusline.Format(state, first, last, total))
}

func lineOrdinal(l *logical.Line, filterOn bool) int {
	if filterOn {
		return int(l.Phys.FilteredLineNumber)
	}
	return int(l.Phys.LineNumber)
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// applyUpdate issues the minimal console write a viewport.Update
// describes; -dd (spec.md §6) forces every update to a full repaint
// instead, for auditing internal state.
func (p *Pager) applyUpdate(u viewport.Update) {
	if p.cfg.DebugDisplay && u.Kind != viewport.UpdateNone {
		p.fullRepaint()
		return
	}
	switch u.Kind {
	case viewport.UpdateNone:
		return
	case viewport.UpdateRows:
		for row := u.FromRow; row <= u.ToRow; row++ {
			p.drawRow(row)
		}
	case viewport.UpdateScroll:
		p.scrollConsole(u.ScrollBy)
		for row := u.FromRow; row <= u.ToRow; row++ {
			p.drawRow(row)
		}
	case viewport.UpdateFull:
		p.fullRepaint()
	}
}

// scrollConsole hardware-scrolls the viewport's console rows by n
// (positive = the window advanced, so existing rows move up by n and the
// bottom n rows are vacated; negative = the reverse), vacating the rows
// the caller is about to overwrite with freshly pulled lines.
func (p *Pager) scrollConsole(n int) {
	if n == 0 {
		return
	}
	if n > 0 {
		p.con.ScrollRegion(console.Rect{Left: 0, Top: n, Right: p.width, Bottom: p.height}, 0, 0, ' ', console.Attr(vt.Default))
		return
	}
	n = -n
	p.con.ScrollRegion(console.Rect{Left: 0, Top: 0, Right: p.width, Bottom: p.height - n}, 0, n, ' ', console.Attr(vt.Default))
}

// fullRepaint redraws every viewport row and the status line.
func (p *Pager) fullRepaint() {
	for row := 0; row < p.height; row++ {
		p.drawRow(row)
	}
	p.refreshStatus()
}

// repaintVisible redraws every viewport row after a selection change;
// a full repaint is simplest and cheap enough at terminal scale
// (selection changes are mouse-move-rate, not per-character), so no
// dirty row range of the previous and current rectangle is tracked.
func (p *Pager) repaintVisible() {
	for row := 0; row < p.height; row++ {
		p.drawRow(row)
	}
}

// drawRow renders display row i: the logical line at that row (clipped
// to the horizontal scroll window), padded to the console width, with
// any cells the current selection covers repainted in the selection
// highlight attribute.
func (p *Pager) drawRow(row int) {
	lines := p.vp.Display()
	p.con.FillCells(0, row, p.width, ' ', console.Attr(vt.Default))
	if row >= len(lines) {
		return
	}
	line := lines[row]
	hs := p.vp.HScroll()
	clipped := vt.ClipToRange(line.Text, hs, hs+p.width, line.InitialDisplayColor, p.table, p.con.AutoWrap())
	p.con.WriteText(0, row, clipped)
	p.paintSelection(row, line)
}

// paintSelection repaints every cell on row that falls within the
// active selection's buffer-anchored range and the current horizontal
// scroll window, keeping the cell's character and drawing it in
// invertedAttr.
func (p *Pager) paintSelection(row int, line *logical.Line) {
	r, ok := p.sel.Range()
	if !ok {
		return
	}
	onStart := line.Phys == r.Start.Phys && line.LogicalIndex == r.Start.LogicalIndex
	onEnd := line.Phys == r.End.Phys && line.LogicalIndex == r.End.LogicalIndex
	if !onStart && !onEnd && !withinSelectedPhysicalSpan(r, line) {
		return
	}

	hs := p.vp.HScroll()
	left, right := 0, p.width+hs
	if onStart {
		left = r.Start.Col
	}
	if onEnd {
		right = r.End.Col
	}

	runes := vt.StripEscapes(line.Text)
	for col := left; col < right; col++ {
		x := col - hs
		if x < 0 || x >= p.width {
			continue
		}
		glyph := invertGlyph
		if col < len(runes) {
			glyph = runes[col]
		}
		p.con.FillCells(x, row, 1, glyph, console.Attr(invertedAttr))
	}
}

const invertGlyph = ' '

// invertedAttr is a fixed bright-white-on-navy highlight used for
// rendered (not-yet-copied) selection — internal/selection's copy path
// (internal/selection.ExtractText) is what actually reproduces each
// cell's real color for the clipboard; this is just the on-screen cue.
var invertedAttr = vt.MakeColor(0xF, 0x1)

// withinSelectedPhysicalSpan reports whether line falls strictly between
// the selection's start and end logical lines, ordered by physical line
// and then logical index (i.e. this whole logical line is selected, not
// just a prefix/suffix of it).
func withinSelectedPhysicalSpan(r selection.Range, line *logical.Line) bool {
	pos := selection.Point{Phys: line.Phys, LogicalIndex: line.LogicalIndex}
	start := selection.Point{Phys: r.Start.Phys, LogicalIndex: r.Start.LogicalIndex}
	end := selection.Point{Phys: r.End.Phys, LogicalIndex: r.End.LogicalIndex}
	return start.Less(pos) && pos.Less(end)
}
