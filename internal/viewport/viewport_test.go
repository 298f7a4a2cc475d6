package viewport

import (
	"bytes"
	"testing"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/logical"
	"github.com/pagerctl/more/internal/vt"
)

func fillStore(t *testing.T, n int) *linestore.Store {
	t.Helper()
	s := linestore.New()
	for i := 0; i < n; i++ {
		s.Append([]byte("line content here"), vt.Default)
	}
	return s
}

func snapshotTexts(lines []*logical.Line) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = append([]byte(nil), l.Text...)
	}
	return out
}

func TestAddNewLinesAtBottomFillsViewport(t *testing.T) {
	s := fillStore(t, 5)
	v := New(s, nil, 80, 3, true)

	upd := v.AddNewLinesAtBottom()
	if upd.Kind == UpdateNone {
		t.Fatalf("expected rows to be added")
	}
	if v.LinesInViewport() != 3 {
		t.Fatalf("LinesInViewport = %d, want 3", v.LinesInViewport())
	}
	if v.Display()[0].Phys.LineNumber != 1 {
		t.Fatalf("first displayed line should be physical line 1, got %d", v.Display()[0].Phys.LineNumber)
	}
}

func TestMoveDownThenMoveUpRestoresDisplay(t *testing.T) {
	s := fillStore(t, 20)
	v := New(s, nil, 80, 5, true)
	v.AddNewLinesAtBottom()

	before := snapshotTexts(v.Display())

	v.MoveDown(2)
	v.MoveUp(2)

	after := snapshotTexts(v.Display())
	if len(before) != len(after) {
		t.Fatalf("display length changed: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if !bytes.Equal(before[i], after[i]) {
			t.Fatalf("row %d differs after round-trip scroll: before=%q after=%q", i, before[i], after[i])
		}
	}
}

func TestMoveDownClampsAtEndOfBuffer(t *testing.T) {
	s := fillStore(t, 4)
	v := New(s, nil, 80, 3, true)
	v.AddNewLinesAtBottom()

	// Only 1 more logical line exists past the initial 3.
	upd := v.MoveDown(10)
	if upd.Kind == UpdateNone {
		t.Fatalf("expected some movement since at least one more line exists")
	}
	last := v.Display()[v.LinesInViewport()-1]
	if last.Phys.LineNumber != 4 {
		t.Fatalf("expected to clamp at physical line 4, got %d", last.Phys.LineNumber)
	}
}

func TestMoveUpClampsAtStartOfBuffer(t *testing.T) {
	s := fillStore(t, 10)
	v := New(s, nil, 80, 3, true)
	v.AddNewLinesAtBottom()
	v.MoveDown(5)

	upd := v.MoveUp(100)
	if upd.Kind == UpdateNone {
		t.Fatalf("expected movement toward the start")
	}
	if v.Display()[0].Phys.LineNumber != 1 {
		t.Fatalf("expected to clamp at physical line 1, got %d", v.Display()[0].Phys.LineNumber)
	}
}

func TestMoveLeftRightAdjustHScrollWithoutChangingDisplay(t *testing.T) {
	s := fillStore(t, 3)
	v := New(s, nil, 80, 3, true)
	v.AddNewLinesAtBottom()

	before := snapshotTexts(v.Display())
	v.MoveRight(10)
	if v.HScroll() != 10 {
		t.Fatalf("HScroll = %d, want 10", v.HScroll())
	}
	v.MoveLeft(4)
	if v.HScroll() != 6 {
		t.Fatalf("HScroll = %d, want 6", v.HScroll())
	}
	v.MoveLeft(100)
	if v.HScroll() != 0 {
		t.Fatalf("HScroll should clamp at 0, got %d", v.HScroll())
	}
	after := snapshotTexts(v.Display())
	for i := range before {
		if !bytes.Equal(before[i], after[i]) {
			t.Fatalf("horizontal scroll must not mutate display text, row %d before=%q after=%q", i, before[i], after[i])
		}
	}
}

func TestResizeSameWidthPreservesTopRows(t *testing.T) {
	s := fillStore(t, 20)
	v := New(s, nil, 80, 5, true)
	v.AddNewLinesAtBottom()
	first := v.Display()[0].Phys.LineNumber

	v.Resize(80, 8)
	if v.Display()[0].Phys.LineNumber != first {
		t.Fatalf("resize with unchanged width should preserve the top row; got %d, want %d", v.Display()[0].Phys.LineNumber, first)
	}
	if v.LinesInViewport() != 8 {
		t.Fatalf("LinesInViewport after growing resize = %d, want 8", v.LinesInViewport())
	}
}

func TestResizeWidthChangeRegeneratesFromAnchor(t *testing.T) {
	s := fillStore(t, 20)
	v := New(s, nil, 80, 5, true)
	v.AddNewLinesAtBottom()
	anchorLine := v.Display()[0].Phys.LineNumber

	v.Resize(40, 5)
	if v.LinesInViewport() == 0 {
		t.Fatalf("expected viewport to regenerate content after width change")
	}
	if v.Display()[0].Phys.LineNumber != anchorLine {
		t.Fatalf("regenerate should keep the same anchor physical line, got %d want %d", v.Display()[0].Phys.LineNumber, anchorLine)
	}
}

func TestScrolledChannelFiresOnMovement(t *testing.T) {
	s := fillStore(t, 10)
	v := New(s, nil, 80, 3, true)
	v.AddNewLinesAtBottom()

	select {
	case <-v.Scrolled():
	default:
		t.Fatalf("expected a scrolled notification after AddNewLinesAtBottom")
	}

	v.MoveDown(1)
	select {
	case <-v.Scrolled():
	default:
		t.Fatalf("expected a scrolled notification after MoveDown")
	}
}
