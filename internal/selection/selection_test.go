package selection

import (
	"testing"
	"time"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/vt"
)

func twoLinePoints(t *testing.T) (a, b *linestore.PhysicalLine) {
	t.Helper()
	s := linestore.New()
	a = s.Append([]byte("hello world"), vt.Default)
	b = s.Append([]byte("second line"), vt.Default)
	return a, b
}

func lookupFor(lines map[*linestore.PhysicalLine]string) LineLookup {
	return func(p Point) []rune {
		return []rune(lines[p.Phys])
	}
}

func TestSingleClickDragSelectsRange(t *testing.T) {
	a, b := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world", b: "second line"})
	m := New(lookup, 10)

	m.Start(Point{Phys: a, Col: 2}, 0, Single)
	m.Update(Point{Phys: b, Col: 3}, 1)

	r, ok := m.Range()
	if !ok {
		t.Fatalf("expected an active range after drag")
	}
	if r.Start.Phys != a || r.Start.Col != 2 {
		t.Fatalf("unexpected start: %+v", r.Start)
	}
	if r.End.Phys != b || r.End.Col != 3 {
		t.Fatalf("unexpected end: %+v", r.End)
	}
}

func TestDoubleClickSelectsWord(t *testing.T) {
	a, _ := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world"})
	m := New(lookup, 10)

	m.Start(Point{Phys: a, Col: 7}, 0, Double) // 'w' in "world"
	r, ok := m.Range()
	if !ok {
		t.Fatalf("expected a word selection")
	}
	if r.Start.Col != 6 || r.End.Col != 11 {
		t.Fatalf("word range = [%d,%d), want [6,11)", r.Start.Col, r.End.Col)
	}
}

func TestDoubleClickOnBreakCharSelectsNothing(t *testing.T) {
	a, _ := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world"})
	m := New(lookup, 10)

	m.Start(Point{Phys: a, Col: 5}, 0, Double) // the space
	if _, ok := m.Range(); ok {
		t.Fatalf("clicking a break character should not produce a selection")
	}
}

func TestTripleClickSelectsWholeLine(t *testing.T) {
	a, _ := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world"})
	m := New(lookup, 10)

	m.Start(Point{Phys: a, Col: 3}, 0, Triple)
	r, ok := m.Range()
	if !ok {
		t.Fatalf("expected a line selection")
	}
	if r.Start.Col != 0 || r.End.Col != len("hello world") {
		t.Fatalf("line range = [%d,%d), want [0,%d)", r.Start.Col, r.End.Col, len("hello world"))
	}
}

func TestRepeatedClickAtSamePointWithinTimeoutEscalates(t *testing.T) {
	a, _ := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world"})
	m := New(lookup, 10)

	p := Point{Phys: a, Col: 1}
	m.Start(p, 0, Single)
	m.Finish(p, 0)
	m.Start(p, 0, Single) // second click at the same point: should escalate to word-select
	r, ok := m.Range()
	if !ok {
		t.Fatalf("expected escalation to a word selection")
	}
	if r.Start.Col != 0 || r.End.Col != 5 {
		t.Fatalf("expected word 'hello' selected, got [%d,%d)", r.Start.Col, r.End.Col)
	}
}

func TestFinishSingleClickWithNoDragClearsSelection(t *testing.T) {
	a, _ := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world"})
	m := New(lookup, 10)

	p := Point{Phys: a, Col: 4}
	m.Start(p, 0, Single)
	ok := m.Finish(p, 0)
	if ok {
		t.Fatalf("a zero-width single-click selection should not be reported as a copy")
	}
	if m.State() != Idle {
		t.Fatalf("state after an empty single-click finish = %v, want Idle", m.State())
	}
}

func TestCancelClearsSelection(t *testing.T) {
	a, b := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world", b: "second line"})
	m := New(lookup, 10)

	m.Start(Point{Phys: a, Col: 0}, 0, Single)
	m.Update(Point{Phys: b, Col: 4}, 1)
	m.Cancel()

	if _, ok := m.Range(); ok {
		t.Fatalf("expected no range after Cancel")
	}
	if m.State() != Idle {
		t.Fatalf("state after Cancel = %v, want Idle", m.State())
	}
}

func TestAutoScrollTicksWhileDraggingInEdgeZone(t *testing.T) {
	a, b := twoLinePoints(t)
	lookup := lookupFor(map[*linestore.PhysicalLine]string{a: "hello world", b: "second line"})
	m := New(lookup, 5)

	m.Start(Point{Phys: a, Col: 0}, 2, Single)
	m.Update(Point{Phys: b, Col: 0}, 0) // row 0 is within the default edge zone of 2

	select {
	case delta := <-m.Ticks():
		if delta >= 0 {
			t.Fatalf("expected an upward (negative) scroll tick near the top edge, got %d", delta)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected at least one auto-scroll tick within 2s")
	}
	m.Finish(Point{Phys: b, Col: 0}, 0)
}
