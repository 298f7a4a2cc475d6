package console

import "testing"

func TestFakeFillCellsRecordsContent(t *testing.T) {
	f := NewFake(10, 5, true)
	f.FillCells(2, 1, 3, 'x', Attr(0x07))
	for x := 2; x < 5; x++ {
		c, ok := f.Cells[[2]int{x, 1}]
		if !ok || c.Ch != 'x' {
			t.Fatalf("cell (%d,1) = %+v, ok=%v, want 'x'", x, c, ok)
		}
	}
}

func TestFakeScrollRegionMovesCellsAndFillsVacated(t *testing.T) {
	f := NewFake(10, 5, true)
	f.FillCells(0, 0, 5, 'a', Attr(0x07))
	f.ScrollRegion(Rect{Left: 0, Top: 0, Right: 5, Bottom: 1}, 0, 1, ' ', Attr(0x07))

	if c := f.Cells[[2]int{2, 1}]; c.Ch != 'a' {
		t.Fatalf("expected row moved down to row 1, got %+v", c)
	}
	if c := f.Cells[[2]int{2, 0}]; c.Ch != ' ' {
		t.Fatalf("expected vacated row 0 filled with space, got %+v", c)
	}
}

func TestFakePollEventDeliversInjectedEvents(t *testing.T) {
	f := NewFake(80, 24, true)
	f.Inject(Event{Kind: EventKeyDown, Key: KeyEnter})

	ev, ok := f.PollEvent()
	if !ok || ev.Kind != EventKeyDown || ev.Key != KeyEnter {
		t.Fatalf("PollEvent = %+v, %v, want EventKeyDown/KeyEnter", ev, ok)
	}
}

func TestFakePollEventUnblocksOnClose(t *testing.T) {
	f := NewFake(80, 24, true)
	f.Close()

	if _, ok := f.PollEvent(); ok {
		t.Fatalf("expected ok=false after Close with no pending events")
	}
}

func TestFakeWriteTextRecordsCallsInOrder(t *testing.T) {
	f := NewFake(80, 24, true)
	f.WriteText(0, 0, []byte("hello"))
	f.WriteText(0, 1, []byte("world"))

	if len(f.Writes) != 2 || f.Writes[0].Text != "hello" || f.Writes[1].Text != "world" {
		t.Fatalf("Writes = %+v", f.Writes)
	}
}
