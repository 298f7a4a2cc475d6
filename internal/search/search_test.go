package search

import (
	"testing"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/vt"
)

func TestSetAndIndexForColorCompaction(t *testing.T) {
	tb := NewTable()
	slot0, ok := tb.Set(0, "foo")
	if !ok || slot0 != 0 {
		t.Fatalf("first Set: slot=%d ok=%v, want 0/true", slot0, ok)
	}
	slot1, ok := tb.Set(1, "bar")
	if !ok || slot1 != 1 {
		t.Fatalf("second Set: slot=%d ok=%v, want 1/true", slot1, ok)
	}

	// Re-setting an existing color reuses its slot.
	again, ok := tb.Set(0, "foobaz")
	if !ok || again != 0 {
		t.Fatalf("re-Set existing color: slot=%d ok=%v, want 0/true", again, ok)
	}

	tb.Free(0)
	if got := tb.IndexForColor(1); got != 0 {
		t.Fatalf("after freeing slot 0, color 1 should compact to slot 0, got %d", got)
	}
	if len(tb.Active()) != 1 {
		t.Fatalf("expected 1 active entry after Free, got %d", len(tb.Active()))
	}
}

func TestTableFillsToMaxPatterns(t *testing.T) {
	tb := NewTable()
	for i := 0; i < MaxPatterns; i++ {
		if _, ok := tb.Set(i, "p"); !ok {
			t.Fatalf("Set(%d) should succeed within capacity", i)
		}
	}
	if _, ok := tb.Set(MaxPatterns, "overflow"); ok {
		t.Fatalf("Set beyond MaxPatterns should fail")
	}
}

func TestFindNextMatchLeftmostAndSlotTieBreak(t *testing.T) {
	tb := NewTable()
	tb.Set(0, "bar")
	tb.Set(1, "foo")

	// "foo" appears first in the text even though it was added second.
	offset, slot, ok := tb.FindNextMatch([]byte("xxfooxxbarxx"))
	if !ok || offset != 2 || slot != 1 {
		t.Fatalf("got offset=%d slot=%d ok=%v, want 2/1/true", offset, slot, ok)
	}

	// Two patterns matching at the same offset: the lower slot wins.
	tie := NewTable()
	tie.Set(0, "fo")
	tie.Set(1, "foo")
	offset, slot, ok = tie.FindNextMatch([]byte("xxfooxx"))
	if !ok || offset != 2 || slot != 0 {
		t.Fatalf("tie: got offset=%d slot=%d ok=%v, want 2/0/true", offset, slot, ok)
	}
}

func TestFindNextMatchCaseInsensitive(t *testing.T) {
	tb := NewTable()
	tb.Set(0, "FOO")
	offset, _, ok := tb.FindNextMatch([]byte("xxfooxx"))
	if !ok || offset != 2 {
		t.Fatalf("expected a case-insensitive match at offset 2, got offset=%d ok=%v", offset, ok)
	}
}

func TestScenarioS5TwoPatternsAdjacentMatches(t *testing.T) {
	tb := NewTable()
	tb.Set(0, "foo")
	tb.Set(1, "bar")

	line := []byte("xfoobary")
	r := vt.Scan(line, 80, vt.Default, vt.Default, 0, tb, true)
	if !r.NeedsGeneratedBuffer {
		t.Fatalf("expected generated output with injected highlights")
	}
	out := string(r.GeneratedOutput)
	fooEsc := vt.StringToTextAttribute(tb.ColorForSlot(0))
	barEsc := vt.StringToTextAttribute(tb.ColorForSlot(1))
	if idx := indexOf(out, fooEsc); idx == -1 {
		t.Fatalf("expected the foo-color escape in output %q", out)
	}
	if idx := indexOf(out, barEsc); idx == -1 {
		t.Fatalf("expected the bar-color escape in output %q", out)
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestPredicateMatchesInvariant5(t *testing.T) {
	tb := NewTable()
	tb.Set(0, "needle")
	pred := tb.Predicate()
	if !pred([]byte("a needle in a haystack")) {
		t.Fatalf("predicate should match a line containing the pattern")
	}
	if pred([]byte("nothing here")) {
		t.Fatalf("predicate should not match a line without the pattern")
	}
}

func TestRecomputeFilterUsesPredicate(t *testing.T) {
	s := linestore.New()
	s.Append([]byte("alpha"), vt.Default)
	s.Append([]byte("beta"), vt.Default)
	s.Append([]byte("alphabeta"), vt.Default)

	tb := NewTable()
	tb.Set(0, "alpha")
	s.RecomputeFilter(tb.Predicate(), nil)
	if s.FilteredCount() != 2 {
		t.Fatalf("FilteredCount = %d, want 2", s.FilteredCount())
	}
}

func TestNextLineWithMatchCapsDistance(t *testing.T) {
	s := linestore.New()
	for i := 0; i < 10; i++ {
		s.Append([]byte("nothing to see"), vt.Default)
	}
	s.Append([]byte("the match is here"), vt.Default)

	tb := NewTable()
	tb.Set(0, "match")

	line, dist := NextLineWithMatch(s, nil, tb, true, 0, 1, 5)
	if line != nil {
		t.Fatalf("expected no match within the capped distance, got line %v", line)
	}
	if dist != 5 {
		t.Fatalf("distance = %d, want capped at 5", dist)
	}

	line, dist = NextLineWithMatch(s, nil, tb, true, 0, 1, 20)
	if line == nil || line.LineNumber != 11 {
		t.Fatalf("expected to find line 11, got %v", line)
	}
	if dist != 11 {
		t.Fatalf("distance = %d, want 11", dist)
	}
}
