package linestore

import (
	"strings"
	"sync"
	"testing"

	"github.com/pagerctl/more/internal/vt"
)

func TestAppendAssignsStrictlyIncreasingLineNumbers(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		line := s.Append([]byte("x"), vt.Default)
		if line.LineNumber != int64(i+1) {
			t.Fatalf("line %d: LineNumber = %d, want %d", i, line.LineNumber, i+1)
		}
	}
	if s.TotalCount() != 5 {
		t.Fatalf("TotalCount = %d, want 5", s.TotalCount())
	}
}

func TestNextPrevTraversal(t *testing.T) {
	s := New()
	var appended []*PhysicalLine
	for i := 0; i < 3; i++ {
		appended = append(appended, s.Append([]byte("line"), vt.Default))
	}

	if got := s.Next(nil); got != appended[0] {
		t.Fatalf("Next(nil) should be the first line")
	}
	if got := s.Next(appended[0]); got != appended[1] {
		t.Fatalf("Next(first) should be the second line")
	}
	if got := s.Next(appended[2]); got != nil {
		t.Fatalf("Next(last) should be nil")
	}
	if got := s.Prev(appended[0]); got != nil {
		t.Fatalf("Prev(first) should be nil")
	}
	if got := s.Prev(appended[1]); got != appended[0] {
		t.Fatalf("Prev(second) should be the first line")
	}
}

func TestRecomputeFilterSubsequenceAndRenumbering(t *testing.T) {
	s := New()
	lines := []string{"foo", "bar", "foobar", "baz", "foo again"}
	for _, l := range lines {
		s.Append([]byte(l), vt.Default)
	}

	anchor := s.Get(3) // "foobar"
	nearest := s.RecomputeFilter(func(c []byte) bool {
		return strings.Contains(string(c), "foo")
	}, anchor)

	if s.FilteredCount() != 3 {
		t.Fatalf("FilteredCount = %d, want 3", s.FilteredCount())
	}
	if nearest == nil || nearest.LineNumber != 3 {
		t.Fatalf("expected the anchor itself to survive filtering, got %v", nearest)
	}

	var prevNum int64
	for i := int64(1); i <= 5; i++ {
		line := s.Get(i)
		if line.InFilteredList() {
			if line.FilteredLineNumber <= prevNum {
				t.Fatalf("FilteredLineNumber not strictly increasing at line %d", i)
			}
			prevNum = line.FilteredLineNumber
		}
	}

	first := s.NextFiltered(nil)
	if first == nil || first.LineNumber != 1 {
		t.Fatalf("first filtered line should be line 1 (\"foo\"), got %v", first)
	}
	second := s.NextFiltered(first)
	if second == nil || second.LineNumber != 3 {
		t.Fatalf("second filtered line should be line 3 (\"foobar\"), got %v", second)
	}
}

func TestRecomputeFilterFallsBackToNearestBefore(t *testing.T) {
	s := New()
	s.Append([]byte("match"), vt.Default)
	s.Append([]byte("nomatch"), vt.Default)
	s.Append([]byte("nomatch"), vt.Default)

	anchor := s.Get(3)
	nearest := s.RecomputeFilter(func(c []byte) bool {
		return string(c) == "match"
	}, anchor)
	if nearest == nil || nearest.LineNumber != 1 {
		t.Fatalf("expected fallback to the only surviving line, got %v", nearest)
	}
}

func TestConcurrentAppendIsRaceFree(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Append([]byte("x"), vt.Default)
			}
		}()
	}
	wg.Wait()
	if s.TotalCount() != 400 {
		t.Fatalf("TotalCount = %d, want 400", s.TotalCount())
	}
}

func TestDataAvailableSignalIsNonBlocking(t *testing.T) {
	s := New()
	// Append many times without ever draining the channel; it must never
	// block the appender (capacity-1, non-blocking send).
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Append([]byte("x"), vt.Default)
		}
		close(done)
	}()
	<-done
	select {
	case <-s.DataAvailable():
	default:
		t.Fatalf("expected at least one buffered signal")
	}
}
