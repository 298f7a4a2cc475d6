// Package linestore owns the ordered physical-line list and its parallel
// filtered sublist, shared between the ingest producer and the viewport
// consumer under a single mutex (spec.md §4.A).
package linestore

import (
	"sync"

	"github.com/pagerctl/more/internal/vt"
)

// PhysicalLine is one line of input text as produced by the ingester, up
// to (but not including) a newline. It is immutable once appended.
//
// Contents is a slice of a backing buffer; Go's garbage collector keeps
// that backing array alive for as long as any slice of it (including a
// logical line borrowing from it) is reachable, which is what spec.md §3
// calls a "reference-counted buffer" — no manual refcount field exists
// here, the GC already gives us that guarantee.
type PhysicalLine struct {
	Contents     []byte
	LineNumber   int64
	InitialColor vt.Color

	// FilteredLineNumber is the 1-based position of this line within the
	// filtered sublist, or 0 when the line is not in the filtered list
	// (no RecomputeFilter has run yet, or the line didn't match the last
	// one). RecomputeFilter is the only writer, so the value is left as
	// is when the caller stops using the filtered list.
	FilteredLineNumber int64
}

// InFilteredList reports whether this line currently belongs to the
// filtered sublist.
func (p *PhysicalLine) InFilteredList() bool { return p.FilteredLineNumber > 0 }

// Store is the thread-safe, append-only line list described in spec.md
// §4.A. It never evicts: line_number is strictly increasing and never
// reused, so the backing slice index is always LineNumber-1.
type Store struct {
	mu       sync.RWMutex
	lines    []*PhysicalLine
	filtered []*PhysicalLine

	// dataAvailable replaces the source's mutex+auto-reset-event pair
	// (spec.md §9 redesign flag) with a buffered, non-blocking-send
	// channel: a missed signal is harmless because the consumer always
	// re-checks TotalCount on wake, exactly as the auto-reset event's
	// "missed edges are harmless" invariant required.
	dataAvailable chan struct{}
}

// New creates an empty line store.
func New() *Store {
	return &Store{
		dataAvailable: make(chan struct{}, 1),
	}
}

// DataAvailable signals once per call to Append (best-effort; a consumer
// that is already awake when the signal arrives does not need it, and
// any consumer that is not yet awake sees the buffered value). It is
// never closed.
func (s *Store) DataAvailable() <-chan struct{} {
	return s.dataAvailable
}

func (s *Store) notify() {
	select {
	case s.dataAvailable <- struct{}{}:
	default:
	}
}

// Append allocates a physical line over contents, links it at the tail,
// and assigns the next line_number. The caller owns contents and must
// not mutate it afterwards — Append keeps the slice, it does not copy.
func (s *Store) Append(contents []byte, initialColor vt.Color) *PhysicalLine {
	s.mu.Lock()
	line := &PhysicalLine{
		Contents:     contents,
		LineNumber:   int64(len(s.lines)) + 1,
		InitialColor: initialColor,
	}
	s.lines = append(s.lines, line)
	s.mu.Unlock()

	s.notify()
	return line
}

// Next returns the line immediately after after in list order, or nil at
// the tail. after == nil returns the first line.
func (s *Store) Next(after *PhysicalLine) *PhysicalLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := 0
	if after != nil {
		idx = int(after.LineNumber)
	}
	if idx < 0 || idx >= len(s.lines) {
		return nil
	}
	return s.lines[idx]
}

// Prev returns the line immediately before before in list order, or nil
// at the head.
func (s *Store) Prev(before *PhysicalLine) *PhysicalLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if before == nil {
		return nil
	}
	idx := int(before.LineNumber) - 2
	if idx < 0 || idx >= len(s.lines) {
		return nil
	}
	return s.lines[idx]
}

// Get returns the line with the given 1-based line number, or nil.
func (s *Store) Get(lineNumber int64) *PhysicalLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := lineNumber - 1
	if idx < 0 || idx >= int64(len(s.lines)) {
		return nil
	}
	return s.lines[idx]
}

// NextFiltered returns the line immediately after after within the
// filtered sublist, or nil past the end.
func (s *Store) NextFiltered(after *PhysicalLine) *PhysicalLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := 0
	if after != nil {
		idx = int(after.FilteredLineNumber)
	}
	if idx < 0 || idx >= len(s.filtered) {
		return nil
	}
	return s.filtered[idx]
}

// PrevFiltered returns the line immediately before before within the
// filtered sublist, or nil before the start.
func (s *Store) PrevFiltered(before *PhysicalLine) *PhysicalLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if before == nil {
		return nil
	}
	idx := int(before.FilteredLineNumber) - 2
	if idx < 0 || idx >= len(s.filtered) {
		return nil
	}
	return s.filtered[idx]
}

// RecomputeFilter walks the total list and rebuilds the filtered
// sublist, keeping only lines for which matches returns true, and
// renumbering FilteredLineNumber as a strictly increasing 1-based
// sequence. It returns the filtered line nearest to anchor that
// survived filtering (preferring anchor itself, then the nearest
// surviving line at or after it, then the nearest before it), so the
// viewport can keep its anchor roughly in place across a filter change.
func (s *Store) RecomputeFilter(matches func(contents []byte) bool, anchor *PhysicalLine) *PhysicalLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filtered = s.filtered[:0]
	var anchorLineNumber int64 = -1
	if anchor != nil {
		anchorLineNumber = anchor.LineNumber
	}

	var nearestAtOrAfter, nearestBefore *PhysicalLine
	for _, line := range s.lines {
		if matches(line.Contents) {
			s.filtered = append(s.filtered, line)
			line.FilteredLineNumber = int64(len(s.filtered))
			if anchorLineNumber >= 0 {
				if line.LineNumber >= anchorLineNumber && nearestAtOrAfter == nil {
					nearestAtOrAfter = line
				}
				if line.LineNumber <= anchorLineNumber {
					nearestBefore = line
				}
			}
		} else {
			line.FilteredLineNumber = 0
		}
	}

	if nearestAtOrAfter != nil {
		return nearestAtOrAfter
	}
	return nearestBefore
}

// TotalCount returns the number of lines in the unfiltered list.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// FilteredCount returns the number of lines in the filtered sublist.
func (s *Store) FilteredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filtered)
}
