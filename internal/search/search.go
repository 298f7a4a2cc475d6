// Package search maintains up to N colored search patterns, locates the
// next/previous match in a line, and drives the line store's filtered
// sublist when filter-to-search mode is on (spec.md §4.D).
//
// The teacher indexes scrollback with an async, disk-backed SQLite FTS5
// index (apps/texelterm/parser/search_index.go); this engine is
// intentionally the opposite shape — synchronous and in-memory — because
// spec.md requires byte-offset-accurate leftmost matches computed in the
// same pass as line wrapping, and declares persisted state out of scope.
package search

import (
	"strings"
	"sync"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/vt"
)

// MaxPatterns is N from spec.md §3: the pattern table holds at most this
// many active entries.
const MaxPatterns = 10

// palette assigns each color index a distinct, readable legacy-console
// attribute for search highlighting: bright foregrounds on black for the
// first six, dark foregrounds on bright white for the last four.
var palette = [MaxPatterns]vt.Color{
	vt.MakeColor(0x9, 0), // bright blue
	vt.MakeColor(0xA, 0), // bright green
	vt.MakeColor(0xB, 0), // bright cyan
	vt.MakeColor(0xC, 0), // bright red
	vt.MakeColor(0xD, 0), // bright magenta
	vt.MakeColor(0xE, 0), // bright yellow
	vt.MakeColor(0x1, 0xF), // blue on bright white
	vt.MakeColor(0x4, 0xF), // red on bright white
	vt.MakeColor(0x2, 0xF), // green on bright white
	vt.MakeColor(0x0, 0xF), // black on bright white
}

// Entry is one occupied slot of the pattern table.
type Entry struct {
	Pattern    string // original-case pattern, as the user typed it
	ColorIndex int    // 0-based; selects both highlight color and Ctrl+N binding
	lower      string
}

// Table is the compact array of up to MaxPatterns {pattern, color_index}
// entries described in spec.md §3/§4.D. Active entries always occupy a
// contiguous prefix: Free compacts trailing entries down to preserve
// that invariant.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewTable creates an empty pattern table.
func NewTable() *Table { return &Table{} }

// IndexForColor returns the active slot for colorIndex if one exists,
// otherwise the first free slot — which, because active entries are a
// contiguous prefix, is always len(entries). Returns -1 if the table is
// full and colorIndex has no existing entry.
func (t *Table) IndexForColor(colorIndex int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.indexForColorLocked(colorIndex)
}

func (t *Table) indexForColorLocked(colorIndex int) int {
	for i, e := range t.entries {
		if e.ColorIndex == colorIndex {
			return i
		}
	}
	if len(t.entries) < MaxPatterns {
		return len(t.entries)
	}
	return -1
}

// Set assigns pattern to colorIndex's slot, creating the slot if the
// color has none yet. Returns the occupied slot and ok=false if the
// table was already full and colorIndex is new.
func (t *Table) Set(colorIndex int, pattern string) (slot int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexForColorLocked(colorIndex)
	if idx < 0 {
		return -1, false
	}
	e := Entry{Pattern: pattern, ColorIndex: colorIndex, lower: strings.ToLower(pattern)}
	if idx == len(t.entries) {
		t.entries = append(t.entries, e)
	} else {
		t.entries[idx] = e
	}
	return idx, true
}

// Free removes the entry at slot and compacts trailing entries down so
// active entries remain a contiguous prefix.
func (t *Table) Free(slot int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slot < 0 || slot >= len(t.entries) {
		return
	}
	t.entries = append(t.entries[:slot], t.entries[slot+1:]...)
}

// Active returns a snapshot of the occupied entries.
func (t *Table) Active() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ColorForSlot returns the highlight color assigned to slot, satisfying
// vt.MatchSource.
func (t *Table) ColorForSlot(slot int) vt.Color {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if slot < 0 || slot >= len(t.entries) {
		return vt.Default
	}
	return palette[t.entries[slot].ColorIndex%len(palette)]
}

// FindNextMatch returns the case-insensitive, leftmost first-occurrence
// of any active pattern in slice, breaking ties by lowest slot index.
func (t *Table) FindNextMatch(slice []byte) (offset, slot int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findNextMatchLocked(slice, 0)
}

func (t *Table) findNextMatchLocked(slice []byte, from int) (offset, slot int, ok bool) {
	if from > len(slice) {
		from = len(slice)
	}
	lower := strings.ToLower(string(slice[from:]))
	best := -1
	bestSlot := -1
	for i, e := range t.entries {
		if e.Pattern == "" {
			continue
		}
		if idx := strings.Index(lower, e.lower); idx >= 0 {
			if best == -1 || idx < best {
				best = idx
				bestSlot = i
			}
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return best + from, bestSlot, true
}

// NextMatchAfter satisfies vt.MatchSource: it is FindNextMatch anchored
// at byteOffset, reporting the matched byte range.
func (t *Table) NextMatchAfter(line []byte, byteOffset int) (start, end, slot int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	offset, bestSlot, found := t.findNextMatchLocked(line, byteOffset)
	if !found {
		return 0, 0, 0, false
	}
	return offset, offset + len(t.entries[bestSlot].Pattern), bestSlot, true
}

// Predicate returns the filter predicate for linestore.Store.RecomputeFilter:
// a line survives iff at least one active pattern matches it (spec.md §8
// invariant 5).
func (t *Table) Predicate() func([]byte) bool {
	return func(contents []byte) bool {
		_, _, ok := t.FindNextMatch(contents)
		return ok
	}
}

// NextLineWithMatch walks the total list forward from after (or the
// head, if after is nil) looking for a line that matches — any active
// pattern if matchAny is true, or only colorIndex's pattern otherwise.
// It returns the first surviving line and an approximate logical-line
// distance to it, capped at maxDistance, so the viewport can decide
// between scrolling and a full repaint.
func NextLineWithMatch(store *linestore.Store, after *linestore.PhysicalLine, table *Table, matchAny bool, colorIndex int, maxLogicalLinesPerPhysical, maxDistance int) (*linestore.PhysicalLine, int) {
	return walk(store.Next, after, table, matchAny, colorIndex, maxLogicalLinesPerPhysical, maxDistance)
}

// PreviousLineWithMatch is NextLineWithMatch's mirror, walking backward.
func PreviousLineWithMatch(store *linestore.Store, before *linestore.PhysicalLine, table *Table, matchAny bool, colorIndex int, maxLogicalLinesPerPhysical, maxDistance int) (*linestore.PhysicalLine, int) {
	return walk(store.Prev, before, table, matchAny, colorIndex, maxLogicalLinesPerPhysical, maxDistance)
}

func walk(step func(*linestore.PhysicalLine) *linestore.PhysicalLine, from *linestore.PhysicalLine, table *Table, matchAny bool, colorIndex int, approxLinesPerPhysical, maxDistance int) (*linestore.PhysicalLine, int) {
	if approxLinesPerPhysical <= 0 {
		approxLinesPerPhysical = 1
	}
	cur := from
	distance := 0
	for distance < maxDistance {
		cur = step(cur)
		if cur == nil {
			return nil, distance
		}
		distance += approxLinesPerPhysical
		if matches(table, cur.Contents, matchAny, colorIndex) {
			if distance > maxDistance {
				distance = maxDistance
			}
			return cur, distance
		}
	}
	return nil, maxDistance
}

func matches(table *Table, contents []byte, matchAny bool, colorIndex int) bool {
	if matchAny {
		_, _, ok := table.FindNextMatch(contents)
		return ok
	}
	for _, e := range table.Active() {
		if e.ColorIndex != colorIndex {
			continue
		}
		single := &Table{entries: []Entry{e}}
		_, _, ok := single.FindNextMatch(contents)
		return ok
	}
	return false
}
