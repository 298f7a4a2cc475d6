// Package logical splits a physical line into viewport-width logical
// lines, injecting highlight escapes for search matches and tracking
// carry-over match state across lines (spec.md §4.C).
package logical

import (
	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/vt"
)

// Line is one viewport row's worth of text derived from a physical
// line. It is produced on demand by Generate and is ephemeral: it
// either borrows a slice of its physical line's Contents, or owns an
// independently allocated buffer when Generated is true.
type Line struct {
	Phys         *linestore.PhysicalLine
	LogicalIndex int
	CharOffset   int
	Text         []byte

	InitialUserColor      vt.Color
	InitialDisplayColor   vt.Color
	CharsRemainingInMatch int
	MoreLogicalLines      bool

	// ExplicitNewlineRequired is true iff the last cell of Text is not
	// the last cell of the viewport row — the renderer must emit a
	// newline itself rather than rely on console auto-wrap.
	ExplicitNewlineRequired bool

	// Generated is true iff Text is an independently owned buffer
	// (highlight escapes were injected); false means Text borrows
	// directly from Phys.Contents.
	Generated bool
}

// walk scans an entire physical line segment by segment, calling record
// for every logical index whose zero-based index is in
// [recordFrom, recordFrom+recordCount). It returns the total number of
// logical lines the physical line decomposes into. Passing recordCount
// <= 0 records nothing and is used by CountLogicalLinesOnPhysicalLine.
func walk(phys *linestore.PhysicalLine, maxCells int, autoWrap bool, matches vt.MatchSource, recordFrom, recordCount int, record func(idx, charOffset int, res vt.Result, userColor, displayColor vt.Color, charsRemainingBefore int)) int {
	if maxCells <= 0 {
		maxCells = 1
	}

	offset := 0
	userColor := phys.InitialColor
	displayColor := phys.InitialColor
	charsRemaining := 0
	idx := 0

	for {
		remaining := phys.Contents[offset:]
		res := vt.Scan(remaining, maxCells, displayColor, userColor, charsRemaining, matches, autoWrap)

		if idx >= recordFrom && idx < recordFrom+recordCount {
			record(idx, offset, res, userColor, displayColor, charsRemaining)
		}

		offset += res.BytesConsumed
		userColor = res.FinalUserColor
		displayColor = res.FinalDisplayColor
		charsRemaining = res.CharsRemainingInMatch
		idx++

		if offset >= len(phys.Contents) {
			break
		}
	}

	return idx
}

// CountLogicalLinesOnPhysicalLine invokes the VT scanner in a loop,
// discarding output buffers, returning only the count. Used to jump
// within a physical line and to advance N logical lines through the
// store efficiently without materialising any text.
func CountLogicalLinesOnPhysicalLine(phys *linestore.PhysicalLine, maxCells int, autoWrap bool, matches vt.MatchSource) int {
	return walk(phys, maxCells, autoWrap, matches, 0, 0, nil)
}

// Generate produces up to count logical lines from phys, starting at
// firstLogicalIndex, by iteratively invoking the VT scanner over the
// remaining slice until count logical lines are produced or the slice
// is exhausted (spec.md §4.C).
func Generate(phys *linestore.PhysicalLine, firstLogicalIndex, count, maxCells int, autoWrap bool, matches vt.MatchSource) []*Line {
	if count <= 0 {
		return nil
	}

	var result []*Line
	total := walk(phys, maxCells, autoWrap, matches, firstLogicalIndex, count, func(idx, charOffset int, res vt.Result, userColor, displayColor vt.Color, charsRemainingBefore int) {
		remaining := phys.Contents[charOffset:]
		text := remaining[:res.BytesConsumed]
		generated := res.NeedsGeneratedBuffer
		if generated {
			text = res.GeneratedOutput
		}
		result = append(result, &Line{
			Phys:                    phys,
			LogicalIndex:            idx,
			CharOffset:              charOffset,
			Text:                    text,
			InitialUserColor:        userColor,
			InitialDisplayColor:     displayColor,
			CharsRemainingInMatch:   charsRemainingBefore,
			ExplicitNewlineRequired: res.ExplicitNewlineRequired,
			Generated:               generated,
		})
	})

	for _, line := range result {
		line.MoreLogicalLines = line.LogicalIndex+1 < total
	}
	return result
}
