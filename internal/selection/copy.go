package selection

import (
	"strings"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/logical"
	"github.com/pagerctl/more/internal/vt"
)

// ExtractText re-derives the logical lines under r by walking store
// from the start anchor's physical line forward, clips each one to the
// selected column range using vt.ClipToRange, and assembles the three
// representations spec.md §4.F requires: a VT form (per-line
// color-setting escape, clipped text, CRLF), a plain form (VT form
// with escapes stripped, trailing CRLF removed), and an HTML form
// converted from the VT form.
//
// Grounded on apps/texelterm/term_selection.go's buildSelectionTextLocked,
// which walks history lines start..end and clips the first/last line's
// columns the same way; the VT/plain/HTML triple itself is spec.md's
// addition over the teacher, which only ever produces plain text.
func ExtractText(store *linestore.Store, filterMode bool, matches vt.MatchSource, width int, autoWrap bool, r Range) (plain, html, vtForm string) {
	var vtOut strings.Builder

	storeNext := store.Next
	if filterMode {
		storeNext = store.NextFiltered
	}

	phys := r.Start.Phys
	logicalIdx := r.Start.LogicalIndex
	for phys != nil {
		total := logical.CountLogicalLinesOnPhysicalLine(phys, width, autoWrap, matches)
		lines := logical.Generate(phys, logicalIdx, 1, width, autoWrap, matches)
		if len(lines) != 1 {
			break
		}
		line := lines[0]

		left := 0
		if phys == r.Start.Phys && logicalIdx == r.Start.LogicalIndex {
			left = r.Start.Col
		}
		right := width
		atEnd := phys == r.End.Phys && logicalIdx == r.End.LogicalIndex
		if atEnd {
			right = r.End.Col
		}

		clipped := vt.ClipToRange(line.Text, left, right, line.InitialDisplayColor, matches, autoWrap)
		vtOut.Write(clipped)
		vtOut.WriteString("\r\n")

		if atEnd {
			break
		}

		logicalIdx++
		if logicalIdx >= total {
			phys = storeNext(phys)
			logicalIdx = 0
		}
	}

	vtForm = vtOut.String()
	plain = strings.TrimSuffix(string(vt.StripEscapes([]byte(vtForm))), "\r\n")
	html = htmlFromVT(vtForm)
	return plain, html, vtForm
}
