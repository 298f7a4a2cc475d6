package vt

import "unicode/utf8"

// MatchSource lets the scanner ask "does a search match begin at or after
// this offset in this slice?" without vt depending on the search package.
// Offsets are byte offsets into the slice passed to Scan, matching
// PhysicalLine.Contents being a byte slice (spec.md §3).
type MatchSource interface {
	// NextMatchAfter returns the next match at or after byteOffset within
	// line, or ok=false if no active pattern matches anywhere after it.
	NextMatchAfter(line []byte, byteOffset int) (start, end, slot int, ok bool)
	// ColorForSlot returns the highlight color assigned to a pattern slot.
	ColorForSlot(slot int) Color
}

// Result is everything logical_line_length (spec.md §4.B) reports about
// one scan.
type Result struct {
	BytesConsumed           int
	CellsConsumed           int
	GeneratedOutput         []byte // non-nil iff NeedsGeneratedBuffer
	NeedsGeneratedBuffer    bool
	FinalUserColor          Color
	FinalDisplayColor       Color
	ExplicitNewlineRequired bool
	CharsRemainingInMatch   int
	LineEnd                 bool // true iff the scan consumed the rest of slice
}

func isParamByte(b byte) bool { return (b >= '0' && b <= '9') || b == ';' }
func isFinalByte(b byte) bool { return b >= 0x40 && b <= 0x7e }

// findCSIEnd returns the index of a CSI sequence's final byte starting at
// slice[i] == ESC, slice[i+1] == '[', or -1 if no final byte is found
// (a malformed/truncated escape, handled per spec.md §7 ProtocolError by
// falling back to literal-byte treatment).
func findCSIEnd(slice []byte, i int) int {
	j := i + 2
	for j < len(slice) && isParamByte(slice[j]) {
		j++
	}
	if j < len(slice) && isFinalByte(slice[j]) {
		return j
	}
	return -1
}

// Scan is the VT scanner's core primitive (logical_line_length in
// spec.md §4.B). It walks slice, recognising CSI SGR escapes (zero
// cells), counting printable cells against maxCells, and consulting
// matches for search highlight injection. It never mutates slice; when
// a highlight must be injected it builds and returns a fresh buffer.
func Scan(slice []byte, maxCells int, initialDisplayColor, initialUserColor Color, charsRemainingInMatch int, matches MatchSource, autoWrap bool) Result {
	userColor := initialUserColor
	displayColor := initialDisplayColor
	matchRemaining := charsRemainingInMatch

	var out []byte
	needsGen := false
	ensureGen := func(i int) {
		if !needsGen {
			needsGen = true
			out = append(out, slice[:i]...)
		}
	}

	cells := 0
	i := 0
	for i < len(slice) && (cells < maxCells || (slice[i] == 0x1b && i+1 < len(slice) && slice[i+1] == '[' && findCSIEnd(slice, i) >= 0)) {
		if slice[i] == 0x1b && i+1 < len(slice) && slice[i+1] == '[' {
			end := findCSIEnd(slice, i)
			if end >= 0 {
				if needsGen {
					out = append(out, slice[i:end+1]...)
				}
				if slice[end] == 'm' {
					userColor = FinalColorFromEscapeDefault(userColor, Default, string(slice[i+2:end]))
					if matchRemaining == 0 {
						displayColor = userColor
					}
				}
				i = end + 1
				continue
			}
			// Malformed: fall through and treat the ESC byte literally.
		}

		r, size := utf8.DecodeRune(slice[i:])
		if size <= 0 {
			size = 1
		}
		_ = r

		if matchRemaining == 0 && matches != nil {
			if mstart, mend, slot, ok := matches.NextMatchAfter(slice, i); ok && mstart == i {
				ensureGen(i)
				color := matches.ColorForSlot(slot)
				out = append(out, []byte(StringToTextAttribute(color))...)
				displayColor = color
				matchRemaining = utf8.RuneCount(slice[mstart:mend])
			}
		}

		if needsGen {
			out = append(out, slice[i:i+size]...)
		}

		if matchRemaining > 0 {
			matchRemaining--
			if matchRemaining == 0 {
				ensureGen(i + size)
				out = append(out, []byte(StringToTextAttribute(userColor))...)
				displayColor = userColor
			}
		}

		i += size
		cells++
	}

	// A logical line needs an explicit newline unless it filled the last
	// column of an auto-wrapping console, in which case the console's own
	// wrap supplies the break (spec.md §4.B/§4.C, scenario S2).
	explicitNewline := !(cells == maxCells && autoWrap)

	return Result{
		BytesConsumed:           i,
		CellsConsumed:           cells,
		GeneratedOutput:         out,
		NeedsGeneratedBuffer:    needsGen,
		FinalUserColor:          userColor,
		FinalDisplayColor:       displayColor,
		ExplicitNewlineRequired: explicitNewline,
		CharsRemainingInMatch:   matchRemaining,
		LineEnd:                 i >= len(slice),
	}
}
