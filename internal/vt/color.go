// Package vt recognizes CSI-style color escapes in a byte stream, counts
// cells versus bytes, and computes the resulting text attribute from a
// sequence. It is the VT scanner described in spec.md §4.B.
package vt

import "strconv"

// Color is an 8-bit text attribute matching the legacy Windows console
// layout: bits 0-3 are the foreground, bits 4-7 the background. Each
// nibble is {intensity, red, green, blue} packed the way FOREGROUND_* /
// BACKGROUND_* console flags are: bit3=intensity, bit2=red, bit1=green,
// bit0=blue.
type Color uint8

const (
	bitBlue      = 0x1
	bitGreen     = 0x2
	bitRed       = 0x4
	bitIntensity = 0x8
)

// Default is light gray on black (legacy console default: FG=7, BG=0).
const Default Color = Color(7)

// Foreground returns the low nibble.
func (c Color) Foreground() uint8 { return uint8(c) & 0x0F }

// Background returns the high nibble.
func (c Color) Background() uint8 { return (uint8(c) >> 4) & 0x0F }

// MakeColor packs a foreground/background nibble pair into a Color.
func MakeColor(fg, bg uint8) Color {
	return Color((bg&0x0F)<<4 | (fg & 0x0F))
}

// WithForeground returns c with its foreground nibble replaced.
func (c Color) WithForeground(fg uint8) Color {
	return MakeColor(fg, c.Background())
}

// WithBackground returns c with its background nibble replaced.
func (c Color) WithBackground(bg uint8) Color {
	return MakeColor(c.Foreground(), bg)
}

// Swapped returns c with foreground and background exchanged (SGR 7).
func (c Color) Swapped() Color {
	return MakeColor(c.Background(), c.Foreground())
}

// ansiToLegacy converts a 3-bit ANSI color index (bit0=red, bit1=green,
// bit2=blue, per ECMA-48 SGR 30-37/40-47) to the legacy console nibble
// (bit0=blue, bit1=green, bit2=red) — ANSI and the legacy console encode
// red and blue in swapped bit positions.
var ansiToLegacy = [8]uint8{0, 4, 2, 6, 1, 5, 3, 7}

// finalColorFromEscapeParams applies a parsed SGR parameter list to an
// initial color, matching the semantics of final_color_from_escape in
// spec.md §4.B: SGR 0 resets to def; 30-37/40-47 and the bright 90-97/
// 100-107 variants set fg/bg; 1 sets fg intensity; 7 swaps fg/bg;
// unrecognised parameters leave the attribute unchanged.
func finalColorFromEscapeParams(initial, def Color, params []int) Color {
	c := initial
	if len(params) == 0 {
		params = []int{0}
	}
	for _, p := range params {
		switch {
		case p == 0:
			c = def
		case p == 1:
			c = c.WithForeground(c.Foreground() | bitIntensity)
		case p == 7:
			c = c.Swapped()
		case p >= 30 && p <= 37:
			legacy := ansiToLegacy[p-30]
			c = c.WithForeground(legacy | (c.Foreground() & bitIntensity))
		case p >= 40 && p <= 47:
			legacy := ansiToLegacy[p-40]
			c = c.WithBackground(legacy | (c.Background() & bitIntensity))
		case p >= 90 && p <= 97:
			legacy := ansiToLegacy[p-90]
			c = c.WithForeground(legacy | bitIntensity)
		case p >= 100 && p <= 107:
			legacy := ansiToLegacy[p-100]
			c = c.WithBackground(legacy | bitIntensity)
		}
		// Unrecognised parameters (e.g. 4 underline, 38/48 extended color)
		// are accepted by the scanner but leave the attribute unchanged:
		// this pager only tracks the 8-bit legacy attribute.
	}
	return c
}

// FinalColorFromEscape parses a CSI SGR sequence (the bytes between
// ESC '[' and the final 'm', inclusive of neither) and returns the
// resulting color. Malformed parameter text is treated as 0 (reset),
// matching the "no error surfaced" rule in spec.md §7 (ProtocolError).
func FinalColorFromEscape(initial Color, params string) Color {
	return finalColorFromEscapeParams(initial, Default, parseParams(params))
}

// FinalColorFromEscapeDefault is FinalColorFromEscape with an explicit
// configured default color (used for SGR 0).
func FinalColorFromEscapeDefault(initial, def Color, params string) Color {
	return finalColorFromEscapeParams(initial, def, parseParams(params))
}

func parseParams(s string) []int {
	if s == "" {
		return []int{0}
	}
	var out []int
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ';' {
			seg := s[start:i]
			if seg == "" {
				out = append(out, 0)
			} else if n, err := strconv.Atoi(seg); err == nil {
				out = append(out, n)
			} else {
				out = append(out, 0)
			}
			start = i + 1
		}
	}
	if len(out) == 0 {
		out = []int{0}
	}
	return out
}

// legacyToAnsi is the inverse of ansiToLegacy, used by
// StringToTextAttribute to render a legacy color as ANSI SGR parameters.
var legacyToAnsi = func() [8]uint8 {
	var t [8]uint8
	for ansi, legacy := range ansiToLegacy {
		t[legacy] = uint8(ansi)
	}
	return t
}()

// StringToTextAttribute renders c as a CSI SGR escape sequence that,
// applied to Default, reproduces c — used for the initial-color escape
// prefixed to each copied/exported line (spec.md §4.F).
func StringToTextAttribute(c Color) string {
	fg := c.Foreground()
	bg := c.Background()
	fgAnsi := legacyToAnsi[fg&0x7]
	bgAnsi := legacyToAnsi[bg&0x7]
	seq := "\x1b[0"
	if fg&bitIntensity != 0 {
		seq += ";1"
	}
	seq += ";" + strconv.Itoa(30+int(fgAnsi))
	seq += ";" + strconv.Itoa(40+int(bgAnsi))
	if bg&bitIntensity != 0 {
		// Legacy console background intensity has no direct SGR bright-
		// background equivalent in the 3-bit ANSI set used here; approximate
		// with the 100-107 bright-background range.
		seq += ";" + strconv.Itoa(100+int(bgAnsi))
	}
	seq += "m"
	return seq
}

// TextAttributeToColor parses the output of StringToTextAttribute back
// into a Color, so that FinalColorFromEscape(Default, StringToTextAttribute(c))
// round-trips to c for every representable c (spec.md §8 round-trip
// property).
func TextAttributeToColor(escape string) Color {
	params := escape
	params = trimEscape(params)
	return finalColorFromEscapeParams(Default, Default, parseParams(params))
}

func trimEscape(s string) string {
	const prefix = "\x1b["
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		s = s[len(prefix):]
	}
	if len(s) > 0 && s[len(s)-1] == 'm' {
		s = s[:len(s)-1]
	}
	return s
}
