package selection

import (
	"html"
	"strings"

	"github.com/pagerctl/more/internal/vt"
)

// legacyConsoleRGB maps a 4-bit legacy console color nibble to an RGB
// triple, the standard 16-color Windows console palette (spec.md §4.B
// documents the attribute format but not a display palette, since it
// has no HTML export goal of its own — this table exists only to give
// the supplemented HTML clipboard form something to render with).
var legacyConsoleRGB = [16][3]uint8{
	{0, 0, 0}, {0, 0, 128}, {0, 128, 0}, {0, 128, 128},
	{128, 0, 0}, {128, 0, 128}, {128, 128, 0}, {192, 192, 192},
	{128, 128, 128}, {0, 0, 255}, {0, 255, 0}, {0, 255, 255},
	{255, 0, 0}, {255, 0, 255}, {255, 255, 0}, {255, 255, 255},
}

func rgbHex(nibble uint8) string {
	c := legacyConsoleRGB[nibble&0xF]
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 7)
	b[0] = '#'
	b[1], b[2] = hexDigits[c[0]>>4], hexDigits[c[0]&0xF]
	b[3], b[4] = hexDigits[c[1]>>4], hexDigits[c[1]&0xF]
	b[5], b[6] = hexDigits[c[2]>>4], hexDigits[c[2]&0xF]
	return string(b)
}

// htmlFromVT converts a VT-form string (color escapes plus text) to an
// HTML fragment: each run of text between color changes becomes a
// <span> styled with the foreground/background implied by the legacy
// console attribute, newlines become <br>. There is no third-party
// ANSI-to-HTML converter anywhere in the example pack (the nearest,
// danielgatis/go-ansicode, is a terminal emulation core used via a
// local replace directive in its own source repo, not an HTML
// exporter) — recorded in DESIGN.md as a justified stdlib path.
func htmlFromVT(vtForm string) string {
	var out strings.Builder
	out.WriteString(`<pre style="font-family:monospace">`)

	color := vt.Default
	spanOpen := false
	closeSpan := func() {
		if spanOpen {
			out.WriteString("</span>")
			spanOpen = false
		}
	}
	openSpan := func(c vt.Color) {
		closeSpan()
		fg, bg := c.Foreground(), c.Background()
		out.WriteString(`<span style="color:`)
		out.WriteString(rgbHex(fg))
		out.WriteString(`;background-color:`)
		out.WriteString(rgbHex(bg))
		out.WriteString(`">`)
		spanOpen = true
	}

	openSpan(color)

	b := []byte(vtForm)
	i := 0
	for i < len(b) {
		if b[i] == '\r' {
			i++
			continue
		}
		if b[i] == '\n' {
			out.WriteString("<br>")
			i++
			continue
		}
		if b[i] == 0x1b && i+1 < len(b) && b[i+1] == '[' {
			end := i + 2
			for end < len(b) && ((b[end] >= '0' && b[end] <= '9') || b[end] == ';') {
				end++
			}
			if end < len(b) {
				if b[end] == 'm' {
					color = vt.FinalColorFromEscapeDefault(color, vt.Default, string(b[i+2:end]))
					openSpan(color)
				}
				i = end + 1
				continue
			}
		}
		r := b[i]
		out.WriteString(html.EscapeString(string(r)))
		i++
	}
	closeSpan()
	out.WriteString("</pre>")
	return out.String()
}
