package vt

import "unicode/utf8"

// StripEscapes decodes line into its printable runes, discarding any CSI
// SGR escapes. The result is indexed by cell, since spec.md's non-goals
// exclude grapheme-width measurement (one codepoint is always one cell) —
// so rune index equals cell column. Used both to derive the plain-text
// clipboard representation from a VT-form line (spec.md §4.F) and to
// locate word boundaries for double-click selection on a rendered row.
func StripEscapes(line []byte) []rune {
	var out []rune
	i := 0
	for i < len(line) {
		if line[i] == 0x1b && i+1 < len(line) && line[i+1] == '[' {
			if end := findCSIEnd(line, i); end >= 0 {
				i = end + 1
				continue
			}
		}
		r, size := utf8.DecodeRune(line[i:])
		if size <= 0 {
			size = 1
		}
		out = append(out, r)
		i += size
	}
	return out
}
