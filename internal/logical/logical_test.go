package logical

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/vt"
)

func phys(text string) *linestore.PhysicalLine {
	return &linestore.PhysicalLine{Contents: []byte(text), LineNumber: 1, InitialColor: vt.Default}
}

func TestEmptyPhysicalLineYieldsOneEmptyLogicalLine(t *testing.T) {
	lines := Generate(phys(""), 0, 10, 80, true, nil)
	if len(lines) != 1 {
		t.Fatalf("got %d logical lines, want 1", len(lines))
	}
	if len(lines[0].Text) != 0 {
		t.Fatalf("expected empty text, got %q", lines[0].Text)
	}
	if lines[0].MoreLogicalLines {
		t.Fatalf("a single empty line should not report more logical lines")
	}
}

func TestScenarioS1HelloWorld(t *testing.T) {
	lines := Generate(phys("hello world"), 0, 10, 80, true, nil)
	if len(lines) != 1 {
		t.Fatalf("got %d logical lines, want 1", len(lines))
	}
	if string(lines[0].Text) != "hello world" {
		t.Fatalf("text = %q, want %q", lines[0].Text, "hello world")
	}
	if !lines[0].ExplicitNewlineRequired {
		t.Fatalf("S1 requires explicit_newline_required = TRUE (length 11 < 80)")
	}
}

func TestScenarioS2Wrapping200As(t *testing.T) {
	p := phys(strings.Repeat("A", 200))
	lines := Generate(p, 0, 10, 80, true, nil)
	if len(lines) != 3 {
		t.Fatalf("got %d logical lines, want 3", len(lines))
	}
	wantLens := []int{80, 80, 40}
	for i, l := range lines {
		if len(l.Text) != wantLens[i] {
			t.Errorf("line %d length = %d, want %d", i, len(l.Text), wantLens[i])
		}
	}
	if lines[0].ExplicitNewlineRequired || lines[1].ExplicitNewlineRequired {
		t.Errorf("first two lines should have explicit_newline_required = !auto_wrap = false")
	}
	if !lines[2].ExplicitNewlineRequired {
		t.Errorf("last (short) line must require an explicit newline")
	}
	if lines[0].MoreLogicalLines != true || lines[1].MoreLogicalLines != true {
		t.Errorf("first two lines must report more logical lines following")
	}
	if lines[2].MoreLogicalLines {
		t.Errorf("last line must not report more logical lines following")
	}
}

func TestScenarioS3ColorAcrossEscape(t *testing.T) {
	p := phys("A\x1b[31mB\x1b[0mC")
	lines := Generate(p, 0, 10, 80, true, nil)
	if len(lines) != 1 {
		t.Fatalf("got %d logical lines, want 1", len(lines))
	}
	l := lines[0]
	if !bytes.Equal(l.Text, p.Contents) {
		t.Fatalf("text = %q, want exactly the input bytes %q", l.Text, p.Contents)
	}
	if l.InitialUserColor != vt.Default {
		t.Fatalf("initial_user_color must be default")
	}
}

func TestInvariant1OffsetsPartitionContents(t *testing.T) {
	p := phys(strings.Repeat("hello ", 50))
	total := CountLogicalLinesOnPhysicalLine(p, 20, true, nil)
	lines := Generate(p, 0, total, 20, true, nil)
	if len(lines) != total {
		t.Fatalf("Generate produced %d lines, CountLogicalLinesOnPhysicalLine said %d", len(lines), total)
	}
	offset := 0
	for i, l := range lines {
		if l.CharOffset != offset {
			t.Fatalf("line %d: CharOffset = %d, want %d (no gaps/overlap)", i, l.CharOffset, offset)
		}
		offset += len(l.Text)
	}
	if offset != len(p.Contents) {
		t.Fatalf("partition covers %d bytes, want %d", offset, len(p.Contents))
	}
}

func TestInvariant2ConcatenationWithoutHighlightsEqualsContents(t *testing.T) {
	// With no search matches, no highlight escapes are ever injected, so
	// every logical line borrows directly from Contents and the
	// concatenation trivially equals Contents.
	p := phys(strings.Repeat("line of text ", 30))
	total := CountLogicalLinesOnPhysicalLine(p, 15, true, nil)
	lines := Generate(p, 0, total, 15, true, nil)
	var buf bytes.Buffer
	for _, l := range lines {
		buf.Write(l.Text)
	}
	if !bytes.Equal(buf.Bytes(), p.Contents) {
		t.Fatalf("concatenation mismatch")
	}
}

func TestCharsRemainingInMatchCarriesAcrossBoundary(t *testing.T) {
	// "MATCHXXXXX": a 5-cell match starting at offset 0, wrapped at width 3,
	// so the match must carry 2 cells into the second logical line.
	p := phys("MATCHxxxxx")
	m := constantMatch{start: 0, end: 5, color: vt.MakeColor(0, 1)}
	lines := Generate(p, 0, 10, 3, true, m)
	if len(lines) < 2 {
		t.Fatalf("expected at least 2 logical lines")
	}
	if lines[1].CharsRemainingInMatch == 0 {
		t.Fatalf("expected the match to carry into the second logical line")
	}
	if lines[1].InitialDisplayColor == lines[1].InitialUserColor {
		t.Fatalf("a nonzero carry implies display color differs from user color at line start")
	}
}

type constantMatch struct {
	start, end int
	color      vt.Color
}

func (m constantMatch) NextMatchAfter(line []byte, byteOffset int) (int, int, int, bool) {
	if byteOffset <= m.start {
		return m.start, m.end, 0, true
	}
	return 0, 0, 0, false
}
func (m constantMatch) ColorForSlot(slot int) vt.Color { return m.color }
