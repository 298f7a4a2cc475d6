package vt

import "testing"

func TestStripEscapesRemovesSGR(t *testing.T) {
	line := []byte("\x1b[31mred\x1b[0m plain")
	got := string(StripEscapes(line))
	want := "red plain"
	if got != want {
		t.Fatalf("StripEscapes = %q, want %q", got, want)
	}
}

func TestStripEscapesPassesThroughPlainText(t *testing.T) {
	got := string(StripEscapes([]byte("no escapes here")))
	if got != "no escapes here" {
		t.Fatalf("StripEscapes changed plain text: %q", got)
	}
}
