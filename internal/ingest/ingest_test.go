package ingest

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/vt"
)

// testSource feeds a fixed string through Open, satisfying Source for
// tests without touching the filesystem.
type testSource struct{ text string }

func (s testSource) Name() string { return "<test>" }
func (s testSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.text)), nil
}

func TestHarnessAppendsLinesInOrder(t *testing.T) {
	store := linestore.New()
	h := NewHarness(store)
	h.Run([]Source{testSource{text: "line 1\nline 2\nline 3\n"}}, Options{})

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("harness did not finish within 2s")
	}
	if err := h.Err(); err != nil {
		t.Fatalf("unexpected ingest error: %v", err)
	}
	if store.TotalCount() != 3 {
		t.Fatalf("TotalCount = %d, want 3", store.TotalCount())
	}
	if string(store.Get(1).Contents) != "line 1" || string(store.Get(3).Contents) != "line 3" {
		t.Fatalf("unexpected line contents: %q / %q", store.Get(1).Contents, store.Get(3).Contents)
	}
}

func TestHarnessPropagatesEndOfLineColorAsNextInitialColor(t *testing.T) {
	store := linestore.New()
	h := NewHarness(store)
	// First line ends still inside red (no reset); second line should
	// inherit red as its initial_color.
	h.Run([]Source{testSource{text: "a\x1b[31mb\nc\n"}}, Options{})

	<-h.Done()
	if err := h.Err(); err != nil {
		t.Fatalf("unexpected ingest error: %v", err)
	}

	line2 := store.Get(2)
	if line2 == nil {
		t.Fatalf("expected a second line")
	}
	want := vt.FinalColorFromEscape(vt.Default, "31")
	if line2.InitialColor != want {
		t.Fatalf("line 2 InitialColor = %v, want %v (red, propagated from line 1's end color)", line2.InitialColor, want)
	}
}

func TestHarnessShutdownStopsFollowing(t *testing.T) {
	store := linestore.New()
	h := NewHarness(store)
	h.Run([]Source{testSource{text: "only line\n"}}, Options{WaitForMore: true, PollInterval: 20 * time.Millisecond})

	// Give it a moment to consume the one line and enter the follow-poll.
	time.Sleep(60 * time.Millisecond)
	h.Shutdown()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("harness did not exit after Shutdown while following")
	}
	if store.TotalCount() != 1 {
		t.Fatalf("TotalCount = %d, want 1", store.TotalCount())
	}
}
