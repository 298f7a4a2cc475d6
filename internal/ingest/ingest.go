// Package ingest is the external collaborator spec.md §4.G names the
// "ingest thread": it reads file, directory, or pipe input and appends
// physical lines to an internal/linestore.Store, computing each line's
// initial_color by scanning the previous line to end-of-line color
// (spec.md §6's ingester contract).
//
// Grounded on apps/texelterm/term.go's runPtyReaderLoop: a single
// goroutine owned by a sync.WaitGroup, reading in a loop, checking a
// one-shot stop channel between reads rather than mid-read — the same
// shutdown_event/ingest_thread_handle shape spec.md §4.G/§5 describes,
// adapted from "PTY output consumer" to "file/pipe/directory line
// reader" and from select-based multiplexed PTY+stop to a plain
// checked-between-reads loop, since a bufio.Scanner has no channel of
// its own to select on.
package ingest

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/vt"
)

// Source is one input the ingester reads from in sequence: a file, or
// standard input.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource reads a single file from disk.
type FileSource struct{ Path string }

func (f FileSource) Name() string             { return f.Path }
func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// StdinSource reads the process's standard input; Close is a no-op so
// the harness never closes os.Stdin out from under the process.
type StdinSource struct{}

func (StdinSource) Name() string               { return "<stdin>" }
func (StdinSource) Open() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil }

// Options configures one ingest run: spec.md §6's wait-for-more
// ingester flag. The recursive and basic-enumeration flags are applied
// earlier, by ExpandPaths.
type Options struct {
	// WaitForMore keeps re-reading the final source after EOF instead of
	// terminating, the way `tail -f` follows a growing file (spec.md's
	// -w flag). It has no effect on StdinSource, which is never seekable
	// past EOF.
	WaitForMore bool

	// PollInterval is how often WaitForMore retries after an EOF; zero
	// uses a 200ms default.
	PollInterval time.Duration
}

// Harness is the concurrency participant spec.md §4.G/§5 describes: one
// goroutine (the "ingest thread") appending to a shared store, a
// one-shot shutdown signal the consumer (the viewport thread) raises on
// exit, and an observable termination handle.
type Harness struct {
	store *linestore.Store

	shutdown     chan struct{}
	shutdownOnce sync.Once

	done chan struct{}
	err  error
}

// NewHarness creates a harness appending to store. Run starts the
// actual goroutine.
func NewHarness(store *linestore.Store) *Harness {
	return &Harness{
		store:    store,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Shutdown raises shutdown_event: idempotent, safe to call more than
// once or concurrently with Run's goroutine exiting on its own.
func (h *Harness) Shutdown() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
}

// Done is the ingest_thread_handle: it closes once the ingest goroutine
// has returned, whether from EOF, a fatal read error, or Shutdown.
func (h *Harness) Done() <-chan struct{} { return h.done }

// Err returns the fatal read error (spec.md §7 IngestError), if any,
// once Done has fired. It is nil on a clean EOF or a shutdown-induced
// exit.
func (h *Harness) Err() error { return h.err }

// Run starts the ingest goroutine over sources in order. It returns
// immediately; call Done to observe termination.
func (h *Harness) Run(sources []Source, opts Options) {
	go func() {
		defer close(h.done)
		h.err = h.ingestAll(sources, opts)
	}()
}

func (h *Harness) ingestAll(sources []Source, opts Options) error {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}

	var lastColor vt.Color = vt.Default
	for i, src := range sources {
		isLast := i == len(sources)-1
		follow := opts.WaitForMore && isLast
		if _, isStdin := src.(StdinSource); isStdin {
			follow = false
		}

		rc, err := src.Open()
		if err != nil {
			return err
		}
		next, err := h.ingestOne(rc, lastColor, follow, interval)
		closeErr := rc.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
		lastColor = next

		select {
		case <-h.shutdown:
			return nil
		default:
		}
	}
	return nil
}

// ingestOne reads newline-delimited lines from r, appending each to the
// store with the running end-of-line color as the next line's
// initial_color (spec.md §6). If follow is true, an EOF does not end
// the loop: it polls every interval for more data, the way `tail -f`
// follows a growing file, until shutdown_event fires.
func (h *Harness) ingestOne(r io.Reader, initialColor vt.Color, follow bool, interval time.Duration) (vt.Color, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	color := initialColor

	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			trimmed := line
			if trimmed[len(trimmed)-1] == '\n' {
				trimmed = trimmed[:len(trimmed)-1]
			}
			phys := h.store.Append(trimmed, color)
			color = endOfLineColor(phys.Contents, color)
		}

		if err == nil {
			select {
			case <-h.shutdown:
				return color, nil
			default:
			}
			continue
		}

		if !errors.Is(err, io.EOF) {
			return color, err
		}
		if !follow {
			return color, nil
		}

		select {
		case <-h.shutdown:
			return color, nil
		case <-time.After(interval):
		}
	}
}

// endOfLineColor runs the VT scanner over a full line with no cell
// budget and no match source to compute the color the line ends in —
// the initial_color the next line inherits (spec.md §6: "the ingester
// computes initial_color by running the VT scanner over each line to
// produce the end-of-line color").
func endOfLineColor(line []byte, initial vt.Color) vt.Color {
	res := vt.Scan(line, len(line), initial, initial, 0, nil, false)
	return res.FinalUserColor
}
