// Package pager wires the core packages (internal/linestore,
// internal/vt, internal/logical, internal/search, internal/viewport,
// internal/selection, internal/clipboard, internal/statusline,
// internal/ingest) into the single event loop spec.md §4.G/§5
// describes: the viewport thread that multiplexes input, data-available,
// ingest-completion and timer events, drives the viewport state machine,
// and issues minimal console updates.
package pager

import "fmt"

// ConsoleError is spec.md §7's fatal taxonomy member: the console could
// not be acquired (e.g. stdout is not a terminal) or failed during
// startup. It is the only error type in this taxonomy that is fatal —
// cmd/more checks for it before entering the event loop and exits
// non-zero without ever constructing a Pager.
type ConsoleError struct{ Err error }

func (e *ConsoleError) Error() string { return fmt.Sprintf("console: %v", e.Err) }
func (e *ConsoleError) Unwrap() error { return e.Err }

// IngestErrorReport carries an *ingest.Harness's terminal error (spec.md
// §7 IngestError) out of Pager.Run for cmd/more to print after the
// console has been restored to cooked mode — reported, per spec.md §7,
// without disturbing interactive display if any lines were produced
// before the failure.
type IngestErrorReport struct{ Err error }

func (e *IngestErrorReport) Error() string { return fmt.Sprintf("ingest: %v", e.Err) }
func (e *IngestErrorReport) Unwrap() error { return e.Err }

// AllocationError mirrors spec.md §7's AllocationError: surfaced as the
// viewport's out_of_memory flag rather than a returned error, since the
// operation that hit it is expected to degrade in place, not abort the
// program. Pager does not read that flag and the status line does not
// show it; this type is defined only so the taxonomy has a named Go type
// to point to from DESIGN.md.
type AllocationError struct{}

func (AllocationError) Error() string { return "allocation failed; viewport degraded" }

// ProtocolError corresponds to spec.md §7's VT-parsing error class:
// malformed escape sequences are treated as literal bytes by
// internal/vt.Scan and never surfaced as a Go error at all, so this type
// exists only as a documentation anchor — nothing in the tree ever
// constructs one.
type ProtocolError struct{}

func (ProtocolError) Error() string { return "malformed escape sequence (never raised)" }
