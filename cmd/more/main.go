// Command more is an interactive terminal pager: it streams text from
// files, directories, or standard input into a memory-backed line
// buffer while concurrently presenting a scrollable viewport of that
// buffer, with multi-pattern incremental search, filter-to-matches
// mode, mouse selection, and clipboard export (spec.md §1).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/pagerctl/more/internal/clipboard"
	"github.com/pagerctl/more/internal/console"
	"github.com/pagerctl/more/internal/ingest"
	"github.com/pagerctl/more/internal/linestore"
	"github.com/pagerctl/more/internal/pager"
)

const usage = `usage: more [-b] [-dd] [-s] [-w] [file ...]

Flags:
  -b        basic enumeration of directory arguments (no recursion)
  -s        recurse into directory arguments
  -w        wait for more data after EOF (follow a growing file)
  -dd       debug display: redraw the whole viewport on every change
  -license  show license information
  -?        show this help
`

const noticeText = `more is provided as-is, with no warranty of any kind. See the project
repository for source and distribution terms.`

func main() {
	basic := flag.Bool("b", false, "basic enumeration of directory arguments")
	recursive := flag.Bool("s", false, "recurse into directory arguments")
	waitForMore := flag.Bool("w", false, "wait for more data after EOF")
	debugDisplay := flag.Bool("dd", false, "debug display: redraw entire viewport on every change")
	showLicense := flag.Bool("license", false, "show license and exit")
	showHelp := flag.Bool("?", false, "show help and exit")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *showHelp {
		flag.Usage()
		return
	}
	if *showLicense {
		fmt.Println(noticeText)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "more: standard output is not a terminal")
		os.Exit(1)
	}

	sources, err := resolveSources(flag.Args(), *recursive, *basic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "more: %v\n", err)
		os.Exit(1)
	}

	store := linestore.New()
	harness := ingest.NewHarness(store)
	harness.Run(sources, ingest.Options{WaitForMore: *waitForMore})

	con, err := newConsole()
	if err != nil {
		fmt.Fprintf(os.Stderr, "more: %v\n", err)
		os.Exit(1)
	}

	clip := clipboard.Multi{Sinks: []clipboard.Sink{
		clipboard.OSSink{},
		clipboard.HTMLSink{},
		clipboard.TerminalSink{W: os.Stdout},
	}}

	p := pager.New(con, store, harness, clip, pager.Config{DebugDisplay: *debugDisplay})
	if err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "more: %v\n", err)
		os.Exit(1)
	}
}

// resolveSources turns the CLI's positional path arguments into ingest
// sources: stdin when none are given, otherwise each argument expanded
// per -s/-b (spec.md §6's ingester contract, SPEC_FULL.md §5's directory
// enumerator).
func resolveSources(args []string, recursive, basic bool) ([]ingest.Source, error) {
	if len(args) == 0 {
		return []ingest.Source{ingest.StdinSource{}}, nil
	}
	return ingest.ExpandPaths(args, recursive, basic)
}

// newConsole acquires the real terminal console. Acquisition failure is
// spec.md §7's fatal ConsoleError: the program exits with a non-zero
// code before entering the event loop, as §7 requires.
func newConsole() (console.Console, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, &pager.ConsoleError{Err: err}
	}
	con, err := console.NewTcellConsole(screen, true)
	if err != nil {
		return nil, &pager.ConsoleError{Err: err}
	}
	return con, nil
}

func init() {
	log.SetFlags(0)
	log.SetPrefix("more: ")
}
