// Package main is a command-line harness for the Lua analysis worker. It
// reads a Lua source file, spawns a worker, and prints diagnostics plus
// optional completion, hover and definition results at a cursor position.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"luasense/internal/bridge"
	"luasense/internal/editor"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

type options struct {
	path    string
	line    int
	column  int
	hasPos  bool
	timeout time.Duration
	verbose bool
}

func run() int {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	source, err := os.ReadFile(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	code := string(source)

	logger := zap.NewNop()
	if opts.verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to build logger: %v\n", err)
			return 1
		}
		defer logger.Sync() //nolint:errcheck
	}

	b := bridge.New(bridge.WithLogger(logger))
	if err := b.Spawn(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer b.Terminate()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	if err := b.WaitReady(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: runtime not ready: %v\n", err)
		return 1
	}

	provider := editor.NewProvider(b)
	printMarkers(provider.Markers(ctx, code))
	if opts.hasPos {
		printSuggestions(provider.Suggestions(ctx, code, opts.line, opts.column))
		printHover(provider.Hover(ctx, code, opts.line, opts.column))
		printLocations(provider.Definitions(ctx, code, opts.line, opts.column))
	}
	return 0
}

func printMarkers(markers []editor.Marker) {
	if len(markers) == 0 {
		fmt.Println("No diagnostics.")
		return
	}
	fmt.Printf("Diagnostics (%d):\n", len(markers))
	for _, m := range markers {
		fmt.Printf("  %d:%d [%s] %s\n", m.Line, m.StartColumn, m.Severity, m.Message)
	}
}

func printSuggestions(suggestions []editor.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Printf("\nCompletions (%d):\n", len(suggestions))
	for _, s := range suggestions {
		if s.Detail != "" {
			fmt.Printf("  %-10s %s  %s\n", s.Kind, s.Label, s.Detail)
			continue
		}
		fmt.Printf("  %-10s %s\n", s.Kind, s.Label)
	}
}

func printHover(h *editor.HoverContent) {
	if h == nil {
		return
	}
	fmt.Printf("\nHover:\n%s\n", h.Value)
}

func printLocations(locs []editor.Location) {
	if len(locs) == 0 {
		return
	}
	fmt.Printf("\nDefinitions (%d):\n", len(locs))
	for _, l := range locs {
		if l.Resolved {
			fmt.Printf("  %s at %d:%d  %s\n", l.Name, l.Line, l.Column, l.Description)
			continue
		}
		fmt.Printf("  %s  %s\n", l.Name, l.Description)
	}
}

func parseFlags() (options, error) {
	opts := options{timeout: 30 * time.Second}
	var pos string
	var showVersion bool

	flag.StringVar(&pos, "pos", "", "Cursor position as line:column (1-based line, 0-based column)")
	flag.DurationVar(&opts.timeout, "timeout", opts.timeout, "Overall deadline for startup and analysis")
	flag.BoolVar(&opts.verbose, "v", false, "Enable verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "luasense - Lua source analysis\n\n")
		fmt.Fprintf(os.Stderr, "Usage: luasense [options] file.lua\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  luasense script.lua             Print diagnostics\n")
		fmt.Fprintf(os.Stderr, "  luasense -pos 3:10 script.lua   Completions, hover, definitions at the cursor\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("luasense %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("expected exactly one Lua file argument")
	}
	opts.path = flag.Arg(0)

	if pos != "" {
		line, column, err := parsePos(pos)
		if err != nil {
			return options{}, err
		}
		opts.line, opts.column, opts.hasPos = line, column, true
	}
	return opts, nil
}

func parsePos(pos string) (line, column int, err error) {
	parts := strings.SplitN(pos, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid position %q (want line:column)", pos)
	}
	line, err = strconv.Atoi(parts[0])
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid line in position %q", pos)
	}
	column, err = strconv.Atoi(parts[1])
	if err != nil || column < 0 {
		return 0, 0, fmt.Errorf("invalid column in position %q", pos)
	}
	return line, column, nil
}
