package editor

import (
	"context"
	"strings"

	"luasense/internal/protocol"
)

// Analyzer is the provider's view of the client bridge: four best-effort
// analysis calls whose empty results mean "nothing to show".
type Analyzer interface {
	Analyze(ctx context.Context, code string) []protocol.Diagnostic
	Complete(ctx context.Context, code string, line, column int) []protocol.CompletionItem
	Hover(ctx context.Context, code string, line, column int) *protocol.HoverInfo
	Definitions(ctx context.Context, code string, line, column int) []protocol.DefinitionResult
}

// Provider answers the widget's extension-point callbacks by calling
// through the bridge and adapting the results. Lines are 1-based, columns
// 0-based throughout.
type Provider struct {
	analyzer Analyzer
}

// NewProvider creates a provider backed by the given analyzer.
func NewProvider(a Analyzer) *Provider {
	return &Provider{analyzer: a}
}

// Markers returns inline markers for the document, typically invoked on
// content change.
func (p *Provider) Markers(ctx context.Context, code string) []Marker {
	return MarkersFor(p.analyzer.Analyze(ctx, code))
}

// Suggestions returns the completion list at the cursor.
func (p *Provider) Suggestions(ctx context.Context, code string, line, column int) []Suggestion {
	items := p.analyzer.Complete(ctx, code, line, column)
	return SuggestionsFor(items, lineAt(code, line), column)
}

// Hover returns the rendered hover block at the cursor, or nil.
func (p *Provider) Hover(ctx context.Context, code string, line, column int) *HoverContent {
	return HoverFor(p.analyzer.Hover(ctx, code, line, column))
}

// Definitions returns the definition targets for the symbol at the cursor.
func (p *Provider) Definitions(ctx context.Context, code string, line, column int) []Location {
	return LocationsFor(p.analyzer.Definitions(ctx, code, line, column))
}

// lineAt extracts the 1-based line from code, or "" when out of range.
func lineAt(code string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(code, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
