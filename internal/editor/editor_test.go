package editor

import (
	"context"
	"reflect"
	"testing"

	"luasense/internal/protocol"
)

func TestKindForType(t *testing.T) {
	tests := []struct {
		itemType string
		want     SuggestionKind
	}{
		{"function", KindFunction},
		{"method", KindFunction},
		{"class", KindClass},
		{"module", KindModule},
		{"instance", KindField},
		{"param", KindProperty},
		{"property", KindProperty},
		{"keyword", KindKeyword},
		{"statement", KindKeyword},
		{"", KindText},
		{"mystery", KindText},
	}
	for _, tt := range tests {
		if got := KindForType(tt.itemType); got != tt.want {
			t.Errorf("KindForType(%q) = %v, want %v", tt.itemType, got, tt.want)
		}
	}
}

func TestWordStart(t *testing.T) {
	tests := []struct {
		name     string
		lineText string
		column   int
		want     int
	}{
		{"mid word", "local count = 1", 11, 6},
		{"start of line", "print", 5, 0},
		{"after space", "x = ", 4, 4},
		{"after dot", "string.for", 10, 7},
		{"underscore word", "my_var", 6, 0},
		{"column past end", "ab", 10, 0},
		{"empty line", "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordStart(tt.lineText, tt.column); got != tt.want {
				t.Errorf("WordStart(%q, %d) = %d, want %d", tt.lineText, tt.column, got, tt.want)
			}
		})
	}
}

func TestSuggestionsFor(t *testing.T) {
	items := []protocol.CompletionItem{
		{Name: "format", Type: "function", Signature: "format(formatstring, ...)", Docstring: "Formats a string."},
		{Name: "find", Type: "function", Description: "string search"},
	}
	got := SuggestionsFor(items, "string.for", 10)
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(got))
	}
	want := ReplaceRange{StartColumn: 7, EndColumn: 10}
	for _, s := range got {
		if s.Range != want {
			t.Errorf("suggestion %q range = %+v, want %+v", s.Label, s.Range, want)
		}
	}
	if got[0].InsertText != "format" {
		t.Errorf("InsertText = %q, want fallback to name", got[0].InsertText)
	}
	if got[0].Detail != "format(formatstring, ...)" {
		t.Errorf("Detail = %q, want signature", got[0].Detail)
	}
	if got[1].Detail != "string search" {
		t.Errorf("Detail = %q, want description fallback", got[1].Detail)
	}
}

func TestSuggestionsForEmpty(t *testing.T) {
	if got := SuggestionsFor(nil, "x", 1); got != nil {
		t.Errorf("SuggestionsFor(nil) = %v, want nil", got)
	}
}

func TestMarkersFor(t *testing.T) {
	diags := []protocol.Diagnostic{
		{Line: 2, Column: 7, Message: "unexpected symbol", Severity: protocol.SeverityError},
		{Line: 5, Column: 1, Message: "undefined global 'foo'", Severity: protocol.SeverityWarning},
	}
	got := MarkersFor(diags)
	if len(got) != 2 {
		t.Fatalf("got %d markers, want 2", len(got))
	}
	if got[0].StartColumn != 7 || got[0].EndColumn != 8 {
		t.Errorf("marker span = [%d,%d), want one character wide at the diagnostic column",
			got[0].StartColumn, got[0].EndColumn)
	}
	if got[0].Severity != MarkerError || got[1].Severity != MarkerWarning {
		t.Errorf("severities = %v, %v", got[0].Severity, got[1].Severity)
	}
	if MarkersFor(nil) != nil {
		t.Error("MarkersFor(nil) should render nothing")
	}
}

func TestFormatHover(t *testing.T) {
	tests := []struct {
		name string
		info *protocol.HoverInfo
		want string
	}{
		{
			name: "header only",
			info: &protocol.HoverInfo{Name: "x", Type: "instance"},
			want: "**x** (instance)",
		},
		{
			name: "signature without docstring",
			info: &protocol.HoverInfo{Name: "foo", Type: "function", Signature: "foo()"},
			want: "**foo** (function)\n\nfoo()",
		},
		{
			name: "signature and docstring",
			info: &protocol.HoverInfo{Name: "foo", Type: "function", Signature: "foo(n)", Docstring: "Doubles n."},
			want: "**foo** (function)\n\nfoo(n)\n\nDoubles n.",
		},
		{
			name: "docstring only",
			info: &protocol.HoverInfo{Name: "print", Type: "function", Docstring: "Prints values."},
			want: "**print** (function)\n\nPrints values.",
		},
		{
			name: "nil",
			info: nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatHover(tt.info); got != tt.want {
				t.Errorf("FormatHover() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHoverForIsUntrusted(t *testing.T) {
	got := HoverFor(&protocol.HoverInfo{Name: "foo", Type: "function"})
	if got == nil {
		t.Fatal("HoverFor() = nil for non-nil info")
	}
	if got.Trusted {
		t.Error("hover content must not be trusted")
	}
	if HoverFor(nil) != nil {
		t.Error("HoverFor(nil) should render nothing")
	}
}

func TestLocationsFor(t *testing.T) {
	line, col := 3, 7
	defs := []protocol.DefinitionResult{
		{Name: "foo", Line: &line, Column: &col, Description: "function foo"},
		{Name: "print", Description: "builtin"},
	}
	got := LocationsFor(defs)
	if len(got) != 2 {
		t.Fatalf("got %d locations, want 2", len(got))
	}
	if !got[0].Resolved || got[0].Line != 3 || got[0].Column != 7 {
		t.Errorf("resolved location = %+v", got[0])
	}
	if got[1].Resolved {
		t.Errorf("builtin without position must be unresolved, got %+v", got[1])
	}
}

// stubAnalyzer returns canned results so provider tests need no worker.
type stubAnalyzer struct {
	diags []protocol.Diagnostic
	items []protocol.CompletionItem
	info  *protocol.HoverInfo
	defs  []protocol.DefinitionResult
}

func (s *stubAnalyzer) Analyze(context.Context, string) []protocol.Diagnostic { return s.diags }
func (s *stubAnalyzer) Complete(context.Context, string, int, int) []protocol.CompletionItem {
	return s.items
}
func (s *stubAnalyzer) Hover(context.Context, string, int, int) *protocol.HoverInfo { return s.info }
func (s *stubAnalyzer) Definitions(context.Context, string, int, int) []protocol.DefinitionResult {
	return s.defs
}

func TestProviderAdaptsResults(t *testing.T) {
	stub := &stubAnalyzer{
		diags: []protocol.Diagnostic{{Line: 1, Column: 1, Message: "bad", Severity: protocol.SeverityError}},
		items: []protocol.CompletionItem{{Name: "pairs", Type: "function"}},
		info:  &protocol.HoverInfo{Name: "pairs", Type: "function"},
	}
	p := NewProvider(stub)
	ctx := context.Background()

	if got := p.Markers(ctx, "x!"); len(got) != 1 || got[0].Message != "bad" {
		t.Errorf("Markers() = %+v", got)
	}

	code := "local x = pai\nreturn x"
	got := p.Suggestions(ctx, code, 1, 13)
	if len(got) != 1 {
		t.Fatalf("Suggestions() returned %d items", len(got))
	}
	wantRange := ReplaceRange{StartColumn: 10, EndColumn: 13}
	if !reflect.DeepEqual(got[0].Range, wantRange) {
		t.Errorf("replace range = %+v, want %+v", got[0].Range, wantRange)
	}

	if h := p.Hover(ctx, code, 1, 11); h == nil || h.Value != "**pairs** (function)" {
		t.Errorf("Hover() = %+v", h)
	}
	if locs := p.Definitions(ctx, code, 1, 11); locs != nil {
		t.Errorf("Definitions() = %+v, want nil for empty result", locs)
	}
}

func TestProviderRendersNothingOnEmptyResults(t *testing.T) {
	p := NewProvider(&stubAnalyzer{})
	ctx := context.Background()

	if got := p.Markers(ctx, "x = 1"); got != nil {
		t.Errorf("Markers() = %v, want nil", got)
	}
	if got := p.Suggestions(ctx, "x = 1", 1, 5); got != nil {
		t.Errorf("Suggestions() = %v, want nil", got)
	}
	if got := p.Hover(ctx, "x = 1", 1, 0); got != nil {
		t.Errorf("Hover() = %v, want nil", got)
	}
	if got := p.Definitions(ctx, "x = 1", 1, 0); got != nil {
		t.Errorf("Definitions() = %v, want nil", got)
	}
}
