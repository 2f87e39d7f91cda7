package runtime

import (
	"context"
	"testing"

	"luasense/internal/protocol"
)

// newReadyAdapter boots a real Lua sandbox with the embedded analysis
// libraries installed.
func newReadyAdapter(t *testing.T) *Adapter {
	t.Helper()
	sb := NewLuaSandbox()
	t.Cleanup(func() { sb.Close() })

	a := NewAdapter(sb)
	if err := a.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return a
}

func TestAnalyzeReportsParseErrors(t *testing.T) {
	a := newReadyAdapter(t)

	diags := a.Analyze("local = 1\n")
	if len(diags) == 0 {
		t.Fatal("Analyze() on invalid input returned no diagnostics")
	}
	if diags[0].Severity != protocol.SeverityError {
		t.Errorf("severity = %q, want %q", diags[0].Severity, protocol.SeverityError)
	}

	if diags := a.Analyze("x = 1\n"); len(diags) != 0 {
		t.Errorf("Analyze() on valid input = %+v, want none", diags)
	}
}

func TestAnalyzeWarnsOnUndefinedGlobals(t *testing.T) {
	a := newReadyAdapter(t)

	diags := a.Analyze("undefinedfn()\nprint(\"hi\")\n")
	if len(diags) != 1 {
		t.Fatalf("Analyze() = %+v, want exactly one warning", diags)
	}
	d := diags[0]
	if d.Severity != protocol.SeverityWarning {
		t.Errorf("severity = %q, want %q", d.Severity, protocol.SeverityWarning)
	}
	if d.Line != 1 {
		t.Errorf("line = %d, want 1", d.Line)
	}
	if d.Message != "undefined global 'undefinedfn'" {
		t.Errorf("message = %q", d.Message)
	}
}

func TestAnalyzeKnowsDeclaredFunctions(t *testing.T) {
	a := newReadyAdapter(t)

	code := "local function helper(n)\n  return n + 1\nend\nhelper(2)\n"
	if diags := a.Analyze(code); len(diags) != 0 {
		t.Errorf("Analyze() = %+v, want none", diags)
	}
}

func TestCompletionsForBufferSymbols(t *testing.T) {
	a := newReadyAdapter(t)

	items := a.Completions("local foobar = 1\nfoo", 2, 3)
	found := false
	for _, item := range items {
		if item.Name == "foobar" {
			found = true
			if item.Type != "instance" {
				t.Errorf("foobar type = %q, want %q", item.Type, "instance")
			}
		}
	}
	if !found {
		t.Errorf("completion for local symbol missing; got %+v", items)
	}
}

func TestCompletionsForModuleMembers(t *testing.T) {
	a := newReadyAdapter(t)

	// Cursor right after "string.".
	items := a.Completions("x = string.", 1, 11)
	if len(items) == 0 {
		t.Fatal("no completions after module qualifier")
	}
	byName := make(map[string]protocol.CompletionItem, len(items))
	for _, item := range items {
		byName[item.Name] = item
	}

	format, ok := byName["format"]
	if !ok {
		t.Fatalf("string.format missing from %+v", items)
	}
	if format.Signature == "" {
		t.Error("string.format completion has no signature")
	}
	if format.Docstring == "" {
		t.Error("string.format completion has no docstring")
	}
	if format.InsertText != "format" {
		t.Errorf("InsertText = %q, want %q", format.InsertText, "format")
	}
}

func TestCompletionsIncludeKeywords(t *testing.T) {
	a := newReadyAdapter(t)

	items := a.Completions("retu", 1, 4)
	found := false
	for _, item := range items {
		if item.Name == "return" && item.Type == "keyword" {
			found = true
		}
	}
	if !found {
		t.Errorf("keyword completion missing; got %+v", items)
	}
}

func TestHoverLocalFunctionWithDoc(t *testing.T) {
	a := newReadyAdapter(t)

	code := "-- Doubles a number.\nlocal function double(n)\n  return n * 2\nend\ndouble(4)\n"
	// Cursor on "double" in the call on line 5.
	info := a.Hover(code, 5, 2)
	if info == nil {
		t.Fatal("Hover() = nil, want info for local function")
	}
	if info.Name != "double" {
		t.Errorf("name = %q, want %q", info.Name, "double")
	}
	if info.Type != "function" {
		t.Errorf("type = %q, want %q", info.Type, "function")
	}
	if info.Signature != "double(n)" {
		t.Errorf("signature = %q, want %q", info.Signature, "double(n)")
	}
	if info.Docstring != "Doubles a number." {
		t.Errorf("docstring = %q, want %q", info.Docstring, "Doubles a number.")
	}
}

func TestHoverBuiltinModuleMember(t *testing.T) {
	a := newReadyAdapter(t)

	// Cursor inside "format" of string.format.
	info := a.Hover(`x = string.format("%d", 1)`, 1, 13)
	if info == nil {
		t.Fatal("Hover() = nil, want built-in info")
	}
	if info.Name != "string.format" {
		t.Errorf("name = %q, want %q", info.Name, "string.format")
	}
	if info.Signature == "" || info.Docstring == "" {
		t.Errorf("built-in hover incomplete: %+v", info)
	}
}

func TestHoverNothingUnderCursor(t *testing.T) {
	a := newReadyAdapter(t)

	if info := a.Hover("x = 1 + 1\n", 1, 6); info != nil {
		t.Errorf("Hover() over operator = %+v, want nil", info)
	}
	if info := a.Hover("x = 1\n", 9, 0); info != nil {
		t.Errorf("Hover() past end of buffer = %+v, want nil", info)
	}
}

func TestDefinitionsForLocal(t *testing.T) {
	a := newReadyAdapter(t)

	code := "local foo = 1\nprint(foo)\n"
	// Cursor on "foo" inside print(foo).
	defs := a.Definitions(code, 2, 7)
	if len(defs) != 1 {
		t.Fatalf("Definitions() = %+v, want one result", defs)
	}
	def := defs[0]
	if def.Name != "foo" {
		t.Errorf("name = %q, want %q", def.Name, "foo")
	}
	if def.Line == nil || *def.Line != 1 {
		t.Errorf("line = %v, want 1", def.Line)
	}
	if def.Column == nil || *def.Column != 7 {
		t.Errorf("column = %v, want 7", def.Column)
	}
}

func TestDefinitionsForBuiltinHaveNoPosition(t *testing.T) {
	a := newReadyAdapter(t)

	defs := a.Definitions("print(1)\n", 1, 2)
	if len(defs) != 1 {
		t.Fatalf("Definitions() = %+v, want one result", defs)
	}
	if defs[0].Line != nil || defs[0].Column != nil {
		t.Errorf("built-in definition has a position: %+v", defs[0])
	}
}
