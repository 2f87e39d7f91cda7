package protocol

// Severity classifies a diagnostic.
type Severity string

// Diagnostic severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single problem found in a source buffer.
// Line is 1-based. Column is reported exactly as the parser emits it
// (1-based for the Lua parser) and is not renormalized by the protocol.
type Diagnostic struct {
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// CompletionItem is a single completion candidate.
// Signature is the first available signature or "". Docstring has common
// leading indentation stripped and surrounding whitespace trimmed, or "".
type CompletionItem struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Signature   string `json:"signature"`
	Docstring   string `json:"docstring"`
	InsertText  string `json:"insertText"`
}

// HoverInfo describes the symbol under the cursor.
type HoverInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Docstring   string `json:"docstring"`
	Signature   string `json:"signature"`
}

// DefinitionResult is one declaration site of the symbol under the cursor.
// Line and Column are nil when the declaration has no known position
// (for example, interpreter built-ins).
type DefinitionResult struct {
	Name        string `json:"name"`
	Line        *int   `json:"line"`
	Column      *int   `json:"column"`
	Description string `json:"description"`
}
