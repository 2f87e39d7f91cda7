package editor

import "luasense/internal/protocol"

// SuggestionKind is the presentation category of a completion entry.
type SuggestionKind int

const (
	KindText SuggestionKind = iota
	KindFunction
	KindClass
	KindModule
	KindField
	KindProperty
	KindKeyword
)

// String returns a human-readable name for the kind.
func (k SuggestionKind) String() string {
	switch k {
	case KindFunction:
		return "Function"
	case KindClass:
		return "Class"
	case KindModule:
		return "Module"
	case KindField:
		return "Field"
	case KindProperty:
		return "Property"
	case KindKeyword:
		return "Keyword"
	default:
		return "Text"
	}
}

// KindForType maps an item's reported type to a presentation category.
// Unrecognized types fall back to plain text.
func KindForType(itemType string) SuggestionKind {
	switch itemType {
	case "function", "method":
		return KindFunction
	case "class":
		return KindClass
	case "module":
		return KindModule
	case "instance":
		return KindField
	case "param", "property":
		return KindProperty
	case "keyword", "statement":
		return KindKeyword
	default:
		return KindText
	}
}

// ReplaceRange is the span of the current line a suggestion replaces, from
// the start of the word under the cursor to the cursor itself. Columns are
// 0-based.
type ReplaceRange struct {
	StartColumn int
	EndColumn   int
}

// Suggestion is one entry in the widget's completion list.
type Suggestion struct {
	Label         string
	Kind          SuggestionKind
	Detail        string
	Documentation string
	InsertText    string
	Range         ReplaceRange
}

// WordStart returns the column where the identifier ending at column
// begins. A cursor not touching an identifier yields column itself, making
// the replace range empty.
func WordStart(lineText string, column int) int {
	if column > len(lineText) {
		column = len(lineText)
	}
	if column < 0 {
		return 0
	}
	start := column
	for start > 0 && isWordByte(lineText[start-1]) {
		start--
	}
	return start
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// SuggestionsFor converts completion items into widget suggestions, sharing
// one replace range computed from the word boundary at the cursor.
func SuggestionsFor(items []protocol.CompletionItem, lineText string, column int) []Suggestion {
	if len(items) == 0 {
		return nil
	}
	rng := ReplaceRange{StartColumn: WordStart(lineText, column), EndColumn: column}
	suggestions := make([]Suggestion, 0, len(items))
	for _, item := range items {
		insert := item.InsertText
		if insert == "" {
			insert = item.Name
		}
		detail := item.Signature
		if detail == "" {
			detail = item.Description
		}
		suggestions = append(suggestions, Suggestion{
			Label:         item.Name,
			Kind:          KindForType(item.Type),
			Detail:        detail,
			Documentation: item.Docstring,
			InsertText:    insert,
			Range:         rng,
		})
	}
	return suggestions
}
