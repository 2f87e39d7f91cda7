package runtime

import "strings"

// Helpers for reading the loosely-typed values the sandbox returns.

// asSlice normalizes a sandbox return value to a slice. An empty Lua table
// converts to an empty map; both shapes mean "no results".
func asSlice(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func intPtr(n int) *int {
	return &n
}

// CleanDocstring normalizes a raw docstring: common leading indentation
// across its lines is stripped and surrounding whitespace trimmed. A blank
// docstring stays "".
func CleanDocstring(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	lines := strings.Split(s, "\n")
	indent := -1
	for _, ln := range lines {
		trimmed := strings.TrimLeft(ln, " \t")
		if trimmed == "" {
			continue
		}
		n := len(ln) - len(trimmed)
		if indent < 0 || n < indent {
			indent = n
		}
	}

	if indent > 0 {
		for i, ln := range lines {
			if len(ln) >= indent {
				lines[i] = ln[indent:]
			} else {
				lines[i] = strings.TrimLeft(ln, " \t")
			}
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
