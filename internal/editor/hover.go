package editor

import (
	"fmt"
	"strings"

	"luasense/internal/protocol"
)

// HoverContent is a rendered hover block. Trusted is always false: the text
// originates in analyzed source and must never be interpreted as markup by
// the widget.
type HoverContent struct {
	Value   string
	Trusted bool
}

// FormatHover renders hover info as a text block: a bolded name-and-type
// header, then the signature and docstring when present, each section
// separated by a blank line. Returns "" for nil info.
func FormatHover(info *protocol.HoverInfo) string {
	if info == nil {
		return ""
	}
	sections := []string{fmt.Sprintf("**%s** (%s)", info.Name, info.Type)}
	if info.Signature != "" {
		sections = append(sections, info.Signature)
	}
	if info.Docstring != "" {
		sections = append(sections, info.Docstring)
	}
	return strings.Join(sections, "\n\n")
}

// HoverFor wraps hover info for the widget, or returns nil when there is
// nothing to show.
func HoverFor(info *protocol.HoverInfo) *HoverContent {
	if info == nil {
		return nil
	}
	return &HoverContent{Value: FormatHover(info)}
}
