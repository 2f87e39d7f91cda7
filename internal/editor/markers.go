package editor

import "luasense/internal/protocol"

// MarkerSeverity classifies an inline marker for presentation.
type MarkerSeverity int

const (
	MarkerWarning MarkerSeverity = iota
	MarkerError
)

// String returns a human-readable name for the severity.
func (s MarkerSeverity) String() string {
	if s == MarkerError {
		return "error"
	}
	return "warning"
}

// Marker is one inline annotation on the document. Columns follow the
// diagnostic's own convention; the marker spans a single character starting
// at the diagnostic column.
type Marker struct {
	Line        int
	StartColumn int
	EndColumn   int
	Message     string
	Severity    MarkerSeverity
}

// MarkersFor converts diagnostics into inline markers. Positions pass
// through untouched apart from widening each to a one-character span.
func MarkersFor(diags []protocol.Diagnostic) []Marker {
	if len(diags) == 0 {
		return nil
	}
	markers := make([]Marker, 0, len(diags))
	for _, d := range diags {
		sev := MarkerWarning
		if d.Severity == protocol.SeverityError {
			sev = MarkerError
		}
		markers = append(markers, Marker{
			Line:        d.Line,
			StartColumn: d.Column,
			EndColumn:   d.Column + 1,
			Message:     d.Message,
			Severity:    sev,
		})
	}
	return markers
}
