// Package editor adapts analysis results into the shapes a text-editing
// widget consumes: inline markers from diagnostics, suggestion lists from
// completions, rendered hover blocks and definition locations.
//
// The adapters are deliberately forgiving: a nil or empty result from the
// bridge renders nothing. Missing assistance is a normal state here, not an
// error.
package editor
