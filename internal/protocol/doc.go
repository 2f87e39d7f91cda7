// Package protocol defines the request/response message types exchanged
// between the client bridge and the analysis worker.
//
// Messages are JSON-encoded and cross the worker boundary by value; no Go
// object is ever shared between the two sides. Each request carries a
// bridge-assigned requestId, and every accepted request produces exactly one
// response echoing that id. The five request kinds and their response kinds
// form a closed set; unknown kinds fail decoding rather than passing through.
//
// Request wire shape:
//
//	{"type": "completion", "requestId": "completion-7-1735000000000",
//	 "data": {"code": "local x = 1\n", "line": 1, "column": 4}}
//
// Response wire shape:
//
//	{"type": "completion", "requestId": "completion-7-1735000000000",
//	 "success": true, "data": {"items": [...]}}
//
// Lines are 1-based and columns 0-based in request positions. Diagnostic
// positions are reported exactly as the parser emits them (1-based line,
// 1-based column) and are not renormalized here.
package protocol
