package protocol

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a request kind. The set of kinds is closed; decoding
// rejects anything outside it.
type Kind string

// Request kinds.
const (
	KindInitialize Kind = "initialize"
	KindAnalyze    Kind = "analyze"
	KindCompletion Kind = "completion"
	KindHover      Kind = "hover"
	KindDefinition Kind = "definition"
)

// Response type tags, one per request kind.
const (
	TypeInitialized = "initialized"
	TypeAnalysis    = "analysis"
	TypeCompletion  = "completion"
	TypeHover       = "hover"
	TypeDefinition  = "definition"
)

// Valid reports whether k is one of the five request kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInitialize, KindAnalyze, KindCompletion, KindHover, KindDefinition:
		return true
	default:
		return false
	}
}

// NeedsPayload reports whether requests of this kind must carry data.
func (k Kind) NeedsPayload() bool {
	return k != KindInitialize
}

// NeedsPosition reports whether requests of this kind require line/column.
func (k Kind) NeedsPosition() bool {
	switch k {
	case KindCompletion, KindHover, KindDefinition:
		return true
	default:
		return false
	}
}

// ResponseType returns the response type tag answering this kind.
func (k Kind) ResponseType() string {
	switch k {
	case KindInitialize:
		return TypeInitialized
	case KindAnalyze:
		return TypeAnalysis
	case KindCompletion:
		return TypeCompletion
	case KindHover:
		return TypeHover
	case KindDefinition:
		return TypeDefinition
	default:
		return ""
	}
}

// Params is the payload of an analysis request. Line is 1-based and Column
// is 0-based; both are ignored by analyze requests.
type Params struct {
	Code   string `json:"code"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Request is a single message from the bridge to the worker.
type Request struct {
	Type      Kind    `json:"type"`
	RequestID string  `json:"requestId"`
	Data      *Params `json:"data,omitempty"`
}

// Response is a single message from the worker back to the bridge.
// Data is decoded lazily through the typed accessors below.
type Response struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Typed response payloads.
type (
	// AnalysisData is the payload of an analysis response.
	AnalysisData struct {
		Diagnostics []Diagnostic `json:"diagnostics"`
	}

	// CompletionData is the payload of a completion response.
	CompletionData struct {
		Items []CompletionItem `json:"items"`
	}

	// HoverData is the payload of a hover response. Hover is nil when no
	// symbol was resolved at the cursor.
	HoverData struct {
		Hover *HoverInfo `json:"hover"`
	}

	// DefinitionData is the payload of a definition response.
	DefinitionData struct {
		Definitions []DefinitionResult `json:"definitions"`
	}
)

// EncodeRequest validates and marshals a request for the wire.
func EncodeRequest(req Request) ([]byte, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Type)
	}
	if req.RequestID == "" {
		return nil, ErrMissingRequestID
	}
	if req.Type.NeedsPayload() && req.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPayload, req.Type)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return data, nil
}

// DecodeRequest unmarshals and validates a request from the wire.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("unmarshal request: %w", err)
	}
	if !req.Type.Valid() {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Type)
	}
	if req.RequestID == "" {
		return Request{}, ErrMissingRequestID
	}
	if req.Type.NeedsPayload() && req.Data == nil {
		return Request{}, fmt.Errorf("%w: %s", ErrMissingPayload, req.Type)
	}
	return req, nil
}

// NewResponse builds a successful response for the given request kind,
// marshaling the typed payload. A nil payload produces a response without
// data (used by initialized).
func NewResponse(kind Kind, requestID string, payload any) (*Response, error) {
	resp := &Response{
		Type:      kind.ResponseType(),
		RequestID: requestID,
		Success:   true,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal response payload: %w", err)
		}
		resp.Data = data
	}
	return resp, nil
}

// NewErrorResponse builds a failure response for the given request kind.
func NewErrorResponse(kind Kind, requestID, message string) *Response {
	return &Response{
		Type:      kind.ResponseType(),
		RequestID: requestID,
		Success:   false,
		Error:     message,
	}
}

// EncodeResponse marshals a response for the wire.
func EncodeResponse(resp *Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return data, nil
}

// DecodeResponse unmarshals a response from the wire.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.RequestID == "" {
		return nil, ErrMissingRequestID
	}
	return &resp, nil
}

// Diagnostics decodes the payload of an analysis response.
func (r *Response) Diagnostics() ([]Diagnostic, error) {
	if r.Type != TypeAnalysis {
		return nil, fmt.Errorf("%w: have %q, want %q", ErrPayloadMismatch, r.Type, TypeAnalysis)
	}
	if len(r.Data) == 0 {
		return nil, nil
	}
	var payload AnalysisData
	if err := json.Unmarshal(r.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	return payload.Diagnostics, nil
}

// Items decodes the payload of a completion response.
func (r *Response) Items() ([]CompletionItem, error) {
	if r.Type != TypeCompletion {
		return nil, fmt.Errorf("%w: have %q, want %q", ErrPayloadMismatch, r.Type, TypeCompletion)
	}
	if len(r.Data) == 0 {
		return nil, nil
	}
	var payload CompletionData
	if err := json.Unmarshal(r.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal completion items: %w", err)
	}
	return payload.Items, nil
}

// HoverInfo decodes the payload of a hover response. Returns nil when no
// symbol was resolved.
func (r *Response) HoverInfo() (*HoverInfo, error) {
	if r.Type != TypeHover {
		return nil, fmt.Errorf("%w: have %q, want %q", ErrPayloadMismatch, r.Type, TypeHover)
	}
	if len(r.Data) == 0 {
		return nil, nil
	}
	var payload HoverData
	if err := json.Unmarshal(r.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal hover: %w", err)
	}
	return payload.Hover, nil
}

// Definitions decodes the payload of a definition response.
func (r *Response) Definitions() ([]DefinitionResult, error) {
	if r.Type != TypeDefinition {
		return nil, fmt.Errorf("%w: have %q, want %q", ErrPayloadMismatch, r.Type, TypeDefinition)
	}
	if len(r.Data) == 0 {
		return nil, nil
	}
	var payload DefinitionData
	if err := json.Unmarshal(r.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal definitions: %w", err)
	}
	return payload.Definitions, nil
}
