package worker

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"luasense/internal/protocol"
	"luasense/internal/runtime"
)

// Handler dispatches decoded requests to the runtime adapter and produces
// exactly one encoded response per accepted request.
type Handler struct {
	adapter *runtime.Adapter
	logger  *zap.Logger
}

// NewHandler creates a handler over the given adapter.
func NewHandler(adapter *runtime.Adapter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{adapter: adapter, logger: logger}
}

// Handle processes one raw request message and returns the encoded response,
// or nil when the message is malformed and must be dropped. Dropped messages
// surface client-side as timeouts.
func (h *Handler) Handle(ctx context.Context, raw []byte) []byte {
	typ := gjson.GetBytes(raw, "type")
	id := gjson.GetBytes(raw, "requestId")
	if !typ.Exists() || !id.Exists() {
		h.logger.Warn("dropping message without type or requestId",
			zap.ByteString("message", redactCode(raw)))
		return nil
	}

	kind := protocol.Kind(typ.String())
	if !kind.Valid() {
		h.logger.Warn("dropping message with unknown kind",
			zap.String("kind", typ.String()),
			zap.String("requestId", id.String()))
		return nil
	}

	req, err := protocol.DecodeRequest(raw)
	if err != nil {
		h.logger.Warn("dropping malformed request",
			zap.String("requestId", id.String()),
			zap.Error(err),
			zap.ByteString("message", redactCode(raw)))
		return nil
	}

	resp := h.dispatch(ctx, req)
	data, err := protocol.EncodeResponse(resp)
	if err != nil {
		h.logger.Warn("dropping unencodable response",
			zap.String("requestId", req.RequestID),
			zap.Error(err))
		return nil
	}
	return data
}

// dispatch matches the closed set of request kinds exhaustively. Analysis
// requests always succeed at the protocol level; a not-ready runtime simply
// answers the kind's empty default.
func (h *Handler) dispatch(ctx context.Context, req protocol.Request) *protocol.Response {
	switch req.Type {
	case protocol.KindInitialize:
		if err := h.adapter.Initialize(ctx); err != nil {
			return protocol.NewErrorResponse(req.Type, req.RequestID, err.Error())
		}
		return mustResponse(req.Type, req.RequestID, nil)

	case protocol.KindAnalyze:
		diags := h.adapter.Analyze(req.Data.Code)
		return mustResponse(req.Type, req.RequestID, protocol.AnalysisData{Diagnostics: diags})

	case protocol.KindCompletion:
		items := h.adapter.Completions(req.Data.Code, req.Data.Line, req.Data.Column)
		return mustResponse(req.Type, req.RequestID, protocol.CompletionData{Items: items})

	case protocol.KindHover:
		info := h.adapter.Hover(req.Data.Code, req.Data.Line, req.Data.Column)
		return mustResponse(req.Type, req.RequestID, protocol.HoverData{Hover: info})

	case protocol.KindDefinition:
		defs := h.adapter.Definitions(req.Data.Code, req.Data.Line, req.Data.Column)
		return mustResponse(req.Type, req.RequestID, protocol.DefinitionData{Definitions: defs})

	default:
		// Unreachable: kind validity is checked before dispatch.
		return protocol.NewErrorResponse(req.Type, req.RequestID,
			fmt.Sprintf("unhandled kind %q", req.Type))
	}
}

// mustResponse builds a success response; the payload types marshal without
// error by construction.
func mustResponse(kind protocol.Kind, requestID string, payload any) *protocol.Response {
	resp, err := protocol.NewResponse(kind, requestID, payload)
	if err != nil {
		return protocol.NewErrorResponse(kind, requestID, err.Error())
	}
	return resp
}

// redactCode elides the source buffer from a message before logging it.
func redactCode(raw []byte) []byte {
	code := gjson.GetBytes(raw, "data.code")
	if !code.Exists() {
		return raw
	}
	redacted, err := sjson.SetBytes(raw, "data.code",
		fmt.Sprintf("<%d bytes>", len(code.String())))
	if err != nil {
		return raw
	}
	return redacted
}
