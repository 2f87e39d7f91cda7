package protocol

import "errors"

// Standard errors returned by message encoding and decoding.
var (
	// ErrUnknownKind indicates a message with an unrecognized type tag.
	ErrUnknownKind = errors.New("unknown message kind")

	// ErrMissingRequestID indicates a message without a requestId.
	ErrMissingRequestID = errors.New("missing requestId")

	// ErrMissingPayload indicates a request kind that requires a data
	// payload arrived without one.
	ErrMissingPayload = errors.New("missing request payload")

	// ErrPayloadMismatch indicates a response payload was decoded as the
	// wrong kind.
	ErrPayloadMismatch = errors.New("response payload does not match kind")
)
