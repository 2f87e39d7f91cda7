package runtime

import "errors"

// Standard errors returned by the runtime adapter and sandbox.
var (
	// ErrSandboxClosed indicates an operation on a closed sandbox.
	ErrSandboxClosed = errors.New("sandbox is closed")

	// ErrUnknownPackage indicates a LoadPackage name with no embedded source.
	ErrUnknownPackage = errors.New("unknown package")

	// ErrNotReady indicates an analysis call before a successful Initialize.
	ErrNotReady = errors.New("runtime not ready")

	// ErrInitializeFailed indicates bootstrap failed; the adapter stays
	// Failed for the rest of its lifetime and a fresh worker is required.
	ErrInitializeFailed = errors.New("runtime initialization failed")

	// ErrUnsupportedValue indicates a Go value with no Lua representation.
	ErrUnsupportedValue = errors.New("unsupported value type")
)
