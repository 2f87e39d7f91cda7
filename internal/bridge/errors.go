package bridge

import "errors"

// Standard errors returned by the bridge.
var (
	// ErrAlreadyAttached indicates Spawn on a bridge with a live worker.
	ErrAlreadyAttached = errors.New("worker already attached")

	// ErrNotAttached indicates an operation that needs a spawned worker.
	ErrNotAttached = errors.New("no worker attached")

	// ErrInitializeFailed indicates the worker's runtime failed to boot.
	ErrInitializeFailed = errors.New("worker initialization failed")
)
