// Package bridge connects editor-side callers to an analysis worker.
//
// The bridge owns the worker handle and the pending-request table for one
// editor instance. Every call allocates a unique requestId, registers a
// pending entry with a timeout, sends the serialized request, and blocks the
// calling goroutine until the correlated response arrives or the timeout
// fires; whichever happens first removes the entry, never both. Responses
// for ids no longer in the table are discarded silently.
//
// Lifecycle follows the editor: Spawn on mount (an initialize request is
// dispatched immediately; readiness flips only on its successful response)
// and Terminate on unmount or language switch, which resolves every pending
// entry to its empty default and discards the worker. Spawning again builds
// an entirely new worker; no state survives termination.
//
// Analysis calls issued while the bridge is not ready short-circuit locally
// to their empty defaults without sending anything.
package bridge
