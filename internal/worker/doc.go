// Package worker runs the analysis runtime in an isolated event loop.
//
// A Worker owns exactly one runtime adapter and communicates with the rest
// of the process only through serialized protocol messages over a pair of
// channels; nothing crosses the boundary by reference. The worker goroutine
// processes requests one at a time, which also serializes every call into
// the embedded interpreter; the interpreter is a single shared resource and
// its calls must never interleave.
//
// The Handler implements the request contract: exactly one response per
// accepted request, echoing its requestId. Malformed or unknown messages are
// logged and dropped without a response; the client surfaces those as
// timeouts. Analysis requests arriving before a successful initialize are
// answered with their kind's empty result.
package worker
