// Package runtime embeds a Lua interpreter and exposes the four analysis
// primitives the worker serves: analyze, completions, hover and definitions.
//
// The interpreter is wrapped by the Sandbox interface (LoadPackage, Run and
// SetGlobal), so the Adapter never touches a Lua state directly and tests can
// substitute a fake. The production LuaSandbox is backed by gopher-lua with
// only the safe standard libraries opened.
//
// Bootstrap installs two Lua libraries into the interpreter: luadocs
// (signatures and docstrings for the built-in standard library) and analysis
// (static symbol inference over a source buffer). Arguments cross into the
// interpreter through SetGlobal rather than source interpolation.
//
// # Failure policy
//
// Analysis is a best-effort assistant feature. Every internal failure in a
// primitive degrades to that primitive's empty result (empty slice or nil)
// instead of propagating; only Initialize surfaces errors. The degradation is
// explicit at each call site via valueOr rather than an ambient recover.
//
// gopher-lua's LState is not goroutine-safe. A LuaSandbox serializes access
// with an internal mutex, and the worker additionally issues runtime calls
// from a single goroutine.
package runtime
