package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"luasense/internal/protocol"
)

// State is the adapter's lifecycle state.
type State int

// Lifecycle states. Transitions are monotonic: Failed is terminal for this
// adapter; retrying bootstrap means discarding the worker and its adapter.
const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultMaxCompletions caps completion results per request.
const DefaultMaxCompletions = 50

// Globals used to pass arguments into the interpreter.
const (
	globalCode = "__luasense_code"
	globalLine = "__luasense_line"
	globalCol  = "__luasense_col"
)

// Adapter exposes the four analysis primitives over an embedded sandbox.
// Analysis calls degrade to empty results on any internal failure; only
// Initialize surfaces errors.
type Adapter struct {
	mu      sync.Mutex
	state   State
	initErr error

	sandbox        Sandbox
	maxCompletions int
	logger         *zap.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithMaxCompletions sets the completion result cap.
func WithMaxCompletions(n int) AdapterOption {
	return func(a *Adapter) {
		if n > 0 {
			a.maxCompletions = n
		}
	}
}

// WithLogger sets the adapter's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdapter creates an adapter over the given sandbox. The sandbox is not
// touched until Initialize.
func NewAdapter(sandbox Sandbox, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		state:          StateUninitialized,
		sandbox:        sandbox,
		maxCompletions: DefaultMaxCompletions,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current lifecycle state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Ready reports whether analysis calls will reach the sandbox.
func (a *Adapter) Ready() bool {
	return a.State() == StateReady
}

// Initialize boots the sandbox: installs the two analysis libraries and
// verifies the entry points. Idempotent: a Ready adapter returns nil
// immediately without reinstalling anything. A Failed adapter stays Failed
// and returns the recorded error; spawn a fresh worker to retry.
func (a *Adapter) Initialize(ctx context.Context) error {
	a.mu.Lock()
	switch a.state {
	case StateReady:
		a.mu.Unlock()
		return nil
	case StateInitializing:
		a.mu.Unlock()
		return fmt.Errorf("%w: initialize already in progress", ErrInitializeFailed)
	case StateFailed:
		err := a.initErr
		a.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInitializeFailed, err)
	}
	a.state = StateInitializing
	a.mu.Unlock()

	err := a.bootstrap(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.state = StateFailed
		a.initErr = err
		a.logger.Error("runtime bootstrap failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInitializeFailed, err)
	}
	a.state = StateReady
	a.logger.Debug("runtime ready")
	return nil
}

// bootstrap installs luadocs then analysis (analysis reads the luadocs
// global) and smoke-checks both entry points.
func (a *Adapter) bootstrap(ctx context.Context) error {
	for _, name := range []string{PackageDocs, PackageAnalysis} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.sandbox.LoadPackage(name); err != nil {
			return err
		}
	}

	v, err := a.sandbox.Run("return analysis ~= nil and luadocs ~= nil")
	if err != nil {
		return err
	}
	if ok, _ := v.(bool); !ok {
		return errors.New("analysis libraries not installed")
	}
	return nil
}

// Analyze returns diagnostics for code: parse errors from the tolerant
// parser, plus undefined-global warnings from the analysis library when the
// parse is clean. Not Ready or internal failure yields an empty list.
func (a *Adapter) Analyze(code string) []protocol.Diagnostic {
	if !a.Ready() {
		return nil
	}

	diags := parseDiagnostics(code)
	if len(diags) > 0 {
		return diags
	}

	warnings, err := a.runCheck(code)
	a.swallow("analyze", err)
	return valueOr(warnings, err, nil)
}

// Completions returns completion candidates at the cursor, capped at the
// configured maximum. Line is 1-based, column 0-based.
func (a *Adapter) Completions(code string, line, column int) []protocol.CompletionItem {
	if !a.Ready() {
		return nil
	}
	items, err := a.runCompletions(code, line, column)
	a.swallow("completions", err)
	return valueOr(items, err, nil)
}

// Hover resolves the symbol at the cursor, or nil when there is none.
func (a *Adapter) Hover(code string, line, column int) *protocol.HoverInfo {
	if !a.Ready() {
		return nil
	}
	info, err := a.runHover(code, line, column)
	a.swallow("hover", err)
	return valueOr(info, err, nil)
}

// Definitions resolves the declaration sites of the symbol at the cursor.
func (a *Adapter) Definitions(code string, line, column int) []protocol.DefinitionResult {
	if !a.Ready() {
		return nil
	}
	defs, err := a.runDefinitions(code, line, column)
	a.swallow("definitions", err)
	return valueOr(defs, err, nil)
}

// swallow records a degraded analysis call. Per-call failures are expected
// and frequent; they are debug-level, never alarms.
func (a *Adapter) swallow(op string, err error) {
	if err != nil {
		a.logger.Debug("analysis degraded to default", zap.String("op", op), zap.Error(err))
	}
}

// valueOr makes the degrade-to-default policy explicit at call sites:
// when err is non-nil the kind's empty result is returned instead of v.
func valueOr[T any](v T, err error, fallback T) T {
	if err != nil {
		return fallback
	}
	return v
}

func (a *Adapter) setArgs(code string, line, column int) error {
	if err := a.sandbox.SetGlobal(globalCode, code); err != nil {
		return err
	}
	if err := a.sandbox.SetGlobal(globalLine, line); err != nil {
		return err
	}
	return a.sandbox.SetGlobal(globalCol, column)
}

func (a *Adapter) runCheck(code string) ([]protocol.Diagnostic, error) {
	if err := a.sandbox.SetGlobal(globalCode, code); err != nil {
		return nil, err
	}
	v, err := a.sandbox.Run("return analysis.check(" + globalCode + ")")
	if err != nil {
		return nil, err
	}

	var out []protocol.Diagnostic
	for _, e := range asSlice(v) {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		d := protocol.Diagnostic{
			Line:     asInt(m["line"]),
			Column:   asInt(m["column"]),
			Message:  asString(m["message"]),
			Severity: protocol.Severity(asString(m["severity"])),
		}
		if d.Severity != protocol.SeverityError {
			d.Severity = protocol.SeverityWarning
		}
		out = append(out, d)
	}
	return out, nil
}

func (a *Adapter) runCompletions(code string, line, column int) ([]protocol.CompletionItem, error) {
	if err := a.setArgs(code, line, column); err != nil {
		return nil, err
	}
	v, err := a.sandbox.Run("return analysis.complete(" + globalCode + ", " + globalLine + ", " + globalCol + ")")
	if err != nil {
		return nil, err
	}

	var out []protocol.CompletionItem
	for _, e := range asSlice(v) {
		if len(out) >= a.maxCompletions {
			break
		}
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		item := protocol.CompletionItem{
			Name:        asString(m["name"]),
			Type:        asString(m["type"]),
			Description: asString(m["description"]),
			Signature:   asString(m["signature"]),
			Docstring:   CleanDocstring(asString(m["docstring"])),
			InsertText:  asString(m["insertText"]),
		}
		if item.Name == "" {
			continue
		}
		if item.InsertText == "" {
			item.InsertText = item.Name
		}
		out = append(out, item)
	}
	return out, nil
}

func (a *Adapter) runHover(code string, line, column int) (*protocol.HoverInfo, error) {
	if err := a.setArgs(code, line, column); err != nil {
		return nil, err
	}
	v, err := a.sandbox.Run("return analysis.hover(" + globalCode + ", " + globalLine + ", " + globalCol + ")")
	if err != nil {
		return nil, err
	}

	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, nil
	}
	info := &protocol.HoverInfo{
		Name:        asString(m["name"]),
		Type:        asString(m["type"]),
		Description: asString(m["description"]),
		Docstring:   CleanDocstring(asString(m["docstring"])),
		Signature:   asString(m["signature"]),
	}
	if info.Name == "" {
		return nil, nil
	}
	return info, nil
}

func (a *Adapter) runDefinitions(code string, line, column int) ([]protocol.DefinitionResult, error) {
	if err := a.setArgs(code, line, column); err != nil {
		return nil, err
	}
	v, err := a.sandbox.Run("return analysis.definitions(" + globalCode + ", " + globalLine + ", " + globalCol + ")")
	if err != nil {
		return nil, err
	}

	var out []protocol.DefinitionResult
	for _, e := range asSlice(v) {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		def := protocol.DefinitionResult{
			Name:        asString(m["name"]),
			Description: asString(m["description"]),
		}
		if def.Name == "" {
			continue
		}
		if _, ok := m["line"]; ok {
			def.Line = intPtr(asInt(m["line"]))
		}
		if _, ok := m["column"]; ok {
			def.Column = intPtr(asInt(m["column"]))
		}
		out = append(out, def)
	}
	return out, nil
}
