package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"luasense/internal/protocol"
	"luasense/internal/worker"
)

// Default timeouts. Analysis calls are cheap; initialization boots the
// embedded interpreter and installs its libraries, so it gets longer.
const (
	DefaultRequestTimeout = 5 * time.Second
	DefaultInitTimeout    = 60 * time.Second
)

// Worker is the bridge's view of a spawned worker: serialized messages in,
// serialized messages out, and a kill switch.
type Worker interface {
	Send(raw []byte) bool
	Responses() <-chan []byte
	Terminate()
}

// Spawner creates a fresh worker. The default spawner starts an in-process
// worker with its own Lua sandbox.
type Spawner func() Worker

// pendingRequest is one in-flight call. The entry's owner is whoever
// removes it from the table first (response, timeout or terminate), and
// only the owner sends on ch, so each call resolves at most once.
type pendingRequest struct {
	ch    chan *protocol.Response
	timer *time.Timer
}

// Bridge correlates requests with responses for one editor instance.
type Bridge struct {
	mu      sync.Mutex
	worker  Worker
	pending map[string]*pendingRequest
	ready   bool
	initErr error

	// Per-spawn readiness signals; recreated by each Spawn.
	readyCh  chan struct{}
	failedCh chan struct{}

	seq atomic.Uint64

	spawner        Spawner
	requestTimeout time.Duration
	initTimeout    time.Duration
	logger         *zap.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRequestTimeout sets the per-call timeout for analysis requests.
func WithRequestTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.requestTimeout = d
		}
	}
}

// WithInitTimeout sets the timeout for the initialize request.
func WithInitTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.initTimeout = d
		}
	}
}

// WithLogger sets the bridge's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSpawner substitutes worker creation, used by tests to script the
// other side of the channel.
func WithSpawner(s Spawner) Option {
	return func(b *Bridge) {
		b.spawner = s
	}
}

// New creates a bridge without a worker. Call Spawn to attach one.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		pending:        make(map[string]*pendingRequest),
		requestTimeout: DefaultRequestTimeout,
		initTimeout:    DefaultInitTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.spawner == nil {
		logger := b.logger
		b.spawner = func() Worker {
			return worker.Spawn(worker.WithLogger(logger))
		}
	}
	return b
}

// Spawn attaches a fresh worker and dispatches an initialize request in the
// background. Readiness flips only when that request succeeds; use
// WaitReady to observe it.
func (b *Bridge) Spawn() error {
	b.mu.Lock()
	if b.worker != nil {
		b.mu.Unlock()
		return ErrAlreadyAttached
	}
	w := b.spawner()
	b.worker = w
	b.ready = false
	b.initErr = nil
	b.readyCh = make(chan struct{})
	b.failedCh = make(chan struct{})
	readyCh, failedCh := b.readyCh, b.failedCh
	b.mu.Unlock()

	go b.recvLoop(w)
	go b.initialize(w, readyCh, failedCh)
	return nil
}

// initialize drives the worker's bootstrap and publishes the outcome.
func (b *Bridge) initialize(w Worker, readyCh, failedCh chan struct{}) {
	resp := b.call(context.Background(), protocol.KindInitialize, nil, b.initTimeout)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.worker != w {
		// Terminated (and possibly respawned) while initializing.
		return
	}
	switch {
	case resp == nil:
		b.initErr = fmt.Errorf("%w: no response", ErrInitializeFailed)
	case !resp.Success:
		b.initErr = fmt.Errorf("%w: %s", ErrInitializeFailed, resp.Error)
	default:
		b.ready = true
		close(readyCh)
		b.logger.Debug("worker ready")
		return
	}
	b.logger.Error("worker initialization failed", zap.Error(b.initErr))
	close(failedCh)
}

// WaitReady blocks until the attached worker's runtime is ready, its
// initialization fails, or ctx expires.
func (b *Bridge) WaitReady(ctx context.Context) error {
	b.mu.Lock()
	readyCh, failedCh := b.readyCh, b.failedCh
	attached := b.worker != nil
	b.mu.Unlock()

	if !attached {
		return ErrNotAttached
	}
	select {
	case <-readyCh:
		return nil
	case <-failedCh:
		b.mu.Lock()
		err := b.initErr
		b.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether analysis calls will be sent to the worker.
func (b *Bridge) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// PendingCount returns the number of in-flight requests.
func (b *Bridge) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Terminate discards the worker. Every pending entry resolves to its empty
// default and readiness resets; a later Spawn builds a brand-new worker.
func (b *Bridge) Terminate() {
	b.mu.Lock()
	w := b.worker
	b.worker = nil
	b.ready = false
	cancelled := make([]*pendingRequest, 0, len(b.pending))
	for id, p := range b.pending {
		delete(b.pending, id)
		cancelled = append(cancelled, p)
	}
	b.mu.Unlock()

	for _, p := range cancelled {
		p.timer.Stop()
		p.ch <- nil
	}
	if w != nil {
		w.Terminate()
	}
}

// Analyze returns diagnostics for code, or nil when the bridge is not
// ready, the call times out, or the response cannot be decoded.
func (b *Bridge) Analyze(ctx context.Context, code string) []protocol.Diagnostic {
	if !b.Ready() {
		return nil
	}
	resp := b.call(ctx, protocol.KindAnalyze, &protocol.Params{Code: code}, b.requestTimeout)
	if resp == nil || !resp.Success {
		return nil
	}
	diags, err := resp.Diagnostics()
	if err != nil {
		b.logger.Warn("dropping mismatched analysis response", zap.Error(err))
		return nil
	}
	return diags
}

// Complete returns completion candidates at the cursor (1-based line,
// 0-based column), or nil.
func (b *Bridge) Complete(ctx context.Context, code string, line, column int) []protocol.CompletionItem {
	if !b.Ready() {
		return nil
	}
	resp := b.call(ctx, protocol.KindCompletion, &protocol.Params{Code: code, Line: line, Column: column}, b.requestTimeout)
	if resp == nil || !resp.Success {
		return nil
	}
	items, err := resp.Items()
	if err != nil {
		b.logger.Warn("dropping mismatched completion response", zap.Error(err))
		return nil
	}
	return items
}

// Hover resolves the symbol at the cursor, or nil.
func (b *Bridge) Hover(ctx context.Context, code string, line, column int) *protocol.HoverInfo {
	if !b.Ready() {
		return nil
	}
	resp := b.call(ctx, protocol.KindHover, &protocol.Params{Code: code, Line: line, Column: column}, b.requestTimeout)
	if resp == nil || !resp.Success {
		return nil
	}
	info, err := resp.HoverInfo()
	if err != nil {
		b.logger.Warn("dropping mismatched hover response", zap.Error(err))
		return nil
	}
	return info
}

// Definitions resolves the declaration sites of the symbol at the cursor.
func (b *Bridge) Definitions(ctx context.Context, code string, line, column int) []protocol.DefinitionResult {
	if !b.Ready() {
		return nil
	}
	resp := b.call(ctx, protocol.KindDefinition, &protocol.Params{Code: code, Line: line, Column: column}, b.requestTimeout)
	if resp == nil || !resp.Success {
		return nil
	}
	defs, err := resp.Definitions()
	if err != nil {
		b.logger.Warn("dropping mismatched definition response", zap.Error(err))
		return nil
	}
	return defs
}

// call sends one request and blocks until the correlated response, the
// timeout, termination, or ctx, whichever resolves the entry first. A nil
// result means "no answer"; the caller maps it to the kind's default.
func (b *Bridge) call(ctx context.Context, kind protocol.Kind, params *protocol.Params, timeout time.Duration) *protocol.Response {
	b.mu.Lock()
	w := b.worker
	if w == nil {
		b.mu.Unlock()
		return nil
	}
	id := b.nextID(kind)
	p := &pendingRequest{ch: make(chan *protocol.Response, 1)}
	p.timer = time.AfterFunc(timeout, func() { b.resolve(id, nil) })
	b.pending[id] = p
	b.mu.Unlock()

	raw, err := protocol.EncodeRequest(protocol.Request{Type: kind, RequestID: id, Data: params})
	if err != nil {
		b.logger.Warn("dropping unencodable request", zap.String("requestId", id), zap.Error(err))
		b.resolve(id, nil)
		return <-p.ch
	}
	if !w.Send(raw) {
		b.resolve(id, nil)
		return <-p.ch
	}

	select {
	case resp := <-p.ch:
		return resp
	case <-ctx.Done():
		// Caller gave up; drop the entry so a late response is discarded.
		b.resolve(id, nil)
		return nil
	}
}

// resolve removes the pending entry for id and delivers resp to its caller.
// Removal under the lock makes the remover the entry's sole owner, so a
// request resolves exactly once; resolve for an unknown id is a no-op.
func (b *Bridge) resolve(id string, resp *protocol.Response) {
	b.mu.Lock()
	p, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()

	if !ok {
		return
	}
	p.timer.Stop()
	p.ch <- resp
}

// recvLoop drains one worker's responses until termination closes the
// channel. Responses for unknown ids (already timed out or cancelled) are
// discarded here by resolve.
func (b *Bridge) recvLoop(w Worker) {
	for raw := range w.Responses() {
		resp, err := protocol.DecodeResponse(raw)
		if err != nil {
			b.logger.Warn("dropping undecodable response", zap.Error(err))
			continue
		}
		b.resolve(resp.RequestID, resp)
	}
}

// nextID allocates a fresh requestId: kind, a monotonic per-bridge counter
// and a millisecond timestamp. The counter alone guarantees uniqueness; the
// timestamp makes ids self-describing in logs.
func (b *Bridge) nextID(kind protocol.Kind) string {
	return fmt.Sprintf("%s-%d-%d", kind, b.seq.Add(1), time.Now().UnixMilli())
}
