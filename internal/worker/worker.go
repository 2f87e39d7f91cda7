package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"luasense/internal/runtime"
)

// DefaultQueueSize bounds the request and response channels.
const DefaultQueueSize = 64

type options struct {
	sandbox        runtime.Sandbox
	logger         *zap.Logger
	maxCompletions int
	queueSize      int
}

// Option configures a spawned worker.
type Option func(*options)

// WithSandbox substitutes the embedded sandbox. Defaults to a fresh
// LuaSandbox per worker.
func WithSandbox(sb runtime.Sandbox) Option {
	return func(o *options) {
		o.sandbox = sb
	}
}

// WithLogger sets the worker's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxCompletions sets the completion result cap.
func WithMaxCompletions(n int) Option {
	return func(o *options) {
		o.maxCompletions = n
	}
}

// WithQueueSize sets the channel buffer size.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// Worker is a handle to one running analysis event loop. It owns its runtime
// adapter and sandbox exclusively; the only way in or out is Send and
// Responses, both carrying serialized messages.
//
// A terminated worker is never restarted; spawn a new one instead. State
// does not survive termination.
type Worker struct {
	requests  chan []byte
	responses chan []byte

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Spawn starts a worker goroutine with a fresh runtime adapter. The runtime
// stays unbooted until the worker receives an initialize request.
func Spawn(opts ...Option) *Worker {
	o := options{
		logger:         zap.NewNop(),
		maxCompletions: runtime.DefaultMaxCompletions,
		queueSize:      DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	sb := o.sandbox
	if sb == nil {
		sb = runtime.NewLuaSandbox()
	}
	adapter := runtime.NewAdapter(sb,
		runtime.WithMaxCompletions(o.maxCompletions),
		runtime.WithLogger(o.logger),
	)
	handler := NewHandler(adapter, o.logger)

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		requests:  make(chan []byte, o.queueSize),
		responses: make(chan []byte, o.queueSize),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go w.run(ctx, handler, sb)
	return w
}

// run is the worker event loop: one message at a time, which serializes all
// calls into the embedded interpreter.
func (w *Worker) run(ctx context.Context, handler *Handler, sb runtime.Sandbox) {
	defer close(w.responses)
	defer sb.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-w.requests:
			resp := handler.Handle(ctx, raw)
			if resp == nil {
				continue
			}
			select {
			case w.responses <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Send submits a serialized request. It reports false once the worker has
// been terminated; a true result still does not guarantee a response (the
// request may be dropped as malformed).
func (w *Worker) Send(raw []byte) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.requests <- raw:
		return true
	case <-w.done:
		return false
	}
}

// Responses returns the channel of serialized responses. It is closed when
// the worker terminates.
func (w *Worker) Responses() <-chan []byte {
	return w.responses
}

// Terminate stops the event loop and releases the sandbox. In-flight and
// queued requests are discarded; callers observe that as a timeout or
// through their pending entries being cancelled by the bridge.
func (w *Worker) Terminate() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.cancel()
	})
}
