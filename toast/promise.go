package toast

import (
	"context"
	"sync"
)

// Future is the result of an asynchronous operation that settles once.
type Future[T any] struct {
	mu      sync.Mutex
	settled bool
	val     T
	err     error
	waiters []func(T, error)
	done    chan struct{}
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go starts fn on its own goroutine and returns its Future.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		v, err := fn(ctx)
		f.settle(v, err)
	}()
	return f
}

// Resolved returns an already settled successful Future.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

// Rejected returns an already settled failed Future.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// settle records the outcome, runs the registered callbacks and only then
// closes Done.
func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.val, f.err = v, err
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()
	for _, w := range waiters {
		w(v, err)
	}
	close(f.done)
}

// onSettle calls fn with the outcome, immediately if already settled.
func (f *Future[T]) onSettle(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.waiters = append(f.waiters, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Done is closed once the Future has settled.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the Future settles or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// PromiseOptions describes the toasts shown while an operation runs and when
// it settles. Success and Error build the terminal descriptor from the
// outcome; wrap a fixed descriptor with Static. Nil funcs fall back to the
// state's default title.
type PromiseOptions[T any] struct {
	Loading Descriptor
	Success func(T) Descriptor
	Error   func(error) Descriptor
}

// Static adapts a fixed descriptor to a PromiseOptions callback.
func Static[V any](d Descriptor) func(V) Descriptor {
	return func(V) Descriptor { return d }
}

// Promise opens a loading toast for f and, when f settles, updates the same
// toast to success or error exactly once. It returns f unchanged so callers
// can still wait on the outcome.
func Promise[T any](e *Engine, f *Future[T], opts PromiseOptions[T]) *Future[T] {
	loading := opts.Loading
	loading.State = StateLoading
	loading.Duration = Infinite
	h := e.Open(loading)
	if h.ID == "" {
		return f
	}

	var once sync.Once
	f.onSettle(func(v T, err error) {
		e.clock.AfterFunc(0, func() {
			once.Do(func() { e.settleWith(h.ID, settleDescriptor(v, err, opts)) })
		})
	})
	return f
}

// PromiseFunc starts fn and wraps it with Promise.
func PromiseFunc[T any](ctx context.Context, e *Engine, fn func(context.Context) (T, error), opts PromiseOptions[T]) *Future[T] {
	return Promise(e, Go(ctx, fn), opts)
}

// settleDescriptor builds the terminal descriptor for an outcome.
func settleDescriptor[T any](v T, err error, opts PromiseOptions[T]) Descriptor {
	var d Descriptor
	if err != nil {
		if opts.Error != nil {
			d = opts.Error(err)
		}
		d.State = StateError
		return d
	}
	if opts.Success != nil {
		d = opts.Success(v)
	}
	d.State = StateSuccess
	return d
}

// settleWith applies the terminal update. A terminal toast always gets a
// finite duration so the dismiss timer is armed.
func (e *Engine) settleWith(id string, d Descriptor) {
	if d.Duration == Infinite || d.Duration < 0 {
		d.Duration = 0
	}
	e.log.Debug().Str("id", id).Str("state", string(d.State)).Msg("promise settled")
	e.Update(id, d)
}
