// Package toast is a transient-notification engine. It keeps an ordered store
// of toast records, binds each one to a visual instance on an injected
// Surface, and drives the instances through collapsed, expanded and exiting
// phases from timers, pointer input and async outcomes.
//
// An Engine is single-threaded: all methods, and every callback it schedules
// on its Clock, must run on one goroutine (a bubbletea Update loop, say).
package toast

import (
	"errors"

	"github.com/rs/zerolog"
)

var (
	ErrNoClock    = errors.New("toast: clock is required")
	ErrNoSurface  = errors.New("toast: surface is required")
	ErrNoAnimator = errors.New("toast: animator is required")
	ErrTornDown   = errors.New("toast: engine has been torn down")
)

// Options configures New. Clock, Surface and Animator are required; the zero
// Logger discards everything.
type Options struct {
	Config   Config
	Clock    Clock
	Surface  Surface
	Animator Animator
	Logger   zerolog.Logger
	IDs      IDGenerator
}

// Engine owns the store, the visual instances and the interaction state.
type Engine struct {
	cfg      Config
	clock    Clock
	surface  Surface
	animator Animator
	log      zerolog.Logger

	store     *Store
	instances map[string]*instance
	order     []string

	activeID string
	latestID string
	hovered  int

	unsubscribe func()
	started     bool
	closed      bool
}

// New validates opts and returns an engine. Call Init before use.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Clock == nil:
		return nil, ErrNoClock
	case opts.Surface == nil:
		return nil, ErrNoSurface
	case opts.Animator == nil:
		return nil, ErrNoAnimator
	}
	ids := opts.IDs
	if ids == nil {
		ids = NewInstanceID
	}
	cfg := opts.Config.withDefaults()
	log := opts.Logger.With().Str("component", "toast").Logger()
	return &Engine{
		cfg:       cfg,
		clock:     opts.Clock,
		surface:   opts.Surface,
		animator:  opts.Animator,
		log:       log,
		store:     newStore(cfg, opts.Clock, ids, log),
		instances: make(map[string]*instance),
	}, nil
}

// Init binds the renderer to the store and renders any records opened so far.
func (e *Engine) Init() error {
	if e.closed {
		return ErrTornDown
	}
	if e.started {
		return nil
	}
	e.started = true
	e.unsubscribe = e.store.Subscribe(e.reconcile)
	e.reconcile(e.store.Snapshot())
	return nil
}

// Teardown cancels every timer and animation and unmounts every node. The
// engine ignores lifecycle calls afterwards.
func (e *Engine) Teardown() {
	if e.closed {
		return
	}
	e.closed = true
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	for _, id := range e.order {
		in := e.instances[id]
		in.release()
		e.surface.Unmount(in.node)
	}
	clear(e.instances)
	e.order = nil
	e.hovered = 0
	e.store.stop()
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// ─── Lifecycle API ───────────────────────────────────────────────────────────

// Open shows a toast, replacing any toast with the same id.
func (e *Engine) Open(d Descriptor) Handle {
	if e.closed {
		e.log.Debug().Str("id", d.ID).Msg("open after teardown ignored")
		return Handle{}
	}
	return e.store.Open(d)
}

func (e *Engine) Success(d Descriptor) Handle { d.State = StateSuccess; return e.Open(d) }
func (e *Engine) Error(d Descriptor) Handle   { d.State = StateError; return e.Open(d) }
func (e *Engine) Warning(d Descriptor) Handle { d.State = StateWarning; return e.Open(d) }
func (e *Engine) Info(d Descriptor) Handle    { d.State = StateInfo; return e.Open(d) }
func (e *Engine) Action(d Descriptor) Handle  { d.State = StateAction; return e.Open(d) }
func (e *Engine) Loading(d Descriptor) Handle { d.State = StateLoading; return e.Open(d) }

// Update merges d into the open toast for id. Unknown ids are ignored, since
// a toast may dismiss itself before a late update arrives.
func (e *Engine) Update(id string, d Descriptor) {
	if e.closed {
		return
	}
	e.store.Update(id, d)
}

// Dismiss starts the exit of the toast for id. It is idempotent.
func (e *Engine) Dismiss(id string) {
	if e.closed {
		return
	}
	e.store.Dismiss(id)
}

// Subscribe registers fn for every store snapshot.
func (e *Engine) Subscribe(fn func([]Record)) (unsubscribe func()) {
	return e.store.Subscribe(fn)
}

// ─── Introspection ───────────────────────────────────────────────────────────

// Records returns the store snapshot, exiting records included.
func (e *Engine) Records() []Record { return e.store.Snapshot() }

// Node returns the visual node bound to id, or nil.
func (e *Engine) Node(id string) *Node {
	if in := e.instances[id]; in != nil {
		return in.node
	}
	return nil
}

// Nodes returns the bound nodes in store order.
func (e *Engine) Nodes() []*Node {
	var out []*Node
	for _, r := range e.store.records {
		if in := e.instances[r.ID]; in != nil {
			out = append(out, in.node)
		}
	}
	return out
}

// Phase returns the phase of the instance bound to id.
func (e *Engine) Phase(id string) Phase {
	if in := e.instances[id]; in != nil {
		return in.phase
	}
	return PhaseNone
}

// ActiveID is the id allowed to be expanded.
func (e *Engine) ActiveID() string { return e.activeID }

// Hovered reports whether any toast is under the pointer.
func (e *Engine) Hovered() bool { return e.hovered > 0 }

// ─── Renderer ────────────────────────────────────────────────────────────────

// reconcile brings the visual instances in line with a store snapshot.
func (e *Engine) reconcile(records []Record) {
	if e.closed {
		return
	}
	live := make(map[string]Record, len(records))
	for _, r := range records {
		live[r.ID] = r
	}
	e.pickActive(records, live)

	for _, id := range append([]string(nil), e.order...) {
		if _, ok := live[id]; !ok {
			e.destroy(id)
		}
	}

	for _, r := range records {
		in := e.instances[r.ID]
		if in != nil && in.phase == PhaseExiting && !r.Exiting {
			e.destroy(r.ID)
			in = nil
		}
		if in == nil {
			in = e.create(r)
			if r.Exiting {
				e.exit(in, triggerExit)
			}
			continue
		}
		if r.Exiting {
			if in.phase != PhaseExiting {
				e.exit(in, triggerExit)
			}
			continue
		}
		if in.applied != r.InstanceID {
			e.swap(in, r)
		}
	}

	for _, id := range e.order {
		if in := e.instances[id]; id != e.activeID && in.phase == PhaseExpanded {
			e.collapse(in, triggerDeactivate)
		}
	}
}

// pickActive hands activeID to a newly arrived toast unless the pointer is
// over one, and falls back to the newest live toast when the active one is
// gone.
func (e *Engine) pickActive(records []Record, live map[string]Record) {
	latest := ""
	for i := len(records) - 1; i >= 0; i-- {
		if !records[i].Exiting {
			latest = records[i].ID
			break
		}
	}
	if latest != e.latestID {
		e.latestID = latest
		if latest != "" && e.hovered == 0 {
			e.activeID = latest
		}
	}
	if r, ok := live[e.activeID]; !ok || r.Exiting {
		e.activeID = latest
	}
}

func (e *Engine) create(r Record) *instance {
	in := newInstance(r.ID)
	e.instances[r.ID] = in
	e.order = append(e.order, r.ID)
	if err := e.surface.Mount(in.node); err != nil {
		e.log.Warn().Err(err).Str("id", r.ID).Msg("mount failed")
	}
	e.apply(in, r)
	return in
}

// destroy cancels everything the instance owns before unmounting it.
func (e *Engine) destroy(id string) {
	in := e.instances[id]
	if in == nil {
		return
	}
	in.release()
	if in.hovered {
		in.hovered = false
		e.releaseHover()
	}
	e.surface.Unmount(in.node)
	delete(e.instances, id)
	for i, o := range e.order {
		if o == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.log.Debug().Str("id", id).Msg("removed")
}

// apply paints r's content onto the instance and re-arms its timers.
func (e *Engine) apply(in *instance, r Record) {
	in.stopTimers()
	first := !in.painted
	in.rec = r
	in.applied = r.InstanceID

	n := in.node
	n.InstanceID = r.InstanceID
	n.State = r.State
	n.Description = r.Description
	n.Button = r.Button
	n.Fill = r.Fill
	e.reconcileHeader(in, r, first)
	in.metrics = e.surface.Measure(n, e.cfg.CardWidth)
	e.layout(in)

	e.log.Debug().Str("id", in.id).Str("instance", in.applied).Str("state", string(r.State)).Msg("apply")
	e.armAutopilot(in)
	e.armDismiss(in)
}

// swap replaces the instance's content. An expanded card collapses first and
// takes the newest record once the swap window closes; a card hovered in the
// meantime reopens with the new content.
func (e *Engine) swap(in *instance, r Record) {
	if in.swapTimer != nil {
		return
	}
	if in.phase != PhaseExpanded {
		e.apply(in, r)
		return
	}
	in.stopAutopilot()
	in.stopDismiss()
	e.collapse(in, triggerSwapBegin)
	in.swapTimer = e.clock.AfterFunc(e.cfg.SwapWindow, func() {
		in.swapTimer = nil
		latest, ok := e.store.Get(in.id)
		if !ok {
			return
		}
		if latest.InstanceID != in.applied {
			e.apply(in, latest)
		}
		if in.hovered {
			e.expand(in, triggerHoverEnter)
		}
	})
}

// reconcileHeader keeps a header whose (state, title) is unchanged and
// updates it in place; a new key is added while the old one lingers for the
// header exit window.
func (e *Engine) reconcileHeader(in *instance, r Record, first bool) {
	n := in.node
	h := Header{
		Key:   string(r.State) + "\x00" + r.HeaderTitle(),
		State: r.State,
		Title: r.HeaderTitle(),
		Icon:  r.HeaderIcon(),
	}
	cur := n.Header()
	if first || cur.Key == "" {
		n.Headers = []Header{h}
		return
	}
	if cur.Key == h.Key {
		for i := len(n.Headers) - 1; i >= 0; i-- {
			if !n.Headers[i].Leaving {
				n.Headers[i] = h
				break
			}
		}
		return
	}
	for i := range n.Headers {
		n.Headers[i].Leaving = true
	}
	n.Headers = append(n.Headers, h)

	stopTimer(&in.headerTimer)
	in.headerTimer = e.clock.AfterFunc(e.cfg.HeaderExit, func() {
		in.headerTimer = nil
		kept := n.Headers[:0]
		for _, h := range n.Headers {
			if !h.Leaving {
				kept = append(kept, h)
			}
		}
		n.Headers = kept
		e.surface.Paint(n)
	})
}
