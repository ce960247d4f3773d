package toast

// expand opens the card. Only the active instance with expandable content
// may expand.
func (e *Engine) expand(in *instance, t trigger) bool {
	if in.phase != PhaseCollapsed || !in.expandable() || in.id != e.activeID {
		return false
	}
	if in.swapTimer != nil {
		return false // the new content is still waiting behind the collapse
	}
	in.phase = PhaseExpanded
	e.log.Debug().Str("id", in.id).Str("instance", in.applied).Stringer("trigger", t).Msg("expand")
	e.layout(in)
	return true
}

func (e *Engine) collapse(in *instance, t trigger) bool {
	if in.phase != PhaseExpanded {
		return false
	}
	in.phase = PhaseCollapsed
	e.log.Debug().Str("id", in.id).Str("instance", in.applied).Stringer("trigger", t).Msg("collapse")
	e.layout(in)
	return true
}

// exit is terminal: it force-collapses, then shrinks the node away while the
// store's removal timer runs.
func (e *Engine) exit(in *instance, t trigger) {
	in.stopTimers()
	in.drag = drag{}
	e.collapse(in, t)
	in.phase = PhaseExiting
	in.node.Exiting = true
	e.log.Debug().Str("id", in.id).Str("instance", in.applied).Stringer("trigger", t).Msg("exit")
	if in.painted {
		e.animate(in, PropHeight, 0, e.cfg.bodySpring(false))
	}
	e.surface.Paint(in.node)
}

// layout moves the instance toward the geometry of its phase. The first
// layout of an instance is applied instantly.
func (e *Engine) layout(in *instance) {
	n := in.node
	open := in.phase == PhaseExpanded
	n.Open = open
	w, h := e.cfg.target(open, in.metrics)
	if !in.painted {
		in.painted = true
		e.set(in, PropWidth, w)
		e.set(in, PropHeight, h)
		e.surface.Paint(n)
		return
	}
	e.animate(in, PropWidth, w, e.cfg.pillSpring())
	e.animate(in, PropHeight, h, e.cfg.bodySpring(open))
	e.surface.Paint(n)
}

func (e *Engine) value(in *instance, p Property) float64 {
	switch p {
	case PropWidth:
		return in.node.Width
	case PropHeight:
		return in.node.Height
	}
	return in.node.Offset
}

func (e *Engine) write(in *instance, p Property, v float64) {
	n := in.node
	switch p {
	case PropWidth:
		n.Width = v
		n.X = e.cfg.pillX(v)
	case PropHeight:
		n.Height = v
	case PropOffset:
		n.Offset = v
	}
}

// set writes a property immediately, cancelling any animation of it.
func (e *Engine) set(in *instance, p Property, v float64) {
	in.cancelAnimation(p)
	e.write(in, p, v)
}

// animate replaces any in-flight animation of p with one toward to.
func (e *Engine) animate(in *instance, p Property, to float64, s Spring) {
	in.cancelAnimation(p)
	from := e.value(in, p)
	if from == to {
		return
	}
	var a Animation
	a = e.animator.Animate(from, to, s, func(v float64) {
		e.write(in, p, v)
		e.surface.Paint(in.node)
	}, func() {
		if in.anims[p] == a {
			delete(in.anims, p)
		}
	})
	in.anims[p] = a
}
