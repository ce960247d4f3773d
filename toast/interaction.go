package toast

import "math"

// live returns the non-exiting instance bound to id.
func (e *Engine) live(id string) *instance {
	in := e.instances[id]
	if in == nil || in.phase == PhaseExiting {
		return nil
	}
	return in
}

// HoverEnter pauses every dismiss countdown, makes id the active toast,
// collapses the others and opens id's card if it has one.
func (e *Engine) HoverEnter(id string) {
	in := e.live(id)
	if in == nil || in.hovered {
		return
	}
	in.hovered = true
	if e.hovered == 0 {
		e.pauseDismiss()
	}
	e.hovered++
	e.activeID = id
	for _, oid := range e.order {
		if other := e.instances[oid]; oid != id && other.phase == PhaseExpanded {
			e.collapse(other, triggerDeactivate)
		}
	}
	in.stopAutopilot()
	e.expand(in, triggerHoverEnter)
}

// HoverLeave collapses id and, once nothing is hovered, restarts every
// dismiss countdown.
func (e *Engine) HoverLeave(id string) {
	in := e.instances[id]
	if in == nil || !in.hovered {
		return
	}
	in.hovered = false
	e.releaseHover()
	e.collapse(in, triggerHoverLeave)
}

func (e *Engine) releaseHover() {
	e.hovered--
	if e.hovered <= 0 {
		e.hovered = 0
		e.resumeDismiss()
	}
}

// PointerDown starts a vertical drag at y. Presses on the action button do
// not start a drag.
func (e *Engine) PointerDown(id string, y float64, onButton bool) {
	in := e.live(id)
	if in == nil || onButton {
		return
	}
	in.drag = drag{active: true, origin: y}
	in.cancelAnimation(PropOffset)
}

// PointerMove shows the drag displacement, clamped to MaxDragOffset.
func (e *Engine) PointerMove(id string, y float64) {
	in := e.live(id)
	if in == nil || !in.drag.active {
		return
	}
	e.set(in, PropOffset, e.cfg.clampOffset(y-in.drag.origin))
	e.surface.Paint(in.node)
}

// PointerUp ends the drag: past DismissThreshold in either direction the
// toast is dismissed, otherwise it springs back.
func (e *Engine) PointerUp(id string, y float64) {
	in := e.live(id)
	if in == nil || !in.drag.active {
		return
	}
	dy := y - in.drag.origin
	in.drag = drag{}
	if math.Abs(dy) > e.cfg.DismissThreshold {
		e.log.Debug().Str("id", id).Float64("dy", dy).Stringer("trigger", triggerSwipeDismiss).Msg("dismiss")
		e.store.Dismiss(id)
		return
	}
	e.animate(in, PropOffset, 0, e.cfg.pillSpring())
}

// Activate runs the action button of the content currently shown for id.
func (e *Engine) Activate(id string) {
	in := e.live(id)
	if in == nil || in.rec.Button == nil || in.rec.Button.OnClick == nil {
		return
	}
	in.rec.Button.OnClick()
}
