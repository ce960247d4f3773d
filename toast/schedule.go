package toast

// armAutopilot schedules the expand-then-collapse cycle for the content just
// applied. A zero expand delay opens the card right away.
func (e *Engine) armAutopilot(in *instance) {
	in.stopAutopilot()
	ap := in.rec.Autopilot
	if ap == nil || !in.expandable() {
		return
	}
	if ap.Expand <= 0 {
		e.expand(in, triggerAutopilotExpand)
	} else {
		in.expandTimer = e.clock.AfterFunc(ap.Expand, func() {
			in.expandTimer = nil
			e.expand(in, triggerAutopilotExpand)
		})
	}
	in.collapseTimer = e.clock.AfterFunc(ap.Collapse, func() {
		in.collapseTimer = nil
		if in.hovered {
			return
		}
		e.collapse(in, triggerAutopilotCollapse)
	})
}

// armDismiss (re)starts the dismiss countdown from the full duration. Nothing
// is armed while the pointer is over any toast.
func (e *Engine) armDismiss(in *instance) {
	in.stopDismiss()
	if e.hovered > 0 || in.phase == PhaseExiting || in.swapTimer != nil || !in.rec.Finite() {
		return
	}
	applied := in.applied
	in.dismissTimer = e.clock.AfterFunc(in.rec.Duration, func() {
		in.dismissTimer = nil
		if in.applied != applied {
			return
		}
		e.log.Debug().Str("id", in.id).Str("instance", applied).Stringer("trigger", triggerTimerDismiss).Msg("dismiss")
		e.store.Dismiss(in.id)
	})
}

func (e *Engine) pauseDismiss() {
	for _, id := range e.order {
		e.instances[id].stopDismiss()
	}
}

// resumeDismiss re-arms every live toast from its full duration, not from
// what was left when the pause began.
func (e *Engine) resumeDismiss() {
	for _, id := range e.order {
		e.armDismiss(e.instances[id])
	}
}
