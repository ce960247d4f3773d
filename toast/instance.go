package toast

// Phase is a visual instance's state.
type Phase int

const (
	PhaseNone Phase = iota // no instance bound
	PhaseCollapsed
	PhaseExpanded
	PhaseExiting
)

func (p Phase) String() string {
	switch p {
	case PhaseCollapsed:
		return "collapsed"
	case PhaseExpanded:
		return "expanded"
	case PhaseExiting:
		return "exiting"
	}
	return "none"
}

// trigger names what caused a transition.
type trigger int

const (
	triggerAutopilotExpand trigger = iota
	triggerAutopilotCollapse
	triggerHoverEnter
	triggerHoverLeave
	triggerDeactivate
	triggerSwapBegin
	triggerSwipeDismiss
	triggerTimerDismiss
	triggerExit
)

var triggerNames = [...]string{
	triggerAutopilotExpand:   "autopilot-expand",
	triggerAutopilotCollapse: "autopilot-collapse",
	triggerHoverEnter:        "hover-enter",
	triggerHoverLeave:        "hover-leave",
	triggerDeactivate:        "deactivate",
	triggerSwapBegin:         "swap-begin",
	triggerSwipeDismiss:      "swipe-dismiss",
	triggerTimerDismiss:      "timer-dismiss",
	triggerExit:              "exit",
}

func (t trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return "unknown"
}

type drag struct {
	active bool
	origin float64
}

// instance is the renderer's binding for one record id. It owns every timer
// and animation started on its behalf.
type instance struct {
	id      string
	node    *Node
	phase   Phase
	applied string // InstanceID of the content currently painted
	rec     Record // content currently painted
	metrics Metrics
	painted bool
	hovered bool
	drag    drag

	expandTimer   Timer
	collapseTimer Timer
	dismissTimer  Timer
	swapTimer     Timer
	headerTimer   Timer

	anims map[Property]Animation
}

func newInstance(id string) *instance {
	return &instance{
		id:    id,
		node:  &Node{ID: id},
		phase: PhaseCollapsed,
		anims: make(map[Property]Animation),
	}
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (in *instance) stopAutopilot() {
	stopTimer(&in.expandTimer)
	stopTimer(&in.collapseTimer)
}

func (in *instance) stopDismiss() {
	stopTimer(&in.dismissTimer)
}

// stopTimers cancels the autopilot, dismiss and swap timers. The header timer
// is left running so a title morph finishes during exit.
func (in *instance) stopTimers() {
	in.stopAutopilot()
	in.stopDismiss()
	stopTimer(&in.swapTimer)
}

func (in *instance) cancelAnimation(p Property) {
	if a, ok := in.anims[p]; ok {
		a.Cancel()
		delete(in.anims, p)
	}
}

// release cancels everything the instance owns.
func (in *instance) release() {
	in.stopTimers()
	stopTimer(&in.headerTimer)
	for p := range in.anims {
		in.cancelAnimation(p)
	}
}

// expandable reports whether the painted content may open into a card.
func (in *instance) expandable() bool {
	return in.rec.Expandable() && in.rec.State != StateLoading
}
