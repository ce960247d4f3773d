package toast

import "time"

// State drives a toast's icon, accent color and default title.
type State string

const (
	StateSuccess State = "success"
	StateError   State = "error"
	StateWarning State = "warning"
	StateInfo    State = "info"
	StateAction  State = "action"
	StateLoading State = "loading"
)

var stateTitles = map[State]string{
	StateSuccess: "Success",
	StateError:   "Error",
	StateWarning: "Warning",
	StateInfo:    "Info",
	StateAction:  "Action",
	StateLoading: "Loading",
}

var stateIcons = map[State]string{
	StateSuccess: "✓",
	StateError:   "✕",
	StateWarning: "!",
	StateInfo:    "i",
	StateAction:  "→",
	StateLoading: "◌",
}

// DefaultTitle returns the title shown when a descriptor leaves Title empty.
func (s State) DefaultTitle() string {
	if t, ok := stateTitles[s]; ok {
		return t
	}
	return string(s)
}

// DefaultIcon returns the glyph for the state.
func (s State) DefaultIcon() string {
	return stateIcons[s]
}

func (s State) valid() bool {
	_, ok := stateTitles[s]
	return ok
}

// Infinite is the duration sentinel for toasts that never self-dismiss.
const Infinite time.Duration = -1

// Content is a toast description: either Text or a Block.
type Content interface {
	isContent()
	empty() bool
}

// Text is plain description text.
type Text string

// Block is an opaque renderable; the Surface decides how to mount Payload.
type Block struct {
	Payload any
}

func (Text) isContent()  {}
func (Block) isContent() {}

func (t Text) empty() bool  { return t == "" }
func (b Block) empty() bool { return b.Payload == nil }

func isEmpty(c Content) bool {
	return c == nil || c.empty()
}

// Button is an optional action embedded in the expanded card.
type Button struct {
	Title   string
	OnClick func()
}

// Descriptor is what callers pass to Open and Update.
//
// For Update, zero-valued fields leave the record's current value in place.
// DisableAutopilot follows the same rule, so an update can turn autopilot off
// but never back on; reopen the toast with Open to restore it.
type Descriptor struct {
	ID          string
	State       State
	Title       string
	Description Content
	Icon        string
	Button      *Button
	Fill        string
	// Duration is zero for the default, Infinite to never self-dismiss.
	Duration         time.Duration
	DisableAutopilot bool
}

// Autopilot holds the delays, measured from when content is applied, at which
// a toast expands and then collapses on its own.
type Autopilot struct {
	Expand   time.Duration
	Collapse time.Duration
}

// Record is the store's view of one logical toast.
type Record struct {
	ID          string
	InstanceID  string
	State       State
	Title       string
	Description Content
	Icon        string
	Button      *Button
	Fill        string
	Duration    time.Duration

	// Autopilot is nil when the caller opted out or the duration is infinite.
	Autopilot    *Autopilot
	AutopilotOff bool
	Exiting      bool
}

// Expandable reports whether the record has anything to show in the card.
func (r Record) Expandable() bool {
	return !isEmpty(r.Description) || r.Button != nil
}

// Finite reports whether the record dismisses itself.
func (r Record) Finite() bool {
	return r.Duration > 0
}

// HeaderTitle is the title shown in the pill.
func (r Record) HeaderTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.State.DefaultTitle()
}

// HeaderIcon is the icon shown in the pill.
func (r Record) HeaderIcon() string {
	if r.Icon != "" {
		return r.Icon
	}
	return r.State.DefaultIcon()
}

// Handle is returned by Open.
type Handle struct {
	ID       string
	Duration time.Duration
}
