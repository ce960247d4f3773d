package toast

import "time"

// Position is the corner or edge the toast stack is anchored to.
type Position string

const (
	TopLeft      Position = "top-left"
	TopCenter    Position = "top-center"
	TopRight     Position = "top-right"
	BottomLeft   Position = "bottom-left"
	BottomCenter Position = "bottom-center"
	BottomRight  Position = "bottom-right"
)

// DefaultID is the slot used when a descriptor has no ID, so repeated
// anonymous calls replace one another.
const DefaultID = "default"

// DefaultFill is the card background used when a descriptor has no Fill.
const DefaultFill = "#FFFFFF"

// Config holds the engine's timing and geometry tunables. Geometry values are
// in whatever unit the Surface measures in.
type Config struct {
	DefaultDuration time.Duration
	ExitDuration    time.Duration
	SwapWindow      time.Duration
	HeaderExit      time.Duration

	Animation  time.Duration
	PillBounce float64
	BodyBounce float64

	Position         Position
	CollapsedHeight  float64
	CardWidth        float64
	PillPadding      float64
	MinExpandedRatio float64

	MaxDragOffset    float64
	DismissThreshold float64

	DefaultFill string
}

// DefaultConfig returns a fresh default config.
func DefaultConfig() Config {
	const duration = 6 * time.Second
	return Config{
		DefaultDuration:  duration,
		ExitDuration:     duration / 10,
		SwapWindow:       200 * time.Millisecond,
		HeaderExit:       420 * time.Millisecond,
		Animation:        600 * time.Millisecond,
		PillBounce:       0.25,
		BodyBounce:       0,
		Position:         TopRight,
		CollapsedHeight:  40,
		CardWidth:        350,
		PillPadding:      36,
		MinExpandedRatio: 2.15,
		MaxDragOffset:    20,
		DismissThreshold: 30,
		DefaultFill:      DefaultFill,
	}
}

// expandBase is how long after content is applied autopilot opens the card.
func (c Config) expandBase() time.Duration {
	return c.DefaultDuration * 25 / 1000
}

// collapseBase is how long after content is applied autopilot closes the card.
func (c Config) collapseBase() time.Duration {
	d := c.DefaultDuration - 2*time.Second
	if d < c.expandBase() {
		return c.expandBase()
	}
	return d
}

// withDefaults fills zero fields from DefaultConfig. A zero Config is
// DefaultConfig, including its bounce and padding.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = d.DefaultDuration
	}
	if c.ExitDuration <= 0 {
		c.ExitDuration = c.DefaultDuration / 10
	}
	if c.SwapWindow <= 0 {
		c.SwapWindow = d.SwapWindow
	}
	if c.HeaderExit <= 0 {
		c.HeaderExit = d.HeaderExit
	}
	if c.Animation <= 0 {
		c.Animation = d.Animation
	}
	if c.Position == "" {
		c.Position = d.Position
	}
	if c.CollapsedHeight <= 0 {
		c.CollapsedHeight = d.CollapsedHeight
	}
	if c.CardWidth <= 0 {
		c.CardWidth = d.CardWidth
	}
	if c.PillPadding < 0 {
		c.PillPadding = 0
	}
	if c.MinExpandedRatio <= 0 {
		c.MinExpandedRatio = d.MinExpandedRatio
	}
	if c.MaxDragOffset <= 0 {
		c.MaxDragOffset = d.MaxDragOffset
	}
	if c.DismissThreshold <= 0 {
		c.DismissThreshold = d.DismissThreshold
	}
	if c.DefaultFill == "" {
		c.DefaultFill = d.DefaultFill
	}
	return c
}
