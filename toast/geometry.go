package toast

import "math"

// pillWidth hugs the header content, never narrower than a circle of the
// collapsed height nor wider than the card.
func (c Config) pillWidth(m Metrics) float64 {
	w := m.HeaderWidth + c.PillPadding
	return math.Min(math.Max(w, c.CollapsedHeight), c.CardWidth)
}

func (c Config) minExpandedHeight() float64 {
	return c.CollapsedHeight * c.MinExpandedRatio
}

func (c Config) expandedHeight(m Metrics) float64 {
	header := math.Max(m.HeaderHeight, c.CollapsedHeight)
	return math.Max(c.minExpandedHeight(), header+m.BodyHeight)
}

// target returns the width and height an instance should settle at.
func (c Config) target(open bool, m Metrics) (width, height float64) {
	if open {
		return c.CardWidth, c.expandedHeight(m)
	}
	return c.pillWidth(m), c.CollapsedHeight
}

// pillX is the pill's horizontal offset inside a card-wide slot, keeping the
// pill anchored to the stack's edge.
func (c Config) pillX(width float64) float64 {
	switch c.Position {
	case TopLeft, BottomLeft:
		return 0
	case TopCenter, BottomCenter:
		return (c.CardWidth - width) / 2
	}
	return c.CardWidth - width
}

// clampOffset caps drag feedback at MaxDragOffset in either direction.
func (c Config) clampOffset(dy float64) float64 {
	return math.Max(-c.MaxDragOffset, math.Min(c.MaxDragOffset, dy))
}

func (c Config) pillSpring() Spring {
	return Spring{Duration: c.Animation.Seconds(), Bounce: c.PillBounce}
}

func (c Config) bodySpring(open bool) Spring {
	if open {
		return c.pillSpring()
	}
	return Spring{Duration: c.Animation.Seconds(), Bounce: c.BodyBounce}
}
