package toast

// Property is an animated geometry attribute of a Node.
type Property int

const (
	PropWidth Property = iota
	PropHeight
	PropOffset
)

func (p Property) String() string {
	switch p {
	case PropWidth:
		return "width"
	case PropHeight:
		return "height"
	case PropOffset:
		return "offset"
	}
	return "unknown"
}

// Header is one layer of the pill's icon+title. During a title change the
// old layer stays with Leaving set until the header exit window closes.
type Header struct {
	Key     string
	State   State
	Title   string
	Icon    string
	Leaving bool
}

// Node is the visual state of one toast as the engine wants it painted.
// Surfaces read it in Paint and must not modify it.
type Node struct {
	ID         string
	InstanceID string

	Headers     []Header
	State       State
	Description Content
	Button      *Button
	Fill        string

	Open    bool
	Exiting bool

	// Width is the pill width; Height is the total height including the
	// header row; X is the pill's offset inside the card-wide slot; Offset is
	// the vertical drag displacement.
	Width  float64
	Height float64
	X      float64
	Offset float64
}

// Header returns the current (non-leaving) header layer.
func (n *Node) Header() Header {
	for i := len(n.Headers) - 1; i >= 0; i-- {
		if !n.Headers[i].Leaving {
			return n.Headers[i]
		}
	}
	return Header{}
}

// Metrics is a Surface measurement of a node's natural content size.
type Metrics struct {
	HeaderWidth  float64
	HeaderHeight float64
	// BodyHeight is the description and button height when laid out at the
	// card width.
	BodyHeight float64
}

// Surface mounts, measures and paints nodes.
type Surface interface {
	Mount(n *Node) error
	Unmount(n *Node)
	Measure(n *Node, cardWidth float64) Metrics
	Paint(n *Node)
}

// Spring describes a spring transition.
type Spring struct {
	Duration float64 // seconds
	Bounce   float64 // 0 settles without overshoot
}

// Animator drives a numeric value from one point to another.
type Animator interface {
	// Animate calls step with intermediate values and done once the value
	// has settled at to. Neither is called after Cancel.
	Animate(from, to float64, s Spring, step func(v float64), done func()) Animation
}

// Animation is an in-flight Animate call.
type Animation interface {
	Cancel()
}
