package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/jakebf/pillbox/toast"
)

// markdown is a toast.Block payload rendered with glamour.
type markdown string

var (
	errNoNodeID     = errors.New("node has no id")
	errAlreadyShown = errors.New("node already mounted")
)

// termSurface draws toast nodes as bordered lipgloss boxes. Sizes are in
// cells; the engine animates them and View reads them back every frame.
type termSurface struct {
	style   string // glamour style, "dark" or "light"
	zones   *zone.Manager
	mounted map[string]*toast.Node
	bodies  map[string]body
	spin    string // current spinner frame for loading toasts
	paints  int
}

// body caches the wrapped card content for one applied instance.
type body struct {
	instance string
	lines    []string
}

func newTermSurface(style string, zones *zone.Manager) *termSurface {
	return &termSurface{
		style:   style,
		zones:   zones,
		mounted: make(map[string]*toast.Node),
		bodies:  make(map[string]body),
	}
}

func cardZone(id string) string   { return "toast:" + id }
func buttonZone(id string) string { return "button:" + id }

func (s *termSurface) mark(id, v string) string {
	if s.zones == nil {
		return v
	}
	return s.zones.Mark(id, v)
}

func (s *termSurface) Mount(n *toast.Node) error {
	if n.ID == "" {
		return errNoNodeID
	}
	if _, ok := s.mounted[n.ID]; ok {
		return fmt.Errorf("mount %q: %w", n.ID, errAlreadyShown)
	}
	s.mounted[n.ID] = n
	return nil
}

func (s *termSurface) Unmount(n *toast.Node) {
	delete(s.mounted, n.ID)
	delete(s.bodies, n.ID)
}

func (s *termSurface) Measure(n *toast.Node, cardWidth float64) toast.Metrics {
	h := n.Header()
	lines := s.body(n, int(cardWidth)-4)
	return toast.Metrics{
		HeaderWidth:  float64(lipgloss.Width(h.Icon + " " + h.Title)),
		HeaderHeight: 1,
		BodyHeight:   float64(len(lines)),
	}
}

// Paint only counts; bubbletea redraws after every message anyway.
func (s *termSurface) Paint(*toast.Node) { s.paints++ }

// body wraps the node's description and button to width and caches the result
// for the node's current instance.
func (s *termSurface) body(n *toast.Node, width int) []string {
	if b, ok := s.bodies[n.ID]; ok && b.instance == n.InstanceID {
		return b.lines
	}
	var text string
	switch d := n.Description.(type) {
	case toast.Text:
		text = lipgloss.NewStyle().Width(width).Render(string(d))
	case toast.Block:
		switch p := d.Payload.(type) {
		case nil:
		case markdown:
			text = glamourRender(string(p), s.style, width)
		default:
			text = lipgloss.NewStyle().Width(width).Render(fmt.Sprint(p))
		}
	}
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	if n.Button != nil {
		lines = append(lines, "", s.mark(buttonZone(n.ID), buttonStyle.Render(" "+n.Button.Title+" ")))
	}
	s.bodies[n.ID] = body{instance: n.InstanceID, lines: lines}
	return lines
}

// render draws n at its current animated size. Nodes that have shrunk below
// their border draw nothing.
func (s *termSurface) render(n *toast.Node) string {
	w := int(math.Round(n.Width))
	h := int(math.Round(n.Height))
	if w < 4 || h < 3 {
		return ""
	}
	inner := w - 4
	rows := h - 2

	hdr := n.Header()
	icon := hdr.Icon
	if n.State == toast.StateLoading && s.spin != "" {
		icon = s.spin
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(stateColor(n.State))
	if len(n.Headers) > 1 {
		headerStyle = headerStyle.Faint(true) // the previous header is still leaving
	}
	lines := []string{headerStyle.Render(truncateForWidth(icon+" "+hdr.Title, inner))}
	for _, l := range s.bodies[n.ID].lines {
		if len(lines) >= rows {
			break
		}
		if lipgloss.Width(l) > inner {
			l = truncateForWidth(l, inner)
		}
		lines = append(lines, l)
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(stateColor(n.State)).
		Background(lipgloss.Color(n.Fill)).
		Padding(0, 1).
		Width(w - 2).
		Height(rows).
		MaxHeight(h).
		Render(strings.Join(lines, "\n"))
	return s.mark(cardZone(n.ID), card)
}
