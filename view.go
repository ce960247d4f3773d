package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jakebf/pillbox/toast"
)

// ─── Colors ──────────────────────────────────────────────────────────────────

var (
	colorBlack  = lipgloss.Color("0")
	colorAccent = lipgloss.Color("5")  // magenta: brand, keys, action toasts
	colorDim    = lipgloss.Color("8")  // gray: secondary text, loading toasts
	colorFull   = lipgloss.Color("7")  // white: full help descriptions
	colorRed    = lipgloss.Color("9")  // error toasts
	colorGreen  = lipgloss.Color("10") // success toasts
	colorYellow = lipgloss.Color("11") // warning toasts
	colorBlue   = lipgloss.Color("12") // info toasts
)

func stateColor(s toast.State) lipgloss.Color {
	switch s {
	case toast.StateSuccess:
		return colorGreen
	case toast.StateError:
		return colorRed
	case toast.StateWarning:
		return colorYellow
	case toast.StateInfo:
		return colorBlue
	case toast.StateAction:
		return colorAccent
	}
	return colorDim
}

// ─── Styles ──────────────────────────────────────────────────────────────────

var (
	helpTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1)
	helpBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 3)
	buttonStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBlack).Background(colorAccent)
	demoBadgeStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

func truncateForWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	limit := maxWidth - 1
	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if width+rw > limit {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + "…"
}

// stackAlign maps a stack position onto lipgloss placement.
func stackAlign(p toast.Position) (h, v lipgloss.Position) {
	switch p {
	case toast.TopLeft, toast.BottomLeft:
		h = lipgloss.Left
	case toast.TopCenter, toast.BottomCenter:
		h = lipgloss.Center
	default:
		h = lipgloss.Right
	}
	switch p {
	case toast.BottomLeft, toast.BottomCenter, toast.BottomRight:
		v = lipgloss.Bottom
	default:
		v = lipgloss.Top
	}
	return h, v
}

// renderStack lays the toasts out in store order, newest nearest the anchored
// edge. Each toast sits in a card-wide slot at its animated X, shifted by its
// drag offset.
func (m model) renderStack() string {
	cfg := m.engine.Config()
	top := cfg.Position == toast.TopLeft || cfg.Position == toast.TopCenter || cfg.Position == toast.TopRight
	nodes := m.engine.Nodes()
	slot := lipgloss.NewStyle().Width(int(cfg.CardWidth))

	var slots []string
	for i := range nodes {
		n := nodes[i]
		if top {
			n = nodes[len(nodes)-1-i]
		}
		card := m.surface.render(n)
		if card == "" {
			continue
		}
		card = slot.Render(lipgloss.NewStyle().PaddingLeft(int(math.Round(n.X))).Render(card))
		switch off := int(math.Round(n.Offset)); {
		case off > 0:
			card = strings.Repeat("\n", off) + card
		case off < 0:
			card += strings.Repeat("\n", -off)
		}
		slots = append(slots, card)
	}
	return lipgloss.JoinVertical(lipgloss.Left, slots...)
}

// ─── View ────────────────────────────────────────────────────────────────────

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}
	bodyH := m.height - 1
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	if stack := m.renderStack(); stack != "" {
		h, v := stackAlign(m.engine.Config().Position)
		stack = lipgloss.NewStyle().MaxHeight(bodyH).MaxWidth(m.width).Render(stack)
		body = lipgloss.Place(m.width, bodyH, h, v, stack)
	} else {
		hint := lipgloss.NewStyle().Foreground(colorDim).Align(lipgloss.Center).
			Render("No toasts\n\ns e w i a  open a toast  ·  l  fake upload\n\nd  play the demo")
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, hint)
	}

	statusBar := " " + m.help.ShortHelpView(m.keys.ShortHelp())
	if m.demo.active {
		statusBar = " " + demoBadgeStyle.Render("demo") + " " + statusBar
	}
	base := body + "\n" + lipgloss.NewStyle().MaxWidth(m.width).Render(statusBar)

	if m.help.ShowAll {
		content := helpTitleStyle.Render("Keybindings") + "\n" + m.help.FullHelpView(m.keys.FullHelp())

		// Keep the help modal comfortably narrow on wide terminals while still
		// fitting on small screens.
		modalMaxW := m.width - 4
		if modalMaxW > 76 {
			modalMaxW = 76
		}
		if modalMaxW < 20 {
			modalMaxW = 20
		}

		// helpBoxStyle uses 1-cell borders and 3-cell horizontal padding.
		contentMaxW := modalMaxW - 8
		if contentMaxW < 12 {
			contentMaxW = 12
		}

		content = lipgloss.NewStyle().MaxWidth(contentMaxW).Render(content)
		overlay := helpBoxStyle.MaxWidth(modalMaxW).Render(content)
		base = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(colorBlack),
		)
	}

	if m.zones == nil {
		return base
	}
	return m.zones.Scan(base)
}
