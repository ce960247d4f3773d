package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakebf/pillbox/toast"
)

// ─── Demo ────────────────────────────────────────────────────────────────────
//
// A scripted tour of the engine. Each step runs one or more lifecycle calls
// and then waits before the next; pressing d again stops it.

const demoStartDelay = 400 * time.Millisecond

// demoState holds the scripted demo's progress.
type demoState struct {
	active bool
	tickID int // generation counter; stale ticks are ignored
	step   int // current index into demoScript
}

// demoStep is one unit of the demo script.
type demoStep struct {
	run   func(m *model)
	delay time.Duration // pause after running this step
}

var demoScript = []demoStep{
	{run: func(m *model) {
		m.open(toast.Descriptor{ID: "demo-welcome", State: toast.StateInfo, Title: "Welcome to pillbox",
			Description: toast.Text("Toasts arrive as a pill, open into a card, then tuck away again.")})
	}, delay: 3 * time.Second},
	{run: func(m *model) {
		m.open(toast.Descriptor{ID: "demo-saved", State: toast.StateSuccess, Title: "Draft saved"})
	}, delay: 1500 * time.Millisecond},
	{run: func(m *model) {
		m.startUpload(false)
	}, delay: 3 * time.Second},
	{run: func(m *model) {
		m.engine.Update("demo-welcome", toast.Descriptor{Title: "Hover to keep a toast open",
			Description: toast.Text("Timers pause while the pointer is over any toast. Drag one up or down to throw it away.")})
	}, delay: 3 * time.Second},
	{run: func(m *model) {
		m.openSample(toast.StateWarning)
	}, delay: 3 * time.Second},
	{run: func(m *model) {
		m.openSample(toast.StateAction)
	}, delay: 3 * time.Second},
	{run: func(m *model) {
		m.open(toast.Descriptor{ID: "demo-sync", State: toast.StateError, Title: "Sync failed",
			Description: toast.Text("Could not reach the server. We will retry in a minute.")})
	}, delay: 2500 * time.Millisecond},
	{run: func(m *model) {
		for _, r := range m.engine.Records() {
			m.engine.Dismiss(r.ID)
		}
	}, delay: 0},
}

// ─── Lifecycle ───────────────────────────────────────────────────────────────

func (m *model) enterDemo() tea.Cmd {
	m.demo = demoState{
		active: true,
		tickID: m.demo.tickID + 1,
		step:   -1, // not started yet
	}
	return m.demoTick(demoStartDelay)
}

func (m *model) exitDemo() {
	m.demo.active = false
	m.demo.tickID++
}

func (m *model) demoTick(d time.Duration) tea.Cmd {
	id := m.demo.tickID
	return tea.Tick(d, func(time.Time) tea.Msg {
		return demoTickMsg{id: id}
	})
}

// ─── State machine ───────────────────────────────────────────────────────────

func (m *model) advanceDemo() tea.Cmd {
	m.demo.step++
	if m.demo.step >= len(demoScript) {
		m.exitDemo()
		return nil
	}
	s := demoScript[m.demo.step]
	s.run(m)
	if m.demo.step == len(demoScript)-1 {
		m.exitDemo()
		return nil
	}
	return m.demoTick(s.delay)
}
