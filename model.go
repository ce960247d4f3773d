package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rs/zerolog"

	"github.com/jakebf/pillbox/toast"
)

// ─── Key Map ─────────────────────────────────────────────────────────────────

type keyMap struct {
	Success   key.Binding
	Error     key.Binding
	Warning   key.Binding
	Info      key.Binding
	Action    key.Binding
	Upload    key.Binding
	Update    key.Binding
	Dismiss   key.Binding
	Demo      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Success:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "success")),
		Error:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "error")),
		Warning:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warning")),
		Info:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		Action:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "action")),
		Upload:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "fake upload")),
		Update:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update latest")),
		Dismiss:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss latest")),
		Demo:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "demo")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Success, k.Error, k.Upload, k.Update, k.Dismiss, k.Demo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Open
		{k.Success, k.Error, k.Warning, k.Info, k.Action, k.Upload},
		// Change / app
		{k.Update, k.Dismiss, k.Demo, k.Help, k.Quit},
	}
}

// ─── Model ───────────────────────────────────────────────────────────────────

// outbox collects commands produced inside engine callbacks, such as a
// toast's button handler, so Update can return them.
type outbox struct {
	cmds []tea.Cmd
}

func (o *outbox) push(cmd tea.Cmd) { o.cmds = append(o.cmds, cmd) }

func (o *outbox) drain() []tea.Cmd {
	cmds := o.cmds
	o.cmds = nil
	return cmds
}

// hitFunc reports which toast, if any, is under the pointer and whether the
// pointer is on its action button.
type hitFunc func(tea.MouseMsg) (id string, onButton bool)

type model struct {
	// Layout
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool // true after first WindowSizeMsg

	// Toasts
	engine   *toast.Engine
	clock    toast.Clock
	surface  *termSurface
	zones    *zone.Manager
	outbox   *outbox
	spinner  spinner.Model
	spinning bool
	seq      int // suffix for generated toast ids
	uploads  int // uploads started; every third one fails

	// Pointer
	hit     hitFunc
	hoverID string
	dragID  string

	// Side effects, swapped out in tests
	ctx    context.Context
	cancel context.CancelFunc
	upload func(name string, fail bool) func(context.Context) (upload, error)
	copy   func(text string) tea.Cmd

	cfg     config
	log     zerolog.Logger
	watcher *fsnotify.Watcher
	demo    demoState
}

func newModel(cfg config, clock toast.Clock, log zerolog.Logger, watcher *fsnotify.Watcher) (model, error) {
	style := "dark"
	if !lipgloss.HasDarkBackground() {
		style = "light"
	}
	zones := zone.New()
	surface := newTermSurface(style, zones)
	engine, err := toast.New(toast.Options{
		Config:   cfg.toastConfig(),
		Clock:    clock,
		Surface:  surface,
		Animator: toast.NewSpringAnimator(clock, 60),
		Logger:   log,
	})
	if err != nil {
		zones.Close()
		return model{}, fmt.Errorf("start toast engine: %w", err)
	}
	if err := engine.Init(); err != nil {
		zones.Close()
		return model{}, fmt.Errorf("start toast engine: %w", err)
	}

	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(colorDim)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(colorDim)
	h.Styles.FullKey = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Width(10)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(colorFull)
	h.Styles.FullSeparator = lipgloss.NewStyle()

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(colorDim)

	ctx, cancel := context.WithCancel(context.Background())
	return model{
		keys:    newKeyMap(),
		help:    h,
		engine:  engine,
		clock:   clock,
		surface: surface,
		zones:   zones,
		outbox:  &outbox{},
		spinner: s,
		hit:     zoneHit(zones, engine),
		ctx:     ctx,
		cancel:  cancel,
		upload: func(name string, fail bool) func(context.Context) (upload, error) {
			return fakeUpload(name, fail, 1200*time.Millisecond+time.Duration(len(name)%4)*400*time.Millisecond)
		},
		copy:    copyToClipboard,
		cfg:     cfg,
		log:     log,
		watcher: watcher,
	}, nil
}

// zoneHit hit-tests against the zones marked by the last View, newest toast
// first.
func zoneHit(zones *zone.Manager, e *toast.Engine) hitFunc {
	return func(msg tea.MouseMsg) (string, bool) {
		nodes := e.Nodes()
		for i := len(nodes) - 1; i >= 0; i-- {
			id := nodes[i].ID
			if z := zones.Get(cardZone(id)); z == nil || !z.InBounds(msg) {
				continue
			}
			b := zones.Get(buttonZone(id))
			return id, b != nil && b.InBounds(msg)
		}
		return "", false
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if cmd := checkForUpdate(getVersion()); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.watcher != nil {
		cmds = append(cmds, watchDir(m.watcher))
	}
	if m.demo.active {
		cmds = append(cmds, m.demoTick(demoStartDelay))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// teardown stops every timer and in-flight upload. The engine ignores calls
// afterwards.
func (m *model) teardown() {
	m.cancel()
	m.engine.Teardown()
	m.demo.active = false
	m.demo.tickID++
}

// ─── Toasts ──────────────────────────────────────────────────────────────────

// samples are the toasts opened by the state keys.
var samples = map[toast.State]toast.Descriptor{
	toast.StateSuccess: {Title: "Changes saved", Description: toast.Text("Your profile was updated and synced to every device.")},
	toast.StateError:   {Title: "Payment failed", Description: toast.Text("The card was declined. Try another payment method.")},
	toast.StateWarning: {Title: "Storage almost full", Description: toast.Block{Payload: markdown("You are using **91%** of your quota.\n\n- empty the trash\n- remove old backups")}},
	toast.StateInfo:    {Title: "New sign-in", Description: toast.Text("Someone signed in to your account from a new terminal.")},
	toast.StateAction:  {Title: "Invite link ready", Description: toast.Text("Anyone with the link can join the workspace.")},
}

// open shows d under a fresh id and applies the app-wide autopilot setting.
func (m *model) open(d toast.Descriptor) toast.Handle {
	m.seq++
	if d.ID == "" {
		d.ID = fmt.Sprintf("%s-%d", d.State, m.seq)
	}
	return m.engine.Open(m.cfg.decorate(d))
}

func (m *model) openSample(state toast.State) toast.Handle {
	d := samples[state]
	d.State = state
	if state == toast.StateAction {
		link := fmt.Sprintf("https://pillbox.dev/invite/%04d", m.seq+1)
		out, cp := m.outbox, m.copy
		d.Button = &toast.Button{Title: "Copy link", OnClick: func() { out.push(cp(link)) }}
	}
	return m.open(d)
}

// openUpdate announces a new release with a button that copies its link. It
// stays twice as long as other toasts.
func (m *model) openUpdate(msg updateAvailableMsg) toast.Handle {
	out, cp := m.outbox, m.copy
	d := toast.Descriptor{
		ID:          "update",
		State:       toast.StateAction,
		Title:       "pillbox " + msg.version + " is out",
		Description: toast.Text("You are running " + getVersion() + "."),
		Duration:    2 * m.engine.Config().DefaultDuration,
	}
	if msg.url != "" {
		d.Button = &toast.Button{Title: "Copy link", OnClick: func() { out.push(cp(msg.url)) }}
	}
	return m.open(d)
}

// startUpload runs a simulated upload behind a loading toast that settles to
// success or error.
func (m *model) startUpload(fail bool) string {
	m.uploads++
	name := fmt.Sprintf("report-%d.pdf", m.uploads)
	id := fmt.Sprintf("upload-%d", m.uploads)
	cfg := m.cfg
	toast.PromiseFunc(m.ctx, m.engine, m.upload(name, fail), toast.PromiseOptions[upload]{
		Loading: cfg.decorate(toast.Descriptor{ID: id, Title: "Uploading " + name, Description: toast.Text("Sending to the shared drive…")}),
		Success: func(u upload) toast.Descriptor {
			return cfg.decorate(toast.Descriptor{
				Title:       "Uploaded " + u.name,
				Description: toast.Text(fmt.Sprintf("%s in %s", formatBytes(u.size), u.took.Round(100*time.Millisecond))),
			})
		},
		Error: func(err error) toast.Descriptor {
			return cfg.decorate(toast.Descriptor{Title: "Upload failed", Description: toast.Text(err.Error())})
		},
	})
	m.log.Info().Str("id", id).Bool("fail", fail).Msg("upload started")
	return id
}

// latestID is the newest toast that is not already leaving.
func (m model) latestID() string {
	rs := m.engine.Records()
	for i := len(rs) - 1; i >= 0; i-- {
		if !rs[i].Exiting {
			return rs[i].ID
		}
	}
	return ""
}

func (m model) hasLoading() bool {
	for _, r := range m.engine.Records() {
		if r.State == toast.StateLoading && !r.Exiting {
			return true
		}
	}
	return false
}

// ─── Update ──────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKeyMsg(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case timerFiredMsg:
		if c, ok := m.clock.(*programClock); ok {
			c.fire(msg.id)
		}

	case spinner.TickMsg:
		if !m.hasLoading() {
			m.spinning = false
			m.surface.spin = ""
			break
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.surface.spin = m.spinner.View()
		cmds = append(cmds, cmd)

	case fileChangedMsg:
		for _, f := range msg.files {
			m.open(toast.Descriptor{
				ID:          "watch:" + f.name,
				State:       toast.StateInfo,
				Title:       f.name,
				Description: toast.Text(fmt.Sprintf("%s in %s", f.op, contractHome(m.cfg.WatchDir))),
			})
		}
		m.log.Debug().Int("files", len(msg.files)).Msg("watch event")
		if m.watcher != nil {
			cmds = append(cmds, watchDir(m.watcher))
		}

	case watchErrMsg:
		m.log.Warn().Err(msg.err).Msg("watcher error")
		if m.watcher != nil {
			cmds = append(cmds, watchDir(m.watcher))
		}

	case updateAvailableMsg:
		m.openUpdate(msg)
		cmds = append(cmds, markUpdateNotified(msg.version))

	case copiedMsg:
		m.open(toast.Descriptor{ID: "copied", State: toast.StateSuccess, Title: "Copied to clipboard", Description: toast.Text(msg.text)})

	case errMsg:
		m.log.Error().Err(msg.err).Msg("command failed")
		m.open(toast.Descriptor{ID: "error", State: toast.StateError, Title: "Something went wrong", Description: toast.Text(msg.err.Error())})

	case demoTickMsg:
		if m.demo.active && msg.id == m.demo.tickID {
			cmds = append(cmds, m.advanceDemo())
		}
	}

	cmds = append(cmds, m.outbox.drain()...)
	if !m.spinning && m.hasLoading() {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.teardown()
		return m, tea.Quit
	}
	if m.help.ShowAll {
		m.help.ShowAll = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.teardown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
	case key.Matches(msg, m.keys.Success):
		m.openSample(toast.StateSuccess)
	case key.Matches(msg, m.keys.Error):
		m.openSample(toast.StateError)
	case key.Matches(msg, m.keys.Warning):
		m.openSample(toast.StateWarning)
	case key.Matches(msg, m.keys.Info):
		m.openSample(toast.StateInfo)
	case key.Matches(msg, m.keys.Action):
		m.openSample(toast.StateAction)
	case key.Matches(msg, m.keys.Upload):
		m.startUpload(m.uploads%3 == 2)
	case key.Matches(msg, m.keys.Update):
		if id := m.latestID(); id != "" {
			m.engine.Update(id, toast.Descriptor{
				Title:       "Updated",
				Description: toast.Text("Content swapped at " + m.clock.Now().Format("15:04:05") + "."),
			})
		}
	case key.Matches(msg, m.keys.Dismiss):
		if id := m.latestID(); id != "" {
			m.engine.Dismiss(id)
		}
	case key.Matches(msg, m.keys.Demo):
		if m.demo.active {
			m.exitDemo()
			return m, nil
		}
		return m, m.enterDemo()
	}
	return m, nil
}

// handleMouse turns terminal mouse events into engine pointer calls. A drag
// owns the pointer until release; otherwise motion moves the hover.
func (m *model) handleMouse(msg tea.MouseMsg) {
	y := float64(msg.Y)
	if m.dragID != "" {
		switch msg.Action {
		case tea.MouseActionMotion:
			m.engine.PointerMove(m.dragID, y)
			return
		case tea.MouseActionRelease:
			m.engine.PointerUp(m.dragID, y)
			m.dragID = ""
		}
	}

	id, onButton := m.hit(msg)
	if id != m.hoverID {
		if m.hoverID != "" {
			m.engine.HoverLeave(m.hoverID)
		}
		m.hoverID = id
		if id != "" {
			m.engine.HoverEnter(id)
		}
	}

	if id != "" && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.engine.PointerDown(id, y, onButton)
		if onButton {
			m.engine.Activate(id)
			return
		}
		m.dragID = id
	}
}
