package main

// ─── Messages ────────────────────────────────────────────────────────────────
//
// All messages are internal to the Update loop. Async tea.Cmd functions
// (in commands.go) and the program clock produce these; Update handles them.
// Messages with an `id` field use generation counters to ignore stale timers.

// timerFiredMsg delivers a programClock callback to the Update goroutine.
type timerFiredMsg struct {
	id int
}

// fileChangedMsg is sent by the fsnotify watcher after debounce.
type fileChangedMsg struct {
	files []fileChange
}

type fileChange struct {
	name string // base filename
	op   string // "created", "written", "removed" or "renamed"
}

// watchErrMsg reports a watcher error; the watch keeps running.
type watchErrMsg struct {
	err error
}

// copiedMsg reports text placed on the system clipboard by an action button.
type copiedMsg struct {
	text string
}

// updateAvailableMsg announces a newer pillbox release.
type updateAvailableMsg struct {
	version string
	url     string
}

// demoTickMsg drives the scripted demo forward one step.
type demoTickMsg struct {
	id int
}

type errMsg struct {
	err error
}
