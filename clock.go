package main

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakebf/pillbox/toast"
)

// programClock is a toast.Clock backed by real timers. A fired timer does not
// run its callback directly; it posts a timerFiredMsg so the callback runs on
// the bubbletea Update goroutine alongside every other engine call.
type programClock struct {
	mu   sync.Mutex
	send func(tea.Msg)
	seq  int
	live map[int]func()
	held []int // fired before attach
}

func newProgramClock() *programClock {
	return &programClock{live: make(map[int]func())}
}

// attach sets where fired timers are posted, usually (*tea.Program).Send.
// Timers that fire before attach are held and posted once attached. Send
// blocks until the program runs, so the held ones are posted from a goroutine.
func (c *programClock) attach(send func(tea.Msg)) {
	c.mu.Lock()
	c.send = send
	held := c.held
	c.held = nil
	c.mu.Unlock()
	if len(held) == 0 {
		return
	}
	go func() {
		for _, id := range held {
			send(timerFiredMsg{id: id})
		}
	}()
}

func (c *programClock) Now() time.Time { return time.Now() }

func (c *programClock) AfterFunc(d time.Duration, f func()) toast.Timer {
	c.mu.Lock()
	c.seq++
	id := c.seq
	c.live[id] = f
	c.mu.Unlock()
	t := &programTimer{c: c, id: id}
	t.t = time.AfterFunc(d, func() { c.post(id) })
	return t
}

func (c *programClock) post(id int) {
	c.mu.Lock()
	send := c.send
	if send == nil {
		c.held = append(c.held, id)
	}
	c.mu.Unlock()
	if send != nil {
		send(timerFiredMsg{id: id})
	}
}

// fire runs the callback for id unless it was stopped in the meantime.
func (c *programClock) fire(id int) {
	c.mu.Lock()
	f, ok := c.live[id]
	delete(c.live, id)
	c.mu.Unlock()
	if ok {
		f()
	}
}

// pending reports how many callbacks are still scheduled.
func (c *programClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

type programTimer struct {
	c  *programClock
	id int
	t  *time.Timer
}

func (t *programTimer) Stop() bool {
	t.t.Stop()
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	_, ok := t.c.live[t.id]
	delete(t.c.live, t.id)
	return ok
}
