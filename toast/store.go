package toast

import (
	"github.com/rs/zerolog"
)

// Store is the ordered collection of toast records. Every mutation publishes
// the full snapshot to all subscribers before returning.
type Store struct {
	cfg   Config
	clock Clock
	ids   IDGenerator
	log   zerolog.Logger

	records  []Record
	removals map[string]Timer // id → pending physical removal

	subs    map[int]func([]Record)
	subSeq  int
	subKeys []int

	publishing bool
	dirty      bool
}

func newStore(cfg Config, clock Clock, ids IDGenerator, log zerolog.Logger) *Store {
	return &Store{
		cfg:      cfg,
		clock:    clock,
		ids:      ids,
		log:      log,
		removals: make(map[string]Timer),
		subs:     make(map[int]func([]Record)),
	}
}

// Subscribe registers fn for every snapshot and returns its unsubscribe func.
func (s *Store) Subscribe(fn func([]Record)) func() {
	s.subSeq++
	key := s.subSeq
	s.subs[key] = fn
	s.subKeys = append(s.subKeys, key)
	return func() {
		delete(s.subs, key)
		for i, k := range s.subKeys {
			if k == key {
				s.subKeys = append(s.subKeys[:i], s.subKeys[i+1:]...)
				break
			}
		}
	}
}

// Snapshot returns a copy of the current records in iteration order.
func (s *Store) Snapshot() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// active returns the index of the non-exiting record for id, or -1.
func (s *Store) active(id string) int {
	for i, r := range s.records {
		if r.ID == id && !r.Exiting {
			return i
		}
	}
	return -1
}

// Get returns the non-exiting record for id.
func (s *Store) Get(id string) (Record, bool) {
	if i := s.active(id); i >= 0 {
		return s.records[i], true
	}
	return Record{}, false
}

// Open inserts a record for d.ID, replacing any record with the same id. The
// replacement moves to the end of iteration order.
func (s *Store) Open(d Descriptor) Handle {
	id := d.ID
	if id == "" {
		id = DefaultID
	}
	if t, ok := s.removals[id]; ok {
		t.Stop()
		delete(s.removals, id)
	}
	kept := s.records[:0:0]
	for _, r := range s.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}

	state := d.State
	if !state.valid() {
		state = StateInfo
	}
	rec := Record{
		ID:           id,
		InstanceID:   s.ids(),
		State:        state,
		Title:        d.Title,
		Description:  d.Description,
		Icon:         d.Icon,
		Button:       d.Button,
		Fill:         d.Fill,
		Duration:     d.Duration,
		AutopilotOff: d.DisableAutopilot,
	}
	if rec.Fill == "" {
		rec.Fill = s.cfg.DefaultFill
	}
	if rec.Duration == 0 {
		rec.Duration = s.cfg.DefaultDuration
	}
	s.derive(&rec)

	s.records = append(kept, rec)
	s.publish()
	return Handle{ID: id, Duration: rec.Duration}
}

// Update merges d into the non-exiting record for id. Unknown ids are ignored.
func (s *Store) Update(id string, d Descriptor) {
	i := s.active(id)
	if i < 0 {
		s.log.Debug().Str("id", id).Msg("update for unknown toast ignored")
		return
	}
	rec := s.records[i]
	wasLoading := rec.State == StateLoading

	if d.State.valid() {
		rec.State = d.State
	}
	if d.Title != "" {
		rec.Title = d.Title
	}
	if d.Description != nil {
		rec.Description = d.Description
	}
	if d.Icon != "" {
		rec.Icon = d.Icon
	}
	if d.Button != nil {
		rec.Button = d.Button
	}
	if d.Fill != "" {
		rec.Fill = d.Fill
	}
	if d.DisableAutopilot {
		rec.AutopilotOff = true
	}
	switch {
	case d.Duration != 0:
		rec.Duration = d.Duration
	case wasLoading && rec.State != StateLoading:
		rec.Duration = s.cfg.DefaultDuration
	}
	s.derive(&rec)
	rec.InstanceID = s.ids()

	s.records[i] = rec
	s.publish()
}

// Dismiss marks the record exiting and schedules its removal after the exit
// window. Unknown or already exiting ids are ignored.
func (s *Store) Dismiss(id string) {
	i := s.active(id)
	if i < 0 {
		return
	}
	s.records[i].Exiting = true
	instance := s.records[i].InstanceID
	s.removals[id] = s.clock.AfterFunc(s.cfg.ExitDuration, func() {
		s.remove(id, instance)
	})
	s.publish()
}

// remove physically drops the exiting record for id if it still carries the
// given instance.
func (s *Store) remove(id, instance string) {
	delete(s.removals, id)
	for i, r := range s.records {
		if r.ID == id && r.InstanceID == instance && r.Exiting {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.publish()
			return
		}
	}
}

// derive applies the duration and autopilot rules shared by Open and Update.
func (s *Store) derive(r *Record) {
	r.Autopilot = nil
	if r.Duration < 0 || r.State == StateLoading {
		r.Duration = Infinite
	}
	if r.AutopilotOff || !r.Finite() {
		return
	}
	r.Autopilot = &Autopilot{
		Expand:   min(r.Duration, s.cfg.expandBase()),
		Collapse: min(r.Duration, s.cfg.collapseBase()),
	}
}

// publish notifies subscribers. Mutations made by a subscriber during
// publication are folded into one more round instead of recursing.
func (s *Store) publish() {
	if s.publishing {
		s.dirty = true
		return
	}
	s.publishing = true
	defer func() { s.publishing = false }()
	for {
		s.dirty = false
		snap := s.Snapshot()
		keys := append([]int(nil), s.subKeys...)
		for _, k := range keys {
			if fn, ok := s.subs[k]; ok {
				fn(snap)
			}
		}
		if !s.dirty {
			return
		}
	}
}

// stop cancels pending removals and drops subscribers.
func (s *Store) stop() {
	for id, t := range s.removals {
		t.Stop()
		delete(s.removals, id)
	}
	clear(s.subs)
	s.subKeys = nil
}
