package toast

import (
	"context"
	"errors"
	"testing"
	"time"
)

type upload struct{ Name string }

func uploadOptions() PromiseOptions[upload] {
	return PromiseOptions[upload]{
		Loading: Descriptor{ID: "upload", Title: "Uploading"},
		Success: func(u upload) Descriptor { return Descriptor{Title: u.Name} },
		Error:   func(err error) Descriptor { return Descriptor{Title: err.Error()} },
	}
}

// terminalUpdates counts snapshots in which id leaves the loading state.
func terminalUpdates(e *Engine, id string) *int {
	n := 0
	last := StateLoading
	e.Subscribe(func(rs []Record) {
		for _, r := range rs {
			if r.ID != id || r.Exiting {
				continue
			}
			if last == StateLoading && r.State != StateLoading {
				n++
			}
			last = r.State
		}
	})
	return &n
}

func TestPromiseSuccess(t *testing.T) {
	h := newHarness(t)
	f := Resolved(upload{Name: "x.pdf"})
	updates := terminalUpdates(h.e, "upload")

	if got := Promise(h.e, f, uploadOptions()); got != f {
		t.Error("Promise should return the future it was given")
	}
	r := h.record("upload")
	if r.State != StateLoading || r.Duration != Infinite {
		t.Fatalf("before settle: state=%s duration=%v", r.State, r.Duration)
	}

	h.advance(0)
	r = h.record("upload")
	if r.State != StateSuccess || r.Title != "x.pdf" {
		t.Errorf("after settle: state=%s title=%q, want success x.pdf", r.State, r.Title)
	}
	if r.Duration != 6*time.Second || r.Autopilot == nil {
		t.Errorf("terminal toast should get the default duration, got %v autopilot=%v", r.Duration, r.Autopilot)
	}
	if *updates != 1 {
		t.Errorf("terminal updates = %d, want 1", *updates)
	}

	h.advance(6 * time.Second)
	if !h.record("upload").Exiting {
		t.Error("settled toast never dismissed")
	}
}

func TestPromiseError(t *testing.T) {
	h := newHarness(t)
	updates := terminalUpdates(h.e, "upload")
	Promise(h.e, Rejected[upload](errors.New("boom")), uploadOptions())
	h.advance(0)

	r := h.record("upload")
	if r.State != StateError || r.Title != "boom" {
		t.Errorf("state=%s title=%q, want error boom", r.State, r.Title)
	}
	if *updates != 1 {
		t.Errorf("terminal updates = %d, want 1", *updates)
	}
}

func TestPromiseDefaultsWithoutCallbacks(t *testing.T) {
	h := newHarness(t)
	Promise(h.e, Resolved(42), PromiseOptions[int]{Loading: Descriptor{ID: "n"}})
	if got := h.record("n").HeaderTitle(); got != "Loading" {
		t.Errorf("loading title = %q", got)
	}
	h.advance(0)
	if got := h.record("n").HeaderTitle(); got != "Success" {
		t.Errorf("settled title = %q, want the state default", got)
	}
}

func TestPromiseStatic(t *testing.T) {
	h := newHarness(t)
	Promise(h.e, Resolved("ok"), PromiseOptions[string]{
		Loading: Descriptor{ID: "s"},
		Success: Static[string](Descriptor{Title: "Done", Duration: Infinite}),
	})
	h.advance(0)
	r := h.record("s")
	if r.Title != "Done" || !r.Finite() {
		t.Errorf("record = %+v, want a finite Done toast", r)
	}
}

func TestPromiseFuncAcrossGoroutines(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	f := PromiseFunc(context.Background(), h.e, func(ctx context.Context) (upload, error) {
		<-release
		return upload{Name: "report.csv"}, nil
	}, uploadOptions())

	h.advance(time.Second)
	if h.record("upload").State != StateLoading {
		t.Fatal("settled before the operation finished")
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := f.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	h.advance(0)
	if r := h.record("upload"); r.State != StateSuccess || r.Title != "report.csv" {
		t.Errorf("state=%s title=%q", r.State, r.Title)
	}
}

func TestPromiseAfterDismissIsIgnored(t *testing.T) {
	h := newHarness(t)
	Promise(h.e, Resolved(upload{Name: "late"}), uploadOptions())
	h.e.Dismiss("upload")
	h.advance(0)
	r := h.record("upload")
	if !r.Exiting || r.State != StateLoading {
		t.Errorf("late settle touched a dismissed toast: %+v", r)
	}
}

func TestPromiseAfterTeardown(t *testing.T) {
	h := newHarness(t)
	h.e.Teardown()
	f := Resolved(upload{})
	if got := Promise(h.e, f, uploadOptions()); got != f {
		t.Error("Promise should still return its future")
	}
	if n := h.clock.Pending(); n != 0 {
		t.Errorf("%d callbacks scheduled on a torn-down engine", n)
	}
}

func TestFutureWaitHonoursContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
	f.settle(1, nil)
	f.settle(2, nil)
	if v, _ := f.Wait(context.Background()); v != 1 {
		t.Errorf("value = %d, want the first settlement", v)
	}
}
