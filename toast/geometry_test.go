package toast

import (
	"testing"
	"time"
)

func TestPillWidth(t *testing.T) {
	c := DefaultConfig()
	tests := []struct {
		header float64
		want   float64
	}{
		{0, 40}, // never narrower than a circle
		{2, 40},
		{64, 100}, // hugs the header plus padding
		{313, 349},
		{314, 350},
		{400, 350}, // never wider than the card
	}
	for _, tt := range tests {
		if got := c.pillWidth(Metrics{HeaderWidth: tt.header}); got != tt.want {
			t.Errorf("pillWidth(%v) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestExpandedHeightHasFloor(t *testing.T) {
	c := DefaultConfig()
	if got := c.expandedHeight(Metrics{HeaderHeight: 20, BodyHeight: 10}); got != 86 {
		t.Errorf("short body: height = %v, want the 86 floor", got)
	}
	if got := c.expandedHeight(Metrics{HeaderHeight: 50, BodyHeight: 100}); got != 150 {
		t.Errorf("tall body: height = %v, want 150", got)
	}
}

func TestPillXFollowsPosition(t *testing.T) {
	tests := []struct {
		pos  Position
		want float64
	}{
		{TopLeft, 0},
		{BottomLeft, 0},
		{TopCenter, 125},
		{BottomCenter, 125},
		{TopRight, 250},
		{BottomRight, 250},
	}
	for _, tt := range tests {
		c := DefaultConfig()
		c.Position = tt.pos
		if got := c.pillX(100); got != tt.want {
			t.Errorf("%s: pillX = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestClampOffset(t *testing.T) {
	c := DefaultConfig()
	for in, want := range map[float64]float64{-100: -20, -20: -20, 5: 5, 21: 20} {
		if got := c.clampOffset(in); got != want {
			t.Errorf("clampOffset(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestAutopilotBases(t *testing.T) {
	c := DefaultConfig()
	if c.expandBase() != 150*time.Millisecond || c.collapseBase() != 4*time.Second {
		t.Errorf("bases = %v/%v, want 150ms/4s", c.expandBase(), c.collapseBase())
	}
	c.DefaultDuration = time.Second
	if c.collapseBase() < c.expandBase() {
		t.Errorf("collapse %v before expand %v", c.collapseBase(), c.expandBase())
	}
}

func TestWithDefaults(t *testing.T) {
	if got := (Config{}).withDefaults(); got != DefaultConfig() {
		t.Errorf("zero config = %+v, want DefaultConfig", got)
	}
	got := Config{DefaultDuration: 10 * time.Second, Position: BottomLeft}.withDefaults()
	if got.ExitDuration != time.Second {
		t.Errorf("ExitDuration = %v, want a tenth of the duration", got.ExitDuration)
	}
	if got.Position != BottomLeft || got.CardWidth != 350 {
		t.Errorf("partial config = %+v", got)
	}
}
