package toast

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const settleEpsilon = 0.01

// SpringAnimator steps harmonica springs on frames scheduled through a Clock,
// so animation frames are delivered on the engine goroutine like any other
// timer.
type SpringAnimator struct {
	clock Clock
	fps   int
}

// NewSpringAnimator returns an Animator that advances fps frames per second.
func NewSpringAnimator(clock Clock, fps int) *SpringAnimator {
	if fps <= 0 {
		fps = 60
	}
	return &SpringAnimator{clock: clock, fps: fps}
}

type springRun struct {
	clock    Clock
	frame    time.Duration
	spring   harmonica.Spring
	pos, vel float64
	to       float64
	left     int
	step     func(float64)
	done     func()
	timer    Timer
	canceled bool
}

// Animate implements Animator. The run snaps to the target once the spring
// settles or its duration elapses, whichever comes first.
func (a *SpringAnimator) Animate(from, to float64, s Spring, step func(float64), done func()) Animation {
	frames := int(math.Ceil(s.Duration * float64(a.fps)))
	if frames < 1 {
		frames = 1
	}
	r := &springRun{
		clock:  a.clock,
		frame:  time.Second / time.Duration(a.fps),
		spring: harmonica.NewSpring(harmonica.FPS(a.fps), angularFrequency(s.Duration), dampingRatio(s.Bounce)),
		pos:    from,
		to:     to,
		left:   frames,
		step:   step,
		done:   done,
	}
	r.schedule()
	return r
}

func (r *springRun) schedule() {
	r.timer = r.clock.AfterFunc(r.frame, r.tick)
}

func (r *springRun) tick() {
	if r.canceled {
		return
	}
	r.pos, r.vel = r.spring.Update(r.pos, r.vel, r.to)
	r.left--
	if r.left <= 0 || (math.Abs(r.pos-r.to) < settleEpsilon && math.Abs(r.vel) < settleEpsilon) {
		r.canceled = true
		if r.step != nil {
			r.step(r.to)
		}
		if r.done != nil {
			r.done()
		}
		return
	}
	if r.step != nil {
		r.step(r.pos)
	}
	r.schedule()
}

func (r *springRun) Cancel() {
	r.canceled = true
	if r.timer != nil {
		r.timer.Stop()
	}
}

// angularFrequency maps a perceptual duration onto harmonica's stiffness:
// one full oscillation per duration.
func angularFrequency(seconds float64) float64 {
	if seconds <= 0 {
		seconds = 0.6
	}
	return 2 * math.Pi / seconds
}

// dampingRatio maps bounce (0..1) onto harmonica's damping ratio, where 1 is
// critically damped.
func dampingRatio(bounce float64) float64 {
	if bounce <= 0 {
		return 1
	}
	if bounce >= 1 {
		return 0.05
	}
	return 1 - bounce
}
