// Package clock owns simulation time. A single authoritative clock advances
// by scaled real time, either continuously or in deterministic fixed steps,
// and broadcasts every advancement so dependent systems (solar, environment)
// never sample time themselves.
package clock

import (
	"math"

	"github.com/rotisserie/eris"
)

// Mode determines how the clock advances.
type Mode string

const (
	// ModeRealTime advances by scaled real delta time, variable step.
	ModeRealTime Mode = "realtime"
	// ModeFixedStep advances in fixed quanta, deterministic.
	ModeFixedStep Mode = "fixedstep"
)

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRealTime, ModeFixedStep:
		return Mode(s), nil
	}
	return "", eris.Errorf("unknown clock mode %q", s)
}

const (
	maxTimeScale = 1000.0
	minFixedStep = 1.0 / 240.0
	maxFixedStep = 1.0
)

// Clock is the simulation time authority. Not safe for concurrent use;
// Advance belongs to the world goroutine, and read access from elsewhere
// goes through the world's snapshotting.
type Clock struct {
	simTimeSeconds   float64
	timeScale        float64
	paused           bool
	allowNegative    bool
	mode             Mode
	fixedStepSeconds float64
	lastStepSeconds  float64
	accumulator      float64
	subscribers      []func(simTimeSeconds float64)
}

type Option func(*Clock)

// WithMode sets the advancement mode.
func WithMode(mode Mode) Option {
	return func(c *Clock) {
		c.mode = mode
	}
}

// WithTimeScale sets the initial time scale.
func WithTimeScale(scale float64) Option {
	return func(c *Clock) {
		c.SetTimeScale(scale)
	}
}

// WithFixedStep sets the fixed step length in seconds.
func WithFixedStep(seconds float64) Option {
	return func(c *Clock) {
		c.SetFixedStep(seconds)
	}
}

func New(opts ...Option) *Clock {
	c := &Clock{
		timeScale:        1.0,
		mode:             ModeRealTime,
		fixedStepSeconds: 1.0 / 60.0,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnAdvanced registers a callback invoked with the new simulation time for
// every advancement, once per fixed step in fixed-step mode.
func (c *Clock) OnAdvanced(fn func(simTimeSeconds float64)) {
	c.subscribers = append(c.subscribers, fn)
}

func (c *Clock) SetPaused(paused bool) {
	c.paused = paused
}

func (c *Clock) IsPaused() bool {
	return c.paused
}

// SetTimeScale sets the simulation speed multiplier. Negative values
// require AllowNegativeTimeScale; zero is equivalent to pause.
func (c *Clock) SetTimeScale(scale float64) {
	if !c.allowNegative {
		scale = math.Max(0, scale)
	}
	c.timeScale = scale
	c.clampScale()
}

func (c *Clock) TimeScale() float64 {
	return c.timeScale
}

// SetAllowNegativeTimeScale enables rewinding. Whether the simulation can
// actually rewind is up to the systems consuming time; the clock only
// enforces the flag.
func (c *Clock) SetAllowNegativeTimeScale(allow bool) {
	c.allowNegative = allow
	if !allow {
		c.timeScale = math.Max(0, c.timeScale)
	}
}

// SetMode switches advancement mode and resets the fixed-step accumulator.
func (c *Clock) SetMode(mode Mode) {
	c.mode = mode
	c.accumulator = 0
}

func (c *Clock) Mode() Mode {
	return c.mode
}

// SetFixedStep sets the fixed step length, held between 240Hz and 1Hz.
func (c *Clock) SetFixedStep(seconds float64) {
	c.fixedStepSeconds = math.Min(math.Max(seconds, minFixedStep), maxFixedStep)
}

func (c *Clock) FixedStep() float64 {
	return c.fixedStepSeconds
}

func (c *Clock) SimTimeSeconds() float64 {
	return c.simTimeSeconds
}

// StepSeconds returns the step the simulation advances by: the configured
// quantum in fixed-step mode, the last applied delta otherwise.
func (c *Clock) StepSeconds() float64 {
	if c.mode == ModeFixedStep {
		return c.fixedStepSeconds
	}
	return c.lastStepSeconds
}

// TimeOfDayHours folds simulation time into a 24 hour day, always in
// [0, 24).
func (c *Clock) TimeOfDayHours() float64 {
	hours := math.Mod(c.simTimeSeconds/3600.0, 24.0)
	if hours < 0 {
		hours += 24.0
	}
	return hours
}

func (c *Clock) clampScale() {
	if c.allowNegative {
		c.timeScale = math.Min(math.Max(c.timeScale, -maxTimeScale), maxTimeScale)
	} else {
		c.timeScale = math.Min(math.Max(c.timeScale, 0), maxTimeScale)
	}
}

func (c *Clock) notify() {
	for _, fn := range c.subscribers {
		fn(c.simTimeSeconds)
	}
}

// Advance moves simulation time by a scaled real delta. In fixed-step mode
// deltas accumulate and drain in whole steps, each one broadcast
// separately; a negative time scale drains whole steps backwards.
func (c *Clock) Advance(realDeltaSeconds float64) {
	if c.paused || math.Abs(c.timeScale) < 1e-8 {
		c.lastStepSeconds = 0
		return
	}

	scaled := realDeltaSeconds * c.timeScale

	if c.mode == ModeRealTime {
		c.simTimeSeconds += scaled
		c.lastStepSeconds = scaled
		c.notify()
		return
	}

	c.accumulator += scaled
	if c.accumulator >= 0 {
		for c.accumulator >= c.fixedStepSeconds {
			c.simTimeSeconds += c.fixedStepSeconds
			c.accumulator -= c.fixedStepSeconds
			c.lastStepSeconds = c.fixedStepSeconds
			c.notify()
		}
	} else {
		for c.accumulator <= -c.fixedStepSeconds {
			c.simTimeSeconds -= c.fixedStepSeconds
			c.accumulator += c.fixedStepSeconds
			c.lastStepSeconds = -c.fixedStepSeconds
			c.notify()
		}
	}
}
