package effects

import (
	"sync"
	"time"
)

// Clock schedules the lightning timer chain
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// StormState is the lightning state machine's current phase
type StormState string

const (
	StormIdle      StormState = "idle"
	StormArmed     StormState = "armed"
	StormAfterglow StormState = "afterglow"
	StormStopped   StormState = "stopped"
)

// Flash is one lightning flash delivered to the display
type Flash struct {
	Intensity float64       `json:"intensity"`
	Duration  time.Duration `json:"duration"`
	Secondary bool          `json:"secondary"`
	Sequence  int           `json:"sequence"`
	At        time.Time     `json:"at"`
}

// Storm drives a lightning flicker schedule:
// armed -> primary flash -> afterglow -> optional secondary flash -> armed.
//
// Callbacks are serialized by the storm's mutex and the emit function runs
// while it is held, so emit must not call back into the Storm. After Stop
// returns no further flash is emitted.
type Storm struct {
	mu    sync.Mutex
	cfg   LightningConfig
	clock Clock
	rand  Rand
	emit  func(Flash)

	state   StormState
	timer   Timer
	gen     uint64
	nextAt  time.Time
	flashes int
}

// NewStorm creates an idle lightning schedule. Nil clock or rand use the real ones.
func NewStorm(cfg LightningConfig, clock Clock, rnd Rand, emit func(Flash)) *Storm {
	if clock == nil {
		clock = realClock{}
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	if emit == nil {
		emit = func(Flash) {}
	}

	return &Storm{
		cfg:   cfg,
		clock: clock,
		rand:  rnd,
		emit:  emit,
		state: StormIdle,
	}
}

// Start arms the first flash within the configured initial delay.
// Starting a running or stopped storm does nothing.
func (s *Storm) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StormIdle {
		return
	}

	delay := time.Duration(s.rand.Float64() * float64(s.cfg.InitialDelay))
	s.arm(delay)
}

// Stop cancels the pending timer. It is safe to call more than once.
func (s *Storm) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.state = StormStopped
	s.nextAt = time.Time{}
}

// State returns the current phase
func (s *Storm) State() StormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NextEventAt returns when the pending timer fires, zero if none is pending
func (s *Storm) NextEventAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextAt
}

// Flashes returns how many flashes have been emitted
func (s *Storm) Flashes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flashes
}

// arm and schedule must be called with mu held
func (s *Storm) arm(delay time.Duration) {
	s.state = StormArmed
	s.schedule(delay, s.primary)
}

func (s *Storm) schedule(delay time.Duration, next func()) {
	s.gen++
	gen := s.gen
	s.nextAt = s.clock.Now().Add(delay)
	s.timer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Stopped or superseded while waiting for the lock
		if s.gen != gen || s.state == StormStopped {
			return
		}
		s.timer = nil
		next()
	})
}

func (s *Storm) primary() {
	s.flash(s.cfg.PrimaryIntensity, s.cfg.PrimaryDuration, false)
	s.state = StormAfterglow
	s.schedule(s.cfg.SecondaryDelay, s.afterglow)
}

func (s *Storm) afterglow() {
	if s.rand.Float64() < s.cfg.SecondaryProbability {
		s.flash(s.cfg.SecondaryIntensity, s.cfg.SecondaryDuration, true)
	}
	s.arm(s.interval())
}

func (s *Storm) flash(intensity float64, duration time.Duration, secondary bool) {
	s.flashes++
	s.emit(Flash{
		Intensity: intensity,
		Duration:  duration,
		Secondary: secondary,
		Sequence:  s.flashes,
		At:        s.clock.Now(),
	})
}

func (s *Storm) interval() time.Duration {
	span := s.cfg.MaxInterval - s.cfg.MinInterval
	return s.cfg.MinInterval + time.Duration(s.rand.Float64()*float64(span))
}
