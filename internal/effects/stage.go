package effects

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saaga0h/jeeves-weather/internal/theme"
)

// FlashHandler receives lightning flashes for the scene that owns the storm.
// It runs inside the storm's callback and must not call back into the Stage.
type FlashHandler func(sceneID uuid.UUID, flash Flash)

// Instance is one active effect with its generated particles
type Instance struct {
	Effect    theme.Effect `json:"effect"`
	Particles []Particle   `json:"particles,omitempty"`

	storm *Storm
}

// Scene is the result of applying a theme decision
type Scene struct {
	ID        uuid.UUID        `json:"id"`
	Class     theme.Class      `json:"class"`
	Palette   theme.Palette    `json:"palette"`
	Condition string           `json:"condition"`
	TimeOfDay string           `json:"time_of_day"`
	Reason    string           `json:"reason"`
	Effects   []*Instance      `json:"effects"`
	Lightning *LightningConfig `json:"lightning,omitempty"`
	AppliedAt time.Time        `json:"applied_at"`
}

// Stage owns the active effect instances for one display.
// Apply always tears down the previous effects before instantiating new ones.
type Stage struct {
	mu      sync.Mutex
	cfg     Config
	clock   Clock
	rand    Rand
	onFlash FlashHandler
	logger  *slog.Logger

	scene *Scene
}

// StageOption customises a Stage
type StageOption func(*Stage)

// WithClock replaces the clock used for lightning scheduling and timestamps
func WithClock(c Clock) StageOption {
	return func(s *Stage) { s.clock = c }
}

// WithRand replaces the randomness source
func WithRand(r Rand) StageOption {
	return func(s *Stage) { s.rand = r }
}

// NewStage creates an empty stage
func NewStage(cfg Config, onFlash FlashHandler, logger *slog.Logger, opts ...StageOption) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	if onFlash == nil {
		onFlash = func(uuid.UUID, Flash) {}
	}

	s := &Stage{
		cfg:     cfg,
		clock:   realClock{},
		rand:    globalRand{},
		onFlash: onFlash,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply tears down the active effects, applies the decision's theme class and
// instantiates its effects in order. Lightning storms are started before Apply returns.
func (s *Stage) Apply(decision theme.Decision) *Scene {
	return s.ApplyThen(decision, nil)
}

// ApplyThen is Apply with announce called on the new scene before any storm starts,
// so no flash for the scene can precede it. announce must not call back into the Stage.
func (s *Stage) ApplyThen(decision theme.Decision, announce func(*Scene)) *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.teardownLocked()

	scene := &Scene{
		ID:        uuid.New(),
		Class:     decision.Class,
		Palette:   theme.PaletteFor(decision.Class),
		Condition: decision.Condition,
		TimeOfDay: string(decision.TimeOfDay),
		Reason:    decision.Reason,
		Effects:   make([]*Instance, 0, len(decision.Effects)),
		AppliedAt: s.clock.Now(),
	}

	for _, effect := range decision.Effects {
		instance := &Instance{Effect: effect}

		if effect.Kind == theme.EffectLightning {
			sceneID := scene.ID
			instance.storm = NewStorm(s.cfg.Lightning, s.clock, s.rand, func(f Flash) {
				s.onFlash(sceneID, f)
			})
			lightning := s.cfg.Lightning
			scene.Lightning = &lightning
		} else {
			instance.Particles = GenerateParticles(effect, s.cfg, s.rand)
		}

		scene.Effects = append(scene.Effects, instance)
	}

	s.scene = scene

	if announce != nil {
		announce(scene)
	}

	for _, instance := range scene.Effects {
		if instance.storm != nil {
			instance.storm.Start()
		}
	}

	s.logger.Debug("Applied theme",
		"scene_id", scene.ID,
		"class", scene.Class,
		"effects", len(scene.Effects),
		"removed_effects", removed,
		"reason", scene.Reason)

	return scene
}

// Teardown removes every active effect and clears the theme class
func (s *Stage) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.teardownLocked()
	s.scene = nil

	if removed > 0 {
		s.logger.Debug("Stage torn down", "removed_effects", removed)
	}
}

func (s *Stage) teardownLocked() int {
	if s.scene == nil {
		return 0
	}
	for _, instance := range s.scene.Effects {
		if instance.storm != nil {
			instance.storm.Stop()
		}
	}
	return len(s.scene.Effects)
}

// Class returns the applied theme class, empty when nothing is applied
func (s *Stage) Class() theme.Class {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scene == nil {
		return ""
	}
	return s.scene.Class
}

// Active returns the active effects in activation order
func (s *Stage) Active() []theme.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scene == nil {
		return []theme.Effect{}
	}

	active := make([]theme.Effect, len(s.scene.Effects))
	for i, instance := range s.scene.Effects {
		active[i] = instance.Effect
	}
	return active
}

// Scene returns the current scene, nil when nothing is applied
func (s *Stage) Scene() *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Storms returns the running lightning storms of the current scene
func (s *Stage) Storms() []*Storm {
	s.mu.Lock()
	defer s.mu.Unlock()

	var storms []*Storm
	if s.scene == nil {
		return storms
	}
	for _, instance := range s.scene.Effects {
		if instance.storm != nil {
			storms = append(storms, instance.storm)
		}
	}
	return storms
}
