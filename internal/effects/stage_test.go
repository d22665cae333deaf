package effects

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/jeeves-weather/internal/daytime"
	"github.com/saaga0h/jeeves-weather/internal/theme"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type sceneFlashes struct {
	mu     sync.Mutex
	scenes []uuid.UUID
}

func (s *sceneFlashes) handle(id uuid.UUID, _ Flash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes = append(s.scenes, id)
}

func (s *sceneFlashes) ids() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.scenes...)
}

func newTestStage(clock *fakeClock, onFlash FlashHandler) *Stage {
	return NewStage(DefaultConfig(), onFlash, testLogger(), WithClock(clock), WithRand(newSeqRand(0.5)))
}

func TestStage_ApplyThunderstorm(t *testing.T) {
	clock := newFakeClock()
	stage := newTestStage(clock, nil)

	scene := stage.Apply(theme.Select(theme.ConditionThunderShowersDay, daytime.Day))

	assert.Equal(t, theme.ClassThunderstorm, stage.Class())
	assert.Equal(t, []theme.Effect{theme.Rain(), theme.Lightning()}, stage.Active())
	assert.Equal(t, theme.PaletteFor(theme.ClassThunderstorm), scene.Palette)

	require.Len(t, scene.Effects, 2)
	assert.Len(t, scene.Effects[0].Particles, 50)
	assert.Empty(t, scene.Effects[1].Particles)
	require.NotNil(t, scene.Lightning)

	storms := stage.Storms()
	require.Len(t, storms, 1)
	assert.Equal(t, StormArmed, storms[0].State())
}

func TestStage_ApplyTearsDownPreviousEffects(t *testing.T) {
	clock := newFakeClock()
	stage := newTestStage(clock, nil)

	stage.Apply(theme.Select(theme.ConditionThunderRain, daytime.Night))
	storm := stage.Storms()[0]

	stage.Apply(theme.Select(theme.ConditionClearDay, daytime.Day))

	assert.Equal(t, StormStopped, storm.State())
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, theme.ClassClearDay, stage.Class())
	assert.Empty(t, stage.Active())
	assert.Empty(t, stage.Storms())
}

func TestStage_ApplyIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	stage := newTestStage(clock, nil)
	decision := theme.Select(theme.ConditionThunderShowersNight, daytime.LateNight)

	stage.Apply(decision)
	once := stage.Active()
	first := stage.Storms()[0]

	stage.Apply(decision)
	twice := stage.Active()

	assert.Equal(t, once, twice)
	assert.Equal(t, theme.ClassThunderstorm, stage.Class())
	assert.Equal(t, StormStopped, first.State())
	assert.Len(t, stage.Storms(), 1)
	assert.Equal(t, 1, clock.Pending())
}

func TestStage_CloudCountsFollowDecision(t *testing.T) {
	stage := newTestStage(newFakeClock(), nil)

	scene := stage.Apply(theme.Select(theme.ConditionPartlyCloudyNight, daytime.Night))
	require.Len(t, scene.Effects, 2)
	assert.Len(t, scene.Effects[0].Particles, 3)
	assert.Len(t, scene.Effects[1].Particles, 200)

	scene = stage.Apply(theme.Select(theme.ConditionCloudy, daytime.Day))
	require.Len(t, scene.Effects, 1)
	assert.Len(t, scene.Effects[0].Particles, 6)
}

func TestStage_Teardown(t *testing.T) {
	clock := newFakeClock()
	stage := newTestStage(clock, nil)

	stage.Apply(theme.Select(theme.ConditionThunder, daytime.Day))
	storm := stage.Storms()[0]

	stage.Teardown()

	assert.Equal(t, theme.Class(""), stage.Class())
	assert.Empty(t, stage.Active())
	assert.Nil(t, stage.Scene())
	assert.Equal(t, StormStopped, storm.State())

	// Tearing down an empty stage is harmless
	stage.Teardown()
}

func TestStage_FlashesCarrySceneID(t *testing.T) {
	clock := newFakeClock()
	flashes := &sceneFlashes{}
	stage := newTestStage(clock, flashes.handle)

	scene := stage.Apply(theme.Select(theme.ConditionThunderRain, daytime.Day))
	clock.Advance(DefaultConfig().Lightning.InitialDelay)

	ids := flashes.ids()
	require.NotEmpty(t, ids)
	for _, id := range ids {
		assert.Equal(t, scene.ID, id)
	}

	// No flash reaches the display once the thunderstorm is replaced
	stage.Apply(theme.Select(theme.ConditionSnow, daytime.Day))
	before := len(flashes.ids())
	clock.Advance(time.Minute)
	assert.Equal(t, before, len(flashes.ids()))
}

func TestStage_ApplyThenAnnouncesBeforeStorms(t *testing.T) {
	clock := newFakeClock()
	flashes := &sceneFlashes{}
	stage := newTestStage(clock, flashes.handle)

	var announced *Scene
	var states []StormState
	scene := stage.ApplyThen(theme.Select(theme.ConditionThunderRain, daytime.Night), func(s *Scene) {
		announced = s
		for _, instance := range s.Effects {
			if instance.storm != nil {
				states = append(states, instance.storm.State())
			}
		}
	})

	require.NotNil(t, announced)
	assert.Equal(t, scene.ID, announced.ID)
	assert.Equal(t, []StormState{StormIdle}, states)
	assert.Equal(t, StormArmed, stage.Storms()[0].State())
	assert.Empty(t, flashes.ids())
}

func TestStage_NewSceneEachApply(t *testing.T) {
	stage := newTestStage(newFakeClock(), nil)
	decision := theme.Select(theme.ConditionRain, daytime.Day)

	first := stage.Apply(decision)
	second := stage.Apply(decision)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, decision.Reason, second.Reason)
	assert.Equal(t, "day", second.TimeOfDay)
}
