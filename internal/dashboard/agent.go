package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saaga0h/jeeves-weather/internal/effects"
	"github.com/saaga0h/jeeves-weather/internal/theme"
	"github.com/saaga0h/jeeves-weather/internal/weather"
	"github.com/saaga0h/jeeves-weather/pkg/config"
	"github.com/saaga0h/jeeves-weather/pkg/mqtt"
	"github.com/saaga0h/jeeves-weather/pkg/redis"
)

// ErrorMessage is shown on the display when weather data cannot be loaded
const ErrorMessage = "Unable to load weather data. Please try again later."

// Target is the place a display shows weather for
type Target struct {
	Name      string
	Latitude  float64
	Longitude float64
	ByCoords  bool
}

func (t Target) String() string {
	if t.ByCoords {
		return fmt.Sprintf("%.4f,%.4f", t.Latitude, t.Longitude)
	}
	return t.Name
}

// Agent keeps one weather display up to date
type Agent struct {
	mqtt     mqtt.Client
	redis    redis.Client
	provider weather.Provider
	cfg      *config.Config
	logger   *slog.Logger

	stage    *effects.Stage
	store    *LocationStore
	throttle *Throttle

	// Display state
	stateMux     sync.RWMutex
	target       Target
	saveOnUpdate bool
	lastView     *View
	lastDecision *theme.Decision
	lastRefresh  time.Time
	lastError    error

	// Refresh serialisation; stopped is set once by Stop
	refreshMux sync.Mutex
	inFlight   bool
	pending    bool
	stopped    bool

	// Cancelled by Stop
	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewAgent creates a new weather agent
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, provider weather.Provider, effectsCfg effects.Config, cfg *config.Config, logger *slog.Logger, opts ...effects.StageOption) *Agent {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Agent{
		mqtt:     mqttClient,
		redis:    redisClient,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		store:    NewLocationStore(redisClient, cfg.DisplayID),
		throttle: NewThrottle(),
		target:   defaultTarget(cfg),
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
	}
	a.stage = effects.NewStage(effectsCfg, a.publishFlash, logger, opts...)
	return a
}

func defaultTarget(cfg *config.Config) Target {
	if name := strings.TrimSpace(cfg.Location); name != "" {
		return Target{Name: name}
	}
	return Target{Latitude: cfg.Latitude, Longitude: cfg.Longitude, ByCoords: true}
}

// Start connects, restores the saved location and runs the refresh loop until ctx is cancelled
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting weather agent",
		"service_name", a.cfg.ServiceName,
		"display_id", a.cfg.DisplayID,
		"refresh_interval_sec", a.cfg.RefreshIntervalSec,
		"min_refresh_interval_ms", a.cfg.MinRefreshIntervalMs)

	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	if err := a.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	a.restoreLocation(ctx)

	commandTopic := mqtt.CommandTopic(a.cfg.DisplayID)
	if err := a.mqtt.Subscribe(commandTopic, 1, a.handleCommandMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", commandTopic, err)
	}
	a.logger.Info("Subscribed to location commands", "topic", commandTopic)

	a.startRefreshLoop()

	a.logger.Info("Weather agent started and ready", "location", a.Target().String())

	<-ctx.Done()
	a.logger.Info("Weather agent stopping")

	return nil
}

// Stop removes the active theme and releases connections. It waits for a refresh
// that is applying its result; no theme is applied once Stop returns.
func (a *Agent) Stop() error {
	a.logger.Info("Stopping weather agent")

	a.stopOnce.Do(func() {
		a.refreshMux.Lock()
		a.stopped = true
		a.pending = false
		a.refreshMux.Unlock()

		a.cancel()
		close(a.stopChan)
	})

	a.stage.Teardown()

	a.mqtt.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.logger.Error("Error closing Redis connection", "error", err)
		return err
	}

	a.logger.Info("Weather agent stopped")
	return nil
}

func (a *Agent) restoreLocation(ctx context.Context) {
	saved, err := a.store.Load(ctx)
	if err != nil {
		a.logger.Warn("Could not restore saved location", "error", err)
		return
	}
	if saved == "" {
		return
	}

	a.stateMux.Lock()
	a.target = Target{Name: saved}
	a.stateMux.Unlock()

	a.logger.Info("Restored saved location", "location", saved)
}

// startRefreshLoop refreshes immediately and then on every tick
func (a *Agent) startRefreshLoop() {
	interval := time.Duration(a.cfg.RefreshIntervalSec) * time.Second

	go func() {
		a.logger.Info("Starting periodic refresh loop", "interval_sec", a.cfg.RefreshIntervalSec)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		_ = a.Refresh(a.ctx, true)

		for {
			select {
			case <-ticker.C:
				_ = a.Refresh(a.ctx, false)
			case <-a.stopChan:
				return
			}
		}
	}()
}

// handleCommandMessage handles location commands:
// {"location": "Helsinki"} or {"latitude": 60.17, "longitude": 24.94}
func (a *Agent) handleCommandMessage(msg mqtt.Message) {
	display, ok := mqtt.DisplayFromCommandTopic(msg.Topic())
	if !ok || display != a.cfg.DisplayID {
		a.logger.Warn("Ignoring command for unknown display", "topic", msg.Topic())
		return
	}

	target, err := parseCommand(msg.Payload())
	if err != nil {
		a.logger.Error("Failed to parse location command", "display", display, "error", err)
		return
	}

	a.logger.Info("Location changed, triggering immediate refresh",
		"display", display,
		"location", target.String())

	a.SetTarget(a.ctx, target)

	go func() {
		_ = a.Refresh(a.ctx, true)
	}()
}

func parseCommand(payload []byte) (Target, error) {
	var command struct {
		Location  string   `json:"location"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	if err := json.Unmarshal(payload, &command); err != nil {
		return Target{}, fmt.Errorf("invalid command payload: %w", err)
	}

	if name := strings.TrimSpace(command.Location); name != "" {
		return Target{Name: name}, nil
	}

	if command.Latitude == nil || command.Longitude == nil {
		return Target{}, fmt.Errorf("command needs a location or latitude and longitude")
	}

	lat, lon := *command.Latitude, *command.Longitude
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Target{}, fmt.Errorf("coordinates out of range: %f,%f", lat, lon)
	}

	return Target{Latitude: lat, Longitude: lon, ByCoords: true}, nil
}

// SetTarget switches the display to target. A typed location is saved once it
// loads successfully; coordinates clear any saved location.
func (a *Agent) SetTarget(ctx context.Context, target Target) {
	a.stateMux.Lock()
	a.target = target
	a.saveOnUpdate = !target.ByCoords
	a.stateMux.Unlock()

	if target.ByCoords {
		if err := a.store.Clear(ctx); err != nil {
			a.logger.Warn("Failed to clear saved location", "error", err)
		}
	}
}

// Refresh fetches the weather for the current target and applies the resulting theme.
// Only one fetch runs at a time; a forced refresh requested meanwhile runs right after it.
// Unforced refreshes closer together than MinRefreshIntervalMs are skipped.
// After Stop, Refresh does nothing.
func (a *Agent) Refresh(ctx context.Context, force bool) error {
	a.refreshMux.Lock()
	if a.stopped {
		a.refreshMux.Unlock()
		a.logger.Debug("Agent stopped, skipping refresh")
		return nil
	}
	if a.inFlight {
		if force {
			a.pending = true
		}
		a.refreshMux.Unlock()
		a.logger.Debug("Refresh already in flight", "forced", force)
		return nil
	}
	a.inFlight = true
	a.refreshMux.Unlock()

	for {
		err := a.refreshOnce(ctx, force)

		a.refreshMux.Lock()
		if a.pending {
			a.pending = false
			a.refreshMux.Unlock()
			force = true
			continue
		}
		a.inFlight = false
		a.refreshMux.Unlock()

		return err
	}
}

func (a *Agent) refreshOnce(ctx context.Context, force bool) error {
	display := a.cfg.DisplayID
	minInterval := time.Duration(a.cfg.MinRefreshIntervalMs) * time.Millisecond

	if force {
		a.throttle.Record(display)
	} else if !a.throttle.Allow(display, minInterval) {
		a.logger.Debug("Throttled, skipping refresh",
			"display", display,
			"min_interval_ms", a.cfg.MinRefreshIntervalMs)
		return nil
	}

	a.stateMux.RLock()
	target := a.target
	save := a.saveOnUpdate
	a.stateMux.RUnlock()

	report, err := a.fetch(ctx, target)

	// Results are applied under refreshMux so Stop cannot interleave
	a.refreshMux.Lock()
	defer a.refreshMux.Unlock()
	if a.stopped {
		a.logger.Debug("Agent stopped, discarding refresh result", "display", display)
		return nil
	}

	if err != nil {
		a.logger.Error("Failed to fetch weather",
			"display", display,
			"location", target.String(),
			"error", err)

		a.stateMux.Lock()
		a.lastError = err
		a.stateMux.Unlock()

		if pubErr := a.publishStatus("error", ErrorMessage); pubErr != nil {
			a.logger.Error("Failed to publish error status", "error", pubErr)
		}
		return fmt.Errorf("failed to refresh weather: %w", err)
	}

	view := BuildView(report, a.cfg.ForecastDays)
	decision := theme.Decide(report.Snapshot())

	// The scene goes out before its storms start so flashes never precede it
	var sceneErr error
	a.stage.ApplyThen(decision, func(scene *effects.Scene) {
		sceneErr = a.publishScene(scene)
	})

	a.stateMux.Lock()
	a.lastView = &view
	a.lastDecision = &decision
	a.lastRefresh = time.Now()
	a.lastError = nil
	if save && a.target == target {
		a.saveOnUpdate = false
	} else {
		save = false
	}
	a.stateMux.Unlock()

	if save {
		if err := a.store.Save(ctx, target.Name); err != nil {
			a.logger.Warn("Failed to save location", "location", target.Name, "error", err)
		}
	}

	if sceneErr != nil {
		a.logger.Error("Failed to publish display update", "display", display, "error", sceneErr)
		return sceneErr
	}
	if err := a.publishView(view); err != nil {
		a.logger.Error("Failed to publish display update", "display", display, "error", err)
		return err
	}

	a.logger.Info("Weather theme published",
		"display", display,
		"location", view.City,
		"condition", decision.Condition,
		"time_of_day", decision.TimeOfDay,
		"class", decision.Class,
		"effects", len(decision.Effects),
		"reason", decision.Reason)

	return nil
}

func (a *Agent) fetch(ctx context.Context, target Target) (*weather.Report, error) {
	if target.ByCoords {
		return a.provider.FetchByCoords(ctx, target.Latitude, target.Longitude)
	}
	return a.provider.Fetch(ctx, target.Name)
}

// publishScene publishes the retained scene. It runs inside the stage lock.
func (a *Agent) publishScene(scene *effects.Scene) error {
	display := a.cfg.DisplayID

	sceneMsg := map[string]interface{}{
		"display":   display,
		"scene":     scene,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if err := mqtt.PublishJSON(a.mqtt, mqtt.SceneTopic(display), true, sceneMsg); err != nil {
		return fmt.Errorf("failed to publish scene: %w", err)
	}
	return nil
}

// publishView publishes the view and an ok status
func (a *Agent) publishView(view View) error {
	display := a.cfg.DisplayID

	viewMsg := map[string]interface{}{
		"display":   display,
		"view":      view,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if err := mqtt.PublishJSON(a.mqtt, mqtt.ViewTopic(display), false, viewMsg); err != nil {
		return fmt.Errorf("failed to publish view: %w", err)
	}

	return a.publishStatus("ok", "")
}

func (a *Agent) publishStatus(status, message string) error {
	display := a.cfg.DisplayID

	statusMsg := map[string]interface{}{
		"display":   display,
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if message != "" {
		statusMsg["message"] = message
	}

	if err := mqtt.PublishJSON(a.mqtt, mqtt.StatusTopic(display), true, statusMsg); err != nil {
		return fmt.Errorf("failed to publish status: %w", err)
	}
	return nil
}

// publishFlash forwards a lightning flash to the display. It runs on the
// storm's timer and must not touch the stage.
func (a *Agent) publishFlash(sceneID uuid.UUID, flash effects.Flash) {
	display := a.cfg.DisplayID

	flashMsg := map[string]interface{}{
		"display":     display,
		"scene_id":    sceneID,
		"intensity":   flash.Intensity,
		"duration_ms": flash.Duration.Milliseconds(),
		"secondary":   flash.Secondary,
		"sequence":    flash.Sequence,
		"timestamp":   flash.At.Format(time.RFC3339Nano),
	}

	if err := mqtt.PublishJSON(a.mqtt, mqtt.LightningTopic(display), false, flashMsg); err != nil {
		a.logger.Warn("Failed to publish lightning flash", "display", display, "error", err)
	}
}

// Target returns the location the display currently follows
func (a *Agent) Target() Target {
	a.stateMux.RLock()
	defer a.stateMux.RUnlock()
	return a.target
}

// Stage returns the effects stage (for health and tests)
func (a *Agent) Stage() *effects.Stage {
	return a.stage
}

// LastView returns the last successfully built view
func (a *Agent) LastView() (View, bool) {
	a.stateMux.RLock()
	defer a.stateMux.RUnlock()
	if a.lastView == nil {
		return View{}, false
	}
	return *a.lastView, true
}

// LastDecision returns the last applied theme decision
func (a *Agent) LastDecision() (theme.Decision, bool) {
	a.stateMux.RLock()
	defer a.stateMux.RUnlock()
	if a.lastDecision == nil {
		return theme.Decision{}, false
	}
	return *a.lastDecision, true
}

// HealthStatus reports display state for the detailed health check
func (a *Agent) HealthStatus() map[string]interface{} {
	a.stateMux.RLock()
	defer a.stateMux.RUnlock()

	status := map[string]interface{}{
		"display":  a.cfg.DisplayID,
		"location": a.target.String(),
		"theme":    string(a.stage.Class()),
	}
	if !a.lastRefresh.IsZero() {
		status["last_refresh"] = a.lastRefresh.Format(time.RFC3339)
	}
	if a.lastView != nil {
		status["city"] = a.lastView.City
		status["observed_at"] = a.lastView.ObservedAt.Format(time.RFC3339)
	}
	if a.lastError != nil {
		status["last_error"] = a.lastError.Error()
	}
	return status
}
