package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/saaga0h/jeeves-weather/internal/effects"
	"github.com/saaga0h/jeeves-weather/internal/weather"
	"github.com/saaga0h/jeeves-weather/pkg/config"
	"github.com/saaga0h/jeeves-weather/pkg/mqtt"
	"github.com/saaga0h/jeeves-weather/pkg/redis"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type mockMQTT struct {
	mu        sync.Mutex
	messages  []published
	handlers  map[string]mqtt.MessageHandler
	connected bool
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{handlers: make(map[string]mqtt.MessageHandler)}
}

func (m *mockMQTT) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *mockMQTT) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *mockMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, published{topic: topic, retained: retained, payload: payload})
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTT) on(topic string) []published {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []published
	for _, msg := range m.messages {
		if msg.topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

func (m *mockMQTT) deliver(topic string, payload string) {
	m.mu.Lock()
	handler := m.handlers[topic]
	m.mu.Unlock()

	if handler != nil {
		handler(&mockMessage{topic: topic, payload: []byte(payload)})
	}
}

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Topic() string   { return m.topic }
func (m *mockMessage) Payload() []byte { return m.payload }
func (m *mockMessage) Ack()            {}

type mockRedis struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	closed bool
}

func newMockRedis() *mockRedis {
	return &mockRedis{values: make(map[string]string)}
}

func (r *mockRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value.(string)
	return nil
}

func (r *mockRedis) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return "", r.getErr
	}
	v, ok := r.values[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return v, nil
}

func (r *mockRedis) Del(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}

func (r *mockRedis) Ping(ctx context.Context) error { return nil }

func (r *mockRedis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *mockRedis) value(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok
}

type fetchCall struct {
	location string
	lat, lon float64
	byCoords bool
}

// mockProvider returns report or err. When gate is set each fetch waits for a value on it.
type mockProvider struct {
	mu     sync.Mutex
	report *weather.Report
	err    error
	calls  []fetchCall
	gate   chan struct{}
}

func (p *mockProvider) Fetch(ctx context.Context, location string) (*weather.Report, error) {
	return p.respond(fetchCall{location: location})
}

func (p *mockProvider) FetchByCoords(ctx context.Context, lat, lon float64) (*weather.Report, error) {
	return p.respond(fetchCall{lat: lat, lon: lon, byCoords: true})
}

func (p *mockProvider) respond(call fetchCall) (*weather.Report, error) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report, p.err
}

func (p *mockProvider) set(report *weather.Report, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report = report
	p.err = err
}

func (p *mockProvider) callLog() []fetchCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]fetchCall(nil), p.calls...)
}

// frozenClock never fires timers so storms stay armed
type frozenClock struct {
	now time.Time
}

type frozenTimer struct{}

func (frozenTimer) Stop() bool { return true }

func (c frozenClock) Now() time.Time                                    { return c.now }
func (c frozenClock) AfterFunc(d time.Duration, f func()) effects.Timer { return frozenTimer{} }

var errUpstream = errors.New("upstream unavailable")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.DisplayID = "kitchen"
	cfg.Location = "Helsinki"
	cfg.WeatherAPIKey = "test"
	cfg.MinRefreshIntervalMs = 60000
	return cfg
}

func newTestAgent(cfg *config.Config, provider *mockProvider) (*Agent, *mockMQTT, *mockRedis) {
	mq := newMockMQTT()
	rd := newMockRedis()
	clock := frozenClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	agent := NewAgent(mq, rd, provider, effects.DefaultConfig(), cfg, quietLogger(), effects.WithClock(clock))
	return agent, mq, rd
}

// reportFor builds a Helsinki report observed at hour:minute local time on 2026-10-16
func reportFor(icon string, hour, minute int) *weather.Report {
	loc := time.FixedZone("EEST", 3*3600)
	day := func(offset int) time.Time {
		return time.Date(2026, 10, 16+offset, 0, 0, 0, 0, loc)
	}

	return &weather.Report{
		Address:   "Helsinki, Uusimaa, Finland",
		Latitude:  60.1699,
		Longitude: 24.9384,
		Timezone:  "Europe/Helsinki",
		UnitGroup: "us",
		Location:  loc,
		Current: weather.Current{
			ObservedAt: time.Date(2026, 10, 16, hour, minute, 0, 0, loc),
			Temp:       48.6,
			FeelsLike:  45.2,
			Humidity:   87,
			WindSpeed:  11.4,
			Conditions: "Conditions",
			Icon:       icon,
			Sunrise:    time.Date(2026, 10, 16, 8, 5, 0, 0, loc),
			Sunset:     time.Date(2026, 10, 16, 18, 12, 0, 0, loc),
		},
		Days: []weather.Day{
			{Date: day(0), TempMax: 52.1, TempMin: 41, Icon: icon},
			{Date: day(1), TempMax: 50, TempMin: 40.2, Icon: "cloudy", Conditions: "Overcast"},
			{Date: day(2), TempMax: 48.5, TempMin: -2.5, Icon: "snow", Conditions: "Snow"},
		},
	}
}

func decodePayload(p published) map[string]interface{} {
	var out map[string]interface{}
	_ = json.Unmarshal(p.payload, &out)
	return out
}
