package health

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/jeeves-weather/pkg/mqtt"
)

type stubMQTT struct {
	connected bool
}

func (s *stubMQTT) Connect(ctx context.Context) error { return nil }
func (s *stubMQTT) Disconnect()                       {}
func (s *stubMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	return nil
}
func (s *stubMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	return nil
}
func (s *stubMQTT) IsConnected() bool { return s.connected }

type stubRedis struct{}

func (stubRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (stubRedis) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (stubRedis) Del(ctx context.Context, keys ...string) error       { return nil }
func (stubRedis) Ping(ctx context.Context) error                      { return nil }
func (stubRedis) Close() error                                        { return nil }

type stubAgent struct{}

func (stubAgent) HealthStatus() map[string]interface{} {
	return map[string]interface{}{"theme": "theme-rain"}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, h http.HandlerFunc) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandlerFunc(t *testing.T) {
	checker := NewChecker(nil, nil, nil, quietLogger())

	rec, body := serve(t, checker.HandlerFunc())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", body.Status)
	assert.Nil(t, body.Services)
}

func TestDetailedHandlerFunc(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		code      int
		status    string
	}{
		{"healthy", true, http.StatusOK, "healthy"},
		{"mqtt down", false, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(&stubMQTT{connected: tt.connected}, stubRedis{}, stubAgent{}, quietLogger())

			rec, body := serve(t, checker.DetailedHandlerFunc())
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.status, body.Status)
			require.NotNil(t, body.Services)
			assert.Equal(t, "connected", body.Services.Redis)
			assert.Equal(t, "theme-rain", body.Agent["theme"])
		})
	}
}
