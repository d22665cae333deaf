package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saaga0h/jeeves-weather/pkg/redis"
)

// LocationStore persists the last typed location of a display
type LocationStore struct {
	redis   redis.Client
	display string
}

// NewLocationStore creates a store for display
func NewLocationStore(redisClient redis.Client, display string) *LocationStore {
	return &LocationStore{
		redis:   redisClient,
		display: display,
	}
}

// Load returns the saved location, or "" when none has been saved
func (s *LocationStore) Load(ctx context.Context) (string, error) {
	location, err := s.redis.Get(ctx, redis.LocationKey(s.display))
	if errors.Is(err, redis.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load saved location: %w", err)
	}
	return strings.TrimSpace(location), nil
}

// Save stores location without expiry
func (s *LocationStore) Save(ctx context.Context, location string) error {
	if err := s.redis.Set(ctx, redis.LocationKey(s.display), location, 0); err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// Clear forgets the saved location
func (s *LocationStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, redis.LocationKey(s.display)); err != nil {
		return fmt.Errorf("failed to clear saved location: %w", err)
	}
	return nil
}
