package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no settings exist for a practice.
var ErrNotFound = errors.New("practice: settings not found")

// ErrAlreadyRegistered is returned when a registration collides with an
// existing practice id.
var ErrAlreadyRegistered = errors.New("practice: already registered")

// Store provides persistence for practice settings.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new practice settings store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(practiceID string) string {
	return fmt.Sprintf("practice:settings:%s", practiceID)
}

// Get retrieves settings for a practice, or ErrNotFound.
func (s *Store) Get(ctx context.Context, practiceID string) (*Settings, error) {
	data, err := s.redis.Get(ctx, s.key(practiceID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("practice: get settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("practice: unmarshal settings: %w", err)
	}

	return &settings, nil
}

// Create persists settings for a newly registered practice. Fails with
// ErrAlreadyRegistered when the practice id is taken.
func (s *Store) Create(ctx context.Context, settings *Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("practice: marshal settings: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, s.key(settings.PracticeID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("practice: create settings: %w", err)
	}
	if !ok {
		return ErrAlreadyRegistered
	}
	return nil
}

// Set saves settings for an existing practice.
func (s *Store) Set(ctx context.Context, settings *Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("practice: marshal settings: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(settings.PracticeID), data, 0).Err(); err != nil {
		return fmt.Errorf("practice: set settings: %w", err)
	}

	return nil
}
