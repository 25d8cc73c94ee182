// Package session persists wizard state between requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"quickfolio-backend/internal/domain"
)

const keyPrefix = "wizard:session:"

// RedisStore keeps wizard state as JSON with a sliding TTL.
type RedisStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisStore(client *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, state *domain.WizardState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode wizard state: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+state.SessionID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save wizard state: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	payload, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load wizard state: %w", err)
	}

	var state domain.WizardState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to decode wizard state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete wizard state: %w", err)
	}
	return nil
}
