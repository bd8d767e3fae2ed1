package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Principal is the authenticated user attached to a session
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Store keeps sessions in Redis under an opaque random id
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses a redis:// URL and checks the server is reachable
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewStore creates a session store whose entries expire after ttl
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// TTL is the lifetime of a session
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create stores p and returns the new session id
func (s *Store) Create(ctx context.Context, p Principal) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	id := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

// Get returns the principal for id, or nil when the session is unknown or expired
func (s *Store) Get(ctx context.Context, id string) (*Principal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &p, nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
