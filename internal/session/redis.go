package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/redis"
)

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionFlagKey(userID, flag string) string
	LastVisitKey(userID string) string
}

type redisFlags struct {
	store store
	ttl   time.Duration
}

// NewRedisFlags builds a Flags store backed by Redis. Flag keys expire after
// the session TTL; the last visit key never expires.
func NewRedisFlags(s store, ttl time.Duration) (Flags, error) {
	if s == nil {
		return nil, errors.New("redis store required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &redisFlags{store: s, ttl: ttl}, nil
}

func (f *redisFlags) Get(ctx context.Context, userID uuid.UUID, flag string) (bool, error) {
	key, err := f.flagKey(userID, flag)
	if err != nil {
		return false, err
	}
	value, err := f.store.Get(ctx, key)
	if err != nil {
		if redis.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("read session flag: %w", err)
	}
	return value == "1", nil
}

func (f *redisFlags) Set(ctx context.Context, userID uuid.UUID, flag string) error {
	key, err := f.flagKey(userID, flag)
	if err != nil {
		return err
	}
	if err := f.store.Set(ctx, key, "1", f.ttl); err != nil {
		return fmt.Errorf("write session flag: %w", err)
	}
	return nil
}

func (f *redisFlags) Clear(ctx context.Context, userID uuid.UUID, flag string) error {
	key, err := f.flagKey(userID, flag)
	if err != nil {
		return err
	}
	if err := f.store.Del(ctx, key); err != nil {
		return fmt.Errorf("clear session flag: %w", err)
	}
	return nil
}

func (f *redisFlags) LastVisit(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	if userID == uuid.Nil {
		return time.Time{}, false, errors.New("user id required")
	}
	value, err := f.store.Get(ctx, f.store.LastVisitKey(userID.String()))
	if err != nil {
		if redis.IsNotFound(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("read last visit: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		// Unparseable state reads as a first visit rather than an error.
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func (f *redisFlags) SetLastVisit(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if userID == uuid.Nil {
		return errors.New("user id required")
	}
	key := f.store.LastVisitKey(userID.String())
	if err := f.store.Set(ctx, key, at.UTC().Format(time.RFC3339Nano), 0); err != nil {
		return fmt.Errorf("write last visit: %w", err)
	}
	return nil
}

func (f *redisFlags) flagKey(userID uuid.UUID, flag string) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("user id required")
	}
	if flag == "" {
		return "", errors.New("flag name required")
	}
	return f.store.SessionFlagKey(userID.String(), flag), nil
}
