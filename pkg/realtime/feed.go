package realtime

import (
	"context"
	"fmt"

	"github.com/finlyapp/finly-backend/pkg/logger"
	"github.com/finlyapp/finly-backend/pkg/redis"
)

// Feed is the per-user notification change feed. Publish fires after any
// insert/update/delete of a user's notification rows; subscribers react by
// refetching the full list, never by patching incrementally.
type Feed interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string, onChange func()) (Unsubscribe, error)
}

// Unsubscribe releases a change-feed subscription. It must be called on
// teardown or the underlying channel leaks.
type Unsubscribe func()

type redisFeed struct {
	client *redis.Client
	logg   *logger.Logger
}

// NewRedisFeed builds a change feed backed by Redis pub/sub channels.
func NewRedisFeed(client *redis.Client, logg *logger.Logger) (Feed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &redisFeed{client: client, logg: logg}, nil
}

func (f *redisFeed) Publish(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id required")
	}
	return f.client.Publish(ctx, f.client.ChangeFeedChannel(userID), "changed")
}

func (f *redisFeed) Subscribe(ctx context.Context, userID string, onChange func()) (Unsubscribe, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if onChange == nil {
		return nil, fmt.Errorf("change handler required")
	}

	sub, err := f.client.Subscribe(ctx, f.client.ChangeFeedChannel(userID))
	if err != nil {
		return nil, fmt.Errorf("subscribe change feed: %w", err)
	}

	done := make(chan struct{})
	go func() {
		messages := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				onChange()
			}
		}
	}()

	logCtx := f.logg.WithUserID(ctx, userID)
	f.logg.Debug(logCtx, "change feed subscription opened")

	var released bool
	return func() {
		if released {
			return
		}
		released = true
		close(done)
		if err := sub.Close(); err != nil {
			f.logg.Error(logCtx, "closing change feed subscription", err)
		}
	}, nil
}
