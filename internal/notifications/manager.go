package notifications

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/internal/soundcue"
	"github.com/finlyapp/finly-backend/pkg/enums"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
	"github.com/finlyapp/finly-backend/pkg/logger"
	"github.com/finlyapp/finly-backend/pkg/metrics"
)

// personalityResolver looks up a user's configured tone profile.
type personalityResolver interface {
	Personality(ctx context.Context, userID uuid.UUID) (enums.Personality, error)
}

// QueueManagerOptions carries the manager's collaborators. Profiles, Sink,
// Clock and Metrics are optional.
type QueueManagerOptions struct {
	Service  Service
	Profiles personalityResolver
	Sink     soundcue.Sink
	Clock    Clock
	Logger   *logger.Logger
	Metrics  *metrics.NotifierMetrics
}

// QueueManager lazily builds one popup queue per user session and routes
// enqueues to it. A queue holds the per-user FIFO and one-visible-popup slot;
// the manager only owns the lifecycle.
type QueueManager struct {
	mu     sync.Mutex
	queues map[uuid.UUID]*PopupQueue

	svc      Service
	profiles personalityResolver
	sink     soundcue.Sink
	clock    Clock
	logg     *logger.Logger
	metrics  *metrics.NotifierMetrics
}

func NewQueueManager(opts QueueManagerOptions) (*QueueManager, error) {
	if opts.Service == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if opts.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	return &QueueManager{
		queues:   map[uuid.UUID]*PopupQueue{},
		svc:      opts.Service,
		profiles: opts.Profiles,
		sink:     opts.Sink,
		clock:    opts.Clock,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
	}, nil
}

// Queue returns the user's popup queue, creating it on first use.
func (m *QueueManager) Queue(ctx context.Context, userID uuid.UUID) (*PopupQueue, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if queue, ok := m.queues[userID]; ok {
		return queue, nil
	}

	queue, err := NewPopupQueue(PopupQueueOptions{
		UserID:  userID,
		Service: m.svc,
		Sound:   m.sounderFor(ctx, userID),
		Clock:   m.clock,
		Logger:  m.logg,
		Metrics: m.metrics,
	})
	if err != nil {
		return nil, err
	}
	m.queues[userID] = queue
	return queue, nil
}

// Enqueue routes a popup to the user's queue. A queue that cannot be built is
// logged and the popup dropped; delivery never propagates the failure.
func (m *QueueManager) Enqueue(ctx context.Context, userID uuid.UUID, opts Options) uuid.UUID {
	queue, err := m.Queue(ctx, userID)
	if err != nil {
		m.logg.Error(m.logg.WithUserID(ctx, userID.String()), "resolve popup queue", err)
		return uuid.Nil
	}
	return queue.Enqueue(ctx, opts)
}

// Release drops the user's queue at session end.
func (m *QueueManager) Release(userID uuid.UUID) {
	m.mu.Lock()
	delete(m.queues, userID)
	m.mu.Unlock()
}

// sounderFor builds a cue player bound to the user's personality. Without a
// sink the queue simply runs silent.
func (m *QueueManager) sounderFor(ctx context.Context, userID uuid.UUID) Sounder {
	if m.sink == nil {
		return nil
	}

	personality := enums.PersonalityFriendly
	if m.profiles != nil {
		resolved, err := m.profiles.Personality(ctx, userID)
		if err != nil {
			m.logg.Error(m.logg.WithUserID(ctx, userID.String()), "resolve personality", err)
		} else {
			personality = resolved
		}
	}

	player, err := soundcue.NewPlayer(soundcue.PlayerOptions{
		Personality: personality,
		Sink:        m.sink,
		Logger:      m.logg,
		Metrics:     m.metrics,
	})
	if err != nil {
		m.logg.Error(m.logg.WithUserID(ctx, userID.String()), "build cue player", err)
		return nil
	}
	return player
}
