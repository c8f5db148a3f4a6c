package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

type stubPersonalityResolver struct {
	personality enums.Personality
	err         error
}

func (s *stubPersonalityResolver) Personality(context.Context, uuid.UUID) (enums.Personality, error) {
	return s.personality, s.err
}

func newTestQueueManager(t *testing.T) *QueueManager {
	t.Helper()
	manager, err := NewQueueManager(QueueManagerOptions{
		Service:  newStubService(),
		Profiles: &stubPersonalityResolver{personality: enums.PersonalityZen},
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewQueueManager: %v", err)
	}
	return manager
}

func TestQueueManagerReusesQueuePerUser(t *testing.T) {
	manager := newTestQueueManager(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := manager.Queue(ctx, userID)
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	second, err := manager.Queue(ctx, userID)
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if first != second {
		t.Fatal("the same user must get the same queue")
	}

	other, err := manager.Queue(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if other == first {
		t.Fatal("different users must get different queues")
	}
}

func TestQueueManagerEnqueueRoutesToUserQueue(t *testing.T) {
	manager := newTestQueueManager(t)
	ctx := context.Background()
	userID := uuid.New()

	id := manager.Enqueue(ctx, userID, Options{Type: enums.NotificationTypeTip, Title: "Round up spare change"})
	if id == uuid.Nil {
		t.Fatal("expected an entry id")
	}

	queue, err := manager.Queue(ctx, userID)
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	current := queue.Current()
	if current == nil || current.ID != id {
		t.Fatal("entry must be showing on the user's queue")
	}
}

func TestQueueManagerEnqueueRejectsNilUser(t *testing.T) {
	manager := newTestQueueManager(t)

	if id := manager.Enqueue(context.Background(), uuid.Nil, Options{Title: "x"}); id != uuid.Nil {
		t.Fatal("nil user must not produce an entry")
	}
}

func TestQueueManagerReleaseDropsQueue(t *testing.T) {
	manager := newTestQueueManager(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := manager.Queue(ctx, userID)
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	manager.Release(userID)

	second, err := manager.Queue(ctx, userID)
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if first == second {
		t.Fatal("release must discard the old queue")
	}
}

func TestQueueManagerSurvivesPersonalityLookupFailure(t *testing.T) {
	manager, err := NewQueueManager(QueueManagerOptions{
		Service:  newStubService(),
		Profiles: &stubPersonalityResolver{err: errors.New("profile store down")},
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewQueueManager: %v", err)
	}

	if id := manager.Enqueue(context.Background(), uuid.New(), Options{Title: "hello"}); id == uuid.Nil {
		t.Fatal("a failed personality lookup must not block delivery")
	}
}
