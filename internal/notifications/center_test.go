package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/db/models"
	"github.com/finlyapp/finly-backend/pkg/enums"
)

type centerService struct {
	mu          sync.Mutex
	items       []models.Notification
	listErr     error
	markReadErr error
	markedRead  []uuid.UUID
	markedAll   int
	deleted     []uuid.UUID
	cleared     int
}

func (s *centerService) List(_ context.Context, _ uuid.UUID, _ int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Notification, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *centerService) UnreadCount(_ context.Context, _ uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return 0, s.listErr
	}
	var count int64
	for _, item := range s.items {
		if !item.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *centerService) Insert(context.Context, uuid.UUID, Options) error { return nil }

func (s *centerService) MarkRead(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markReadErr != nil {
		return s.markReadErr
	}
	s.markedRead = append(s.markedRead, id)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
		}
	}
	return nil
}

func (s *centerService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedAll++
	var count int64
	for i := range s.items {
		if !s.items[i].IsRead {
			s.items[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func (s *centerService) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

func (s *centerService) Clear(context.Context, uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	count := int64(len(s.items))
	s.items = nil
	return count, nil
}

func seedCenterItems(unread, read int) []models.Notification {
	var items []models.Notification
	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < unread+read; i++ {
		items = append(items, models.Notification{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Type:      enums.NotificationTypeTip,
			Title:     "tip",
			Body:      "body",
			IsRead:    i >= unread,
			CreatedAt: at.Add(-time.Duration(i) * time.Minute),
		})
	}
	return items
}

func newTestCenter(t *testing.T, svc Service, feed *fakeFeed) *Center {
	t.Helper()
	center, err := NewCenter(uuid.New(), svc, feed, quietLogger(), 50)
	if err != nil {
		t.Fatalf("NewCenter: %v", err)
	}
	return center
}

func TestCenterOpenLoadsStateAndSubscribes(t *testing.T) {
	svc := &centerService{items: seedCenterItems(2, 1)}
	feed := &fakeFeed{}
	center := newTestCenter(t, svc, feed)

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	if got := len(center.Notifications()); got != 3 {
		t.Fatalf("expected 3 notifications, got %d", got)
	}
	if center.UnreadCount() != 2 {
		t.Fatalf("expected unread 2, got %d", center.UnreadCount())
	}
	if feed.onChange == nil {
		t.Fatal("expected feed subscription")
	}
}

func TestCenterOpenSwallowsLoadFailure(t *testing.T) {
	svc := &centerService{listErr: errors.New("db down")}
	feed := &fakeFeed{}
	center := newTestCenter(t, svc, feed)

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("load failure must not fail Open: %v", err)
	}
	defer center.Close()

	if len(center.Notifications()) != 0 {
		t.Fatal("expected empty view after failed load")
	}

	// The next change event repairs the view.
	svc.mu.Lock()
	svc.listErr = nil
	svc.items = seedCenterItems(2, 0)
	svc.mu.Unlock()

	feed.fire()
	if got := len(center.Notifications()); got != 2 {
		t.Fatalf("expected repaired view of 2, got %d", got)
	}
}

func TestCenterChangeEventTriggersRefresh(t *testing.T) {
	svc := &centerService{items: seedCenterItems(1, 0)}
	feed := &fakeFeed{}
	center := newTestCenter(t, svc, feed)

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	svc.mu.Lock()
	svc.items = seedCenterItems(3, 0)
	svc.mu.Unlock()

	feed.fire()

	if got := len(center.Notifications()); got != 3 {
		t.Fatalf("expected refreshed list of 3, got %d", got)
	}
	if center.UnreadCount() != 3 {
		t.Fatalf("expected unread 3, got %d", center.UnreadCount())
	}
}

func TestCenterMarkReadIsOptimistic(t *testing.T) {
	items := seedCenterItems(2, 0)
	svc := &centerService{items: items, markReadErr: errors.New("network blip")}
	center := newTestCenter(t, svc, &fakeFeed{})

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	center.MarkRead(context.Background(), items[0].ID)

	local := center.Notifications()
	if !local[0].IsRead {
		t.Fatal("local item must flip immediately")
	}
	if center.UnreadCount() != 1 {
		t.Fatalf("expected unread 1 despite remote failure, got %d", center.UnreadCount())
	}
}

func TestCenterMarkReadSkipsAlreadyRead(t *testing.T) {
	items := seedCenterItems(0, 1)
	svc := &centerService{items: items}
	center := newTestCenter(t, svc, &fakeFeed{})

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	center.MarkRead(context.Background(), items[0].ID)
	if center.UnreadCount() != 0 {
		t.Fatalf("unread must stay 0, got %d", center.UnreadCount())
	}
}

func TestCenterMarkAllReadZeroesBadge(t *testing.T) {
	svc := &centerService{items: seedCenterItems(4, 1)}
	center := newTestCenter(t, svc, &fakeFeed{})

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	center.MarkAllRead(context.Background())

	if center.UnreadCount() != 0 {
		t.Fatalf("expected unread 0, got %d", center.UnreadCount())
	}
	for _, item := range center.Notifications() {
		if !item.IsRead {
			t.Fatal("all local items must read as read")
		}
	}
	if svc.markedAll != 1 {
		t.Fatalf("expected one remote call, got %d", svc.markedAll)
	}
}

func TestCenterDeleteAdjustsUnread(t *testing.T) {
	items := seedCenterItems(1, 1)
	svc := &centerService{items: items}
	center := newTestCenter(t, svc, &fakeFeed{})

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	center.Delete(context.Background(), items[0].ID)

	if got := len(center.Notifications()); got != 1 {
		t.Fatalf("expected 1 remaining, got %d", got)
	}
	if center.UnreadCount() != 0 {
		t.Fatalf("deleting an unread item must drop the badge, got %d", center.UnreadCount())
	}
}

func TestCenterClearEmptiesEverything(t *testing.T) {
	svc := &centerService{items: seedCenterItems(2, 2)}
	center := newTestCenter(t, svc, &fakeFeed{})

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	center.Clear(context.Background())

	if len(center.Notifications()) != 0 || center.UnreadCount() != 0 {
		t.Fatal("expected empty center")
	}
	if svc.cleared != 1 {
		t.Fatalf("expected one remote clear, got %d", svc.cleared)
	}
}

func TestCenterNotifiesListeners(t *testing.T) {
	items := seedCenterItems(1, 0)
	svc := &centerService{items: items}
	center := newTestCenter(t, svc, &fakeFeed{})

	var fired int
	center.OnChange(func() { fired++ })

	if err := center.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer center.Close()

	center.MarkRead(context.Background(), items[0].ID)
	if fired < 2 {
		t.Fatalf("expected listener fired for refresh and mutation, got %d", fired)
	}
}
