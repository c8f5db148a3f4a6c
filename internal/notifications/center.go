package notifications

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/db/models"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
	"github.com/finlyapp/finly-backend/pkg/logger"
	"github.com/finlyapp/finly-backend/pkg/realtime"
)

// Center is the in-memory view of one user's notification list and unread
// badge. Mutations apply locally first and push the remote write behind them;
// a failed write is logged and left for the next wholesale refresh to square
// away, so the view never rolls back under the user.
type Center struct {
	mu     sync.Mutex
	userID uuid.UUID
	items  []models.Notification
	unread int64
	opened bool

	svc   Service
	feed  realtime.Feed
	logg  *logger.Logger
	limit int

	unsub     realtime.Unsubscribe
	listeners []func()
}

// NewCenter builds a closed center; call Open to load state and start
// following the change feed.
func NewCenter(userID uuid.UUID, svc Service, feed realtime.Feed, logg *logger.Logger, limit int) (*Center, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if feed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "change feed required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Center{userID: userID, svc: svc, feed: feed, logg: logg, limit: limit}, nil
}

// Open loads the current list and unread count, then subscribes to the change
// feed so remote writes trigger a refetch. A failed initial load is logged and
// leaves the view empty; the next change event repairs it.
func (c *Center) Open(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		c.logRemote(ctx, "initial load", err)
	}

	unsub, err := c.feed.Subscribe(ctx, c.userID.String(), func() {
		if err := c.Refresh(ctx); err != nil {
			c.logg.Error(c.logg.WithUserID(ctx, c.userID.String()), "refresh on change event", err)
		}
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe change feed")
	}

	c.mu.Lock()
	c.unsub = unsub
	c.opened = true
	c.mu.Unlock()
	return nil
}

// Close detaches from the change feed. Safe to call more than once.
func (c *Center) Close() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.opened = false
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Notifications returns a copy of the loaded list, newest first.
func (c *Center) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// UnreadCount returns the badge value.
func (c *Center) UnreadCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Refresh replaces the whole view with the server's version. Partial patching
// invites drift, so both the list and the count come back together.
func (c *Center) Refresh(ctx context.Context) error {
	items, err := c.svc.List(ctx, c.userID, c.limit)
	if err != nil {
		return err
	}
	unread, err := c.svc.UnreadCount(ctx, c.userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = items
	c.unread = unread
	c.mu.Unlock()
	c.notify()
	return nil
}

// MarkRead flips one notification locally, then persists.
func (c *Center) MarkRead(ctx context.Context, id uuid.UUID) {
	c.mu.Lock()
	changed := false
	for i := range c.items {
		if c.items[i].ID == id && !c.items[i].IsRead {
			c.items[i].IsRead = true
			if c.unread > 0 {
				c.unread--
			}
			changed = true
			break
		}
	}
	c.mu.Unlock()
	if changed {
		c.notify()
	}

	if err := c.svc.MarkRead(ctx, c.userID, id); err != nil {
		c.logRemote(ctx, "mark read", err)
	}
}

// MarkAllRead zeroes the badge locally, then persists.
func (c *Center) MarkAllRead(ctx context.Context) {
	c.mu.Lock()
	for i := range c.items {
		c.items[i].IsRead = true
	}
	c.unread = 0
	c.mu.Unlock()
	c.notify()

	if _, err := c.svc.MarkAllRead(ctx, c.userID); err != nil {
		c.logRemote(ctx, "mark all read", err)
	}
}

// Delete removes one notification locally, then persists.
func (c *Center) Delete(ctx context.Context, id uuid.UUID) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			if !c.items[i].IsRead && c.unread > 0 {
				c.unread--
			}
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.notify()

	if err := c.svc.Delete(ctx, c.userID, id); err != nil {
		c.logRemote(ctx, "delete notification", err)
	}
}

// Clear empties the list locally, then persists.
func (c *Center) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	c.unread = 0
	c.mu.Unlock()
	c.notify()

	if _, err := c.svc.Clear(ctx, c.userID); err != nil {
		c.logRemote(ctx, "clear notifications", err)
	}
}

// OnChange registers a listener fired after every local state change.
func (c *Center) OnChange(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Center) notify() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (c *Center) logRemote(ctx context.Context, op string, err error) {
	c.logg.Error(c.logg.WithUserID(ctx, c.userID.String()), op, err)
}
