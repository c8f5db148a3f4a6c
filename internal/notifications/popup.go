package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/enums"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
	"github.com/finlyapp/finly-backend/pkg/logger"
	"github.com/finlyapp/finly-backend/pkg/metrics"
)

// Sounder plays the audio cue for a notification type.
type Sounder interface {
	Play(ctx context.Context, t enums.NotificationType) error
}

// Entry is a notification waiting in, or currently occupying, the popup slot.
type Entry struct {
	ID         uuid.UUID
	Options    Options
	EnqueuedAt time.Time
}

// PopupQueue shows one popup at a time per user, in arrival order. Displaying
// an entry kicks off persistence in the background; a failed write never
// interrupts the popup itself.
type PopupQueue struct {
	mu      sync.Mutex
	userID  uuid.UUID
	pending []Entry
	current *Entry

	timer        Timer
	showingSince time.Time
	remaining    time.Duration
	shownFor     time.Duration
	paused       bool

	svc     Service
	sound   Sounder
	clock   Clock
	logg    *logger.Logger
	metrics *metrics.NotifierMetrics

	onChange func()
}

// PopupQueueOptions carries the queue's collaborators. Sound, Metrics and
// OnChange are optional.
type PopupQueueOptions struct {
	UserID   uuid.UUID
	Service  Service
	Sound    Sounder
	Clock    Clock
	Logger   *logger.Logger
	Metrics  *metrics.NotifierMetrics
	OnChange func()
}

// NewPopupQueue builds an empty queue for one user session.
func NewPopupQueue(opts PopupQueueOptions) (*PopupQueue, error) {
	if opts.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if opts.Service == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if opts.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	return &PopupQueue{
		userID:   opts.UserID,
		svc:      opts.Service,
		sound:    opts.Sound,
		clock:    opts.Clock,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
	}, nil
}

// Enqueue adds a popup. It shows immediately when the slot is free, otherwise
// it waits its turn.
func (q *PopupQueue) Enqueue(ctx context.Context, opts Options) uuid.UUID {
	entry := Entry{ID: uuid.New(), Options: opts, EnqueuedAt: q.clock.Now()}

	q.mu.Lock()
	if q.current == nil {
		q.show(ctx, entry)
	} else {
		q.pending = append(q.pending, entry)
	}
	q.mu.Unlock()

	q.notify()
	return entry.ID
}

// Current returns the entry occupying the popup slot, or nil.
func (q *PopupQueue) Current() *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return nil
	}
	cp := *q.current
	return &cp
}

// Pending returns the queued entries behind the current popup.
func (q *PopupQueue) Pending() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.pending))
	copy(out, q.pending)
	return out
}

// Dismiss removes the entry with the given id. Dismissing the visible popup
// advances the queue.
func (q *PopupQueue) Dismiss(ctx context.Context, id uuid.UUID) {
	q.mu.Lock()
	if q.current != nil && q.current.ID == id {
		q.advance(ctx)
		q.mu.Unlock()
		q.notify()
		return
	}
	for i, entry := range q.pending {
		if entry.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	q.mu.Unlock()
	q.notify()
}

// InvokeAction runs the entry's action callback, then dismisses it. A panic
// inside the callback is contained and logged.
func (q *PopupQueue) InvokeAction(ctx context.Context, id uuid.UUID) {
	q.mu.Lock()
	var action func()
	if q.current != nil && q.current.ID == id {
		action = q.current.Options.Action
	} else {
		for _, entry := range q.pending {
			if entry.ID == id {
				action = entry.Options.Action
				break
			}
		}
	}
	q.mu.Unlock()

	if action != nil {
		q.runAction(ctx, id, action)
	}
	q.Dismiss(ctx, id)
}

// Pause freezes the auto-dismiss countdown of the visible popup.
func (q *PopupQueue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil || q.paused {
		return
	}
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	elapsed := q.clock.Now().Sub(q.showingSince)
	q.remaining -= elapsed
	q.shownFor += elapsed
	if q.remaining < 0 {
		q.remaining = 0
	}
	q.paused = true
}

// Resume restarts the countdown with whatever time was left when Pause ran.
func (q *PopupQueue) Resume(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil || !q.paused {
		return
	}
	q.paused = false
	q.showingSince = q.clock.Now()
	q.startTimer(ctx, q.current.ID)
}

// show installs the entry in the popup slot. Caller holds the lock.
func (q *PopupQueue) show(ctx context.Context, entry Entry) {
	q.current = &entry
	q.showingSince = q.clock.Now()
	q.remaining = entry.Options.EffectiveDuration()
	q.shownFor = 0
	q.paused = false
	q.startTimer(ctx, entry.ID)
	q.metrics.IncShown(string(entry.Options.Type))

	if q.sound != nil {
		if err := q.sound.Play(ctx, entry.Options.Type); err != nil {
			q.logg.Warn(ctx, fmt.Sprintf("sound cue failed: %v", err))
		}
	}

	if entry.Options.ShouldPersist() {
		// The popup is already visible; the write must outlive the request
		// that enqueued it.
		go q.persist(context.WithoutCancel(ctx), entry)
	}
}

func (q *PopupQueue) startTimer(ctx context.Context, id uuid.UUID) {
	// The countdown outlives the enqueuing request, and so does whatever
	// the dismissal promotes next.
	dismissCtx := context.WithoutCancel(ctx)
	q.timer = q.clock.AfterFunc(q.remaining, func() {
		q.Dismiss(dismissCtx, id)
	})
}

// advance retires the current entry and shows the next pending one. Caller
// holds the lock.
func (q *PopupQueue) advance(ctx context.Context) {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if q.current != nil {
		shownFor := q.shownFor
		if !q.paused {
			shownFor += q.clock.Now().Sub(q.showingSince)
		}
		q.metrics.ObserveDisplay(shownFor)
	}
	q.current = nil
	q.paused = false

	if len(q.pending) > 0 {
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.show(ctx, next)
	}
}

// persist writes the popup's backing row. The popup is already on screen, so
// failures are logged and counted but never surfaced to the session.
func (q *PopupQueue) persist(ctx context.Context, entry Entry) {
	if err := q.svc.Insert(ctx, q.userID, entry.Options); err != nil {
		logCtx := q.logg.WithNotificationID(q.logg.WithUserID(ctx, q.userID.String()), entry.ID.String())
		q.logg.Error(logCtx, "persist popup notification", err)
		q.metrics.IncPersistFailure(string(entry.Options.Type))
		return
	}
	q.metrics.IncPersisted(string(entry.Options.Type))
}

func (q *PopupQueue) runAction(ctx context.Context, id uuid.UUID, action func()) {
	defer func() {
		if r := recover(); r != nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("popup action panicked: %v", r))
			logCtx := q.logg.WithNotificationID(ctx, id.String())
			q.logg.Error(logCtx, "popup action", err)
		}
	}()
	action()
}

func (q *PopupQueue) notify() {
	if q.onChange != nil {
		q.onChange()
	}
}
