package welcome

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/internal/notifications"
	"github.com/finlyapp/finly-backend/internal/session"
	"github.com/finlyapp/finly-backend/internal/signals"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
	"github.com/finlyapp/finly-backend/pkg/logger"
)

type popupEnqueuer interface {
	Enqueue(ctx context.Context, userID uuid.UUID, opts notifications.Options) uuid.UUID
}

// Config tunes the selector's presentation timing and the budget alert
// threshold. Delays are timing polish, not correctness; tests run them at
// zero.
type Config struct {
	SelectionDelay time.Duration
	DisplayDelay   time.Duration
	AlertRatio     float64
}

// Selector runs the once-per-session welcome ladder: it inspects auth flags,
// due charges, expiring trials, budget thresholds and visit recency, and
// enqueues at most one popup, first matching rule wins.
type Selector struct {
	flags         session.Flags
	budgets       signals.BudgetProvider
	subscriptions signals.SubscriptionsProvider
	profile       signals.ProfileProvider
	queue         popupEnqueuer
	logg          *logger.Logger
	cfg           Config
	now           func() time.Time
}

// SelectorOptions carries the selector's collaborators. Now is optional.
type SelectorOptions struct {
	Flags         session.Flags
	Budgets       signals.BudgetProvider
	Subscriptions signals.SubscriptionsProvider
	Profile       signals.ProfileProvider
	Queue         popupEnqueuer
	Logger        *logger.Logger
	Config        Config
	Now           func() time.Time
}

func NewSelector(opts SelectorOptions) (*Selector, error) {
	if opts.Flags == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session flags required")
	}
	if opts.Budgets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "budget provider required")
	}
	if opts.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions provider required")
	}
	if opts.Profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile provider required")
	}
	if opts.Queue == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "popup queue required")
	}
	if opts.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if opts.Config.AlertRatio <= 0 {
		opts.Config.AlertRatio = 0.8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Selector{
		flags:         opts.Flags,
		budgets:       opts.Budgets,
		subscriptions: opts.Subscriptions,
		profile:       opts.Profile,
		queue:         opts.Queue,
		logg:          opts.Logger,
		cfg:           opts.Config,
		now:           opts.Now,
	}, nil
}

// Run evaluates the ladder once for the session. Signal failures degrade to
// "rule not matched"; the worst case is no welcome popup.
func (s *Selector) Run(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	logCtx := s.logg.WithUserID(ctx, userID.String())

	shown, err := s.flags.Get(ctx, userID, session.FlagWelcomeShown)
	if err != nil {
		s.logg.Error(logCtx, "read welcome flag", err)
	}
	if shown {
		return nil
	}

	if err := s.sleep(ctx, s.cfg.SelectionDelay); err != nil {
		return err
	}

	now := s.now()
	key, data := s.choose(ctx, userID, now, logCtx)

	// Last visit moves forward on every run so the recency rule fires at
	// most once per calendar day.
	if err := s.flags.SetLastVisit(ctx, userID, now); err != nil {
		s.logg.Error(logCtx, "update last visit", err)
	}

	if key == "" {
		s.logg.Debug(logCtx, "no welcome rule matched")
		return nil
	}

	personality, err := s.profile.Personality(ctx, userID)
	if err != nil {
		s.logg.Error(logCtx, "resolve personality", err)
	}
	title, body, notificationType := Render(key, personality, data)

	if err := s.sleep(ctx, s.cfg.DisplayDelay); err != nil {
		return err
	}

	s.queue.Enqueue(ctx, userID, notifications.Options{
		Type:     notificationType,
		Title:    title,
		Body:     body,
		Metadata: map[string]any{"welcome_key": string(key)},
	})
	if err := s.flags.Set(ctx, userID, session.FlagWelcomeShown); err != nil {
		s.logg.Error(logCtx, "set welcome flag", err)
	}

	s.logg.Info(s.logg.WithField(logCtx, "welcome_key", string(key)), "welcome notification enqueued")
	return nil
}

// choose walks the ladder top to bottom and short-circuits on the first match.
func (s *Selector) choose(ctx context.Context, userID uuid.UUID, now time.Time, logCtx context.Context) (Key, MessageData) {
	if s.flagSet(ctx, userID, session.FlagJustSignedUp, logCtx) {
		return KeyFirstVisit, MessageData{}
	}
	if s.flagSet(ctx, userID, session.FlagJustLoggedIn, logCtx) {
		return KeyWelcomeBack, MessageData{}
	}

	subscriptions, err := s.subscriptions.Upcoming(ctx, userID)
	if err != nil {
		s.logg.Error(logCtx, "load subscriptions", err)
	}

	var dueName string
	dueCount := 0
	for _, subscription := range subscriptions {
		if sameDay(subscription.NextChargeDate, now) {
			if dueName == "" {
				dueName = subscription.Name
			}
			dueCount++
		}
	}
	if dueCount > 0 {
		return KeyChargeDueToday, MessageData{Name: dueName, Count: dueCount}
	}

	trialName := ""
	trialDays := 0
	for _, subscription := range subscriptions {
		if subscription.TrialEndsAt == nil {
			continue
		}
		days := daysUntil(now, *subscription.TrialEndsAt)
		if days < 0 || days > 3 {
			continue
		}
		if trialName == "" || days < trialDays {
			trialName = subscription.Name
			trialDays = days
		}
	}
	if trialName != "" {
		return KeyTrialEnding, MessageData{Name: trialName, Days: trialDays}
	}

	statuses, err := s.budgets.MonthStatus(ctx, userID, now)
	if err != nil {
		s.logg.Error(logCtx, "load budget status", err)
	}
	bestRatio := 0.0
	var bestStatus *signals.BudgetStatus
	for i := range statuses {
		ratio, ok := statuses[i].Ratio()
		if !ok || ratio < s.cfg.AlertRatio {
			continue
		}
		if bestStatus == nil || ratio > bestRatio {
			bestStatus = &statuses[i]
			bestRatio = ratio
		}
	}
	if bestStatus != nil {
		return KeyBudgetUpdate, MessageData{
			Category: bestStatus.Category,
			Percent:  int(bestRatio * 100),
		}
	}

	lastVisit, known, err := s.flags.LastVisit(ctx, userID)
	if err != nil {
		s.logg.Error(logCtx, "read last visit", err)
	}
	if known && !sameDay(lastVisit, now) {
		return KeyDailyMotivation, MessageData{}
	}

	return "", MessageData{}
}

func (s *Selector) flagSet(ctx context.Context, userID uuid.UUID, flag string, logCtx context.Context) bool {
	set, err := s.flags.Get(ctx, userID, flag)
	if err != nil {
		s.logg.Error(logCtx, "read session flag", err)
		return false
	}
	return set
}

func (s *Selector) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// daysUntil counts whole calendar days from now's date to the target date.
func daysUntil(now, target time.Time) int {
	now, target = now.UTC(), target.UTC()
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return int(targetDate.Sub(nowDate).Hours() / 24)
}
