package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/internal/signals"
	"github.com/finlyapp/finly-backend/pkg/enums"
	"github.com/finlyapp/finly-backend/pkg/events"
	"github.com/finlyapp/finly-backend/pkg/logger"
)

const trialReminderWindowDays = 3

type domainPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

type TrialReminderJobParams struct {
	Logger    *logger.Logger
	Scanner   signals.TrialScanner
	Publisher domainPublisher
	Window    int
}

// NewTrialReminderJob sweeps trialing subscriptions and emits a trial-ending
// event for each one inside the reminder window. Event IDs are derived from
// the subscription and date, so a re-run on the same day deduplicates at the
// consumer.
func NewTrialReminderJob(params TrialReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Scanner == nil {
		return nil, fmt.Errorf("trial scanner required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("domain publisher required")
	}
	window := params.Window
	if window <= 0 {
		window = trialReminderWindowDays
	}
	return &trialReminderJob{
		logg:      params.Logger,
		scanner:   params.Scanner,
		publisher: params.Publisher,
		window:    window,
		now:       time.Now,
	}, nil
}

type trialReminderJob struct {
	logg      *logger.Logger
	scanner   signals.TrialScanner
	publisher domainPublisher
	window    int
	now       func() time.Time
}

func (j *trialReminderJob) Name() string { return "trial-reminder" }

func (j *trialReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	trials, err := j.scanner.TrialsEndingWithin(ctx, now, j.window)
	if err != nil {
		return fmt.Errorf("scan trials: %w", err)
	}

	published := 0
	for _, trial := range trials {
		if trial.TrialEndsAt == nil {
			continue
		}
		if err := j.publishReminder(ctx, trial.UserID, trial.ID, trial.Name, *trial.TrialEndsAt, now); err != nil {
			j.logg.Error(j.logg.WithField(ctx, "subscription_id", trial.ID.String()), "publish trial reminder", err)
			continue
		}
		published++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"window_days": j.window,
		"trials":      len(trials),
		"published":   published,
	})
	j.logg.Info(logCtx, "trial reminder sweep complete")
	return nil
}

func (j *trialReminderJob) publishReminder(ctx context.Context, userID, subscriptionID uuid.UUID, name string, endsAt, now time.Time) error {
	payload, err := json.Marshal(events.TrialEndingPayload{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		Name:           name,
		TrialEndsAt:    endsAt,
	})
	if err != nil {
		return err
	}

	seed := fmt.Sprintf("trial-reminder:%s:%s", subscriptionID, now.Format("2006-01-02"))
	envelope, err := json.Marshal(events.Envelope{
		Version:    1,
		EventID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		OccurredAt: now,
		Data:       payload,
	})
	if err != nil {
		return err
	}

	return j.publisher.Publish(ctx, envelope, map[string]string{
		"event_type": string(enums.EventTrialEndingSoon),
	})
}
