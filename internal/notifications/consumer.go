package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/internal/push"
	"github.com/finlyapp/finly-backend/pkg/db/models"
	"github.com/finlyapp/finly-backend/pkg/enums"
	"github.com/finlyapp/finly-backend/pkg/events"
	"github.com/finlyapp/finly-backend/pkg/idempotency"
	"github.com/finlyapp/finly-backend/pkg/logger"
	"github.com/finlyapp/finly-backend/pkg/realtime"
)

const domainNotificationConsumer = "domain-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type pushSender interface {
	Send(ctx context.Context, userID uuid.UUID, payload push.Payload) error
}

// Consumer watches domain events and turns budget and subscription activity
// into notifications.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	feed         realtime.Feed
	push         pushSender
	logg         *logger.Logger
}

// NewConsumer builds a domain event consumer. The push sender is optional.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, feed realtime.Feed, sender pushSender, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if feed == nil {
		return nil, fmt.Errorf("change feed required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		feed:         feed,
		push:         sender,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.EventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	switch eventType {
	case enums.EventBudgetThresholdCrossed, enums.EventSubscriptionCharged, enums.EventTrialEndingSoon:
	default:
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.EventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventBudgetThresholdCrossed:
		var payload events.BudgetThresholdCrossedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse budget payload: %w", err)
		}
		return c.budgetAlert(ctx, payload, logCtx)
	case enums.EventSubscriptionCharged:
		var payload events.SubscriptionChargedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse charge payload: %w", err)
		}
		return c.subscriptionCharged(ctx, payload, logCtx)
	case enums.EventTrialEndingSoon:
		var payload events.TrialEndingPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse trial payload: %w", err)
		}
		return c.trialEnding(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) budgetAlert(ctx context.Context, payload events.BudgetThresholdCrossedPayload, logCtx context.Context) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	metadata, _ := json.Marshal(map[string]any{
		"category": payload.Category,
		"spent":    payload.Spent,
		"budget":   payload.Budget,
		"month":    payload.Month,
	})
	notification := &models.Notification{
		UserID:      payload.UserID,
		Type:        enums.NotificationTypeBudgetAlert,
		Title:       fmt.Sprintf("Heads up on your %s budget", payload.Category),
		Body:        fmt.Sprintf("You've spent %s of your %s %s budget this month.", payload.Spent.StringFixed(2), payload.Budget.StringFixed(2), payload.Category),
		ActionURL:   stringPtr(fmt.Sprintf("/budgets/%s", payload.Category)),
		ActionLabel: stringPtr("Review budget"),
		Metadata:    metadata,
	}
	if err := c.deliver(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "budget alert delivered")
	return nil
}

func (c *Consumer) subscriptionCharged(ctx context.Context, payload events.SubscriptionChargedPayload, logCtx context.Context) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	metadata, _ := json.Marshal(map[string]any{
		"subscriptionId": payload.SubscriptionID,
		"amount":         payload.Amount,
		"currencyCode":   payload.CurrencyCode,
	})
	notification := &models.Notification{
		UserID:      payload.UserID,
		Type:        enums.NotificationTypeSubscription,
		Title:       fmt.Sprintf("%s charged", payload.Name),
		Body:        fmt.Sprintf("%s charged %s %s.", payload.Name, payload.Amount.StringFixed(2), payload.CurrencyCode),
		ActionURL:   stringPtr(fmt.Sprintf("/subscriptions/%s", payload.SubscriptionID)),
		ActionLabel: stringPtr("View subscription"),
		Metadata:    metadata,
	}
	if err := c.deliver(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "charge notification delivered")
	return nil
}

func (c *Consumer) trialEnding(ctx context.Context, payload events.TrialEndingPayload, logCtx context.Context) error {
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	metadata, _ := json.Marshal(map[string]any{
		"subscriptionId": payload.SubscriptionID,
		"trialEndsAt":    payload.TrialEndsAt,
	})
	notification := &models.Notification{
		UserID:      payload.UserID,
		Type:        enums.NotificationTypeWarning,
		Title:       fmt.Sprintf("%s trial ending soon", payload.Name),
		Body:        fmt.Sprintf("Your %s trial ends on %s. Cancel before then if you don't want to be charged.", payload.Name, payload.TrialEndsAt.Format("Jan 2")),
		ActionURL:   stringPtr(fmt.Sprintf("/subscriptions/%s", payload.SubscriptionID)),
		ActionLabel: stringPtr("Manage trial"),
		Metadata:    metadata,
	}
	if err := c.deliver(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "trial reminder delivered")
	return nil
}

// deliver writes the row, then fans out best-effort to the change feed and the
// push channel. Only the write decides ack or nack.
func (c *Consumer) deliver(ctx context.Context, notification *models.Notification) error {
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}

	if err := c.feed.Publish(ctx, notification.UserID.String()); err != nil {
		c.logg.Error(ctx, "publish change event", err)
	}

	if c.push != nil {
		payload := push.Payload{
			Title: notification.Title,
			Body:  notification.Body,
			Type:  notification.Type,
			URL:   notification.ActionURL,
			Tag:   notification.ID.String(),
		}
		if notification.ActionLabel != nil {
			payload.Actions = []push.Action{{Action: "open", Title: *notification.ActionLabel}}
		}
		if err := c.push.Send(ctx, notification.UserID, payload); err != nil {
			c.logg.Error(ctx, "publish push payload", err)
		}
	}
	return nil
}

func stringPtr(value string) *string {
	return &value
}
