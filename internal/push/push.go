package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/config"
	"github.com/finlyapp/finly-backend/pkg/enums"
	"github.com/finlyapp/finly-backend/pkg/logger"
)

// Payload is the browser push message shape. Icon and Badge are filled from
// config when the caller leaves them empty.
type Payload struct {
	Title   string                 `json:"title"`
	Body    string                 `json:"body"`
	Type    enums.NotificationType `json:"type"`
	Icon    string                 `json:"icon,omitempty"`
	Badge   string                 `json:"badge,omitempty"`
	URL     *string                `json:"url,omitempty"`
	Actions []Action               `json:"actions,omitempty"`
	Tag     string                 `json:"tag,omitempty"`
}

// Action is one button rendered on the OS notification. Clicks route back
// into the app at the payload URL.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Publisher is the transport the sender writes to.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// Sender fans notifications out to the push topic.
type Sender struct {
	pub   Publisher
	icon  string
	badge string
	logg  *logger.Logger
}

// NewSender builds a push sender with the configured icon and badge defaults.
func NewSender(pub Publisher, cfg config.NotifierConfig, logg *logger.Logger) (*Sender, error) {
	if pub == nil {
		return nil, errors.New("push publisher required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Sender{pub: pub, icon: cfg.PushIcon, badge: cfg.PushBadge, logg: logg}, nil
}

// Send publishes the payload keyed by user so the delivery edge can route it.
func (s *Sender) Send(ctx context.Context, userID uuid.UUID, payload Payload) error {
	if userID == uuid.Nil {
		return errors.New("user id required")
	}
	if payload.Icon == "" {
		payload.Icon = s.icon
	}
	if payload.Badge == "" {
		payload.Badge = s.badge
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	attributes := map[string]string{
		"user_id": userID.String(),
		"type":    string(payload.Type),
	}
	if err := s.pub.Publish(ctx, data, attributes); err != nil {
		return fmt.Errorf("publish push payload: %w", err)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id": userID.String(),
		"type":    string(payload.Type),
	})
	s.logg.Debug(logCtx, "push payload published")
	return nil
}

// NewGCPPublisher adapts a Pub/Sub publisher to the Publisher interface.
func NewGCPPublisher(pub *gcppubsub.Publisher) Publisher {
	if pub == nil {
		return nil
	}
	return &gcpPublisher{pub: pub}
}

type gcpPublisher struct {
	pub *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	result := p.pub.Publish(ctx, &gcppubsub.Message{Data: data, Attributes: attributes})
	_, err := result.Get(ctx)
	return err
}
