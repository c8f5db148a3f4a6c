package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

// Envelope is the stable payload wrapper carried on the domain topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// BudgetThresholdCrossedPayload fires when a month's spend crosses the alert
// ratio of its budget.
type BudgetThresholdCrossedPayload struct {
	UserID   uuid.UUID            `json:"userId"`
	Category enums.BudgetCategory `json:"category"`
	Spent    decimal.Decimal      `json:"spent"`
	Budget   decimal.Decimal      `json:"budget"`
	Month    string               `json:"month"`
}

// SubscriptionChargedPayload fires when a recurring charge settles.
type SubscriptionChargedPayload struct {
	UserID         uuid.UUID       `json:"userId"`
	SubscriptionID uuid.UUID       `json:"subscriptionId"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	CurrencyCode   string          `json:"currencyCode"`
}

// TrialEndingPayload fires ahead of a trial's conversion date.
type TrialEndingPayload struct {
	UserID         uuid.UUID `json:"userId"`
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	Name           string    `json:"name"`
	TrialEndsAt    time.Time `json:"trialEndsAt"`
}
