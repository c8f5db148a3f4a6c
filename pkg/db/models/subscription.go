package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

// Subscription persists a recurring charge the user is tracking. Trialing
// subscriptions carry a trial end date distinct from the recurring charge date.
type Subscription struct {
	ID             uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID                `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string                   `gorm:"type:text;not null" json:"name"`
	Amount         decimal.Decimal          `gorm:"type:numeric(12,2);not null" json:"amount"`
	CurrencyCode   string                   `gorm:"type:text;not null;default:'USD'" json:"currency_code"`
	Status         enums.SubscriptionStatus `gorm:"type:subscription_status;not null;default:'active'" json:"status"`
	NextChargeDate time.Time                `gorm:"type:date;not null" json:"next_charge_date"`
	TrialEndsAt    *time.Time               `gorm:"type:date" json:"trial_ends_at,omitempty"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
