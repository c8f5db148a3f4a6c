package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

// Expense is a single logged spend, usually parsed out of a chat message.
type Expense struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	Category    enums.BudgetCategory `gorm:"type:budget_category;not null" json:"category"`
	Amount      decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string               `gorm:"type:text" json:"description"`
	SpentAt     time.Time            `gorm:"type:timestamptz;not null;index" json:"spent_at"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
