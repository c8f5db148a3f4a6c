package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

// Budget holds the monthly allowance per spending category. Month is stored as
// the first day of the month.
type Budget struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_month" json:"user_id"`
	Category  enums.BudgetCategory `gorm:"type:budget_category;not null;uniqueIndex:idx_budgets_user_category_month" json:"category"`
	Month     time.Time            `gorm:"type:date;not null;uniqueIndex:idx_budgets_user_category_month" json:"month"`
	Amount    decimal.Decimal      `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
