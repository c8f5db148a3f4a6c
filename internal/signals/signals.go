package signals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlyapp/finly-backend/pkg/db/models"
	"github.com/finlyapp/finly-backend/pkg/enums"
)

// BudgetStatus pairs a category's monthly allowance with what has been spent
// against it so far.
type BudgetStatus struct {
	Category enums.BudgetCategory
	Spent    decimal.Decimal
	Budget   decimal.Decimal
}

// Ratio returns spent/budget, and false when the budget is zero (the ratio is
// undefined and the category is never selected).
func (b BudgetStatus) Ratio() (float64, bool) {
	if b.Budget.IsZero() {
		return 0, false
	}
	ratio, _ := b.Spent.Div(b.Budget).Float64()
	return ratio, true
}

// BudgetProvider exposes the current month's spend and budget per category.
type BudgetProvider interface {
	MonthStatus(ctx context.Context, userID uuid.UUID, month time.Time) ([]BudgetStatus, error)
}

// SubscriptionsProvider exposes upcoming charges and running trials.
type SubscriptionsProvider interface {
	Upcoming(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
}

// TrialScanner finds trials approaching their end date across all users.
type TrialScanner interface {
	TrialsEndingWithin(ctx context.Context, now time.Time, days int) ([]models.Subscription, error)
}

// ProfileProvider resolves the user's chosen personality.
type ProfileProvider interface {
	Personality(ctx context.Context, userID uuid.UUID) (enums.Personality, error)
}

// MonthStart truncates a timestamp to the first day of its month in UTC. The
// budgets table keys months the same way.
func MonthStart(at time.Time) time.Time {
	at = at.UTC()
	return time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
}
