package signals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finlyapp/finly-backend/pkg/db/models"
	"github.com/finlyapp/finly-backend/pkg/enums"
)

type budgetRepo struct {
	db *gorm.DB
}

// NewBudgetProvider reads monthly budgets and expense totals from the database.
func NewBudgetProvider(db *gorm.DB) BudgetProvider {
	return &budgetRepo{db: db}
}

// MonthStatus returns one entry per category that has a budget row for the
// month, in canonical category order.
func (r *budgetRepo) MonthStatus(ctx context.Context, userID uuid.UUID, month time.Time) ([]BudgetStatus, error) {
	start := MonthStart(month)
	end := start.AddDate(0, 1, 0)

	var budgets []models.Budget
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", userID, start).
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	type spendRow struct {
		Category enums.BudgetCategory
		Total    decimal.Decimal
	}
	var spends []spendRow
	err = r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userID, start, end).
		Group("category").
		Scan(&spends).Error
	if err != nil {
		return nil, err
	}

	spentByCategory := make(map[enums.BudgetCategory]decimal.Decimal, len(spends))
	for _, row := range spends {
		spentByCategory[row.Category] = row.Total
	}
	budgetByCategory := make(map[enums.BudgetCategory]decimal.Decimal, len(budgets))
	for _, budget := range budgets {
		budgetByCategory[budget.Category] = budget.Amount
	}

	var statuses []BudgetStatus
	for _, category := range enums.BudgetCategories {
		amount, ok := budgetByCategory[category]
		if !ok {
			continue
		}
		statuses = append(statuses, BudgetStatus{
			Category: category,
			Spent:    spentByCategory[category],
			Budget:   amount,
		})
	}
	return statuses, nil
}

type subscriptionsRepo struct {
	db *gorm.DB
}

// NewSubscriptionsProvider reads active and trialing subscriptions from the
// database.
func NewSubscriptionsProvider(db *gorm.DB) SubscriptionsProvider {
	return &subscriptionsRepo{db: db}
}

func (r *subscriptionsRepo) Upcoming(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []enums.SubscriptionStatus{
			enums.SubscriptionStatusActive,
			enums.SubscriptionStatusTrialing,
		}).
		Order("next_charge_date ASC, created_at ASC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

type trialScanRepo struct {
	db *gorm.DB
}

// NewTrialScanner reads trialing subscriptions across all users, for the
// daily reminder sweep.
func NewTrialScanner(db *gorm.DB) TrialScanner {
	return &trialScanRepo{db: db}
}

func (r *trialScanRepo) TrialsEndingWithin(ctx context.Context, now time.Time, days int) ([]models.Subscription, error) {
	start := now.UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, days+1)

	var subscriptions []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND trial_ends_at IS NOT NULL AND trial_ends_at >= ? AND trial_ends_at < ?",
			enums.SubscriptionStatusTrialing, start, end).
		Order("trial_ends_at ASC, created_at ASC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileProvider reads user personalities from the database.
func NewProfileProvider(db *gorm.DB) ProfileProvider {
	return &profileRepo{db: db}
}

// Personality falls back to the friendly default when the user row is missing.
func (r *profileRepo) Personality(ctx context.Context, userID uuid.UUID) (enums.Personality, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Select("personality").
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return enums.PersonalityFriendly, nil
		}
		return enums.PersonalityFriendly, err
	}
	if !user.Personality.IsValid() {
		return enums.PersonalityFriendly, nil
	}
	return user.Personality, nil
}
