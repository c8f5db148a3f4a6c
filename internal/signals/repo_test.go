package signals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finlyapp/finly-backend/pkg/db/models"
	"github.com/finlyapp/finly-backend/pkg/enums"
)

func setupSignalsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS budgets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  category TEXT NOT NULL,
  month DATETIME NOT NULL,
  amount NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS expenses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  category TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  description TEXT,
  spent_at DATETIME NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency_code TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'active',
  next_charge_date DATETIME NOT NULL,
  trial_ends_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  display_name TEXT,
  personality TEXT NOT NULL DEFAULT 'friendly',
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedBudget(t *testing.T, db *gorm.DB, userID uuid.UUID, category enums.BudgetCategory, month time.Time, amount float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Budget{
		ID:       uuid.New(),
		UserID:   userID,
		Category: category,
		Month:    month,
		Amount:   decimal.NewFromFloat(amount),
	}).Error)
}

func seedExpense(t *testing.T, db *gorm.DB, userID uuid.UUID, category enums.BudgetCategory, spentAt time.Time, amount float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Expense{
		ID:       uuid.New(),
		UserID:   userID,
		Category: category,
		Amount:   decimal.NewFromFloat(amount),
		SpentAt:  spentAt,
	}).Error)
}

func TestBudgetProviderMonthStatus(t *testing.T) {
	db := setupSignalsTestDB(t)
	provider := NewBudgetProvider(db)
	ctx := context.Background()
	userID := uuid.New()

	month := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedBudget(t, db, userID, enums.BudgetCategoryNeeds, month, 100)
	seedBudget(t, db, userID, enums.BudgetCategoryWants, month, 100)

	inMonth := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	seedExpense(t, db, userID, enums.BudgetCategoryNeeds, inMonth, 60)
	seedExpense(t, db, userID, enums.BudgetCategoryNeeds, inMonth.AddDate(0, 0, 3), 25)
	seedExpense(t, db, userID, enums.BudgetCategoryWants, inMonth, 50)
	// Outside the month and outside the user, both ignored.
	seedExpense(t, db, userID, enums.BudgetCategoryNeeds, month.AddDate(0, -1, 5), 500)
	seedExpense(t, db, uuid.New(), enums.BudgetCategoryNeeds, inMonth, 500)

	statuses, err := provider.MonthStatus(ctx, userID, inMonth)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, enums.BudgetCategoryNeeds, statuses[0].Category)
	assert.True(t, statuses[0].Spent.Equal(decimal.NewFromInt(85)), "needs spent = %s", statuses[0].Spent)
	assert.True(t, statuses[0].Budget.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, enums.BudgetCategoryWants, statuses[1].Category)
	assert.True(t, statuses[1].Spent.Equal(decimal.NewFromInt(50)))
}

func TestBudgetProviderNoBudgetsMeansNoStatuses(t *testing.T) {
	db := setupSignalsTestDB(t)
	provider := NewBudgetProvider(db)

	statuses, err := provider.MonthStatus(context.Background(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestBudgetStatusRatio(t *testing.T) {
	ratio, ok := BudgetStatus{Spent: decimal.NewFromInt(85), Budget: decimal.NewFromInt(100)}.Ratio()
	require.True(t, ok)
	assert.InDelta(t, 0.85, ratio, 0.0001)

	_, ok = BudgetStatus{Spent: decimal.NewFromInt(85)}.Ratio()
	assert.False(t, ok, "zero budget has no ratio")
}

func TestSubscriptionsProviderFiltersAndOrders(t *testing.T) {
	db := setupSignalsTestDB(t)
	provider := NewSubscriptionsProvider(db)
	ctx := context.Background()
	userID := uuid.New()

	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	trialEnd := today.AddDate(0, 0, 2)

	rows := []models.Subscription{
		{ID: uuid.New(), UserID: userID, Name: "Netflix", Amount: decimal.NewFromFloat(15.99), Status: enums.SubscriptionStatusActive, NextChargeDate: today.AddDate(0, 0, 7)},
		{ID: uuid.New(), UserID: userID, Name: "Spotify", Amount: decimal.NewFromFloat(9.99), Status: enums.SubscriptionStatusTrialing, NextChargeDate: today, TrialEndsAt: &trialEnd},
		{ID: uuid.New(), UserID: userID, Name: "Old Gym", Amount: decimal.NewFromFloat(30), Status: enums.SubscriptionStatusCanceled, NextChargeDate: today},
		{ID: uuid.New(), UserID: uuid.New(), Name: "Other User", Amount: decimal.NewFromFloat(5), Status: enums.SubscriptionStatusActive, NextChargeDate: today},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	subscriptions, err := provider.Upcoming(ctx, userID)
	require.NoError(t, err)
	require.Len(t, subscriptions, 2)
	assert.Equal(t, "Spotify", subscriptions[0].Name)
	assert.Equal(t, "Netflix", subscriptions[1].Name)
}

func TestProfileProviderPersonality(t *testing.T) {
	db := setupSignalsTestDB(t)
	provider := NewProfileProvider(db)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, db.Create(&models.User{
		ID:          userID,
		Email:       "sam@example.com",
		Personality: enums.PersonalitySassy,
	}).Error)

	personality, err := provider.Personality(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, enums.PersonalitySassy, personality)

	personality, err = provider.Personality(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, enums.PersonalityFriendly, personality)
}
