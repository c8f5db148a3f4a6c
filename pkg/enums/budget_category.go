package enums

import "fmt"

// BudgetCategory maps to the budget_category enum in Postgres.
type BudgetCategory string

const (
	BudgetCategoryNeeds   BudgetCategory = "needs"
	BudgetCategoryWants   BudgetCategory = "wants"
	BudgetCategorySavings BudgetCategory = "savings"
)

// BudgetCategories lists the canonical categories in evaluation order. Budget
// threshold ties are broken by this order.
var BudgetCategories = []BudgetCategory{
	BudgetCategoryNeeds,
	BudgetCategoryWants,
	BudgetCategorySavings,
}

// IsValid checks whether the given category matches the canonical enum.
func (b BudgetCategory) IsValid() bool {
	for _, candidate := range BudgetCategories {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBudgetCategory converts raw strings into BudgetCategory.
func ParseBudgetCategory(value string) (BudgetCategory, error) {
	for _, candidate := range BudgetCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid budget category %q", value)
}
