package enums

// EventType names the domain events carried on the Pub/Sub domain topic.
type EventType string

const (
	EventBudgetThresholdCrossed EventType = "budget.threshold_crossed"
	EventSubscriptionCharged    EventType = "subscription.charged"
	EventTrialEndingSoon        EventType = "subscription.trial_ending"
)
