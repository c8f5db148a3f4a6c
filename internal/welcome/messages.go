package welcome

import (
	"fmt"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

// Key names the ladder rule that produced a selection.
type Key string

const (
	KeyFirstVisit      Key = "first_visit"
	KeyWelcomeBack     Key = "welcome_back"
	KeyChargeDueToday  Key = "charge_due_today"
	KeyTrialEnding     Key = "trial_ending"
	KeyBudgetUpdate    Key = "budget_update"
	KeyDailyMotivation Key = "daily_motivation"
)

// notificationTypes is fixed per key, independent of personality.
var notificationTypes = map[Key]enums.NotificationType{
	KeyFirstVisit:      enums.NotificationTypeSystem,
	KeyWelcomeBack:     enums.NotificationTypeSystem,
	KeyChargeDueToday:  enums.NotificationTypeSubscription,
	KeyTrialEnding:     enums.NotificationTypeWarning,
	KeyBudgetUpdate:    enums.NotificationTypeBudgetAlert,
	KeyDailyMotivation: enums.NotificationTypeTip,
}

// MessageData carries the rule's associated values into the templates.
type MessageData struct {
	Name     string
	Count    int
	Days     int
	Category enums.BudgetCategory
	Percent  int
}

// dayPhrase renders 0 as "today" and other values as "N day(s)".
func dayPhrase(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

type message struct {
	title string
	body  func(data MessageData) string
}

var catalog = map[enums.Personality]map[Key]message{
	enums.PersonalityFriendly: {
		KeyFirstVisit: {
			title: "Welcome to Finly!",
			body: func(MessageData) string {
				return "So glad you're here. Log your first expense and we'll take it from there."
			},
		},
		KeyWelcomeBack: {
			title: "Welcome back!",
			body: func(MessageData) string {
				return "Good to see you again. Your money missed you."
			},
		},
		KeyChargeDueToday: {
			title: "Charge due today",
			body: func(data MessageData) string {
				if data.Count > 1 {
					return fmt.Sprintf("%s charges today, and %d more subscriptions do too.", data.Name, data.Count-1)
				}
				return fmt.Sprintf("Just a heads up, %s charges today.", data.Name)
			},
		},
		KeyTrialEnding: {
			title: "Trial ending soon",
			body: func(data MessageData) string {
				return fmt.Sprintf("Your %s trial ends %s. Decide before it turns into a charge.", data.Name, dayPhrase(data.Days))
			},
		},
		KeyBudgetUpdate: {
			title: "Budget check-in",
			body: func(data MessageData) string {
				return fmt.Sprintf("You've used %d%% of your %s budget. Still time to steer.", data.Percent, data.Category)
			},
		},
		KeyDailyMotivation: {
			title: "New day, fresh start",
			body: func(MessageData) string {
				return "A quick expense log now saves a guessing game later."
			},
		},
	},
	enums.PersonalityCoach: {
		KeyFirstVisit: {
			title: "Day one. Let's go.",
			body: func(MessageData) string {
				return "Champions track every dollar. Log an expense and start your streak."
			},
		},
		KeyWelcomeBack: {
			title: "Back in the game",
			body: func(MessageData) string {
				return "Consistency wins. Let's review the numbers."
			},
		},
		KeyChargeDueToday: {
			title: "Game day: charge due",
			body: func(data MessageData) string {
				if data.Count > 1 {
					return fmt.Sprintf("%s hits your account today, %d charges total. Stay sharp.", data.Name, data.Count)
				}
				return fmt.Sprintf("%s hits your account today. No surprises on my watch.", data.Name)
			},
		},
		KeyTrialEnding: {
			title: "Decision time",
			body: func(data MessageData) string {
				return fmt.Sprintf("%s trial ends %s. Commit or cut it.", data.Name, dayPhrase(data.Days))
			},
		},
		KeyBudgetUpdate: {
			title: "Budget report",
			body: func(data MessageData) string {
				return fmt.Sprintf("%d%% of the %s budget is spent. Tighten up the fourth quarter.", data.Percent, data.Category)
			},
		},
		KeyDailyMotivation: {
			title: "Daily reps",
			body: func(MessageData) string {
				return "One check-in a day keeps the overdraft away. Let's work."
			},
		},
	},
	enums.PersonalitySassy: {
		KeyFirstVisit: {
			title: "Oh, you finally showed up",
			body: func(MessageData) string {
				return "Welcome. Let's see what your wallet's been hiding."
			},
		},
		KeyWelcomeBack: {
			title: "Look who's back",
			body: func(MessageData) string {
				return "Missed me? Your spending certainly didn't slow down."
			},
		},
		KeyChargeDueToday: {
			title: "Cha-ching (not for you)",
			body: func(data MessageData) string {
				if data.Count > 1 {
					return fmt.Sprintf("%s and %d other subscriptions get paid today. Must be nice.", data.Name, data.Count-1)
				}
				return fmt.Sprintf("%s takes its cut today. You did agree to this.", data.Name)
			},
		},
		KeyTrialEnding: {
			title: "That free ride ends",
			body: func(data MessageData) string {
				return fmt.Sprintf("%s stops being free %s. Cancel it or own it.", data.Name, dayPhrase(data.Days))
			},
		},
		KeyBudgetUpdate: {
			title: "Budget gossip",
			body: func(data MessageData) string {
				return fmt.Sprintf("%d%% of the %s budget, gone. Bold strategy.", data.Percent, data.Category)
			},
		},
		KeyDailyMotivation: {
			title: "Yes, again",
			body: func(MessageData) string {
				return "Another day, another chance to pretend the latte doesn't count."
			},
		},
	},
	enums.PersonalityZen: {
		KeyFirstVisit: {
			title: "Welcome",
			body: func(MessageData) string {
				return "Begin where you are. One expense at a time."
			},
		},
		KeyWelcomeBack: {
			title: "You have returned",
			body: func(MessageData) string {
				return "The numbers waited calmly. So can you."
			},
		},
		KeyChargeDueToday: {
			title: "A charge arrives today",
			body: func(data MessageData) string {
				return fmt.Sprintf("%s renews today. Observe it without judgment.", data.Name)
			},
		},
		KeyTrialEnding: {
			title: "A trial concludes",
			body: func(data MessageData) string {
				return fmt.Sprintf("%s completes its trial %s. Choose with intention.", data.Name, dayPhrase(data.Days))
			},
		},
		KeyBudgetUpdate: {
			title: "A budget observation",
			body: func(data MessageData) string {
				return fmt.Sprintf("The %s budget is %d%% spent. Notice, then adjust.", data.Category, data.Percent)
			},
		},
		KeyDailyMotivation: {
			title: "A new day",
			body: func(MessageData) string {
				return "Small, steady attention is enough."
			},
		},
	},
}

// Render resolves the personality-specific copy for the key. Unknown
// personalities fall back to the friendly catalog.
func Render(key Key, personality enums.Personality, data MessageData) (title, body string, notificationType enums.NotificationType) {
	messages, ok := catalog[personality]
	if !ok {
		messages = catalog[enums.PersonalityFriendly]
	}
	entry, ok := messages[key]
	if !ok {
		entry = catalog[enums.PersonalityFriendly][key]
	}
	return entry.title, entry.body(data), notificationTypes[key]
}
