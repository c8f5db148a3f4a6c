package notifications

import (
	"encoding/json"
	"time"

	"github.com/finlyapp/finly-backend/pkg/db/models"
	"github.com/finlyapp/finly-backend/pkg/enums"
	"github.com/google/uuid"
)

// DefaultPopupDuration is how long a popup stays on screen when the caller
// does not override it.
const DefaultPopupDuration = 5 * time.Second

// Options describes a transient notification request. It is consumed and
// discarded once the popup has been displayed and dismissed; when Persist is
// left nil or true it also produces one persisted notification row.
type Options struct {
	Type        enums.NotificationType
	Title       string
	Body        string
	ActionURL   string
	ActionLabel string
	Metadata    map[string]any

	// Duration of the on-screen countdown; zero means DefaultPopupDuration.
	Duration time.Duration

	// Persist defaults to true. Only an explicit false skips the stored copy.
	Persist *bool

	// Action runs when the user invokes the popup's action. Errors it causes
	// are the callback's own business, not the queue's.
	Action func()
}

// ShouldPersist reports whether a shown popup produces a stored row.
func (o Options) ShouldPersist() bool {
	return o.Persist == nil || *o.Persist
}

// EffectiveDuration resolves the countdown duration.
func (o Options) EffectiveDuration() time.Duration {
	if o.Duration > 0 {
		return o.Duration
	}
	return DefaultPopupDuration
}

// Record converts the options into a persistable notification row. Metadata
// that cannot be encoded is dropped rather than failing the record.
func (o Options) Record(userID uuid.UUID) *models.Notification {
	record := &models.Notification{
		UserID: userID,
		Type:   o.Type,
		Title:  o.Title,
		Body:   o.Body,
	}
	if o.ActionURL != "" {
		url := o.ActionURL
		record.ActionURL = &url
	}
	if o.ActionLabel != "" {
		label := o.ActionLabel
		record.ActionLabel = &label
	}
	if len(o.Metadata) > 0 {
		if raw, err := json.Marshal(o.Metadata); err == nil {
			record.Metadata = raw
		}
	}
	return record
}
