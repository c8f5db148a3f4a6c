package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
//
// IsRead only ever transitions false to true; CreatedAt is immutable once set.
type Notification struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID              `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        enums.NotificationType `gorm:"type:notification_type;not null" json:"type"`
	Title       string                 `gorm:"type:text;not null" json:"title"`
	Body        string                 `gorm:"type:text;not null" json:"body"`
	ActionURL   *string                `gorm:"type:text" json:"action_url,omitempty"`
	ActionLabel *string                `gorm:"type:text" json:"action_label,omitempty"`
	IsRead      bool                   `gorm:"not null;default:false" json:"is_read"`
	Metadata    json.RawMessage        `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time              `gorm:"type:timestamptz;default:now()" json:"created_at"`
}

// DecodedMetadata unmarshals the metadata column, dropping the field on parse
// failure instead of failing the whole record.
func (n Notification) DecodedMetadata() map[string]any {
	if len(n.Metadata) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(n.Metadata, &out); err != nil {
		return nil
	}
	return out
}
