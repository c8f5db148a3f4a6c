package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/pkg/enums"
)

// User holds the profile fields the notification pipeline reads. The chosen
// personality drives message wording and sound cues.
type User struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string            `gorm:"type:text;not null;uniqueIndex" json:"email"`
	DisplayName string            `gorm:"type:text" json:"display_name"`
	Personality enums.Personality `gorm:"type:personality;not null;default:'friendly'" json:"personality"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
