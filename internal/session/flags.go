package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Welcome flag names. Flags live for one session; last visit survives across
// sessions.
const (
	FlagJustSignedUp = "just_signed_up"
	FlagJustLoggedIn = "just_logged_in"
	FlagWelcomeShown = "welcome_shown"
)

// Flags tracks per-session welcome state and the cross-session last visit
// timestamp for a user.
type Flags interface {
	Get(ctx context.Context, userID uuid.UUID, flag string) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, flag string) error
	Clear(ctx context.Context, userID uuid.UUID, flag string) error

	LastVisit(ctx context.Context, userID uuid.UUID) (time.Time, bool, error)
	SetLastVisit(ctx context.Context, userID uuid.UUID, at time.Time) error
}
