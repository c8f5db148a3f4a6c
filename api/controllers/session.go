package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/api/responses"
	"github.com/finlyapp/finly-backend/internal/session"
	"github.com/finlyapp/finly-backend/internal/welcome"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
	"github.com/finlyapp/finly-backend/pkg/logger"
)

// WelcomeRunner is the surface of the welcome selector used by the session
// controller.
type WelcomeRunner interface {
	Run(ctx context.Context, userID uuid.UUID) error
}

var _ WelcomeRunner = (*welcome.Selector)(nil)

type startSessionPayload struct {
	SignedUp bool `json:"signed_up"`
	LoggedIn bool `json:"logged_in"`
}

// StartSession seeds the session flags and kicks off the welcome selection in
// the background. The response does not wait for the selector; its delays are
// part of the delivery pacing, not the request.
func StartSession(flags session.Flags, selector WelcomeRunner, logg *logger.Logger, timeout time.Duration) http.HandlerFunc {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if flags == nil || selector == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		userID, err := authedUser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload startSessionPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		if payload.SignedUp {
			if err := flags.Set(ctx, userID, session.FlagJustSignedUp); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed session flags"))
				return
			}
		}
		if payload.LoggedIn {
			if err := flags.Set(ctx, userID, session.FlagJustLoggedIn); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed session flags"))
				return
			}
		}

		go func() {
			runCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if logg != nil {
				runCtx = logg.WithUserID(runCtx, userID.String())
			}
			if err := selector.Run(runCtx, userID); err != nil && logg != nil {
				logg.Error(runCtx, "welcome selection failed", err)
			}
		}()

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}

// QueueReleaser drops a user's popup queue when their session ends.
type QueueReleaser interface {
	Release(userID uuid.UUID)
}

// EndSession clears the per-session welcome flags so the next session can
// greet the user again.
func EndSession(flags session.Flags, queues QueueReleaser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if flags == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		userID, err := authedUser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		for _, flag := range []string{session.FlagWelcomeShown, session.FlagJustSignedUp, session.FlagJustLoggedIn} {
			if err := flags.Clear(ctx, userID, flag); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session flags"))
				return
			}
		}

		if queues != nil {
			queues.Release(userID)
		}

		responses.WriteSuccess(w, map[string]string{"status": "ended"})
	}
}
