package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/api/middleware"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
)

// authedUser resolves the authenticated user's id from the request context.
func authedUser(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
