package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finlyapp/finly-backend/internal/notifications"
	"github.com/finlyapp/finly-backend/internal/session"
	pkgauth "github.com/finlyapp/finly-backend/pkg/auth"
	"github.com/finlyapp/finly-backend/pkg/config"
	"github.com/finlyapp/finly-backend/pkg/db/models"
	"github.com/finlyapp/finly-backend/pkg/logger"
)

type stubNotificationsService struct {
	items []models.Notification
}

func (s *stubNotificationsService) List(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return s.items, nil
}

func (s *stubNotificationsService) UnreadCount(context.Context, uuid.UUID) (int64, error) {
	return int64(len(s.items)), nil
}

func (s *stubNotificationsService) Insert(context.Context, uuid.UUID, notifications.Options) error {
	return nil
}

func (s *stubNotificationsService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (s *stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubNotificationsService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (s *stubNotificationsService) Clear(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

type stubWelcome struct{}

func (stubWelcome) Run(context.Context, uuid.UUID) error { return nil }

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "finly", ExpirationMinutes: 10}

	logg := logger.New(logger.Options{ServiceName: "routes-test", Level: zerolog.ErrorLevel, Output: io.Discard})

	router := NewRouter(RouterParams{
		Config: cfg,
		Logger: logg,
		Notifications: &stubNotificationsService{
			items: []models.Notification{{ID: uuid.New(), Title: "Budget check-in"}},
		},
		SessionFlags: session.NewMemory(),
		Welcome:      stubWelcome{},
	})
	return router, cfg.JWT
}

func TestRouterHealthLive(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-Finly-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestRouterRejectsUnauthenticatedAPI(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRouterServesNotificationsWithToken(t *testing.T) {
	router, jwtCfg := testRouter(t)

	token, err := pkgauth.MintAccessToken(jwtCfg, time.Now(), pkgauth.AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Notifications []models.Notification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Notifications) != 1 {
		t.Fatalf("expected 1 notification got %d", len(envelope.Data.Notifications))
	}
}
