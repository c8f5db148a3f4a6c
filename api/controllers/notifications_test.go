package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finlyapp/finly-backend/api/middleware"
	"github.com/finlyapp/finly-backend/internal/notifications"
	"github.com/finlyapp/finly-backend/pkg/db/models"
	pkgerrors "github.com/finlyapp/finly-backend/pkg/errors"
)

type stubNotificationsService struct {
	listFn        func(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	unreadFn      func(ctx context.Context, userID uuid.UUID) (int64, error)
	insertFn      func(ctx context.Context, userID uuid.UUID, opts notifications.Options) error
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	deleteFn      func(ctx context.Context, userID, notificationID uuid.UUID) error
	clearFn       func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (s *stubNotificationsService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	return s.listFn(ctx, userID, limit)
}

func (s *stubNotificationsService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.unreadFn(ctx, userID)
}

func (s *stubNotificationsService) Insert(ctx context.Context, userID uuid.UUID, opts notifications.Options) error {
	return s.insertFn(ctx, userID, opts)
}

func (s *stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.markReadFn(ctx, userID, notificationID)
}

func (s *stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.markAllReadFn(ctx, userID)
}

func (s *stubNotificationsService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.deleteFn(ctx, userID, notificationID)
}

func (s *stubNotificationsService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.clearFn(ctx, userID)
}

func authedRequest(method, target string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestListNotificationsReturnsItems(t *testing.T) {
	userID := uuid.New()
	var gotLimit int
	svc := &stubNotificationsService{
		listFn: func(_ context.Context, uid uuid.UUID, limit int) ([]models.Notification, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			gotLimit = limit
			return []models.Notification{{ID: uuid.New(), Title: "Budget check-in"}}, nil
		},
	}

	rec := httptest.NewRecorder()
	ListNotifications(svc, nil).ServeHTTP(rec, authedRequest(http.MethodGet, "/notifications?limit=10", userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if gotLimit != 10 {
		t.Fatalf("expected limit 10 got %d", gotLimit)
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
		t.Fatalf("expected 1 notification, got %d", len(envelope.Data.Notifications))
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	svc := &stubNotificationsService{
		listFn: func(context.Context, uuid.UUID, int) ([]models.Notification, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	ListNotifications(svc, nil).ServeHTTP(rec, authedRequest(http.MethodGet, "/notifications?limit=zero", uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListNotificationsRequiresUserContext(t *testing.T) {
	svc := &stubNotificationsService{
		listFn: func(context.Context, uuid.UUID, int) ([]models.Notification, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	ListNotifications(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUnreadCountReturnsBadge(t *testing.T) {
	svc := &stubNotificationsService{
		unreadFn: func(context.Context, uuid.UUID) (int64, error) { return 4, nil },
	}

	rec := httptest.NewRecorder()
	UnreadCount(svc, nil).ServeHTTP(rec, authedRequest(http.MethodGet, "/notifications/unread-count", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["unread"] != 4 {
		t.Fatalf("expected unread 4 got %d", envelope.Data["unread"])
	}
}

func TestMarkNotificationReadMapsNotFound(t *testing.T) {
	notificationID := uuid.New()
	svc := &stubNotificationsService{
		markReadFn: func(_ context.Context, _, nid uuid.UUID) error {
			if nid != notificationID {
				t.Fatalf("unexpected notification id %s", nid)
			}
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		},
	}

	router := chi.NewRouter()
	router.Post("/notifications/{notificationId}/read", MarkNotificationRead(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/notifications/"+notificationID.String()+"/read", uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestMarkNotificationReadRejectsBadID(t *testing.T) {
	svc := &stubNotificationsService{
		markReadFn: func(context.Context, uuid.UUID, uuid.UUID) error {
			t.Fatal("service must not be called")
			return nil
		},
	}

	router := chi.NewRouter()
	router.Post("/notifications/{notificationId}/read", MarkNotificationRead(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/notifications/not-a-uuid/read", uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	svc := &stubNotificationsService{
		markAllReadFn: func(context.Context, uuid.UUID) (int64, error) { return 3, nil },
	}

	rec := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/notifications/read-all", uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["updated"] != 3 {
		t.Fatalf("expected 3 updated got %d", envelope.Data["updated"])
	}
}

func TestClearNotificationsMapsDependencyFailure(t *testing.T) {
	svc := &stubNotificationsService{
		clearFn: func(context.Context, uuid.UUID) (int64, error) {
			return 0, pkgerrors.New(pkgerrors.CodeDependency, "store unavailable")
		},
	}

	rec := httptest.NewRecorder()
	ClearNotifications(svc, nil).ServeHTTP(rec, authedRequest(http.MethodDelete, "/notifications", uuid.New()))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestDeleteNotification(t *testing.T) {
	notificationID := uuid.New()
	deleted := false
	svc := &stubNotificationsService{
		deleteFn: func(_ context.Context, _, nid uuid.UUID) error {
			deleted = nid == notificationID
			return nil
		},
	}

	router := chi.NewRouter()
	router.Delete("/notifications/{notificationId}", DeleteNotification(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/notifications/"+notificationID.String(), uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !deleted {
		t.Fatal("expected delete to reach the service")
	}
}
