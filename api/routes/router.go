package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finlyapp/finly-backend/api/controllers"
	"github.com/finlyapp/finly-backend/api/middleware"
	"github.com/finlyapp/finly-backend/internal/notifications"
	"github.com/finlyapp/finly-backend/internal/session"
	"github.com/finlyapp/finly-backend/pkg/config"
	"github.com/finlyapp/finly-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	Pingers       map[string]controllers.Pinger
	Notifications notifications.Service
	SessionFlags  session.Flags
	Welcome       controllers.WelcomeRunner
	Queues        controllers.QueueReleaser
	Metrics       prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Pingers))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(params.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadCount(params.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(params.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(params.Notifications, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(params.Notifications, logg))
			r.Delete("/", controllers.ClearNotifications(params.Notifications, logg))
		})

		r.Route("/session", func(r chi.Router) {
			r.Post("/start", controllers.StartSession(params.SessionFlags, params.Welcome, logg, cfg.Notifier.SelectionDelay+cfg.Notifier.DisplayDelay+time.Minute))
			r.Post("/end", controllers.EndSession(params.SessionFlags, params.Queues, logg))
		})
	})

	return r
}
