// Package feedbackaggregator предоставляет маршруты для основного приложения.
package feedbackaggregator

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/feedback-aggregator/internal/config"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/admin/hotelactive"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/admin/hotellist"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/admin/userstatus"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/auth/verifyemail"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/contact"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/form/formcreate"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/form/formlist"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/form/formpublic"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/form/formread"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/form/formupdate"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/health"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/hotel/hotelregister"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/notification/notificationlist"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/notification/notificationread"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/review/reviewlist"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/review/reviewread"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/review/reviewremove"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/review/reviewreply"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/review/reviewstatus"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/review/reviewurgent"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/handlers/review/submit"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	authservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/auth"
	contactservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/contact"
	formservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/form"
	hotelservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/hotel"
	notificationservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/notification"
	reviewservice "github.com/magabrotheeeer/feedback-aggregator/internal/services/review"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, db *repository.Storage,
	authService *authservice.AuthService,
	reviewService *reviewservice.ReviewService,
	formService *formservice.FormService,
	hotelService *hotelservice.HotelService,
	contactService *contactservice.ContactService,
	notificationService *notificationservice.NotificationService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Один лимитер на все гостевые конечные точки процесса.
	publicLimiter := rate.NewLimiter(rate.Limit(10), 20)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService, cfg.SessionTTL).ServeHTTP)
		r.Post("/auth/logout", logout.New(logger, authService).ServeHTTP)
		r.Get("/auth/verify-email", verifyemail.New(logger, authService).ServeHTTP)

		// Webhook биллинга: аутентификация по HMAC-подписи тела
		r.Post("/billing/webhook", webhook.New(logger, hotelService, cfg.WebhookSecret).ServeHTTP)

		// Гостевые конечные точки без аутентификации, с лимитом запросов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(publicLimiter, logger))
			r.Get("/public/hotels/{slug}/forms/{uid}", formpublic.New(logger, formService).ServeHTTP)
			r.Post("/public/hotels/{slug}/reviews", submit.New(logger, reviewService).ServeHTTP)
			r.Post("/public/hotels/{slug}/contact", contact.New(logger, contactService).ServeHTTP)
		})

		// Группа с аутентификацией (cookie-сессия или bearer-токен)
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(authService, logger))

			r.Post("/hotels", hotelregister.New(logger, hotelService).ServeHTTP)
			r.Get("/notifications", notificationlist.New(logger, notificationService).ServeHTTP)
			r.Post("/notifications/{uid}/read", notificationread.New(logger, notificationService).ServeHTTP)

			// Администратор отеля
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(models.RoleTenantAdmin, logger))
				r.Post("/forms", formcreate.New(logger, formService).ServeHTTP)
				r.Get("/forms", formlist.New(logger, formService).ServeHTTP)
				r.Get("/forms/{uid}", formread.New(logger, formService).ServeHTTP)
				r.Put("/forms/{uid}", formupdate.New(logger, formService).ServeHTTP)
				r.Get("/reviews", reviewlist.New(logger, reviewService).ServeHTTP)
				r.Get("/reviews/{uid}", reviewread.New(logger, reviewService).ServeHTTP)
				r.Post("/reviews/{uid}/status", reviewstatus.New(logger, reviewService).ServeHTTP)
				r.Post("/reviews/{uid}/reply", reviewreply.New(logger, reviewService).ServeHTTP)
				r.Post("/reviews/{uid}/urgent", reviewurgent.New(logger, reviewService).ServeHTTP)
				r.Delete("/reviews/{uid}", reviewremove.New(logger, reviewService).ServeHTTP)
			})

			// Администратор платформы
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(models.RolePlatformAdmin, logger))
				r.Get("/admin/hotels", hotellist.New(logger, hotelService).ServeHTTP)
				r.Post("/admin/hotels/{uid}/active", hotelactive.New(logger, hotelService).ServeHTTP)
				r.Post("/admin/users/{uid}/status", userstatus.New(logger, hotelService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
