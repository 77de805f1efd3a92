// Package middlewarectx содержит HTTP middleware для аутентификации
// запросов и охраны маршрутов по ролям.
//
// AuthMiddleware извлекает учетные данные запроса (cookie веб-сессии или
// bearer-токен), разрешает их в пользователя и кладет его в контекст.
// Статус учетной записи проверяется на каждом запросе: деактивация
// действует немедленно, даже при формально валидном токене.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedback-aggregator/internal/auth"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	authsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для аутентифицированного пользователя в контексте.
const User Key = "user"

// Service описывает интерфейс разрешения учетных данных в пользователя.
type Service interface {
	Resolve(ctx context.Context, cred auth.Credential) (*models.User, error)
}

// AuthMiddleware возвращает HTTP middleware, который аутентифицирует запрос.
//
// Если учетные данные валидны, добавляет пользователя в контекст запроса,
// иначе возвращает 401 Unauthorized. Неподтвержденная почта при включённом
// требовании верификации дает 403 с машинно-читаемым признаком.
func AuthMiddleware(service Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			cred := auth.ExtractCredential(r)
			if cred == nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing credentials"))
				return
			}

			user, err := service.Resolve(r.Context(), cred)
			if err != nil {
				switch {
				case errors.Is(err, authsvc.ErrEmailNotVerified):
					render.Status(r, http.StatusForbidden)
					render.JSON(w, r, response.ErrorWithDetails("email not verified",
						map[string]any{"email_not_verified": true}))
				case errors.Is(err, authsvc.ErrUnauthenticated),
					errors.Is(err, authsvc.ErrAccountDeleted),
					errors.Is(err, authsvc.ErrAccountDeactivated):
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("invalid or expired credentials"))
				default:
					log.Error("failed to resolve credentials", sl.Err(err))
					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, response.Error("internal error"))
				}
				return
			}

			ctx := context.WithValue(r.Context(), User, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext возвращает аутентифицированного пользователя запроса.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(User).(*models.User)
	return user, ok && user != nil
}
