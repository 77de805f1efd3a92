// Package logout реализует HTTP-обработчик выхода из веб-сессии.
//
// Уничтожается только серверная веб-сессия. Bearer-токены не отзываются:
// их срок фиксирован, а статус учетной записи проверяется на каждом запросе.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedback-aggregator/internal/auth"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
)

// Service описывает интерфейс уничтожения веб-сессии.
type Service interface {
	Logout(ctx context.Context, sessionID string) error
}

// Handler обрабатывает HTTP-запросы на выход.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход из веб-сессии
// @Description Уничтожает серверную веб-сессию и сбрасывает cookie. Без cookie запрос идемпотентно успешен.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Успешный выход"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if c, err := r.Cookie(auth.SessionCookieName); err == nil && c.Value != "" {
		if err := h.service.Logout(r.Context(), c.Value); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("logout success")
	render.JSON(w, r, response.OK())
}
