// Package reviewread реализует HTTP-обработчик чтения одного отзыва.
package reviewread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedback-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	reviewsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/review"
)

// Service описывает интерфейс бизнес-логики чтения отзыва.
type Service interface {
	Read(ctx context.Context, reviewUID, hotelUID string) (*models.Review, error)
}

// Handler обрабатывает HTTP-запросы на чтение отзыва.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прочитать отзыв
// @Description Возвращает отзыв отеля текущего администратора. Чужой отзыв неотличим от несуществующего.
// @Tags Reviews
// @Produce  json
// @Param uid path string true "UID отзыва"
// @Success 200 {object} map[string]any "Отзыв"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /reviews/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok || user.HotelUID == nil {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	reviewUID := chi.URLParam(r, "uid")
	review, err := h.service.Read(r.Context(), reviewUID, *user.HotelUID)
	if err != nil {
		if errors.Is(err, reviewsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("review not found"))
			return
		}
		log.Error("failed to read review", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read review"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"review": review,
	}))
}
