// Package reviewremove реализует HTTP-обработчик мягкого удаления отзыва.
package reviewremove

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
	reviewsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/review"
)

// Service описывает интерфейс удаления отзыва.
type Service interface {
	Remove(ctx context.Context, reviewUID, hotelUID string) error
}

// Handler обрабатывает HTTP-запросы на удаление отзыва.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить отзыв
// @Description Помечает отзыв удаленным. Запись остается в хранилище, но исчезает из выдачи.
// @Tags Reviews
// @Produce  json
// @Param uid path string true "UID отзыва"
// @Success 200 {object} response.Response "Отзыв удален"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /reviews/{uid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.remove"
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
	if err := h.service.Remove(r.Context(), reviewUID, *user.HotelUID); err != nil {
		if errors.Is(err, reviewsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("review not found"))
			return
		}
		log.Error("failed to remove review", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove review"))
		return
	}

	log.Info("review removed", slog.String("review_uid", reviewUID))
	render.JSON(w, r, response.OK())
}
