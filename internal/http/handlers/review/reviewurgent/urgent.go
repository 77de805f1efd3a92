// Package reviewurgent реализует HTTP-обработчик пометки отзыва срочным.
package reviewurgent

import (
	"context"
	"encoding/json"
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

// Request — структура входных данных для пометки срочности.
type Request struct {
	IsUrgent bool `json:"is_urgent"`
}

// Service описывает интерфейс смены флага срочности.
type Service interface {
	SetUrgent(ctx context.Context, reviewUID, hotelUID string, isUrgent bool) error
}

// Handler обрабатывает HTTP-запросы на смену срочности отзыва.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пометить отзыв срочным
// @Description Ставит или снимает флаг срочности отзыва.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Param uid path string true "UID отзыва"
// @Param request body Request true "Флаг срочности"
// @Success 200 {object} response.Response "Флаг изменен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /reviews/{uid}/urgent [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.urgent"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.SetUrgent(r.Context(), reviewUID, *user.HotelUID, req.IsUrgent); err != nil {
		if errors.Is(err, reviewsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("review not found"))
			return
		}
		log.Error("failed to set review urgency", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set review urgency"))
		return
	}

	log.Info("review urgency updated",
		slog.String("review_uid", reviewUID),
		slog.Bool("is_urgent", req.IsUrgent))
	render.JSON(w, r, response.OK())
}
