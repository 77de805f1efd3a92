// Package reviewstatus реализует HTTP-обработчик смены статуса модерации.
//
// Допустимые переходы: pending → approved/rejected, approved → rejected/
// shared_externally. Недопустимый переход возвращает 409 Conflict.
package reviewstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/feedback-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	reviewsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/review"
)

// Service описывает интерфейс смены статуса отзыва.
type Service interface {
	UpdateStatus(ctx context.Context, reviewUID, hotelUID string, req models.DummyStatusUpdate) error
}

// Handler обрабатывает HTTP-запросы на смену статуса отзыва.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить статус отзыва
// @Description Выполняет переход статуса модерации отзыва. Недопустимый переход отклоняется.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Param uid path string true "UID отзыва"
// @Param request body models.DummyStatusUpdate true "Новый статус и заметки модератора"
// @Success 200 {object} response.Response "Статус изменен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /reviews/{uid}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.status"
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

	var req models.DummyStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.UpdateStatus(r.Context(), reviewUID, *user.HotelUID, req); err != nil {
		switch {
		case errors.Is(err, reviewsvc.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("review not found"))
		case errors.Is(err, reviewsvc.ErrInvalidTransition):
			log.Warn("invalid status transition", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("invalid status transition"))
		default:
			log.Error("failed to update review status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update review status"))
		}
		return
	}

	log.Info("review status updated",
		slog.String("review_uid", reviewUID),
		slog.String("status", req.Status))
	render.JSON(w, r, response.OK())
}
