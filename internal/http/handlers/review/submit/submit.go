// Package submit реализует публичный HTTP-обработчик отправки гостевого
// отзыва. Аутентификация не требуется, маршрут прикрыт rate-лимитом.
package submit

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

	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	reviewsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/review"
)

// Service описывает интерфейс конвейера приёма отзывов.
type Service interface {
	Submit(ctx context.Context, hotelSlug string, req models.DummySubmission) (*models.Review, error)
}

// Handler обрабатывает публичные HTTP-запросы отправки отзыва.
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
// @Summary Отправить гостевой отзыв
// @Description Принимает ответы гостя на форму отеля. Статус отзыва вычисляется автоматически по оценке.
// @Tags Public
// @Accept  json
// @Produce  json
// @Param slug path string true "Slug отеля"
// @Param request body models.DummySubmission true "Ответы на поля формы"
// @Success 200 {object} map[string]any "Отзыв принят"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Отель или форма не найдены"
// @Failure 422 {object} response.ErrorResponse "Ошибка заполнения формы"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /public/hotels/{slug}/reviews [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.submit"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")

	var req models.DummySubmission
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

	review, err := h.service.Submit(r.Context(), slug, req)
	if err != nil {
		var verr *reviewsvc.ValidationError
		switch {
		case errors.Is(err, reviewsvc.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("not found"))
		case errors.As(err, &verr):
			log.Warn("submission rejected", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails("invalid submission", verr))
		default:
			log.Error("failed to submit review", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not submit review"))
		}
		return
	}

	log.Info("review submitted",
		slog.String("review_uid", review.UID),
		slog.String("status", review.Status))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"review_uid": review.UID,
		"status":     review.Status,
	}))
}
