// Package contact реализует публичный HTTP-обработчик сообщения гостя
// отелю вне формы отзыва. Аутентификация не требуется, маршрут прикрыт
// rate-лимитом.
package contact

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
	contactsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/contact"
)

// Service описывает интерфейс приема сообщения гостя.
type Service interface {
	Submit(ctx context.Context, hotelSlug string, req models.DummyContactMessage) (string, error)
}

// Handler обрабатывает публичные HTTP-запросы сообщений гостей.
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
// @Summary Отправить сообщение отелю
// @Description Принимает сообщение гостя отелю. Администратор отеля получает уведомление.
// @Tags Public
// @Accept  json
// @Produce  json
// @Param slug path string true "Slug отеля"
// @Param request body models.DummyContactMessage true "Сообщение гостя"
// @Success 200 {object} map[string]any "Сообщение принято"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Отель не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /public/hotels/{slug}/contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")

	var req models.DummyContactMessage
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

	uid, err := h.service.Submit(r.Context(), slug, req)
	if err != nil {
		if errors.Is(err, contactsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("not found"))
			return
		}
		log.Error("failed to submit contact message", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit message"))
		return
	}

	log.Info("contact message submitted", slog.String("message_uid", uid))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message_uid": uid,
	}))
}
