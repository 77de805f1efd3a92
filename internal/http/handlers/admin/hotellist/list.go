// Package hotellist реализует административный HTTP-обработчик списка
// всех отелей платформы.
package hotellist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// Service описывает интерфейс бизнес-логики списка отелей.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.Hotel, error)
}

// Handler обрабатывает HTTP-запросы на получение списка отелей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список всех отелей
// @Description Возвращает все отели платформы. Только для администратора платформы.
// @Tags Admin
// @Produce  json
// @Param limit query int false "Размер страницы (по умолчанию 50)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список отелей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/hotels [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.hotellist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := 50
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	hotels, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list hotels", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list hotels"))
		return
	}

	log.Info("hotels listed", slog.Int("count", len(hotels)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"hotels": hotels,
		"count":  len(hotels),
	}))
}
