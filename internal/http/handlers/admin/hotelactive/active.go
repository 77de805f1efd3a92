// Package hotelactive реализует административный HTTP-обработчик
// включения и выключения приема отзывов отелем.
package hotelactive

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	hotelsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/hotel"
)

// Request — структура входных данных для смены активности отеля.
type Request struct {
	IsActive bool `json:"is_active"`
}

// Service описывает интерфейс смены активности отеля.
type Service interface {
	SetActive(ctx context.Context, hotelUID string, isActive bool) error
}

// Handler обрабатывает HTTP-запросы на смену активности отеля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сменить активность отеля
// @Description Включает или выключает прием отзывов отелем. Только для администратора платформы.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param uid path string true "UID отеля"
// @Param request body Request true "Флаг активности"
// @Success 200 {object} response.Response "Активность изменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Отель не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/hotels/{uid}/active [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.hotelactive"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	hotelUID := chi.URLParam(r, "uid")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.SetActive(r.Context(), hotelUID, req.IsActive); err != nil {
		if errors.Is(err, hotelsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("hotel not found"))
			return
		}
		log.Error("failed to update hotel activity", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update hotel activity"))
		return
	}

	log.Info("hotel activity updated",
		slog.String("hotel_uid", hotelUID),
		slog.Bool("is_active", req.IsActive))
	render.JSON(w, r, response.OK())
}
