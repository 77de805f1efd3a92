// Package formlist реализует HTTP-обработчик списка форм отеля.
package formlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedback-aggregator/internal/http/middlewarectx"
	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// Service описывает интерфейс бизнес-логики списка форм.
type Service interface {
	List(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Form, error)
}

// Handler обрабатывает HTTP-запросы на получение списка форм.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список форм отеля
// @Description Возвращает формы отеля текущего администратора, включая неактивные.
// @Tags Forms
// @Produce  json
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список форм"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /forms [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.form.list"
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

	limit, offset := pagination(r)
	forms, err := h.service.List(r.Context(), *user.HotelUID, limit, offset)
	if err != nil {
		log.Error("failed to list forms", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list forms"))
		return
	}

	log.Info("forms listed", slog.Int("count", len(forms)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"forms": forms,
		"count": len(forms),
	}))
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
