// Package formpublic реализует публичный HTTP-обработчик схемы формы
// для гостевой страницы. Аутентификация не требуется.
package formpublic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/feedback-aggregator/internal/http/response"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	formsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/form"
)

// Service описывает интерфейс выдачи публичной схемы формы.
type Service interface {
	PublicSchema(ctx context.Context, hotelSlug, formUID string) (*models.Form, error)
}

// Handler обрабатывает публичные HTTP-запросы схемы формы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Публичная схема формы
// @Description Возвращает схему активной публичной формы отеля для гостевой страницы.
// @Tags Public
// @Produce  json
// @Param slug path string true "Slug отеля"
// @Param uid path string true "UID формы"
// @Success 200 {object} map[string]any "Схема формы"
// @Failure 404 {object} response.ErrorResponse "Отель или форма не найдены"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /public/hotels/{slug}/forms/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.form.public"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	formUID := chi.URLParam(r, "uid")

	form, err := h.service.PublicSchema(r.Context(), slug, formUID)
	if err != nil {
		if errors.Is(err, formsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("not found"))
			return
		}
		log.Error("failed to fetch public form", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"form": form,
	}))
}
