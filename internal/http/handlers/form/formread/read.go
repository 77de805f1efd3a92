// Package formread реализует HTTP-обработчик чтения одной формы отеля.
package formread

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
	formsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/form"
)

// Service описывает интерфейс бизнес-логики чтения формы.
type Service interface {
	Read(ctx context.Context, formUID, hotelUID string) (*models.Form, error)
}

// Handler обрабатывает HTTP-запросы на чтение формы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прочитать форму
// @Description Возвращает форму отеля текущего администратора. Чужая форма неотличима от несуществующей.
// @Tags Forms
// @Produce  json
// @Param uid path string true "UID формы"
// @Success 200 {object} map[string]any "Форма"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Форма не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /forms/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.form.read"
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

	formUID := chi.URLParam(r, "uid")
	form, err := h.service.Read(r.Context(), formUID, *user.HotelUID)
	if err != nil {
		if errors.Is(err, formsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("form not found"))
			return
		}
		log.Error("failed to read form", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read form"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"form": form,
	}))
}
