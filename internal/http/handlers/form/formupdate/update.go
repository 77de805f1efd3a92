// Package formupdate реализует HTTP-обработчик изменения формы обратной связи.
package formupdate

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
	"github.com/magabrotheeeer/feedback-aggregator/internal/plan"
	formsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/form"
)

// Request — структура входных данных для изменения формы.
type Request struct {
	Title    string         `json:"title" validate:"required,max=200"`
	Fields   []models.Field `json:"fields" validate:"required,min=1"`
	IsActive bool           `json:"is_active"`
	IsPublic bool           `json:"is_public"`
}

// Service описывает интерфейс бизнес-логики изменения формы.
type Service interface {
	Update(ctx context.Context, form models.Form) error
}

// Handler обрабатывает HTTP-запросы на изменение формы.
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
// @Summary Изменить форму обратной связи
// @Description Изменяет форму отеля текущего администратора. Чужая форма неотличима от несуществующей.
// @Tags Forms
// @Accept  json
// @Produce  json
// @Param uid path string true "UID формы"
// @Param request body Request true "Новые данные формы"
// @Success 200 {object} response.Response "Форма изменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Форма не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или нарушение лимитов тарифа"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /forms/{uid} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.form.update"
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

	var req Request
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

	err := h.service.Update(r.Context(), models.Form{
		UID:      formUID,
		HotelUID: *user.HotelUID,
		Title:    req.Title,
		Fields:   req.Fields,
		IsActive: req.IsActive,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		var lerr *plan.LimitError
		var serr *formsvc.SchemaError
		switch {
		case errors.Is(err, formsvc.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("form not found"))
		case errors.As(err, &lerr):
			log.Warn("plan limit violated", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails("plan limit exceeded", lerr))
		case errors.As(err, &serr):
			log.Warn("invalid form schema", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails("invalid form schema", serr))
		default:
			log.Error("failed to update form", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update form"))
		}
		return
	}

	log.Info("form updated", slog.String("form_uid", formUID))
	render.JSON(w, r, response.OK())
}
