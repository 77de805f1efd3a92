// Package formcreate реализует HTTP-обработчик создания формы обратной связи.
//
// Набор полей проверяется против лимитов текущего тарифа отеля. Нарушение
// лимита возвращается клиенту целиком, с конкретными числами и типами,
// молчаливого усечения формы нет.
package formcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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

// Request — структура входных данных для создания формы.
type Request struct {
	Title    string         `json:"title" validate:"required,max=200"`
	Fields   []models.Field `json:"fields" validate:"required,min=1"`
	IsActive bool           `json:"is_active"`
	IsPublic bool           `json:"is_public"`
}

// Service описывает интерфейс бизнес-логики создания формы.
type Service interface {
	Create(ctx context.Context, form models.Form) (string, error)
}

// Handler обрабатывает HTTP-запросы на создание формы.
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
// @Summary Создать форму обратной связи
// @Description Создает форму для отеля текущего администратора. Поля проверяются против лимитов тарифа.
// @Tags Forms
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные новой формы"
// @Success 200 {object} map[string]any "Форма создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или нарушение лимитов тарифа"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /forms [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.form.create"
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

	uid, err := h.service.Create(r.Context(), models.Form{
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
		case errors.As(err, &lerr):
			log.Warn("plan limit violated", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails("plan limit exceeded", lerr))
		case errors.As(err, &serr):
			log.Warn("invalid form schema", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithDetails("invalid form schema", serr))
		default:
			log.Error("failed to create form", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create form"))
		}
		return
	}

	log.Info("form created", slog.String("form_uid", uid))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"form_uid": uid,
	}))
}
