// Package userstatus реализует административный HTTP-обработчик смены
// статуса учетной записи. Деактивация действует немедленно: статус
// перечитывается на каждом аутентифицированном запросе.
package userstatus

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
	hotelsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/hotel"
)

// Request — структура входных данных для смены статуса учетной записи.
type Request struct {
	Status string `json:"status" validate:"required,oneof=active deactivated deleted"`
}

// Service описывает интерфейс смены статуса учетной записи.
type Service interface {
	SetUserStatus(ctx context.Context, userUID, status string) error
}

// Handler обрабатывает HTTP-запросы на смену статуса учетной записи.
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
// @Summary Сменить статус учетной записи
// @Description Активирует, деактивирует или помечает удаленной учетную запись. Только для администратора платформы.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Новый статус"
// @Success 200 {object} response.Response "Статус изменен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/users/{uid}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userstatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")

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

	if err := h.service.SetUserStatus(r.Context(), userUID, req.Status); err != nil {
		if errors.Is(err, hotelsvc.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update user status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update user status"))
		return
	}

	log.Info("user status updated",
		slog.String("user_uid", userUID),
		slog.String("status", req.Status))
	render.JSON(w, r, response.OK())
}
