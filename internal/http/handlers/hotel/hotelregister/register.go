// Package hotelregister реализует HTTP-обработчик регистрации отеля.
//
// Отель регистрирует tenant_admin, еще не привязанный к отелю. После
// успешной регистрации учетная запись связывается с созданным отелем.
package hotelregister

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
	hotelsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/hotel"
)

// Request — структура входных данных для регистрации отеля.
type Request struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"required,min=3,max=80,hostname_rfc1123"`
}

// Service описывает интерфейс бизнес-логики регистрации отеля.
type Service interface {
	Register(ctx context.Context, ownerUID, name, slug string) (*models.Hotel, error)
}

// Handler обрабатывает HTTP-запросы на регистрацию отеля.
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
// @Summary Зарегистрировать отель
// @Description Создает отель для текущего администратора. Новый отель стартует на плане basic в триальном статусе.
// @Tags Hotels
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового отеля"
// @Success 200 {object} map[string]any "Отель создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пользователь уже привязан к отелю"
// @Failure 409 {object} response.ErrorResponse "Slug уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /hotels [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.hotel.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	if user.Role != models.RoleTenantAdmin || user.HotelUID != nil {
		log.Warn("hotel registration denied", slog.String("user_uid", user.UID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
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

	hotel, err := h.service.Register(r.Context(), user.UID, req.Name, req.Slug)
	if err != nil {
		if errors.Is(err, hotelsvc.ErrSlugTaken) {
			log.Warn("slug already taken", slog.String("slug", req.Slug))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("slug already taken"))
			return
		}
		log.Error("failed to register hotel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register hotel"))
		return
	}

	log.Info("hotel registered",
		slog.String("hotel_uid", hotel.UID),
		slog.String("slug", hotel.Slug))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"hotel_uid":           hotel.UID,
		"slug":                hotel.Slug,
		"subscription_plan":   hotel.SubscriptionPlan,
		"subscription_status": hotel.SubscriptionStatus,
	}))
}
