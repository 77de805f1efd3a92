// Package services реализует конструктор форм обратной связи: создание
// и изменение с проверкой лимитов тарифа, выдачу публичной схемы через кеш.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	"github.com/magabrotheeeer/feedback-aggregator/internal/plan"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

// ErrNotFound возвращается для несуществующей или чужой формы.
var ErrNotFound = errors.New("not found")

// publicFormTTL — время жизни публичной схемы формы в кеше. Мутация
// формы инвалидирует ключ, TTL страхует от потерянной инвалидации.
const publicFormTTL = 5 * time.Minute

// SchemaError описывает структурные нарушения в наборе полей формы.
// Лимиты тарифа проверяются отдельно, см. plan.LimitError.
type SchemaError struct {
	DuplicateFieldIDs []string `json:"duplicate_field_ids,omitempty"`
	DuplicateRoles    []string `json:"duplicate_roles,omitempty"`
	UnknownRoles      []string `json:"unknown_roles,omitempty"`
	EmptyFieldIDs     bool     `json:"empty_field_ids,omitempty"`
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.DuplicateFieldIDs) > 0 {
		parts = append(parts, "duplicate field ids: "+strings.Join(e.DuplicateFieldIDs, ", "))
	}
	if len(e.DuplicateRoles) > 0 {
		parts = append(parts, "duplicate semantic roles: "+strings.Join(e.DuplicateRoles, ", "))
	}
	if len(e.UnknownRoles) > 0 {
		parts = append(parts, "unknown semantic roles: "+strings.Join(e.UnknownRoles, ", "))
	}
	if e.EmptyFieldIDs {
		parts = append(parts, "field id must not be empty")
	}
	return strings.Join(parts, "; ")
}

// FormRepository описывает контракт хранилища форм.
type FormRepository interface {
	CreateForm(ctx context.Context, form models.Form) (string, error)
	UpdateForm(ctx context.Context, form models.Form) error
	GetForm(ctx context.Context, formUID, hotelUID string) (*models.Form, error)
	GetPublicForm(ctx context.Context, formUID, hotelUID string) (*models.Form, error)
	ListForms(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Form, error)
}

// HotelRepository нужен для определения тарифа отеля и разрешения slug.
type HotelRepository interface {
	GetHotel(ctx context.Context, hotelUID string) (*models.Hotel, error)
	GetHotelBySlug(ctx context.Context, slug string) (*models.Hotel, error)
}

// SchemaCache описывает кеш публичных схем форм.
type SchemaCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// FormService реализует операции конструктора форм.
type FormService struct {
	forms  FormRepository
	hotels HotelRepository
	cache  SchemaCache
	log    *slog.Logger
}

// NewFormService создает новый экземпляр FormService.
func NewFormService(forms FormRepository, hotels HotelRepository, cache SchemaCache, log *slog.Logger) *FormService {
	return &FormService{
		forms:  forms,
		hotels: hotels,
		cache:  cache,
		log:    log,
	}
}

// Create сохраняет новую форму отеля. Набор полей проверяется против
// текущего тарифа отеля: нарушение лимита возвращается целиком как
// *plan.LimitError, молчаливого усечения нет.
func (s *FormService) Create(ctx context.Context, form models.Form) (string, error) {
	const op = "services.form.Create"

	if err := s.validateSchema(ctx, &form); err != nil {
		return "", err
	}

	uid, err := s.forms.CreateForm(ctx, form)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Update изменяет форму в рамках отеля вызывающего и инвалидирует
// кешированную публичную схему.
func (s *FormService) Update(ctx context.Context, form models.Form) error {
	const op = "services.form.Update"

	if err := s.validateSchema(ctx, &form); err != nil {
		return err
	}

	if err := s.forms.UpdateForm(ctx, form); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(ctx, publicFormKey(form.HotelUID, form.UID)); err != nil {
		s.log.Warn("failed to invalidate form cache", slog.String("op", op), sl.Err(err))
	}
	return nil
}

// Read возвращает форму в рамках отеля вызывающего, включая неактивные
// и непубличные.
func (s *FormService) Read(ctx context.Context, formUID, hotelUID string) (*models.Form, error) {
	form, err := s.forms.GetForm(ctx, formUID, hotelUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return form, nil
}

// List возвращает формы отеля с пагинацией.
func (s *FormService) List(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Form, error) {
	return s.forms.ListForms(ctx, hotelUID, limit, offset)
}

// PublicSchema возвращает схему активной публичной формы для гостевой
// страницы. Схема кешируется; промах кеша не мешает ответу, ошибка
// кеша только логируется.
func (s *FormService) PublicSchema(ctx context.Context, hotelSlug, formUID string) (*models.Form, error) {
	const op = "services.form.PublicSchema"

	hotel, err := s.hotels.GetHotelBySlug(ctx, hotelSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !hotel.IsActive {
		return nil, ErrNotFound
	}

	key := publicFormKey(hotel.UID, formUID)
	var cached models.Form
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read form cache", slog.String("op", op), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	form, err := s.forms.GetPublicForm(ctx, formUID, hotel.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, key, form, publicFormTTL); err != nil {
		s.log.Warn("failed to write form cache", slog.String("op", op), sl.Err(err))
	}
	return form, nil
}

// validateSchema проверяет структуру полей и лимиты текущего тарифа отеля.
func (s *FormService) validateSchema(ctx context.Context, form *models.Form) error {
	const op = "services.form.validateSchema"

	if serr := checkFields(form.Fields); serr != nil {
		return serr
	}

	hotel, err := s.hotels.GetHotel(ctx, form.HotelUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return plan.Validate(hotel.SubscriptionPlan, form.Fields)
}

var knownRoles = map[string]struct{}{
	models.RoleGuestName:  {},
	models.RoleGuestEmail: {},
	models.RoleGuestPhone: {},
	models.RoleRating:     {},
}

// checkFields проверяет уникальность идентификаторов полей и семантических
// ролей. Роль в форме не может повторяться: извлечение данных гостя
// детерминировано.
func checkFields(fields []models.Field) *SchemaError {
	serr := &SchemaError{}
	seenIDs := make(map[string]struct{}, len(fields))
	seenRoles := make(map[string]struct{})

	for _, f := range fields {
		if f.ID == "" {
			serr.EmptyFieldIDs = true
			continue
		}
		if _, dup := seenIDs[f.ID]; dup {
			serr.DuplicateFieldIDs = append(serr.DuplicateFieldIDs, f.ID)
		}
		seenIDs[f.ID] = struct{}{}

		if f.SemanticRole == "" {
			continue
		}
		if _, known := knownRoles[f.SemanticRole]; !known {
			serr.UnknownRoles = append(serr.UnknownRoles, f.SemanticRole)
			continue
		}
		if _, dup := seenRoles[f.SemanticRole]; dup {
			serr.DuplicateRoles = append(serr.DuplicateRoles, f.SemanticRole)
		}
		seenRoles[f.SemanticRole] = struct{}{}
	}

	if len(serr.DuplicateFieldIDs) > 0 || len(serr.DuplicateRoles) > 0 ||
		len(serr.UnknownRoles) > 0 || serr.EmptyFieldIDs {
		return serr
	}
	return nil
}

func publicFormKey(hotelUID, formUID string) string {
	return "form:public:" + hotelUID + ":" + formUID
}
