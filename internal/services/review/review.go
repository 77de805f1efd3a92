// Package services реализует конвейер приёма гостевых отзывов и операции
// модерации.
//
// Приём отзыва: отель по slug → активная публичная форма → проверка
// обязательных полей → извлечение полей гостя по семантическим ролям →
// вычисление общей оценки и стартового статуса → одна атомарная запись →
// уведомление администратору отеля (fire-and-forget).
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

// Ошибки конвейера отзывов.
var (
	// ErrNotFound покрывает и несуществующий, и неактивный, и чужой
	// ресурс: по ответу их различить нельзя.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition возвращается при недопустимой смене статуса.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError перечисляет проблемы гостевого ответа по полям формы.
type ValidationError struct {
	MissingFields []string `json:"missing_fields,omitempty"`
	UnknownFields []string `json:"unknown_fields,omitempty"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.UnknownFields) > 0 {
		parts = append(parts, "unknown fields: "+strings.Join(e.UnknownFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(e.InvalidFields, ", "))
	}
	return strings.Join(parts, "; ")
}

// Допустимые переходы статуса после создания. Из pending отзыв выводит
// только администратор; rejected и shared_externally — терминальные.
var allowedTransitions = map[string][]string{
	models.ReviewPending:  {models.ReviewApproved, models.ReviewRejected},
	models.ReviewApproved: {models.ReviewRejected, models.ReviewSharedExternally},
}

// ReviewRepository описывает контракт хранилища отзывов.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) (string, error)
	GetReview(ctx context.Context, reviewUID, hotelUID string) (*models.Review, error)
	ListReviews(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Review, error)
	UpdateReviewStatus(ctx context.Context, reviewUID, hotelUID, status string, notes *string) error
	ReplyReview(ctx context.Context, reviewUID, hotelUID, replyText string) error
	SoftDeleteReview(ctx context.Context, reviewUID, hotelUID string) error
	SetReviewUrgent(ctx context.Context, reviewUID, hotelUID string, isUrgent bool) error
}

// HotelRepository нужен для разрешения отеля по публичному slug.
type HotelRepository interface {
	GetHotelBySlug(ctx context.Context, slug string) (*models.Hotel, error)
}

// FormRepository нужен для чтения схемы формы при отправке.
type FormRepository interface {
	GetPublicForm(ctx context.Context, formUID, hotelUID string) (*models.Form, error)
}

// UserRepository нужен для поиска получателя уведомления.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Dispatcher описывает диспетчер уведомлений. Вызов не возвращает ошибку:
// доставка не должна влиять на судьбу основного действия.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification, msg models.NotificationMessage)
}

// ReviewService реализует приём и модерацию отзывов.
type ReviewService struct {
	reviews    ReviewRepository
	hotels     HotelRepository
	forms      FormRepository
	users      UserRepository
	dispatcher Dispatcher
	log        *slog.Logger
}

// NewReviewService создает новый экземпляр ReviewService.
func NewReviewService(reviews ReviewRepository, hotels HotelRepository, forms FormRepository,
	users UserRepository, dispatcher Dispatcher, log *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		hotels:     hotels,
		forms:      forms,
		users:      users,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Submit принимает гостевой ответ на форму отеля и возвращает созданный отзыв.
//
// Повторная отправка того же payload не дедуплицируется: каждый вызов
// создает отдельный отзыв.
func (s *ReviewService) Submit(ctx context.Context, hotelSlug string, req models.DummySubmission) (*models.Review, error) {
	const op = "services.review.Submit"

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

	form, err := s.forms.GetPublicForm(ctx, req.FormUID, hotel.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateResponses(form, req.Responses); err != nil {
		return nil, err
	}

	review := models.Review{
		HotelUID:  hotel.UID,
		FormUID:   form.UID,
		Responses: req.Responses,
		Status:    models.ReviewPending,
	}
	review.GuestName = stringAnswer(form, req.Responses, models.RoleGuestName)
	review.GuestEmail = stringAnswer(form, req.Responses, models.RoleGuestEmail)
	review.GuestPhone = stringAnswer(form, req.Responses, models.RoleGuestPhone)

	// Статус вычисляется из того же payload, который уходит в запись:
	// повторного чтения между валидацией и сохранением нет.
	if rating := ratingAnswer(form, req.Responses); rating != nil {
		review.OverallRating = rating
		if *rating >= 4 {
			review.Status = models.ReviewApproved
		}
	}

	uid, err := s.reviews.CreateReview(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	review.UID = uid

	s.notifyNewReview(ctx, hotel, &review)

	return &review, nil
}

// notifyNewReview отправляет уведомление владельцу отеля. Любая ошибка
// здесь логируется и не влияет на результат приёма отзыва.
func (s *ReviewService) notifyNewReview(ctx context.Context, hotel *models.Hotel, review *models.Review) {
	const op = "services.review.notifyNewReview"
	log := s.log.With(slog.String("op", op), slog.String("review_uid", review.UID))

	owner, err := s.users.GetUser(ctx, hotel.OwnerUID)
	if err != nil {
		log.Error("failed to resolve notification recipient", sl.Err(err))
		return
	}

	payload := map[string]any{
		"review_uid": review.UID,
		"hotel_uid":  hotel.UID,
		"status":     review.Status,
	}
	if review.OverallRating != nil {
		payload["overall_rating"] = *review.OverallRating
	}
	s.dispatcher.Dispatch(ctx,
		models.Notification{
			RecipientUID: owner.UID,
			Kind:         models.NotificationNewReview,
			Payload:      payload,
		},
		models.NotificationMessage{
			Kind:           models.NotificationNewReview,
			RecipientEmail: owner.Email,
			RecipientName:  owner.FirstName,
			HotelName:      hotel.Name,
			ReviewUID:      review.UID,
			OverallRating:  review.OverallRating,
			GuestName:      review.GuestName,
		})
}

// Read возвращает отзыв в рамках отеля вызывающего.
func (s *ReviewService) Read(ctx context.Context, reviewUID, hotelUID string) (*models.Review, error) {
	review, err := s.reviews.GetReview(ctx, reviewUID, hotelUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

// List возвращает отзывы отеля с пагинацией.
func (s *ReviewService) List(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Review, error) {
	return s.reviews.ListReviews(ctx, hotelUID, limit, offset)
}

// UpdateStatus выполняет переход статуса модерации. Текущий статус
// читается в рамках отеля вызывающего, затем проверяется допустимость
// перехода.
func (s *ReviewService) UpdateStatus(ctx context.Context, reviewUID, hotelUID string, req models.DummyStatusUpdate) error {
	review, err := s.reviews.GetReview(ctx, reviewUID, hotelUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !transitionAllowed(review.Status, req.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, review.Status, req.Status)
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	if err := s.reviews.UpdateReviewStatus(ctx, reviewUID, hotelUID, req.Status, notes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Reply сохраняет ответ отеля гостю.
func (s *ReviewService) Reply(ctx context.Context, reviewUID, hotelUID, replyText string) error {
	if err := s.reviews.ReplyReview(ctx, reviewUID, hotelUID, replyText); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Remove помечает отзыв удалённым.
func (s *ReviewService) Remove(ctx context.Context, reviewUID, hotelUID string) error {
	if err := s.reviews.SoftDeleteReview(ctx, reviewUID, hotelUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// SetUrgent меняет флаг срочности отзыва.
func (s *ReviewService) SetUrgent(ctx context.Context, reviewUID, hotelUID string, isUrgent bool) error {
	if err := s.reviews.SetReviewUrgent(ctx, reviewUID, hotelUID, isUrgent); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// validateResponses проверяет покрытие обязательных полей, известность
// идентификаторов и корректность значения оценки.
func validateResponses(form *models.Form, responses map[string]any) error {
	verr := &ValidationError{}

	for _, field := range form.Fields {
		answer, ok := responses[field.ID]
		if field.Required && (!ok || isEmptyAnswer(answer)) {
			verr.MissingFields = append(verr.MissingFields, field.ID)
		}
		if ok && field.Type == models.FieldRating {
			if _, valid := numericRating(answer); !valid {
				verr.InvalidFields = append(verr.InvalidFields, field.ID)
			}
		}
	}

	for id := range responses {
		if _, ok := form.FieldByID(id); !ok {
			verr.UnknownFields = append(verr.UnknownFields, id)
		}
	}
	sort.Strings(verr.UnknownFields)

	if len(verr.MissingFields) > 0 || len(verr.UnknownFields) > 0 || len(verr.InvalidFields) > 0 {
		return verr
	}
	return nil
}

func isEmptyAnswer(answer any) bool {
	switch v := answer.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// stringAnswer извлекает строковый ответ на поле с заданной семантической
// ролью. Роли уникальны в форме, угадывания по ярлыку нет.
func stringAnswer(form *models.Form, responses map[string]any, role string) *string {
	field, ok := form.FieldByRole(role)
	if !ok {
		return nil
	}
	raw, ok := responses[field.ID]
	if !ok {
		return nil
	}
	str, ok := raw.(string)
	if !ok || strings.TrimSpace(str) == "" {
		return nil
	}
	return &str
}

// ratingAnswer извлекает ответ на поле оценки. Возвращает nil, если
// в форме нет поля с ролью rating или гость его не заполнил.
func ratingAnswer(form *models.Form, responses map[string]any) *int {
	field, ok := form.FieldByRole(models.RoleRating)
	if !ok {
		return nil
	}
	raw, ok := responses[field.ID]
	if !ok {
		return nil
	}
	rating, valid := numericRating(raw)
	if !valid {
		return nil
	}
	return &rating
}

// numericRating приводит JSON-значение оценки к целому 1..5.
func numericRating(raw any) (int, bool) {
	var rating int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		rating = int(v)
	case int:
		rating = v
	default:
		return 0, false
	}
	if rating < 1 || rating > 5 {
		return 0, false
	}
	return rating, true
}
