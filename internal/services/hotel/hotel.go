// Package services реализует регистрацию отелей, обработку событий
// биллинга и административные операции платформы.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

// Ошибки операций с отелями.
var (
	ErrNotFound  = errors.New("not found")
	ErrSlugTaken = errors.New("slug already taken")
)

// HotelRepository описывает контракт хранилища отелей.
type HotelRepository interface {
	CreateHotel(ctx context.Context, hotel models.Hotel) (string, error)
	GetHotel(ctx context.Context, hotelUID string) (*models.Hotel, error)
	GetHotelBySlug(ctx context.Context, slug string) (*models.Hotel, error)
	ListHotels(ctx context.Context, limit, offset int) ([]*models.Hotel, error)
	UpdateHotelActive(ctx context.Context, hotelUID string, isActive bool) error
	UpdateSubscription(ctx context.Context, hotelUID, plan, status string) error
}

// UserRepository нужен для привязки владельца к отелю и смены статуса
// учетных записей администратором платформы.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	SetUserHotel(ctx context.Context, userUID, hotelUID string) error
	UpdateUserStatus(ctx context.Context, userUID, status string) error
}

// Dispatcher описывает диспетчер уведомлений, см. пакет notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification, msg models.NotificationMessage)
}

// HotelService реализует жизненный цикл отеля-арендатора.
type HotelService struct {
	hotels     HotelRepository
	users      UserRepository
	dispatcher Dispatcher
	log        *slog.Logger
}

// NewHotelService создает новый экземпляр HotelService.
func NewHotelService(hotels HotelRepository, users UserRepository, dispatcher Dispatcher, log *slog.Logger) *HotelService {
	return &HotelService{
		hotels:     hotels,
		users:      users,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Register создает отель для владельца и привязывает владельца к нему.
// Новый отель стартует на плане basic в триальном статусе подписки.
func (s *HotelService) Register(ctx context.Context, ownerUID, name, slug string) (*models.Hotel, error) {
	const op = "services.hotel.Register"

	hotel := models.Hotel{
		Name:               name,
		Slug:               slug,
		OwnerUID:           ownerUID,
		SubscriptionPlan:   models.PlanBasic,
		SubscriptionStatus: models.SubscriptionTrial,
		IsActive:           true,
	}
	uid, err := s.hotels.CreateHotel(ctx, hotel)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hotel.UID = uid

	if err := s.users.SetUserHotel(ctx, ownerUID, uid); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &hotel, nil
}

// Read возвращает отель по UID.
func (s *HotelService) Read(ctx context.Context, hotelUID string) (*models.Hotel, error) {
	hotel, err := s.hotels.GetHotel(ctx, hotelUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return hotel, nil
}

// List возвращает все отели платформы. Только для администратора платформы.
func (s *HotelService) List(ctx context.Context, limit, offset int) ([]*models.Hotel, error) {
	return s.hotels.ListHotels(ctx, limit, offset)
}

// SetActive включает или выключает прием отзывов отелем.
func (s *HotelService) SetActive(ctx context.Context, hotelUID string, isActive bool) error {
	if err := s.hotels.UpdateHotelActive(ctx, hotelUID, isActive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// SetUserStatus меняет статус учетной записи. Только для администратора
// платформы; деактивация действует немедленно, включая живые сессии.
func (s *HotelService) SetUserStatus(ctx context.Context, userUID, status string) error {
	if err := s.users.UpdateUserStatus(ctx, userUID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ProcessBillingEvent применяет событие провайдера биллинга к подписке
// отеля. Подпись запроса проверена до вызова.
//
// Неизвестный вид события не считается ошибкой: провайдер добавляет
// новые события без согласования, они логируются и пропускаются.
func (s *HotelService) ProcessBillingEvent(ctx context.Context, event models.DummyBillingEvent) error {
	const op = "services.hotel.ProcessBillingEvent"
	log := s.log.With(slog.String("op", op),
		slog.String("event_type", event.EventType),
		slog.String("hotel_uid", event.HotelUID))

	hotel, err := s.hotels.GetHotel(ctx, event.HotelUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	// План меняется только если событие его несет, иначе сохраняется текущий.
	targetPlan := hotel.SubscriptionPlan
	if event.Plan != "" {
		targetPlan = event.Plan
	}

	switch event.EventType {
	case models.BillingPaymentSucceeded:
		err = s.hotels.UpdateSubscription(ctx, hotel.UID, targetPlan, models.SubscriptionActive)
	case models.BillingPaymentCanceled:
		err = s.hotels.UpdateSubscription(ctx, hotel.UID, targetPlan, models.SubscriptionPastDue)
	case models.BillingSubscriptionCancel:
		err = s.hotels.UpdateSubscription(ctx, hotel.UID, targetPlan, models.SubscriptionCancelled)
	case models.BillingPaymentMethodAdded:
		s.notifyOwner(ctx, hotel, models.NotificationPaymentMethodAdded)
		return nil
	default:
		log.Warn("skipping unknown billing event")
		return nil
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("subscription updated", slog.String("plan", targetPlan))
	return nil
}

// notifyOwner отправляет уведомление владельцу отеля. Ошибка поиска
// получателя логируется и не влияет на обработку события.
func (s *HotelService) notifyOwner(ctx context.Context, hotel *models.Hotel, kind string) {
	const op = "services.hotel.notifyOwner"

	owner, err := s.users.GetUser(ctx, hotel.OwnerUID)
	if err != nil {
		s.log.Error("failed to resolve notification recipient",
			slog.String("op", op), sl.Err(err))
		return
	}
	s.dispatcher.Dispatch(ctx,
		models.Notification{
			RecipientUID: owner.UID,
			Kind:         kind,
			Payload:      map[string]any{"hotel_uid": hotel.UID},
		},
		models.NotificationMessage{
			Kind:           kind,
			RecipientEmail: owner.Email,
			RecipientName:  owner.FirstName,
			HotelName:      hotel.Name,
		})
}
