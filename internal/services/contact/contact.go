// Package services реализует прием публичных сообщений гостей отелю.
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

// ErrNotFound возвращается для несуществующего или неактивного отеля.
var ErrNotFound = errors.New("not found")

// ContactRepository описывает контракт хранилища сообщений.
type ContactRepository interface {
	CreateContactMessage(ctx context.Context, msg models.ContactMessage) (string, error)
}

// HotelRepository нужен для разрешения отеля по slug.
type HotelRepository interface {
	GetHotelBySlug(ctx context.Context, slug string) (*models.Hotel, error)
}

// UserRepository нужен для поиска получателя уведомления.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Dispatcher описывает диспетчер уведомлений, см. пакет notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification, msg models.NotificationMessage)
}

// ContactService принимает сообщения гостей и уведомляет владельца отеля.
type ContactService struct {
	contacts   ContactRepository
	hotels     HotelRepository
	users      UserRepository
	dispatcher Dispatcher
	log        *slog.Logger
}

// NewContactService создает новый экземпляр ContactService.
func NewContactService(contacts ContactRepository, hotels HotelRepository,
	users UserRepository, dispatcher Dispatcher, log *slog.Logger) *ContactService {
	return &ContactService{
		contacts:   contacts,
		hotels:     hotels,
		users:      users,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Submit сохраняет сообщение гостя отелю. Неактивный отель скрывается
// как несуществующий.
func (s *ContactService) Submit(ctx context.Context, hotelSlug string, req models.DummyContactMessage) (string, error) {
	const op = "services.contact.Submit"

	hotel, err := s.hotels.GetHotelBySlug(ctx, hotelSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !hotel.IsActive {
		return "", ErrNotFound
	}

	uid, err := s.contacts.CreateContactMessage(ctx, models.ContactMessage{
		HotelUID: hotel.UID,
		Name:     req.Name,
		Email:    req.Email,
		Text:     req.Text,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.notifyOwner(ctx, hotel, req)

	return uid, nil
}

func (s *ContactService) notifyOwner(ctx context.Context, hotel *models.Hotel, req models.DummyContactMessage) {
	const op = "services.contact.notifyOwner"

	owner, err := s.users.GetUser(ctx, hotel.OwnerUID)
	if err != nil {
		s.log.Error("failed to resolve notification recipient",
			slog.String("op", op), sl.Err(err))
		return
	}
	s.dispatcher.Dispatch(ctx,
		models.Notification{
			RecipientUID: owner.UID,
			Kind:         models.NotificationNewContactMessage,
			Payload: map[string]any{
				"hotel_uid":  hotel.UID,
				"guest_name": req.Name,
			},
		},
		models.NotificationMessage{
			Kind:           models.NotificationNewContactMessage,
			RecipientEmail: owner.Email,
			RecipientName:  owner.FirstName,
			HotelName:      hotel.Name,
			MessageText:    req.Text,
		})
}
