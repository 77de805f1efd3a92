// Package services реализует диспетчер уведомлений: запись в ящик
// получателя и публикацию сообщения в очередь почтовой рассылки.
package services

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	"github.com/magabrotheeeer/feedback-aggregator/internal/rabbitmq"
)

// NotificationRepository описывает контракт хранилища уведомлений.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (string, error)
	ListNotifications(ctx context.Context, recipientUID string, limit, offset int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationUID, recipientUID string) error
}

// Publisher описывает публикацию сообщения в обменник.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// AMQPPublisher публикует сообщения через канал RabbitMQ.
type AMQPPublisher struct {
	ch *amqp.Channel
}

// NewAMQPPublisher создает публикатора поверх открытого канала.
func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

// Publish отправляет сообщение в обменник.
func (p *AMQPPublisher) Publish(exchange, routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.ch, exchange, routingKey, message)
}

// NotificationService создает уведомления и рассылает их по очереди.
//
// Доставка подчинена основному действию: ошибка записи в ящик или
// публикации логируется, но наружу не возвращается — создание отзыва
// не должно падать из-за недоступного брокера.
type NotificationService struct {
	repo      NotificationRepository
	publisher Publisher
	log       *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo NotificationRepository, publisher Publisher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Dispatch сохраняет уведомление получателю и публикует почтовое сообщение.
// Никогда не возвращает ошибку вызывающему — fire-and-forget.
func (s *NotificationService) Dispatch(ctx context.Context, n models.Notification, msg models.NotificationMessage) {
	const op = "services.notification.Dispatch"
	log := s.log.With(slog.String("op", op), slog.String("kind", n.Kind))

	if _, err := s.repo.CreateNotification(ctx, n); err != nil {
		log.Error("failed to store notification", sl.Err(err))
	}
	if err := s.publisher.Publish(rabbitmq.NotificationsExchange, rabbitmq.EmailRoutingKey, msg); err != nil {
		log.Error("failed to publish notification message", sl.Err(err))
	}
}

// List возвращает уведомления получателя.
func (s *NotificationService) List(ctx context.Context, recipientUID string, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListNotifications(ctx, recipientUID, limit, offset)
}

// MarkRead помечает уведомление прочитанным. Область видимости —
// только собственные уведомления получателя.
func (s *NotificationService) MarkRead(ctx context.Context, notificationUID, recipientUID string) error {
	return s.repo.MarkNotificationRead(ctx, notificationUID, recipientUID)
}
