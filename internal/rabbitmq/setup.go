package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Обменник и очередь почтовых уведомлений администраторам отелей.
const (
	NotificationsExchange = "notifications"
	EmailQueue            = "notifications.email"
	EmailRoutingKey       = "email"

	// EmailPrefetch — лимит одновременно обрабатываемых писем на потребителя.
	EmailPrefetch = 10
)

// SetupChannel открывает канал, объявляет обменник и очередь почтовых
// уведомлений и привязывает их.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(EmailPrefetch, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		EmailQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.QueueBind(EmailQueue, EmailRoutingKey, NotificationsExchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
