// Package services реализует отправку почтовых уведомлений из очереди.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/smtp"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// SenderService читает сообщения уведомлений и отправляет письма
// администраторам отелей через SMTP.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{transport: transport, log: log}
}

// HandleMessage обрабатывает одно сообщение из очереди. Ошибка возвращает
// сообщение в очередь на повторную доставку.
func (s *SenderService) HandleMessage(body []byte) error {
	const op = "services.sender.HandleMessage"

	var msg models.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// Нечитаемое сообщение бессмысленно возвращать в очередь.
		s.log.Error("failed to unmarshal notification message",
			slog.String("op", op), sl.Err(err))
		return nil
	}
	if msg.RecipientEmail == "" {
		s.log.Warn("notification message without recipient",
			slog.String("op", op), slog.String("kind", msg.Kind))
		return nil
	}

	subject, text := renderEmail(msg)
	if err := s.sendEmail(msg.RecipientEmail, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("notification email sent",
		slog.String("op", op),
		slog.String("kind", msg.Kind),
		slog.String("recipient", msg.RecipientEmail))
	return nil
}

// renderEmail строит тему и текст письма по виду уведомления.
func renderEmail(msg models.NotificationMessage) (subject, text string) {
	greeting := "Здравствуйте"
	if msg.RecipientName != "" {
		greeting = fmt.Sprintf("Здравствуйте, %s", msg.RecipientName)
	}

	switch msg.Kind {
	case models.NotificationNewReview:
		subject = fmt.Sprintf("Новый отзыв — %s", msg.HotelName)
		text = fmt.Sprintf("%s!\n\nГость оставил новый отзыв для отеля %s.",
			greeting, msg.HotelName)
		if msg.GuestName != nil {
			text += fmt.Sprintf("\nИмя гостя: %s.", *msg.GuestName)
		}
		if msg.OverallRating != nil {
			text += fmt.Sprintf("\nОценка: %d из 5.", *msg.OverallRating)
		}
	case models.NotificationNewContactMessage:
		subject = fmt.Sprintf("Новое сообщение гостя — %s", msg.HotelName)
		text = fmt.Sprintf("%s!\n\nГость отправил сообщение отелю %s:\n\n%s",
			greeting, msg.HotelName, msg.MessageText)
	case models.NotificationPaymentMethodAdded:
		subject = fmt.Sprintf("Способ оплаты добавлен — %s", msg.HotelName)
		text = fmt.Sprintf("%s!\n\nК подписке отеля %s привязан новый способ оплаты.",
			greeting, msg.HotelName)
	default:
		subject = fmt.Sprintf("Уведомление — %s", msg.HotelName)
		text = fmt.Sprintf("%s!\n\nНовое событие в личном кабинете отеля %s.",
			greeting, msg.HotelName)
	}
	return subject, text
}

// sendEmail отправляет одно письмо через SMTP транспорт.
func (s *SenderService) sendEmail(to, subject, text string) error {
	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP: %w", err)
	}
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			s.log.Error("failed to quit SMTP session", sl.Err(quitErr))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		from, to, subject, text)
	if _, err = writer.Write([]byte(message)); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			s.log.Error("failed to close data writer", sl.Err(closeErr))
		}
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
