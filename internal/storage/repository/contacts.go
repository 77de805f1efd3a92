package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// CreateContactMessage сохраняет сообщение гостя отелю.
func (s *Storage) CreateContactMessage(ctx context.Context, msg models.ContactMessage) (string, error) {
	const op = "storage.CreateContactMessage"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO contact_messages (hotel_uid, name, email, text)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		msg.HotelUID, msg.Name, msg.Email, msg.Text).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}
