package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// CreateNotification сохраняет уведомление в ящик получателя.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (string, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	payloadJSON, err := json.Marshal(n.Payload)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO notifications (recipient_uid, kind, payload)
			  VALUES ($1, $2, $3)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		n.RecipientUID, n.Kind, payloadJSON).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// ListNotifications возвращает уведомления получателя, новые первыми.
func (s *Storage) ListNotifications(ctx context.Context, recipientUID string, limit, offset int) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, recipient_uid, kind, payload, is_read, created_at
			  FROM notifications
			  WHERE recipient_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, recipientUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var payloadJSON []byte
		if err = rows.Scan(&n.UID, &n.RecipientUID, &n.Kind, &payloadJSON,
			&n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(payloadJSON, &n.Payload); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkNotificationRead помечает уведомление прочитанным.
// Запрос ограничен получателем: чужое уведомление неотличимо от несуществующего.
func (s *Storage) MarkNotificationRead(ctx context.Context, notificationUID, recipientUID string) error {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications
		      SET is_read = TRUE
		      WHERE uid = $1 AND recipient_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, notificationUID, recipientUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
