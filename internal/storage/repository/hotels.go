package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// CreateHotel сохраняет новый отель и возвращает его UID.
func (s *Storage) CreateHotel(ctx context.Context, hotel models.Hotel) (string, error) {
	const op = "storage.CreateHotel"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO hotels (name, slug, owner_uid, subscription_plan,
			      subscription_status, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		hotel.Name, hotel.Slug, hotel.OwnerUID, hotel.SubscriptionPlan,
		hotel.SubscriptionStatus, hotel.IsActive).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

const hotelColumns = `uid, name, slug, owner_uid, subscription_plan,
			      subscription_status, is_active, created_at`

func scanHotel(row *sql.Row) (*models.Hotel, error) {
	h := &models.Hotel{}
	if err := row.Scan(&h.UID, &h.Name, &h.Slug, &h.OwnerUID, &h.SubscriptionPlan,
		&h.SubscriptionStatus, &h.IsActive, &h.CreatedAt); err != nil {
		return nil, err
	}
	return h, nil
}

// GetHotel возвращает отель по UID.
func (s *Storage) GetHotel(ctx context.Context, hotelUID string) (*models.Hotel, error) {
	const op = "storage.GetHotel"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE uid = $1`
	h, err := scanHotel(s.DB.QueryRowContext(ctx, query, hotelUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

// GetHotelBySlug возвращает отель по его URL-идентификатору.
func (s *Storage) GetHotelBySlug(ctx context.Context, slug string) (*models.Hotel, error) {
	const op = "storage.GetHotelBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE slug = $1`
	h, err := scanHotel(s.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

// ListHotels возвращает список всех отелей с пагинацией.
// Используется только администратором платформы.
func (s *Storage) ListHotels(ctx context.Context, limit, offset int) ([]*models.Hotel, error) {
	const op = "storage.ListHotels"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + hotelColumns + `
			  FROM hotels
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Hotel
	for rows.Next() {
		h := &models.Hotel{}
		if err = rows.Scan(&h.UID, &h.Name, &h.Slug, &h.OwnerUID, &h.SubscriptionPlan,
			&h.SubscriptionStatus, &h.IsActive, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateHotelActive включает или выключает прием отзывов отелем.
func (s *Storage) UpdateHotelActive(ctx context.Context, hotelUID string, isActive bool) error {
	const op = "storage.UpdateHotelActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE hotels SET is_active = $1 WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, isActive, hotelUID)
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

// UpdateSubscription меняет статус подписки отеля. Вызывается обработчиком
// вебхука биллинга после проверки подписи и администратором платформы.
func (s *Storage) UpdateSubscription(ctx context.Context, hotelUID, plan, status string) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE hotels
		      SET subscription_plan = $1, subscription_status = $2
		      WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, plan, status, hotelUID)
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
