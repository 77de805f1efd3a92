package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// CreateReview сохраняет отзыв одним INSERT и возвращает его UID.
// Ответы гостя пишутся в JSONB как есть, без преобразования значений.
// Статус и производные поля уже вычислены сервисом из того же payload.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (string, error) {
	const op = "storage.CreateReview"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	responsesJSON, err := json.Marshal(review.Responses)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO reviews (hotel_uid, form_uid, guest_name, guest_email,
			      guest_phone, responses, overall_rating, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		review.HotelUID, review.FormUID, review.GuestName, review.GuestEmail,
		review.GuestPhone, responsesJSON, review.OverallRating, review.Status).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

const reviewColumns = `uid, hotel_uid, form_uid, guest_name, guest_email, guest_phone,
			      responses, overall_rating, status, admin_notes, reply_text,
			      is_checked, is_urgent, is_replied, is_deleted, created_at`

func scanReviewRow(scan func(dest ...any) error) (*models.Review, error) {
	r := &models.Review{}
	var guestName, guestEmail, guestPhone, adminNotes, replyText sql.NullString
	var overallRating sql.NullInt64
	var responsesJSON []byte
	if err := scan(&r.UID, &r.HotelUID, &r.FormUID, &guestName, &guestEmail, &guestPhone,
		&responsesJSON, &overallRating, &r.Status, &adminNotes, &replyText,
		&r.IsChecked, &r.IsUrgent, &r.IsReplied, &r.IsDeleted, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(responsesJSON, &r.Responses); err != nil {
		return nil, err
	}
	if guestName.Valid {
		r.GuestName = &guestName.String
	}
	if guestEmail.Valid {
		r.GuestEmail = &guestEmail.String
	}
	if guestPhone.Valid {
		r.GuestPhone = &guestPhone.String
	}
	if adminNotes.Valid {
		r.AdminNotes = &adminNotes.String
	}
	if replyText.Valid {
		r.ReplyText = &replyText.String
	}
	if overallRating.Valid {
		rating := int(overallRating.Int64)
		r.OverallRating = &rating
	}
	return r, nil
}

// GetReview возвращает неудалённый отзыв по UID в рамках отеля.
func (s *Storage) GetReview(ctx context.Context, reviewUID, hotelUID string) (*models.Review, error) {
	const op = "storage.GetReview"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + `
			  FROM reviews
			  WHERE uid = $1 AND hotel_uid = $2 AND is_deleted = FALSE`
	row := s.DB.QueryRowContext(ctx, query, reviewUID, hotelUID)
	r, err := scanReviewRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListReviews возвращает неудалённые отзывы отеля с пагинацией.
func (s *Storage) ListReviews(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Review, error) {
	const op = "storage.ListReviews"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + `
			  FROM reviews
			  WHERE hotel_uid = $1 AND is_deleted = FALSE
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, hotelUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Review
	for rows.Next() {
		r, err := scanReviewRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateReviewStatus меняет статус модерации и заметки администратора.
// Допустимость перехода проверяет сервис, здесь только запись.
func (s *Storage) UpdateReviewStatus(ctx context.Context, reviewUID, hotelUID, status string, notes *string) error {
	const op = "storage.UpdateReviewStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reviews
		      SET status = $1,
			      admin_notes = COALESCE($2, admin_notes),
			      is_checked = TRUE
		      WHERE uid = $3 AND hotel_uid = $4 AND is_deleted = FALSE`
	res, err := s.DB.ExecContext(ctx, query, status, notes, reviewUID, hotelUID)
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

// ReplyReview сохраняет ответ отеля на отзыв.
func (s *Storage) ReplyReview(ctx context.Context, reviewUID, hotelUID, replyText string) error {
	const op = "storage.ReplyReview"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reviews
		      SET reply_text = $1, is_replied = TRUE
		      WHERE uid = $2 AND hotel_uid = $3 AND is_deleted = FALSE`
	res, err := s.DB.ExecContext(ctx, query, replyText, reviewUID, hotelUID)
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

// SoftDeleteReview помечает отзыв удалённым. Физического удаления нет.
func (s *Storage) SoftDeleteReview(ctx context.Context, reviewUID, hotelUID string) error {
	const op = "storage.SoftDeleteReview"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reviews
		      SET is_deleted = TRUE
		      WHERE uid = $1 AND hotel_uid = $2 AND is_deleted = FALSE`
	res, err := s.DB.ExecContext(ctx, query, reviewUID, hotelUID)
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

// SetReviewUrgent меняет флаг срочности отзыва.
func (s *Storage) SetReviewUrgent(ctx context.Context, reviewUID, hotelUID string, isUrgent bool) error {
	const op = "storage.SetReviewUrgent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reviews
		      SET is_urgent = $1
		      WHERE uid = $2 AND hotel_uid = $3 AND is_deleted = FALSE`
	res, err := s.DB.ExecContext(ctx, query, isUrgent, reviewUID, hotelUID)
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
