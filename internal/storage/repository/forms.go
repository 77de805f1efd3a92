package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// CreateForm сохраняет новую форму и возвращает её UID.
// Поля формы хранятся как JSONB с сохранением порядка.
func (s *Storage) CreateForm(ctx context.Context, form models.Form) (string, error) {
	const op = "storage.CreateForm"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	fieldsJSON, err := json.Marshal(form.Fields)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO forms (hotel_uid, title, fields, is_active, is_public)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		form.HotelUID, form.Title, fieldsJSON, form.IsActive, form.IsPublic).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// UpdateForm обновляет форму в рамках отеля. Возвращает ErrNotFound,
// если формы с таким UID у отеля нет.
func (s *Storage) UpdateForm(ctx context.Context, form models.Form) error {
	const op = "storage.UpdateForm"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	fieldsJSON, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE forms
		      SET title = $1, fields = $2, is_active = $3, is_public = $4,
			      updated_at = NOW()
		      WHERE uid = $5 AND hotel_uid = $6`
	res, err := s.DB.ExecContext(ctx, query,
		form.Title, fieldsJSON, form.IsActive, form.IsPublic, form.UID, form.HotelUID)
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

const formColumns = `uid, hotel_uid, title, fields, is_active, is_public,
			      created_at, updated_at`

func scanForm(row *sql.Row) (*models.Form, error) {
	f := &models.Form{}
	var fieldsJSON []byte
	if err := row.Scan(&f.UID, &f.HotelUID, &f.Title, &fieldsJSON,
		&f.IsActive, &f.IsPublic, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fieldsJSON, &f.Fields); err != nil {
		return nil, err
	}
	return f, nil
}

// GetForm возвращает форму по UID в рамках отеля.
func (s *Storage) GetForm(ctx context.Context, formUID, hotelUID string) (*models.Form, error) {
	const op = "storage.GetForm"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + formColumns + `
			  FROM forms
			  WHERE uid = $1 AND hotel_uid = $2`
	f, err := scanForm(s.DB.QueryRowContext(ctx, query, formUID, hotelUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// GetPublicForm возвращает активную публичную форму для гостевой отправки.
func (s *Storage) GetPublicForm(ctx context.Context, formUID, hotelUID string) (*models.Form, error) {
	const op = "storage.GetPublicForm"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + formColumns + `
			  FROM forms
			  WHERE uid = $1 AND hotel_uid = $2 AND is_active = TRUE AND is_public = TRUE`
	f, err := scanForm(s.DB.QueryRowContext(ctx, query, formUID, hotelUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// ListForms возвращает формы отеля.
func (s *Storage) ListForms(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Form, error) {
	const op = "storage.ListForms"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + formColumns + `
			  FROM forms
			  WHERE hotel_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, hotelUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Form
	for rows.Next() {
		f := &models.Form{}
		var fieldsJSON []byte
		if err = rows.Scan(&f.UID, &f.HotelUID, &f.Title, &fieldsJSON,
			&f.IsActive, &f.IsPublic, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(fieldsJSON, &f.Fields); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
