// Package repository реализует хранилище данных на основе PostgreSQL
// для пользователей, отелей, форм обратной связи, отзывов и уведомлений.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound возвращается, когда запись не найдена в рамках заданной
// области видимости. Запросы арендных сущностей всегда ограничены отелем,
// поэтому чужая запись неотличима от несуществующей.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists возвращается при нарушении уникальности (email, slug).
var ErrAlreadyExists = errors.New("already exists")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'reviews'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table reviews missing or query error: %w", err)
	}
	return nil
}
