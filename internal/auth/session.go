package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/feedback-aggregator/internal/cache"
)

// SessionRecord — серверная запись веб-сессии. Хранит копию полей учетной
// записи на момент входа; актуальный статус пользователя перепроверяется
// по базе при каждом запросе.
type SessionRecord struct {
	UserUID   string    `json:"user_uid"`
	Role      string    `json:"role"`
	HotelUID  *string   `json:"hotel_uid,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore описывает хранилище веб-сессий.
type SessionStore interface {
	// Create создает сессию и возвращает её непрозрачный идентификатор.
	Create(ctx context.Context, record SessionRecord) (string, error)
	// Get возвращает запись сессии или false, если сессия не существует
	// или истекла.
	Get(ctx context.Context, sessionID string) (*SessionRecord, bool, error)
	// Destroy удаляет сессию.
	Destroy(ctx context.Context, sessionID string) error
}

// RedisSessionStore хранит сессии в redis с TTL.
type RedisSessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisSessionStore создает хранилище сессий поверх redis.
func NewRedisSessionStore(c *cache.Cache, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{cache: c, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create сохраняет запись сессии под новым случайным идентификатором.
func (s *RedisSessionStore) Create(ctx context.Context, record SessionRecord) (string, error) {
	const op = "auth.SessionStore.Create"
	sessionID := uuid.New().String()
	record.CreatedAt = time.Now().UTC()
	if err := s.cache.Set(ctx, sessionKey(sessionID), record, s.ttl); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sessionID, nil
}

// Get читает запись сессии. Истекшие ключи redis удаляет сам.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*SessionRecord, bool, error) {
	const op = "auth.SessionStore.Get"
	var record SessionRecord
	found, err := s.cache.Get(ctx, sessionKey(sessionID), &record)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, false, nil
	}
	return &record, true, nil
}

// Destroy удаляет сессию из redis.
func (s *RedisSessionStore) Destroy(ctx context.Context, sessionID string) error {
	const op = "auth.SessionStore.Destroy"
	if err := s.cache.Invalidate(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
