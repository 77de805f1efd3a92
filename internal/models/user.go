// Package models содержит доменные структуры системы сбора отзывов:
// пользователей, отели, формы, отзывы и уведомления.
package models

import "time"

// Роли пользователей.
const (
	// RolePlatformAdmin — оператор платформы, видит все отели.
	RolePlatformAdmin = "platform_admin"
	// RoleTenantAdmin — администратор отеля, видит только свой отель.
	RoleTenantAdmin = "tenant_admin"
)

// Статусы учетной записи. Пользователи не удаляются физически,
// статус deleted — мягкое удаление.
const (
	StatusActive      = "active"
	StatusDeactivated = "deactivated"
	StatusDeleted     = "deleted"
)

// User представляет учетную запись администратора (платформы или отеля).
type User struct {
	UID           string     // Уникальный идентификатор пользователя
	Email         string     // Электронная почта (уникальная)
	PasswordHash  string     // Хэш пароля пользователя
	FirstName     string     // Имя
	LastName      string     // Фамилия
	Role          string     // Роль: platform_admin или tenant_admin
	Status        string     // Статус учетной записи
	EmailVerified bool       // Подтверждена ли почта
	HotelUID      *string    // Привязка к отелю, nil для platform_admin
	LastLogin     *time.Time // Время последнего входа по паролю
	CreatedAt     time.Time
}
