// Package access реализует политику доступа по роли и принадлежности к отелю.
//
// Политика не хранит состояния: решение — чистая функция от пользователя
// и запрошенного ресурса, вычисляется на каждый запрос. Привязка к отелю
// берётся только из аутентифицированной учетной записи, claim'ам клиента
// сверх этого не доверяем.
package access

import (
	"errors"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// ErrForbidden возвращается при любом отказе политики. Текст един для всех
// причин, чтобы по ответу нельзя было отличить чужой ресурс от несуществующего.
var ErrForbidden = errors.New("forbidden")

// Authorize решает, может ли пользователь выполнить действие, требующее роли
// requiredRole, над ресурсом отеля resourceHotelUID.
//
// Пустой resourceHotelUID означает ресурс без привязки к отелю.
// Для tenant_admin кросс-арендный доступ запрещён всегда; platform_admin
// ограничен только требованием роли.
func Authorize(user *models.User, requiredRole, resourceHotelUID string) error {
	if user == nil {
		return ErrForbidden
	}

	switch requiredRole {
	case models.RolePlatformAdmin:
		if user.Role != models.RolePlatformAdmin {
			return ErrForbidden
		}
		return nil
	case models.RoleTenantAdmin:
		if user.Role != models.RoleTenantAdmin {
			return ErrForbidden
		}
		if user.HotelUID == nil {
			return ErrForbidden
		}
		if resourceHotelUID != "" && resourceHotelUID != *user.HotelUID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// AuthorizeOwnership проверяет, что ресурс принадлежит отелю пользователя.
// Используется для конкретных сущностей (отзыв, форма), когда отель ресурса
// уже прочитан из хранилища в рамках текущего запроса.
func AuthorizeOwnership(user *models.User, resourceHotelUID string) error {
	if user == nil || user.HotelUID == nil {
		return ErrForbidden
	}
	if resourceHotelUID != *user.HotelUID {
		return ErrForbidden
	}
	return nil
}
