package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

func tenantAdmin(hotelUID string) *models.User {
	return &models.User{
		UID:      "user-1",
		Role:     models.RoleTenantAdmin,
		Status:   models.StatusActive,
		HotelUID: &hotelUID,
	}
}

func platformAdmin() *models.User {
	return &models.User{
		UID:    "admin-1",
		Role:   models.RolePlatformAdmin,
		Status: models.StatusActive,
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name             string
		user             *models.User
		requiredRole     string
		resourceHotelUID string
		wantErr          bool
	}{
		{
			name:             "админ отеля получает доступ к своему отелю",
			user:             tenantAdmin("hotel-1"),
			requiredRole:     models.RoleTenantAdmin,
			resourceHotelUID: "hotel-1",
			wantErr:          false,
		},
		{
			name:             "кросс-арендный доступ запрещен",
			user:             tenantAdmin("hotel-1"),
			requiredRole:     models.RoleTenantAdmin,
			resourceHotelUID: "hotel-2",
			wantErr:          true,
		},
		{
			name:             "ресурс без привязки к отелю доступен админу отеля",
			user:             tenantAdmin("hotel-1"),
			requiredRole:     models.RoleTenantAdmin,
			resourceHotelUID: "",
			wantErr:          false,
		},
		{
			name:         "админ отеля без отеля не проходит",
			user:         &models.User{UID: "user-2", Role: models.RoleTenantAdmin},
			requiredRole: models.RoleTenantAdmin,
			wantErr:      true,
		},
		{
			name:         "админ платформы проходит проверку платформенной роли",
			user:         platformAdmin(),
			requiredRole: models.RolePlatformAdmin,
			wantErr:      false,
		},
		{
			name:             "админ отеля не проходит платформенную проверку",
			user:             tenantAdmin("hotel-1"),
			requiredRole:     models.RolePlatformAdmin,
			resourceHotelUID: "",
			wantErr:          true,
		},
		{
			name:             "админ платформы не проходит арендную проверку как tenant_admin",
			user:             platformAdmin(),
			requiredRole:     models.RoleTenantAdmin,
			resourceHotelUID: "hotel-1",
			wantErr:          true,
		},
		{
			name:         "nil пользователь всегда запрещен",
			user:         nil,
			requiredRole: models.RoleTenantAdmin,
			wantErr:      true,
		},
		{
			name:         "неизвестная требуемая роль запрещена",
			user:         platformAdmin(),
			requiredRole: "superuser",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.user, tt.requiredRole, tt.resourceHotelUID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForbidden)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthorizeOwnership(t *testing.T) {
	tests := []struct {
		name             string
		user             *models.User
		resourceHotelUID string
		wantErr          bool
	}{
		{
			name:             "свой ресурс разрешен",
			user:             tenantAdmin("hotel-1"),
			resourceHotelUID: "hotel-1",
			wantErr:          false,
		},
		{
			name:             "чужой ресурс запрещен",
			user:             tenantAdmin("hotel-1"),
			resourceHotelUID: "hotel-2",
			wantErr:          true,
		},
		{
			name:             "пользователь без отеля запрещен",
			user:             platformAdmin(),
			resourceHotelUID: "hotel-1",
			wantErr:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeOwnership(tt.user, tt.resourceHotelUID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForbidden)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
