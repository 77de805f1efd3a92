package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(secretKey, tokenTTL)

	hotelUID := "hotel-1"
	hotelSlug := "grand-hotel"

	tests := []struct {
		name   string
		claims CustomClaims
	}{
		{
			name: "администратор платформы без отеля",
			claims: CustomClaims{
				UserUID: "user-1",
				Email:   "admin@example.com",
				Role:    "platform_admin",
				Status:  "active",
			},
		},
		{
			name: "администратор отеля с привязкой",
			claims: CustomClaims{
				UserUID:   "user-2",
				Email:     "owner@example.com",
				Role:      "tenant_admin",
				FirstName: "Иван",
				LastName:  "Петров",
				Status:    "active",
				HotelUID:  &hotelUID,
				HotelSlug: &hotelSlug,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.claims)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.claims.UserUID, claims.UserUID)
			assert.Equal(t, tt.claims.Email, claims.Email)
			assert.Equal(t, tt.claims.Role, claims.Role)
			if tt.claims.HotelUID != nil {
				require.NotNil(t, claims.HotelUID)
				assert.Equal(t, *tt.claims.HotelUID, *claims.HotelUID)
			} else {
				assert.Nil(t, claims.HotelUID)
			}
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(secretKey, tokenTTL)

	validToken, err := maker.GenerateToken(CustomClaims{UserUID: "user-1", Role: "tenant_admin"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "пустой токен",
			token: "",
		},
		{
			name:  "искаженный токен",
			token: "invalid.token.here",
		},
		{
			name:  "истекший токен",
			token: createExpiredToken(t, secretKey),
		},
		{
			name:  "токен с другим ключом",
			token: createTokenWithWrongSecret(t),
		},
		{
			name:  "подмененная подпись",
			token: validToken + "tampered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", 15*time.Minute)
	maker2 := NewJWTMaker("different_secret_key", 15*time.Minute)

	token, err := maker1.GenerateToken(CustomClaims{UserUID: "user-1", Role: "tenant_admin"})
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewJWTMaker(secretKey, -time.Hour)
	token, err := maker.GenerateToken(CustomClaims{UserUID: "user-1", Role: "tenant_admin"})
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewJWTMaker("wrong_secret_key", 15*time.Minute)
	token, err := wrongMaker.GenerateToken(CustomClaims{UserUID: "user-1", Role: "tenant_admin"})
	require.NoError(t, err)
	return token
}

func TestJWTMaker_TokenExpiration(t *testing.T) {
	secretKey := "test_secret_key"
	shortTTL := 100 * time.Millisecond
	maker := NewJWTMaker(secretKey, shortTTL)

	token, err := maker.GenerateToken(CustomClaims{UserUID: "user-1", Role: "tenant_admin"})
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)

	time.Sleep(150 * time.Millisecond)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}
