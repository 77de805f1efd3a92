// Package jwt реализует генерацию и парсинг JWT токенов мобильных сессий.
//
// CustomClaims расширяет стандартные claims JWT данными учетной записи
// и привязкой к отелю. Токен подписывается HMAC-SHA256 и живет фиксированные
// 30 дней; механизма обновления нет — истёкший токен требует нового входа.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
//
// Статус в claims — снимок на момент выдачи. Актуальный статус
// перепроверяется по базе при каждом запросе, токен не является
// источником истины.
type CustomClaims struct {
	UserUID              string  `json:"user_uid"`
	Email                string  `json:"email"`
	Role                 string  `json:"role"`
	FirstName            string  `json:"first_name"`
	LastName             string  `json:"last_name"`
	Status               string  `json:"status"`
	HotelUID             *string `json:"hotel_uid,omitempty"`
	HotelSlug            *string `json:"hotel_slug,omitempty"`
	HotelName            *string `json:"hotel_name,omitempty"`
	jwt.RegisteredClaims         // Встроенные стандартные claims (ExpiresAt, IssuedAt и пр.)
}

// GenerateToken создает JWT токен для пользователя, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(claims CustomClaims) (string, error) {
	const op = "jwt.GenerateToken"
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает CustomClaims, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
