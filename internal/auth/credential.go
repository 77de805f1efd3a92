// Package auth содержит типы учетных данных запроса и хранилище
// серверных веб-сессий.
//
// Запрос несет ровно один вид учетных данных: cookie веб-сессии или
// bearer-токен мобильного клиента. Вместо последовательного "попробовать
// одно, потом другое" внутри сервиса вид данных фиксируется явным типом,
// а разбор запроса выполняется в одном месте — ExtractCredential.
package auth

import (
	"net/http"
	"strings"
)

// SessionCookieName — имя cookie веб-сессии.
const SessionCookieName = "session_id"

// Credential — учетные данные, извлеченные из запроса.
// Реализации: SessionCookie и BearerToken.
type Credential interface {
	credential()
}

// SessionCookie — непрозрачный идентификатор серверной веб-сессии.
type SessionCookie struct {
	ID string
}

// BearerToken — подписанный токен из заголовка Authorization.
type BearerToken struct {
	Token string
}

func (SessionCookie) credential() {}
func (BearerToken) credential()   {}

// ExtractCredential извлекает учетные данные из запроса.
// Cookie имеет приоритет над заголовком: веб-клиент может унести
// в запросе и то и другое, источником истины считается сессия.
// Возвращает nil, если запрос не несет учетных данных.
func ExtractCredential(r *http.Request) Credential {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return SessionCookie{ID: c.Value}
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != "" {
			return BearerToken{Token: token}
		}
	}
	return nil
}
