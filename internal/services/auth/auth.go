// Package services содержит логику бизнес-уровня для регистрации,
// входа и проверки учетных данных запроса.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/feedback-aggregator/internal/auth"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/jwt"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/password"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

// Ошибки аутентификации. Каждая причина отказа различима для вызывающего
// кода: ErrEmailNotVerified требует повторного подтверждения почты,
// а не повторного входа.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrAccountDeleted     = errors.New("account deleted")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User, verificationToken string) (string, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// UpdateLastLogin фиксирует время входа по паролю.
	UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error
	// VerifyEmailByToken подтверждает почту по одноразовому токену.
	VerifyEmailByToken(ctx context.Context, token string) error
}

// HotelRepository нужен для заполнения привязки к отелю в claims токена.
type HotelRepository interface {
	GetHotel(ctx context.Context, hotelUID string) (*models.Hotel, error)
}

// AuthService отвечает за регистрацию, вход и разрешение учетных данных
// запроса в пользователя.
type AuthService struct {
	users                UserRepository
	hotels               HotelRepository
	sessions             auth.SessionStore
	jwtMaker             jwt.Maker
	requireVerifiedEmail bool
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, hotels HotelRepository, sessions auth.SessionStore,
	jwtMaker jwt.Maker, requireVerifiedEmail bool) *AuthService {
	return &AuthService{
		users:                users,
		hotels:               hotels,
		sessions:             sessions,
		jwtMaker:             jwtMaker,
		requireVerifiedEmail: requireVerifiedEmail,
	}
}

// Register создает нового администратора отеля с хэшированием пароля.
// Возвращает UID пользователя и одноразовый токен подтверждения почты.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, firstName, lastName string) (string, string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", "", err
	}
	user := models.User{
		Email:         email,
		PasswordHash:  hashed,
		FirstName:     firstName,
		LastName:      lastName,
		Role:          models.RoleTenantAdmin, // дефолтная роль при регистрации
		Status:        models.StatusActive,
		EmailVerified: false,
	}
	verificationToken := uuid.New().String()
	uid, err := s.users.RegisterUser(ctx, user, verificationToken)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", "", ErrEmailTaken
		}
		return "", "", err
	}
	return uid, verificationToken, nil
}

// LoginResult — результат успешного входа: токен для мобильного клиента
// и идентификатор серверной веб-сессии для cookie.
type LoginResult struct {
	Token     string
	SessionID string
	User      *models.User
}

// Login проверяет пароль пользователя, обновляет last_login и выдает
// обе формы учетных данных. Обновление last_login происходит только здесь,
// не на каждом аутентифицированном запросе.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.checkAccountUsable(user); err != nil {
		return nil, err
	}

	// last_login пишется до выдачи учетных данных: при ошибке записи
	// вход завершается без осиротевшей сессии в redis.
	if err := s.users.UpdateLastLogin(ctx, user.UID, time.Now().UTC()); err != nil {
		return nil, err
	}

	claims := jwt.CustomClaims{
		UserUID:   user.UID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Status:    user.Status,
	}
	if user.HotelUID != nil {
		hotel, err := s.hotels.GetHotel(ctx, *user.HotelUID)
		if err != nil {
			return nil, err
		}
		claims.HotelUID = &hotel.UID
		claims.HotelSlug = &hotel.Slug
		claims.HotelName = &hotel.Name
	}

	token, err := s.jwtMaker.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.Create(ctx, auth.SessionRecord{
		UserUID:  user.UID,
		Role:     user.Role,
		HotelUID: user.HotelUID,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, SessionID: sessionID, User: user}, nil
}

// Resolve разрешает учетные данные запроса в пользователя.
//
// Каким бы ни был источник (сессия или токен), пользователь перечитывается
// из хранилища и его текущий статус проверяется заново: деактивированная
// учетная запись отклоняется даже с формально валидным токеном.
func (s *AuthService) Resolve(ctx context.Context, cred auth.Credential) (*models.User, error) {
	var userUID string

	switch c := cred.(type) {
	case auth.SessionCookie:
		record, found, err := s.sessions.Get(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrUnauthenticated
		}
		userUID = record.UserUID
	case auth.BearerToken:
		claims, err := s.jwtMaker.ParseToken(c.Token)
		if err != nil {
			return nil, ErrUnauthenticated
		}
		userUID = claims.UserUID
	default:
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if err := s.checkAccountUsable(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout уничтожает веб-сессию. Bearer-токены не отзываются: их срок
// фиксирован, а статус учетной записи проверяется на каждом запросе.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

// VerifyEmail подтверждает почту по одноразовому токену из письма.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if err := s.users.VerifyEmailByToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return err
	}
	return nil
}

func (s *AuthService) checkAccountUsable(user *models.User) error {
	switch user.Status {
	case models.StatusDeleted:
		return ErrAccountDeleted
	case models.StatusDeactivated:
		return ErrAccountDeactivated
	}
	if s.requireVerifiedEmail && !user.EmailVerified {
		return ErrEmailNotVerified
	}
	return nil
}
