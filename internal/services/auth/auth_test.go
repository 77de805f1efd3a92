package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedback-aggregator/internal/auth"
	customjwt "github.com/magabrotheeeer/feedback-aggregator/internal/lib/jwt"
	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/password"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	services "github.com/magabrotheeeer/feedback-aggregator/internal/services/auth"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User, verificationToken string) (string, error) {
	args := m.Called(ctx, user, verificationToken)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error {
	args := m.Called(ctx, userUID, at)
	return args.Error(0)
}

func (m *UserRepoMock) VerifyEmailByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// Мок для HotelRepository
type HotelRepoMock struct {
	mock.Mock
}

func (m *HotelRepoMock) GetHotel(ctx context.Context, hotelUID string) (*models.Hotel, error) {
	args := m.Called(ctx, hotelUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}

// Мок для auth.SessionStore
type SessionStoreMock struct {
	mock.Mock
}

func (m *SessionStoreMock) Create(ctx context.Context, record auth.SessionRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *SessionStoreMock) Get(ctx context.Context, sessionID string) (*auth.SessionRecord, bool, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*auth.SessionRecord), args.Bool(1), args.Error(2)
}

func (m *SessionStoreMock) Destroy(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(claims customjwt.CustomClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func activeUser(t *testing.T, rawPassword string) *models.User {
	t.Helper()
	hash, err := password.GetHash(rawPassword)
	require.NoError(t, err)
	return &models.User{
		UID:           "user-1",
		Email:         "owner@hotel.example",
		PasswordHash:  hash,
		FirstName:     "Anna",
		LastName:      "Smirnova",
		Role:          models.RoleTenantAdmin,
		Status:        models.StatusActive,
		EmailVerified: true,
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(t *testing.T, u *UserRepoMock, h *HotelRepoMock, s *SessionStoreMock, j *JwtMakerMock)
		wantErr    error
	}{
		{
			name:     "успешный вход обновляет last_login и создает сессию",
			email:    "owner@hotel.example",
			password: "correct-password",
			setupMocks: func(t *testing.T, u *UserRepoMock, _ *HotelRepoMock, s *SessionStoreMock, j *JwtMakerMock) {
				u.On("GetUserByEmail", mock.Anything, "owner@hotel.example").
					Return(activeUser(t, "correct-password"), nil)
				j.On("GenerateToken", mock.AnythingOfType("jwt.CustomClaims")).
					Return("signed-token", nil)
				s.On("Create", mock.Anything, mock.AnythingOfType("auth.SessionRecord")).
					Return("session-1", nil)
				u.On("UpdateLastLogin", mock.Anything, "user-1", mock.AnythingOfType("time.Time")).
					Return(nil)
			},
		},
		{
			name:     "неверный пароль",
			email:    "owner@hotel.example",
			password: "wrong-password",
			setupMocks: func(t *testing.T, u *UserRepoMock, _ *HotelRepoMock, _ *SessionStoreMock, _ *JwtMakerMock) {
				u.On("GetUserByEmail", mock.Anything, "owner@hotel.example").
					Return(activeUser(t, "correct-password"), nil)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "несуществующий email неотличим от неверного пароля",
			email:    "ghost@hotel.example",
			password: "any",
			setupMocks: func(_ *testing.T, u *UserRepoMock, _ *HotelRepoMock, _ *SessionStoreMock, _ *JwtMakerMock) {
				u.On("GetUserByEmail", mock.Anything, "ghost@hotel.example").
					Return(nil, repository.ErrNotFound)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "деактивированная учетная запись не входит даже с верным паролем",
			email:    "owner@hotel.example",
			password: "correct-password",
			setupMocks: func(t *testing.T, u *UserRepoMock, _ *HotelRepoMock, _ *SessionStoreMock, _ *JwtMakerMock) {
				user := activeUser(t, "correct-password")
				user.Status = models.StatusDeactivated
				u.On("GetUserByEmail", mock.Anything, "owner@hotel.example").
					Return(user, nil)
			},
			wantErr: services.ErrAccountDeactivated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			hotels := new(HotelRepoMock)
			sessions := new(SessionStoreMock)
			maker := new(JwtMakerMock)
			tt.setupMocks(t, users, hotels, sessions, maker)

			svc := services.NewAuthService(users, hotels, sessions, maker, false)
			result, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "signed-token", result.Token)
				assert.Equal(t, "session-1", result.SessionID)
				users.AssertCalled(t, "UpdateLastLogin", mock.Anything, "user-1", mock.AnythingOfType("time.Time"))
			}
			users.AssertExpectations(t)
			sessions.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_LastLoginFailureLeavesNoSession(t *testing.T) {
	users := new(UserRepoMock)
	hotels := new(HotelRepoMock)
	sessions := new(SessionStoreMock)
	maker := new(JwtMakerMock)

	users.On("GetUserByEmail", mock.Anything, "owner@hotel.example").
		Return(activeUser(t, "correct-password"), nil)
	users.On("UpdateLastLogin", mock.Anything, "user-1", mock.AnythingOfType("time.Time")).
		Return(errors.New("storage unavailable"))

	svc := services.NewAuthService(users, hotels, sessions, maker, false)
	result, err := svc.Login(context.Background(), "owner@hotel.example", "correct-password")

	require.Error(t, err)
	assert.Nil(t, result)
	// Учетные данные не выдаются, осиротевшая сессия не остается в redis
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	maker.AssertNotCalled(t, "GenerateToken", mock.Anything)
	users.AssertExpectations(t)
}

func TestAuthService_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		credential auth.Credential
		verifyReq  bool
		setupMocks func(t *testing.T, u *UserRepoMock, s *SessionStoreMock, j *JwtMakerMock)
		wantErr    error
	}{
		{
			name:       "валидная веб-сессия",
			credential: auth.SessionCookie{ID: "session-1"},
			setupMocks: func(t *testing.T, u *UserRepoMock, s *SessionStoreMock, _ *JwtMakerMock) {
				s.On("Get", mock.Anything, "session-1").
					Return(&auth.SessionRecord{UserUID: "user-1"}, true, nil)
				u.On("GetUser", mock.Anything, "user-1").
					Return(activeUser(t, "pw"), nil)
			},
		},
		{
			name:       "валидный bearer-токен",
			credential: auth.BearerToken{Token: "good-token"},
			setupMocks: func(t *testing.T, u *UserRepoMock, _ *SessionStoreMock, j *JwtMakerMock) {
				j.On("ParseToken", "good-token").
					Return(&customjwt.CustomClaims{UserUID: "user-1"}, nil)
				u.On("GetUser", mock.Anything, "user-1").
					Return(activeUser(t, "pw"), nil)
			},
		},
		{
			name:       "просроченный или поддельный токен",
			credential: auth.BearerToken{Token: "bad-token"},
			setupMocks: func(_ *testing.T, _ *UserRepoMock, _ *SessionStoreMock, j *JwtMakerMock) {
				j.On("ParseToken", "bad-token").
					Return(nil, errors.New("token is expired"))
			},
			wantErr: services.ErrUnauthenticated,
		},
		{
			name:       "несуществующая сессия",
			credential: auth.SessionCookie{ID: "stale"},
			setupMocks: func(_ *testing.T, _ *UserRepoMock, s *SessionStoreMock, _ *JwtMakerMock) {
				s.On("Get", mock.Anything, "stale").Return(nil, false, nil)
			},
			wantErr: services.ErrUnauthenticated,
		},
		{
			name:       "деактивированный пользователь с валидным токеном отклоняется",
			credential: auth.BearerToken{Token: "good-token"},
			setupMocks: func(t *testing.T, u *UserRepoMock, _ *SessionStoreMock, j *JwtMakerMock) {
				j.On("ParseToken", "good-token").
					Return(&customjwt.CustomClaims{UserUID: "user-1", Status: models.StatusActive}, nil)
				user := activeUser(t, "pw")
				user.Status = models.StatusDeactivated
				u.On("GetUser", mock.Anything, "user-1").Return(user, nil)
			},
			wantErr: services.ErrAccountDeactivated,
		},
		{
			name:       "удаленный пользователь с живой сессией отклоняется",
			credential: auth.SessionCookie{ID: "session-1"},
			setupMocks: func(t *testing.T, u *UserRepoMock, s *SessionStoreMock, _ *JwtMakerMock) {
				s.On("Get", mock.Anything, "session-1").
					Return(&auth.SessionRecord{UserUID: "user-1"}, true, nil)
				user := activeUser(t, "pw")
				user.Status = models.StatusDeleted
				u.On("GetUser", mock.Anything, "user-1").Return(user, nil)
			},
			wantErr: services.ErrAccountDeleted,
		},
		{
			name:       "неподтвержденная почта при включенном требовании",
			credential: auth.BearerToken{Token: "good-token"},
			verifyReq:  true,
			setupMocks: func(t *testing.T, u *UserRepoMock, _ *SessionStoreMock, j *JwtMakerMock) {
				j.On("ParseToken", "good-token").
					Return(&customjwt.CustomClaims{UserUID: "user-1"}, nil)
				user := activeUser(t, "pw")
				user.EmailVerified = false
				u.On("GetUser", mock.Anything, "user-1").Return(user, nil)
			},
			wantErr: services.ErrEmailNotVerified,
		},
		{
			name:       "отсутствие учетных данных",
			credential: nil,
			setupMocks: func(_ *testing.T, _ *UserRepoMock, _ *SessionStoreMock, _ *JwtMakerMock) {},
			wantErr:    services.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			hotels := new(HotelRepoMock)
			sessions := new(SessionStoreMock)
			maker := new(JwtMakerMock)
			tt.setupMocks(t, users, sessions, maker)

			svc := services.NewAuthService(users, hotels, sessions, maker, tt.verifyReq)
			user, err := svc.Resolve(context.Background(), tt.credential)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, "user-1", user.UID)
			}
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	users := new(UserRepoMock)
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleTenantAdmin && u.Status == models.StatusActive && !u.EmailVerified
	}), mock.AnythingOfType("string")).Return("user-9", nil)

	svc := services.NewAuthService(users, new(HotelRepoMock), new(SessionStoreMock), new(JwtMakerMock), false)
	uid, token, err := svc.Register(context.Background(), "new@hotel.example", "secret-pass", "Ivan", "Petrov")

	require.NoError(t, err)
	assert.Equal(t, "user-9", uid)
	assert.NotEmpty(t, token)
	users.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	users := new(UserRepoMock)
	users.On("RegisterUser", mock.Anything, mock.Anything, mock.Anything).
		Return("", repository.ErrAlreadyExists)

	svc := services.NewAuthService(users, new(HotelRepoMock), new(SessionStoreMock), new(JwtMakerMock), false)
	_, _, err := svc.Register(context.Background(), "dup@hotel.example", "secret-pass", "Ivan", "Petrov")

	require.ErrorIs(t, err, services.ErrEmailTaken)
}
