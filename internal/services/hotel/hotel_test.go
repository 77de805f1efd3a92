package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

type mockHotelRepo struct{ mock.Mock }

func (m *mockHotelRepo) CreateHotel(ctx context.Context, hotel models.Hotel) (string, error) {
	args := m.Called(ctx, hotel)
	return args.String(0), args.Error(1)
}

func (m *mockHotelRepo) GetHotel(ctx context.Context, hotelUID string) (*models.Hotel, error) {
	args := m.Called(ctx, hotelUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}

func (m *mockHotelRepo) GetHotelBySlug(ctx context.Context, slug string) (*models.Hotel, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}

func (m *mockHotelRepo) ListHotels(ctx context.Context, limit, offset int) ([]*models.Hotel, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Hotel), args.Error(1)
}

func (m *mockHotelRepo) UpdateHotelActive(ctx context.Context, hotelUID string, isActive bool) error {
	args := m.Called(ctx, hotelUID, isActive)
	return args.Error(0)
}

func (m *mockHotelRepo) UpdateSubscription(ctx context.Context, hotelUID, plan, status string) error {
	args := m.Called(ctx, hotelUID, plan, status)
	return args.Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) SetUserHotel(ctx context.Context, userUID, hotelUID string) error {
	args := m.Called(ctx, userUID, hotelUID)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateUserStatus(ctx context.Context, userUID, status string) error {
	args := m.Called(ctx, userUID, status)
	return args.Error(0)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, n models.Notification, msg models.NotificationMessage) {
	m.Called(ctx, n, msg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(hotels *mockHotelRepo, users *mockUserRepo, dispatcher *mockDispatcher) *HotelService {
	return NewHotelService(hotels, users, dispatcher, discardLogger())
}

func TestRegister_Success(t *testing.T) {
	hotels := new(mockHotelRepo)
	users := new(mockUserRepo)
	dispatcher := new(mockDispatcher)

	hotels.On("CreateHotel", mock.Anything, mock.MatchedBy(func(h models.Hotel) bool {
		return h.SubscriptionPlan == models.PlanBasic &&
			h.SubscriptionStatus == models.SubscriptionTrial &&
			h.IsActive && h.OwnerUID == "owner-1"
	})).Return("hotel-1", nil)
	users.On("SetUserHotel", mock.Anything, "owner-1", "hotel-1").Return(nil)

	svc := newService(hotels, users, dispatcher)
	hotel, err := svc.Register(context.Background(), "owner-1", "Гранд Отель", "grand-hotel")

	require.NoError(t, err)
	assert.Equal(t, "hotel-1", hotel.UID)
	assert.Equal(t, models.SubscriptionTrial, hotel.SubscriptionStatus)
	users.AssertExpectations(t)
}

func TestRegister_SlugTaken(t *testing.T) {
	hotels := new(mockHotelRepo)
	users := new(mockUserRepo)
	dispatcher := new(mockDispatcher)

	hotels.On("CreateHotel", mock.Anything, mock.Anything).Return("", repository.ErrAlreadyExists)

	svc := newService(hotels, users, dispatcher)
	_, err := svc.Register(context.Background(), "owner-1", "Гранд Отель", "grand-hotel")

	assert.ErrorIs(t, err, ErrSlugTaken)
	users.AssertNotCalled(t, "SetUserHotel", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessBillingEvent_SubscriptionMapping(t *testing.T) {
	tests := []struct {
		name           string
		eventType      string
		eventPlan      string
		expectedPlan   string
		expectedStatus string
	}{
		{
			name:           "успешный платеж активирует подписку",
			eventType:      models.BillingPaymentSucceeded,
			eventPlan:      models.PlanPremium,
			expectedPlan:   models.PlanPremium,
			expectedStatus: models.SubscriptionActive,
		},
		{
			name:           "успешный платеж без плана сохраняет текущий",
			eventType:      models.BillingPaymentSucceeded,
			expectedPlan:   models.PlanBasic,
			expectedStatus: models.SubscriptionActive,
		},
		{
			name:           "отмененный платеж переводит в past_due",
			eventType:      models.BillingPaymentCanceled,
			expectedPlan:   models.PlanBasic,
			expectedStatus: models.SubscriptionPastDue,
		},
		{
			name:           "отмена подписки переводит в cancelled",
			eventType:      models.BillingSubscriptionCancel,
			expectedPlan:   models.PlanBasic,
			expectedStatus: models.SubscriptionCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hotels := new(mockHotelRepo)
			users := new(mockUserRepo)
			dispatcher := new(mockDispatcher)

			hotels.On("GetHotel", mock.Anything, "hotel-1").Return(&models.Hotel{
				UID:              "hotel-1",
				OwnerUID:         "owner-1",
				SubscriptionPlan: models.PlanBasic,
			}, nil)
			hotels.On("UpdateSubscription", mock.Anything, "hotel-1", tt.expectedPlan, tt.expectedStatus).
				Return(nil)

			svc := newService(hotels, users, dispatcher)
			err := svc.ProcessBillingEvent(context.Background(), models.DummyBillingEvent{
				EventType: tt.eventType,
				HotelUID:  "hotel-1",
				Plan:      tt.eventPlan,
			})

			require.NoError(t, err)
			hotels.AssertExpectations(t)
		})
	}
}

func TestProcessBillingEvent_PaymentMethodAddedOnlyNotifies(t *testing.T) {
	hotels := new(mockHotelRepo)
	users := new(mockUserRepo)
	dispatcher := new(mockDispatcher)

	hotels.On("GetHotel", mock.Anything, "hotel-1").Return(&models.Hotel{
		UID:      "hotel-1",
		Name:     "Гранд Отель",
		OwnerUID: "owner-1",
	}, nil)
	users.On("GetUser", mock.Anything, "owner-1").Return(&models.User{
		UID:   "owner-1",
		Email: "owner@example.com",
	}, nil)
	dispatcher.On("Dispatch", mock.Anything,
		mock.MatchedBy(func(n models.Notification) bool {
			return n.Kind == models.NotificationPaymentMethodAdded && n.RecipientUID == "owner-1"
		}), mock.Anything).Return()

	svc := newService(hotels, users, dispatcher)
	err := svc.ProcessBillingEvent(context.Background(), models.DummyBillingEvent{
		EventType: models.BillingPaymentMethodAdded,
		HotelUID:  "hotel-1",
	})

	require.NoError(t, err)
	hotels.AssertNotCalled(t, "UpdateSubscription",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dispatcher.AssertExpectations(t)
}

func TestProcessBillingEvent_UnknownEventSkipped(t *testing.T) {
	hotels := new(mockHotelRepo)
	users := new(mockUserRepo)
	dispatcher := new(mockDispatcher)

	hotels.On("GetHotel", mock.Anything, "hotel-1").Return(&models.Hotel{
		UID:              "hotel-1",
		SubscriptionPlan: models.PlanBasic,
	}, nil)

	svc := newService(hotels, users, dispatcher)
	err := svc.ProcessBillingEvent(context.Background(), models.DummyBillingEvent{
		EventType: "invoice.finalized",
		HotelUID:  "hotel-1",
	})

	require.NoError(t, err)
	hotels.AssertNotCalled(t, "UpdateSubscription",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessBillingEvent_UnknownHotel(t *testing.T) {
	hotels := new(mockHotelRepo)
	users := new(mockUserRepo)
	dispatcher := new(mockDispatcher)

	hotels.On("GetHotel", mock.Anything, "hotel-x").Return(nil, repository.ErrNotFound)

	svc := newService(hotels, users, dispatcher)
	err := svc.ProcessBillingEvent(context.Background(), models.DummyBillingEvent{
		EventType: models.BillingPaymentSucceeded,
		HotelUID:  "hotel-x",
	})

	assert.ErrorIs(t, err, ErrNotFound)
}
