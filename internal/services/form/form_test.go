package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	"github.com/magabrotheeeer/feedback-aggregator/internal/plan"
	"github.com/magabrotheeeer/feedback-aggregator/internal/storage/repository"
)

type mockFormRepo struct{ mock.Mock }

func (m *mockFormRepo) CreateForm(ctx context.Context, form models.Form) (string, error) {
	args := m.Called(ctx, form)
	return args.String(0), args.Error(1)
}

func (m *mockFormRepo) UpdateForm(ctx context.Context, form models.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *mockFormRepo) GetForm(ctx context.Context, formUID, hotelUID string) (*models.Form, error) {
	args := m.Called(ctx, formUID, hotelUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Form), args.Error(1)
}

func (m *mockFormRepo) GetPublicForm(ctx context.Context, formUID, hotelUID string) (*models.Form, error) {
	args := m.Called(ctx, formUID, hotelUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Form), args.Error(1)
}

func (m *mockFormRepo) ListForms(ctx context.Context, hotelUID string, limit, offset int) ([]*models.Form, error) {
	args := m.Called(ctx, hotelUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Form), args.Error(1)
}

type mockHotelRepo struct{ mock.Mock }

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

type mockSchemaCache struct{ mock.Mock }

func (m *mockSchemaCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *mockSchemaCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *mockSchemaCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func basicHotel() *models.Hotel {
	return &models.Hotel{
		UID:              "hotel-1",
		Name:             "Гранд Отель",
		Slug:             "grand-hotel",
		SubscriptionPlan: models.PlanBasic,
		IsActive:         true,
	}
}

func validFields() []models.Field {
	return []models.Field{
		{ID: "f1", Label: "Имя", Type: models.FieldText, SemanticRole: models.RoleGuestName},
		{ID: "f2", Label: "Оценка", Type: models.FieldRating, Required: true, SemanticRole: models.RoleRating},
		{ID: "f3", Label: "Комментарий", Type: models.FieldTextarea},
	}
}

func TestCreate_Success(t *testing.T) {
	forms := new(mockFormRepo)
	hotels := new(mockHotelRepo)
	cache := new(mockSchemaCache)

	hotels.On("GetHotel", mock.Anything, "hotel-1").Return(basicHotel(), nil)
	forms.On("CreateForm", mock.Anything, mock.Anything).Return("form-1", nil)

	svc := NewFormService(forms, hotels, cache, discardLogger())
	uid, err := svc.Create(context.Background(), models.Form{
		HotelUID: "hotel-1",
		Title:    "Отзыв о проживании",
		Fields:   validFields(),
		IsActive: true,
		IsPublic: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "form-1", uid)
}

func TestCreate_PlanLimits(t *testing.T) {
	tests := []struct {
		name   string
		plan   string
		fields []models.Field
		check  func(t *testing.T, lerr *plan.LimitError)
	}{
		{
			name: "basic отклоняет шестое поле",
			plan: models.PlanBasic,
			fields: []models.Field{
				{ID: "f1", Type: models.FieldText}, {ID: "f2", Type: models.FieldText},
				{ID: "f3", Type: models.FieldText}, {ID: "f4", Type: models.FieldText},
				{ID: "f5", Type: models.FieldText}, {ID: "f6", Type: models.FieldText},
			},
			check: func(t *testing.T, lerr *plan.LimitError) {
				assert.Equal(t, 5, lerr.MaxFields)
				assert.Equal(t, 6, lerr.ActualFields)
			},
		},
		{
			name: "basic отклоняет недоступный тип поля",
			plan: models.PlanBasic,
			fields: []models.Field{
				{ID: "f1", Type: models.FieldText},
				{ID: "f2", Type: models.FieldFileUpload},
			},
			check: func(t *testing.T, lerr *plan.LimitError) {
				assert.Equal(t, []string{models.FieldFileUpload}, lerr.InvalidTypes)
			},
		},
		{
			name: "premium отклоняет file_upload",
			plan: models.PlanPremium,
			fields: []models.Field{
				{ID: "f1", Type: models.FieldSingleChoice, Options: []string{"да", "нет"}},
				{ID: "f2", Type: models.FieldFileUpload},
			},
			check: func(t *testing.T, lerr *plan.LimitError) {
				assert.Equal(t, []string{models.FieldFileUpload}, lerr.InvalidTypes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forms := new(mockFormRepo)
			hotels := new(mockHotelRepo)
			cache := new(mockSchemaCache)

			hotel := basicHotel()
			hotel.SubscriptionPlan = tt.plan
			hotels.On("GetHotel", mock.Anything, "hotel-1").Return(hotel, nil)

			svc := NewFormService(forms, hotels, cache, discardLogger())
			_, err := svc.Create(context.Background(), models.Form{
				HotelUID: "hotel-1",
				Title:    "Форма",
				Fields:   tt.fields,
			})

			var lerr *plan.LimitError
			require.ErrorAs(t, err, &lerr)
			tt.check(t, lerr)
			forms.AssertNotCalled(t, "CreateForm", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_SchemaViolations(t *testing.T) {
	tests := []struct {
		name   string
		fields []models.Field
		check  func(t *testing.T, serr *SchemaError)
	}{
		{
			name: "дубль семантической роли",
			fields: []models.Field{
				{ID: "f1", Type: models.FieldText, SemanticRole: models.RoleGuestName},
				{ID: "f2", Type: models.FieldText, SemanticRole: models.RoleGuestName},
			},
			check: func(t *testing.T, serr *SchemaError) {
				assert.Equal(t, []string{models.RoleGuestName}, serr.DuplicateRoles)
			},
		},
		{
			name: "дубль идентификатора поля",
			fields: []models.Field{
				{ID: "f1", Type: models.FieldText},
				{ID: "f1", Type: models.FieldTextarea},
			},
			check: func(t *testing.T, serr *SchemaError) {
				assert.Equal(t, []string{"f1"}, serr.DuplicateFieldIDs)
			},
		},
		{
			name: "неизвестная роль",
			fields: []models.Field{
				{ID: "f1", Type: models.FieldText, SemanticRole: "guest_passport"},
			},
			check: func(t *testing.T, serr *SchemaError) {
				assert.Equal(t, []string{"guest_passport"}, serr.UnknownRoles)
			},
		},
		{
			name: "пустой идентификатор поля",
			fields: []models.Field{
				{ID: "", Type: models.FieldText},
			},
			check: func(t *testing.T, serr *SchemaError) {
				assert.True(t, serr.EmptyFieldIDs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forms := new(mockFormRepo)
			hotels := new(mockHotelRepo)
			cache := new(mockSchemaCache)

			svc := NewFormService(forms, hotels, cache, discardLogger())
			_, err := svc.Create(context.Background(), models.Form{
				HotelUID: "hotel-1",
				Title:    "Форма",
				Fields:   tt.fields,
			})

			var serr *SchemaError
			require.ErrorAs(t, err, &serr)
			tt.check(t, serr)
			// Структурные нарушения отсекаются до чтения тарифа
			hotels.AssertNotCalled(t, "GetHotel", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	forms := new(mockFormRepo)
	hotels := new(mockHotelRepo)
	cache := new(mockSchemaCache)

	hotels.On("GetHotel", mock.Anything, "hotel-1").Return(basicHotel(), nil)
	forms.On("UpdateForm", mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", mock.Anything, "form:public:hotel-1:form-1").Return(nil)

	svc := NewFormService(forms, hotels, cache, discardLogger())
	err := svc.Update(context.Background(), models.Form{
		UID:      "form-1",
		HotelUID: "hotel-1",
		Title:    "Форма",
		Fields:   validFields(),
	})

	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestUpdate_ForeignFormAsNotFound(t *testing.T) {
	forms := new(mockFormRepo)
	hotels := new(mockHotelRepo)
	cache := new(mockSchemaCache)

	hotels.On("GetHotel", mock.Anything, "hotel-1").Return(basicHotel(), nil)
	forms.On("UpdateForm", mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	svc := NewFormService(forms, hotels, cache, discardLogger())
	err := svc.Update(context.Background(), models.Form{
		UID:      "form-1",
		HotelUID: "hotel-1",
		Title:    "Форма",
		Fields:   validFields(),
	})

	assert.ErrorIs(t, err, ErrNotFound)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestPublicSchema_CacheMissThenStore(t *testing.T) {
	forms := new(mockFormRepo)
	hotels := new(mockHotelRepo)
	cache := new(mockSchemaCache)

	form := &models.Form{UID: "form-1", HotelUID: "hotel-1", Fields: validFields(), IsActive: true, IsPublic: true}
	hotels.On("GetHotelBySlug", mock.Anything, "grand-hotel").Return(basicHotel(), nil)
	cache.On("Get", mock.Anything, "form:public:hotel-1:form-1", mock.Anything).Return(false, nil)
	forms.On("GetPublicForm", mock.Anything, "form-1", "hotel-1").Return(form, nil)
	cache.On("Set", mock.Anything, "form:public:hotel-1:form-1", form, publicFormTTL).Return(nil)

	svc := NewFormService(forms, hotels, cache, discardLogger())
	got, err := svc.PublicSchema(context.Background(), "grand-hotel", "form-1")

	require.NoError(t, err)
	assert.Equal(t, form, got)
	cache.AssertExpectations(t)
}

func TestPublicSchema_CacheHitSkipsStorage(t *testing.T) {
	forms := new(mockFormRepo)
	hotels := new(mockHotelRepo)
	cache := new(mockSchemaCache)

	hotels.On("GetHotelBySlug", mock.Anything, "grand-hotel").Return(basicHotel(), nil)
	cache.On("Get", mock.Anything, "form:public:hotel-1:form-1", mock.Anything).
		Run(func(args mock.Arguments) {
			f := args.Get(2).(*models.Form)
			f.UID = "form-1"
			f.HotelUID = "hotel-1"
			f.Title = "Из кеша"
		}).
		Return(true, nil)

	svc := NewFormService(forms, hotels, cache, discardLogger())
	got, err := svc.PublicSchema(context.Background(), "grand-hotel", "form-1")

	require.NoError(t, err)
	assert.Equal(t, "Из кеша", got.Title)
	forms.AssertNotCalled(t, "GetPublicForm", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublicSchema_InactiveHotelHidden(t *testing.T) {
	forms := new(mockFormRepo)
	hotels := new(mockHotelRepo)
	cache := new(mockSchemaCache)

	inactive := basicHotel()
	inactive.IsActive = false
	hotels.On("GetHotelBySlug", mock.Anything, "grand-hotel").Return(inactive, nil)

	svc := NewFormService(forms, hotels, cache, discardLogger())
	_, err := svc.PublicSchema(context.Background(), "grand-hotel", "form-1")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublicSchema_NonPublicFormAsNotFound(t *testing.T) {
	forms := new(mockFormRepo)
	hotels := new(mockHotelRepo)
	cache := new(mockSchemaCache)

	hotels.On("GetHotelBySlug", mock.Anything, "grand-hotel").Return(basicHotel(), nil)
	cache.On("Get", mock.Anything, "form:public:hotel-1:form-1", mock.Anything).Return(false, nil)
	forms.On("GetPublicForm", mock.Anything, "form-1", "hotel-1").Return(nil, repository.ErrNotFound)

	svc := NewFormService(forms, hotels, cache, discardLogger())
	_, err := svc.PublicSchema(context.Background(), "grand-hotel", "form-1")

	assert.ErrorIs(t, err, ErrNotFound)
}
