package submit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
	reviewsvc "github.com/magabrotheeeer/feedback-aggregator/internal/services/review"
)

// MockService реализует интерфейс submit.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Submit(ctx context.Context, hotelSlug string, req models.DummySubmission) (*models.Review, error) {
	args := m.Called(ctx, hotelSlug, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSubmitHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const formUID = "2d5f3a84-91f7-4a35-b6db-9cb3a7a90861"

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная отправка отзыва",
			body: `{"form_uid":"` + formUID + `","responses":{"f1":"Мария","f3":5}}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "grand-hotel", mock.Anything).
					Return(&models.Review{UID: "review-1", Status: models.ReviewApproved}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"approved"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"form_uid":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "невалидный form_uid",
			body:           `{"form_uid":"not-a-uuid","responses":{"f1":"x"}}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field FormUID can contain only uuid`,
		},
		{
			name: "неизвестный отель",
			body: `{"form_uid":"` + formUID + `","responses":{"f1":"Мария"}}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "grand-hotel", mock.Anything).
					Return(nil, reviewsvc.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"not found"`,
		},
		{
			name: "незаполненные обязательные поля",
			body: `{"form_uid":"` + formUID + `","responses":{"f2":"x"}}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "grand-hotel", mock.Anything).
					Return(nil, &reviewsvc.ValidationError{MissingFields: []string{"f1", "f3"}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"missing_fields":["f1","f3"]`,
		},
		{
			name: "ошибка сервиса",
			body: `{"form_uid":"` + formUID + `","responses":{"f1":"Мария"}}`,
			setupMock: func(m *MockService) {
				m.On("Submit", mock.Anything, "grand-hotel", mock.Anything).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not submit review"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost,
				"/public/hotels/grand-hotel/reviews", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("slug", "grand-hotel")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
