package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

// MockService реализует интерфейс webhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessBillingEvent(ctx context.Context, event models.DummyBillingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const testSecret = "webhook-secret"

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const hotelUID = "7f6f2a3e-0f7e-4bb1-9b6e-17b9a1f3c481"
	validBody := `{"event_type":"payment.succeeded","hotel_uid":"` + hotelUID + `","plan":"premium"}`

	tests := []struct {
		name           string
		body           string
		signature      string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name:      "валидная подпись и событие",
			body:      validBody,
			signature: sign(validBody),
			setupMock: func(m *MockService) {
				m.On("ProcessBillingEvent", mock.Anything, models.DummyBillingEvent{
					EventType: "payment.succeeded",
					HotelUID:  hotelUID,
					Plan:      "premium",
				}).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "отсутствующая подпись",
			body:           validBody,
			signature:      "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "неверная подпись",
			body:           validBody,
			signature:      sign("another body"),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "подпись валидна, но JSON битый",
			body:           `{"event_type":`,
			signature:      sign(`{"event_type":`),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "hotel_uid не uuid",
			body:           `{"event_type":"payment.succeeded","hotel_uid":"42"}`,
			signature:      sign(`{"event_type":"payment.succeeded","hotel_uid":"42"}`),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, testSecret)

			req := httptest.NewRequest(http.MethodPost, "/billing/webhook", strings.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set("X-Api-Signature", tt.signature)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			// Мутация недопустима до проверки подписи
			if tt.expectedStatus == http.StatusUnauthorized {
				mockService.AssertNotCalled(t, "ProcessBillingEvent", mock.Anything, mock.Anything)
			}
			mockService.AssertExpectations(t)
		})
	}
}
