package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/feedback-aggregator/internal/lib/smtp"
	"github.com/magabrotheeeer/feedback-aggregator/internal/models"
)

type mockTransport struct{ mock.Mock }

func (m *mockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *mockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type mockClient struct {
	mock.Mock
	data bytes.Buffer
}

func (m *mockClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *mockClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *mockClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *mockClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleMessage_SendsEmail(t *testing.T) {
	rating := 5
	msg := models.NotificationMessage{
		Kind:           models.NotificationNewReview,
		RecipientEmail: "owner@example.com",
		RecipientName:  "Ivan",
		HotelName:      "Гранд Отель",
		ReviewUID:      "review-1",
		OverallRating:  &rating,
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	buf := nopWriteCloser{&bytes.Buffer{}}
	client := new(mockClient)
	client.On("Mail", "noreply@feedback-aggregator.local").Return(nil)
	client.On("Rcpt", "owner@example.com").Return(nil)
	client.On("Data").Return(buf, nil)
	client.On("Quit").Return(nil)

	transport := new(mockTransport)
	transport.On("Connect").Return(client, nil)
	transport.On("GetSMTPUser").Return("noreply@feedback-aggregator.local")

	svc := NewSenderService(transport, discardLogger())
	require.NoError(t, svc.HandleMessage(body))

	sent := buf.String()
	assert.Contains(t, sent, "To: owner@example.com")
	assert.Contains(t, sent, "Гранд Отель")
	assert.Contains(t, sent, "Оценка: 5 из 5")
	client.AssertExpectations(t)
}

func TestHandleMessage_ConnectFailureRequeues(t *testing.T) {
	body, err := json.Marshal(models.NotificationMessage{
		Kind:           models.NotificationNewReview,
		RecipientEmail: "owner@example.com",
	})
	require.NoError(t, err)

	transport := new(mockTransport)
	transport.On("Connect").Return(nil, errors.New("connection refused"))

	svc := NewSenderService(transport, discardLogger())
	assert.Error(t, svc.HandleMessage(body))
}

func TestHandleMessage_MalformedMessageDropped(t *testing.T) {
	transport := new(mockTransport)

	svc := NewSenderService(transport, discardLogger())
	assert.NoError(t, svc.HandleMessage([]byte("not-json")))
	transport.AssertNotCalled(t, "Connect")
}

func TestHandleMessage_MissingRecipientDropped(t *testing.T) {
	body, err := json.Marshal(models.NotificationMessage{Kind: models.NotificationNewReview})
	require.NoError(t, err)

	transport := new(mockTransport)

	svc := NewSenderService(transport, discardLogger())
	assert.NoError(t, svc.HandleMessage(body))
	transport.AssertNotCalled(t, "Connect")
}
