package models

import "time"

// Виды уведомлений. Вид уходит и в очередь, и в запись получателя.
const (
	NotificationNewReview          = "review.created"
	NotificationNewContactMessage  = "contact.created"
	NotificationPaymentMethodAdded = "payment_method.added"
)

// Notification представляет уведомление в ящике пользователя.
// Читает и удаляет его только сам получатель.
type Notification struct {
	UID          string
	RecipientUID string
	Kind         string
	Payload      map[string]any // Данные события, хранятся как JSONB
	IsRead       bool
	CreatedAt    time.Time
}

// NotificationMessage — сообщение, публикуемое в обменник для отправки
// почтового уведомления администратору отеля.
type NotificationMessage struct {
	Kind           string  `json:"kind"`
	RecipientEmail string  `json:"recipient_email"`
	RecipientName  string  `json:"recipient_name"`
	HotelName      string  `json:"hotel_name"`
	ReviewUID      string  `json:"review_uid,omitempty"`
	OverallRating  *int    `json:"overall_rating,omitempty"`
	GuestName      *string `json:"guest_name,omitempty"`
	MessageText    string  `json:"message_text,omitempty"`
}
