package models

import "time"

// Статусы отзыва. Начальный статус вычисляется при создании:
// оценка >= 4 сразу дает approved, иначе pending. Дальше статус меняет
// только администратор отеля.
const (
	ReviewPending          = "pending"
	ReviewApproved         = "approved"
	ReviewRejected         = "rejected"
	ReviewSharedExternally = "shared_externally"
)

// Review представляет один отзыв гостя, отправленный через форму отеля.
// Поля гостя выводятся из семантических ролей полей формы.
type Review struct {
	UID           string
	HotelUID      string
	FormUID       string
	GuestName     *string
	GuestEmail    *string
	GuestPhone    *string
	Responses     map[string]any // Ответы по id полей, хранятся как JSONB без преобразований
	OverallRating *int           // 1..5, nil если в форме нет поля rating
	Status        string
	AdminNotes    *string
	ReplyText     *string
	IsChecked     bool
	IsUrgent      bool
	IsReplied     bool
	IsDeleted     bool
	CreatedAt     time.Time
}

// DummySubmission используется для приёма публичного запроса на отправку отзыва.
type DummySubmission struct {
	FormUID   string         `json:"form_uid" validate:"required,uuid"`
	Responses map[string]any `json:"responses" validate:"required"`
}

// DummyStatusUpdate используется для приёма запроса на смену статуса отзыва.
type DummyStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected shared_externally"`
	Notes  string `json:"notes,omitempty"`
}
