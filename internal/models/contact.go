package models

import "time"

// ContactMessage представляет сообщение гостя отелю вне формы отзыва.
type ContactMessage struct {
	UID       string
	HotelUID  string
	Name      string
	Email     string
	Text      string
	CreatedAt time.Time
}

// DummyContactMessage используется для приёма публичного запроса контакта.
type DummyContactMessage struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Text  string `json:"text" validate:"required,max=4000"`
}
