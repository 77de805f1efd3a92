package models

import "time"

// Типы полей формы. Доступность типа зависит от тарифного плана отеля.
const (
	FieldText           = "text"
	FieldTextarea       = "textarea"
	FieldRating         = "rating"
	FieldSingleChoice   = "single_choice"
	FieldMultipleChoice = "multiple_choice"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldFileUpload     = "file_upload"
)

// Семантические роли полей. Роль объявляется явно при создании формы,
// извлечение данных гостя не полагается на текст ярлыка. Каждая роль
// может встречаться в форме не более одного раза.
const (
	RoleGuestName  = "guest_name"
	RoleGuestEmail = "guest_email"
	RoleGuestPhone = "guest_phone"
	RoleRating     = "rating"
)

// Field описывает одно поле формы обратной связи.
type Field struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Type         string   `json:"type"`
	Required     bool     `json:"required"`
	Options      []string `json:"options,omitempty"`       // Варианты для single_choice/multiple_choice
	SemanticRole string   `json:"semantic_role,omitempty"` // guest_name, guest_email, guest_phone, rating
}

// Form представляет форму сбора отзывов, настроенную отелем.
// Количество и типы полей ограничены тарифом на момент сохранения;
// смена тарифа задним числом формы не инвалидирует.
type Form struct {
	UID       string
	HotelUID  string
	Title     string
	Fields    []Field // Упорядоченный список полей, хранится как JSONB
	IsActive  bool
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldByID возвращает поле формы по идентификатору.
func (f *Form) FieldByID(id string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// FieldByRole возвращает единственное поле с заданной семантической ролью.
func (f *Form) FieldByRole(role string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].SemanticRole == role {
			return &f.Fields[i], true
		}
	}
	return nil, false
}
