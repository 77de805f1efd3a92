package models

import "time"

// Тарифные планы отеля. Лимиты форм для каждого плана задаются в пакете plan.
const (
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Статусы подписки отеля. Меняются вебхуками биллинга и действиями
// администратора платформы.
const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
)

// Виды событий биллинга, принимаемых вебхуком.
const (
	BillingPaymentSucceeded   = "payment.succeeded"
	BillingPaymentCanceled    = "payment.canceled"
	BillingSubscriptionCancel = "subscription.cancelled"
	BillingPaymentMethodAdded = "payment_method.added"
)

// DummyBillingEvent используется для приёма события от провайдера биллинга.
// Подпись запроса проверяется до разбора тела.
type DummyBillingEvent struct {
	EventType string `json:"event_type" validate:"required"`
	HotelUID  string `json:"hotel_uid" validate:"required,uuid"`
	Plan      string `json:"plan,omitempty" validate:"omitempty,oneof=basic premium enterprise"`
}

// Hotel представляет отель — арендатора системы и единицу изоляции данных.
// Пока у отеля есть отзывы, запись не удаляется, только деактивируется.
type Hotel struct {
	UID                string // Уникальный идентификатор отеля
	Name               string // Название отеля
	Slug               string // Глобально уникальный URL-идентификатор
	OwnerUID           string // Владелец (tenant_admin)
	SubscriptionPlan   string // Текущий тарифный план
	SubscriptionStatus string // Статус подписки
	IsActive           bool   // Принимает ли отель отзывы
	CreatedAt          time.Time
}
