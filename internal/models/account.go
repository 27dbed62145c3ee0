// Package models содержит доменную модель аккаунта: идентичность по email,
// учётные данные и состояние подписки у платёжного провайдера.
package models

import (
	"strings"
	"time"
)

// SubscriptionStatus — состояние подписки аккаунта.
//
// Кроме StatusNone и StatusActive допускаются любые состояния провайдера
// (например "past_due" или "canceled"), доступ даёт только StatusActive.
type SubscriptionStatus string

const (
	// StatusNone — аккаунт без подписки.
	StatusNone SubscriptionStatus = "none"
	// StatusActive — оплаченная подписка.
	StatusActive SubscriptionStatus = "active"
)

// MetadataEmailKey — ключ metadata сессии оплаты, в котором передаётся email.
const MetadataEmailKey = "email"

// Account представляет запись об идентичности и подписке.
type Account struct {
	Email                  string             // Уникальный ключ, всегда в нормализованном виде
	PasswordHash           string             // Пусто для аккаунтов, созданных webhook'ом
	ProviderCustomerID     string             // ID клиента у провайдера, после записи не очищается
	ProviderSubscriptionID string             // ID последней подписки
	SubscriptionStatus     SubscriptionStatus // Единственное поле, которое читает проверка доступа
	CreatedAt              time.Time
}

// HasPassword сообщает, прошёл ли аккаунт регистрацию.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// IsActive сообщает, даёт ли статус подписки доступ.
func (a *Account) IsActive() bool {
	return a.SubscriptionStatus == StatusActive
}

// NormalizeEmail приводит email к каноническому виду: без пробелов по краям
// и в нижнем регистре. Применяется везде, где email входит в систему,
// так как регистр в событиях провайдера может отличаться от введённого.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Activation — сообщение об активации подписки для внешних потребителей.
type Activation struct {
	Email          string             `json:"email"`
	CustomerID     string             `json:"customer_id,omitempty"`
	SubscriptionID string             `json:"subscription_id,omitempty"`
	Status         SubscriptionStatus `json:"status"`
	EventID        string             `json:"event_id"`
}
