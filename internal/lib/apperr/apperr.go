// Package apperr содержит ошибки предметной области, общие для всех слоёв сервиса.
//
// Нижние слои оборачивают их через fmt.Errorf("%s: %w", op, err), а HTTP-слой
// определяет класс ошибки через errors.Is и выбирает код ответа.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrDuplicateIdentity — email уже зарегистрирован.
	ErrDuplicateIdentity = errors.New("user already exists")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSignature — подпись webhook не прошла проверку.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedEvent — в событии провайдера нет обязательных полей.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrStorage — хранилище недоступно или запись не удалась.
	ErrStorage = errors.New("storage error")
	// ErrProvider — платёжный провайдер вернул ошибку.
	ErrProvider = errors.New("payment provider error")
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
)

// HTTPStatus сопоставляет ошибку с HTTP-статусом ответа.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, ErrMalformedEvent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст ошибки, который безопасно отдавать клиенту.
func Message(err error) string {
	for _, known := range []error{
		ErrDuplicateIdentity,
		ErrInvalidCredentials,
		ErrInvalidSignature,
		ErrMalformedEvent,
		ErrNotFound,
		ErrStorage,
		ErrProvider,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal error"
}
