package paymentprovider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
)

// SignatureHeader — заголовок, в котором Stripe передаёт подпись события.
const SignatureHeader = "Stripe-Signature"

// VerifyEvent проверяет подпись sigHeader над сырым телом payload общим секретом
// и разбирает событие.
//
// Любая проблема с подписью (нет заголовка, неверный формат, несовпадение,
// устаревшая метка времени) возвращает apperr.ErrInvalidSignature.
// Корректно подписанное, но неразбираемое тело возвращает apperr.ErrMalformedEvent.
func VerifyEvent(payload []byte, sigHeader, secret string) (*stripe.Event, error) {
	const op = "paymentprovider.VerifyEvent"

	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%s: %w: webhook secret not configured", op, apperr.ErrInvalidSignature)
	}
	if strings.TrimSpace(sigHeader) == "" {
		return nil, fmt.Errorf("%s: %w: missing %s header", op, apperr.ErrInvalidSignature, SignatureHeader)
	}
	if err := webhook.ValidatePayload(payload, sigHeader, secret); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrInvalidSignature, err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrMalformedEvent, err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%s: %w: event without id or type", op, apperr.ErrMalformedEvent)
	}
	return &event, nil
}

// DecodeCheckoutSession извлекает объект checkout.session из события.
func DecodeCheckoutSession(event *stripe.Event) (*CheckoutSession, error) {
	const op = "paymentprovider.DecodeCheckoutSession"
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%s: %w: event %s has no data object", op, apperr.ErrMalformedEvent, event.ID)
	}
	var session CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrMalformedEvent, err)
	}
	return &session, nil
}
