// Package reconciler применяет проверенные события платёжного провайдера
// к хранилищу аккаунтов.
//
// Обработка события: проверка подписи, классификация по типу, извлечение
// полей и идемпотентный upsert. Только checkout.session.completed меняет
// состояние, остальные типы подтверждаются и игнорируются. Повторная
// доставка того же события оставляет аккаунт в том же состоянии.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v82"

	"github.com/magabrotheeeer/access-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/access-gate/internal/lib/sl"
	"github.com/magabrotheeeer/access-gate/internal/metrics"
	"github.com/magabrotheeeer/access-gate/internal/models"
	"github.com/magabrotheeeer/access-gate/internal/paymentprovider"
)

// SubscriptionStore — запись состояния подписки.
type SubscriptionStore interface {
	UpsertSubscription(ctx context.Context, email, customerID, subscriptionID string,
		status models.SubscriptionStatus) (*models.Account, error)
}

// EventLedger помнит уже применённые события.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID, eventType string) error
}

// Notifier сообщает внешним потребителям об активации подписки.
type Notifier interface {
	SubscriptionActivated(ctx context.Context, msg models.Activation) error
}

// Result описывает, что произошло с событием.
type Result struct {
	EventID   string
	EventType string
	Outcome   string
	Account   *models.Account
}

// Reconciler применяет события провайдера к хранилищу.
type Reconciler struct {
	log      *slog.Logger
	store    SubscriptionStore
	secret   string
	ledger   EventLedger
	notifier Notifier
}

// Option настраивает необязательные зависимости Reconciler.
type Option func(*Reconciler)

// WithLedger подключает журнал обработанных событий.
func WithLedger(ledger EventLedger) Option {
	return func(r *Reconciler) { r.ledger = ledger }
}

// WithNotifier подключает публикацию уведомлений об активации.
func WithNotifier(notifier Notifier) Option {
	return func(r *Reconciler) { r.notifier = notifier }
}

// New создаёт Reconciler с секретом подписи webhook.
func New(log *slog.Logger, store SubscriptionStore, secret string, opts ...Option) *Reconciler {
	r := &Reconciler{log: log, store: store, secret: secret}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile проверяет подпись payload, классифицирует событие и применяет его.
//
// Ошибки: apperr.ErrInvalidSignature и apperr.ErrMalformedEvent окончательны
// для события, apperr.ErrStorage означает, что провайдеру стоит повторить доставку.
func (r *Reconciler) Reconcile(ctx context.Context, payload []byte, signature string) (*Result, error) {
	const op = "reconciler.Reconcile"

	event, err := paymentprovider.VerifyEvent(payload, signature, r.secret)
	if err != nil {
		r.count("unknown", outcomeOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	eventType := string(event.Type)
	log := r.log.With(
		slog.String("op", op),
		slog.String("event_id", event.ID),
		slog.String("event_type", eventType),
	)

	if eventType != paymentprovider.EventCheckoutCompleted {
		log.Debug("event type ignored")
		r.count(eventType, metrics.OutcomeIgnored)
		return &Result{EventID: event.ID, EventType: eventType, Outcome: metrics.OutcomeIgnored}, nil
	}

	if r.alreadyApplied(ctx, log, event.ID) {
		log.Info("event already applied")
		r.count(eventType, metrics.OutcomeDuplicate)
		return &Result{EventID: event.ID, EventType: eventType, Outcome: metrics.OutcomeDuplicate}, nil
	}

	account, err := r.applyCheckoutCompleted(ctx, event)
	if err != nil {
		log.Error("failed to apply event", sl.Err(err))
		r.count(eventType, outcomeOf(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("subscription activated", sl.Email(account.Email))
	r.count(eventType, metrics.OutcomeApplied)

	if r.ledger != nil {
		if err := r.ledger.Remember(ctx, event.ID, eventType); err != nil {
			log.Warn("failed to remember event", sl.Err(err))
		}
	}
	r.notify(ctx, log, event.ID, account)

	return &Result{EventID: event.ID, EventType: eventType, Outcome: metrics.OutcomeApplied, Account: account}, nil
}

func (r *Reconciler) applyCheckoutCompleted(ctx context.Context, event *stripe.Event) (*models.Account, error) {
	const op = "reconciler.applyCheckoutCompleted"

	session, err := paymentprovider.DecodeCheckoutSession(event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	email := session.Email()
	if email == "" {
		return nil, fmt.Errorf("%s: %w: session %s has no customer email", op, apperr.ErrMalformedEvent, session.ID)
	}

	account, err := r.store.UpsertSubscription(ctx, email, session.CustomerID(), session.SubscriptionID(), models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return account, nil
}

// alreadyApplied сверяется с журналом; ошибка журнала не блокирует обработку.
func (r *Reconciler) alreadyApplied(ctx context.Context, log *slog.Logger, eventID string) bool {
	if r.ledger == nil {
		return false
	}
	seen, err := r.ledger.Seen(ctx, eventID)
	if err != nil {
		log.Warn("event ledger unavailable", sl.Err(err))
		return false
	}
	return seen
}

func (r *Reconciler) notify(ctx context.Context, log *slog.Logger, eventID string, account *models.Account) {
	if r.notifier == nil {
		return
	}
	msg := models.Activation{
		Email:          account.Email,
		CustomerID:     account.ProviderCustomerID,
		SubscriptionID: account.ProviderSubscriptionID,
		Status:         account.SubscriptionStatus,
		EventID:        eventID,
	}
	if err := r.notifier.SubscriptionActivated(ctx, msg); err != nil {
		log.Warn("failed to publish activation", sl.Err(err))
	}
}

func (r *Reconciler) count(eventType, outcome string) {
	metrics.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInvalidSignature):
		return metrics.OutcomeInvalidSignature
	case errors.Is(err, apperr.ErrMalformedEvent):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeStorageError
	}
}
