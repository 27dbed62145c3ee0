package cache

import (
	"context"
	"time"
)

const eventKeyPrefix = "webhook:event:"

type processedEvent struct {
	Type        string    `json:"type"`
	ProcessedAt time.Time `json:"processed_at"`
}

// EventLedger помнит ID успешно применённых событий провайдера в течение ttl.
type EventLedger struct {
	cache *Cache
	ttl   time.Duration
}

// NewEventLedger создаёт журнал поверх кеша.
func NewEventLedger(cache *Cache, ttl time.Duration) *EventLedger {
	return &EventLedger{cache: cache, ttl: ttl}
}

// Seen сообщает, было ли событие уже применено.
func (l *EventLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	var ev processedEvent
	return l.cache.Get(ctx, eventKeyPrefix+eventID, &ev)
}

// Remember отмечает событие как применённое.
func (l *EventLedger) Remember(ctx context.Context, eventID, eventType string) error {
	return l.cache.Set(ctx, eventKeyPrefix+eventID, processedEvent{
		Type:        eventType,
		ProcessedAt: time.Now().UTC(),
	}, l.ttl)
}
