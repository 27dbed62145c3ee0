package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/access-gate/internal/models"
)

func TestPublishMessage_MarshalError(t *testing.T) {
	// канал не сериализуется в JSON, до публикации дело не доходит
	badMsg := struct {
		Ch chan int `json:"ch"`
	}{
		Ch: make(chan int),
	}

	err := PublishMessage(nil, NotificationsExchange, RoutingKeyActivated, badMsg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
}

func TestPublisher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPublisher(nil)
	err := p.SubscriptionActivated(ctx, models.Activation{Email: "a@x.com"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPublisher_SubscriptionActivated(t *testing.T) {
	ctx := context.Background()
	uri := SetupRabbitMQContainer(ctx, t)

	conn, err := Connect(ctx, uri, 5, time.Second)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	ch, err := SetupChannel(conn, GetNotificationQueues())
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	msg := models.Activation{
		Email:          "a@x.com",
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		Status:         models.StatusActive,
		EventID:        "evt_1",
	}
	require.NoError(t, NewPublisher(ch).SubscriptionActivated(ctx, msg))

	deliveries, err := ch.Consume("notification.subscription.activated", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got models.Activation
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, msg, got)
		assert.Equal(t, "application/json", d.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for activation message")
	}
}
