package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

func TestDecisionRoutingKey(t *testing.T) {
	assert.Equal(t, "session.decision.expired", DecisionRoutingKey("expired"))
	assert.Equal(t, "session.decision.warning_active", DecisionRoutingKey("warning_active"))
}

func TestPublisher_PublishDecision(t *testing.T) {
	uri := amqpURI(t)

	conn, err := Connect(uri, 3, time.Second)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	const exchange = "session-events-publish"
	ch, err := SetupChannel(conn, exchange)
	require.NoError(t, err)

	consumer, err := conn.Channel()
	require.NoError(t, err)
	defer func() { _ = consumer.Close() }()

	q, err := consumer.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, consumer.QueueBind(q.Name, "session.decision.*", exchange, false, nil))

	deliveries, err := consumer.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	pub := NewPublisher(ch, exchange)
	defer func() { _ = pub.Close() }()

	event := models.DecisionEvent{
		EventID:     "e-1",
		UserID:      "u-1",
		Email:       "anna@example.com",
		Decision:    "expired",
		DaysOverdue: 9,
		At:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishDecision(context.Background(), event))

	select {
	case d := <-deliveries:
		assert.Equal(t, "session.decision.expired", d.RoutingKey)
		assert.Equal(t, "application/json", d.ContentType)
		var got models.DecisionEvent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, event.UserID, got.UserID)
		assert.Equal(t, 9, got.DaysOverdue)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublisher_CanceledContext(t *testing.T) {
	pub := NewPublisher(nil, "unused")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.PublishDecision(ctx, models.DecisionEvent{Decision: "active"})
	assert.ErrorIs(t, err, context.Canceled)
}
