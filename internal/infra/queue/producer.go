package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/karimsalah/crm-insights/internal/config"
)

// ChangePayload announces that the value under Key was rewritten. Consumers
// re-fetch; the payload deliberately carries no data, only the pointer.
type ChangePayload struct {
	Key string `json:"key"`
	Ts  int64  `json:"ts"`
}

type NotifierInterface interface {
	NotifyChanged(ctx context.Context, key string) error
}

type RabbitMQNotifier struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewNotifier(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQNotifier {
	return &RabbitMQNotifier{
		Conn: conn,
		Ch:   ch,
	}
}

func (n *RabbitMQNotifier) NotifyChanged(ctx context.Context, key string) error {
	payload := ChangePayload{
		Key: key,
		Ts:  time.Now().UnixMilli(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed marshalling change payload: %w", err)
	}

	err = n.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed publishing change notification: %w", err)
	}

	return nil
}

// NoopNotifier degrades cleanly when no broker is configured: writes still
// happen, nobody gets told. Same-process consumers keep re-reading on
// request instead.
type NoopNotifier struct{}

func (NoopNotifier) NotifyChanged(_ context.Context, key string) error {
	config.GetLogger().WithField("key", key).Debug("change notification dropped (no broker)")
	return nil
}
