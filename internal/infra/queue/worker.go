package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/karimsalah/crm-insights/internal/config"
)

// RefreshFunc is the re-computation entry point invoked on every change
// notification. It must tolerate being called for keys it doesn't care
// about.
type RefreshFunc func(ctx context.Context, key string) error

type Worker struct {
	Channel *amqp.Channel
	Refresh RefreshFunc
}

func NewWorker(ch *amqp.Channel, refresh RefreshFunc) *Worker {
	return &Worker{
		Channel: ch,
		Refresh: refresh,
	}
}

func (w *Worker) Start(queueName string) {
	log := config.GetLogger()

	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("failed registering RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ChangePayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Warnf("change notification with invalid JSON: %s", err)
				// Malformed message. Reject without requeue so the queue
				// doesn't jam.
				d.Nack(false, false)
				continue
			}

			log.WithField("key", payload.Key).Debug("change notification received")

			if err := w.Refresh(context.Background(), payload.Key); err != nil {
				log.Warnf("refresh after change of %q failed: %s", payload.Key, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Infof("change worker waiting on queue %q", queueName)
	<-forever
}
