package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher publishes JSON messages on a fixed exchange/routing key pair.
// It satisfies the EmailPublisher interface of the auth service.
type Publisher struct {
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

// NewEmailPublisher creates a Publisher for the verification-email queue.
func NewEmailPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch, exchange: "notifications", routingKey: "email"}
}

// Publish marshals message to JSON and publishes it persistently.
func (p *Publisher) Publish(message any) error {
	const op = "rabbitmq.Publish"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
