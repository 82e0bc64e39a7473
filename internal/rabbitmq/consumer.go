package rabbitmq

import (
	"context"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// ConsumeMessages reads from queueName and passes each body to handler,
// acking on success and requeueing on failure. Up to 10 messages are
// processed concurrently. Returns when ctx is cancelled.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, 10)
	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				if err := handler(d.Body); err != nil {
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Printf("failed to nack message: %v", nackErr)
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Printf("failed to ack message: %v", ackErr)
				}
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}
