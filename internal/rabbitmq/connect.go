// Package rabbitmq provides the message-broker plumbing used to hand
// verification emails off to the notification-sender worker.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect dials the broker with a bounded number of retries.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel opens a channel and declares the notifications exchange plus
// the given email queue bound to it.
func SetupChannel(conn *amqp.Connection, emailQueue string) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		"notifications",
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		emailQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, emailQueue, err)
	}

	err = ch.QueueBind(emailQueue, "email", "notifications", false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, emailQueue, err)
	}

	return ch, nil
}
