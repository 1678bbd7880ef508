package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"GoalPulse/storage/mq"
)

const (
	notificationExchange = "notification.topic"

	emailQueue = "notification.email"
	pushQueue  = "notification.push"
)

// Setup 声明交换机、队列和绑定，publisher 和 worker 启动时都调用，幂等
func Setup() error {
	conn := mq.Connection()
	if conn == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		notificationExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", notificationExchange, err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{emailQueue, "notification.email.*"},
		{pushQueue, "notification.push.*"},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(
			b.queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			amqp.Table{"x-queue-type": "quorum"},
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}

		if err := ch.QueueBind(b.queue, b.routingKey, notificationExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}
