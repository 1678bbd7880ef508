package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"GoalPulse/config"
)

var (
	conn   *amqp.Connection
	connMu sync.RWMutex
)

func Init() error {
	url := config.Cfg.GetRabbitMQURL()

	c, err := amqp.Dial(url)
	if err != nil {
		return err
	}

	// 提前验证 channel 可用
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	_ = ch.Close()

	connMu.Lock()
	conn = c
	connMu.Unlock()

	return nil
}

func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

func Close(ctx context.Context) error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		conn = nil
		return err
	}
}
