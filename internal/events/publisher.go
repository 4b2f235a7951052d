// Package events публикует события изменения коллекции в Kafka.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/RoGogDBD/pantry/internal/models"
	"github.com/RoGogDBD/pantry/internal/retry"
	"github.com/RoGogDBD/pantry/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

// Publisher отправляет события изменения позиций внешним потребителям.
// Nil-паблишер безопасен: все вызовы превращаются в no-op.
type Publisher struct {
	writer   *kafka.Writer
	validate *validator.Validate
	policy   retry.Policy
}

// NewPublisher создает паблишер. Без брокеров возвращается nil —
// событийный поток выключен.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		validate: validation.New(),
		policy: retry.Policy{
			MaxRetries: 2,
			Backoff:    retry.NewBackoff(200*time.Millisecond, 2*time.Second, true),
		},
	}
}

// Publish отправляет событие. Ошибки логируются и не блокируют запись:
// событийный поток вторичен по отношению к коллекции.
func (p *Publisher) Publish(ctx context.Context, event models.ChangeEvent) {
	if p == nil {
		return
	}

	if err := p.validate.Struct(event); err != nil {
		log.Printf("invalid change event: %v", err)
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal change event: %v", err)
		return
	}

	err = retry.Do(ctx, p.policy, func() error {
		return p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(event.ID),
			Value: value,
		})
	}, func(err error, attempt int, wait time.Duration) {
		log.Printf("kafka write error: %v (attempt %d). Retrying in %v...", err, attempt, wait)
	})
	if err != nil {
		log.Printf("failed to publish change event for item %s: %v", event.ID, err)
	}
}

// Close закрывает врайтер Kafka.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.writer.Close(); err != nil {
		log.Printf("kafka writer close error: %v", err)
	}
}
