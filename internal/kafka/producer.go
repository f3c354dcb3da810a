package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"qr-admin-service/internal/models"
)

// Producer publishes sync lifecycle events for downstream consumers
// (mailing, reporting). Publishing is best effort; a broker outage never
// fails the sync job.
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
	}
	return &Producer{Writer: writer}
}

// Publish writes one keyed message to a topic.
func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishOrderSynced emits the upserted order after a sync iteration.
func (p *Producer) PublishOrderSynced(topic string, order models.Order) error {
	msgBytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.Publish(topic, order.OrderID, msgBytes)
}

// PublishTicketValidated emits a ticket after an admin validates it.
func (p *Producer) PublishTicketValidated(topic string, ticket models.Ticket) error {
	msgBytes, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return p.Publish(topic, ticket.TicketID, msgBytes)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
