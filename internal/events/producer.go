package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/craftculture/orders-api/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Producer publishes order lifecycle events through a buffered inbox so HTTP
// handlers never block on the broker. Cancelling the context passed to Start
// flushes whatever is queued; publish after that point is not safe.
type Producer struct {
	w       *kafka.Writer
	log     *slog.Logger
	service string
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, service string, buf int, log *slog.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		log:     log,
		service: service,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	close(p.inbox)
	for m := range p.inbox {
		p.write(m)
	}
	_ = p.w.Close()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.Error("publish event", "topic", m.Topic, "error", err)
	}
}

// WaitClosed blocks until the context driving Start is cancelled and the
// queued events have been flushed.
func (p *Producer) WaitClosed() { <-p.closeCh }

func (p *Producer) publish(topic, eventType string, key []byte, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshal event payload", "type", eventType, "error", err)
		return
	}
	value, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.service,
		Payload:      raw,
	})
	if err != nil {
		p.log.Error("marshal event envelope", "type", eventType, "error", err)
		return
	}

	select {
	case p.inbox <- kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}:
	default:
		p.log.Warn("event inbox full, dropping event", "type", eventType)
	}
}

func (p *Producer) OrderCreated(o *models.Order) {
	p.publish(TopicOrderCreated, EventOrderCreated, PartitionKey(o.ID), OrderCreatedPayload{
		OrderID:      o.ID,
		Username:     o.Username,
		TotalAmount:  o.TotalAmount,
		Items:        o.Items,
		DeliveryDate: o.DeliveryDate,
	})
}

func (p *Producer) OrderStatusChanged(o *models.Order) {
	p.publish(TopicOrderStatusChanged, EventOrderStatusChanged, PartitionKey(o.ID), OrderStatusChangedPayload{
		OrderID:  o.ID,
		Username: o.Username,
		Status:   o.Status,
	})
}
