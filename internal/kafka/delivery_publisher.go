package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"ms-reminders/internal/config"
	"ms-reminders/internal/models"
)

// DeliveryPublisher emits one event per successful reminder delivery, so
// downstream consumers (analytics, digests) can follow the audit trail
// without reading the service's database. Satisfies engine.AuditPublisher.
type DeliveryPublisher struct {
	Writer *kafka.Writer
	Config config.Config
}

// NewDeliveryPublisher creates a publisher for the delivery audit topic. A
// missing Kafka URL or topic yields a publisher with a nil writer; callers
// should skip wiring it in that case.
func NewDeliveryPublisher(cfg config.Config) *DeliveryPublisher {
	if cfg.KafkaURL == "" || cfg.KafkaDeliveryTopic == "" {
		log.Println("Empty Kafka URL or delivery topic provided, skipping publisher creation")
		return &DeliveryPublisher{
			Writer: nil,
			Config: cfg,
		}
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaURL),
		Topic:    cfg.KafkaDeliveryTopic,
		Balancer: &kafka.LeastBytes{},
	}

	return &DeliveryPublisher{
		Writer: writer,
		Config: cfg,
	}
}

// Enabled reports whether the publisher was actually configured.
func (p *DeliveryPublisher) Enabled() bool {
	return p.Writer != nil
}

// Close closes the Kafka writer
func (p *DeliveryPublisher) Close() error {
	if p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}

// PublishDelivery writes one delivery audit message, keyed by origin id so
// deliveries for the same record stay in one partition.
func (p *DeliveryPublisher) PublishDelivery(ctx context.Context, msg models.DeliveryAuditMessage) error {
	if p.Writer == nil {
		return nil
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.OriginID),
		Value: value,
	})
	if err != nil {
		log.Printf("Error writing delivery audit message to Kafka: %v", err)
		return err
	}

	return nil
}
