package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kolapay/paygate/internal/config"
	"github.com/kolapay/paygate/pkg/log"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// ReconciledEvent is emitted once per transaction, on its first arrival
// into a terminal status.
type ReconciledEvent struct {
	Reference        string    `json:"reference"`
	Status           string    `json:"status"`
	GatewayReference string    `json:"gateway_reference"`
	Channel          string    `json:"channel"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher notifies downstream consumers of reconciled outcomes. Publish
// failures must never fail the reconciliation that triggered them.
type Publisher interface {
	PublishReconciled(ctx context.Context, event ReconciledEvent)
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	logger *zerolog.Logger
}

// NewPublisher returns a kafka-backed publisher, or a no-op one when no
// broker is configured.
func NewPublisher(cfg config.Kafka) Publisher {
	if cfg.Broker == "" {
		return NoopPublisher{}
	}

	l := log.GetLogger()
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.ReconciledTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &kafkaPublisher{writer: writer, logger: &l}
}

func (p *kafkaPublisher) PublishReconciled(ctx context.Context, event ReconciledEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("reference", event.Reference).Msg("Failed to encode reconciled event")
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Reference),
		Value: value,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("reference", event.Reference).Msg("Failed to publish reconciled event")
	}
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishReconciled(context.Context, ReconciledEvent) {}

func (NoopPublisher) Close() error { return nil }
