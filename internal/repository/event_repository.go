package repository

import (
	"context"
	"fmt"
	"log/slog"

	"ozzus/vendor-check/internal/domain"
	"ozzus/vendor-check/internal/repository/kafka"
)

type EventRepository interface {
	PublishEvent(ctx context.Context, event domain.SessionEvent) error
	PublishReport(ctx context.Context, report *domain.SessionReport) error
}

// publisher is the part of kafka.Producer the repository needs.
type publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
	Topic() string
}

var _ publisher = (*kafka.Producer)(nil)

type KafkaEventRepository struct {
	eventsProducer  publisher
	reportsProducer publisher
	log             *slog.Logger
}

func NewKafkaEventRepository(eventsProducer, reportsProducer *kafka.Producer, log *slog.Logger) *KafkaEventRepository {
	return newKafkaEventRepository(eventsProducer, reportsProducer, log)
}

func newKafkaEventRepository(events, reports publisher, log *slog.Logger) *KafkaEventRepository {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaEventRepository{
		eventsProducer:  events,
		reportsProducer: reports,
		log:             log,
	}
}

func (r *KafkaEventRepository) PublishEvent(ctx context.Context, event domain.SessionEvent) error {
	if err := r.eventsProducer.PublishEvent(ctx, event.SessionID, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	r.log.Debug("event published",
		slog.String("topic", r.eventsProducer.Topic()),
		slog.String("session_id", event.SessionID),
		slog.String("type", string(event.Type)),
	)
	return nil
}

func (r *KafkaEventRepository) PublishReport(ctx context.Context, report *domain.SessionReport) error {
	id := report.ID().String()
	if err := r.reportsProducer.PublishEvent(ctx, id, report); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	r.log.Info("report published",
		slog.String("topic", r.reportsProducer.Topic()),
		slog.String("session_id", id),
	)
	return nil
}
