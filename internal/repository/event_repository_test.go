package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ozzus/vendor-check/internal/domain"
)

type mockPublisher struct {
	topic string
	keys  []string
	sent  []interface{}
	err   error
}

func (m *mockPublisher) PublishEvent(_ context.Context, key string, event interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, key)
	m.sent = append(m.sent, event)
	return nil
}

func (m *mockPublisher) Topic() string { return m.topic }

func TestKafkaEventRepository(t *testing.T) {
	events := &mockPublisher{topic: "events"}
	reports := &mockPublisher{topic: "reports"}
	repo := newKafkaEventRepository(events, reports, nil)
	ctx := context.Background()

	report := newReport(t, domain.OutcomePassed)
	event := domain.SessionEvent{
		SessionID: report.ID().String(),
		Type:      domain.EventCheckStarted,
		Kind:      domain.CheckFranchiseTaxStatus,
		Timestamp: time.Now(),
	}

	if err := repo.PublishEvent(ctx, event); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}
	if err := repo.PublishReport(ctx, report); err != nil {
		t.Fatalf("PublishReport: %v", err)
	}

	if len(events.keys) != 1 || events.keys[0] != report.ID().String() {
		t.Errorf("event keys = %v", events.keys)
	}
	if len(reports.sent) != 1 || reports.sent[0] != report {
		t.Errorf("reports sent = %v", reports.sent)
	}
}

func TestKafkaEventRepository_WrapsErrors(t *testing.T) {
	boom := errors.New("broker down")
	repo := newKafkaEventRepository(&mockPublisher{err: boom}, &mockPublisher{err: boom}, nil)

	err := repo.PublishEvent(context.Background(), domain.SessionEvent{SessionID: "s"})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
