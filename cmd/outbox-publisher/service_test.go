package main

import (
	"context"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/autohaus-digital/backend/pkg/config"
	"github.com/autohaus-digital/backend/pkg/db/models"
	"github.com/autohaus-digital/backend/pkg/enums"
	"github.com/autohaus-digital/backend/pkg/logger"
)

type stubRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (s *stubRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if len(s.events) > limit {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func (s *stubRepo) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubRepo) MarkFailed(id uuid.UUID, err error) error {
	s.failed = append(s.failed, id)
	return nil
}

type stubResult struct {
	err error
}

func (s stubResult) Get(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "msg-1", nil
}

type stubPublisher struct {
	err      error
	messages []*gcppubsub.Message
}

func (s *stubPublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	s.messages = append(s.messages, msg)
	return stubResult{err: s.err}
}

func testService(t *testing.T, repo *stubRepo, pub *stubPublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config: &config.Config{Outbox: config.OutboxConfig{
			BatchSize:      10,
			PollIntervalMS: 10,
			MaxAttempts:    5,
		}},
		Logger:    logger.New(logger.Options{ServiceName: "outbox-test"}),
		Repo:      repo,
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func sampleEvent() models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1}`),
		CreatedAt:     time.Now(),
	}
}

func TestDrainOncePublishesAndMarks(t *testing.T) {
	event := sampleEvent()
	repo := &stubRepo{events: []models.OutboxEvent{event}}
	pub := &stubPublisher{}
	svc := testService(t, repo, pub)

	if err := svc.drainOnce(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Attributes["event_type"] != string(enums.EventOrderCreated) {
		t.Fatalf("event type attribute missing: %v", msg.Attributes)
	}
	if msg.Attributes["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("aggregate id attribute missing: %v", msg.Attributes)
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("event not marked published: %v", repo.published)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("no failures expected: %v", repo.failed)
	}
}

func TestDrainOnceMarksFailedOnBrokerError(t *testing.T) {
	event := sampleEvent()
	repo := &stubRepo{events: []models.OutboxEvent{event}}
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := testService(t, repo, pub)

	if err := svc.drainOnce(context.Background()); err != nil {
		t.Fatalf("drain should not fail the whole batch: %v", err)
	}

	if len(repo.published) != 0 {
		t.Fatalf("failed event must stay unpublished")
	}
	if len(repo.failed) != 1 || repo.failed[0] != event.ID {
		t.Fatalf("event not marked failed: %v", repo.failed)
	}
}

func TestDrainOnceRespectsBatchSize(t *testing.T) {
	repo := &stubRepo{}
	for i := 0; i < 15; i++ {
		repo.events = append(repo.events, sampleEvent())
	}
	pub := &stubPublisher{}
	svc := testService(t, repo, pub)

	if err := svc.drainOnce(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(pub.messages) != 10 {
		t.Fatalf("expected batch of 10, got %d", len(pub.messages))
	}
}

func TestNewServiceRequiresPublisher(t *testing.T) {
	_, err := NewService(ServiceParams{
		Config: &config.Config{},
		Logger: logger.New(logger.Options{ServiceName: "outbox-test"}),
		Repo:   &stubRepo{},
	})
	if err == nil {
		t.Fatal("expected missing publisher error")
	}
}
