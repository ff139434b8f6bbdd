package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/2005arun/Food-ordering/internal/order/domain"
	r "github.com/2005arun/Food-ordering/internal/order/repository"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEventRepository struct {
	m         sync.Mutex
	events    []*r.OutboxEvent
	fetchErr  error
	markErr   error
	processed []uuid.UUID
}

func (m *mockEventRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*r.OutboxEvent, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if len(m.events) > limit {
		return m.events[:limit], nil
	}
	return m.events, nil
}

func (m *mockEventRepository) MarkEventAsProcessed(_ context.Context, id uuid.UUID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.processed = append(m.processed, id)
	return nil
}

func (m *mockEventRepository) Create(context.Context, *domain.Order, *r.OutboxEvent) error {
	return nil
}

func (m *mockEventRepository) GetByID(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, r.ErrOrderNotFound
}

func (m *mockEventRepository) ListByOwner(context.Context, string, int, int) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func (m *mockEventRepository) UpdateStatus(context.Context, uuid.UUID, domain.OrderStatus) (*domain.Order, error) {
	return nil, r.ErrOrderNotFound
}

func (m *mockEventRepository) UpdatePaymentStatus(context.Context, uuid.UUID, domain.PaymentStatus, string) (*domain.Order, error) {
	return nil, r.ErrOrderNotFound
}

func (m *mockEventRepository) RunMigrations(*r.Credentials) error { return nil }
func (m *mockEventRepository) Close() error                       { return nil }

type mockWriter struct {
	m        sync.Mutex
	messages []kafka.Message
	err      error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func outboxEvent(aggregateID string) *r.OutboxEvent {
	return &r.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   EventTypeOrderCreated,
		Payload:     []byte(`{"order_id":"` + aggregateID + `","owner_id":"user1"}`),
		CreatedAt:   time.Now(),
	}
}

func newTestPoller(repo *mockEventRepository, writer *mockWriter) *Poller {
	return &Poller{tick: time.Second, batch: 100, repo: repo, writer: writer}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	e1 := outboxEvent(uuid.NewString())
	e2 := outboxEvent(uuid.NewString())
	repo := &mockEventRepository{events: []*r.OutboxEvent{e1, e2}}
	writer := &mockWriter{}
	p := newTestPoller(repo, writer)

	p.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, []byte(e1.AggregateID), writer.messages[0].Key)
	assert.Equal(t, e1.Payload, writer.messages[0].Value)
	require.Len(t, writer.messages[0].Headers, 1)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, []byte(EventTypeOrderCreated), writer.messages[0].Headers[0].Value)

	assert.Equal(t, []uuid.UUID{e1.ID, e2.ID}, repo.processed)
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventUnmarked(t *testing.T) {
	repo := &mockEventRepository{events: []*r.OutboxEvent{outboxEvent(uuid.NewString())}}
	writer := &mockWriter{err: errors.New("broker unavailable")}
	p := newTestPoller(repo, writer)

	p.processUnpublishedEvents(context.Background())

	assert.Empty(t, repo.processed)
}

func TestProcessUnpublishedEvents_MarkFailureDoesNotPanic(t *testing.T) {
	repo := &mockEventRepository{
		events:  []*r.OutboxEvent{outboxEvent(uuid.NewString())},
		markErr: errors.New("db down"),
	}
	writer := &mockWriter{}
	p := newTestPoller(repo, writer)

	p.processUnpublishedEvents(context.Background())

	// Message went out even though the mark failed; the event will be
	// republished on the next tick, which the consumer tolerates.
	assert.Len(t, writer.messages, 1)
	assert.Empty(t, repo.processed)
}

func TestProcessUnpublishedEvents_FetchFailureIsSilent(t *testing.T) {
	repo := &mockEventRepository{fetchErr: errors.New("db down")}
	writer := &mockWriter{}
	p := newTestPoller(repo, writer)

	p.processUnpublishedEvents(context.Background())

	assert.Empty(t, writer.messages)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := &mockEventRepository{}
	p := &Poller{tick: 10 * time.Millisecond, batch: 100, repo: repo, writer: &mockWriter{}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
