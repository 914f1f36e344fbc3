package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/internal/amqp"
	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/store"
)

type fakeSource struct {
	mu      sync.Mutex
	bills   map[string]core.Bill
	order   []string
	synced  map[string]bool
	getErr  error
	markErr error
}

func newFakeSource(bills ...core.Bill) *fakeSource {
	s := &fakeSource{bills: map[string]core.Bill{}, synced: map[string]bool{}}
	for _, b := range bills {
		s.bills[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	return s
}

func (s *fakeSource) GetBill(_ context.Context, id string) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return core.Bill{}, s.getErr
	}
	b, ok := s.bills[id]
	if !ok {
		return core.Bill{}, store.NotFound("get bill", nil)
	}
	return b, nil
}

func (s *fakeSource) PendingSync(_ context.Context, limit int) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Bill
	for _, id := range s.order {
		if !s.synced[id] && len(out) < limit {
			out = append(out, s.bills[id])
		}
	}
	return out, nil
}

func (s *fakeSource) MarkSynced(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	s.synced[id] = true
	return nil
}

type fakeMirror struct {
	mu     sync.Mutex
	rows   []core.Bill
	failID string
}

func (m *fakeMirror) Mirror(_ context.Context, b core.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == m.failID {
		return errors.New("Erreur 500")
	}
	m.rows = append(m.rows, b)
	return nil
}

func (m *fakeMirror) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.rows))
	for i, b := range m.rows {
		out[i] = b.ID
	}
	return out
}

type fakeConsumer struct {
	messages []*amqp.BillCreatedMessage
	handled  chan error
}

func (c *fakeConsumer) ConsumeBillCreated(ctx context.Context, handler func(context.Context, *amqp.BillCreatedMessage) error) error {
	for _, m := range c.messages {
		c.handled <- handler(ctx, m)
	}
	<-ctx.Done()
	return ctx.Err()
}

func bill(id string) core.Bill {
	return core.Bill{ID: id, Email: "a@a", Date: "2022-01-01", Status: "pending"}
}

func TestHandleBillCreated(t *testing.T) {
	src := newFakeSource(bill("1"))
	mirror := &fakeMirror{}
	w := NewSyncWorker(src, mirror, 10, log.Discard())

	require.NoError(t, w.HandleBillCreated(context.Background(), amqp.NewBillCreatedMessage("1", "a@a")))
	assert.Equal(t, []string{"1"}, mirror.ids())
	assert.True(t, src.synced["1"])
}

func TestHandleBillCreated_MissingBillIsDropped(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewSyncWorker(newFakeSource(), mirror, 10, log.Discard())

	assert.NoError(t, w.HandleBillCreated(context.Background(), amqp.NewBillCreatedMessage("ghost", "a@a")))
	assert.Empty(t, mirror.ids())
}

func TestHandleBillCreated_StorageErrorRequeues(t *testing.T) {
	src := newFakeSource(bill("1"))
	src.getErr = store.ServerError("get bill", errors.New("disk I/O error"))
	w := NewSyncWorker(src, &fakeMirror{}, 10, log.Discard())

	assert.Error(t, w.HandleBillCreated(context.Background(), amqp.NewBillCreatedMessage("1", "a@a")))
}

func TestHandleBillCreated_MirrorFailureLeavesPending(t *testing.T) {
	src := newFakeSource(bill("1"))
	w := NewSyncWorker(src, &fakeMirror{failID: "1"}, 10, log.Discard())

	assert.Error(t, w.HandleBillCreated(context.Background(), amqp.NewBillCreatedMessage("1", "a@a")))
	assert.False(t, src.synced["1"])
}

func TestProcessPending(t *testing.T) {
	src := newFakeSource(bill("1"), bill("2"), bill("3"))
	mirror := &fakeMirror{failID: "2"}
	w := NewSyncWorker(src, mirror, 10, log.Discard())

	synced, err := w.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, synced)
	assert.Equal(t, []string{"1", "3"}, mirror.ids())

	pending, _ := src.PendingSync(context.Background(), 10)
	require.Len(t, pending, 1)
	assert.Equal(t, "2", pending[0].ID)
}

func TestProcessPending_BatchSize(t *testing.T) {
	src := newFakeSource(bill("1"), bill("2"), bill("3"))
	mirror := &fakeMirror{}
	w := NewSyncWorker(src, mirror, 2, log.Discard())

	synced, err := w.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, synced)

	synced, err = w.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Equal(t, []string{"1", "2", "3"}, mirror.ids())
}

func TestProcessPending_MarkFailureStillCountsMirrored(t *testing.T) {
	src := newFakeSource(bill("1"))
	src.markErr = errors.New("database is locked")
	mirror := &fakeMirror{}
	w := NewSyncWorker(src, mirror, 10, log.Discard())

	synced, err := w.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
}

func TestRun_ConsumesAndStopsOnCancel(t *testing.T) {
	src := newFakeSource(bill("1"))
	mirror := &fakeMirror{}
	consumer := &fakeConsumer{
		messages: []*amqp.BillCreatedMessage{amqp.NewBillCreatedMessage("1", "a@a")},
		handled:  make(chan error, 1),
	}
	w := NewSyncWorker(src, mirror, 10, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer, time.Hour) }()

	select {
	case err := <-consumer.handled:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("message not handled")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, src.synced["1"])
}

func TestRun_SweepWithoutConsumer(t *testing.T) {
	src := newFakeSource(bill("1"), bill("2"))
	mirror := &fakeMirror{}
	w := NewSyncWorker(src, mirror, 10, log.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, w.Run(ctx, nil, 20*time.Millisecond))
	assert.ElementsMatch(t, []string{"1", "2"}, mirror.ids())
}
