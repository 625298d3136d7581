package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func runQueue(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = q.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestQueueDelivers(t *testing.T) {
	sender := &recordingSender{}
	q := NewQueue(sender, Options{Workers: 2, QueueSize: 10}, zerolog.Nop())
	runQueue(t, q)

	ok := q.Enqueue(Welcome(model.User{Name: "Alice", Email: "alice@example.com"}))
	require.True(t, ok)

	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 5*time.Millisecond)

	sender.mu.Lock()
	n := sender.sent[0]
	sender.mu.Unlock()
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "alice@example.com", n.To)
	assert.Equal(t, "Welcome to Virtual Events", n.Subject)
	assert.Equal(t, "Hello Alice, welcome!", n.Body)
}

func TestQueueSwallowsFailures(t *testing.T) {
	var logs bytes.Buffer
	sender := &recordingSender{err: errors.New("smtp down")}
	q := NewQueue(sender, Options{Workers: 1, QueueSize: 10}, zerolog.New(&logs))
	runQueue(t, q)

	assert.True(t, q.Enqueue(model.Notification{To: "a@example.com"}))
	assert.True(t, q.Enqueue(model.Notification{To: "b@example.com"}))

	require.Eventually(t, func() bool { return sender.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestQueueRecoversFromPanics(t *testing.T) {
	var calls sync.WaitGroup
	calls.Add(2)
	sender := SenderFunc(func(_ context.Context, n model.Notification) error {
		defer calls.Done()
		if n.To == "boom@example.com" {
			panic("boom")
		}
		return nil
	})
	q := NewQueue(sender, Options{Workers: 1, QueueSize: 10}, zerolog.Nop())
	runQueue(t, q)

	q.Enqueue(model.Notification{To: "boom@example.com"})
	q.Enqueue(model.Notification{To: "fine@example.com"})

	done := make(chan struct{})
	go func() {
		calls.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive sender panic")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	// Not running: nothing drains the queue.
	q := NewQueue(&recordingSender{}, Options{Workers: 1, QueueSize: 1}, zerolog.Nop())

	assert.True(t, q.Enqueue(model.Notification{To: "first@example.com"}))
	assert.False(t, q.Enqueue(model.Notification{To: "second@example.com"}))
}

func TestQueueAppliesTimeout(t *testing.T) {
	errs := make(chan error, 1)
	sender := SenderFunc(func(ctx context.Context, _ model.Notification) error {
		<-ctx.Done()
		errs <- ctx.Err()
		return ctx.Err()
	})
	q := NewQueue(sender, Options{Workers: 1, QueueSize: 1, Timeout: 20 * time.Millisecond}, zerolog.Nop())
	runQueue(t, q)

	q.Enqueue(model.Notification{To: "slow@example.com"})

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("sender was not cancelled")
	}
}

func TestLogSender(t *testing.T) {
	var logs bytes.Buffer
	s := LogSender{From: "noreply@example.com", Logger: zerolog.New(&logs)}

	require.NoError(t, s.Send(context.Background(), model.Notification{ID: "n1", To: "a@example.com", Subject: "hi"}))
	assert.Contains(t, logs.String(), `"to":"a@example.com"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Send(ctx, model.Notification{To: "a@example.com"}))
}
