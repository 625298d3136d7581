// Package notify delivers best-effort notifications off the request path.
//
// Callers enqueue and return immediately. Workers deliver in the background;
// a failed, timed-out or dropped notification is logged and counted but never
// reported back to the caller.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/virtual-events/internal/metrics"
	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
)

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n model.Notification) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n model.Notification) error

func (f SenderFunc) Send(ctx context.Context, n model.Notification) error {
	return f(ctx, n)
}

// LogSender stands in for a mail provider: it writes each message to the log.
type LogSender struct {
	From   string
	Logger zerolog.Logger
}

func (s LogSender) Send(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Logger.Info().
		Str("notification_id", n.ID).
		Str("from", s.From).
		Str("to", n.To).
		Str("subject", n.Subject).
		Msg("email sent")
	return nil
}

// Welcome builds the greeting sent after a successful registration.
func Welcome(user model.User) model.Notification {
	return model.Notification{
		To:      user.Email,
		Subject: "Welcome to Virtual Events",
		Body:    fmt.Sprintf("Hello %s, welcome!", user.Name),
	}
}

// Options sizes a Queue.
type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Queue is a bounded in-process work queue drained by a fixed worker pool.
type Queue struct {
	sender  Sender
	jobs    chan model.Notification
	workers int
	timeout time.Duration
	logger  zerolog.Logger
}

// NewQueue constructs a Queue. Nothing is delivered until Run is called.
func NewQueue(sender Sender, opts Options, logger zerolog.Logger) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Queue{
		sender:  sender,
		jobs:    make(chan model.Notification, opts.QueueSize),
		workers: opts.Workers,
		timeout: opts.Timeout,
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// Enqueue schedules n for delivery without blocking. It reports false when
// the queue is full and the notification was dropped.
func (q *Queue) Enqueue(n model.Notification) bool {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	select {
	case q.jobs <- n:
		metrics.NotificationQueueDepth.Inc()
		return true
	default:
		metrics.Notifications.WithLabelValues("dropped").Inc()
		q.logger.Warn().
			Str("notification_id", n.ID).
			Str("to", n.To).
			Msg("notification queue full, dropping")
		return false
	}
}

// Run starts the workers and blocks until ctx is cancelled and every worker
// has returned. Notifications still queued at shutdown are discarded.
func (q *Queue) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			q.work(ctx, worker)
		}(i)
	}
	wg.Wait()

	if pending := len(q.jobs); pending > 0 {
		q.logger.Warn().Int("pending", pending).Msg("notification queue stopped with undelivered messages")
	}
	return nil
}

func (q *Queue) work(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-q.jobs:
			metrics.NotificationQueueDepth.Dec()
			q.deliver(ctx, worker, n)
		}
	}
}

func (q *Queue) deliver(ctx context.Context, worker int, n model.Notification) {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	logger := q.logger.With().
		Int("worker", worker).
		Str("notification_id", n.ID).
		Str("to", n.To).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			metrics.Notifications.WithLabelValues("failed").Inc()
			logger.Error().Interface("panic", r).Msg("notification sender panicked")
		}
	}()

	if err := q.sender.Send(ctx, n); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Msg("notification delivery failed")
		return
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
	logger.Debug().Msg("notification delivered")
}
