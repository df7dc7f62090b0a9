package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrQueueFull = errors.New("notification queue is full")

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Notification is a single queued message.
type Notification struct {
	ChatID    int64
	Text      string
	CreatedAt time.Time
}

// NotificationWorker drains a bounded queue and retries failed sends with backoff.
type NotificationWorker struct {
	sender      Sender
	retryPolicy RetryPolicy
	queue       chan Notification
	logger      *zerolog.Logger

	mu        sync.Mutex
	delivered int
	dropped   int
}

func NewNotificationWorker(sender Sender, queueSize int, retry RetryPolicy, logger *zerolog.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 100
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &NotificationWorker{
		sender:      sender,
		retryPolicy: retry,
		queue:       make(chan Notification, queueSize),
		logger:      logger,
	}
}

// Enqueue never blocks. It fails with ErrQueueFull when the buffer is full.
func (w *NotificationWorker) Enqueue(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		return errors.New("notification text is required")
	}
	n := Notification{ChatID: chatID, Text: text, CreatedAt: time.Now()}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case w.queue <- n:
		return nil
	default:
		w.mu.Lock()
		w.dropped++
		w.mu.Unlock()
		return ErrQueueFull
	}
}

// Start processes notifications until ctx is canceled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.logger.Info().Int("queue_size", cap(w.queue)).Msg("Notification worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Int("pending", len(w.queue)).Msg("Notification worker stopped")
			return
		case n := <-w.queue:
			w.process(ctx, n)
		}
	}
}

func (w *NotificationWorker) process(ctx context.Context, n Notification) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries+1; attempt++ {
		err := w.sender.Send(ctx, n.ChatID, n.Text)
		if err == nil {
			w.mu.Lock()
			w.delivered++
			w.mu.Unlock()
			return
		}
		lastErr = err

		if attempt > w.retryPolicy.MaxRetries {
			break
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(lastErr).Int64("chat_id", n.ChatID).Int("attempt", attempt).Dur("retry_in", delay).Msg("Notification send failed")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	w.mu.Lock()
	w.dropped++
	w.mu.Unlock()
	w.logger.Error().Err(fmt.Errorf("giving up after %d attempts: %w", w.retryPolicy.MaxRetries+1, lastErr)).
		Int64("chat_id", n.ChatID).
		Msg("Notification dropped")
}

// Stats returns delivered and dropped counts.
func (w *NotificationWorker) Stats() (delivered, dropped int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.delivered, w.dropped
}
