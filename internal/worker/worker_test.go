package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []Notification
}

func (f *fakeSender) Send(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, Notification{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeSender) snapshot() (int, []Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]Notification(nil), f.sent...)
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestProcessSuccess(t *testing.T) {
	sender := &fakeSender{}
	logger := zerolog.Nop()
	w := NewNotificationWorker(sender, 4, fastRetry(), &logger)

	w.process(context.Background(), Notification{ChatID: 10, Text: "hello"})

	calls, sent := sender.snapshot()
	assert.Equal(t, 1, calls)
	require.Len(t, sent, 1)
	assert.Equal(t, int64(10), sent[0].ChatID)
	delivered, dropped := w.Stats()
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 0, dropped)
}

func TestProcessRetry(t *testing.T) {
	sender := &fakeSender{failures: 2}
	logger := zerolog.Nop()
	w := NewNotificationWorker(sender, 4, fastRetry(), &logger)

	w.process(context.Background(), Notification{ChatID: 10, Text: "hello"})

	calls, sent := sender.snapshot()
	assert.Equal(t, 3, calls)
	assert.Len(t, sent, 1)
}

func TestProcessFail(t *testing.T) {
	sender := &fakeSender{failures: 10}
	logger := zerolog.Nop()
	w := NewNotificationWorker(sender, 4, fastRetry(), &logger)

	w.process(context.Background(), Notification{ChatID: 10, Text: "hello"})

	calls, sent := sender.snapshot()
	assert.Equal(t, 3, calls)
	assert.Empty(t, sent)
	_, dropped := w.Stats()
	assert.Equal(t, 1, dropped)
}

func TestProcessCanceledDuringBackoff(t *testing.T) {
	sender := &fakeSender{failures: 10}
	logger := zerolog.Nop()
	w := NewNotificationWorker(sender, 4, RetryPolicy{MaxRetries: 5, InitialDelay: time.Hour}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.process(ctx, Notification{ChatID: 1, Text: "x"})

	calls, _ := sender.snapshot()
	assert.Equal(t, 1, calls)
}

func TestEnqueue(t *testing.T) {
	logger := zerolog.Nop()
	w := NewNotificationWorker(&fakeSender{}, 1, fastRetry(), &logger)
	ctx := context.Background()

	require.NoError(t, w.Enqueue(ctx, 1, "first"))
	assert.ErrorIs(t, w.Enqueue(ctx, 1, "second"), ErrQueueFull)
	assert.Error(t, w.Enqueue(ctx, 1, ""))
}

func TestStartDrainsQueue(t *testing.T) {
	sender := &fakeSender{}
	logger := zerolog.Nop()
	w := NewNotificationWorker(sender, 8, fastRetry(), &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Enqueue(ctx, int64(i), "msg"))
	}

	assert.Eventually(t, func() bool {
		_, sent := sender.snapshot()
		return len(sent) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffFactor: 2}
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, p.NextDelay(2))
	assert.Equal(t, 300*time.Millisecond, p.NextDelay(3))
	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
}
