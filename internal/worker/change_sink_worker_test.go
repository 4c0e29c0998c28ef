package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/events"
)

// blockingSink holds every write until release is closed or the write context ends.
type blockingSink struct {
	release chan struct{}

	mu      sync.Mutex
	written []string
	expired int
}

func (s *blockingSink) SendChange(ctx context.Context, event events.ChangeEvent) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		s.mu.Lock()
		s.expired++
		s.mu.Unlock()
		return ctx.Err()
	}
	s.mu.Lock()
	s.written = append(s.written, event.Key)
	s.mu.Unlock()
	return nil
}

func (s *blockingSink) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

func changeFor(t *testing.T, key string) events.ChangeEvent {
	t.Helper()
	event, err := events.NewChangeEvent(events.TableMessages, events.ChangeInsert, key, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return event
}

func TestSinkQueueDoesNotBlockOnSlowSink(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	queue := NewSinkQueue(sink, 4, time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := queue.Start(ctx)

	start := time.Now()
	for _, key := range []string{"m-1", "m-2", "m-3"} {
		if err := queue.SendChange(context.Background(), changeFor(t, key)); err != nil {
			t.Fatalf("SendChange(%s): %v", key, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("SendChange blocked for %v", elapsed)
	}

	close(sink.release)
	deadline := time.After(2 * time.Second)
	for len(sink.keys()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("written = %v", sink.keys())
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := sink.keys(); got[0] != "m-1" || got[2] != "m-3" {
		t.Fatalf("written out of order: %v", got)
	}

	cancel()
	<-done
}

func TestSinkQueueFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	queue := NewSinkQueue(sink, 1, time.Minute, zap.NewNop())

	if err := queue.SendChange(context.Background(), changeFor(t, "m-1")); err != nil {
		t.Fatal(err)
	}
	if err := queue.SendChange(context.Background(), changeFor(t, "m-2")); !errors.Is(err, ErrSinkQueueFull) {
		t.Fatalf("err = %v, want ErrSinkQueueFull", err)
	}
}

func TestSinkQueueWriteTimeout(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	queue := NewSinkQueue(sink, 2, 20*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := queue.Start(ctx)

	if err := queue.SendChange(context.Background(), changeFor(t, "m-1")); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(2 * time.Second)
	for {
		sink.mu.Lock()
		expired := sink.expired
		sink.mu.Unlock()
		if expired == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("write was not bounded by the timeout")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestSinkQueueFlushesOnStop(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	close(sink.release)
	queue := NewSinkQueue(sink, 4, time.Second, zap.NewNop())

	for _, key := range []string{"m-1", "m-2"} {
		if err := queue.SendChange(context.Background(), changeFor(t, key)); err != nil {
			t.Fatal(err)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	select {
	case <-queue.Start(ctx):
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	if got := sink.keys(); len(got) != 2 {
		t.Fatalf("flushed = %v", got)
	}
}
