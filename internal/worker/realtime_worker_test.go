package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type flakyRelay struct {
	runs atomic.Int32
}

func (r *flakyRelay) Run(ctx context.Context) error {
	if r.runs.Add(1) < 3 {
		return errors.New("connection reset")
	}
	<-ctx.Done()
	return nil
}

func TestStartRealtimeRelayRestarts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	relay := &flakyRelay{}
	done := StartRealtimeRelay(ctx, relay, zap.NewNop())

	deadline := time.After(5 * time.Second)
	for relay.runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("relay ran %d times", relay.runs.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestStartRealtimeRelayNil(t *testing.T) {
	select {
	case <-StartRealtimeRelay(context.Background(), nil, zap.NewNop()):
	default:
		t.Fatal("nil relay should report done immediately")
	}
}
