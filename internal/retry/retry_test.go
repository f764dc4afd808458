package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/tunesync/internal/shared"
)

type recordingSleeper struct {
	slept []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return ctx.Err()
}

func newTestBackoff(s Sleeper) *Backoff {
	b := New(3, 5*time.Second)
	b.Sleeper = s
	return b
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	limited := &shared.RateLimitError{Service: "test"}

	t.Run("success on first attempt", func(t *testing.T) {
		s := &recordingSleeper{}
		ok, delay := newTestBackoff(s).Execute(ctx, func(context.Context) error { return nil })
		if !ok {
			t.Error("expected success")
		}
		if delay != 5*time.Second {
			t.Errorf("expected delay 5s, got %v", delay)
		}
		if len(s.slept) != 0 {
			t.Errorf("expected no sleeps, got %v", s.slept)
		}
	})

	t.Run("always rate limited", func(t *testing.T) {
		s := &recordingSleeper{}
		calls := 0
		ok, delay := newTestBackoff(s).Execute(ctx, func(context.Context) error {
			calls++
			return limited
		})

		if ok {
			t.Error("expected failure")
		}
		if delay != 20*time.Second {
			t.Errorf("expected delay 20s, got %v", delay)
		}
		if calls != 3 {
			t.Errorf("expected 3 attempts, got %d", calls)
		}
		want := []time.Duration{5 * time.Second, 10 * time.Second}
		if len(s.slept) != len(want) {
			t.Fatalf("expected sleeps %v, got %v", want, s.slept)
		}
		for i := range want {
			if s.slept[i] != want[i] {
				t.Errorf("sleep %d: expected %v, got %v", i, want[i], s.slept[i])
			}
		}
	})

	t.Run("recovers after rate limiting and carries the delay", func(t *testing.T) {
		s := &recordingSleeper{}
		b := newTestBackoff(s)
		calls := 0
		ok, delay := b.Execute(ctx, func(context.Context) error {
			calls++
			if calls == 1 {
				return limited
			}
			return nil
		})

		if !ok || delay != 10*time.Second {
			t.Errorf("expected success with 10s delay, got %v %v", ok, delay)
		}

		b.Execute(ctx, func(context.Context) error { return limited })
		if s.slept[1] != 10*time.Second {
			t.Errorf("expected next operation to start at 10s, got %v", s.slept[1])
		}
	})

	t.Run("other errors fail immediately", func(t *testing.T) {
		s := &recordingSleeper{}
		boom := errors.New("boom")
		delay, err := newTestBackoff(s).Run(ctx, func(context.Context) error { return boom })
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if delay != 5*time.Second || len(s.slept) != 0 {
			t.Errorf("expected no backoff, got %v %v", delay, s.slept)
		}
	})

	t.Run("exhaustion wraps ErrRateLimited", func(t *testing.T) {
		b := newTestBackoff(&recordingSleeper{})
		b.Classify = func(error) Class { return RateLimited }
		_, err := b.Run(ctx, func(context.Context) error { return errors.New("slow down") })
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		calls := 0
		ok, _ := newTestBackoff(&recordingSleeper{}).Execute(cctx, func(context.Context) error {
			calls++
			return nil
		})
		if ok || calls != 0 {
			t.Errorf("expected no attempts, got ok=%v calls=%d", ok, calls)
		}
	})
}

func TestTimerSleeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := (TimerSleeper{}).Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := (TimerSleeper{}).Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClassifyShared(t *testing.T) {
	if ClassifyShared(&shared.RateLimitError{}) != RateLimited {
		t.Error("expected RateLimitError to be rate limited")
	}
	if ClassifyShared(errors.New("x")) != Other {
		t.Error("expected plain error to be other")
	}
}
