// Package retry runs remote mutations with exponential backoff on rate limiting.
//
// An operation moves through a small state machine:
//
//	Attempting -> Success            return true
//	Attempting -> RateLimited        sleep, double the delay, attempt again
//	Attempting -> Fatal              return false immediately
//
// Rate-limited attempts stop after MaxRetries tries. The delay reached by one operation is
// carried into the next one run through the same [Backoff], so a run that has been throttled
// keeps its larger spacing.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/shared"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 5 * time.Second
)

// Class is the retry classification of an error.
type Class int

const (
	Other Class = iota
	RateLimited
)

func (c Class) String() string {
	switch c {
	case RateLimited:
		return "rate_limited"
	default:
		return "other"
	}
}

// Classifier decides whether an error is worth retrying.
type Classifier func(error) Class

// ClassifyShared treats errors matching [shared.ErrRateLimited] as rate limiting.
func ClassifyShared(err error) Class {
	if shared.IsRateLimited(err) {
		return RateLimited
	}
	return Other
}

// Operation is a single remote call.
type Operation func(ctx context.Context) error

// State is the position of a running operation in the backoff loop.
type State struct {
	Attempt int
	Delay   time.Duration
}

// Backoff retries rate-limited operations. It is not safe for concurrent use.
type Backoff struct {
	MaxRetries int
	Delay      time.Duration
	Sleeper    Sleeper
	Classify   Classifier
	Logger     *log.Logger
}

// New returns a [Backoff] with the given limits, a real timer and [ClassifyShared].
func New(maxRetries int, initialDelay time.Duration) *Backoff {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	return &Backoff{
		MaxRetries: maxRetries,
		Delay:      initialDelay,
		Sleeper:    TimerSleeper{},
		Classify:   ClassifyShared,
	}
}

// Execute runs op and reports whether it succeeded along with the delay carried forward.
func (b *Backoff) Execute(ctx context.Context, op Operation) (bool, time.Duration) {
	_, err := b.Run(ctx, op)
	return err == nil, b.Delay
}

// Run is [Backoff.Execute] returning the final error instead of a flag.
//
// Errors from exhausted retries wrap [shared.ErrRateLimited].
func (b *Backoff) Run(ctx context.Context, op Operation) (time.Duration, error) {
	sleeper := b.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}
	classify := b.Classify
	if classify == nil {
		classify = ClassifyShared
	}
	logger := b.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	maxRetries := max(b.MaxRetries, 1)

	state := State{Delay: b.Delay}
	defer func() { b.Delay = state.Delay }()

	for {
		if err := ctx.Err(); err != nil {
			return state.Delay, err
		}

		err := op(ctx)
		if err == nil {
			return state.Delay, nil
		}

		if classify(err) != RateLimited {
			return state.Delay, err
		}

		if state.Attempt >= maxRetries-1 {
			if !errors.Is(err, shared.ErrRateLimited) {
				err = fmt.Errorf("%w: %w", shared.ErrRateLimited, err)
			}
			logger.Warn("Giving up after repeated rate limiting", "attempts", state.Attempt+1)
			return state.Delay, err
		}

		logger.Warn("Rate limited, backing off", "attempt", state.Attempt+1, "delay", state.Delay)
		if err := sleeper.Sleep(ctx, state.Delay); err != nil {
			return state.Delay, err
		}
		state.Delay *= 2
		state.Attempt++
	}
}
