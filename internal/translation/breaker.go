package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	// MaxFailures consecutive failures open the breaker. Zero disables it.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
}

// BreakerTranslator stops calling a failing provider for a while so that a
// large document fails fast instead of waiting on every leaf.
type BreakerTranslator struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerTranslator wraps next with a circuit breaker.
func NewBreakerTranslator(next Translator, cfg BreakerConfig, logger *slog.Logger) *BreakerTranslator {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// The caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			var a abandoned
			return err == nil || errors.Is(err, context.Canceled) || errors.As(err, &a)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("translator circuit breaker state changed",
				"provider", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerTranslator{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Translate calls the wrapped provider unless the breaker is open.
func (b *BreakerTranslator) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		res, err := b.next.Translate(ctx, text, targetLang)
		if err != nil && callerGaveUp(ctx) {
			return res, abandoned{err}
		}
		return res, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Translation{}, fmt.Errorf("%w: %s circuit open", ErrUnavailable, b.next.Name())
	}
	var a abandoned
	if errors.As(err, &a) {
		return Translation{}, a.err
	}
	if err != nil {
		return Translation{}, err
	}
	return res.(Translation), nil
}

// Name returns the provider name
func (b *BreakerTranslator) Name() string {
	return b.next.Name()
}

// IsAvailable checks the wrapped provider and the breaker state.
func (b *BreakerTranslator) IsAvailable() error {
	if b.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: %s circuit open", ErrUnavailable, b.next.Name())
	}
	return b.next.IsAvailable()
}

// abandoned wraps the error of a call whose caller stopped waiting.
type abandoned struct{ err error }

func (a abandoned) Error() string { return a.err.Error() }

func (a abandoned) Unwrap() error { return a.err }

// callerGaveUp reports whether ctx ended for a reason other than the
// per-call timeout, such as a request deadline or a client disconnect.
func callerGaveUp(ctx context.Context) bool {
	return ctx.Err() != nil && !errors.Is(context.Cause(ctx), ErrCallTimeout)
}
