// Package dispatch sends the eligible leaves of one document to a translator
// with a bounded number of concurrent calls.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/jsontranslate/internal/domain"
	"codeberg.org/snonux/jsontranslate/internal/translation"
	"codeberg.org/snonux/jsontranslate/internal/walker"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 8

// Options configures a Dispatcher.
type Options struct {
	TargetLanguage string
	// Concurrency caps the outstanding translator calls of one Dispatch.
	Concurrency int
	// CallTimeout bounds each translator call. Zero means no limit.
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Dispatcher is safe for concurrent use. Each Dispatch call is independent.
type Dispatcher struct {
	translator translation.Translator
	opts       Options
	logger     *slog.Logger
}

// New creates a Dispatcher that translates with t.
func New(t translation.Translator, opts Options) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{translator: t, opts: opts, logger: logger}
}

// Dispatch translates units and returns their outcomes indexed by ordinal.
// Identical texts are translated once. A failing call becomes a failed
// outcome for every unit holding that text; only the end of ctx aborts the
// dispatch, in which case in-flight calls are abandoned and the error wraps
// domain.ErrCancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, units []walker.Unit) ([]walker.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	if len(units) == 0 {
		return nil, nil
	}

	// Group units by text, keeping first-seen order.
	var texts []string
	holders := make(map[string][]int)
	for i, u := range units {
		if _, ok := holders[u.Text]; !ok {
			texts = append(texts, u.Text)
		}
		holders[u.Text] = append(holders[u.Text], i)
	}

	results := make([]walker.Outcome, len(texts))
	done := make(chan struct{})

	go func() {
		defer close(done)

		var g errgroup.Group
		g.SetLimit(d.opts.Concurrency)
		for i, text := range texts {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				results[i] = d.call(ctx, text)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, cancelled(ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	outcomes := make([]walker.Outcome, len(units))
	for i, text := range texts {
		res := results[i]
		for _, idx := range holders[text] {
			u := units[idx]
			o := res
			if res.Err != nil {
				o.Err = &domain.TranslationError{Path: u.Path.String(), Err: res.Err}
			}
			outcomes[u.Ordinal] = o
		}
	}

	d.logger.Debug("dispatch finished",
		"units", len(units), "calls", len(texts), "provider", d.translator.Name())

	return outcomes, nil
}

func (d *Dispatcher) call(ctx context.Context, text string) walker.Outcome {
	callCtx := ctx
	if d.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeoutCause(ctx, d.opts.CallTimeout, translation.ErrCallTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := d.translator.Translate(callCtx, text, d.opts.TargetLanguage)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", d.opts.CallTimeout, err)
		}
		d.logger.Debug("translation failed", "error", err, "duration", time.Since(start))
		return walker.Outcome{Err: err}
	}

	translated := strings.TrimSpace(res.Text)
	if translated == "" {
		return walker.Outcome{Err: fmt.Errorf("%w: empty translation", translation.ErrMalformedResponse)}
	}

	return walker.Outcome{Text: translated, Note: strings.TrimSpace(res.Note)}
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
}
