package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/snonux/jsontranslate/internal/config"
	"codeberg.org/snonux/jsontranslate/internal/dispatch"
	"codeberg.org/snonux/jsontranslate/internal/domain"
	"codeberg.org/snonux/jsontranslate/internal/jsontree"
	"codeberg.org/snonux/jsontranslate/internal/policy"
	"codeberg.org/snonux/jsontranslate/internal/translation"
	"codeberg.org/snonux/jsontranslate/internal/walker"
)

// PayloadField is the member a request body must contain.
const PayloadField = "payload"

// Processor handles the translation of whole documents. It keeps no state
// between requests and is safe for concurrent use.
type Processor struct {
	walker         *walker.Walker
	dispatcher     *dispatch.Dispatcher
	translator     translation.Translator
	maxDepth       int
	requestTimeout time.Duration
	logger         *slog.Logger
}

// New creates a processor translating with tr according to cfg.
func New(cfg *config.Config, tr translation.Translator, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pol, err := policy.New(cfg.PolicyConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build policy: %w", err)
	}

	return &Processor{
		walker: walker.New(pol, cfg.MaxDepth).WithLogger(logger),
		dispatcher: dispatch.New(tr, dispatch.Options{
			TargetLanguage: cfg.TargetLanguage,
			Concurrency:    cfg.Concurrency,
			CallTimeout:    cfg.CallTimeout,
			Logger:         logger,
		}),
		translator:     tr,
		maxDepth:       cfg.MaxDepth,
		requestTimeout: cfg.RequestTimeout,
		logger:         logger,
	}, nil
}

// Translator returns the provider used by p.
func (p *Processor) Translator() translation.Translator {
	return p.translator
}

// ProcessRequest translates a request body. The body must be a JSON object
// with a payload member; the whole body is translated.
func (p *Processor) ProcessRequest(ctx context.Context, body []byte) (*domain.Result, error) {
	doc, err := p.parse(body)
	if err != nil {
		return nil, err
	}

	obj, ok := doc.(jsontree.Object)
	if !ok {
		return nil, p.reject(domain.ErrMissingPayload)
	}
	if _, ok := obj.Get(PayloadField); !ok {
		return nil, p.reject(domain.ErrMissingPayload)
	}

	return p.Process(ctx, doc)
}

// ProcessDocument translates any JSON document without envelope checks.
func (p *Processor) ProcessDocument(ctx context.Context, body []byte) (*domain.Result, error) {
	doc, err := p.parse(body)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, doc)
}

func (p *Processor) parse(body []byte) (jsontree.Value, error) {
	doc, err := jsontree.Parse(body, p.maxDepth)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, domain.ErrTooDeep):
		return nil, p.reject(err)
	default:
		return nil, p.reject(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
	}
}

// Process translates doc. Leaf failures are reported as notes; only a
// document that is too deep or the end of ctx fails the whole request.
func (p *Processor) Process(ctx context.Context, doc jsontree.Value) (*domain.Result, error) {
	start := time.Now()
	p.transition(domain.StateReceived)

	if p.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.requestTimeout)
		defer cancel()
	}

	p.transition(domain.StateTraversing)
	units, err := p.walker.Collect(doc)
	if err != nil {
		return nil, p.reject(err)
	}

	outcomes, err := p.dispatcher.Dispatch(ctx, units)
	if err != nil {
		return nil, p.reject(err)
	}

	p.transition(domain.StateReconstructing)
	out, notes := p.walker.Rebuild(doc, units, outcomes)

	result := &domain.Result{
		Status: domain.StatusSuccess,
		Data:   out,
		Notes:  notes,
	}
	failed := result.Failures()
	if failed > 0 {
		result.Status = domain.StatusPartialFailure
	}

	p.transition(domain.StateCompleted)
	p.logger.Info("document translated",
		"status", result.Status,
		"leaves", len(units),
		"translated", len(units)-failed,
		"failed", failed,
		"notes", len(notes),
		"duration", time.Since(start))

	return result, nil
}

func (p *Processor) transition(s domain.State) {
	p.logger.Debug("request state", "state", s.String())
}

func (p *Processor) reject(err error) error {
	p.logger.Debug("request state", "state", domain.StateRejected.String(), "error", err)
	return err
}
