// Package lambdaapi exposes the processor as an AWS Lambda handler. Events
// carry the same body as POST /translate and get the same envelope back.
package lambdaapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"codeberg.org/snonux/jsontranslate/internal/domain"
	"codeberg.org/snonux/jsontranslate/internal/processor"
	"codeberg.org/snonux/jsontranslate/internal/translation"
)

const (
	// WarmupSource identifies warmup events from scheduled rules.
	WarmupSource = "warmup"

	// DefaultWarmupDelay keeps warmed instances busy long enough to overlap.
	DefaultWarmupDelay = 75 * time.Millisecond

	// MaxWarmupConcurrency caps the instances one warmup event may start.
	MaxWarmupConcurrency = 50
)

// WarmupEvent is the payload of a warmup invocation.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is returned for warmup invocations.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Handler serves Lambda invocations.
type Handler struct {
	proc   *processor.Processor
	logger *slog.Logger

	// Invoker and FunctionName enable warming additional instances; without
	// them only the current instance is warmed.
	Invoker      translation.LambdaInvoker
	FunctionName string
	WarmupDelay  time.Duration
}

// NewHandler creates a handler translating with proc.
func NewHandler(proc *processor.Processor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{proc: proc, logger: logger, WarmupDelay: DefaultWarmupDelay}
}

// Handle processes one invocation. Request failures are reported in the
// error envelope, not as function errors.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (any, error) {
	// Warmup detection comes before anything else.
	if warmup, ok := IsWarmupEvent(event); ok {
		return h.handleWarmup(ctx, warmup), nil
	}

	result, err := h.proc.ProcessRequest(ctx, event)
	if err != nil {
		h.logger.Warn("invocation rejected", "error", err)
		return domain.ErrorResponse(err), nil
	}
	return domain.NewResponse(result), nil
}

// IsWarmupEvent checks if the event is a warmup event
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var eventMap map[string]any
	if err := json.Unmarshal(event, &eventMap); err != nil {
		return nil, false
	}

	source, ok := eventMap["source"].(string)
	if !ok || source != WarmupSource {
		return nil, false
	}

	// A request body is never mistaken for a warmup event.
	if _, ok := eventMap[processor.PayloadField]; ok {
		return nil, false
	}

	warmup := &WarmupEvent{Source: source}
	if concurrency, ok := eventMap["concurrency"].(float64); ok && concurrency > 0 {
		warmup.Concurrency = int(min(concurrency, MaxWarmupConcurrency))
	}
	return warmup, true
}

func (h *Handler) handleWarmup(ctx context.Context, warmup *WarmupEvent) *WarmupResponse {
	instancesWarmed := 1 // this instance

	if warmup.Concurrency > 0 && h.Invoker != nil && h.FunctionName != "" {
		if err := h.selfInvoke(ctx, warmup.Concurrency); err != nil {
			h.logger.Warn("warmup self-invocation failed", "error", err)
		} else {
			instancesWarmed += warmup.Concurrency
		}
	}

	if h.WarmupDelay > 0 {
		select {
		case <-time.After(h.WarmupDelay):
		case <-ctx.Done():
		}
	}

	return &WarmupResponse{Status: "warm", InstancesWarmed: instancesWarmed}
}

// selfInvoke invokes this function count times asynchronously.
func (h *Handler) selfInvoke(ctx context.Context, count int) error {
	// Child invocations must not fan out again.
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		invokeErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := h.Invoker.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(h.FunctionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				mu.Lock()
				if invokeErr == nil {
					invokeErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return invokeErr
}
