package payment

import (
	"context"
	"math/rand"
	"time"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
	defaultMaxDelay   = 10 * time.Second
	maxJitter         = time.Second
)

// RetryHandler retries payment operations that fail with retryable
// errors. MaxRetries counts total attempts, not re-attempts: a handler
// with three retries runs an operation at most three times.
type RetryHandler struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *logger.Logger
	errorLog   *ErrorLog
}

func NewRetryHandler(cfg config.RetryConfig, log *logger.Logger, errorLog *ErrorLog) *RetryHandler {
	h := &RetryHandler{
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
		logger:     log,
		errorLog:   errorLog,
	}
	if h.maxRetries <= 0 {
		h.maxRetries = defaultMaxRetries
	}
	if h.baseDelay <= 0 {
		h.baseDelay = defaultBaseDelay
	}
	if h.maxDelay <= 0 {
		h.maxDelay = defaultMaxDelay
	}
	return h
}

// Execute runs the operation, retrying on retryable payment errors with
// exponential backoff and jitter. Non-retryable errors surface
// immediately; after exhausting attempts the last error surfaces.
func (h *RetryHandler) Execute(ctx context.Context, opName string, op func(ctx context.Context) error) error {
	attempt := 0

	wrapped := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		paymentErr := Normalize(err)
		if !paymentErr.Retryable {
			return backoff.Permanent(paymentErr)
		}
		return paymentErr
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(h.newBackOff(), uint64(h.maxRetries-1)),
		ctx,
	)

	notify := func(err error, delay time.Duration) {
		paymentErr := Normalize(err)
		h.errorLog.Log(paymentErr, map[string]any{
			"context":     opName,
			"attempt":     attempt,
			"retry_after": delay,
		})
		if h.logger != nil {
			h.logger.Warnw("retrying payment operation",
				"operation", opName,
				"attempt", attempt,
				"retry_after", delay,
				"error_type", paymentErr.Type,
			)
		}
	}

	if err := backoff.RetryNotify(wrapped, policy, notify); err != nil {
		return Normalize(err)
	}
	return nil
}

// Execute runs a value-returning operation through a retry handler.
func Execute[T any](ctx context.Context, h *RetryHandler, opName string, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := h.Execute(ctx, opName, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// expJitterBackOff doubles the delay on each retry up to a cap, then adds
// up to a second of jitter so concurrent clients do not retry in step.
type expJitterBackOff struct {
	attempt   int
	baseDelay time.Duration
	maxDelay  time.Duration
}

func (h *RetryHandler) newBackOff() backoff.BackOff {
	return &expJitterBackOff{baseDelay: h.baseDelay, maxDelay: h.maxDelay}
}

func (b *expJitterBackOff) NextBackOff() time.Duration {
	b.attempt++

	delay := b.baseDelay
	for i := 1; i < b.attempt; i++ {
		delay *= 2
		if delay >= b.maxDelay {
			delay = b.maxDelay
			break
		}
	}
	if delay > b.maxDelay {
		delay = b.maxDelay
	}

	return delay + time.Duration(rand.Int63n(int64(maxJitter)))
}

func (b *expJitterBackOff) Reset() {
	b.attempt = 0
}
