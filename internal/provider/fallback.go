package provider

import (
	"context"
	"errors"
	"time"
)

// AttemptFunc performs one backend call for a single model.
type AttemptFunc[T any] func(ctx context.Context, model string) (T, error)

// FirstSuccess calls fn for each model in order and returns the first
// successful result. Each call gets its own timeout when timeout > 0; a
// timed-out call counts as a failure and the next model is tried. If the
// parent context is done, iteration stops and its error is returned.
// When every model fails the result is an *ExhaustedError.
func FirstSuccess[T any](ctx context.Context, provider string, models []string, timeout time.Duration, fn AttemptFunc[T]) (T, error) {
	var zero T
	if len(models) == 0 {
		return zero, &ConfigurationError{Provider: provider, Variable: "model candidates"}
	}

	attempts := make([]Attempt, 0, len(models))
	for _, model := range models {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := callWithTimeout(ctx, timeout, model, fn)
		if err == nil {
			return result, nil
		}

		// A config error applies to every candidate; stop early.
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return zero, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		attempts = append(attempts, Attempt{Model: model, Err: err})
	}

	return zero, &ExhaustedError{Provider: provider, Attempts: attempts}
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, model string, fn AttemptFunc[T]) (T, error) {
	if timeout <= 0 {
		return fn(ctx, model)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx, model)
}
