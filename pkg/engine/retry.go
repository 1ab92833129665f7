package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/llmcaller/llmcaller/pkg/observability"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

// withRetry runs call up to maxAttempts times and reports how many
// attempts were consumed.
//
// Only classified provider errors participate: anything else is an
// orchestration fault and propagates immediately, as does any
// classification whose policy forbids retry. On exhaustion a fresh
// provider error is raised carrying the classification of the last
// observed failure, so a rate-limited call still reads as RATE_LIMIT
// after every retry failed.
func withRetry(ctx context.Context, log *slog.Logger, metrics *observability.Metrics, providerName string, maxAttempts int, call func(context.Context) error) (int, error) {
	attempts := 0
	for {
		attempts++

		err := call(ctx)
		if err == nil {
			return attempts, nil
		}

		var perr *provider.Error
		if !errors.As(err, &perr) {
			return attempts, err
		}
		if !perr.Retryable() {
			return attempts, err
		}

		if attempts >= maxAttempts {
			return attempts, &provider.Error{
				Class:      perr.Class,
				Message:    fmt.Sprintf("provider %s failed after %d attempts", providerName, attempts),
				RetryAfter: perr.RetryAfter,
				Cause:      perr,
			}
		}

		log.WarnContext(ctx, "retrying provider dispatch",
			"provider", providerName,
			"classification", string(perr.Class),
			"attempt", attempts,
			"maxAttempts", maxAttempts,
		)
		if metrics != nil {
			metrics.RetriesTotal.WithLabelValues(providerName, string(perr.Class)).Inc()
		}

		if ctx.Err() != nil {
			return attempts, provider.WrapNetwork(ctx.Err())
		}
	}
}
