package storage

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

type retryPolicy struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxRetries      uint64
}

var connectRetry = retryPolicy{
	initialInterval: 500 * time.Millisecond,
	maxInterval:     10 * time.Second,
	maxRetries:      5,
}

// connectWithRetry runs connect with exponential backoff until it succeeds,
// the retries run out, or ctx is done.
func connectWithRetry(ctx context.Context, logger *zap.Logger, target string, connect func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = connectRetry.initialInterval
	bo.MaxInterval = connectRetry.maxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, connectRetry.maxRetries), ctx)
	return backoff.RetryNotify(connect, policy, func(err error, next time.Duration) {
		logger.Warn("Connection attempt failed, retrying",
			zap.String("target", target),
			zap.Error(err),
			zap.Duration("next_attempt_in", next),
		)
	})
}
