package service

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// retryConfig holds the dual-write retry policy for search index upserts.
type retryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
	JitterFactor  float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterFactor:  0.2,
	}
}

// retry executes fn until it succeeds, attempts are exhausted, or fn reports
// the failure as not worth retrying.
func retry(ctx context.Context, cfg retryConfig, fn func(attempt int) (ok, retryable bool)) bool {
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		ok, retryable := fn(attempt)
		if ok {
			return true
		}
		if !retryable {
			return false
		}

		if attempt < cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoffDelay(cfg, attempt)):
			}
		}
	}
	return false
}

func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if cfg.JitterFactor > 0 {
		jitter := delay * cfg.JitterFactor
		delay = delay + (rand.Float64()*2-1)*jitter
	}
	return time.Duration(delay)
}
