package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/codeclip/internal/progress"
)

// Resilient wraps a notifier with retry, a circuit breaker and a bulkhead
// from fortify so a flaky broker cannot stall completions.
type Resilient struct {
	next           progress.Notifier
	circuitBreaker circuitbreaker.CircuitBreaker[struct{}]
	retrier        retry.Retry[struct{}]
	bulkhead       bulkhead.Bulkhead[struct{}]
	timeout        time.Duration
}

// ResilientConfig holds configuration for the resilient wrapper
type ResilientConfig struct {
	// MaxAttempts per notification (default: 3)
	MaxAttempts int

	// RetryDelay before the first retry (default: 200ms)
	RetryDelay time.Duration

	// FailureThreshold is the number of consecutive failed notifications
	// that opens the breaker (default: 5)
	FailureThreshold int

	// OpenTimeout is how long the breaker stays open (default: 30s)
	OpenTimeout time.Duration

	// MaxConcurrent deliveries in flight (default: 4)
	MaxConcurrent int

	// Timeout bounds a single notification including retries (default: 5s)
	Timeout time.Duration

	Logger *slog.Logger
}

// DefaultResilientConfig returns the defaults used by the daemon
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:      3,
		RetryDelay:       200 * time.Millisecond,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		MaxConcurrent:    4,
		Timeout:          5 * time.Second,
	}
}

func (cfg ResilientConfig) withDefaults() ResilientConfig {
	def := DefaultResilientConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// NewResilient wraps next
func NewResilient(next progress.Notifier, cfg ResilientConfig) *Resilient {
	cfg = cfg.withDefaults()
	name := nameOf(next)

	return &Resilient{
		next:    next,
		timeout: cfg.Timeout,
		circuitBreaker: circuitbreaker.New[struct{}](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= cfg.FailureThreshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				cfg.Logger.Warn("notifier circuit breaker state change",
					"notifier", name,
					"from", from.String(),
					"to", to.String())
			},
		}),
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.RetryDelay,
			MaxDelay:      10 * cfg.RetryDelay,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryable,
		}),
		bulkhead: bulkhead.New[struct{}](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxQueue:      cfg.MaxConcurrent * 4,
			QueueTimeout:  cfg.Timeout,
		}),
	}
}

func (r *Resilient) Name() string { return nameOf(r.next) }

// Notify delivers ev through the bulkhead, breaker and retrier
func (r *Resilient) Notify(ctx context.Context, ev progress.Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.bulkhead.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return r.circuitBreaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
			return r.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, r.next.Notify(ctx, ev)
			})
		})
	})
	return err
}

// isRetryable reports whether a failed delivery is worth another attempt.
// Cancellation and deadline errors are final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
