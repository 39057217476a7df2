package apiclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/infra"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errBreakerOpen = errors.New("backend unavailable")
)

// reliability — конверт вокруг каждого вызова бэкенда:
// лимитер, предохранитель и повторы только для чтений.
type reliability struct {
	cb       *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
	timeout  time.Duration
}

func newReliability(cfg infra.APIConfig, metrics *Metrics, logger *zap.Logger) *reliability {
	threshold := cfg.CBConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	// Настройка предохранителя
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "guiajuridico-api",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > threshold
		},
		// 4xx — ответ бэкенда по существу, а не его отказ.
		// Отмена запроса браузером тоже не отказ бэкенда.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var netErr *domain.NetworkError
			return errors.As(err, &netErr) && netErr.Status >= 400 && netErr.Status < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.Set(float64(to))
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	attempts := cfg.ReadAttempts
	if attempts == 0 {
		attempts = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &reliability{
		cb:       cb,
		limiter:  rate.NewLimiter(limit, burst),
		attempts: attempts,
		delay:    cfg.RetryDelay,
		timeout:  timeout,
	}
}

// execute прогоняет call через лимитер, предохранитель и (для idempotent) повторы.
func (r *reliability) execute(ctx context.Context, idempotent bool, call func(ctx context.Context) error) error {
	// 1. Rate Limiter
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", errRateLimited, err)
	}

	attempts := uint(1)
	if idempotent {
		attempts = r.attempts
	}

	// 2. Circuit Breaker
	_, err := r.cb.Execute(func() (interface{}, error) {
		rt := retry.New(
			retry.Context(ctx),
			retry.Attempts(attempts),
			retry.Delay(r.delay),
			retry.RetryIf(isTransient),
			retry.LastErrorOnly(true),
		)

		return nil, rt.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			return call(tCtx)
		})
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", errBreakerOpen, err)
	}
	return err
}

// isTransient: повторять имеет смысл только обрыв связи и 5xx
func isTransient(err error) bool {
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	return netErr.Status == 0 || netErr.Status >= 500
}
