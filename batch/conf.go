package batch

import (
	"log/slog"

	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Runner.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	maxWorkers int
	limiter    *rate.Limiter
}

// WithLogger sets the logger used for unit failures and cleanup errors.
// If not specified, defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMaxWorkers overrides the global worker ceiling. Zero keeps the
// automatic ceiling derived from available parallelism.
func WithMaxWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxWorkers = n
		}
	}
}

// WithRateLimit throttles unit starts to perSecond with the given burst.
// Useful for preventing a scan from overwhelming its targets.
// If not specified, no rate limiting is applied.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cfg *config) {
		if perSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}
