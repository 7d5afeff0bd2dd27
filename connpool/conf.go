package connpool

import "log/slog"

// Option is a functional option for configuring a Registry.
type Option func(*config)

type config struct {
	maxPerHost int
	dial       DialFunc
	logger     *slog.Logger
}

// WithLogger sets the logger for connection-creation failures.
// If not specified, defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMaxPerHost sets the initial per-endpoint capacity.
// If not specified, defaults to DefaultMaxPerHost.
func WithMaxPerHost(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxPerHost = n
		}
	}
}

// WithDialer replaces the connection factory. Useful for tests and for
// callers that need custom transport setup.
func WithDialer(dial DialFunc) Option {
	return func(cfg *config) {
		if dial != nil {
			cfg.dial = dial
		}
	}
}
