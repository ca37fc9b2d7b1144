package qcms

import (
	"log/slog"
)

type config struct {
	logger      *slog.Logger
	allow_simd  bool
	grid_points int
}

var default_logger = slog.New(slog.DiscardHandler)

func default_config() config {
	return config{logger: default_logger, allow_simd: true}
}

type Option func(*config)

// WithLogger sets the logger that receives a Debug record for every
// transform built. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithoutSIMD forces the generic pixel kernel regardless of CPU capabilities
func WithoutSIMD() Option {
	return func(c *config) { c.allow_simd = false }
}

// WithGridPoints sets the number of grid points per input channel used
// when a transform has to be baked into a lookup table. The defaults are
// 256 for one input channel, 33 for three and 17 for four.
func WithGridPoints(n int) Option {
	return func(c *config) { c.grid_points = n }
}
