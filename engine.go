package cellseg

import (
	"github.com/rs/zerolog"
)

// Engine runs the segmentation pipeline. It holds no per-image state,
// so one Engine may serve concurrent Segment calls.
type Engine struct {
	log zerolog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger routes per-stage diagnostic events to the given logger.
// The default is zerolog.Nop(): the library is silent unless asked.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New returns an Engine with the given options applied.
func New(opts ...Option) *Engine {
	e := &Engine{log: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}
