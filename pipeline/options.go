// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"go.uber.org/zap"

	"github.com/ik5/encmonitor/codec"
)

// Option configures an Orchestrator in New.
type Option func(*Orchestrator)

// WithLogger sets the logger for lifecycle and fault reports. A nil logger
// keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithQueueLimit bounds the queue to n samples per channel; n <= 0 leaves it
// unbounded.
func WithQueueLimit(n int) Option {
	return func(o *Orchestrator) { o.limit = n }
}

// WithPassthrough replaces the processor used while bypassed and as the
// fallback after a codec failure.
func WithPassthrough(p codec.Processor) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.passthrough = p
		}
	}
}

// WithBypass shares an existing flag, typically one the host owns.
func WithBypass(b *Bypass) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.bypass = b
		}
	}
}
