// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// host plays the role of the audio callback: it receives every output
// block, paces the loop to the sample clock when asked to and meters the
// output level.
type host struct {
	ctx      context.Context
	period   time.Duration
	duration metric.Float64Histogram

	last time.Time
	next time.Time
	peak atomic.Uint32
}

func newHost(ctx context.Context, rate, block int, realtime bool, duration metric.Float64Histogram) *host {
	h := &host{ctx: ctx, duration: duration}
	if realtime {
		h.period = time.Duration(block) * time.Second / time.Duration(rate)
	}
	now := time.Now()
	h.last, h.next = now, now
	return h
}

// sink is handed to encmonitor.Drive. The recorded duration covers the
// source read and the Process call of the block.
func (h *host) sink(left, right []float32) error {
	h.duration.Record(h.ctx, time.Since(h.last).Seconds())

	p := float32(0)
	for i := range left {
		p = max(p, abs32(left[i]), abs32(right[i]))
	}
	for {
		old := h.peak.Load()
		if math.Float32frombits(old) >= p || h.peak.CompareAndSwap(old, math.Float32bits(p)) {
			break
		}
	}

	if err := h.ctx.Err(); err != nil {
		return err
	}
	if h.period > 0 {
		h.next = h.next.Add(h.period)
		d := time.Until(h.next)
		switch {
		case d > 0:
			t := time.NewTimer(d)
			select {
			case <-h.ctx.Done():
				t.Stop()
				return h.ctx.Err()
			case <-t.C:
			}
		case -d > 4*h.period:
			// too far behind to catch up; restart the clock
			h.next = time.Now()
		}
	}

	h.last = time.Now()
	return nil
}

// takePeak returns the output peak since the previous call.
func (h *host) takePeak() float32 {
	return math.Float32frombits(h.peak.Swap(0))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
