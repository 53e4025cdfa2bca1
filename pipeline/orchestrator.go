// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
	"github.com/ik5/encmonitor/latency"
)

// Orchestrator runs host blocks through the codec session, or the
// passthrough when bypassed, and releases them through the latency queue.
// Either path lags its input by exactly DeclaredDelay samples, also across
// a switch between them.
// Process must be called from one goroutine; Stats, ReportFaults and the
// bypass flag are safe from any.
type Orchestrator struct {
	session     codec.Processor
	passthrough codec.Processor
	queue       *latency.Queue
	bypass      *Bypass
	logger      *zap.Logger
	limit       int
	codecDelay  int

	// held counts input samples the session took but has not yielded yet;
	// they are replayed from history when the session is left.
	history   history
	held      int
	streaming bool
	stale     bool

	blocks    atomic.Uint64
	monitored atomic.Uint64
	bypassed  atomic.Uint64
	fallbacks atomic.Uint64
	produced  atomic.Uint64
	underruns atomic.Uint64
	missing   atomic.Uint64
	queueLen  atomic.Int64
	dropped   atomic.Uint64
	lastFault atomic.Pointer[fault]
	reported  atomic.Uint64
}

type fault struct {
	block uint64
	err   error
}

// Stats is a snapshot of the orchestrator counters.
type Stats struct {
	Blocks    uint64
	Monitored uint64
	Bypassed  uint64
	// Fallbacks counts monitored blocks that failed and went through the
	// passthrough instead.
	Fallbacks uint64
	// Produced counts samples enqueued by either path.
	Produced uint64
	// Underruns counts blocks the queue could not fill; MissingSamples
	// sums the shortfall.
	Underruns      uint64
	MissingSamples uint64
	QueueLen       int
	QueueDropped   uint64
	CodecLatency   int
	LastFault      error
}

// New builds an orchestrator around session, which it owns from then on.
// A session reporting more latency than CodecLatencyBudget is refused.
func New(session codec.Processor, opts ...Option) (*Orchestrator, error) {
	if session == nil {
		return nil, ErrNoProcessor
	}

	o := &Orchestrator{
		session:     session,
		passthrough: codec.NewPassthrough(),
		bypass:      &Bypass{},
		logger:      zap.NewNop(),
		limit:       DefaultQueueLimit,
	}
	for _, opt := range opts {
		opt(o)
	}

	if lr, ok := session.(codec.LatencyReporter); ok {
		o.codecDelay = lr.Latency()
	}
	if o.codecDelay > CodecLatencyBudget {
		return nil, fmt.Errorf("%w: %d > %d samples: %w",
			ErrLatencyBudget, o.codecDelay, CodecLatencyBudget, audio.ErrConfiguration)
	}

	o.queue = latency.New(QueuePrefill, o.limit)
	o.history = newHistory(QueuePrefill)
	o.queueLen.Store(int64(o.queue.Len()))

	o.logger.Info("pipeline ready",
		zap.Int("declaredDelay", DeclaredDelay),
		zap.Int("codecLatency", o.codecDelay),
		zap.Int("queueLimit", o.queue.Limit()),
	)
	return o, nil
}

// Bypass returns the control flag.
func (o *Orchestrator) Bypass() *Bypass { return o.bypass }

// DeclaredDelay returns the fixed delay to report to the host.
func (o *Orchestrator) DeclaredDelay() int { return DeclaredDelay }

// Process runs one block. Output positions the queue cannot fill are left
// as the caller initialised them and counted as an underrun. A codec
// failure never reaches the caller: whatever the failed call queued is
// withdrawn and the block goes through the passthrough instead.
func (o *Orchestrator) Process(inL, inR, outL, outR []float32) {
	audio.MustMatch(inL, inR)
	audio.MustMatch(outL, outR)

	block := o.blocks.Add(1)

	var n int
	if o.bypass.Engaged() {
		o.bypassed.Add(1)
		o.leaveSession()
		var err error
		if n, err = o.run(o.passthrough, inL, inR); err != nil {
			o.recordFault(block, err)
		}
	} else {
		o.monitored.Add(1)
		var err error
		if n, err = o.monitor(inL, inR); err != nil {
			o.recordFault(block, err)
			o.fallbacks.Add(1)
			o.leaveSession()
			if n, err = o.run(o.passthrough, inL, inR); err != nil {
				o.recordFault(block, err)
			}
		}
	}
	o.history.push(inL, inR)
	o.produced.Add(uint64(n))

	if got := o.queue.Dequeue(outL, outR); got < len(outL) {
		o.underruns.Add(1)
		o.missing.Add(uint64(len(outL) - got))
	}
	o.queueLen.Store(int64(o.queue.Len()))
	o.dropped.Store(o.queue.Dropped())
}

// monitor runs the block through the session, restarting it first when it
// was left in an earlier block.
func (o *Orchestrator) monitor(left, right []float32) (int, error) {
	if o.stale {
		if r, ok := o.session.(codec.Resetter); ok {
			if err := r.Reset(); err != nil {
				return 0, fmt.Errorf("pipeline: reset session: %w", err)
			}
		}
		o.stale = false
	}

	o.streaming = true
	n, err := o.run(o.session, left, right)
	if err != nil {
		return 0, err
	}
	o.held += len(left) - n
	return n, nil
}

// leaveSession queues the input the session still holds, so the other path
// carries on from the next sample, and marks the session for a restart.
func (o *Orchestrator) leaveSession() {
	if !o.streaming {
		return
	}
	n := o.history.replay(o.queue, o.held)
	o.produced.Add(uint64(n))
	o.held = 0
	o.streaming = false
	o.stale = true
}

// run enqueues everything p yields for the block and returns the count.
// On failure nothing it enqueued stays in the queue.
func (o *Orchestrator) run(p codec.Processor, left, right []float32) (int, error) {
	seq, err := p.Process(left, right)
	if err != nil {
		return 0, err
	}

	n := 0
	for {
		s, ok := seq.Next()
		if !ok {
			break
		}
		o.queue.Enqueue(s)
		n++
	}
	if err := seq.Err(); err != nil {
		o.queue.Cancel(n)
		return 0, err
	}
	return n, nil
}

func (o *Orchestrator) recordFault(block uint64, err error) {
	o.lastFault.Store(&fault{block: block, err: err})
}

// Stats returns a snapshot of the counters.
func (o *Orchestrator) Stats() Stats {
	s := Stats{
		Blocks:         o.blocks.Load(),
		Monitored:      o.monitored.Load(),
		Bypassed:       o.bypassed.Load(),
		Fallbacks:      o.fallbacks.Load(),
		Produced:       o.produced.Load(),
		Underruns:      o.underruns.Load(),
		MissingSamples: o.missing.Load(),
		QueueLen:       int(o.queueLen.Load()),
		QueueDropped:   o.dropped.Load(),
		CodecLatency:   o.codecDelay,
	}
	if f := o.lastFault.Load(); f != nil {
		s.LastFault = f.err
	}
	return s
}

// ReportFaults logs the fallbacks since the previous report. Call it off
// the audio thread.
func (o *Orchestrator) ReportFaults() {
	total := o.fallbacks.Load()
	prev := o.reported.Swap(total)
	if total == prev {
		return
	}

	fields := []zap.Field{
		zap.Uint64("fallbacks", total-prev),
		zap.Uint64("totalFallbacks", total),
	}
	if f := o.lastFault.Load(); f != nil {
		fields = append(fields, zap.Uint64("block", f.block), zap.Error(f.err))
	}
	o.logger.Warn("codec round trip fell back to passthrough", fields...)
}

// Close releases the session when it holds resources.
func (o *Orchestrator) Close() error {
	var errs []error
	for _, p := range []codec.Processor{o.session, o.passthrough} {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
