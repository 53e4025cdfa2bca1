// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"

	"github.com/ik5/encmonitor/pipeline"
)

const meterName = "github.com/ik5/encmonitor"

// Source is what the metrics observe. *pipeline.Orchestrator satisfies it.
type Source interface {
	Stats() pipeline.Stats
	Bypass() *pipeline.Bypass
}

// blockBuckets are histogram boundaries in seconds around the 2.9 ms
// budget of a 128 sample block at 44.1 kHz.
var blockBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.003, 0.005, 0.01, 0.025,
}

// Metrics holds the instruments. The observable ones are read from the
// Source on every collection.
type Metrics struct {
	// BlockDuration is recorded by the host around each Process call.
	BlockDuration metric.Float64Histogram

	Blocks         metric.Int64ObservableCounter
	Monitored      metric.Int64ObservableCounter
	Bypassed       metric.Int64ObservableCounter
	Fallbacks      metric.Int64ObservableCounter
	Produced       metric.Int64ObservableCounter
	Underruns      metric.Int64ObservableCounter
	MissingSamples metric.Int64ObservableCounter
	QueueDropped   metric.Int64ObservableCounter

	QueueLength  metric.Int64ObservableGauge
	CodecLatency metric.Int64ObservableGauge
	Bypass       metric.Float64ObservableGauge

	reg metric.Registration
}

// NewMetrics creates the instruments on mp and registers a callback
// observing src.
func NewMetrics(mp metric.MeterProvider, src Source) (*Metrics, error) {
	if src == nil {
		return nil, errors.New("observe: nil source")
	}

	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.BlockDuration, err = m.Float64Histogram("encmonitor.block.duration",
		metric.WithDescription("Time spent processing one host block."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(blockBuckets...),
	); err != nil {
		return nil, err
	}

	counters := []struct {
		dst  *metric.Int64ObservableCounter
		name string
		desc string
		unit string
	}{
		{&met.Blocks, "encmonitor.blocks", "Host blocks processed.", "{block}"},
		{&met.Monitored, "encmonitor.blocks.monitored", "Blocks processed through the codec.", "{block}"},
		{&met.Bypassed, "encmonitor.blocks.bypassed", "Blocks processed through the passthrough.", "{block}"},
		{&met.Fallbacks, "encmonitor.fallbacks", "Codec failures recovered by the passthrough.", "{block}"},
		{&met.Produced, "encmonitor.samples.produced", "Samples enqueued by either path.", "{sample}"},
		{&met.Underruns, "encmonitor.underruns", "Blocks the latency queue could not fill.", "{block}"},
		{&met.MissingSamples, "encmonitor.samples.missing", "Output samples the queue could not fill; the host buffer keeps its contents.", "{sample}"},
		{&met.QueueDropped, "encmonitor.queue.dropped", "Samples discarded by the queue limit.", "{sample}"},
	}
	for _, c := range counters {
		if *c.dst, err = m.Int64ObservableCounter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		); err != nil {
			return nil, err
		}
	}

	if met.QueueLength, err = m.Int64ObservableGauge("encmonitor.queue.length",
		metric.WithDescription("Samples waiting in the latency queue."),
		metric.WithUnit("{sample}"),
	); err != nil {
		return nil, err
	}
	if met.CodecLatency, err = m.Int64ObservableGauge("encmonitor.codec.latency",
		metric.WithDescription("Latency reported by the codec session."),
		metric.WithUnit("{sample}"),
	); err != nil {
		return nil, err
	}
	if met.Bypass, err = m.Float64ObservableGauge("encmonitor.bypass",
		metric.WithDescription("Current value of the bypass parameter."),
	); err != nil {
		return nil, err
	}

	met.reg, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := src.Stats()
		o.ObserveInt64(met.Blocks, int64(s.Blocks))
		o.ObserveInt64(met.Monitored, int64(s.Monitored))
		o.ObserveInt64(met.Bypassed, int64(s.Bypassed))
		o.ObserveInt64(met.Fallbacks, int64(s.Fallbacks))
		o.ObserveInt64(met.Produced, int64(s.Produced))
		o.ObserveInt64(met.Underruns, int64(s.Underruns))
		o.ObserveInt64(met.MissingSamples, int64(s.MissingSamples))
		o.ObserveInt64(met.QueueDropped, int64(s.QueueDropped))
		o.ObserveInt64(met.QueueLength, int64(s.QueueLen))
		o.ObserveInt64(met.CodecLatency, int64(s.CodecLatency))
		o.ObserveFloat64(met.Bypass, float64(src.Bypass().Get()))
		return nil
	},
		met.Blocks, met.Monitored, met.Bypassed, met.Fallbacks, met.Produced,
		met.Underruns, met.MissingSamples, met.QueueDropped,
		met.QueueLength, met.CodecLatency, met.Bypass,
	)
	if err != nil {
		return nil, err
	}

	return met, nil
}

// Close unregisters the observation callback.
func (m *Metrics) Close() error {
	if m.reg == nil {
		return nil
	}
	err := m.reg.Unregister()
	m.reg = nil
	return err
}
