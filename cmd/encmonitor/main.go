// SPDX-License-Identifier: EPL-2.0

// Command encmonitor simulates an audio host running the MP3 round-trip
// monitor: it plays a test tone or a WAV file through the pipeline in
// fixed blocks, serves Prometheus metrics and logs the counters.
//
// SIGUSR1 toggles the bypass parameter while running.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/ik5/encmonitor"
	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
	_ "github.com/ik5/encmonitor/codec/lame"
	"github.com/ik5/encmonitor/formats/wav"
	"github.com/ik5/encmonitor/internal/config"
	"github.com/ik5/encmonitor/internal/observe"
	"github.com/ik5/encmonitor/pipeline"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults when empty)")
	engine := flag.String("engine", "", "codec engine: "+strings.Join(codec.Default.Names(), ", "))
	duration := flag.Duration("duration", 0, "how much audio to play, 0 runs until interrupted")
	wavPath := flag.String("wav", "", "play a PCM WAV file instead of the tone")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encmonitor: %v\n", err)
		return 1
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "engine":
			cfg.Engine = *engine
		case "duration":
			cfg.Host.Duration = *duration
		case "wav":
			cfg.Signal.File = *wavPath
		case "log-level":
			cfg.LogLevel = config.LogLevel(*logLevel)
		}
	})
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "encmonitor: %v\n", err)
		return 1
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel.ZapLevel())
	logger, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "encmonitor: logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := cfg.Params()
	logger.Info("encmonitor starting",
		zap.String("version", version),
		zap.String("engine", cfg.Engine),
		zap.Int("sampleRate", p.Format.SampleRate),
		zap.Int("channels", p.Format.NumChannels),
		zap.Int("bitrate", p.Kilobitrate),
		zap.Stringer("flush", p.Policy),
		zap.Int("blockSize", cfg.Host.BlockSize),
	)

	src, err := openSource(cfg)
	if err != nil {
		logger.Error("failed to open source", zap.Error(err))
		return 1
	}
	defer src.Close()
	if r, ok := src.(*audio.Resampler); ok {
		logger.Info("resampling input", zap.String("file", cfg.Signal.File), zap.Int("to", r.SampleRate()))
	}

	mon, err := encmonitor.New(cfg.Engine, p, cfg.Host.MaxBlock,
		pipeline.WithLogger(logger.Named("pipeline")),
		pipeline.WithQueueLimit(cfg.Host.QueueLimit),
	)
	if err != nil {
		logger.Error("failed to create monitor", zap.Error(err))
		return 1
	}
	defer func() {
		if err := mon.Close(); err != nil {
			logger.Warn("monitor close", zap.Error(err))
		}
	}()
	mon.Bypass().Set(cfg.Signal.Bypass)

	var mp metric.MeterProvider = noop.NewMeterProvider()
	if cfg.Metrics.Listen != "" {
		sdk, shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			logger.Error("failed to init metrics", zap.Error(err))
			return 1
		}
		defer shutdownWith(logger, "metrics provider", shutdown)
		mp = sdk

		srv := serveMetrics(logger, cfg.Metrics.Listen)
		defer shutdownWith(logger, "metrics server", srv.Shutdown)
	}
	met, err := observe.NewMetrics(mp, mon)
	if err != nil {
		logger.Error("failed to create instruments", zap.Error(err))
		return 1
	}
	defer met.Close()

	h := newHost(ctx, p.Format.SampleRate, cfg.Host.BlockSize, cfg.Host.Realtime, met.BlockDuration)

	var wg sync.WaitGroup
	loopCtx, cancel := context.WithCancel(ctx)
	wg.Go(func() { toggleBypass(loopCtx, logger, mon.Bypass()) })
	wg.Go(func() { report(loopCtx, logger, mon, h, cfg.Metrics.ReportInterval) })

	logger.Info("monitor running",
		zap.Int("declaredDelay", mon.DeclaredDelay()),
		zap.Bool("realtime", cfg.Host.Realtime),
	)
	frames, err := encmonitor.Drive(src, mon, cfg.Host.BlockSize, h.sink)
	cancel()
	wg.Wait()

	logStats(logger, mon.Stats(), h.takePeak())
	mon.ReportFaults()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("monitor stopped", zap.Int("frames", frames), zap.Error(err))
		return 1
	}
	logger.Info("monitor stopped", zap.Int("frames", frames))
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromReader(strings.NewReader(""))
	}
	return config.Load(path)
}

func openSource(cfg *config.Config) (audio.Source, error) {
	if cfg.Signal.File == "" {
		frames := -1
		if cfg.Host.Duration > 0 {
			frames = int(int64(cfg.Host.Duration) * int64(cfg.Codec.SampleRate) / int64(time.Second))
		}
		return newTone(cfg.Codec.SampleRate, cfg.Signal.Frequency, cfg.Signal.Amplitude, frames), nil
	}

	f, err := os.Open(cfg.Signal.File)
	if err != nil {
		return nil, err
	}
	src, err := wav.Open(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", cfg.Signal.File, err)
	}
	if src.Channels() > 2 {
		_ = src.Close()
		return nil, fmt.Errorf("%s: %d channels: %w", cfg.Signal.File, src.Channels(), audio.ErrTooManyChannels)
	}
	if src.SampleRate() != cfg.Codec.SampleRate {
		return audio.NewResampler(src, cfg.Codec.SampleRate), nil
	}
	return src, nil
}

func serveMetrics(logger *zap.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func shutdownWith(logger *zap.Logger, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("shutdown failed", zap.String("component", what), zap.Error(err))
	}
}

// toggleBypass flips the bypass parameter between 0 and 1 on SIGUSR1.
func toggleBypass(ctx context.Context, logger *zap.Logger, b *pipeline.Bypass) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			v := float32(1)
			if b.Engaged() {
				v = 0
			}
			b.Set(v)
			logger.Info("bypass changed", zap.String("bypass", b.Text()), zap.Bool("engaged", b.Engaged()))
		}
	}
}

func report(ctx context.Context, logger *zap.Logger, mon *pipeline.Orchestrator, h *host, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			logStats(logger, mon.Stats(), h.takePeak())
			mon.ReportFaults()
		}
	}
}

func logStats(logger *zap.Logger, s pipeline.Stats, peak float32) {
	logger.Info("monitor stats",
		zap.Uint64("blocks", s.Blocks),
		zap.Uint64("monitored", s.Monitored),
		zap.Uint64("bypassed", s.Bypassed),
		zap.Uint64("fallbacks", s.Fallbacks),
		zap.Uint64("underruns", s.Underruns),
		zap.Uint64("missingSamples", s.MissingSamples),
		zap.Int("queueLen", s.QueueLen),
		zap.Uint64("queueDropped", s.QueueDropped),
		zap.Int("codecLatency", s.CodecLatency),
		zap.Float32("outputPeak", peak),
	)
}
