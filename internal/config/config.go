// SPDX-License-Identifier: EPL-2.0

// Package config provides the configuration schema and loader of the
// encmonitor host simulator.
package config

import (
	"time"

	goaudio "github.com/go-audio/audio"
	"go.uber.org/zap/zapcore"

	"github.com/ik5/encmonitor/codec"
	"github.com/ik5/encmonitor/pipeline"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// ZapLevel converts l; unknown levels map to info.
func (l LogLevel) ZapLevel() zapcore.Level {
	switch l {
	case LogDebug:
		return zapcore.DebugLevel
	case LogWarn:
		return zapcore.WarnLevel
	case LogError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config is the root configuration of the simulator.
type Config struct {
	LogLevel LogLevel      `yaml:"log_level"`
	Engine   string        `yaml:"engine"`
	Codec    CodecConfig   `yaml:"codec"`
	Host     HostConfig    `yaml:"host"`
	Signal   SignalConfig  `yaml:"signal"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// CodecConfig holds the session parameters.
type CodecConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	Bitrate    int    `yaml:"bitrate"` // kbit/s
	Quality    *int   `yaml:"quality"`
	Flush      string `yaml:"flush"`
}

// HostConfig describes the simulated host callback.
type HostConfig struct {
	BlockSize  int `yaml:"block_size"`
	MaxBlock   int `yaml:"max_block"`
	QueueLimit int `yaml:"queue_limit"`
	// Duration of audio to play; zero runs until interrupted.
	Duration time.Duration `yaml:"duration"`
	// Realtime paces blocks at the sample rate instead of running flat out.
	Realtime bool `yaml:"realtime"`
}

// SignalConfig is the test tone fed to the pipeline.
type SignalConfig struct {
	// File plays a PCM WAV file instead of the tone. A file at another
	// sample rate is resampled to codec.sample_rate.
	File      string  `yaml:"file"`
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Bypass    float32 `yaml:"bypass"`
}

// MetricsConfig controls the Prometheus endpoint and periodic reports.
type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint; empty disables it.
	Listen         string        `yaml:"listen"`
	ReportInterval time.Duration `yaml:"report_interval"`
}

// Params returns the codec parameters. Call it on a validated config.
func (c *Config) Params() codec.Params {
	p := codec.DefaultParams()
	p.Format = goaudio.Format{NumChannels: c.Codec.Channels, SampleRate: c.Codec.SampleRate}
	p.Kilobitrate = c.Codec.Bitrate
	if c.Codec.Quality != nil {
		p.Quality = *c.Codec.Quality
	}
	p.Policy, _ = codec.ParseFlushPolicy(c.Codec.Flush)
	return p
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(c *Config) {
	def := codec.DefaultParams()

	if c.LogLevel == "" {
		c.LogLevel = LogInfo
	}
	if c.Engine == "" {
		c.Engine = "lame"
	}
	if c.Codec.SampleRate == 0 {
		c.Codec.SampleRate = def.Format.SampleRate
	}
	if c.Codec.Channels == 0 {
		c.Codec.Channels = def.Format.NumChannels
	}
	if c.Codec.Bitrate == 0 {
		c.Codec.Bitrate = def.Kilobitrate
	}
	if c.Codec.Flush == "" {
		c.Codec.Flush = def.Policy.String()
	}
	if c.Host.BlockSize == 0 {
		c.Host.BlockSize = 128
	}
	if c.Host.MaxBlock == 0 {
		c.Host.MaxBlock = max(1024, c.Host.BlockSize)
	}
	if c.Host.QueueLimit == 0 {
		c.Host.QueueLimit = pipeline.DefaultQueueLimit
	}
	if c.Signal.Frequency == 0 {
		c.Signal.Frequency = 1000
	}
	if c.Signal.Amplitude == 0 {
		c.Signal.Amplitude = 0.5
	}
	if c.Metrics.ReportInterval == 0 {
		c.Metrics.ReportInterval = 5 * time.Second
	}
}
