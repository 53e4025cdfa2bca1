// SPDX-License-Identifier: EPL-2.0

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
	"github.com/ik5/encmonitor/internal/config"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	if cfg.Engine != "lame" || cfg.LogLevel != config.LogInfo {
		t.Errorf("engine = %q, log_level = %q", cfg.Engine, cfg.LogLevel)
	}
	if cfg.Host.BlockSize != 128 || cfg.Host.MaxBlock != 1024 {
		t.Errorf("block_size = %d, max_block = %d", cfg.Host.BlockSize, cfg.Host.MaxBlock)
	}
	if cfg.Metrics.ReportInterval != 5*time.Second {
		t.Errorf("report_interval = %v", cfg.Metrics.ReportInterval)
	}
	if p := cfg.Params(); p != codec.DefaultParams() {
		t.Errorf("Params() = %+v, want %+v", p, codec.DefaultParams())
	}
}

func TestLoadFromReader_Full(t *testing.T) {
	t.Parallel()

	yaml := `
log_level: debug
engine: lame-gomp3
codec:
  sample_rate: 48000
  channels: 1
  bitrate: 128
  quality: 0
  flush: hard
host:
  block_size: 256
  max_block: 512
  queue_limit: -1
  duration: 2s
  realtime: true
signal:
  file: take1.wav
  frequency: 440
  amplitude: 0.25
  bypass: 1
metrics:
  listen: ":9464"
  report_interval: 1s
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	p := cfg.Params()
	if p.Format.SampleRate != 48000 || p.Format.NumChannels != 1 || p.Kilobitrate != 128 {
		t.Errorf("Params() = %+v", p)
	}
	if p.Quality != 0 || p.Policy != codec.FlushHard {
		t.Errorf("quality = %d, policy = %v", p.Quality, p.Policy)
	}
	if cfg.Host.Duration != 2*time.Second || !cfg.Host.Realtime || cfg.Host.QueueLimit != -1 {
		t.Errorf("host = %+v", cfg.Host)
	}
	if cfg.Signal.File != "take1.wav" || cfg.Signal.Bypass != 1 || cfg.Metrics.Listen != ":9464" {
		t.Errorf("signal = %+v, metrics = %+v", cfg.Signal, cfg.Metrics)
	}
	if cfg.LogLevel.ZapLevel() != zapcore.DebugLevel {
		t.Errorf("ZapLevel() = %v", cfg.LogLevel.ZapLevel())
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("codec:\n  bitrat: 320\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
	if !strings.Contains(err.Error(), "bitrat") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestValidate_JoinsAllFailures(t *testing.T) {
	t.Parallel()

	yaml := `
log_level: loud
codec:
  sample_rate: 96000
host:
  block_size: 2048
  max_block: 1024
signal:
  amplitude: 2
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, want := range []string{"log_level", "sample rate", "max_block", "amplitude"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
	if !errors.Is(err, audio.ErrConfiguration) {
		t.Errorf("codec errors should wrap ErrConfiguration, got: %v", err)
	}
}

func TestValidate_BadFlush(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("codec:\n  flush: soft\n"))
	if err == nil || !strings.Contains(err.Error(), "codec.flush") {
		t.Errorf("LoadFromReader() error = %v, want codec.flush error", err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "encmonitor.yaml")
	if err := os.WriteFile(path, []byte("engine: lame\nhost:\n  block_size: 64\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host.BlockSize != 64 {
		t.Errorf("block_size = %d, want 64", cfg.Host.BlockSize)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level config.LogLevel
		valid bool
		zap   zapcore.Level
	}{
		{config.LogDebug, true, zapcore.DebugLevel},
		{config.LogInfo, true, zapcore.InfoLevel},
		{config.LogWarn, true, zapcore.WarnLevel},
		{config.LogError, true, zapcore.ErrorLevel},
		{"trace", false, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := tt.level.IsValid(); got != tt.valid {
			t.Errorf("%q.IsValid() = %v, want %v", tt.level, got, tt.valid)
		}
		if got := tt.level.ZapLevel(); got != tt.zap {
			t.Errorf("%q.ZapLevel() = %v, want %v", tt.level, got, tt.zap)
		}
	}
}
