// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/encmonitor/codec"
)

// Load reads the YAML configuration file at path and returns a validated
// Config with defaults applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Engine == "" {
		errs = append(errs, errors.New("engine is required"))
	}

	if _, err := codec.ParseFlushPolicy(cfg.Codec.Flush); err != nil {
		errs = append(errs, fmt.Errorf("codec.flush %q is invalid; valid values: gapless, hard", cfg.Codec.Flush))
	} else if err := cfg.Params().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("codec: %w", err))
	}

	if cfg.Host.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("host.block_size %d must be positive", cfg.Host.BlockSize))
	}
	if cfg.Host.MaxBlock < cfg.Host.BlockSize {
		errs = append(errs, fmt.Errorf("host.max_block %d is smaller than host.block_size %d", cfg.Host.MaxBlock, cfg.Host.BlockSize))
	}
	if cfg.Host.Duration < 0 {
		errs = append(errs, fmt.Errorf("host.duration %v is negative", cfg.Host.Duration))
	}

	if cfg.Signal.Frequency < 0 || cfg.Signal.Frequency >= float64(cfg.Codec.SampleRate)/2 {
		errs = append(errs, fmt.Errorf("signal.frequency %.1f Hz is out of range (0, %d)", cfg.Signal.Frequency, cfg.Codec.SampleRate/2))
	}
	if cfg.Signal.Amplitude < 0 || cfg.Signal.Amplitude > 1 {
		errs = append(errs, fmt.Errorf("signal.amplitude %.2f is out of range [0, 1]", cfg.Signal.Amplitude))
	}
	if cfg.Metrics.ReportInterval < 0 {
		errs = append(errs, fmt.Errorf("metrics.report_interval %v is negative", cfg.Metrics.ReportInterval))
	}

	return errors.Join(errs...)
}
