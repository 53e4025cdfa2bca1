// SPDX-License-Identifier: EPL-2.0

package lame

import (
	"errors"
	"fmt"

	"github.com/ik5/encmonitor/audio"
)

var (
	// ErrUnavailable is returned when the package is built without cgo.
	ErrUnavailable = errors.New("lame: libmp3lame not available (built without cgo)")
	ErrPsycho      = errors.New("lame: psychoacoustic model failure")
	ErrGeneric     = errors.New("lame: generic error")
)

// encodeError maps lame_encode_buffer and flush return codes.
func encodeError(op string, code int) error {
	switch code {
	case -1:
		return fmt.Errorf("lame: %s: %w", op, audio.ErrCapacity)
	case -2:
		return fmt.Errorf("lame: %s: %w", op, audio.ErrResourceExhausted)
	case -3:
		return fmt.Errorf("lame: %s: %w", op, audio.ErrNotConfigured)
	case -4:
		return fmt.Errorf("lame: %s: %w", op, ErrPsycho)
	default:
		return fmt.Errorf("lame: %s: code %d: %w", op, code, ErrGeneric)
	}
}

// apiError maps the return codes of lame_init_params and the setters.
func apiError(op string, code int) error {
	switch code {
	case -10:
		return fmt.Errorf("lame: %s: %w", op, audio.ErrResourceExhausted)
	case -11:
		return fmt.Errorf("lame: %s: bad bitrate: %w", op, audio.ErrConfiguration)
	case -12:
		return fmt.Errorf("lame: %s: bad sample rate: %w", op, audio.ErrConfiguration)
	default:
		return fmt.Errorf("lame: %s: code %d: %w", op, code, audio.ErrConfiguration)
	}
}
