// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"fmt"
	"strings"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/formats/mp3"
)

// Engine creates the stateful encoder and decoder contexts of one codec.
// Each context is owned by exactly one Session.
type Engine interface {
	NewEncoder() (Encoder, error)
	NewDecoder() (Decoder, error)
}

// Encoder is a stateful MP3 encoder context.
//
// Encode and the flush calls write into out and return the number of bytes
// written. An out slice smaller than the documented worst case fails with
// audio.ErrCapacity; output is never truncated.
type Encoder interface {
	Configure(p Params) error
	// Encode consumes equal-length left and right blocks.
	Encode(left, right []int16, out []byte) (int, error)
	// FlushNoGap emits every complete frame the encoder holds while keeping
	// the stream open, so the next Encode continues it.
	FlushNoGap(out []byte) (int, error)
	// Flush pads and emits the partial frame, plus whatever frames the
	// decoder needs to release every buffered sample, finishes the stream
	// and re-arms the encoder for a new stream with the same parameters.
	Flush(out []byte) (int, error)
	// Delay is the look-ahead, in samples, prepended to the stream.
	Delay() int
	Close() error
}

// Decoder is a stateful MP3 decoder context. Decode accepts arbitrary byte
// chunks; a frame split across calls is completed by a later call.
type Decoder interface {
	// Decode returns audio.ErrNoFrame when no frame became complete and
	// audio.ErrCapacity when left and right cannot hold the next frame.
	Decode(data []byte, left, right []int16) (int, error)
	// Reset drops buffered bytes and starts a new stream.
	Reset() error
	// Delay is the algorithmic delay, in samples, of the decoder.
	Delay() int
	Close() error
}

// FlushPolicy selects how a Session closes each call's encoded data.
type FlushPolicy int

const (
	// FlushGapless keeps the encoder stream and the decoder context alive
	// across calls.
	FlushGapless FlushPolicy = iota
	// FlushHard finishes the stream on every call and resets the decoder.
	// Every call decodes on its own, at the price of a truncated bit
	// reservoir per call.
	FlushHard
)

func (p FlushPolicy) String() string {
	switch p {
	case FlushGapless:
		return "gapless"
	case FlushHard:
		return "hard"
	default:
		return fmt.Sprintf("FlushPolicy(%d)", int(p))
	}
}

// ParseFlushPolicy parses the String form of a policy.
func ParseFlushPolicy(s string) (FlushPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gapless":
		return FlushGapless, nil
	case "hard":
		return FlushHard, nil
	default:
		return 0, fmt.Errorf("codec: unknown flush policy %q", s)
	}
}

// Params configures a Session and its encoder.
type Params struct {
	// Format carries the sample rate and the channel count (1 or 2).
	Format goaudio.Format
	// Kilobitrate is the constant output bitrate in kbit/s.
	Kilobitrate int
	// Quality is the LAME algorithm quality, 0 (best) to 9 (fastest).
	Quality int
	Policy  FlushPolicy
}

// DefaultParams returns 44.1 kHz stereo at 320 kbit/s with the gapless
// policy.
func DefaultParams() Params {
	return Params{
		Format:      goaudio.Format{NumChannels: 2, SampleRate: 44100},
		Kilobitrate: 320,
		Quality:     2,
		Policy:      FlushGapless,
	}
}

// Validate reports every rejected field, each wrapping audio.ErrConfiguration.
func (p Params) Validate() error {
	var errs []error

	rateOK := true
	if _, ok := mp3.VersionFor(p.Format.SampleRate); !ok {
		rateOK = false
		errs = append(errs, fmt.Errorf("codec: sample rate %d Hz: %w", p.Format.SampleRate, audio.ErrConfiguration))
	}
	if rateOK && !mp3.ValidBitrate(p.Format.SampleRate, p.Kilobitrate) {
		errs = append(errs, fmt.Errorf("codec: bitrate %d kbit/s at %d Hz: %w",
			p.Kilobitrate, p.Format.SampleRate, audio.ErrConfiguration))
	}
	if p.Format.NumChannels != 1 && p.Format.NumChannels != 2 {
		errs = append(errs, fmt.Errorf("codec: %d channels: %w", p.Format.NumChannels, audio.ErrConfiguration))
	}
	if p.Quality < 0 || p.Quality > 9 {
		errs = append(errs, fmt.Errorf("codec: quality %d: %w", p.Quality, audio.ErrConfiguration))
	}
	if p.Policy != FlushGapless && p.Policy != FlushHard {
		errs = append(errs, fmt.Errorf("codec: %v: %w", p.Policy, audio.ErrConfiguration))
	}

	return errors.Join(errs...)
}
