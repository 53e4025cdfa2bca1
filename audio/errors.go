// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize  = errors.New("dst size must be multiple of channels")
	ErrChannelMismatch = errors.New("left and right blocks must have the same length")
	ErrTooManyChannels = errors.New("only mono and stereo sources are supported")

	// ErrConfiguration reports a sample rate, bitrate or channel count the
	// codec rejected. The session must be reconfigured before use.
	ErrConfiguration = errors.New("codec configuration rejected")
	// ErrCapacity reports a scratch buffer smaller than the worst case the
	// codec may write. Output is never truncated.
	ErrCapacity = errors.New("codec output buffer too small")
	// ErrResourceExhausted reports an out-of-memory condition inside the codec.
	ErrResourceExhausted = errors.New("codec out of memory")
	// ErrNoFrame reports that the decoder could not produce samples from the
	// bytes it was given. It is transient and never surfaces to the host.
	ErrNoFrame       = errors.New("no decodable frame")
	ErrNotConfigured = errors.New("codec session not configured")
	ErrClosed        = errors.New("codec session closed")
)
