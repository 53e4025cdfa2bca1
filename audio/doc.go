// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample types and error taxonomy shared by the
// monitoring pipeline.
//
// # Samples
//
// A StereoSample is one left/right pair of float32 amplitudes. Amplitudes are
// conventionally in [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// Nothing in the pipeline clips; values outside the range pass through and
// only saturate when converted to 16-bit PCM in front of the encoder.
//
// Host audio arrives as two equal-length blocks, one per channel. MustMatch
// enforces that precondition by panicking, since a mismatch is a caller bug.
//
// # Sources
//
// The Source interface streams interleaved float32 PCM. Splitter adapts a
// Source to the host block shape:
//
//	split := audio.NewSplitter(source)
//	left := make([]float32, 128)
//	right := make([]float32, 128)
//	n, err := split.ReadBlock(left, right)
//
// Resampler converts a Source to the session rate with Catmull-Rom
// interpolation. It exists for feeding recorded material to the monitor and
// is not used on the audio path itself.
//
// # Errors
//
// errors.go holds the sentinel errors every codec layer wraps:
//
//	ErrConfiguration      rejected sample rate, bitrate or channel count
//	ErrCapacity           scratch buffer smaller than the codec worst case
//	ErrResourceExhausted  codec ran out of memory
//	ErrNoFrame            nothing decodable yet (transient, absorbed)
//
// Compare with errors.Is; every layer wraps with %w.
package audio
