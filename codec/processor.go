// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"iter"

	"github.com/ik5/encmonitor/audio"
)

// Processor turns one stereo block into a sequence of stereo samples. The
// sequence length need not match the block length.
type Processor interface {
	// Process panics when left and right differ in length. The returned
	// Samples stay valid until the next Process call and must be drained
	// before it.
	Process(left, right []float32) (Samples, error)
}

// Samples is a lazy, finite, single-pass sequence of stereo samples.
//
//	for {
//		s, ok := seq.Next()
//		if !ok {
//			break
//		}
//		...
//	}
//	if err := seq.Err(); err != nil {
//		...
//	}
type Samples interface {
	// Next returns the next sample, or false when the sequence ended or
	// failed.
	Next() (audio.StereoSample, bool)
	// Err returns the error that ended the sequence early, if any.
	Err() error
}

// LatencyReporter is implemented by processors that delay their output.
type LatencyReporter interface {
	// Latency returns the delay, in samples, between a sample entering
	// Process and the same sample leaving it.
	Latency() int
}

// Resetter is implemented by processors that carry state from one block
// to the next.
type Resetter interface {
	// Reset drops held state so the next Process starts a new stream.
	Reset() error
}

// All adapts s to a range-over-func sequence. Check s.Err after the loop.
func All(s Samples) iter.Seq[audio.StereoSample] {
	return func(yield func(audio.StereoSample) bool) {
		for {
			v, ok := s.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
