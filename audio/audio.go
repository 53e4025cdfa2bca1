// SPDX-License-Identifier: EPL-2.0

package audio

// StereoSample is one left/right amplitude pair, conventionally in [-1,1].
// Values outside that range are carried as-is.
type StereoSample struct {
	L float32
	R float32
}

// Silence is the zero sample used for latency padding.
var Silence = StereoSample{}

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// MustMatch panics when the two channel blocks of a stereo block differ in
// length. Unequal blocks are a caller bug, not a runtime condition.
func MustMatch(left, right []float32) {
	if len(left) != len(right) {
		panic(ErrChannelMismatch)
	}
}
