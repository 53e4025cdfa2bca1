// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/encmonitor/utils"
)

// Resampler converts a Source to another sample rate with Catmull-Rom
// interpolation, keeping the channel count. When downsampling, a one-pole
// low-pass runs on the input first.
type Resampler struct {
	src      Source
	rate     int
	step     float64 // source frames per output frame
	channels int

	// hist holds frames t-1, t0, t+1 and t+2; valid marks the ones that
	// came from the source rather than edge padding.
	hist    [4][]float32
	valid   [4]bool
	pos     float64 // between hist[1] and hist[2]
	started bool
	done    bool

	in        []float32
	inPos     int
	inLen     int
	srcEOF    bool
	err       error
	lowpass   bool
	alpha     float32
	state     []float32
	primedLPF bool
}

func NewResampler(src Source, rate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(rate)

	r := &Resampler{
		src:      src,
		rate:     rate,
		step:     step,
		channels: channels,
		in:       make([]float32, max(src.BufSize(), channels)),
		lowpass:  step > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with interleaved frames at the target rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.started {
		r.start()
	}

	want := len(dst) / r.channels
	written := 0
	for written < want && !r.done {
		for r.pos >= 1 {
			r.pos--
			r.shift()
		}
		if !r.valid[1] {
			r.done = true
			break
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}
		written++
		r.pos += r.step
	}

	n := written * r.channels
	switch {
	case r.err != nil:
		return n, r.err
	case r.done && written == 0:
		return 0, io.EOF
	}
	return n, nil
}

// start loads the first frame into t-1 and t0 and reads ahead two more.
func (r *Resampler) start() {
	r.started = true
	r.valid[1] = r.pull(r.hist[1])
	copy(r.hist[0], r.hist[1])
	r.valid[0] = r.valid[1]
	r.valid[2] = r.pull(r.hist[2]) && r.valid[1]
	if !r.valid[2] {
		copy(r.hist[2], r.hist[1])
	}
	r.valid[3] = r.pull(r.hist[3]) && r.valid[2]
	if !r.valid[3] {
		copy(r.hist[3], r.hist[2])
	}
}

// shift drops t-1 and reads the next frame into t+2, repeating the last
// one past the end of the source.
func (r *Resampler) shift() {
	first := r.hist[0]
	copy(r.hist[:], r.hist[1:])
	copy(r.valid[:], r.valid[1:])
	r.hist[3] = first

	r.valid[3] = r.valid[2] && r.pull(r.hist[3])
	if !r.valid[3] {
		copy(r.hist[3], r.hist[2])
	}
}

// pull copies the next source frame into dst.
func (r *Resampler) pull(dst []float32) bool {
	if r.inPos >= r.inLen {
		if r.srcEOF || r.err != nil {
			return false
		}
		r.inPos = 0
		r.inLen = 0
		n, err := r.src.ReadSamples(r.in[:len(r.in)-len(r.in)%r.channels])
		r.inLen = n - n%r.channels
		switch {
		case err == io.EOF:
			r.srcEOF = true
		case err != nil:
			r.err = fmt.Errorf("%w", err)
		}
		if r.inLen == 0 {
			// nothing without an error ends the stream too
			r.srcEOF = true
			return false
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		if !r.primedLPF {
			copy(r.state, dst)
			r.primedLPF = true
		}
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}
	return true
}
