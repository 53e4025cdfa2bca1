// SPDX-License-Identifier: EPL-2.0

package codec

import "github.com/ik5/encmonitor/audio"

// Passthrough yields its input unchanged, one output per input sample.
type Passthrough struct {
	seq blockSamples
}

// NewPassthrough returns a ready Passthrough. It holds no resources.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Process yields left and right sample by sample. The sequence reads the
// caller's slices, so they must stay untouched until it is drained.
func (p *Passthrough) Process(left, right []float32) (Samples, error) {
	audio.MustMatch(left, right)
	p.seq = blockSamples{left: left, right: right}
	return &p.seq, nil
}

// Latency is always zero.
func (p *Passthrough) Latency() int { return 0 }

// blockSamples walks a caller-owned block.
type blockSamples struct {
	left  []float32
	right []float32
	pos   int
}

func (b *blockSamples) Next() (audio.StereoSample, bool) {
	if b.pos >= len(b.left) {
		b.left, b.right = nil, nil
		return audio.StereoSample{}, false
	}
	s := audio.StereoSample{L: b.left[b.pos], R: b.right[b.pos]}
	b.pos++
	return s, true
}

func (b *blockSamples) Err() error { return nil }
