// SPDX-License-Identifier: EPL-2.0

package main

import (
	"io"
	"math"
)

// tone is a stereo sine source. frames < 0 plays forever.
type tone struct {
	rate   int
	amp    float64
	step   float64
	phase  float64
	frames int
}

func newTone(rate int, freq, amp float64, frames int) *tone {
	return &tone{
		rate:   rate,
		amp:    amp,
		step:   2 * math.Pi * freq / float64(rate),
		frames: frames,
	}
}

func (t *tone) SampleRate() int { return t.rate }
func (t *tone) Channels() int   { return 2 }
func (t *tone) BufSize() int    { return 4096 }
func (t *tone) Close() error    { return nil }

func (t *tone) ReadSamples(dst []float32) (int, error) {
	n := len(dst) / 2
	if t.frames >= 0 {
		if t.frames == 0 {
			return 0, io.EOF
		}
		n = min(n, t.frames)
		t.frames -= n
	}

	for i := range n {
		v := float32(t.amp * math.Sin(t.phase))
		dst[2*i] = v
		dst[2*i+1] = v
		t.phase += t.step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	return 2 * n, nil
}
