// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds signal sources and a deterministic codec engine
// shared by the tests of the other packages.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the amplitude of channel ch at frame index i.
type Waveform func(i, ch int) float32

// MockSource generates a finite interleaved stream from a Waveform. It
// satisfies audio.Source without importing it.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	wave       Waveform
	closed     bool
}

// NewMockSource returns a source of frames frames per channel.
func NewMockSource(sampleRate, channels, frames int, wave func(i, ch int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		wave:       wave,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewSineSource plays the same full-scale sine on every channel.
func NewSineSource(sampleRate, channels, frames int, freq float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(i, _ int) float32 {
		return Sine(sampleRate, freq, 1, i)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the stream to its first frame.
func (m *MockSource) Reset() { m.pos = 0 }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.pos)
	for f := range n {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.wave(m.pos+f, ch)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}

// Sine returns frame i of a sine at freq Hz with the given peak amplitude.
func Sine(sampleRate int, freq, amp float64, i int) float32 {
	return float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
}

// SineBlock fills left and right with consecutive frames of a sine starting
// at frame start.
func SineBlock(left, right []float32, sampleRate int, freq, amp float64, start int) {
	for i := range left {
		v := Sine(sampleRate, freq, amp, start+i)
		left[i] = v
		right[i] = v
	}
}

// Noise returns a pseudo-random value in [-amp, amp) for frame i. Unlike a
// sine it does not repeat, so a signal shifted by any amount will not match
// itself.
func Noise(amp float64, i int) float32 {
	x := uint64(i)*0x9E3779B97F4A7C15 + 0x632BE59BD9B4E019
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return float32(amp * (float64(x>>11)/(1<<53)*2 - 1))
}

// NoiseBlock fills left with Noise starting at frame start and right with
// its negation.
func NoiseBlock(left, right []float32, amp float64, start int) {
	for i := range left {
		v := Noise(amp, start+i)
		left[i] = v
		right[i] = -v
	}
}

// RMS returns the root mean square of x, or 0 for an empty slice.
func RMS(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}
