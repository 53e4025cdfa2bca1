// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/encmonitor/audio"
)

const pcmFormat = 1

type wavSource struct {
	dec    *gowav.Decoder
	closer io.Closer
	rate   int
	chans  int
	scale  float32
	buf    *goaudio.IntBuffer
	done   bool
}

// Open parses the header of r and returns a source positioned at the
// first sample. When r is an io.Closer, closing the source closes it.
func Open(r io.ReadSeeker) (audio.Source, error) {
	dec := gowav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: format tag %d", ErrOnlyPCMSupported, dec.WavAudioFormat)
	}

	var scale float32
	switch dec.BitDepth {
	case 8, 16, 24, 32:
		scale = 1 / float32(int64(1)<<(dec.BitDepth-1))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDepth, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	s := &wavSource{
		dec:   dec,
		rate:  int(dec.SampleRate),
		chans: int(dec.NumChans),
		scale: scale,
		buf:   &goaudio.IntBuffer{Data: make([]int, 0)},
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

func (s *wavSource) SampleRate() int { return s.rate }
func (s *wavSource) Channels() int   { return s.chans }
func (s *wavSource) BufSize() int    { return 4096 }

func (s *wavSource) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	// whole frames only
	want := len(dst) - len(dst)%s.chans
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	n -= n % s.chans

	// 8-bit WAV is unsigned
	offset := 0
	if s.dec.BitDepth == 8 {
		offset = 128
	}
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v-offset) * s.scale
	}

	if n == 0 {
		s.done = true
		return 0, io.EOF
	}
	return n, nil
}
