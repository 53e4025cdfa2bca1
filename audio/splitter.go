// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Splitter turns an interleaved Source into separate left and right blocks,
// the shape a host audio callback hands to the pipeline. Mono sources are
// duplicated onto both channels.
type Splitter struct {
	src Source
	tmp []float32
}

func NewSplitter(src Source) *Splitter {
	return &Splitter{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (s *Splitter) SampleRate() int { return s.src.SampleRate() }
func (s *Splitter) BufSize() int    { return s.src.BufSize() }
func (s *Splitter) Close() error {
	err := s.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadBlock fills left and right with up to len(left) frames and returns the
// number of frames written. Positions past that count are left untouched.
func (s *Splitter) ReadBlock(left, right []float32) (int, error) {
	MustMatch(left, right)
	if len(left) == 0 {
		return 0, nil
	}

	channels := s.src.Channels()
	if channels < 1 || channels > 2 {
		return 0, ErrTooManyChannels
	}

	samplesNeeded := len(left) * channels

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(s.tmp) < samplesNeeded {
		s.tmp = make([]float32, samplesNeeded)
	} else if len(s.tmp) < samplesNeeded {
		s.tmp = s.tmp[:samplesNeeded]
	}

	n, err := s.src.ReadSamples(s.tmp[:samplesNeeded])
	if n == 0 {
		return 0, err
	}
	if n%channels != 0 {
		return 0, ErrInvalidDstSize
	}
	frames := n / channels

	switch channels {
	case 1:
		copy(left, s.tmp[:frames])
		copy(right, s.tmp[:frames])
	case 2:
		for f := range frames {
			idx := f << 1 // f * 2
			left[f] = s.tmp[idx]
			right[f] = s.tmp[idx+1]
		}
	}

	return frames, err
}
