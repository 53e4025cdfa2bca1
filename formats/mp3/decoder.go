// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/encmonitor/audio"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

func newGoMP3Reader(r io.Reader) (mp3Reader, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// StreamDecoder is a persistent decoder context fed with arbitrary byte
// chunks of one MP3 stream. Bytes of a frame that is not complete yet are
// kept until a later Decode call completes it, and the go-mp3 decoder is
// kept alive across calls so the bit reservoir of the previous frame stays
// available.
//
// go-mp3 treats io.EOF from its source as end of stream, so it is only ever
// asked for exactly the samples of frames already handed to it.
type StreamDecoder struct {
	pending   []byte
	feed      bytes.Buffer
	dec       mp3Reader
	newReader func(io.Reader) (mp3Reader, error)
	pcm       []byte
}

func NewStreamDecoder() *StreamDecoder {
	return newStreamDecoder(newGoMP3Reader)
}

func newStreamDecoder(newReader func(io.Reader) (mp3Reader, error)) *StreamDecoder {
	return &StreamDecoder{
		pending:   make([]byte, 0, 16*1024),
		newReader: newReader,
		pcm:       make([]byte, MaxFrameSamples*4),
	}
}

// SampleRate returns the rate of the decoded stream, or 0 before the first
// frame.
func (d *StreamDecoder) SampleRate() int {
	if d.dec == nil {
		return 0
	}
	return d.dec.SampleRate()
}

// Delay returns the decoder's algorithmic delay in samples.
func (d *StreamDecoder) Delay() int { return DecoderDelay }

// Decode appends data to the stream and writes the samples of every frame
// that became complete into left and right. It returns audio.ErrNoFrame when
// no frame could be decoded and audio.ErrCapacity when left and right cannot
// hold the next complete frame; in that case the frame stays queued.
func (d *StreamDecoder) Decode(data []byte, left, right []int16) (int, error) {
	d.pending = append(d.pending, data...)

	total := 0
	for {
		start := d.sync()
		if start < 0 {
			break
		}

		h, _ := ParseFrameHeader(d.pending)
		n := h.Length()
		if len(d.pending) < n {
			// Partial frame, continued by a later call
			break
		}

		samples := h.Samples()
		if total+samples > len(left) || total+samples > len(right) {
			return total, fmt.Errorf("mp3: decode: need %d samples, have %d: %w",
				total+samples, min(len(left), len(right)), audio.ErrCapacity)
		}

		d.feed.Write(d.pending[:n])
		d.consume(n)

		if err := d.decodeFrame(left[total:], right[total:], samples); err != nil {
			d.Reset()
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		total += samples
	}

	if total == 0 {
		return 0, audio.ErrNoFrame
	}
	return total, nil
}

func (d *StreamDecoder) decodeFrame(left, right []int16, samples int) error {
	if d.dec == nil {
		dec, err := d.newReader(&d.feed)
		if err != nil {
			return fmt.Errorf("mp3: open stream: %w: %w", audio.ErrNoFrame, err)
		}
		d.dec = dec
	}

	// go-mp3 always emits 16-bit little-endian stereo
	buf := d.pcm[:samples*4]
	if _, err := io.ReadFull(d.dec, buf); err != nil {
		return fmt.Errorf("mp3: decode frame: %w: %w", audio.ErrNoFrame, err)
	}

	for i := range samples {
		left[i] = int16(uint16(buf[4*i]) | uint16(buf[4*i+1])<<8)
		right[i] = int16(uint16(buf[4*i+2]) | uint16(buf[4*i+3])<<8)
	}
	return nil
}

// sync drops bytes in front of the first frame header and returns its index
// (always 0), or -1 when no header is buffered.
func (d *StreamDecoder) sync() int {
	for i := 0; i+HeaderSize <= len(d.pending); i++ {
		if d.pending[i] != 0xFF {
			continue
		}
		if _, err := ParseFrameHeader(d.pending[i:]); err == nil {
			d.consume(i)
			return 0
		}
	}

	// Keep a possible partial header
	if keep := HeaderSize - 1; len(d.pending) > keep {
		d.consume(len(d.pending) - keep)
	}
	return -1
}

func (d *StreamDecoder) consume(n int) {
	rest := copy(d.pending, d.pending[n:])
	d.pending = d.pending[:rest]
}

// Reset drops buffered bytes and the go-mp3 decoder; the next frame starts
// a fresh stream.
func (d *StreamDecoder) Reset() error {
	d.dec = nil
	d.feed.Reset()
	d.pending = d.pending[:0]
	return nil
}

func (d *StreamDecoder) Close() error {
	return d.Reset()
}
