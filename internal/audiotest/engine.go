// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
)

// Frame layout of the fake bitstream: a sync byte, a big-endian sample
// count and one signed byte per channel per sample.
const (
	frameSync   = 0xFA
	frameHeader = 3
	maxFrame    = 1152
)

// Engine is a deterministic codec.Engine. The encoder quantises to 8 bits
// and emits fixed-size frames once enough samples accumulate, so output is
// bursty the way an MP3 encoder's is. The decoder is persistent across calls
// and delays its output by DecoderDelay samples.
//
// Failure fields are read when a context is created or called; set them
// before handing the engine to a session.
type Engine struct {
	FrameSize    int
	EncoderDelay int
	DecoderDelay int

	FailNewEncoder error
	FailNewDecoder error
	// FailConfigure is returned by every encoder Configure call.
	FailConfigure error
	// FailEncode is returned by Encode once FailEncodeAfter calls succeeded.
	FailEncode      error
	FailEncodeAfter int
	// FailDecode is returned by Decode once FailDecodeAfter calls succeeded.
	FailDecode      error
	FailDecodeAfter int

	mu     sync.Mutex
	closed []string
}

// NewEngine returns an engine with MP3-like frame size and delays.
func NewEngine() *Engine {
	return &Engine{
		FrameSize:    1152,
		EncoderDelay: 576,
		DecoderDelay: 529,
	}
}

// FrameBytes returns the encoded size of one full frame.
func (e *Engine) FrameBytes() int { return frameHeader + 2*e.FrameSize }

// Closed returns the kinds of context closed so far, in order.
func (e *Engine) Closed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.closed...)
}

func (e *Engine) recordClose(kind string) {
	e.mu.Lock()
	e.closed = append(e.closed, kind)
	e.mu.Unlock()
}

func (e *Engine) NewEncoder() (codec.Encoder, error) {
	if e.FailNewEncoder != nil {
		return nil, e.FailNewEncoder
	}
	if e.FrameSize <= 0 || e.FrameSize > maxFrame {
		return nil, fmt.Errorf("fake: frame size %d: %w", e.FrameSize, audio.ErrConfiguration)
	}
	return &Encoder{e: e}, nil
}

func (e *Engine) NewDecoder() (codec.Decoder, error) {
	if e.FailNewDecoder != nil {
		return nil, e.FailNewDecoder
	}
	return &Decoder{e: e, line: make([]int16, 2*e.DecoderDelay)}, nil
}

// Encoder is the fake encoder context.
type Encoder struct {
	e          *Engine
	configured bool
	closed     bool
	acc        []int16 // interleaved pairs not yet framed
	calls      int
	Flushes    int
}

func (c *Encoder) Configure(p codec.Params) error {
	if c.closed {
		return audio.ErrClosed
	}
	c.configured = false
	if c.e.FailConfigure != nil {
		return c.e.FailConfigure
	}
	if p.Kilobitrate <= 0 {
		return fmt.Errorf("fake: bitrate %d: %w", p.Kilobitrate, audio.ErrConfiguration)
	}
	c.rearm()
	c.configured = true
	return nil
}

func (c *Encoder) rearm() {
	c.acc = append(c.acc[:0], make([]int16, 2*c.e.EncoderDelay)...)
}

func (c *Encoder) ready() error {
	switch {
	case c.closed:
		return audio.ErrClosed
	case !c.configured:
		return audio.ErrNotConfigured
	}
	return nil
}

// Encode writes every frame completed by this block.
func (c *Encoder) Encode(left, right []int16, out []byte) (int, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	if len(left) != len(right) {
		panic(audio.ErrChannelMismatch)
	}
	c.calls++
	if c.e.FailEncode != nil && c.calls > c.e.FailEncodeAfter {
		return 0, c.e.FailEncode
	}

	frameSize := c.e.FrameSize
	complete := (len(c.acc)/2 + len(left)) / frameSize
	if need := complete * c.e.FrameBytes(); need > len(out) {
		return 0, fmt.Errorf("fake: encode needs %d bytes, have %d: %w", need, len(out), audio.ErrCapacity)
	}

	for i := range left {
		c.acc = append(c.acc, left[i], right[i])
	}

	n := 0
	for len(c.acc) >= 2*frameSize {
		n += writeFrame(out[n:], c.acc[:2*frameSize])
		c.acc = c.acc[:copy(c.acc, c.acc[2*frameSize:])]
	}
	return n, nil
}

// FlushNoGap has nothing to emit: Encode already wrote every complete frame
// and the partial frame stays for the next call.
func (c *Encoder) FlushNoGap(out []byte) (int, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	c.Flushes++
	return 0, nil
}

// Flush zero-pads the partial frame and adds whole frames until the decoder
// delay is covered, the way LAME's final flush does, so the block is fully
// recoverable. It then starts a new stream.
func (c *Encoder) Flush(out []byte) (int, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	c.Flushes++

	n := 0
	if len(c.acc) > 0 {
		frameSize := c.e.FrameSize
		frames := (len(c.acc)/2 + c.e.DecoderDelay + frameSize - 1) / frameSize
		if need := frames * c.e.FrameBytes(); len(out) < need {
			return 0, fmt.Errorf("fake: flush needs %d bytes, have %d: %w", need, len(out), audio.ErrCapacity)
		}
		c.acc = append(c.acc, make([]int16, 2*frames*frameSize-len(c.acc))...)
		for i := range frames {
			n += writeFrame(out[n:], c.acc[2*i*frameSize:2*(i+1)*frameSize])
		}
	}
	c.rearm()
	return n, nil
}

func (c *Encoder) Delay() int { return c.e.EncoderDelay }

func (c *Encoder) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.e.recordClose("encoder")
	return nil
}

// writeFrame encodes interleaved pairs into one frame and returns its size.
func writeFrame(out []byte, pairs []int16) int {
	samples := len(pairs) / 2
	out[0] = frameSync
	out[1] = byte(samples >> 8)
	out[2] = byte(samples)
	for i, v := range pairs {
		out[frameHeader+i] = byte(quantize(v))
	}
	return frameHeader + len(pairs)
}

func quantize(v int16) int8 {
	q := (int32(v) + 128) >> 8
	if q > 127 {
		q = 127
	}
	return int8(q)
}

// Decoder is the fake decoder context.
type Decoder struct {
	e       *Engine
	pending []byte
	line    []int16
	pos     int
	calls   int
	closed  bool
	Resets  int
}

func (d *Decoder) Decode(data []byte, left, right []int16) (int, error) {
	if d.closed {
		return 0, audio.ErrClosed
	}
	d.calls++
	if d.e.FailDecode != nil && d.calls > d.e.FailDecodeAfter {
		return 0, d.e.FailDecode
	}

	d.pending = append(d.pending, data...)

	total := 0
	for {
		i := bytes.IndexByte(d.pending, frameSync)
		if i < 0 {
			d.pending = d.pending[:0]
			break
		}
		d.consume(i)
		if len(d.pending) < frameHeader {
			break
		}

		samples := int(d.pending[1])<<8 | int(d.pending[2])
		if samples == 0 || samples > maxFrame {
			d.consume(1)
			continue
		}
		size := frameHeader + 2*samples
		if len(d.pending) < size {
			break
		}
		if total+samples > len(left) || total+samples > len(right) {
			return total, fmt.Errorf("fake: decode needs %d samples: %w", total+samples, audio.ErrCapacity)
		}

		payload := d.pending[frameHeader:size]
		for j := range samples {
			l, r := d.delay(int16(int8(payload[2*j]))<<8, int16(int8(payload[2*j+1]))<<8)
			left[total+j] = l
			right[total+j] = r
		}
		d.consume(size)
		total += samples
	}

	if total == 0 {
		return 0, audio.ErrNoFrame
	}
	return total, nil
}

func (d *Decoder) delay(l, r int16) (int16, int16) {
	if len(d.line) == 0 {
		return l, r
	}
	ol, or := d.line[d.pos], d.line[d.pos+1]
	d.line[d.pos], d.line[d.pos+1] = l, r
	d.pos = (d.pos + 2) % len(d.line)
	return ol, or
}

func (d *Decoder) consume(n int) {
	d.pending = d.pending[:copy(d.pending, d.pending[n:])]
}

func (d *Decoder) Reset() error {
	d.pending = d.pending[:0]
	clear(d.line)
	d.pos = 0
	d.Resets++
	return nil
}

func (d *Decoder) Delay() int { return d.e.DecoderDelay }

func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.e.recordClose("decoder")
	return nil
}
