// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"fmt"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/utils"
)

// Session runs blocks through one encoder and one decoder context and
// yields the decoded result. All scratch is allocated by NewSession; Process
// does not allocate.
type Session struct {
	enc Encoder
	dec Decoder

	maxBlock   int
	params     Params
	configured bool
	closed     bool

	inL, inR []int16
	bytes    []byte
	seq      sessionSamples
}

// NewSession creates the encoder and then the decoder context of engine.
// When the decoder cannot be created the encoder is closed before the error
// is returned. maxBlock is the largest block Process accepts.
func NewSession(engine Engine, maxBlock int) (*Session, error) {
	if maxBlock <= 0 {
		return nil, fmt.Errorf("codec: max block %d: %w", maxBlock, audio.ErrConfiguration)
	}

	enc, err := engine.NewEncoder()
	if err != nil {
		return nil, fmt.Errorf("codec: new encoder: %w", err)
	}
	dec, err := engine.NewDecoder()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("codec: new decoder: %w", err), enc.Close())
	}

	s := &Session{
		enc:      enc,
		dec:      dec,
		maxBlock: maxBlock,
		inL:      make([]int16, maxBlock),
		inR:      make([]int16, maxBlock),
		bytes:    make([]byte, ScratchBytes(maxBlock)),
	}
	s.seq = sessionSamples{
		dec:  dec,
		pcmL: make([]int16, ScratchSamples),
		pcmR: make([]int16, ScratchSamples),
	}
	return s, nil
}

// Configure validates p and configures the encoder. After a failure the
// session refuses Process until a later Configure succeeds.
func (s *Session) Configure(p Params) error {
	if s.closed {
		return audio.ErrClosed
	}
	s.configured = false

	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.enc.Configure(p); err != nil {
		return fmt.Errorf("codec: configure encoder: %w", err)
	}
	if err := s.dec.Reset(); err != nil {
		return fmt.Errorf("codec: reset decoder: %w", err)
	}

	s.params = p
	s.seq.chunk = DecodeChunk(p.Format.SampleRate, p.Kilobitrate)
	s.seq.mono = p.Format.NumChannels == 1
	s.seq.trim = s.Latency()
	s.seq.finish()
	s.configured = true
	return nil
}

// Reset discards everything the encoder and decoder hold and starts a new
// stream with the current parameters. The first sample of the next Process
// call is again decoded sample zero.
func (s *Session) Reset() error {
	switch {
	case s.closed:
		return audio.ErrClosed
	case !s.configured:
		return audio.ErrNotConfigured
	}
	return s.Configure(s.params)
}

// Params returns the parameters of the last successful Configure.
func (s *Session) Params() Params { return s.params }

// MaxBlock returns the largest block Process accepts.
func (s *Session) MaxBlock() int { return s.maxBlock }

// Latency is the encoder look-ahead plus the decoder delay. That many
// decoded samples are dropped at the start of every stream, so decoded
// sample k is input sample k; Latency is how long a sample waits inside the
// codec before it can be yielded.
func (s *Session) Latency() int {
	return s.enc.Delay() + s.dec.Delay()
}

// Process encodes the block, flushes per the configured policy and returns
// the decoded samples. Decoding runs while the sequence is consumed. A
// call whose bytes complete no frame yields an empty sequence.
//
// Under FlushHard every call is a stream of its own and yields exactly
// len(left) samples: the codec latency is trimmed, frame padding past the
// block is dropped and a short decode is filled with silence.
func (s *Session) Process(left, right []float32) (Samples, error) {
	audio.MustMatch(left, right)
	switch {
	case s.closed:
		return nil, audio.ErrClosed
	case !s.configured:
		return nil, audio.ErrNotConfigured
	case len(left) > s.maxBlock:
		return nil, fmt.Errorf("codec: block of %d samples exceeds %d: %w", len(left), s.maxBlock, audio.ErrCapacity)
	}

	n := utils.Float32sToInt16s(s.inL, left)
	utils.Float32sToInt16s(s.inR, right)

	w, err := s.enc.Encode(s.inL[:n], s.inR[:n], s.bytes)
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}

	hard := s.params.Policy == FlushHard
	var f int
	if hard {
		f, err = s.enc.Flush(s.bytes[w:])
		if err == nil {
			err = s.dec.Reset()
		}
	} else {
		f, err = s.enc.FlushNoGap(s.bytes[w:])
	}
	if err != nil {
		return nil, fmt.Errorf("codec: flush: %w", err)
	}

	s.seq.start(s.bytes[:w+f])
	if hard {
		s.seq.trim = s.Latency()
		s.seq.want = n
	}
	return &s.seq, nil
}

// Close releases the decoder and then the encoder. It is safe to call more
// than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.configured = false

	var errs []error
	if s.dec != nil {
		if err := s.dec.Close(); err != nil {
			errs = append(errs, fmt.Errorf("codec: close decoder: %w", err))
		}
	}
	if s.enc != nil {
		if err := s.enc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("codec: close encoder: %w", err))
		}
	}
	return errors.Join(errs...)
}

// sessionSamples decodes the bytes of one Process call in chunks of at most
// chunk bytes.
type sessionSamples struct {
	dec   Decoder
	chunk int
	mono  bool
	trim  int // decoded samples still to drop at stream start

	want    int // exact count to yield, or -1 for whatever decodes
	yielded int

	data  []byte
	off   int
	drain bool // decoder holds complete frames that did not fit
	done  bool
	err   error

	pcmL, pcmR []int16
	pos, n     int
}

func (q *sessionSamples) start(data []byte) {
	q.data = data
	q.off = 0
	q.drain = false
	q.done = false
	q.err = nil
	q.pos, q.n = 0, 0
	q.want = -1
	q.yielded = 0
}

func (q *sessionSamples) finish() {
	q.start(nil)
	q.done = true
}

func (q *sessionSamples) Next() (audio.StereoSample, bool) {
	if q.want >= 0 && q.yielded >= q.want {
		return audio.StereoSample{}, false
	}
	for q.pos >= q.n || q.trim > 0 {
		if q.pos < q.n {
			skip := min(q.trim, q.n-q.pos)
			q.pos += skip
			q.trim -= skip
			continue
		}
		if !q.refill() {
			if q.err == nil && q.yielded < q.want {
				q.yielded++
				return audio.StereoSample{}, true
			}
			return audio.StereoSample{}, false
		}
	}

	l := q.pcmL[q.pos]
	r := q.pcmR[q.pos]
	if q.mono {
		r = l
	}
	q.pos++
	q.yielded++
	return audio.StereoSample{L: utils.Int16ToFloat32(l), R: utils.Int16ToFloat32(r)}, true
}

func (q *sessionSamples) refill() bool {
	if q.done || q.err != nil {
		return false
	}
	if q.off >= len(q.data) && !q.drain {
		q.done = true
		q.data = nil
		return false
	}

	var chunk []byte
	if !q.drain {
		end := min(q.off+q.chunk, len(q.data))
		chunk = q.data[q.off:end]
		q.off = end
	}
	q.drain = false

	n, err := q.dec.Decode(chunk, q.pcmL, q.pcmR)
	switch {
	case err == nil:
	case errors.Is(err, audio.ErrNoFrame):
		n = 0
	case errors.Is(err, audio.ErrCapacity) && n > 0:
		q.drain = true
	default:
		q.err = fmt.Errorf("codec: decode: %w", err)
		q.done = true
		return false
	}

	q.pos, q.n = 0, n
	return true
}

func (q *sessionSamples) Err() error { return q.err }
