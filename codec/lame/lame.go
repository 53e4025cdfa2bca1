// SPDX-License-Identifier: EPL-2.0

//go:build cgo

package lame

/*
#cgo LDFLAGS: -lmp3lame -lm
#include <stdlib.h>
#include <lame/lame.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
	"github.com/ik5/encmonitor/formats/mp3"
)

// Available reports whether libmp3lame is linked in.
const Available = true

// Encoder is a LAME encoder context. LAME cannot re-run lame_init_params on
// a context, so every configuration and every hard flush builds a fresh one.
type Encoder struct {
	gfp        *C.lame_global_flags
	params     codec.Params
	configured bool
	closed     bool
}

func newEncoder() (codec.Encoder, error) {
	gfp := C.lame_init()
	if gfp == nil {
		return nil, fmt.Errorf("lame: init: %w", audio.ErrResourceExhausted)
	}
	return &Encoder{gfp: gfp}, nil
}

func (e *Encoder) Configure(p codec.Params) error {
	if e.closed {
		return audio.ErrClosed
	}
	e.configured = false
	if err := e.arm(p); err != nil {
		return err
	}
	e.params = p
	e.configured = true
	return nil
}

// arm sets p on the context, replacing it first when it was initialised.
func (e *Encoder) arm(p codec.Params) error {
	if e.configured {
		C.lame_close(e.gfp)
		e.gfp = C.lame_init()
		if e.gfp == nil {
			e.closed = true
			return fmt.Errorf("lame: init: %w", audio.ErrResourceExhausted)
		}
	}

	mode := C.JOINT_STEREO
	if p.Format.NumChannels == 1 {
		mode = C.MONO
	}

	setters := []struct {
		name string
		ret  C.int
	}{
		{"num channels", C.lame_set_num_channels(e.gfp, C.int(p.Format.NumChannels))},
		{"in sample rate", C.lame_set_in_samplerate(e.gfp, C.int(p.Format.SampleRate))},
		// Decoded audio stays at the host rate
		{"out sample rate", C.lame_set_out_samplerate(e.gfp, C.int(p.Format.SampleRate))},
		{"bitrate", C.lame_set_brate(e.gfp, C.int(p.Kilobitrate))},
		{"quality", C.lame_set_quality(e.gfp, C.int(p.Quality))},
		{"mode", C.lame_set_mode(e.gfp, C.MPEG_mode(mode))},
		{"vbr tag", C.lame_set_bWriteVbrTag(e.gfp, 0)},
	}
	for _, s := range setters {
		if s.ret != 0 {
			return apiError("set "+s.name, int(s.ret))
		}
	}

	if ret := C.lame_init_params(e.gfp); ret < 0 {
		return apiError("init params", int(ret))
	}
	return nil
}

func (e *Encoder) ready() error {
	switch {
	case e.closed:
		return audio.ErrClosed
	case !e.configured:
		return audio.ErrNotConfigured
	}
	return nil
}

func (e *Encoder) Encode(left, right []int16, out []byte) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if len(left) != len(right) {
		panic(audio.ErrChannelMismatch)
	}
	if len(left) == 0 {
		return 0, nil
	}
	if need := codec.EncodeBufferSize(len(left)); len(out) < need {
		return 0, fmt.Errorf("lame: encode needs %d bytes, have %d: %w", need, len(out), audio.ErrCapacity)
	}

	ret := C.lame_encode_buffer(e.gfp,
		(*C.short)(unsafe.Pointer(&left[0])),
		(*C.short)(unsafe.Pointer(&right[0])),
		C.int(len(left)),
		(*C.uchar)(unsafe.Pointer(&out[0])),
		C.int(len(out)))
	if ret < 0 {
		return 0, encodeError("encode", int(ret))
	}
	return int(ret), nil
}

func (e *Encoder) FlushNoGap(out []byte) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if len(out) < codec.FlushBytes {
		return 0, fmt.Errorf("lame: flush needs %d bytes, have %d: %w", codec.FlushBytes, len(out), audio.ErrCapacity)
	}

	ret := C.lame_encode_flush_nogap(e.gfp, (*C.uchar)(unsafe.Pointer(&out[0])), C.int(len(out)))
	if ret < 0 {
		return 0, encodeError("flush nogap", int(ret))
	}
	return int(ret), nil
}

// Flush pads and emits the last frame, then builds a new context with the
// same parameters.
func (e *Encoder) Flush(out []byte) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if len(out) < codec.FlushBytes {
		return 0, fmt.Errorf("lame: flush needs %d bytes, have %d: %w", codec.FlushBytes, len(out), audio.ErrCapacity)
	}

	ret := C.lame_encode_flush(e.gfp, (*C.uchar)(unsafe.Pointer(&out[0])), C.int(len(out)))
	if ret < 0 {
		return 0, encodeError("flush", int(ret))
	}
	if err := e.arm(e.params); err != nil {
		e.configured = false
		return 0, err
	}
	return int(ret), nil
}

func (e *Encoder) Delay() int {
	if e.closed || !e.configured {
		return 0
	}
	return int(C.lame_get_encoder_delay(e.gfp))
}

func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.configured = false
	if ret := C.lame_close(e.gfp); ret != 0 {
		return fmt.Errorf("lame: close: code %d: %w", int(ret), ErrGeneric)
	}
	return nil
}

// HIPDecoder is LAME's bundled mpglib decoder. It copies every byte it is
// given and keeps partial frames until they complete.
type HIPDecoder struct {
	hip    C.hip_t
	closed bool
}

func newHIPDecoder() (codec.Decoder, error) {
	hip := C.hip_decode_init()
	if hip == nil {
		return nil, fmt.Errorf("lame: hip init: %w", audio.ErrResourceExhausted)
	}
	return &HIPDecoder{hip: hip}, nil
}

// Decode feeds data to hip and pulls one frame at a time, so it never
// writes past left and right. Frames that do not fit stay in hip for the
// next call.
func (d *HIPDecoder) Decode(data []byte, left, right []int16) (int, error) {
	if d.closed {
		return 0, audio.ErrClosed
	}

	var in *C.uchar
	if len(data) > 0 {
		in = (*C.uchar)(unsafe.Pointer(&data[0]))
	}
	size := C.size_t(len(data))

	total := 0
	for {
		if len(left)-total < mp3.MaxFrameSamples || len(right)-total < mp3.MaxFrameSamples {
			return total, fmt.Errorf("lame: hip decode needs %d samples: %w", total+mp3.MaxFrameSamples, audio.ErrCapacity)
		}

		ret := C.hip_decode1(d.hip, in, size,
			(*C.short)(unsafe.Pointer(&left[total])),
			(*C.short)(unsafe.Pointer(&right[total])))
		in, size = nil, 0

		if ret < 0 {
			if total > 0 {
				return total, nil
			}
			return 0, fmt.Errorf("lame: hip decode: %w", audio.ErrNoFrame)
		}
		if ret == 0 {
			break
		}
		total += int(ret)
	}

	if total == 0 {
		return 0, audio.ErrNoFrame
	}
	return total, nil
}

// Reset replaces the hip context; hip has no reset call of its own.
func (d *HIPDecoder) Reset() error {
	if d.closed {
		return audio.ErrClosed
	}
	C.hip_decode_exit(d.hip)
	d.hip = C.hip_decode_init()
	if d.hip == nil {
		d.closed = true
		return fmt.Errorf("lame: hip init: %w", audio.ErrResourceExhausted)
	}
	return nil
}

func (d *HIPDecoder) Delay() int { return mp3.DecoderDelay }

func (d *HIPDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	C.hip_decode_exit(d.hip)
	return nil
}
