// SPDX-License-Identifier: EPL-2.0

package lame

import (
	"github.com/ik5/encmonitor/codec"
	"github.com/ik5/encmonitor/formats/mp3"
)

// Engine pairs the LAME encoder with a decoder.
type Engine struct {
	newDecoder func() (codec.Decoder, error)
}

var (
	// HIP decodes with LAME's own hip decoder.
	HIP = Engine{newDecoder: newHIPDecoder}
	// GoMP3 decodes with the pure Go decoder of formats/mp3.
	GoMP3 = Engine{newDecoder: func() (codec.Decoder, error) {
		return mp3.NewStreamDecoder(), nil
	}}
)

func init() {
	codec.Register("lame", HIP)
	codec.Register("lame-gomp3", GoMP3)
}

func (e Engine) NewEncoder() (codec.Encoder, error) {
	return newEncoder()
}

func (e Engine) NewDecoder() (codec.Decoder, error) {
	return e.newDecoder()
}
