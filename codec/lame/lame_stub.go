// SPDX-License-Identifier: EPL-2.0

//go:build !cgo

package lame

import "github.com/ik5/encmonitor/codec"

// Stub implementations for builds without cgo

const Available = false

func newEncoder() (codec.Encoder, error) {
	return nil, ErrUnavailable
}

func newHIPDecoder() (codec.Decoder, error) {
	return nil, ErrUnavailable
}
