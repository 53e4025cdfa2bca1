// SPDX-License-Identifier: EPL-2.0

// Package lame provides codec engines built on libmp3lame through cgo.
//
// Importing the package registers two engines in codec.Default:
//
//	lame        LAME encoder, LAME's hip decoder
//	lame-gomp3  LAME encoder, formats/mp3 StreamDecoder (go-mp3)
//
//	import _ "github.com/ik5/encmonitor/codec/lame"
//
// The encoder writes constant-bitrate frames at the input sample rate with
// no VBR header frame. Built without cgo, the engines stay registered but
// creating an encoder fails with ErrUnavailable.
//
// libmp3lame and its headers must be installed (libmp3lame-dev on Debian).
package lame
