// SPDX-License-Identifier: EPL-2.0

// Package mp3 parses MPEG-1/2/2.5 Layer III frame headers and decodes a
// continuous MP3 byte stream fed in arbitrary chunks.
//
// StreamDecoder wraps github.com/hajimehoshi/go-mp3. go-mp3 is a pull
// decoder that expects a complete file; StreamDecoder instead keeps one
// go-mp3 context alive for the whole stream and only hands it frames that
// are already complete, so a frame split across two Decode calls is
// reassembled and the bit reservoir of earlier frames stays valid.
//
//	dec := mp3.NewStreamDecoder()
//	n, err := dec.Decode(chunk, left, right)
//	if errors.Is(err, audio.ErrNoFrame) {
//		// not enough bytes yet
//	}
//
// The header helpers (ParseFrameHeader, ValidBitrate, MinFrameLength) are
// used by the codec package to size its scratch buffers.
package mp3
