// SPDX-License-Identifier: EPL-2.0

package codec

import "github.com/ik5/encmonitor/formats/mp3"

// Worst-case sizes documented by LAME for lame_encode_buffer and the flush
// calls.
const (
	// EncodeSlack is added to 1.25 bytes per input sample for one Encode.
	EncodeSlack = 7200
	// FlushBytes bounds the output of one flush.
	FlushBytes = 7200
)

// EncodeBufferSize returns the worst-case Encode output for samples input
// samples per channel.
func EncodeBufferSize(samples int) int {
	return 5*samples/4 + EncodeSlack
}

// ScratchBytes returns the byte scratch a Session needs for blocks of up to
// maxBlock samples: one Encode plus one flush.
func ScratchBytes(maxBlock int) int {
	return EncodeBufferSize(maxBlock) + FlushBytes
}

// DecodeChunk returns how many encoded bytes a Session hands its decoder
// per Decode call. One chunk plus a held partial frame completes at most two
// frames, so ScratchSamples bounds the decoder output of one call.
func DecodeChunk(sampleRate, kbps int) int {
	return mp3.MinFrameLength(sampleRate, kbps)
}

// ScratchSamples is the per-channel PCM scratch of a Session.
const ScratchSamples = 2 * mp3.MaxFrameSamples
