// SPDX-License-Identifier: EPL-2.0

package mp3

// Version is the MPEG audio version of a frame.
type Version int

const (
	MPEG25 Version = iota
	MPEG2
	MPEG1
)

const (
	// HeaderSize is the size of an MPEG audio frame header without CRC.
	HeaderSize = 4
	// MaxFrameSamples is the largest number of samples per channel one
	// Layer III frame decodes to.
	MaxFrameSamples = 1152
	// DecoderDelay is the synthesis filterbank delay, in samples, of a
	// Layer III decoder (528 + 1).
	DecoderDelay = 529
)

var bitratesV1 = [15]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
var bitratesV2 = [15]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}

var sampleRates = [3][3]int{
	MPEG25: {11025, 12000, 8000},
	MPEG2:  {22050, 24000, 16000},
	MPEG1:  {44100, 48000, 32000},
}

// FrameHeader is a decoded Layer III frame header.
type FrameHeader struct {
	Version    Version
	Bitrate    int // kbit/s
	SampleRate int
	Padding    bool
	Channels   int
	CRC        bool
}

// Length returns the full frame size in bytes, header included.
func (h FrameHeader) Length() int {
	coeff := 144
	if h.Version != MPEG1 {
		coeff = 72
	}
	n := coeff * h.Bitrate * 1000 / h.SampleRate
	if h.Padding {
		n++
	}
	return n
}

// Samples returns the number of samples per channel the frame decodes to.
func (h FrameHeader) Samples() int {
	if h.Version == MPEG1 {
		return 1152
	}
	return 576
}

// ParseFrameHeader decodes the four header bytes at the start of b.
// Only Layer III frames with a fixed bitrate index are accepted.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	if len(b) < HeaderSize {
		return FrameHeader{}, ErrShortHeader
	}
	if b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return FrameHeader{}, ErrNoSync
	}

	var h FrameHeader
	switch (b[1] >> 3) & 0x03 {
	case 0:
		h.Version = MPEG25
	case 2:
		h.Version = MPEG2
	case 3:
		h.Version = MPEG1
	default:
		return FrameHeader{}, ErrBadHeader
	}

	if (b[1]>>1)&0x03 != 1 {
		return FrameHeader{}, ErrNotLayer3
	}
	h.CRC = b[1]&0x01 == 0

	bitrateIdx := b[2] >> 4
	if bitrateIdx == 0 || bitrateIdx == 15 {
		return FrameHeader{}, ErrBadHeader
	}
	if h.Version == MPEG1 {
		h.Bitrate = bitratesV1[bitrateIdx]
	} else {
		h.Bitrate = bitratesV2[bitrateIdx]
	}

	rateIdx := (b[2] >> 2) & 0x03
	if rateIdx == 3 {
		return FrameHeader{}, ErrBadHeader
	}
	h.SampleRate = sampleRates[h.Version][rateIdx]
	h.Padding = (b[2]>>1)&0x01 == 1

	h.Channels = 2
	if b[3]>>6 == 3 {
		h.Channels = 1
	}

	return h, nil
}

// VersionFor returns the MPEG version that carries sampleRate.
func VersionFor(sampleRate int) (Version, bool) {
	for v, rates := range sampleRates {
		for _, r := range rates {
			if r == sampleRate {
				return Version(v), true
			}
		}
	}
	return 0, false
}

// ValidBitrate reports whether kbps is a Layer III bitrate for the MPEG
// version that carries sampleRate.
func ValidBitrate(sampleRate, kbps int) bool {
	v, ok := VersionFor(sampleRate)
	if !ok {
		return false
	}
	table := bitratesV2
	if v == MPEG1 {
		table = bitratesV1
	}
	for _, b := range table[1:] {
		if b == kbps {
			return true
		}
	}
	return false
}

// MinFrameLength returns the shortest frame, in bytes, a stream at the
// given sample rate and bitrate can contain.
func MinFrameLength(sampleRate, kbps int) int {
	v, _ := VersionFor(sampleRate)
	return FrameHeader{Version: v, Bitrate: kbps, SampleRate: sampleRate}.Length()
}
