// SPDX-License-Identifier: EPL-2.0

package utils

// PCM16Scale is the full-scale factor between normalised float samples and
// 16-bit PCM. The same factor is used in both directions so a round trip
// through int16 only loses quantisation.
const PCM16Scale = 32767.0

func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * PCM16Scale)
}

func Int16ToFloat32(v int16) float32 {
	return float32(v) / PCM16Scale
}

// Float32sToInt16s converts src into dst and returns the number of samples
// written, min(len(dst), len(src)).
func Float32sToInt16s(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Float32ToInt16(src[i])
	}
	return n
}
