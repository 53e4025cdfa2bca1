// SPDX-License-Identifier: EPL-2.0

// Package wav reads PCM WAV files as an audio.Source, so the host
// simulator can monitor recorded material instead of a test tone.
//
// Integer PCM of 8, 16, 24 and 32 bits is accepted; samples are scaled
// to [-1, 1) by the file's bit depth.
package wav
