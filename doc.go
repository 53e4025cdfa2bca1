// SPDX-License-Identifier: EPL-2.0

// Package encmonitor lets an audio host monitor, in real time, what an MP3
// encode/decode round trip does to a stereo signal while keeping the
// monitored output at a fixed, declared delay.
//
// # Quick Start
//
// Import an engine package for its side effect and build a pipeline by
// engine name:
//
//	import _ "github.com/ik5/encmonitor/codec/lame"
//
//	mon, err := encmonitor.New("lame", codec.DefaultParams(), 1024)
//	if err != nil {
//		return err // rejected sample rate, bitrate or codec failure
//	}
//	defer mon.Close()
//
//	host.SetLatency(mon.DeclaredDelay())
//
//	// in the audio callback
//	mon.Process(inL, inR, outL, outR)
//
//	// from the UI thread
//	mon.Bypass().Set(1)
//
// # Packages
//
//   - codec: the round-trip Session, the Passthrough and the engine registry
//   - codec/lame: libmp3lame engines ("lame", "lame-gomp3")
//   - formats/mp3: frame headers and the go-mp3 stream decoder
//   - latency: the queue that absorbs bursty codec output
//   - pipeline: the per-block Orchestrator and the Bypass flag
//   - audio, utils: sample types, errors and PCM conversion
//
// # Delay
//
// Codec output arrives a frame at a time. A session trims its own latency,
// so decoded sample k is input sample k, but it holds samples back until a
// frame completes. The latency queue starts with pipeline.DeclaredDelay
// samples of silence, enough for the most a session within
// pipeline.CodecLatencyBudget can hold, so the monitored and the bypassed
// signal both lag the input by exactly that constant. Switching between
// them neither drops nor repeats audio.
//
// # Errors
//
// Initialisation fails loudly: configuration and capacity problems are
// returned by New. Once running, Process never fails; codec errors switch
// the affected block to the passthrough and are reported by ReportFaults.
package encmonitor
