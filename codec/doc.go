// SPDX-License-Identifier: EPL-2.0

// Package codec runs audio blocks through an MP3 encode/decode round trip.
//
// An Engine supplies stateful Encoder and Decoder contexts. A Session owns
// one of each and turns every input block into the samples the decoder
// could reconstruct from it:
//
//	sess, err := codec.Default.Open("lame", codec.DefaultParams(), 1024)
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	seq, err := sess.Process(left, right)
//	if err != nil {
//		return err
//	}
//	for s := range codec.All(seq) {
//		...
//	}
//	if err := seq.Err(); err != nil {
//		return err
//	}
//
// # Framing
//
// MP3 encoders work on frames of 1152 samples per channel (576 below
// 32 kHz), so the number of samples a call yields varies: most small blocks
// yield nothing and some yield a whole frame. The encoder look-ahead and
// decoder delay, Session.Latency, are trimmed from the start of the stream,
// so over time the output count trails the input count by what the codec
// still holds.
//
// With FlushGapless (the default) the encoder stream and the decoder
// context live as long as the session; the bit reservoir carries across
// calls. FlushHard finishes the stream every call and resets the decoder.
// Every call then decodes on its own and yields exactly its block, but
// each one is padded to whole frames and loses the reservoir, which costs
// quality at every block edge.
//
// # Errors
//
// Configuration problems wrap audio.ErrConfiguration, undersized buffers
// audio.ErrCapacity and codec memory failures audio.ErrResourceExhausted.
// A call that completes no frame is not an error; its sequence is empty.
//
// Passthrough has the same Processor shape and yields its input unchanged.
package codec
