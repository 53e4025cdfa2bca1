// SPDX-License-Identifier: EPL-2.0

package encmonitor

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/codec"
	"github.com/ik5/encmonitor/pipeline"
)

// New opens a codec session on the engine registered in codec.Default
// under engineName, configures it with p and wraps it in an orchestrator.
//
// Parameters:
//   - engineName: registry name, e.g. "lame" or "lame-gomp3"
//   - p: sample rate, channel count, bitrate, quality and flush policy
//   - maxBlock: the largest host block, in samples per channel
//   - opts: orchestrator options (logger, queue limit, shared bypass flag)
//
// Any failure releases what was already created; the error wraps
// audio.ErrConfiguration, audio.ErrCapacity or audio.ErrResourceExhausted
// where it applies.
func New(engineName string, p codec.Params, maxBlock int, opts ...pipeline.Option) (*pipeline.Orchestrator, error) {
	sess, err := codec.Default.Open(engineName, p, maxBlock)
	if err != nil {
		return nil, fmt.Errorf("encmonitor: %w", err)
	}

	o, err := pipeline.New(sess, opts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("encmonitor: %w", err), sess.Close())
	}
	return o, nil
}

// Drive plays src through o the way a host would: in fixed blocks of
// blockSize frames, the last one zero-padded. Every output block is handed
// to sink, which must not keep the slices. It returns the number of source
// frames read; the end of src is not an error.
//
// Example:
//
//	frames, err := encmonitor.Drive(src, mon, 128, func(l, r []float32) error {
//		return writer.Write(l, r)
//	})
func Drive(src audio.Source, o *pipeline.Orchestrator, blockSize int, sink func(left, right []float32) error) (int, error) {
	if blockSize <= 0 {
		return 0, fmt.Errorf("encmonitor: block size %d: %w", blockSize, audio.ErrConfiguration)
	}

	split := audio.NewSplitter(src)
	inL := make([]float32, blockSize)
	inR := make([]float32, blockSize)
	outL := make([]float32, blockSize)
	outR := make([]float32, blockSize)

	total := 0
	for {
		n, err := split.ReadBlock(inL, inR)
		if n > 0 {
			clear(inL[n:])
			clear(inR[n:])
			clear(outL)
			clear(outR)

			o.Process(inL, inR, outL, outR)
			total += n
			if serr := sink(outL, outR); serr != nil {
				return total, fmt.Errorf("encmonitor: sink: %w", serr)
			}
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("encmonitor: read: %w", err)
		}
		if n == 0 {
			// A source that returns nothing without an error is done
			return total, nil
		}
	}
}
