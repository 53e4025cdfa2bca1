// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile       = errors.New("not a WAV file")
	ErrOnlyPCMSupported = errors.New("only integer PCM supported")
	ErrUnsupportedDepth = errors.New("unsupported bit depth")
)
