// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	ErrShortHeader = errors.New("mp3: short frame header")
	ErrNoSync      = errors.New("mp3: no frame sync")
	ErrBadHeader   = errors.New("mp3: invalid frame header")
	ErrNotLayer3   = errors.New("mp3: not a layer III frame")
)
