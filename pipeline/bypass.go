// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Bypass is the host-facing control flag. Values above 0.5 select the
// passthrough path. It may be set from any goroutine while audio runs.
type Bypass struct {
	bits atomic.Uint32
}

// BypassThreshold is the value the flag must exceed to bypass the codec.
const BypassThreshold = 0.5

func (b *Bypass) Name() string { return "Bypass" }

func (b *Bypass) Get() float32 { return math.Float32frombits(b.bits.Load()) }

func (b *Bypass) Set(v float32) { b.bits.Store(math.Float32bits(v)) }

// Text formats the value for a host parameter display.
func (b *Bypass) Text() string { return fmt.Sprintf("%.2f", b.Get()) }

// Engaged reports whether the codec is bypassed, with one atomic load.
func (b *Bypass) Engaged() bool { return b.Get() > BypassThreshold }
