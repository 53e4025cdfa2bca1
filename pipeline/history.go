// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"github.com/ik5/encmonitor/audio"
	"github.com/ik5/encmonitor/latency"
)

// history keeps the most recent input samples, oldest overwritten first.
type history struct {
	buf  []audio.StereoSample
	head int // next write
	n    int
}

func newHistory(size int) history {
	return history{buf: make([]audio.StereoSample, size)}
}

func (h *history) push(left, right []float32) {
	for i := range left {
		h.buf[h.head] = audio.StereoSample{L: left[i], R: right[i]}
		h.head = (h.head + 1) % len(h.buf)
	}
	h.n = min(h.n+len(left), len(h.buf))
}

// replay enqueues the last n pushed samples in their original order and
// returns how many it had.
func (h *history) replay(q *latency.Queue, n int) int {
	n = min(max(n, 0), h.n)
	start := (h.head - n + len(h.buf)) % len(h.buf)
	for i := range n {
		q.Enqueue(h.buf[(start+i)%len(h.buf)])
	}
	return n
}
