// SPDX-License-Identifier: EPL-2.0

package latency

import "github.com/ik5/encmonitor/audio"

// Queue is a two-channel FIFO of stereo samples backed by one ring buffer
// per channel. Both channels always hold the same number of samples.
//
// A bounded queue (limit > 0) never grows past limit: an enqueue into a
// full queue discards the oldest sample and counts it in Dropped. An
// unbounded queue doubles its storage when full.
type Queue struct {
	left, right []float32
	head        int
	size        int
	limit       int
	dropped     uint64
}

// minUnbounded is the initial storage of an unbounded queue.
const minUnbounded = 4096

// New returns a queue holding prefill silent samples. A positive limit
// below prefill is raised to prefill.
func New(prefill, limit int) *Queue {
	prefill = max(prefill, 0)

	capacity := limit
	if limit <= 0 {
		limit = 0
		capacity = max(2*prefill, minUnbounded)
	} else if limit < prefill {
		limit = prefill
		capacity = prefill
	}

	q := &Queue{
		left:  make([]float32, capacity),
		right: make([]float32, capacity),
		limit: limit,
	}
	q.EnqueuePadding(prefill)
	return q
}

// Enqueue appends s to the back of both channels.
func (q *Queue) Enqueue(s audio.StereoSample) {
	if q.size == len(q.left) {
		if q.limit > 0 {
			q.dropOldest()
		} else {
			q.grow()
		}
	}

	i := q.index(q.size)
	q.left[i] = s.L
	q.right[i] = s.R
	q.size++
}

// EnqueuePadding appends n silent samples.
func (q *Queue) EnqueuePadding(n int) {
	for range n {
		q.Enqueue(audio.Silence)
	}
}

// Dequeue moves the oldest min(len(left), Len()) samples into left and
// right and returns that count. Positions past the count are not touched.
// left and right must have the same length.
func (q *Queue) Dequeue(left, right []float32) int {
	audio.MustMatch(left, right)

	n := min(len(left), q.size)
	if n == 0 {
		return 0
	}

	// Up to two contiguous runs: head to the end of storage, then the start
	first := min(n, len(q.left)-q.head)
	copy(left, q.left[q.head:q.head+first])
	copy(right, q.right[q.head:q.head+first])
	if first < n {
		copy(left[first:n], q.left[:n-first])
		copy(right[first:n], q.right[:n-first])
	}

	q.head = q.index(n)
	q.size -= n
	return n
}

// Cancel removes the n most recently enqueued samples, or all of them when
// the queue holds fewer. It returns how many were removed.
//
// Samples a bounded queue discarded to make room for the cancelled ones are
// not restored: after Cancel the queue is shorter than before those
// enqueues by the number dropped in between.
func (q *Queue) Cancel(n int) int {
	n = min(max(n, 0), q.size)
	q.size -= n
	return n
}

// Len returns the number of samples per channel.
func (q *Queue) Len() int { return q.size }

// Cap returns the number of samples the current storage holds.
func (q *Queue) Cap() int { return len(q.left) }

// Limit returns the bound, or 0 for an unbounded queue.
func (q *Queue) Limit() int { return q.limit }

// Dropped returns how many samples a full bounded queue discarded.
func (q *Queue) Dropped() uint64 { return q.dropped }

func (q *Queue) index(offset int) int {
	i := q.head + offset
	if i >= len(q.left) {
		i -= len(q.left)
	}
	return i
}

func (q *Queue) dropOldest() {
	q.head = q.index(1)
	q.size--
	q.dropped++
}

// grow doubles the storage and unwraps the ring so head is at 0.
func (q *Queue) grow() {
	capacity := max(2*len(q.left), minUnbounded)
	left := make([]float32, capacity)
	right := make([]float32, capacity)

	first := copy(left, q.left[q.head:min(q.head+q.size, len(q.left))])
	copy(left[first:q.size], q.left[:q.size-first])
	copy(right, q.right[q.head:q.head+first])
	copy(right[first:q.size], q.right[:q.size-first])

	q.left, q.right = left, right
	q.head = 0
}
