// SPDX-License-Identifier: EPL-2.0

// Package latency provides the queue that turns bursty codec output into
// the fixed block cadence of an audio host.
//
// The queue starts with a run of silence. As long as the codec produces on
// average one sample per sample consumed, that run is the delay between a
// sample entering the pipeline and leaving it:
//
//	q := latency.New(2304, 16384)
//	for _, s := range produced {
//		q.Enqueue(s)
//	}
//	n := q.Dequeue(outL, outR) // n < len(outL) is an underrun
//
// Storage is allocated by New; a bounded queue never allocates again.
package latency
