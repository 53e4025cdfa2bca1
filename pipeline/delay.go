// SPDX-License-Identifier: EPL-2.0

package pipeline

const (
	// CodecLatencyBudget is the largest codec latency (encoder look-ahead
	// plus decoder delay) a session may report.
	CodecLatencyBudget = 1152
	// DeclaredDelay is the fixed delay reported to the host. A session trims
	// its own latency, so the round trip only holds samples back; the budget
	// plus two frames of burst covers the most it can hold.
	DeclaredDelay = CodecLatencyBudget + 2*1152
	// QueuePrefill is the silence the queue starts with. Both paths are
	// sample-accurate from there, so it equals the declared delay.
	QueuePrefill = DeclaredDelay
	// DefaultQueueLimit bounds the queue unless WithQueueLimit says otherwise.
	DefaultQueueLimit = 16384
)
