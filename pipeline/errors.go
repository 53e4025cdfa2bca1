// SPDX-License-Identifier: EPL-2.0

package pipeline

import "errors"

var (
	// ErrNoProcessor is returned by New when it is given no session.
	ErrNoProcessor = errors.New("pipeline: no processor")
	// ErrLatencyBudget reports a processor slower than CodecLatencyBudget;
	// its output would arrive after the declared delay.
	ErrLatencyBudget = errors.New("pipeline: processor latency exceeds budget")
)
