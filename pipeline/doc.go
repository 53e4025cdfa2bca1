// SPDX-License-Identifier: EPL-2.0

// Package pipeline drives the per-block monitoring loop of an audio host.
//
// For every block the Orchestrator reads the Bypass flag once, runs the
// block through the codec session (monitoring) or the passthrough
// (bypassed), queues everything produced and hands exactly one block back
// from the front of the queue.
//
// The queue starts with QueuePrefill samples of silence, equal to
// DeclaredDelay. Sessions trim their own latency and must keep it within
// CodecLatencyBudget, so the samples they hold back never drain the queue.
// When the session is left, by bypass or by a failure, the input it still
// holds is queued from a short history and the session is reset before it
// is used again, so both paths stay on one timeline.
//
// A failing codec call never reaches the host. Anything the call already
// queued is withdrawn, the block goes through the passthrough and the
// fault is counted; ReportFaults logs it from a non-audio goroutine.
package pipeline
