// SPDX-License-Identifier: EPL-2.0

// Package observe exports the monitor counters through OpenTelemetry.
//
// [NewMetrics] registers observable instruments that read a pipeline
// snapshot at collection time, so the audio path never touches the SDK.
// [InitProvider] wires a Prometheus exporter behind the global meter
// provider for the /metrics endpoint.
package observe
