// Package monitoring provides Prometheus metrics for the companion:
// HTTP request counters and latencies, terminal session lifecycle
// counters, event sink throughput, and WebSocket connection gauges.
package monitoring
