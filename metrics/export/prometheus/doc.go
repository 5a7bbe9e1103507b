// Package prometheus exposes authcore metrics to Prometheus.
//
// [NewCollector] wraps an engine in a prometheus.Collector that reads a
// fresh snapshot on every scrape; [Handler] serves it from a private
// registry. Counter names are prefixed authcore_ and end in _total; the
// single histogram is authcore_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
