// Package otel publishes authcore metrics through OpenTelemetry.
//
// [NewExporter] registers an Int64ObservableCounter per engine counter and,
// for the verify latency histogram, a bucket gauge carrying an "le"
// attribute plus a count gauge. One callback reads the engine snapshot on
// each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
