// Package otel bridges authkit metric snapshots into OpenTelemetry
// observable instruments. Counters become observable counters;
// histogram buckets are exposed as cumulative gauges because core
// snapshots carry bucket counts, not raw samples.
package otel
