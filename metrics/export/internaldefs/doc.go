// Package internaldefs holds the shared metric name table used by the
// Prometheus and OTel exporters, so both expose identical series names.
// It is internal to metrics/export and not part of the public API.
package internaldefs
