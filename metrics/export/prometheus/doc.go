// Package prometheus renders authkit metric snapshots in Prometheus
// text exposition format without depending on the Prometheus client
// library. The exporter pulls a snapshot per scrape; nothing is pushed.
package prometheus
