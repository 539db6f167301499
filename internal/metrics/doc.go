// Package metrics records what a migration run did.
//
// Commands receive a Recorder and default to NoopRecorder, so call sites
// never check whether metrics are enabled. When metrics.textfile is
// configured the command swaps in a PrometheusRecorder and writes the
// registry to that file at the end of the run, in the format read by the
// node_exporter textfile collector.
package metrics
