// Package sweep turns a directory of scalar-result files into one aggregate
// table keyed by transmit power.
//
// Pipeline:
//
//	Discover -> Collect (parallel parse + key resolution) -> Aggregate
//
// Each file is parsed independently (pkg/sca) by a bounded worker pool; the
// per-file batches are joined by the single collecting goroutine, never by
// concurrent appends. Aggregation is a plain single-threaded reduction that
// runs after the pool has drained.
//
// The experiment key (transmit power in dBm) is resolved per file with a
// strict priority: a declared attribute wins over a filename marker, which
// wins over an ancestor directory marker. A file whose key cannot be resolved
// is excluded from every per-key aggregate but kept in the raw table, and the
// exclusion is counted in Diagnostics so it never vanishes silently.
//
// Metric names vary across result-file producers, so measurements are grouped
// into families (throughput, sinr, delay, procdemand) by case-insensitive
// substring matching against per-family alias lists rather than exact names.
package sweep
