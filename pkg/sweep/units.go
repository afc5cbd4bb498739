package sweep

import (
	"sort"
	"strings"
)

// Unit normalization for report output.
//
// Result-file producers disagree on units: some emit throughput in bit/s,
// others in Mbit/s, and delay in seconds or milliseconds, usually without a
// unit token. When a unit is declared it wins; otherwise a documented median
// heuristic decides.
const (
	// A throughput median above this is taken to be bit/s (a plausible
	// Mbit/s figure never reaches 100000).
	rateMedianBitsPerSec = 1e5
	// A delay median below this is taken to be seconds (a plausible
	// millisecond delay in this domain is well above 10).
	delayMedianSeconds = 10.0
)

// RateMbps converts a throughput value to Mbit/s. unit is the declared unit
// token ("" when absent); siblingMedian is the median of the value's group,
// used only by the fallback heuristic.
func RateMbps(v float64, unit string, siblingMedian float64) float64 {
	switch strings.ToLower(unit) {
	case "bps", "b/s", "bit/s":
		return v / 1e6
	case "kbps", "kbit/s":
		return v / 1e3
	case "mbps", "mbit/s":
		return v
	}
	if siblingMedian > rateMedianBitsPerSec {
		return v / 1e6
	}
	return v
}

// DelayMs converts a delay value to milliseconds, same contract as RateMbps.
func DelayMs(v float64, unit string, siblingMedian float64) float64 {
	switch strings.ToLower(unit) {
	case "s", "sec":
		return v * 1000.0
	case "ms":
		return v
	}
	if siblingMedian < delayMedianSeconds {
		return v * 1000.0
	}
	return v
}

// Median returns the median of the finite values in vals, 0 when none.
func Median(vals []float64) float64 {
	fin := make([]float64, 0, len(vals))
	for _, v := range vals {
		if isFinite(v) {
			fin = append(fin, v)
		}
	}
	if len(fin) == 0 {
		return 0
	}
	sort.Float64s(fin)
	mid := len(fin) / 2
	if len(fin)%2 == 1 {
		return fin[mid]
	}
	return (fin[mid-1] + fin[mid]) / 2
}
