// Package report turns aggregate rows and model outputs into the artifacts
// the thesis workflow consumes: a per-power CSV table, a raw per-record dump,
// and PNG comparison charts.
package report

import (
	"github.com/fmelo/scasweep/pkg/energy"
	"github.com/fmelo/scasweep/pkg/sweep"
	"github.com/fmelo/scasweep/pkg/types"
)

// Row is one exported line per experiment key. Has* flags carry the
// present/absent distinction through to the writers, so an empty family shows
// up as an empty cell rather than a fabricated zero the plots would draw.
type Row struct {
	Key   types.Dbm
	Files int

	ThroughputMbps float64 // mean per record, normalized to Mbit/s
	SumRateMbps    float64 // per-file total rate, normalized to Mbit/s
	HasThroughput  bool

	SINR    float64
	HasSINR bool

	DelayMs  float64
	HasDelay bool

	ProcGops    float64 // mean per record (per gNB)
	ProcSumGops float64 // per-file total demand
	HasProc     bool

	ActiveUsers float64

	Model energy.Output
}

// Build evaluates the model over the aggregate rows and normalizes units for
// export. Throughput and delay use the declared unit when the producers
// emitted one and the median heuristics of pkg/sweep otherwise. Sum-style
// figures are divided by the file count, giving the mean per-repetition total
// the model expects.
func Build(agg []sweep.Row, model *energy.Model) []Row {
	out := make([]Row, 0, len(agg))
	for _, a := range agg {
		r := Row{Key: a.Key, Files: a.Files, ActiveUsers: a.ActiveUsers.Mean}
		files := float64(a.Files)

		if s, ok := a.Stat(sweep.FamilyThroughput); ok {
			med := sweep.Median(a.Values[sweep.FamilyThroughput])
			unit := a.Units[sweep.FamilyThroughput]
			r.ThroughputMbps = sweep.RateMbps(s.Mean, unit, med)
			r.SumRateMbps = sweep.RateMbps(s.Sum/files, unit, med)
			r.HasThroughput = true
		}
		if s, ok := a.Stat(sweep.FamilySINR); ok {
			r.SINR = s.Mean
			r.HasSINR = true
		}
		if s, ok := a.Stat(sweep.FamilyDelay); ok {
			med := sweep.Median(a.Values[sweep.FamilyDelay])
			r.DelayMs = sweep.DelayMs(s.Mean, a.Units[sweep.FamilyDelay], med)
			r.HasDelay = true
		}
		if s, ok := a.Stat(sweep.FamilyProcDemand); ok {
			r.ProcGops = s.Mean
			r.ProcSumGops = s.Sum / files
			r.HasProc = true
		}

		// Absent inputs feed the model as zero so one sparse power level
		// cannot block the rest of the sweep.
		r.Model = model.Evaluate(a.Key, energy.Inputs{
			ProcDemand:     r.ProcSumGops,
			ActiveUsers:    r.ActiveUsers,
			ThroughputMbps: r.SumRateMbps,
			DelayMs:        r.DelayMs,
		})
		out = append(out, r)
	}
	return out
}
