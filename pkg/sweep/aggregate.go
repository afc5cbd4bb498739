package sweep

import (
	"math"
	"sort"

	"github.com/fmelo/scasweep/pkg/types"
)

// Stat is a per-key, per-family summary over finite values only. A Stat with
// N == 0 is absent: Mean and Sum are zero but must not be read as data, which
// is why Present exists and the exporters emit empty cells for it.
type Stat struct {
	N    int
	Mean float64
	Sum  float64
}

// Present reports whether any finite value contributed.
func (s Stat) Present() bool { return s.N > 0 }

// Row is one aggregate row per experiment key. Stats is keyed by family
// label; families with no matching finite values in this group are absent
// from the map entirely.
type Row struct {
	Key   types.Dbm
	Files int
	Stats map[string]Stat
	// Values keeps the finite samples behind each Stat; exporters need the
	// distribution for the unit median heuristics. Units holds the first
	// declared unit token seen per family, "" when the producer declared
	// none.
	Values map[string][]float64
	Units  map[string]string
	// ActiveUsers summarizes, per file, how many throughput records carried
	// a finite value > 0; the original workflow uses it as the active-UE
	// count input to the energy model.
	ActiveUsers Stat
}

// Stat returns the family's summary and whether it is present.
func (r Row) Stat(family string) (Stat, bool) {
	s, ok := r.Stats[family]
	return s, ok
}

// Aggregate reduces the parsed files into one row per resolved key, sorted by
// key. Files with unresolved keys are skipped here (Collect already counted
// them). NaN and ±Inf never enter a statistic; an empty group yields no row
// and an empty family yields no map entry, so absence stays distinguishable
// from a measured zero.
func Aggregate(files []ParsedFile, fams Families) []Row {
	type group struct {
		files  int
		vals   map[string][]float64
		units  map[string]string
		active []float64
	}
	groups := map[types.Dbm]*group{}

	for _, f := range files {
		if !f.Resolved {
			continue
		}
		g := groups[f.Key]
		if g == nil {
			g = &group{vals: map[string][]float64{}, units: map[string]string{}}
			groups[f.Key] = g
		}
		g.files++

		activeUsers := 0
		for _, rec := range f.Records {
			if !isFinite(rec.Value) {
				continue
			}
			for _, fam := range fams.Match(rec.Name) {
				g.vals[fam] = append(g.vals[fam], rec.Value)
				if rec.Unit != "" && g.units[fam] == "" {
					g.units[fam] = rec.Unit
				}
				if fam == FamilyThroughput && rec.Value > 0 {
					activeUsers++
				}
			}
		}
		g.active = append(g.active, float64(activeUsers))
	}

	rows := make([]Row, 0, len(groups))
	for key, g := range groups {
		row := Row{
			Key:    key,
			Files:  g.files,
			Stats:  map[string]Stat{},
			Values: g.vals,
			Units:  g.units,
		}
		for fam, vals := range g.vals {
			if s := summarize(vals); s.Present() {
				row.Stats[fam] = s
			}
		}
		row.ActiveUsers = summarize(g.active)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

func summarize(vals []float64) Stat {
	var s Stat
	for _, v := range vals {
		if !isFinite(v) {
			continue
		}
		s.N++
		s.Sum += v
	}
	if s.N > 0 {
		s.Mean = s.Sum / float64(s.N)
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
