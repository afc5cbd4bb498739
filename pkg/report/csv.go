package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fmelo/scasweep/pkg/sweep"
)

// WriteCSV writes the per-power aggregate table. Absent aggregates become
// empty cells, never zeros.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	header := []string{
		"power_dbm", "files",
		"throughput_mbps", "sum_rate_mbps", "sinr_db", "delay_ms",
		"proc_gops_mean", "proc_gops_sum", "active_ues",
		"p_tx_w", "p_idle_w", "p_proc_w", "p_ue_w", "p_txcomp_w", "p_avg_w",
		"energy_j", "energy_kwh", "eff_mbps_per_j", "global_eff_index",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: write csv header: %w", err)
	}
	for _, r := range rows {
		m := r.Model
		rec := []string{
			fmtF(float64(r.Key)),
			strconv.Itoa(r.Files),
			cell(r.ThroughputMbps, r.HasThroughput),
			cell(r.SumRateMbps, r.HasThroughput),
			cell(r.SINR, r.HasSINR),
			cell(r.DelayMs, r.HasDelay),
			cell(r.ProcGops, r.HasProc),
			cell(r.ProcSumGops, r.HasProc),
			fmtF(r.ActiveUsers),
			fmtF(m.PTxW), fmtF(m.PIdle), fmtF(m.PProc), fmtF(m.PUsers), fmtF(m.PTx), fmtF(m.PAvg),
			fmtF(float64(m.Energy)), fmtF(m.Energy.KWh()), fmtF(m.Efficiency), fmtF(m.GlobalEffIndex),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("report: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRawCSV dumps every individual record with file provenance, including
// records whose key stayed unresolved. Values that are NaN or infinite are
// serialized verbatim ("NaN", "+Inf") so nothing is silently dropped.
func WriteRawCSV(w io.Writer, recs []sweep.FlatRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"file", "power_dbm", "key_resolved", "module", "name", "value", "unit", "configname", "repetition"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: write raw header: %w", err)
	}
	for _, r := range recs {
		key := ""
		if r.Resolved {
			key = fmtF(float64(r.Key))
		}
		rec := []string{
			r.File, key, strconv.FormatBool(r.Resolved),
			r.Module, r.Name,
			strconv.FormatFloat(r.Value, 'g', -1, 64), r.Unit,
			r.Attrs["configname"], r.Attrs["repetition"],
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("report: write raw row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRawJSON writes the raw table as a JSON array, one object per record.
func WriteRawJSON(w io.Writer, recs []sweep.FlatRecord) error {
	type obj struct {
		File     string  `json:"file"`
		PowerDbm float64 `json:"power_dbm"`
		Resolved bool    `json:"key_resolved"`
		Module   string  `json:"module"`
		Name     string  `json:"name"`
		Value    string  `json:"value"` // string so NaN/Inf survive JSON
		Unit     string  `json:"unit,omitempty"`
	}
	out := make([]obj, 0, len(recs))
	for _, r := range recs {
		out = append(out, obj{
			File:     r.File,
			PowerDbm: float64(r.Key),
			Resolved: r.Resolved,
			Module:   r.Module,
			Name:     r.Name,
			Value:    strconv.FormatFloat(r.Value, 'g', -1, 64),
			Unit:     r.Unit,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func cell(v float64, present bool) string {
	if !present {
		return ""
	}
	return fmtF(v)
}

func fmtF(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
