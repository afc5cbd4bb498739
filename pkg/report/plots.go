package report

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// palette cycles across scenarios; matching series share a color between
// charts so the comparison set reads consistently.
var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

// Series is one named line on a comparison chart (typically one scenario).
type Series struct {
	Name string
	Rows []Row
}

// Charts renders the standard comparison set under outDir:
// throughput, delay, average power, energy (kWh), efficiency, and the global
// efficiency index, each versus transmit power.
func Charts(outDir string, series []Series) error {
	charts := []struct {
		file, title, ylabel string
		pick                func(Row) (float64, bool)
	}{
		{"throughput_vs_power.png", "Throughput vs Tx Power", "Mean throughput (Mbit/s)",
			func(r Row) (float64, bool) { return r.ThroughputMbps, r.HasThroughput }},
		{"delay_vs_power.png", "Delay vs Tx Power", "Mean delay (ms)",
			func(r Row) (float64, bool) { return r.DelayMs, r.HasDelay }},
		{"pavg_vs_power.png", "Average Power vs Tx Power", "P_avg (W)",
			func(r Row) (float64, bool) { return r.Model.PAvg, true }},
		{"energy_vs_power.png", "Energy vs Tx Power", "Total energy (kWh)",
			func(r Row) (float64, bool) { return r.Model.Energy.KWh(), true }},
		{"efficiency_vs_power.png", "Energy Efficiency vs Tx Power", "Efficiency (Mbit/J)",
			func(r Row) (float64, bool) { return r.Model.Efficiency, true }},
		{"global_eff_index_vs_power.png", "Global Efficiency Index vs Tx Power", "Index (a.u.)",
			func(r Row) (float64, bool) { return r.Model.GlobalEffIndex, true }},
	}
	for _, c := range charts {
		if err := lineChart(filepath.Join(outDir, c.file), c.title, c.ylabel, series, c.pick); err != nil {
			return err
		}
	}
	return nil
}

func lineChart(path, title, ylabel string, series []Series, pick func(Row) (float64, bool)) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Tx power (dBm)"
	p.Y.Label.Text = ylabel
	p.Legend.Top = true

	for i, s := range series {
		var pts plotter.XYs
		for _, r := range s.Rows {
			v, ok := pick(r)
			if !ok {
				// Absent aggregate: leave a gap instead of drawing a fake 0.
				continue
			}
			pts = append(pts, plotter.XY{X: float64(r.Key), Y: v})
		}
		if len(pts) == 0 {
			continue
		}
		line, sc, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("report: chart %s: %w", path, err)
		}
		col := palette[i%len(palette)]
		line.Color = col
		line.Width = vg.Points(2)
		sc.Color = col
		p.Add(line, sc)
		p.Legend.Add(s.Name, line, sc)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
