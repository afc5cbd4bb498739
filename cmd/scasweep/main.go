package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fmelo/scasweep/pkg/config"
	"github.com/fmelo/scasweep/pkg/energy"
	"github.com/fmelo/scasweep/pkg/report"
	"github.com/fmelo/scasweep/pkg/runner"
	"github.com/fmelo/scasweep/pkg/sweep"
)

type analyzeOpts struct {
	configPath string
	roots      []string
	outDir     string
	workers    int
	raw        bool
	plots      bool

	// model coefficients (override the scenario file when set)
	pIdle    float64
	alpha    float64
	beta     float64
	gamma    float64
	tSim     float64
	delayRef float64
	minPower float64
	maxPower float64
}

type runOpts struct {
	bin      string
	workDir  string
	tx       string
	reps     int
	workers  int
	retries  int
	sca      string
	logDir   string
	statsDir string
}

func main() {
	root := &cobra.Command{
		Use:   "scasweep",
		Short: "Simu5G transmit-power sweep analyzer",
		Long: `scasweep drives and analyzes OMNeT++/Simu5G transmit-power sweeps.

The analyze command parses .sca scalar-result files, aggregates throughput,
signal quality, delay, and processing demand per power level, applies a
configurable gNB energy model, and writes CSV tables and comparison charts.
The run command invokes the simulator per repetition with bounded retries.

Examples:
  scasweep analyze --root results/Toy1 --out out/
  scasweep analyze --config scenarios.yaml --out out/ --gamma 0
  scasweep run --bin opp_run --tx 26 --reps 10 --sca 'results/Pot{tx}/{rep}.sca' -- -c Toy1 -f toy1.ini`,
	}

	root.AddCommand(newAnalyzeCmd(), newRunCmd())

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var o analyzeOpts
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Parse result files, aggregate per power level, apply the energy model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd, o)
		},
	}

	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "scenario YAML file (families, markers, coefficients, scenario list)")
	cmd.Flags().StringArrayVar(&o.roots, "root", nil, "result directory to analyze (repeatable; ignored when --config lists scenarios)")
	cmd.Flags().StringVarP(&o.outDir, "out", "o", "out", "output directory for tables and charts")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "parallel parse workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&o.raw, "raw", false, "also write the raw per-record table (raw_records.csv)")
	cmd.Flags().BoolVar(&o.plots, "plots", true, "render comparison charts (PNG)")

	cmd.Flags().Float64Var(&o.pIdle, "p-idle", 100.0, "idle power in Watts")
	cmd.Flags().Float64Var(&o.alpha, "alpha", 0.05, "power per GOPS of processing demand (W/GOPS)")
	cmd.Flags().Float64Var(&o.beta, "beta", 0.5, "power per active UE (W/UE)")
	cmd.Flags().Float64Var(&o.gamma, "gamma", 1.0, "transmit-power coupling (W/W, 0 disables the term)")
	cmd.Flags().Float64Var(&o.tSim, "t-sim", 20.0, "simulation duration in seconds")
	cmd.Flags().Float64Var(&o.delayRef, "delay-ref", 10.0, "reference delay for the global efficiency index (ms)")
	cmd.Flags().Float64Var(&o.minPower, "min-power", 0, "lower clamp on P_avg in Watts (0 = off)")
	cmd.Flags().Float64Var(&o.maxPower, "max-power", 0, "upper clamp on P_avg in Watts (0 = off)")

	return cmd
}

func analyze(cmd *cobra.Command, o analyzeOpts) error {
	cfg := &config.Config{}
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	scenarios := cfg.Scenarios
	for _, r := range o.roots {
		scenarios = append(scenarios, config.Scenario{Name: filepath.Base(r), Root: r})
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("nothing to analyze: pass --root or a --config with scenarios")
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return fmt.Errorf("bad marker pattern: %w", err)
	}
	fams := cfg.FamilyTable()
	model := energy.New(mergeParams(cmd, cfg.ModelParams(), o))

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var allSeries []report.Series
	for _, sc := range scenarios {
		paths, err := sweep.Discover(sc.Root)
		if err != nil {
			return err
		}
		files, diag := sweep.Collect(paths, resolver, o.workers)
		logDiagnostics(sc.Name, diag)

		rows := report.Build(sweep.Aggregate(files, fams), model)
		allSeries = append(allSeries, report.Series{Name: sc.Name, Rows: rows})

		if err := writeScenario(o, sc.Name, rows, files); err != nil {
			return err
		}
		printSummary(sc.Name, rows)
	}

	if o.plots {
		if err := report.Charts(o.outDir, allSeries); err != nil {
			return err
		}
	}
	return nil
}

// mergeParams starts from the scenario file's coefficients and lets
// explicitly set flags win, so `--gamma 0` works with or without --config.
func mergeParams(cmd *cobra.Command, p *energy.Params, o analyzeOpts) *energy.Params {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("p-idle") || p.PIdle == 0 {
		p.PIdle = o.pIdle
	}
	if set("alpha") || p.Alpha == 0 {
		p.Alpha = o.alpha
	}
	if set("beta") || p.Beta == 0 {
		p.Beta = o.beta
	}
	if set("gamma") {
		p.Gamma = o.gamma
	}
	if set("t-sim") || p.TSim == 0 {
		p.TSim = o.tSim
	}
	if set("delay-ref") || p.DelayRef == 0 {
		p.DelayRef = o.delayRef
	}
	if set("min-power") {
		p.MinPower = o.minPower
	}
	if set("max-power") {
		p.MaxPower = o.maxPower
	}
	return p
}

func logDiagnostics(name string, d sweep.Diagnostics) {
	for _, f := range d.Failures {
		slog.Warn("parse failure", "scenario", name, "file", f.Path, "err", f.Err)
	}
	if d.UnresolvedKey > 0 {
		slog.Warn("files with unresolved power key excluded from aggregates",
			"scenario", name, "count", d.UnresolvedKey)
	}
	if d.BadValues > 0 {
		slog.Warn("non-numeric scalar values recorded as NaN",
			"scenario", name, "count", d.BadValues)
	}
	slog.Info("scenario parsed", "scenario", name, "files", d.Files)
}

func writeScenario(o analyzeOpts, name string, rows []report.Row, files []sweep.ParsedFile) error {
	safe := strings.ReplaceAll(name, string(filepath.Separator), "_")

	f, err := os.Create(filepath.Join(o.outDir, safe+"_per_power.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.WriteCSV(f, rows); err != nil {
		return err
	}

	if !o.raw {
		return nil
	}
	rf, err := os.Create(filepath.Join(o.outDir, safe+"_raw_records.csv"))
	if err != nil {
		return err
	}
	defer rf.Close()
	return report.WriteRawCSV(rf, sweep.Flatten(files))
}

func printSummary(name string, rows []report.Row) {
	fmt.Printf("\n%s\n", name)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POWER\tFILES\tTHP (Mbit/s)\tDELAY (ms)\tPROC (GOPS)\tP_avg (W)\tENERGY (kWh)\tEFF (Mbit/J)\tIEG")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%.3f\t%.6f\t%.4f\t%.4f\n",
			r.Key, r.Files,
			optCell(r.ThroughputMbps, r.HasThroughput),
			optCell(r.DelayMs, r.HasDelay),
			optCell(r.ProcGops, r.HasProc),
			r.Model.PAvg, r.Model.Energy.KWh(), r.Model.Efficiency, r.Model.GlobalEffIndex)
	}
	tw.Flush()
}

func optCell(v float64, present bool) string {
	if !present {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func newRunCmd() *cobra.Command {
	var o runOpts
	cmd := &cobra.Command{
		Use:   "run [-- simulator args...]",
		Short: "Invoke the simulator per repetition with bounded retries",
		Long: `Runs the external simulator once per repetition at a fixed transmit power.
Simulator arguments after "--" may use {tx} and {rep} placeholders; an attempt
counts as successful only when the expected .sca file exists afterwards.
A status.json (and failed_runs.json when needed) summarizes the sweep point.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweepPoint(cmd.Context(), o, args)
		},
	}

	cmd.Flags().StringVar(&o.bin, "bin", "opp_run", "simulator binary")
	cmd.Flags().StringVar(&o.workDir, "workdir", "", "working directory for the simulator")
	cmd.Flags().StringVar(&o.tx, "tx", "", "transmit power in dBm (required)")
	cmd.Flags().IntVar(&o.reps, "reps", 1, "number of repetitions")
	cmd.Flags().IntVar(&o.workers, "workers", 4, "parallel simulator processes")
	cmd.Flags().IntVar(&o.retries, "retries", 3, "attempts per repetition")
	cmd.Flags().StringVar(&o.sca, "sca", "", "expected result path pattern with {tx}/{rep} (required)")
	cmd.Flags().StringVar(&o.logDir, "log-dir", "", "directory for per-run simulator logs")
	cmd.Flags().StringVar(&o.statsDir, "status-dir", "", "directory for status.json / failed_runs.json")
	_ = cmd.MarkFlagRequired("tx")
	_ = cmd.MarkFlagRequired("sca")

	return cmd
}

func runSweepPoint(ctx context.Context, o runOpts, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := runner.Options{
		Bin:         o.bin,
		Args:        args,
		WorkDir:     o.workDir,
		TxPowerDbm:  o.tx,
		ScaPattern:  o.sca,
		LogDir:      o.logDir,
		Repetitions: o.reps,
		Workers:     o.workers,
		MaxRetries:  o.retries,
	}
	results, err := runner.Run(ctx, opts)
	if err != nil {
		slog.Info("interrupted")
	}

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	slog.Info("sweep point finished", "tx_dbm", o.tx, "succeeded", ok, "total", len(results))

	if o.statsDir != "" {
		if werr := runner.WriteStatus(o.statsDir, opts, results); werr != nil {
			return werr
		}
	}
	if ok < len(results) {
		return fmt.Errorf("%d of %d repetitions failed", len(results)-ok, len(results))
	}
	return err
}
