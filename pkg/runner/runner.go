// Package runner invokes the external discrete-event simulator once per
// repetition at a fixed transmit power, with bounded retry-and-log. It only
// launches processes and checks that the expected .sca file appeared; parsing
// is pkg/sca's job and a run that never produced its file simply contributes
// nothing to aggregation.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options configures one sweep point (one transmit power, N repetitions).
// Args may contain the placeholders {tx} and {rep}, expanded per invocation.
type Options struct {
	Bin        string
	Args       []string
	WorkDir    string
	TxPowerDbm string
	// ScaPattern is the expected result path with {tx}/{rep} placeholders;
	// its existence after an attempt decides success.
	ScaPattern  string
	LogDir      string
	Repetitions int
	Workers     int
	MaxRetries  int
}

// RunResult is the status of one repetition, mirrored into status.json.
type RunResult struct {
	TxPowerDbm string    `json:"tx_power_dbm"`
	Repetition int       `json:"repetition"`
	Attempts   int       `json:"attempts"`
	Success    bool      `json:"success"`
	ScaPath    string    `json:"sca_expected"`
	LogPath    string    `json:"log_path"`
	Duration   float64   `json:"duration_sec"`
	Timestamp  time.Time `json:"timestamp"`
}

// Run executes all repetitions with a bounded worker pool and returns their
// results ordered by repetition. Individual failures are recorded, not
// returned as errors: the caller inspects the results and status files.
func Run(ctx context.Context, o Options) ([]RunResult, error) {
	if o.Bin == "" {
		return nil, fmt.Errorf("runner: no simulator binary configured")
	}
	if o.Repetitions <= 0 {
		return nil, fmt.Errorf("runner: repetitions must be > 0")
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.LogDir != "" {
		if err := os.MkdirAll(o.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("runner: create log dir: %w", err)
		}
	}

	jobs := make(chan int)
	out := make(chan RunResult)

	var wg sync.WaitGroup
	for i := 0; i < o.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rep := range jobs {
				out <- runOne(ctx, o, rep)
			}
		}()
	}
	go func() {
		for rep := 0; rep < o.Repetitions; rep++ {
			select {
			case jobs <- rep:
			case <-ctx.Done():
				close(jobs)
				wg.Wait()
				close(out)
				return
			}
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var results []RunResult
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Repetition < results[j].Repetition })
	return results, ctx.Err()
}

func runOne(ctx context.Context, o Options, rep int) RunResult {
	res := RunResult{
		TxPowerDbm: o.TxPowerDbm,
		Repetition: rep,
		ScaPath:    expand(o.ScaPattern, o.TxPowerDbm, rep),
	}
	if o.LogDir != "" {
		res.LogPath = filepath.Join(o.LogDir, fmt.Sprintf("log_TX%s_R%d.txt", o.TxPowerDbm, rep))
	}

	start := time.Now()
	for attempt := 1; attempt <= o.MaxRetries && !res.Success; attempt++ {
		res.Attempts = attempt
		if ctx.Err() != nil {
			break
		}
		slog.Info("simulation attempt",
			"tx_dbm", o.TxPowerDbm, "repetition", rep, "attempt", attempt)

		cmd := exec.CommandContext(ctx, o.Bin, expandAll(o.Args, o.TxPowerDbm, rep)...)
		cmd.Dir = o.WorkDir
		var logf *os.File
		if res.LogPath != "" {
			if f, err := os.Create(res.LogPath); err == nil {
				logf = f
				cmd.Stdout = f
				cmd.Stderr = f
			}
		}
		err := cmd.Run()
		if logf != nil {
			_ = logf.Close()
		}
		if err != nil {
			slog.Warn("simulator exited with error",
				"tx_dbm", o.TxPowerDbm, "repetition", rep, "err", err)
		}

		// The simulator can exit zero without writing results; the file is
		// the only reliable success signal.
		if _, err := os.Stat(res.ScaPath); err == nil {
			res.Success = true
		}
	}
	res.Duration = time.Since(start).Seconds()
	res.Timestamp = time.Now()
	return res
}

// Status is the sweep-point summary persisted next to the results.
type Status struct {
	TxPowerDbm  string      `json:"tx_power_dbm"`
	Repetitions int         `json:"repetitions"`
	Runs        []RunResult `json:"runs"`
}

// WriteStatus writes status.json and, when any run failed, failed_runs.json
// into dir.
func WriteStatus(dir string, o Options, results []RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("runner: create status dir: %w", err)
	}
	st := Status{TxPowerDbm: o.TxPowerDbm, Repetitions: o.Repetitions, Runs: results}
	if err := writeJSON(filepath.Join(dir, "status.json"), st); err != nil {
		return err
	}
	var failed []RunResult
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		return writeJSON(filepath.Join(dir, "failed_runs.json"), failed)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("runner: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("runner: write %s: %w", path, err)
	}
	return nil
}

func expand(s, tx string, rep int) string {
	s = strings.ReplaceAll(s, "{tx}", tx)
	return strings.ReplaceAll(s, "{rep}", strconv.Itoa(rep))
}

func expandAll(args []string, tx string, rep int) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = expand(a, tx, rep)
	}
	return out
}
