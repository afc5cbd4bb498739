// Package energy evaluates a closed-form power/energy/efficiency model per
// transmit-power operating point, fed by the aggregates of pkg/sweep:
//
//	P_avg = P_idle + alpha*D_proc + beta*N_ue + gamma*P_tx[W]
//	E_tot = P_avg * T_sim
//	eff   = Throughput / P_avg
//
// With the extended variant, P_idle, alpha, and beta are themselves affine in
// P_tx[W] (base + slope*P_tx).
package energy

import (
	"math"

	"github.com/fmelo/scasweep/pkg/types"
)

// Floor applied to P_avg before dividing, so pathological coefficients
// (negative idle power, aggressive clamps) cannot produce a division by zero.
const minDenominatorW = 1e-12

// Model evaluates the configured formula. Construct with New; the zero value
// is not usable.
type Model struct {
	cfg *Params
}

// New creates a model with the given params. Fields > 0 in cfg override
// defaults.
// Notes:
//   - Gamma >= 0 is accepted verbatim (0 is a valid "no coupling" choice);
//     negative is treated as "unset" and defaulted to 1.0.
//   - MinPower/MaxPower <= 0 leave the corresponding clamp disabled.
//   - Extended, when non-nil, is taken as-is: the power-dependent variant is
//     all-or-nothing by construction.
func New(cfg *Params) *Model {
	base := _defaultParams()

	if cfg == nil {
		return &Model{cfg: base}
	}

	merged := *base

	if cfg.PIdle > 0 {
		merged.PIdle = cfg.PIdle
	}
	if cfg.Alpha > 0 {
		merged.Alpha = cfg.Alpha
	}
	if cfg.Beta > 0 {
		merged.Beta = cfg.Beta
	}
	if cfg.Gamma >= 0 {
		merged.Gamma = cfg.Gamma
	}
	if cfg.TSim > 0 {
		merged.TSim = cfg.TSim
	}
	if cfg.DelayRef > 0 {
		merged.DelayRef = cfg.DelayRef
	}
	if cfg.MinPower > 0 {
		merged.MinPower = cfg.MinPower
	}
	if cfg.MaxPower > 0 {
		merged.MaxPower = cfg.MaxPower
	}
	merged.Extended = cfg.Extended

	// Keep the clamp window sane.
	if merged.MaxPower > 0 && merged.MinPower > merged.MaxPower {
		merged.MaxPower = merged.MinPower
	}

	return &Model{cfg: &merged}
}

// Inputs are the per-key aggregates the model consumes. Any of them may be
// absent for a given key; the zero value is the documented neutral default,
// so partial data for one power level never blocks the others.
type Inputs struct {
	ProcDemand     float64 // GOPS
	ActiveUsers    float64
	ThroughputMbps float64
	DelayMs        float64
}

// Output is the evaluated operating point, with the power split kept for
// stacked-breakdown reporting.
type Output struct {
	PTxW   float64 // linear transmit power
	PIdle  float64 // W, after variant resolution
	PProc  float64 // W, alpha * D_proc
	PUsers float64 // W, beta * N_ue
	PTx    float64 // W, gamma * P_tx
	PAvg   float64 // W, sum of the above (clamped if configured)

	Energy types.Joules
	// Efficiency is Throughput/P_avg in Mbit per Joule (equivalently Mbps
	// per Watt).
	Efficiency float64
	// GlobalEffIndex is Efficiency * 1/(1 + Delay/DelayRef): the same figure
	// penalized for high-delay operating points.
	GlobalEffIndex float64
}

// Evaluate runs the model for one transmit-power key.
func (m *Model) Evaluate(key types.Dbm, in Inputs) Output {
	ptx := key.Watts()

	pIdle, alpha, beta := m.cfg.PIdle, m.cfg.Alpha, m.cfg.Beta
	if ext := m.cfg.Extended; ext != nil {
		pIdle = ext.PIdleBase + ext.KIdle*ptx
		alpha = ext.AlphaBase + ext.KAlpha*ptx
		beta = ext.BetaBase + ext.KBeta*ptx
	}

	out := Output{
		PTxW:   ptx,
		PIdle:  pIdle,
		PProc:  alpha * in.ProcDemand,
		PUsers: beta * in.ActiveUsers,
		PTx:    m.cfg.Gamma * ptx,
	}
	pavg := out.PIdle + out.PProc + out.PUsers + out.PTx
	if m.cfg.MinPower > 0 {
		pavg = math.Max(pavg, m.cfg.MinPower)
	}
	if m.cfg.MaxPower > 0 {
		pavg = math.Min(pavg, m.cfg.MaxPower)
	}
	out.PAvg = pavg

	out.Energy = types.Joules(pavg * m.cfg.TSim)
	out.Efficiency = in.ThroughputMbps / math.Max(pavg, minDenominatorW)

	delay := math.Max(in.DelayMs, 0)
	out.GlobalEffIndex = out.Efficiency / (1.0 + delay/m.cfg.DelayRef)

	return out
}

// TSim returns the resolved simulation duration in seconds.
func (m *Model) TSim() float64 { return m.cfg.TSim }
