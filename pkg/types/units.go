package types

import (
	"fmt"
	"math"
)

// Dbm is a transmit power level in dBm (decibel-milliwatts).
type Dbm float64

// Watts converts the level to linear power: P[W] = 10^((dBm-30)/10).
// 0 dBm is 1 mW, 30 dBm is 1 W, 40 dBm is 10 W.
func (d Dbm) Watts() float64 {
	return math.Pow(10, (float64(d)-30.0)/10.0)
}

func (d Dbm) String() string { return fmt.Sprintf("%g dBm", float64(d)) }

// WattsToDbm is the inverse conversion. The argument is floored at 1 pW so
// that zero or negative inputs do not produce -Inf.
func WattsToDbm(w float64) Dbm {
	return Dbm(10.0 * math.Log10(math.Max(w, 1e-12)/1e-3))
}

// BitRate is a throughput value in bit/s.
type BitRate float64

// Mbps returns the rate in Mbit/s.
func (r BitRate) Mbps() float64 { return float64(r) / 1e6 }

// Humanized returns a human-readable string with automatic unit
// (bit/s, kbit/s, Mbit/s, Gbit/s).
func (r BitRate) Humanized() string {
	abs := math.Abs(float64(r))
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2f Gbit/s", float64(r)/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2f Mbit/s", float64(r)/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2f kbit/s", float64(r)/1e3)
	default:
		return fmt.Sprintf("%.0f bit/s", float64(r))
	}
}

// Joules is an energy amount in Joules.
type Joules float64

// KWh returns the energy in kilowatt-hours (1 kWh = 3.6e6 J).
func (e Joules) KWh() float64 { return float64(e) / 3_600_000.0 }

func (e Joules) String() string { return fmt.Sprintf("%.3f J", float64(e)) }
