package energy

// Params holds the model coefficients.
// Units:
//   - PIdle: Watts
//   - Alpha: Watts per GOPS of processing demand
//   - Beta: Watts per active UE
//   - Gamma: W/W coupling of the transmit power term (0 disables the term)
//   - TSim: simulation duration in seconds
//   - DelayRef: reference delay in ms for the global efficiency index
//   - MinPower/MaxPower: optional clamps on P_avg in Watts (<= 0 disables)
type Params struct {
	PIdle    float64
	Alpha    float64
	Beta     float64
	Gamma    float64
	TSim     float64
	DelayRef float64
	MinPower float64
	MaxPower float64

	// Extended switches every coefficient to the power-dependent variant.
	// The variant is all-or-nothing: either Extended is nil and the constant
	// coefficients above apply, or it is set and all three base/slope pairs
	// are used.
	Extended *Affine
}

// Affine makes the idle/alpha/beta coefficients linear in the transmit power:
// coefficient = Base + Slope * P_tx[W].
type Affine struct {
	PIdleBase float64 // W
	KIdle     float64 // W per W of P_tx
	AlphaBase float64 // W/GOPS
	KAlpha    float64 // (W/GOPS) per W of P_tx
	BetaBase  float64 // W/UE
	KBeta     float64 // (W/UE) per W of P_tx
}

// _defaultParams returns the baseline gNB calibration.
// Gamma defaults to 1.0: the transmit power contributes one-to-one to the
// average draw. Setting Gamma to 0 (a valid override) reproduces the model
// variant without the coupling term.
func _defaultParams() *Params {
	return &Params{
		PIdle:    100.0, // W
		Alpha:    0.05,  // W/GOPS
		Beta:     0.5,   // W/UE
		Gamma:    1.0,   // W/W
		TSim:     20.0,  // s
		DelayRef: 10.0,  // ms
	}
}
