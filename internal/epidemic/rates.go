package epidemic

import "math"

// Rates holds the instantaneous flow rates for one simulated day.
type Rates struct {
	// Beta is the effective transmission rate after seasonal, mobility and
	// density adjustments.
	Beta float64

	// Alpha is the exposed-to-infectious progression rate.
	Alpha float64

	// Gamma is the recovery rate.
	Gamma float64

	// Omega is the seasonally modulated waning-immunity rate.
	Omega float64
}

// MobilityFactor maps a workplace-mobility percentage onto a transmission
// multiplier: 0% maps to 0.1 and 100% to 2.0. Inputs outside [0, 100]
// extrapolate linearly rather than being rejected.
func MobilityFactor(mobilityPct float64) float64 {
	return 0.1 + (mobilityPct/100.0)*1.9
}

// Resolver derives per-day flow rates from the disease constants plus a
// region's mobility, population and calendar day. Pure; safe for concurrent
// use.
type Resolver struct {
	params Params
}

// NewResolver creates a rate resolver for the given disease constants.
func NewResolver(params Params) *Resolver {
	return &Resolver{params: params}
}

// SeasonalFactor returns the seasonal transmission multiplier for a day of
// year, peaking when the cosine term aligns with the configured phase.
func (r *Resolver) SeasonalFactor(dayOfYear int) float64 {
	day := float64(dayOfYear % 365)
	phase := 2 * math.Pi * float64(r.params.SeasonalPhaseDay) / 365.0
	return 1.0 + r.params.SeasonalAmplitude*math.Cos(2*math.Pi*day/365.0+phase)
}

// DensityFactor returns the population-density transmission multiplier,
// sqrt-scaled against the reference population and bounded to
// [1, DensityFactorCap].
func (r *Resolver) DensityFactor(population float64) float64 {
	if population <= 0 || r.params.DensityReferencePopulation <= 0 {
		return 1.0
	}
	factor := math.Sqrt(population / r.params.DensityReferencePopulation)
	return Clamp(factor, 1.0, r.params.DensityFactorCap)
}

// Resolve computes the flow rates for one simulated day. All numeric inputs
// are accepted; out-of-range values propagate into the returned rates.
func (r *Resolver) Resolve(dayOfYear int, mobilityPct, population float64) Rates {
	seasonal := r.SeasonalFactor(dayOfYear)
	gamma := r.params.Gamma()

	return Rates{
		Beta:  r.params.R0 * gamma * seasonal * MobilityFactor(mobilityPct) * r.DensityFactor(population),
		Alpha: r.params.Alpha(),
		Gamma: gamma,
		Omega: r.params.BaseWaningRate * seasonal,
	}
}
