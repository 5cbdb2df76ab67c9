// Package epidemic implements a deterministic SEIRS compartment model with
// mobility, density and seasonal transmission adjustments.
package epidemic

// CompartmentState holds the four SEIR compartments as fractional counts of
// individuals. The sum of all compartments equals the region population at
// every simulated day.
type CompartmentState struct {
	Susceptible float64 `json:"susceptible"`
	Exposed     float64 `json:"exposed"`
	Infectious  float64 `json:"infectious"`
	Recovered   float64 `json:"recovered"`
}

// Total returns the sum of all compartments.
func (s CompartmentState) Total() float64 {
	return s.Susceptible + s.Exposed + s.Infectious + s.Recovered
}

// Params holds the disease constants shared across all regions. Construct
// once at startup and pass by value; a Params is never mutated per
// simulation.
type Params struct {
	// R0 is the basic reproduction number before adjustments.
	R0 float64

	// LatentPeriodDays is the mean time from exposure to infectiousness
	// (inverse of the progression rate alpha).
	LatentPeriodDays float64

	// InfectiousPeriodDays is the mean infectious duration (inverse of the
	// recovery rate gamma).
	InfectiousPeriodDays float64

	// InitialExposedFraction is the exposed share of the population on day 0.
	InitialExposedFraction float64

	// InitialInfectedFraction is the infectious share of the population on
	// day 0, unless a seed override is supplied.
	InitialInfectedFraction float64

	// InitialRecoveredFraction is the pre-existing immunity share on day 0.
	InitialRecoveredFraction float64

	// BaseWaningRate is the daily rate at which recovered individuals lose
	// immunity, before seasonal modulation.
	BaseWaningRate float64

	// SeasonalAmplitude scales the cosine seasonal forcing term.
	SeasonalAmplitude float64

	// SeasonalPhaseDay shifts the seasonal peak; 0 places it at day 0
	// (January 1).
	SeasonalPhaseDay int

	// DensityReferencePopulation anchors the density scaling: populations at
	// or below the reference get no density boost.
	DensityReferencePopulation float64

	// DensityFactorCap bounds the density multiplier for very large regions.
	DensityFactorCap float64
}

// DefaultParams returns the documented default disease constants.
func DefaultParams() Params {
	return Params{
		R0:                         3.5,
		LatentPeriodDays:           2.0,
		InfectiousPeriodDays:       10.0,
		InitialExposedFraction:     0.03,
		InitialInfectedFraction:    0.02,
		InitialRecoveredFraction:   0.40,
		BaseWaningRate:             0.005,
		SeasonalAmplitude:          0.6,
		SeasonalPhaseDay:           0,
		DensityReferencePopulation: 1_000_000,
		DensityFactorCap:           2.0,
	}
}

// Alpha returns the exposed-to-infectious progression rate.
func (p Params) Alpha() float64 {
	if p.LatentPeriodDays <= 0 {
		return 0
	}
	return 1.0 / p.LatentPeriodDays
}

// Gamma returns the recovery rate.
func (p Params) Gamma() float64 {
	if p.InfectiousPeriodDays <= 0 {
		return 0
	}
	return 1.0 / p.InfectiousPeriodDays
}
