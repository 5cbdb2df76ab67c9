package epidemic

import "math"

// ConservationTolerance is the relative tolerance within which the
// compartment sum must match the population after every step.
const ConservationTolerance = 1e-6

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 bounds a probability to [0, 1].
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// CheckConservation verifies that a state's compartment sum matches the
// population within the relative tolerance and that every compartment is
// finite and non-negative. A violation is a NumericAnomaly: an integration
// bug, not a recoverable input condition.
func CheckConservation(state CompartmentState, population float64) error {
	for _, c := range []float64{state.Susceptible, state.Exposed, state.Infectious, state.Recovered} {
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			return ErrNumericAnomaly
		}
	}

	total := state.Total()
	tolerance := ConservationTolerance * math.Max(1.0, math.Abs(population))
	if math.Abs(total-population) > tolerance {
		return ErrNumericAnomaly
	}
	return nil
}
