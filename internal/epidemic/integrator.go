package epidemic

import (
	"errors"
	"math"
)

// ErrNumericAnomaly indicates the conservation invariant was violated beyond
// tolerance after a step. This is treated as fatal for the request.
var ErrNumericAnomaly = errors.New("compartment conservation violated")

// Step advances a compartment state by one day using explicit Euler
// integration with the given rates, then clamps each compartment to zero and
// rescales the four compartments proportionally so their sum equals the
// population exactly. The input state is never mutated.
func Step(state CompartmentState, population float64, rates Rates) (CompartmentState, error) {
	if population <= 0 {
		return CompartmentState{}, nil
	}

	contact := rates.Beta * state.Susceptible * state.Infectious / population
	waning := rates.Omega * state.Recovered

	next := CompartmentState{
		Susceptible: state.Susceptible + (-contact + waning),
		Exposed:     state.Exposed + (contact - rates.Alpha*state.Exposed),
		Infectious:  state.Infectious + (rates.Alpha*state.Exposed - rates.Gamma*state.Infectious),
		Recovered:   state.Recovered + (rates.Gamma*state.Infectious - waning),
	}

	// Euler overshoot can drive a compartment negative; floor it rather than
	// redistribute, then restore conservation by proportional rescaling.
	next.Susceptible = math.Max(0, next.Susceptible)
	next.Exposed = math.Max(0, next.Exposed)
	next.Infectious = math.Max(0, next.Infectious)
	next.Recovered = math.Max(0, next.Recovered)

	total := next.Total()
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return CompartmentState{}, ErrNumericAnomaly
	}
	if total <= 0 {
		// Degenerate collapse: reset to an all-susceptible population.
		next = CompartmentState{Susceptible: population}
	} else {
		scale := population / total
		next.Susceptible *= scale
		next.Exposed *= scale
		next.Infectious *= scale
		next.Recovered *= scale
	}

	if err := CheckConservation(next, population); err != nil {
		return CompartmentState{}, err
	}
	return next, nil
}
