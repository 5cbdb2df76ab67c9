package epidemic

import "math"

// RunInput describes one simulation request.
type RunInput struct {
	// Population is the region's total population N.
	Population float64

	// MobilityPct is the region's workplace-mobility percentage.
	MobilityPct float64

	// StartDay is the day of year the simulation begins on, feeding the
	// seasonal forcing term.
	StartDay int

	// HorizonDays is the number of days to simulate.
	HorizonDays int

	// InfectiousSeed, when set, replaces the default initial infectious
	// count (used to model arriving infectious travelers added to a
	// destination's existing infectious count).
	InfectiousSeed *float64
}

// SimulationResult is the day-indexed sequence of compartment states,
// inclusive of day 0. Immutable once returned.
type SimulationResult struct {
	Population float64            `json:"population"`
	Days       []CompartmentState `json:"days"`
}

// Final returns the last day's state.
func (r *SimulationResult) Final() CompartmentState {
	return r.Days[len(r.Days)-1]
}

// Simulator owns initial-condition setup and drives the integrator over a
// requested horizon. It carries no mutable state and is safe for concurrent
// use across requests.
type Simulator struct {
	params   Params
	resolver *Resolver
}

// NewSimulator creates a simulator for the given disease constants.
func NewSimulator(params Params) *Simulator {
	return &Simulator{params: params, resolver: NewResolver(params)}
}

// Params returns the disease constants the simulator was built with.
func (s *Simulator) Params() Params {
	return s.params
}

// Run simulates the epidemic over the requested horizon and returns the full
// day-indexed sequence. A non-positive population is a legitimate "no data"
// input and yields an all-zero series rather than an error; numeric
// anomalies from the integrator are fatal and propagate.
func (s *Simulator) Run(in RunInput) (*SimulationResult, error) {
	horizon := in.HorizonDays
	if horizon < 0 {
		horizon = 0
	}

	result := &SimulationResult{
		Population: math.Max(0, in.Population),
		Days:       make([]CompartmentState, 0, horizon+1),
	}

	if in.Population <= 0 {
		for day := 0; day <= horizon; day++ {
			result.Days = append(result.Days, CompartmentState{})
		}
		return result, nil
	}

	state := s.initialState(in.Population, in.InfectiousSeed)
	result.Days = append(result.Days, state)

	for day := 1; day <= horizon; day++ {
		dayOfYear := (in.StartDay + day) % 365
		rates := s.resolver.Resolve(dayOfYear, in.MobilityPct, in.Population)

		next, err := Step(state, in.Population, rates)
		if err != nil {
			return nil, err
		}
		state = next
		result.Days = append(result.Days, state)
	}

	return result, nil
}

// initialState applies the fixed-fraction seeding policy: E and R from the
// configured fractions, I from the fraction or the seed override, and S as
// the non-negative remainder.
func (s *Simulator) initialState(population float64, infectiousSeed *float64) CompartmentState {
	exposed := population * s.params.InitialExposedFraction
	recovered := population * s.params.InitialRecoveredFraction

	infectious := population * s.params.InitialInfectedFraction
	if infectiousSeed != nil {
		infectious = math.Max(0, *infectiousSeed)
	}
	// An oversized seed cannot create individuals: cap it so day 0 still
	// conserves the population.
	infectious = math.Min(infectious, math.Max(0, population-exposed-recovered))

	susceptible := math.Max(0, population-exposed-infectious-recovered)

	return CompartmentState{
		Susceptible: susceptible,
		Exposed:     exposed,
		Infectious:  infectious,
		Recovered:   recovered,
	}
}
