package travelrisk

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/epiroute/epiroute/internal/epidemic"
	"github.com/epiroute/epiroute/internal/region"
)

// Config holds tunables for the travel-risk estimator.
type Config struct {
	// DailyTransmissionRate is the per-day secondary transmission rate used
	// by the rule-based projection. Distinct from the simulation's beta.
	DailyTransmissionRate float64

	// DefaultHorizonDays is used when a request does not specify a horizon.
	DefaultHorizonDays int

	// CheckpointDays are the days at which the seeded-vs-baseline infection
	// delta is reported; days beyond the horizon are skipped.
	CheckpointDays []int

	// PreferModelEstimate, when set, makes the simulation cross-check the
	// primary ProjectedNewInfections figure instead of the rule formula.
	PreferModelEstimate bool
}

// DefaultConfig returns the default estimator configuration.
func DefaultConfig() Config {
	return Config{
		DailyTransmissionRate: 0.008,
		DefaultHorizonDays:    30,
		CheckpointDays:        []int{5, 10, 15, 20, 25, 30},
	}
}

// ServiceConfig holds the estimator's dependencies.
type ServiceConfig struct {
	Regions region.Repository
	Params  epidemic.Params
	Config  Config
	Logger  zerolog.Logger
}

// Service estimates travel risk between regions. It layers a fast rule-based
// projection over a pair of destination simulations used as a cross-check,
// then bounds every reported figure to its physical range.
type Service struct {
	regions   region.Repository
	simulator *epidemic.Simulator
	config    Config
	logger    zerolog.Logger
}

// NewService creates a travel-risk service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Config.DailyTransmissionRate == 0 {
		cfg.Config.DailyTransmissionRate = 0.008
	}
	if cfg.Config.DefaultHorizonDays == 0 {
		cfg.Config.DefaultHorizonDays = 30
	}
	if len(cfg.Config.CheckpointDays) == 0 {
		cfg.Config.CheckpointDays = []int{5, 10, 15, 20, 25, 30}
	}

	return &Service{
		regions:   cfg.Regions,
		simulator: epidemic.NewSimulator(cfg.Params),
		config:    cfg.Config,
		logger:    cfg.Logger,
	}
}

// EstimateRequest identifies one origin-destination travel flow.
type EstimateRequest struct {
	OriginID      string
	DestinationID string

	// Travelers is the number of people moving from origin to destination
	// over the horizon. Negative values are treated as zero.
	Travelers int

	// HorizonDays defaults to the configured horizon when non-positive.
	HorizonDays int

	// StartDay is the day of year the projection starts on.
	StartDay int
}

// RuleInputs feeds the rule-based projection formula.
type RuleInputs struct {
	OriginInfectious      float64
	OriginPopulation      float64
	OriginMobilityFactor  float64
	DestMobilityFactor    float64
	DestPopulation        float64
	Travelers             float64
	DailyTransmissionRate float64
	HorizonDays           int
}

// RuleProjection is the rule-based layer's output.
type RuleProjection struct {
	PInfectious                 float64
	ExpectedInfectiousTravelers float64
	NewInfections               float64
}

// ProjectRule computes the rule-based travel-risk projection: the infectious
// probability per traveler, the expected infectious traveler count, and the
// projected new infections at the destination over the horizon. Every output
// is bounded to its physical range.
func ProjectRule(in RuleInputs) RuleProjection {
	var p float64
	if in.OriginPopulation > 0 {
		p = epidemic.Clamp01(in.OriginInfectious / in.OriginPopulation * in.OriginMobilityFactor)
	}

	travelers := math.Max(0, in.Travelers)
	expected := travelers * p

	newInfections := expected * in.DailyTransmissionRate * float64(in.HorizonDays) * in.DestMobilityFactor
	newInfections = epidemic.Clamp(newInfections, 0, math.Max(0, in.DestPopulation))

	return RuleProjection{
		PInfectious:                 p,
		ExpectedInfectiousTravelers: expected,
		NewInfections:               newInfections,
	}
}

// Estimate produces a travel-risk estimate for the requested flow. Unknown
// regions return region.ErrRegionNotFound; numeric anomalies in the
// underlying simulations propagate as epidemic.ErrNumericAnomaly.
func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (*Estimate, error) {
	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = s.config.DefaultHorizonDays
	}

	origin, err := s.regions.Get(ctx, req.OriginID)
	if err != nil {
		return nil, fmt.Errorf("origin region: %w", err)
	}
	dest, err := s.regions.Get(ctx, req.DestinationID)
	if err != nil {
		return nil, fmt.Errorf("destination region: %w", err)
	}

	originFactor := epidemic.MobilityFactor(origin.MobilityPct)
	destFactor := epidemic.MobilityFactor(dest.MobilityPct)

	originRun, err := s.simulator.Run(epidemic.RunInput{
		Population:  float64(origin.Population),
		MobilityPct: origin.MobilityPct,
		StartDay:    req.StartDay,
		HorizonDays: horizon,
	})
	if err != nil {
		return nil, fmt.Errorf("origin simulation: %w", err)
	}
	originFinal := originRun.Final()

	rule := ProjectRule(RuleInputs{
		OriginInfectious:      originFinal.Infectious,
		OriginPopulation:      float64(origin.Population),
		OriginMobilityFactor:  originFactor,
		DestMobilityFactor:    destFactor,
		DestPopulation:        float64(dest.Population),
		Travelers:             float64(req.Travelers),
		DailyTransmissionRate: s.config.DailyTransmissionRate,
		HorizonDays:           horizon,
	})

	baseline, seeded, err := s.crossCheck(dest, req.StartDay, horizon, rule.ExpectedInfectiousTravelers)
	if err != nil {
		return nil, err
	}

	modelDelta := infectionDelta(baseline.Final(), seeded.Final())

	projected := rule.NewInfections
	if s.config.PreferModelEstimate {
		projected = epidemic.Clamp(modelDelta, 0, math.Max(0, float64(dest.Population)))
	}

	estimate := &Estimate{
		Origin:                      summarize(origin, originFactor),
		Destination:                 summarize(dest, destFactor),
		Travelers:                   maxInt(0, req.Travelers),
		HorizonDays:                 horizon,
		PInfectious:                 rule.PInfectious,
		PInfectiousPct:              rule.PInfectious * 100,
		ExpectedInfectiousTravelers: rule.ExpectedInfectiousTravelers,
		ProjectedNewInfections:      projected,
		ModelDeltaNewInfections:     modelDelta,
		Checkpoints:                 s.checkpoints(baseline, seeded, horizon),
		OriginState:                 originFinal,
		DestinationState:            seeded.Final(),
	}

	s.logger.Debug().
		Str("origin", origin.ID).
		Str("destination", dest.ID).
		Int("travelers", estimate.Travelers).
		Int("horizon_days", horizon).
		Float64("p_infectious", estimate.PInfectious).
		Float64("projected_new_infections", estimate.ProjectedNewInfections).
		Msg("travel risk estimated")

	return estimate, nil
}

// crossCheck runs the destination twice, unseeded and with the expected
// infectious arrivals added to the initial infectious count.
func (s *Service) crossCheck(dest *region.Region, startDay, horizon int, expected float64) (baseline, seeded *epidemic.SimulationResult, err error) {
	in := epidemic.RunInput{
		Population:  float64(dest.Population),
		MobilityPct: dest.MobilityPct,
		StartDay:    startDay,
		HorizonDays: horizon,
	}

	baseline, err = s.simulator.Run(in)
	if err != nil {
		return nil, nil, fmt.Errorf("destination baseline simulation: %w", err)
	}

	seed := float64(dest.Population)*s.simulator.Params().InitialInfectedFraction + expected
	in.InfectiousSeed = &seed

	seeded, err = s.simulator.Run(in)
	if err != nil {
		return nil, nil, fmt.Errorf("destination seeded simulation: %w", err)
	}
	return baseline, seeded, nil
}

// checkpoints reports the seeded-vs-baseline infection delta at the
// configured days, skipping any beyond the horizon.
func (s *Service) checkpoints(baseline, seeded *epidemic.SimulationResult, horizon int) []Checkpoint {
	out := make([]Checkpoint, 0, len(s.config.CheckpointDays))
	for _, day := range s.config.CheckpointDays {
		if day < 0 || day > horizon {
			continue
		}
		out = append(out, Checkpoint{
			Day:           day,
			NewInfections: infectionDelta(baseline.Days[day], seeded.Days[day]),
		})
	}
	return out
}

// Heatmap scores every origin-destination pair by the product of the two
// regions' mobility factors, normalized so the busiest pair scores 100.
func (s *Service) Heatmap(ctx context.Context) (*Heatmap, error) {
	regions, err := s.regions.List(ctx)
	if err != nil {
		return nil, err
	}

	factors := make([]float64, len(regions))
	names := make([]string, len(regions))
	maxFactor := 0.0
	for i, r := range regions {
		factors[i] = math.Abs(epidemic.MobilityFactor(r.MobilityPct))
		names[i] = r.Name
		if factors[i] > maxFactor {
			maxFactor = factors[i]
		}
	}
	if maxFactor == 0 {
		maxFactor = 1
	}

	scores := make([][]float64, len(regions))
	for i := range regions {
		row := make([]float64, len(regions))
		for j := range regions {
			row[j] = factors[i] * factors[j] / (maxFactor * maxFactor) * 100
		}
		scores[i] = row
	}

	return &Heatmap{Regions: names, Scores: scores}, nil
}

// infectionDelta is the cumulative-infection difference (I+R) between the
// seeded and baseline states, floored at zero. The seeded epidemic can burn
// through the susceptible pool earlier and finish below the baseline; a
// negative delta carries no risk signal.
func infectionDelta(baseline, seeded epidemic.CompartmentState) float64 {
	return math.Max(0, (seeded.Infectious+seeded.Recovered)-(baseline.Infectious+baseline.Recovered))
}

func summarize(r *region.Region, factor float64) RegionSummary {
	return RegionSummary{
		ID:             r.ID,
		Name:           r.Name,
		Population:     r.Population,
		MobilityPct:    r.MobilityPct,
		MobilityFactor: factor,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
