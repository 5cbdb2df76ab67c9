package epidemic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epiroute/epiroute/internal/epidemic"
)

func TestMobilityFactor_LinearMapping(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want float64
	}{
		{"zero mobility", 0, 0.1},
		{"full mobility", 100, 2.0},
		{"midpoint", 50, 1.05},
		{"extrapolates above", 200, 3.9},
		{"extrapolates below", -10, -0.09},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, epidemic.MobilityFactor(tt.pct), 1e-9)
		})
	}
}

func TestMobilityFactor_Monotonic(t *testing.T) {
	prev := epidemic.MobilityFactor(0)
	for pct := 5.0; pct <= 150; pct += 5 {
		cur := epidemic.MobilityFactor(pct)
		assert.Greater(t, cur, prev, "factor must increase with mobility")
		prev = cur
	}
}

func TestResolver_SeasonalFactor(t *testing.T) {
	resolver := epidemic.NewResolver(epidemic.DefaultParams())

	// Amplitude 0.6: peak 1.6 at day 0, trough 0.4 at midyear.
	assert.InDelta(t, 1.6, resolver.SeasonalFactor(0), 1e-9)
	assert.InDelta(t, 0.4, resolver.SeasonalFactor(182), 0.01)
	assert.InDelta(t, resolver.SeasonalFactor(10), resolver.SeasonalFactor(365+10), 1e-9)
}

func TestResolver_SeasonalFactor_PhaseShift(t *testing.T) {
	params := epidemic.DefaultParams()
	params.SeasonalPhaseDay = 182
	resolver := epidemic.NewResolver(params)

	// Shifting the phase by half a year moves the trough to day 0.
	assert.InDelta(t, 0.4, resolver.SeasonalFactor(0), 0.01)
}

func TestResolver_DensityFactor(t *testing.T) {
	resolver := epidemic.NewResolver(epidemic.DefaultParams())

	tests := []struct {
		name       string
		population float64
		want       float64
	}{
		{"at reference", 1_000_000, 1.0},
		{"below reference floors at one", 250_000, 1.0},
		{"four times reference", 4_000_000, 2.0},
		{"huge population hits cap", 100_000_000, 2.0},
		{"zero population", 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, resolver.DensityFactor(tt.population), 1e-9)
		})
	}
}

func TestResolver_Resolve_ComposesBeta(t *testing.T) {
	params := epidemic.DefaultParams()
	resolver := epidemic.NewResolver(params)

	rates := resolver.Resolve(0, 100, 1_000_000)

	// beta = R0 * gamma * seasonal * mobility * density
	//      = 3.5 * 0.1 * 1.6 * 2.0 * 1.0
	assert.InDelta(t, 1.12, rates.Beta, 1e-9)
	assert.InDelta(t, 0.5, rates.Alpha, 1e-9)
	assert.InDelta(t, 0.1, rates.Gamma, 1e-9)
	// omega = base waning * seasonal = 0.005 * 1.6
	assert.InDelta(t, 0.008, rates.Omega, 1e-9)
}

func TestResolver_Resolve_AlphaConstantAcrossDays(t *testing.T) {
	resolver := epidemic.NewResolver(epidemic.DefaultParams())

	winter := resolver.Resolve(0, 50, 2_000_000)
	summer := resolver.Resolve(182, 50, 2_000_000)

	assert.Equal(t, winter.Alpha, summer.Alpha)
	assert.Equal(t, winter.Gamma, summer.Gamma)
	assert.NotEqual(t, winter.Beta, summer.Beta)
	assert.NotEqual(t, winter.Omega, summer.Omega)
}
