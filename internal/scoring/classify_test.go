package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validatedConfig(t *testing.T) *Config {
	t.Helper()
	cfg := Default()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestTierFor(t *testing.T) {
	cfg := validatedConfig(t)

	tests := []struct {
		name  string
		score float64
		want  Tier
	}{
		{"above tier a", 90, TierA},
		{"exactly tier a cutoff", 75, TierA},
		{"just below tier a", 74.99, TierB},
		{"exactly tier b cutoff", 55, TierB},
		{"exactly tier c cutoff", 35, TierC},
		{"below tier c", 34.5, TierD},
		{"zero", 0, TierD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.TierFor(tt.score))
		})
	}
}

func TestHeatStatusFor(t *testing.T) {
	cfg := validatedConfig(t)

	tests := []struct {
		name  string
		score float64
		want  HeatStatus
	}{
		{"hot boundary is inclusive", 60, HeatHot},
		{"warm boundary is inclusive", 30, HeatWarm},
		{"between warm and hot", 45, HeatWarm},
		{"below warm", 29.9, HeatCold},
		{"zero", 0, HeatCold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.HeatStatusFor(tt.score))
		})
	}
}

func TestNextAction(t *testing.T) {
	cfg := validatedConfig(t)

	t.Run("joins both labels", func(t *testing.T) {
		got := cfg.NextAction(TierA, HeatHot)
		assert.Equal(t, "Send personalized Loom within 24h | Call today and propose payment link", got)
	})

	t.Run("tier only", func(t *testing.T) {
		cfg := validatedConfig(t)
		delete(cfg.heatActions, HeatCold)
		assert.Equal(t, "Add to nurture list", cfg.NextAction(TierC, HeatCold))
	})

	t.Run("heat only", func(t *testing.T) {
		cfg := validatedConfig(t)
		delete(cfg.tierActions, TierD)
		assert.Equal(t, "Keep in drip campaign", cfg.NextAction(TierD, HeatCold))
	})

	t.Run("no action configured", func(t *testing.T) {
		cfg := validatedConfig(t)
		delete(cfg.tierActions, TierD)
		delete(cfg.heatActions, HeatCold)
		assert.Equal(t, NoAction, cfg.NextAction(TierD, HeatCold))
	})
}
