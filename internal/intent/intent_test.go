package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"canonical high", "high", "high"},
		{"uppercase with spaces", "  HIGH ", "high"},
		{"very-high synonym", "very-high", "high"},
		{"hot synonym", "hot", "high"},
		{"warm synonym", "warm", "medium"},
		{"cold synonym", "cold", "low"},
		{"unknown value", "volcanic", "none"},
		{"nil", nil, "none"},
		{"non-string", 42, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLevel(tt.value))
		})
	}
}

func TestNormalizeBombora(t *testing.T) {
	t.Run("explicit level wins", func(t *testing.T) {
		sig := Normalize("bombora", map[string]any{
			"intent_level": "warm",
			"surge_score":  90.0,
			"topics":       []any{"crm software", "email automation"},
		})
		assert.Equal(t, "bombora", sig.Provider)
		assert.Equal(t, "medium", sig.IntentLevel)
		assert.Equal(t, 90.0, sig.SurgeScore)
		assert.Equal(t, 2, sig.TopicCount)
		assert.Equal(t, []string{"crm software", "email automation"}, sig.Topics)
		assert.Equal(t, 0.7, sig.Confidence)
	})

	t.Run("surge thresholds infer the level", func(t *testing.T) {
		tests := []struct {
			name  string
			surge float64
			want  string
		}{
			{"high at 75", 75, "high"},
			{"medium at 45", 45, "medium"},
			{"low above zero", 10, "low"},
			{"none at zero", 0, "none"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				sig := Normalize("bombora", map[string]any{"surge_score": tt.surge})
				assert.Equal(t, tt.want, sig.IntentLevel)
			})
		}
	})

	t.Run("intent_score is the surge fallback", func(t *testing.T) {
		sig := Normalize("bombora", map[string]any{"intent_score": 80.0})
		assert.Equal(t, 80.0, sig.SurgeScore)
		assert.Equal(t, "high", sig.IntentLevel)
	})
}

func TestNormalizeSixSense(t *testing.T) {
	t.Run("buying stage drives the level", func(t *testing.T) {
		sig := Normalize("6sense", map[string]any{
			"buying_stage": "Decision",
			"score":        40.0,
			"keywords":     []any{"patient scheduling"},
		})
		assert.Equal(t, "6sense", sig.Provider)
		assert.Equal(t, "high", sig.IntentLevel)
		assert.Equal(t, "decision", sig.BuyingStage)
		assert.Equal(t, []string{"patient scheduling"}, sig.Topics)
		assert.Equal(t, 40.0, sig.SurgeScore)
	})

	t.Run("consideration stage maps to medium", func(t *testing.T) {
		sig := Normalize("sixsense", map[string]any{"buying_stage": "Consideration"})
		assert.Equal(t, "6sense", sig.Provider)
		assert.Equal(t, "medium", sig.IntentLevel)
	})

	t.Run("score thresholds without a stage", func(t *testing.T) {
		assert.Equal(t, "high", Normalize("6sense", map[string]any{"intent_score": 80.0}).IntentLevel)
		assert.Equal(t, "medium", Normalize("6sense", map[string]any{"intent_score": 50.0}).IntentLevel)
		assert.Equal(t, "low", Normalize("6sense", map[string]any{"intent_score": 5.0}).IntentLevel)
	})

	t.Run("topics preferred over keywords", func(t *testing.T) {
		sig := Normalize("6sense", map[string]any{
			"topics":   []any{"a"},
			"keywords": []any{"b", "c"},
		})
		assert.Equal(t, []string{"a"}, sig.Topics)
	})
}

func TestNormalizeFallbackProvider(t *testing.T) {
	sig := Normalize("ClearbitReveal", map[string]any{
		"intent_level": "hot",
		"topics":       "billing software",
	})
	assert.Equal(t, "clearbitreveal", sig.Provider)
	assert.Equal(t, "high", sig.IntentLevel)
	assert.Equal(t, []string{"billing software"}, sig.Topics)
	assert.Equal(t, 1, sig.TopicCount)
	assert.Equal(t, 0.5, sig.Confidence)
	assert.Equal(t, 0.0, sig.SurgeScore)
}

func TestNormalizeEmptyInputs(t *testing.T) {
	sig := Normalize("", nil)
	assert.Equal(t, "unknown", sig.Provider)
	assert.Equal(t, "none", sig.IntentLevel)
	assert.Empty(t, sig.Topics)
	assert.Equal(t, 0, sig.TopicCount)
}

func TestSignalDetail(t *testing.T) {
	sig := Signal{
		Provider:    "bombora",
		IntentLevel: "high",
		SurgeScore:  82,
		TopicCount:  2,
		Topics:      []string{"a", "b"},
		Confidence:  0.9,
	}
	d := sig.Detail()
	assert.Equal(t, "high", d["intent_level"])
	assert.Equal(t, 82.0, d["surge_score"])
	assert.Equal(t, 2, d["topic_count"])
	assert.NotContains(t, d, "buying_stage")

	sig.BuyingStage = "decision"
	assert.Equal(t, "decision", sig.Detail()["buying_stage"])
}
