package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"nil", nil, false},
		{"positive int", 3, true},
		{"zero int", 0, false},
		{"positive float", 0.5, true},
		{"negative float", -1.0, false},
		{"string true", "true", true},
		{"string yes", "YES", true},
		{"string one", "1", true},
		{"string on with space", " on ", true},
		{"string no", "no", false},
		{"string empty", "", false},
		{"unsupported type", []string{"true"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.value))
		})
	}
}

func TestContainsAny(t *testing.T) {
	keywords := []string{"pricing", "tarif"}

	assert.True(t, ContainsAny("see our pricing page", keywords))
	assert.True(t, ContainsAny("nos tarifs", keywords))
	assert.False(t, ContainsAny("about us", keywords))
	assert.False(t, ContainsAny("", keywords))
	assert.False(t, ContainsAny("anything", nil))
}

func TestContainsAll(t *testing.T) {
	keywords := []string{"rendez-vous", "appelez"}

	assert.True(t, ContainsAll("appelez pour un rendez-vous", keywords))
	assert.False(t, ContainsAll("appelez-nous", keywords))
	assert.False(t, ContainsAll("", keywords))
}

func TestCapSection(t *testing.T) {
	t.Run("under cap records nothing", func(t *testing.T) {
		breakdown := map[string]float64{}
		got := capSection("fit", 20, breakdown, 30)
		assert.Equal(t, 20.0, got)
		assert.NotContains(t, breakdown, "fit_cap_adjustment")
	})

	t.Run("over cap records negative delta", func(t *testing.T) {
		breakdown := map[string]float64{}
		got := capSection("pain", 42, breakdown, 35)
		assert.Equal(t, 35.0, got)
		assert.Equal(t, -7.0, breakdown["pain_cap_adjustment"])
	})

	t.Run("negative clamps to zero", func(t *testing.T) {
		breakdown := map[string]float64{}
		got := capSection("fit", -8, breakdown, 30)
		assert.Equal(t, 0.0, got)
		assert.NotContains(t, breakdown, "fit_cap_adjustment")
	})
}

func TestAsFloat(t *testing.T) {
	got, ok := asFloat("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, got)

	_, ok = asFloat("not a number")
	assert.False(t, ok)

	_, ok = asFloat(nil)
	assert.False(t, ok)

	got, ok = asFloat(7)
	assert.True(t, ok)
	assert.Equal(t, 7.0, got)
}

func TestAsInt(t *testing.T) {
	assert.Equal(t, 3, asInt(3.9))
	assert.Equal(t, 0, asInt(-2))
	assert.Equal(t, 0, asInt("junk"))
	assert.Equal(t, 4, asInt("4"))
}
