package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailHelpers(t *testing.T) {
	var lead Lead
	assert.Nil(t, lead.Detail("anything"))

	lead.SetDetail("tier", "Tier B")
	assert.Equal(t, "Tier B", lead.Detail("tier"))
	assert.Nil(t, lead.Detail("missing"))
}

func TestReplaceTierTag(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{"empty tags", nil, []string{"Tier A"}},
		{"replaces a single tier tag", []string{"Tier C"}, []string{"Tier A"}},
		{"drops duplicates and keeps the rest", []string{"Tier D", "imported", "Tier B"}, []string{"imported", "Tier A"}},
		{"non-tier tags untouched", []string{"vip", "fr"}, []string{"vip", "fr", "Tier A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := Lead{Tags: tt.tags}
			lead.ReplaceTierTag("Tier A")
			assert.Equal(t, tt.want, lead.Tags)
		})
	}
}

func TestLastInteraction(t *testing.T) {
	var lead Lead
	assert.Nil(t, lead.LastInteraction())

	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	lead.Interactions = []Interaction{
		{ID: "a", Type: InteractionEmailSent, Timestamp: base},
		{ID: "c", Type: InteractionEmailReplied, Timestamp: base.Add(2 * time.Hour)},
		{ID: "b", Type: InteractionEmailOpened, Timestamp: base.Add(time.Hour)},
	}

	last := lead.LastInteraction()
	require.NotNil(t, last)
	assert.Equal(t, "c", last.ID)
}
