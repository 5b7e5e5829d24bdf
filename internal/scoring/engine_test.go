package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/funnel-cli/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(validatedConfig(t))
}

func hotLead(now time.Time) *model.Lead {
	return &model.Lead{
		ID:    "lead-1",
		Email: "dr.martin@clinique.example",
		Company: model.Company{
			SizeRange:   "2-5",
			Industry:    "dental clinic",
			Location:    "Montreal",
			Description: "appelez pour un rendez-vous, frais d'annulation",
		},
		Details: map[string]any{
			"admin_present":    true,
			"no_faq":           true,
			"low_mobile_score": true,
			"recent_post":      true,
		},
		Interactions: []model.Interaction{
			{ID: "a", Type: model.InteractionEmailOpened, Timestamp: now.Add(-2 * time.Hour)},
			{ID: "b", Type: model.InteractionEmailOpened, Timestamp: now.Add(-time.Hour), Details: map[string]any{"clicked": true}},
			{ID: "c", Type: model.InteractionEmailReplied, Timestamp: now.Add(-30 * time.Minute), Details: map[string]any{"intent": "pricing"}},
		},
	}
}

func TestScoreLeadAtFullPass(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	lead := hotLead(now)

	engine.ScoreLeadAt(lead, now)

	require.NotNil(t, lead.Score)
	// ICP: fit 30 (capped), pain 29, digital 8, access/urgency 7 = 74.
	assert.InDelta(t, 74.0, lead.Score.ICPScore, 0.001)
	// Heat: email 23 (two opens, split bonus, click), reply 20, timing 15.
	assert.InDelta(t, 58.0, lead.Score.HeatScore, 0.001)
	assert.InDelta(t, 66.0, lead.Score.TotalScore, 0.001)

	assert.Equal(t, "Tier B", lead.Score.Tier)
	assert.Equal(t, "Warm", lead.Score.HeatStatus)
	assert.Equal(t, "Start standard email sequence | Follow up within 48h", lead.Score.NextBestAction)
	assert.Equal(t, now, lead.Score.LastScoredAt)
}

func TestScoreLeadAtIsIdempotent(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	lead := hotLead(now)

	engine.ScoreLeadAt(lead, now)
	first := *lead.Score
	firstTags := append([]string(nil), lead.Tags...)

	engine.ScoreLeadAt(lead, now)
	assert.Equal(t, first, *lead.Score)
	assert.Equal(t, firstTags, lead.Tags)
}

func TestScoreLeadAtReplacesTierTag(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	lead := hotLead(now)
	lead.Tags = []string{"Tier D", "imported", "Tier C"}

	engine.ScoreLeadAt(lead, now)
	assert.Equal(t, []string{"imported", "Tier B"}, lead.Tags)
}

func TestScoreLeadAtPatchDetails(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	lead := hotLead(now)

	engine.ScoreLeadAt(lead, now)

	assert.Equal(t, "Tier B", lead.Detail("tier"))
	assert.Equal(t, "Warm", lead.Detail("heat_status"))
	assert.Equal(t, true, lead.Detail("should_send_loom"))
	assert.Equal(t, false, lead.Detail("propose_stripe_link"))
	assert.Equal(t, "Clinic", lead.Segment)
}

func TestScoreLeadSegmentRules(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now().UTC()

	t.Run("medical keyword wins over existing segment", func(t *testing.T) {
		lead := &model.Lead{Company: model.Company{Industry: "physio"}, Segment: "Retail"}
		engine.ScoreLeadAt(lead, now)
		assert.Equal(t, "Clinic", lead.Segment)
	})

	t.Run("empty segment becomes General", func(t *testing.T) {
		lead := &model.Lead{Company: model.Company{Industry: "plumbing"}}
		engine.ScoreLeadAt(lead, now)
		assert.Equal(t, "General", lead.Segment)
	})

	t.Run("existing non-medical segment is kept", func(t *testing.T) {
		lead := &model.Lead{Company: model.Company{Industry: "plumbing"}, Segment: "Trades"}
		engine.ScoreLeadAt(lead, now)
		assert.Equal(t, "Trades", lead.Segment)
	})
}

func TestQualified(t *testing.T) {
	engine := newTestEngine(t)

	assert.False(t, engine.Qualified(&model.Lead{}))

	lead := &model.Lead{Score: &model.ScoringData{TotalScore: 39.9}}
	assert.False(t, engine.Qualified(lead))

	lead.Score.TotalScore = 40
	assert.True(t, engine.Qualified(lead))
}
