package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/funnel-cli/internal/model"
)

var heatNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func interactionAt(typ model.InteractionType, ts time.Time, details map[string]any) model.Interaction {
	return model.Interaction{ID: "i", Type: typ, Timestamp: ts, Details: details}
}

func TestHeatScoreEmptyLead(t *testing.T) {
	cfg := validatedConfig(t)
	score, breakdown := HeatScore(&model.Lead{}, cfg, heatNow)
	assert.Equal(t, 0.0, score)
	assert.Empty(t, breakdown)
}

func TestHeatScoreSingleOpen(t *testing.T) {
	cfg := validatedConfig(t)
	ts := heatNow.Add(-100 * time.Hour)
	lead := &model.Lead{Interactions: []model.Interaction{
		interactionAt(model.InteractionEmailOpened, ts, nil),
	}}

	score, breakdown := HeatScore(lead, cfg, heatNow)
	key := fmt.Sprintf("EMAIL_OPENED_%s_0", ts.Format("20060102"))
	assert.Equal(t, 5.0, breakdown[key])
	assert.NotContains(t, breakdown, key+"_double_open_bonus")
	// 100h ago lands in the 7d timing bucket.
	assert.Equal(t, 5.0, breakdown["timing_bonus_7d"])
	assert.InDelta(t, 10.0, score, 0.001)
}

func TestHeatScoreDoubleOpenBonusSplitsAcrossOpens(t *testing.T) {
	cfg := validatedConfig(t)
	ts := heatNow.Add(-200 * time.Hour)
	lead := &model.Lead{Interactions: []model.Interaction{
		interactionAt(model.InteractionEmailOpened, ts, nil),
		interactionAt(model.InteractionEmailOpened, ts.Add(time.Hour), nil),
	}}

	score, breakdown := HeatScore(lead, cfg, heatNow)
	day := ts.Format("20060102")
	assert.InDelta(t, 2.5, breakdown["EMAIL_OPENED_"+day+"_0_double_open_bonus"], 0.001)
	assert.InDelta(t, 2.5, breakdown["EMAIL_OPENED_"+day+"_1_double_open_bonus"], 0.001)
	// Two opens at 5 each plus the 5-point bonus split between them; no
	// timing bonus past 7 days.
	assert.InDelta(t, 15.0, score, 0.001)
}

func TestHeatScoreClickAndForwardOnAnyInteraction(t *testing.T) {
	cfg := validatedConfig(t)
	ts := heatNow.Add(-300 * time.Hour)
	lead := &model.Lead{Interactions: []model.Interaction{
		interactionAt(model.InteractionLinkedInConnect, ts, map[string]any{
			"clicked":   true,
			"forwarded": true,
		}),
	}}

	_, breakdown := HeatScore(lead, cfg, heatNow)
	key := fmt.Sprintf("LINKEDIN_CONNECT_%s_0", ts.Format("20060102"))
	assert.Equal(t, 8.0, breakdown[key+"_click"])
	assert.Equal(t, 6.0, breakdown[key+"_forward"])
}

func TestHeatScoreReplyIntents(t *testing.T) {
	cfg := validatedConfig(t)
	ts := heatNow.Add(-400 * time.Hour)

	tests := []struct {
		name    string
		details map[string]any
		want    float64
	}{
		{"pricing intent", map[string]any{"intent": "pricing"}, 20},
		{"interest intent", map[string]any{"intent": "Interest"}, 15},
		{"objection intent", map[string]any{"intent": "objection"}, 5},
		{"missing intent defaults to curiosity", nil, 10},
		{"unknown intent defaults to curiosity", map[string]any{"intent": "rant"}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &model.Lead{Interactions: []model.Interaction{
				interactionAt(model.InteractionEmailReplied, ts, tt.details),
			}}
			_, breakdown := HeatScore(lead, cfg, heatNow)
			key := fmt.Sprintf("EMAIL_REPLIED_%s_0_reply", ts.Format("20060102"))
			assert.Equal(t, tt.want, breakdown[key])
		})
	}
}

func TestHeatScoreSiteEventsOnEmailSent(t *testing.T) {
	cfg := validatedConfig(t)
	ts := heatNow.Add(-500 * time.Hour)
	lead := &model.Lead{Interactions: []model.Interaction{
		interactionAt(model.InteractionEmailSent, ts, map[string]any{
			"page":                "/nos-tarifs",
			"return_within_hours": 12,
			"multi_page":          true,
		}),
	}}

	_, breakdown := HeatScore(lead, cfg, heatNow)
	key := fmt.Sprintf("EMAIL_SENT_%s_0", ts.Format("20060102"))
	assert.Equal(t, 10.0, breakdown[key+"_pricing_page"])
	assert.Equal(t, 8.0, breakdown[key+"_return_visit"])
	assert.Equal(t, 5.0, breakdown[key+"_multi_page"])
}

func TestHeatScoreDetailSiteEvents(t *testing.T) {
	cfg := validatedConfig(t)
	lead := &model.Lead{
		Details: map[string]any{
			"site_events": []any{
				map[string]any{"page": "/pricing"},
				map[string]any{"return_within_hours": 72.0},
			},
		},
	}

	_, breakdown := HeatScore(lead, cfg, heatNow)
	assert.Equal(t, 10.0, breakdown["site_event_0_pricing_page"])
	// 72h is past the 48h return-visit window.
	assert.NotContains(t, breakdown, "site_event_1_return_visit")
}

func TestHeatScoreTimingBuckets(t *testing.T) {
	cfg := validatedConfig(t)

	tests := []struct {
		name    string
		age     time.Duration
		wantKey string
		want    float64
	}{
		{"under 24h", 6 * time.Hour, "timing_bonus_24h", 15},
		{"under 48h", 30 * time.Hour, "timing_bonus_48h", 10},
		{"under 7d", 100 * time.Hour, "timing_bonus_7d", 5},
		{"stale", 200 * time.Hour, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &model.Lead{Interactions: []model.Interaction{
				interactionAt(model.InteractionEmailSent, heatNow.Add(-tt.age), nil),
			}}
			_, breakdown := HeatScore(lead, cfg, heatNow)
			if tt.wantKey == "" {
				assert.NotContains(t, breakdown, "timing_bonus_24h")
				assert.NotContains(t, breakdown, "timing_bonus_48h")
				assert.NotContains(t, breakdown, "timing_bonus_7d")
				return
			}
			assert.Equal(t, tt.want, breakdown[tt.wantKey])
		})
	}
}

func TestHeatScoreIntentPayload(t *testing.T) {
	cfg := validatedConfig(t)

	t.Run("full payload", func(t *testing.T) {
		lead := &model.Lead{Details: map[string]any{
			"intent": map[string]any{
				"intent_level": "high",
				"topic_count":  3,
				"surge_score":  80.0,
			},
		}}
		score, breakdown := HeatScore(lead, cfg, heatNow)
		assert.Equal(t, 15.0, breakdown["intent_level"])
		assert.Equal(t, 6.0, breakdown["intent_topic_bonus"])
		assert.InDelta(t, 8.0, breakdown["intent_surge_bonus"], 0.001)
		assert.InDelta(t, 29.0, score, 0.001)
	})

	t.Run("topic count capped", func(t *testing.T) {
		lead := &model.Lead{Details: map[string]any{
			"intent": map[string]any{"intent_level": "low", "topic_count": 12},
		}}
		_, breakdown := HeatScore(lead, cfg, heatNow)
		assert.Equal(t, 10.0, breakdown["intent_topic_bonus"])
	})

	t.Run("unsupported level treated as none", func(t *testing.T) {
		lead := &model.Lead{Details: map[string]any{
			"intent": map[string]any{"intent_level": "volcanic"},
		}}
		score, breakdown := HeatScore(lead, cfg, heatNow)
		assert.NotContains(t, breakdown, "intent_level")
		assert.Equal(t, 0.0, score)
	})

	t.Run("disabled intent scoring", func(t *testing.T) {
		cfg := validatedConfig(t)
		cfg.Rules.Intent.Enabled = false
		lead := &model.Lead{Details: map[string]any{
			"intent": map[string]any{"intent_level": "high"},
		}}
		score, _ := HeatScore(lead, cfg, heatNow)
		assert.Equal(t, 0.0, score)
	})
}

func TestHeatScoreEmailEngagementCap(t *testing.T) {
	cfg := validatedConfig(t)
	ts := heatNow.Add(-720 * time.Hour)

	var interactions []model.Interaction
	for i := 0; i < 6; i++ {
		interactions = append(interactions, interactionAt(model.InteractionEmailOpened, ts, map[string]any{"clicked": true}))
	}
	lead := &model.Lead{Interactions: interactions}

	score, breakdown := HeatScore(lead, cfg, heatNow)
	// 6 opens at 5, the 5-point split bonus, and 6 clicks at 8 come to 83,
	// clamped to the 40-point email cap.
	assert.Equal(t, 40.0, score)
	assert.InDelta(t, -43.0, breakdown["heat_email_engagement_cap_adjustment"], 0.001)
}
