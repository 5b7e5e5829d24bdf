package funnel

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/funnel-cli/internal/model"
)

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lowercase passthrough", "engaged", "engaged", false},
		{"uppercase", "WON", "won", false},
		{"surrounding whitespace", "  post_sale ", "post_sale", false},
		{"terminal stage", "disqualified", "disqualified", false},
		{"unknown stage", "simmering", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeStage(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, eris.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalFromLead(t *testing.T) {
	tests := []struct {
		name string
		lead model.Lead
		want string
	}{
		{"explicit canonical wins", model.Lead{StageCanonical: "Engaged", Status: model.LeadStatusNew}, "engaged"},
		{"invalid canonical falls through", model.Lead{StageCanonical: "banana", Status: model.LeadStatusConverted}, "won"},
		{"status scored maps to qualified", model.Lead{Status: model.LeadStatusScored}, "qualified"},
		{"status interested maps to engaged", model.Lead{Status: model.LeadStatusInterested}, "engaged"},
		{"lowercase legacy status", model.Lead{Status: "contacted"}, "contacted"},
		{"stage booked maps to opportunity", model.Lead{Stage: model.LeadStageBooked}, "opportunity"},
		{"stage replied maps to engaged", model.Lead{Stage: model.LeadStageReplied}, "engaged"},
		{"nothing set defaults to new", model.Lead{}, "new"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalFromLead(&tt.lead))
		})
	}
}

func TestCanonicalFromOpportunity(t *testing.T) {
	tests := []struct {
		name string
		opp  model.Opportunity
		want string
	}{
		{"explicit canonical wins", model.Opportunity{StageCanonical: "won"}, "won"},
		{"prospect maps to contacted", model.Opportunity{Stage: model.OpportunityStageProspect}, "contacted"},
		{"proposed maps to opportunity", model.Opportunity{Stage: model.OpportunityStageProposed}, "opportunity"},
		{"negotiation maps to opportunity", model.Opportunity{Stage: "Negotiation"}, "opportunity"},
		{"unknown defaults to opportunity", model.Opportunity{Stage: "weird"}, "opportunity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalFromOpportunity(&tt.opp))
		})
	}
}

func TestLegacyProjectionsFromCanonical(t *testing.T) {
	assert.Equal(t, model.LeadStatusScored, legacyStatusFromCanonical("qualified"))
	assert.Equal(t, model.LeadStatusInterested, legacyStatusFromCanonical("opportunity"))
	assert.Equal(t, model.LeadStatusConverted, legacyStatusFromCanonical("post_sale"))
	assert.Equal(t, model.LeadStatusNew, legacyStatusFromCanonical("mystery"))

	assert.Equal(t, model.LeadStageBooked, legacyLeadStageFromCanonical("opportunity"))
	assert.Equal(t, model.LeadStageSold, legacyLeadStageFromCanonical("won"))
	assert.Equal(t, model.LeadStageLost, legacyLeadStageFromCanonical("disqualified"))

	assert.Equal(t, model.OpportunityStageProposed, opportunityStageFromCanonical("opportunity"))
	assert.Equal(t, model.OpportunityStageWon, opportunityStageFromCanonical("post_sale"))

	assert.Equal(t, model.OpportunityWon, opportunityStatusFromCanonical("won"))
	assert.Equal(t, model.OpportunityLostStatus, opportunityStatusFromCanonical("disqualified"))
	assert.Equal(t, model.OpportunityOpen, opportunityStatusFromCanonical("engaged"))
}

func TestStageDeadlines(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		stage       string
		slaHours    int
		actionHours int
	}{
		{"new", 24, 4},
		{"contacted", 48, 12},
		{"opportunity", 72, 18},
		{"won", 24, 4},
		{"post_sale", 168, 48},
		{"unknown", 24, 8},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			slaDueAt, nextActionAt := StageDeadlines(tt.stage, now)
			assert.Equal(t, now.Add(time.Duration(tt.slaHours)*time.Hour), slaDueAt)
			assert.Equal(t, now.Add(time.Duration(tt.actionHours)*time.Hour), nextActionAt)
		})
	}
}
