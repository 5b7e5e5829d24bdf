// Package funnel owns the canonical stage machine layered over the legacy
// lead and opportunity enums. The canonical stage is authoritative; legacy
// fields are derived views kept in sync for older consumers.
package funnel

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/funnel-cli/internal/model"
)

// ErrValidation marks a rejected stage name or malformed request.
var ErrValidation = eris.New("funnel: validation failed")

// CanonicalStages is the ordered active funnel. Terminal stages sit outside
// the progression and are never part of conversion-rate math.
var CanonicalStages = []string{
	"new",
	"enriched",
	"qualified",
	"contacted",
	"engaged",
	"opportunity",
	"won",
	"post_sale",
}

// TerminalStages end a lead's journey.
var TerminalStages = map[string]bool{
	"lost":         true,
	"disqualified": true,
}

var validStages = func() map[string]bool {
	valid := make(map[string]bool, len(CanonicalStages)+len(TerminalStages))
	for _, s := range CanonicalStages {
		valid[s] = true
	}
	for s := range TerminalStages {
		valid[s] = true
	}
	return valid
}()

// allowedStageList is precomputed for validation errors.
var allowedStageList = func() string {
	names := make([]string, 0, len(validStages))
	for _, s := range CanonicalStages {
		names = append(names, s)
	}
	names = append(names, "disqualified", "lost")
	return strings.Join(names, ", ")
}()

var legacyStatusToCanonical = map[model.LeadStatus]string{
	model.LeadStatusNew:          "new",
	model.LeadStatusEnriched:     "enriched",
	model.LeadStatusScored:       "qualified",
	model.LeadStatusContacted:    "contacted",
	model.LeadStatusInterested:   "engaged",
	model.LeadStatusConverted:    "won",
	model.LeadStatusLost:         "lost",
	model.LeadStatusDisqualified: "disqualified",
}

var legacyLeadStageToCanonical = map[model.LeadStage]string{
	model.LeadStageNew:       "new",
	model.LeadStageContacted: "contacted",
	model.LeadStageOpened:    "engaged",
	model.LeadStageReplied:   "engaged",
	model.LeadStageBooked:    "opportunity",
	model.LeadStageShow:      "opportunity",
	model.LeadStageSold:      "won",
	model.LeadStageLost:      "lost",
}

var legacyOpportunityStageToCanonical = map[string]string{
	"prospect":      "contacted",
	"qualified":     "qualified",
	"qualification": "qualified",
	"discovery":     "engaged",
	"proposed":      "opportunity",
	"proposal":      "opportunity",
	"negotiation":   "opportunity",
	"won":           "won",
	"lost":          "lost",
}

var stageSLAHours = map[string]int{
	"new":          24,
	"enriched":     24,
	"qualified":    24,
	"contacted":    48,
	"engaged":      48,
	"opportunity":  72,
	"won":          24,
	"post_sale":    24 * 7,
	"lost":         24 * 7,
	"disqualified": 24 * 7,
}

var nextActionHours = map[string]int{
	"new":          4,
	"enriched":     6,
	"qualified":    8,
	"contacted":    12,
	"engaged":      12,
	"opportunity":  18,
	"won":          4,
	"post_sale":    48,
	"lost":         48,
	"disqualified": 48,
}

// NormalizeStage folds a stage name to its canonical lowercase form. Unknown
// names are rejected with the allowed set in the error.
func NormalizeStage(value string) (string, error) {
	candidate := strings.ToLower(strings.TrimSpace(value))
	if validStages[candidate] {
		return candidate, nil
	}
	return "", eris.Wrapf(ErrValidation, "unsupported canonical stage: %s (allowed: %s)", value, allowedStageList)
}

// CanonicalFromLead resolves a lead's canonical stage. An explicit canonical
// value wins; otherwise the legacy status, then the legacy stage, then "new".
func CanonicalFromLead(lead *model.Lead) string {
	raw := strings.ToLower(strings.TrimSpace(lead.StageCanonical))
	if raw != "" {
		if stage, err := NormalizeStage(raw); err == nil {
			return stage
		}
	}
	statusKey := model.LeadStatus(strings.ToUpper(strings.TrimSpace(string(lead.Status))))
	if stage, ok := legacyStatusToCanonical[statusKey]; ok {
		return stage
	}
	stageKey := model.LeadStage(strings.ToUpper(strings.TrimSpace(string(lead.Stage))))
	if stage, ok := legacyLeadStageToCanonical[stageKey]; ok {
		return stage
	}
	return "new"
}

// CanonicalFromOpportunity resolves an opportunity's canonical stage with
// fallback to the legacy display stage, then "opportunity".
func CanonicalFromOpportunity(opp *model.Opportunity) string {
	raw := strings.ToLower(strings.TrimSpace(opp.StageCanonical))
	if raw != "" {
		if stage, err := NormalizeStage(raw); err == nil {
			return stage
		}
	}
	stageKey := strings.ToLower(strings.TrimSpace(string(opp.Stage)))
	if stage, ok := legacyOpportunityStageToCanonical[stageKey]; ok {
		return stage
	}
	return "opportunity"
}

func legacyStatusFromCanonical(stage string) model.LeadStatus {
	mapping := map[string]model.LeadStatus{
		"new":          model.LeadStatusNew,
		"enriched":     model.LeadStatusEnriched,
		"qualified":    model.LeadStatusScored,
		"contacted":    model.LeadStatusContacted,
		"engaged":      model.LeadStatusInterested,
		"opportunity":  model.LeadStatusInterested,
		"won":          model.LeadStatusConverted,
		"post_sale":    model.LeadStatusConverted,
		"lost":         model.LeadStatusLost,
		"disqualified": model.LeadStatusDisqualified,
	}
	if status, ok := mapping[stage]; ok {
		return status
	}
	return model.LeadStatusNew
}

func legacyLeadStageFromCanonical(stage string) model.LeadStage {
	mapping := map[string]model.LeadStage{
		"new":          model.LeadStageNew,
		"enriched":     model.LeadStageNew,
		"qualified":    model.LeadStageNew,
		"contacted":    model.LeadStageContacted,
		"engaged":      model.LeadStageOpened,
		"opportunity":  model.LeadStageBooked,
		"won":          model.LeadStageSold,
		"post_sale":    model.LeadStageSold,
		"lost":         model.LeadStageLost,
		"disqualified": model.LeadStageLost,
	}
	if leadStage, ok := mapping[stage]; ok {
		return leadStage
	}
	return model.LeadStageNew
}

func opportunityStageFromCanonical(stage string) model.OpportunityStage {
	mapping := map[string]model.OpportunityStage{
		"new":          model.OpportunityStageProspect,
		"enriched":     model.OpportunityStageProspect,
		"qualified":    model.OpportunityStageQualified,
		"contacted":    model.OpportunityStageProspect,
		"engaged":      model.OpportunityStageQualified,
		"opportunity":  model.OpportunityStageProposed,
		"won":          model.OpportunityStageWon,
		"post_sale":    model.OpportunityStageWon,
		"lost":         model.OpportunityStageLost,
		"disqualified": model.OpportunityStageLost,
	}
	if oppStage, ok := mapping[stage]; ok {
		return oppStage
	}
	return model.OpportunityStageProspect
}

func opportunityStatusFromCanonical(stage string) model.OpportunityStatus {
	switch stage {
	case "won", "post_sale":
		return model.OpportunityWon
	case "lost", "disqualified":
		return model.OpportunityLostStatus
	}
	return model.OpportunityOpen
}

// StageDeadlines returns the SLA due and next-action timestamps for entering
// a stage at the given time. Unknown stages get the 24h/8h defaults.
func StageDeadlines(stage string, now time.Time) (slaDueAt, nextActionAt time.Time) {
	slaHours, ok := stageSLAHours[stage]
	if !ok {
		slaHours = 24
	}
	actionHours, ok := nextActionHours[stage]
	if !ok {
		actionHours = 8
	}
	return now.Add(time.Duration(slaHours) * time.Hour), now.Add(time.Duration(actionHours) * time.Hour)
}
