package scoring

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/funnel-cli/internal/model"
)

// Engine orchestrates the ICP and heat calculators and the classifier into a
// single scoring pass. The config is immutable for the engine's lifetime;
// reloading configuration means building a new engine so no scoring pass
// ever observes a half-updated config.
type Engine struct {
	cfg *Config
}

// NewEngine builds an engine around a validated config.
func NewEngine(cfg *Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's immutable configuration.
func (e *Engine) Config() *Config { return e.cfg }

// ScoreLead scores the lead against the current wall clock.
func (e *Engine) ScoreLead(lead *model.Lead) *model.Lead {
	return e.ScoreLeadAt(lead, time.Now().UTC())
}

// ScoreLeadAt runs a full scoring pass: both calculators, the classifier,
// a wholesale replacement of lead.Score, the single-tier-tag rule, segment
// derivation, and the detail patch consumed by the outreach collaborators.
// The lead is mutated in place and returned for chaining. Given identical
// inputs and the same now, the pass is idempotent.
func (e *Engine) ScoreLeadAt(lead *model.Lead, now time.Time) *model.Lead {
	icpScore, icpBreakdown := ICPScore(lead, e.cfg)
	heatScore, heatBreakdown := HeatScore(lead, e.cfg, now)

	tier := e.cfg.TierFor(icpScore)
	heatStatus := e.cfg.HeatStatusFor(heatScore)

	lead.Score = &model.ScoringData{
		ICPScore:       icpScore,
		HeatScore:      heatScore,
		TotalScore:     (icpScore + heatScore) / 2,
		Tier:           string(tier),
		HeatStatus:     string(heatStatus),
		NextBestAction: e.cfg.NextAction(tier, heatStatus),
		ICPBreakdown:   icpBreakdown,
		HeatBreakdown:  heatBreakdown,
		LastScoredAt:   now,
	}

	patch := Patch{
		Tier:              tier,
		HeatStatus:        heatStatus,
		NextBestAction:    lead.Score.NextBestAction,
		TierAction:        e.cfg.TierAction(tier),
		HeatAction:        e.cfg.HeatAction(heatStatus),
		ShouldSendLoom:    tier == TierA || heatScore >= e.cfg.Thresholds.HeatWarmMin,
		ProposeStripeLink: heatStatus == HeatHot,
		Segment:           e.segmentFor(lead),
	}
	patch.Apply(lead)

	zap.L().Debug("scoring: lead scored",
		zap.String("lead_id", lead.ID),
		zap.Float64("icp", icpScore),
		zap.Float64("heat", heatScore),
		zap.String("tier", string(tier)),
		zap.String("heat_status", string(heatStatus)),
	)

	return lead
}

// Qualified applies the legacy combined-score gate. Tier and heat status are
// derived from the raw scores and ignore this gate entirely.
func (e *Engine) Qualified(lead *model.Lead) bool {
	return lead.Score != nil && lead.Score.TotalScore >= e.cfg.Thresholds.QualificationMinScore
}

// segmentFor returns "Clinic" on a medical keyword match, "General" when the
// lead has no segment yet, and empty (leave as-is) otherwise: an existing
// non-medical segment is never overwritten.
func (e *Engine) segmentFor(lead *model.Lead) string {
	industryText := strings.ToLower(lead.Company.Industry + " " + lead.Company.Description)
	if ContainsAny(industryText, e.cfg.Rules.Fit.MedicalIndustryKeywords) {
		return "Clinic"
	}
	if lead.Segment == "" {
		return "General"
	}
	return ""
}
