package scoring

// Tier is the coarse ICP bucket driving outreach prioritization.
type Tier string

const (
	TierA Tier = "Tier A"
	TierB Tier = "Tier B"
	TierC Tier = "Tier C"
	TierD Tier = "Tier D"
)

// HeatStatus is the behavioral urgency bucket.
type HeatStatus string

const (
	HeatHot  HeatStatus = "Hot"
	HeatWarm HeatStatus = "Warm"
	HeatCold HeatStatus = "Cold"
)

// NoAction is returned when neither the tier nor the heat status has a
// configured action label.
const NoAction = "No action"

const defaultReplyIntent = "curiosity"

// TierFor buckets an ICP score by descending cutoff comparison. Boundaries
// are inclusive.
func (c *Config) TierFor(icpScore float64) Tier {
	switch {
	case icpScore >= c.TierCutoffs.TierA:
		return TierA
	case icpScore >= c.TierCutoffs.TierB:
		return TierB
	case icpScore >= c.TierCutoffs.TierC:
		return TierC
	default:
		return TierD
	}
}

// HeatStatusFor buckets a heat score. A score exactly at heat_hot_min is Hot.
func (c *Config) HeatStatusFor(heatScore float64) HeatStatus {
	switch {
	case heatScore >= c.Thresholds.HeatHotMin:
		return HeatHot
	case heatScore >= c.Thresholds.HeatWarmMin:
		return HeatWarm
	default:
		return HeatCold
	}
}

// TierAction returns the configured action label for a tier, empty when the
// table has none.
func (c *Config) TierAction(tier Tier) string {
	return c.tierActions[tier]
}

// HeatAction returns the configured action label for a heat status.
func (c *Config) HeatAction(status HeatStatus) string {
	return c.heatActions[status]
}

// NextAction combines the tier and heat action labels. Both present are
// joined with " | "; one present is returned as-is; none yields NoAction.
func (c *Config) NextAction(tier Tier, status HeatStatus) string {
	tierAction := c.tierActions[tier]
	heatAction := c.heatActions[status]
	switch {
	case tierAction != "" && heatAction != "":
		return tierAction + " | " + heatAction
	case tierAction != "":
		return tierAction
	case heatAction != "":
		return heatAction
	default:
		return NoAction
	}
}
