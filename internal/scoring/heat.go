package scoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/funnel-cli/internal/model"
)

// HeatScore computes the capped behavioral score for a lead from its
// interaction history, site telemetry and third-party intent enrichment.
// now must be supplied by the caller: the timing bucket depends on elapsed
// time since the last interaction, and a hidden clock would make scoring
// unrepeatable.
func HeatScore(lead *model.Lead, cfg *Config, now time.Time) (float64, map[string]float64) {
	breakdown := make(map[string]float64)
	w := cfg.HeatWeights
	rules := cfg.Rules
	sig := ExtractSignals(lead, cfg)

	emailScore := 0.0
	siteReplyScore := 0.0
	timingScore := 0.0

	openCount := 0
	for _, interaction := range lead.Interactions {
		if interaction.Type == model.InteractionEmailOpened {
			openCount++
		}
	}

	for idx, interaction := range lead.Interactions {
		key := fmt.Sprintf("%s_%s_%d", interaction.Type, interaction.Timestamp.Format("20060102"), idx)

		if interaction.Type == model.InteractionEmailOpened {
			emailScore += w.Email.Open
			breakdown[key] = w.Email.Open
			if openCount >= 2 {
				// A second open signals real interest; the bonus is spread
				// evenly across all opens.
				bonus := w.Email.DoubleOpen / float64(openCount)
				emailScore += bonus
				breakdown[key+"_double_open_bonus"] = bonus
			}
		}

		// Click and forward flags are read from every interaction's detail
		// map, whatever its type. A stray clicked=true on a LinkedIn touch
		// scores like an email click; see the scoring notes in DESIGN.md
		// before changing this.
		if Truthy(interaction.Details[rules.Heat.ClickDetailKey]) {
			emailScore += w.Email.Click
			breakdown[key+"_click"] = w.Email.Click
		}
		if Truthy(interaction.Details[rules.Heat.ForwardDetailKey]) {
			emailScore += w.Email.Forward
			breakdown[key+"_forward"] = w.Email.Forward
		}

		if interaction.Type == model.InteractionEmailReplied {
			intentLabel := defaultReplyIntent
			if raw, ok := interaction.Details["intent"].(string); ok && raw != "" {
				intentLabel = strings.ToLower(raw)
			}
			points, ok := w.Reply[intentLabel]
			if !ok {
				points = w.Reply[defaultReplyIntent]
			}
			siteReplyScore += points
			breakdown[key+"_reply"] = points
		}

		if interaction.Type == model.InteractionEmailSent {
			eventScore, eventBreakdown := scoreSiteEvent(interaction.Details, key, cfg)
			siteReplyScore += eventScore
			mergeBreakdown(breakdown, eventBreakdown)
		}
	}

	// Enrichment telemetry supplies additional site events outside the
	// interaction log.
	for idx, event := range sig.SiteEvents {
		eventScore, eventBreakdown := scoreSiteEvent(event, fmt.Sprintf("site_event_%d", idx), cfg)
		siteReplyScore += eventScore
		mergeBreakdown(breakdown, eventBreakdown)
	}

	// Timing bonus keyed off the most recent interaction; first matching
	// bucket wins.
	if last := lead.LastInteraction(); last != nil {
		deltaHours := now.Sub(last.Timestamp).Hours()
		buckets := rules.Timing.BucketsHours
		switch {
		case deltaHours < buckets.Within24h:
			timingScore += w.Timing.Within24h
			breakdown["timing_bonus_24h"] = w.Timing.Within24h
		case deltaHours < buckets.Within48h:
			timingScore += w.Timing.Within48h
			breakdown["timing_bonus_48h"] = w.Timing.Within48h
		case deltaHours < buckets.Within7d:
			timingScore += w.Timing.Within7d
			breakdown["timing_bonus_7d"] = w.Timing.Within7d
		}
	}

	if rules.Intent.Enabled && sig.Intent != nil {
		siteReplyScore += scoreIntent(sig.Intent, cfg, breakdown)
	}

	emailScore = capSection("heat_email_engagement", emailScore, breakdown, cfg.Caps.EmailEngagement)
	siteReplyScore = capSection("heat_site_reply", siteReplyScore, breakdown, cfg.Caps.SiteReply)
	timingScore = capSection("heat_timing", timingScore, breakdown, cfg.Caps.Timing)

	total := clamp(emailScore+siteReplyScore+timingScore, cfg.Caps.TotalHeat)
	return total, breakdown
}

// scoreSiteEvent applies the shared site-telemetry sub-rule to one event map:
// a pricing-page visit, a fast return visit, and a multi-page session each
// earn their configured bonus.
func scoreSiteEvent(event map[string]any, keyPrefix string, cfg *Config) (float64, map[string]float64) {
	score := 0.0
	breakdown := make(map[string]float64)
	w := cfg.HeatWeights.Site
	rules := cfg.Rules.Heat

	page := strings.ToLower(fmt.Sprintf("%v", event[rules.SitePageKey]))
	if ContainsAny(page, rules.PricingPageTokens) {
		score += w.PricingPage
		breakdown[keyPrefix+"_pricing_page"] = w.PricingPage
	}

	if returnHours, ok := asFloat(event[rules.SiteReturnWithinHoursKey]); ok && returnHours <= rules.ReturnVisitHoursMax {
		score += w.ReturnVisit
		breakdown[keyPrefix+"_return_visit"] = w.ReturnVisit
	}

	if Truthy(event["multi_page"]) {
		score += w.MultiPage
		breakdown[keyPrefix+"_multi_page"] = w.MultiPage
	}

	return score, breakdown
}

// scoreIntent converts a normalized intent payload into heat points: a flat
// level bonus, a capped per-topic bonus, and a surge-score-proportional
// bonus.
func scoreIntent(payload map[string]any, cfg *Config, breakdown map[string]float64) float64 {
	w := cfg.HeatWeights.Intent
	rules := cfg.Rules.Intent

	supported := make(map[string]bool, len(rules.SupportedLevels))
	for _, l := range rules.SupportedLevels {
		supported[l] = true
	}

	level := strings.ToLower(fmt.Sprintf("%v", payload["intent_level"]))
	if !supported[level] {
		level = "none"
	}

	score := 0.0
	levelPoints := 0.0
	switch level {
	case "high":
		levelPoints = w.High
	case "medium":
		levelPoints = w.Medium
	case "low":
		levelPoints = w.Low
	default:
		levelPoints = w.None
	}
	if levelPoints != 0 {
		score += levelPoints
		breakdown["intent_level"] = levelPoints
	}

	topicCount := asInt(payload["topic_count"])
	maxTopics := rules.MaxTopicBonusCount
	if maxTopics <= 0 {
		maxTopics = 5
	}
	if topicCount > maxTopics {
		topicCount = maxTopics
	}
	if topicPoints := w.TopicBonus * float64(topicCount); topicPoints != 0 {
		score += topicPoints
		breakdown["intent_topic_bonus"] = topicPoints
	}

	if surge, ok := asFloat(payload["surge_score"]); ok {
		if surgePoints := surge * w.SurgeMultiplier; surgePoints != 0 {
			score += surgePoints
			breakdown["intent_surge_bonus"] = surgePoints
		}
	}

	return score
}

func mergeBreakdown(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] = v
	}
}
