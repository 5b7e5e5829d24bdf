package scoring

import (
	"strings"

	"github.com/sells-group/funnel-cli/internal/model"
)

// placeholderEmailDomain marks synthetic addresses minted by the sourcing
// pipeline; they never count as a direct-email hit.
const placeholderEmailDomain = "placeholder.com"

// ICPScore computes the capped ideal-customer-profile score for a lead along
// with a rule-key breakdown of every point contribution. Evaluation is pure
// and order-independent except for the fit size branch, which is a
// first-match chain: small range, else solo penalty, else large-group
// penalty.
func ICPScore(lead *model.Lead, cfg *Config) (float64, map[string]float64) {
	breakdown := make(map[string]float64)
	sig := ExtractSignals(lead, cfg)
	w := cfg.ICPWeights
	rules := cfg.Rules

	score := 0.0

	// Fit.
	fit := 0.0
	sizeRange := strings.TrimSpace(lead.Company.SizeRange)
	location := strings.ToLower(lead.Company.Location)
	industry := strings.ToLower(lead.Company.Industry)

	switch {
	case containsString(rules.Fit.SmallSizeRanges, sizeRange):
		fit += w.Fit.Prac25
		breakdown["fit_size_match"] = w.Fit.Prac25
	case containsString(rules.Fit.SoloSizeRanges, sizeRange):
		fit += w.Fit.SoloPenalty
		breakdown["fit_solo_penalty"] = w.Fit.SoloPenalty
	case containsString(rules.Fit.LargeSizeRanges, sizeRange):
		fit += w.Fit.Group10Penalty
		breakdown["fit_large_group_penalty"] = w.Fit.Group10Penalty
	}

	if ContainsAny(industry, rules.Fit.MedicalIndustryKeywords) {
		fit += w.Fit.MedicalIndustry
		breakdown["fit_industry_match"] = w.Fit.MedicalIndustry
	}
	if sig.LocationPriority || ContainsAny(location, rules.Fit.PriorityLocationKeywords) {
		fit += w.Fit.LocationPriority
		breakdown["fit_location_priority"] = w.Fit.LocationPriority
	}
	if sig.AdminPresent {
		fit += w.Fit.AdminPresent
		breakdown["fit_admin_present"] = w.Fit.AdminPresent
	}

	fit = capSection("fit", fit, breakdown, cfg.Caps.Fit)
	score += fit

	// Pain.
	pain := 0.0
	desc := strings.ToLower(lead.Company.Description)

	if sig.VagueBooking || ContainsAny(desc, rules.Pain.VagueBookingKeywordsAny) {
		pain += w.Pain.VagueBooking
		breakdown["pain_vague_booking"] = w.Pain.VagueBooking
	}
	if sig.NoFAQ {
		pain += w.Pain.NoFAQ
		breakdown["pain_no_faq"] = w.Pain.NoFAQ
	}
	if sig.MissingEssentials {
		pain += w.Pain.MissingEssentials
		breakdown["pain_missing_essentials"] = w.Pain.MissingEssentials
	}
	if ContainsAll(desc, rules.Pain.HighFrictionKeywordsAll) {
		pain += w.Pain.HighFriction
		breakdown["pain_high_friction"] = w.Pain.HighFriction
	}
	if ContainsAny(desc, rules.Pain.SurchargeSignalKeywordsAny) {
		pain += w.Pain.SurchargeSignals
		breakdown["pain_surcharge_signals"] = w.Pain.SurchargeSignals
	}

	pain = capSection("pain", pain, breakdown, cfg.Caps.Pain)
	score += pain

	// Digital weakness.
	digital := 0.0
	if sig.LowMobileScore {
		digital += w.Digital.BadMobile
		breakdown["digital_weakness_mobile"] = w.Digital.BadMobile
	}
	if sig.NoFoldCTA {
		digital += w.Digital.NoFoldCTA
		breakdown["digital_no_fold_cta"] = w.Digital.NoFoldCTA
	}
	if sig.WeakContactPage {
		digital += w.Digital.WeakContact
		breakdown["digital_weak_contact"] = w.Digital.WeakContact
	}

	digital = capSection("digital", digital, breakdown, cfg.Caps.Digital)
	score += digital

	// Access and urgency. Direct email and contact form are mutually
	// exclusive; the email bonus wins.
	access := 0.0
	if lead.Email != "" && !strings.Contains(lead.Email, placeholderEmailDomain) {
		access += w.Access.DirectEmail
		breakdown["access_direct_email"] = w.Access.DirectEmail
	} else if sig.HasContactForm {
		access += w.Access.ContactForm
		breakdown["access_contact_form"] = w.Access.ContactForm
	}
	if sig.ActiveSocial {
		access += w.Access.ActiveSocial
		breakdown["access_active_social"] = w.Access.ActiveSocial
	}
	if sig.RecentPost {
		access += w.Urgency.RecentPost
		breakdown["urgency_recent_post"] = w.Urgency.RecentPost
	}
	if sig.Hiring {
		access += w.Urgency.Hiring
		breakdown["urgency_hiring"] = w.Urgency.Hiring
	}
	if sig.NewService {
		access += w.Urgency.NewService
		breakdown["urgency_new_service"] = w.Urgency.NewService
	}

	access = capSection("access_urgency", access, breakdown, cfg.Caps.AccessUrgency)
	score += access

	total := clamp(score, cfg.Caps.TotalICP)
	if total < score {
		breakdown["icp_total_cap_adjustment"] = round4(total - score)
	}
	return total, breakdown
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
