// Package scoring implements ICP and behavioral heat scoring for leads:
// a config-driven rule engine producing capped section scores, a tier and
// heat-status classification, and a recommended next action.
package scoring

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrConfig marks a missing or malformed scoring configuration. It is fatal
// at engine construction; the engine never falls back to partial defaults.
var ErrConfig = eris.New("scoring: invalid config")

// Config is the versioned scoring configuration. It is loaded and validated
// once per engine instance and treated as read-only afterwards; hot reload
// means constructing a new engine.
type Config struct {
	ICPWeights  ICPWeights  `yaml:"icp_weights"`
	HeatWeights HeatWeights `yaml:"heat_weights"`
	Thresholds  Thresholds  `yaml:"thresholds"`
	TierCutoffs TierCutoffs `yaml:"tier_cutoffs"`
	Caps        Caps        `yaml:"caps"`
	Rules       Rules       `yaml:"rules"`

	// Built by Validate from Rules.Actions; enum-keyed so unknown action
	// table keys fail at load time instead of silently at lookup time.
	tierActions map[Tier]string
	heatActions map[HeatStatus]string
}

// ICPWeights holds the point values for the four ICP sections.
type ICPWeights struct {
	Fit     FitWeights     `yaml:"fit"`
	Pain    PainWeights    `yaml:"pain"`
	Digital DigitalWeights `yaml:"digital"`
	Access  AccessWeights  `yaml:"access"`
	Urgency UrgencyWeights `yaml:"urgency"`
}

// FitWeights scores company shape. The two penalties are negative.
type FitWeights struct {
	Prac25           float64 `yaml:"prac_2_5"`
	MedicalIndustry  float64 `yaml:"medical_industry"`
	LocationPriority float64 `yaml:"location_priority"`
	AdminPresent     float64 `yaml:"admin_present"`
	SoloPenalty      float64 `yaml:"solo_penalty"`
	Group10Penalty   float64 `yaml:"group_10_penalty"`
}

// PainWeights scores operational friction signals.
type PainWeights struct {
	HighFriction      float64 `yaml:"high_friction"`
	VagueBooking      float64 `yaml:"vague_booking"`
	NoFAQ             float64 `yaml:"no_faq"`
	MissingEssentials float64 `yaml:"missing_essentials"`
	SurchargeSignals  float64 `yaml:"surcharge_signals"`
}

// DigitalWeights scores website weakness signals.
type DigitalWeights struct {
	BadMobile   float64 `yaml:"bad_mobile"`
	NoFoldCTA   float64 `yaml:"no_fold_cta"`
	WeakContact float64 `yaml:"weak_contact"`
}

// AccessWeights scores reachability. DirectEmail and ContactForm are
// mutually exclusive; direct email wins.
type AccessWeights struct {
	DirectEmail  float64 `yaml:"direct_email"`
	ContactForm  float64 `yaml:"contact_form"`
	ActiveSocial float64 `yaml:"active_social"`
}

// UrgencyWeights scores buying-window signals.
type UrgencyWeights struct {
	RecentPost float64 `yaml:"recent_post"`
	Hiring     float64 `yaml:"hiring"`
	NewService float64 `yaml:"new_service"`
}

// HeatWeights holds the point values for behavioral scoring.
type HeatWeights struct {
	Email  EmailWeights       `yaml:"email"`
	Site   SiteWeights        `yaml:"site"`
	Reply  map[string]float64 `yaml:"reply"`
	Timing TimingWeights      `yaml:"timing"`
	Intent IntentWeights      `yaml:"intent"`
}

// EmailWeights scores email engagement events.
type EmailWeights struct {
	Open       float64 `yaml:"open"`
	DoubleOpen float64 `yaml:"double_open"`
	Click      float64 `yaml:"click"`
	Forward    float64 `yaml:"forward"`
}

// SiteWeights scores site telemetry events.
type SiteWeights struct {
	PricingPage float64 `yaml:"pricing_page"`
	ReturnVisit float64 `yaml:"return_visit"`
	MultiPage   float64 `yaml:"multi_page"`
}

// TimingWeights scores recency of the last interaction. Buckets are
// first-match, no stacking.
type TimingWeights struct {
	Within24h float64 `yaml:"within_24h"`
	Within48h float64 `yaml:"within_48h"`
	Within7d  float64 `yaml:"within_7d"`
}

// IntentWeights scores third-party intent enrichment.
type IntentWeights struct {
	High            float64 `yaml:"high"`
	Medium          float64 `yaml:"medium"`
	Low             float64 `yaml:"low"`
	None            float64 `yaml:"none"`
	TopicBonus      float64 `yaml:"topic_bonus"`
	SurgeMultiplier float64 `yaml:"surge_multiplier"`
}

// Thresholds holds the qualification gate and heat status boundaries.
type Thresholds struct {
	QualificationMinScore float64 `yaml:"qualification_min_score"`
	HeatHotMin            float64 `yaml:"heat_hot_min"`
	HeatWarmMin           float64 `yaml:"heat_warm_min"`
}

// TierCutoffs holds the descending ICP tier boundaries.
type TierCutoffs struct {
	TierA float64 `yaml:"tier_a"`
	TierB float64 `yaml:"tier_b"`
	TierC float64 `yaml:"tier_c"`
}

// Caps bounds each section and each total. Clamping is silent but audited in
// the breakdown; it is not an error.
type Caps struct {
	Fit             float64 `yaml:"fit"`
	Pain            float64 `yaml:"pain"`
	Digital         float64 `yaml:"digital"`
	AccessUrgency   float64 `yaml:"access_urgency"`
	EmailEngagement float64 `yaml:"email_engagement"`
	SiteReply       float64 `yaml:"site_reply"`
	Timing          float64 `yaml:"timing"`
	TotalICP        float64 `yaml:"total_icp"`
	TotalHeat       float64 `yaml:"total_heat"`
}

// Rules holds keyword lists, detail-map key names, timing buckets and action
// tables. The detail-key indirection lets the sourcing collaborator retarget
// flag names without touching the calculators.
type Rules struct {
	Fit     FitRules     `yaml:"fit"`
	Pain    PainRules    `yaml:"pain"`
	Digital DigitalRules `yaml:"digital"`
	Access  AccessRules  `yaml:"access"`
	Urgency UrgencyRules `yaml:"urgency"`
	Timing  TimingRules  `yaml:"timing"`
	Heat    HeatRules    `yaml:"heat"`
	Intent  IntentRules  `yaml:"intent"`
	Actions ActionRules  `yaml:"actions"`
}

// FitRules parameterizes the fit section.
type FitRules struct {
	SmallSizeRanges           []string `yaml:"small_size_ranges"`
	SoloSizeRanges            []string `yaml:"solo_size_ranges"`
	LargeSizeRanges           []string `yaml:"large_size_ranges"`
	MedicalIndustryKeywords   []string `yaml:"medical_industry_keywords"`
	PriorityLocationKeywords  []string `yaml:"priority_location_keywords"`
	LocationPriorityDetailKey string   `yaml:"location_priority_detail_key"`
	AdminPresentDetailKey     string   `yaml:"admin_present_detail_key"`
}

// PainRules parameterizes the pain section.
type PainRules struct {
	VagueBookingDetailKey      string   `yaml:"vague_booking_detail_key"`
	VagueBookingKeywordsAny    []string `yaml:"vague_booking_keywords_any"`
	NoFAQDetailKey             string   `yaml:"no_faq_detail_key"`
	MissingEssentialsDetailKey string   `yaml:"missing_essentials_detail_key"`
	HighFrictionKeywordsAll    []string `yaml:"high_friction_keywords_all"`
	SurchargeSignalKeywordsAny []string `yaml:"surcharge_signal_keywords_any"`
}

// DigitalRules names the detail flags for the digital weakness section.
type DigitalRules struct {
	LowMobileDetailKey   string `yaml:"low_mobile_detail_key"`
	NoFoldCTADetailKey   string `yaml:"no_fold_cta_detail_key"`
	WeakContactDetailKey string `yaml:"weak_contact_detail_key"`
}

// AccessRules names the detail flags for the access section.
type AccessRules struct {
	ContactFormDetailKey  string `yaml:"contact_form_detail_key"`
	ActiveSocialDetailKey string `yaml:"active_social_detail_key"`
}

// UrgencyRules names the detail flags for the urgency bonuses.
type UrgencyRules struct {
	RecentPostDetailKey string `yaml:"recent_post_detail_key"`
	HiringDetailKey     string `yaml:"hiring_detail_key"`
	NewServiceDetailKey string `yaml:"new_service_detail_key"`
}

// TimingRules holds the recency bucket boundaries in hours.
type TimingRules struct {
	BucketsHours TimingBuckets `yaml:"buckets_hours"`
}

// TimingBuckets are the ascending bucket boundaries.
type TimingBuckets struct {
	Within24h float64 `yaml:"within_24h"`
	Within48h float64 `yaml:"within_48h"`
	Within7d  float64 `yaml:"within_7d"`
}

// HeatRules parameterizes email detail flags and the shared site-event rule.
type HeatRules struct {
	ClickDetailKey           string   `yaml:"click_detail_key"`
	ForwardDetailKey         string   `yaml:"forward_detail_key"`
	SitePageKey              string   `yaml:"site_page_key"`
	SiteReturnWithinHoursKey string   `yaml:"site_return_within_hours_key"`
	SiteEventDetailKey       string   `yaml:"site_event_detail_key"`
	PricingPageTokens        []string `yaml:"pricing_page_tokens"`
	ReturnVisitHoursMax      float64  `yaml:"return_visit_hours_max"`
}

// IntentRules parameterizes third-party intent consumption.
type IntentRules struct {
	Enabled            bool     `yaml:"enabled"`
	DetailKey          string   `yaml:"detail_key"`
	SupportedLevels    []string `yaml:"supported_levels"`
	MaxTopicBonusCount int      `yaml:"max_topic_bonus_count"`
}

// ActionRules maps tier and heat-status keys to recommended action labels.
type ActionRules struct {
	Tier map[string]string `yaml:"tier"`
	Heat map[string]string `yaml:"heat"`
}

// Load reads and validates a scoring config file. An empty path loads the
// built-in defaults. Every failure wraps ErrConfig.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrConfig, "scoring config not found: %s", path)
		}
		return nil, eris.Wrapf(ErrConfig, "read scoring config %s: %v", path, err)
	}

	// Validate key presence against the raw document first: a typed struct
	// cannot distinguish a missing scalar from an explicit zero.
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(ErrConfig, "parse scoring config %s: %v", path, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, eris.Wrapf(ErrConfig, "decode scoring config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants and builds the enum-keyed action
// tables. Downstream calculators trust a validated config completely.
func (c *Config) Validate() error {
	if c.TierCutoffs.TierA < c.TierCutoffs.TierB || c.TierCutoffs.TierB < c.TierCutoffs.TierC {
		return eris.Wrap(ErrConfig, "tier_cutoffs must satisfy tier_a >= tier_b >= tier_c")
	}
	if c.Thresholds.HeatHotMin < c.Thresholds.HeatWarmMin {
		return eris.Wrap(ErrConfig, "thresholds must satisfy heat_hot_min >= heat_warm_min")
	}
	if _, ok := c.HeatWeights.Reply[defaultReplyIntent]; !ok {
		return eris.Wrapf(ErrConfig, "heat_weights.reply must define the %q bucket", defaultReplyIntent)
	}

	tierKeys := map[string]Tier{
		"tier_a": TierA, "tier_b": TierB, "tier_c": TierC, "tier_d": TierD,
	}
	c.tierActions = make(map[Tier]string, len(c.Rules.Actions.Tier))
	for key, action := range c.Rules.Actions.Tier {
		tier, ok := tierKeys[key]
		if !ok {
			return eris.Wrapf(ErrConfig, "rules.actions.tier contains unknown key %q", key)
		}
		c.tierActions[tier] = action
	}

	heatKeys := map[string]HeatStatus{
		"hot": HeatHot, "warm": HeatWarm, "cold": HeatCold,
	}
	c.heatActions = make(map[HeatStatus]string, len(c.Rules.Actions.Heat))
	for key, action := range c.Rules.Actions.Heat {
		status, ok := heatKeys[key]
		if !ok {
			return eris.Wrapf(ErrConfig, "rules.actions.heat contains unknown key %q", key)
		}
		c.heatActions[status] = action
	}

	supported := map[string]bool{"none": true, "low": true, "medium": true, "high": true}
	for _, level := range c.Rules.Intent.SupportedLevels {
		if !supported[level] {
			return eris.Wrapf(ErrConfig, "rules.intent.supported_levels contains unknown level %q", level)
		}
	}

	return nil
}

// QualificationThreshold returns the legacy gate applied to the combined
// total score.
func (c *Config) QualificationThreshold() float64 {
	return c.Thresholds.QualificationMinScore
}
