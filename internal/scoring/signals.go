package scoring

import "github.com/sells-group/funnel-cli/internal/model"

// Signals is the immutable snapshot of everything the calculators read from a
// lead's detail bag, resolved through the configured detail-key names. The
// calculators never reach into lead.Details directly.
type Signals struct {
	LocationPriority  bool
	AdminPresent      bool
	VagueBooking      bool
	NoFAQ             bool
	MissingEssentials bool
	LowMobileScore    bool
	NoFoldCTA         bool
	WeakContactPage   bool
	HasContactForm    bool
	ActiveSocial      bool
	RecentPost        bool
	Hiring            bool
	NewService        bool

	SiteEvents []map[string]any
	Intent     map[string]any
}

// ExtractSignals reads the lead's detail bag through the config's rule keys.
func ExtractSignals(lead *model.Lead, cfg *Config) Signals {
	r := cfg.Rules
	sig := Signals{
		LocationPriority:  Truthy(lead.Detail(r.Fit.LocationPriorityDetailKey)),
		AdminPresent:      Truthy(lead.Detail(r.Fit.AdminPresentDetailKey)),
		VagueBooking:      Truthy(lead.Detail(r.Pain.VagueBookingDetailKey)),
		NoFAQ:             Truthy(lead.Detail(r.Pain.NoFAQDetailKey)),
		MissingEssentials: Truthy(lead.Detail(r.Pain.MissingEssentialsDetailKey)),
		LowMobileScore:    Truthy(lead.Detail(r.Digital.LowMobileDetailKey)),
		NoFoldCTA:         Truthy(lead.Detail(r.Digital.NoFoldCTADetailKey)),
		WeakContactPage:   Truthy(lead.Detail(r.Digital.WeakContactDetailKey)),
		HasContactForm:    Truthy(lead.Detail(r.Access.ContactFormDetailKey)),
		ActiveSocial:      Truthy(lead.Detail(r.Access.ActiveSocialDetailKey)),
		RecentPost:        Truthy(lead.Detail(r.Urgency.RecentPostDetailKey)),
		Hiring:            Truthy(lead.Detail(r.Urgency.HiringDetailKey)),
		NewService:        Truthy(lead.Detail(r.Urgency.NewServiceDetailKey)),
	}

	if raw, ok := lead.Detail(r.Heat.SiteEventDetailKey).([]any); ok {
		for _, item := range raw {
			if event, ok := item.(map[string]any); ok {
				sig.SiteEvents = append(sig.SiteEvents, event)
			}
		}
	}
	if payload, ok := lead.Detail(r.Intent.DetailKey).(map[string]any); ok {
		sig.Intent = payload
	}

	return sig
}

// Patch is everything a scoring pass writes back into the lead besides the
// ScoringData itself: derived flags for the outreach collaborators plus the
// segment decision. The engine builds it; Apply merges it.
type Patch struct {
	Tier              Tier
	HeatStatus        HeatStatus
	NextBestAction    string
	TierAction        string
	HeatAction        string
	ShouldSendLoom    bool
	ProposeStripeLink bool

	// Segment is only written when non-empty; an existing non-medical
	// segment is never overwritten.
	Segment string
}

// Apply merges the patch into the lead's tags, segment and detail bag.
func (p Patch) Apply(lead *model.Lead) {
	lead.ReplaceTierTag(string(p.Tier))
	if p.Segment != "" {
		lead.Segment = p.Segment
	}

	lead.SetDetail("tier", string(p.Tier))
	lead.SetDetail("heat_status", string(p.HeatStatus))
	lead.SetDetail("next_best_action", p.NextBestAction)
	lead.SetDetail("tier_action", p.TierAction)
	lead.SetDetail("heat_action", p.HeatAction)
	lead.SetDetail("should_send_loom", p.ShouldSendLoom)
	lead.SetDetail("propose_stripe_link", p.ProposeStripeLink)
}
