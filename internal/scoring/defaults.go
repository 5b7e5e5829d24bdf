package scoring

// Default returns the shipped scoring configuration. It mirrors
// configs/scoring.yaml and exists so tests and local runs never depend on a
// file path.
func Default() *Config {
	return &Config{
		ICPWeights: ICPWeights{
			Fit: FitWeights{
				Prac25:           15,
				MedicalIndustry:  8,
				LocationPriority: 4,
				AdminPresent:     3,
				SoloPenalty:      -5,
				Group10Penalty:   -3,
			},
			Pain: PainWeights{
				HighFriction:      12,
				VagueBooking:      8,
				NoFAQ:             5,
				MissingEssentials: 6,
				SurchargeSignals:  4,
			},
			Digital: DigitalWeights{
				BadMobile:   8,
				NoFoldCTA:   6,
				WeakContact: 6,
			},
			Access: AccessWeights{
				DirectEmail:  5,
				ContactForm:  2,
				ActiveSocial: 3,
			},
			Urgency: UrgencyWeights{
				RecentPost: 2,
				Hiring:     2,
				NewService: 3,
			},
		},
		HeatWeights: HeatWeights{
			Email: EmailWeights{
				Open:       5,
				DoubleOpen: 5,
				Click:      8,
				Forward:    6,
			},
			Site: SiteWeights{
				PricingPage: 10,
				ReturnVisit: 8,
				MultiPage:   5,
			},
			Reply: map[string]float64{
				"curiosity": 10,
				"interest":  15,
				"pricing":   20,
				"objection": 5,
			},
			Timing: TimingWeights{
				Within24h: 15,
				Within48h: 10,
				Within7d:  5,
			},
			Intent: IntentWeights{
				High:            15,
				Medium:          10,
				Low:             5,
				None:            0,
				TopicBonus:      2,
				SurgeMultiplier: 0.1,
			},
		},
		Thresholds: Thresholds{
			QualificationMinScore: 40,
			HeatHotMin:            60,
			HeatWarmMin:           30,
		},
		TierCutoffs: TierCutoffs{
			TierA: 75,
			TierB: 55,
			TierC: 35,
		},
		Caps: Caps{
			Fit:             30,
			Pain:            35,
			Digital:         20,
			AccessUrgency:   15,
			EmailEngagement: 40,
			SiteReply:       40,
			Timing:          20,
			TotalICP:        100,
			TotalHeat:       100,
		},
		Rules: Rules{
			Fit: FitRules{
				SmallSizeRanges:           []string{"2-5", "2-10", "3-9"},
				SoloSizeRanges:            []string{"1", "1-1", "solo"},
				LargeSizeRanges:           []string{"10+", "11-50", "51-200"},
				MedicalIndustryKeywords:   []string{"medical", "clinic", "clinique", "dental", "dentaire", "physio", "chiro", "osteo"},
				PriorityLocationKeywords:  []string{"montreal", "montréal", "laval", "quebec", "québec", "gatineau"},
				LocationPriorityDetailKey: "location_priority",
				AdminPresentDetailKey:     "admin_present",
			},
			Pain: PainRules{
				VagueBookingDetailKey:      "vague_booking",
				VagueBookingKeywordsAny:    []string{"appelez", "call us", "sans rendez-vous", "walk-in"},
				NoFAQDetailKey:             "no_faq",
				MissingEssentialsDetailKey: "missing_essentials",
				HighFrictionKeywordsAll:    []string{"rendez-vous", "appelez"},
				SurchargeSignalKeywordsAny: []string{"frais", "surcharge", "annulation", "cancellation fee"},
			},
			Digital: DigitalRules{
				LowMobileDetailKey:   "low_mobile_score",
				NoFoldCTADetailKey:   "no_fold_cta",
				WeakContactDetailKey: "weak_contact_page",
			},
			Access: AccessRules{
				ContactFormDetailKey:  "has_contact_form",
				ActiveSocialDetailKey: "active_social",
			},
			Urgency: UrgencyRules{
				RecentPostDetailKey: "recent_post",
				HiringDetailKey:     "hiring",
				NewServiceDetailKey: "new_service",
			},
			Timing: TimingRules{
				BucketsHours: TimingBuckets{
					Within24h: 24,
					Within48h: 48,
					Within7d:  168,
				},
			},
			Heat: HeatRules{
				ClickDetailKey:           "clicked",
				ForwardDetailKey:         "forwarded",
				SitePageKey:              "page",
				SiteReturnWithinHoursKey: "return_within_hours",
				SiteEventDetailKey:       "site_events",
				PricingPageTokens:        []string{"pricing", "tarif", "prix", "offre"},
				ReturnVisitHoursMax:      48,
			},
			Intent: IntentRules{
				Enabled:            true,
				DetailKey:          "intent",
				SupportedLevels:    []string{"none", "low", "medium", "high"},
				MaxTopicBonusCount: 5,
			},
			Actions: ActionRules{
				Tier: map[string]string{
					"tier_a": "Send personalized Loom within 24h",
					"tier_b": "Start standard email sequence",
					"tier_c": "Add to nurture list",
					"tier_d": "Deprioritize",
				},
				Heat: map[string]string{
					"hot":  "Call today and propose payment link",
					"warm": "Follow up within 48h",
					"cold": "Keep in drip campaign",
				},
			},
		},
	}
}
