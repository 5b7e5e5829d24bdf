package model

import (
	"strings"
	"time"
)

// LeadStatus is the legacy pipeline status enum. New code should prefer the
// canonical stage on the lead; these values survive for older readers.
type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "NEW"
	LeadStatusEnriched     LeadStatus = "ENRICHED"
	LeadStatusScored       LeadStatus = "SCORED"
	LeadStatusContacted    LeadStatus = "CONTACTED"
	LeadStatusInterested   LeadStatus = "INTERESTED"
	LeadStatusConverted    LeadStatus = "CONVERTED"
	LeadStatusLost         LeadStatus = "LOST"
	LeadStatusDisqualified LeadStatus = "DISQUALIFIED"
)

// LeadStage is the legacy outreach stage enum, kept alongside LeadStatus for
// the same compatibility reasons.
type LeadStage string

const (
	LeadStageNew       LeadStage = "NEW"
	LeadStageContacted LeadStage = "CONTACTED"
	LeadStageOpened    LeadStage = "OPENED"
	LeadStageReplied   LeadStage = "REPLIED"
	LeadStageBooked    LeadStage = "BOOKED"
	LeadStageShow      LeadStage = "SHOW"
	LeadStageSold      LeadStage = "SOLD"
	LeadStageLost      LeadStage = "LOST"
)

// LeadOutcome labels a finished lead for the weight optimizer.
type LeadOutcome string

const (
	LeadOutcomeOpen   LeadOutcome = "OPEN"
	LeadOutcomeClosed LeadOutcome = "CLOSED"
	LeadOutcomeLost   LeadOutcome = "LOST"
)

// InteractionType classifies a logged touchpoint with a lead.
type InteractionType string

const (
	InteractionEmailSent       InteractionType = "EMAIL_SENT"
	InteractionEmailOpened     InteractionType = "EMAIL_OPENED"
	InteractionEmailReplied    InteractionType = "EMAIL_REPLIED"
	InteractionLinkedInConnect InteractionType = "LINKEDIN_CONNECT"
	InteractionMeetingBooked   InteractionType = "MEETING_BOOKED"
)

// Company is an immutable snapshot attached to a lead by the sourcing
// collaborator. It has no lifecycle of its own here.
type Company struct {
	Name         string   `json:"name"`
	Domain       string   `json:"domain,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	SizeRange    string   `json:"size_range,omitempty"`
	RevenueRange string   `json:"revenue_range,omitempty"`
	Location     string   `json:"location,omitempty"`
	TechStack    []string `json:"tech_stack,omitempty"`
	Description  string   `json:"description,omitempty"`
	LinkedInURL  string   `json:"linkedin_url,omitempty"`
}

// Interaction is an append-only touchpoint owned by its lead. Details carries
// free-form flags (click, forward, reply intent, site telemetry) set by the
// outreach and tracking collaborators.
type Interaction struct {
	ID        string          `json:"id"`
	Type      InteractionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Details   map[string]any  `json:"details,omitempty"`
}

// ScoringData is the full scoring result for a lead. It is replaced wholesale
// on every scoring pass, never patched incrementally.
type ScoringData struct {
	ICPScore float64 `json:"icp_score"`
	HeatScore float64 `json:"heat_score"`
	// TotalScore is the legacy combined metric (icp+heat)/2 still used by the
	// qualification gate. Tier and heat status derive from the raw scores.
	TotalScore     float64            `json:"total_score"`
	Tier           string             `json:"tier"`
	HeatStatus     string             `json:"heat_status"`
	NextBestAction string             `json:"next_best_action"`
	ICPBreakdown   map[string]float64 `json:"icp_breakdown,omitempty"`
	HeatBreakdown  map[string]float64 `json:"heat_breakdown,omitempty"`
	LastScoredAt   time.Time          `json:"last_scored_at"`
}

// Lead is the central prospect record. The sourcing collaborator creates it;
// the scoring engine mutates score, tags, segment and details in place.
type Lead struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Title     string `json:"title,omitempty"`
	Phone     string `json:"phone,omitempty"`

	Company Company `json:"company"`

	Status  LeadStatus  `json:"status,omitempty"`
	Stage   LeadStage   `json:"stage,omitempty"`
	Outcome LeadOutcome `json:"outcome,omitempty"`
	Segment string      `json:"segment,omitempty"`
	Tags    []string    `json:"tags,omitempty"`

	Interactions []Interaction  `json:"interactions,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	Score        *ScoringData   `json:"score,omitempty"`

	// Canonical funnel state, introduced after the legacy enums above. Old
	// records may have none of these set; funnel.CanonicalFromLead resolves
	// the fallback order.
	StageCanonical     string     `json:"stage_canonical,omitempty"`
	StageEnteredAt     *time.Time `json:"stage_entered_at,omitempty"`
	SLADueAt           *time.Time `json:"sla_due_at,omitempty"`
	NextActionAt       *time.Time `json:"next_action_at,omitempty"`
	HandoffRequired    bool       `json:"handoff_required,omitempty"`
	HandoffCompletedAt *time.Time `json:"handoff_completed_at,omitempty"`
	OwnerUserID        string     `json:"owner_user_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Detail returns a detail value by key; nil when the bag is empty.
func (l *Lead) Detail(key string) any {
	if l.Details == nil {
		return nil
	}
	return l.Details[key]
}

// SetDetail writes a detail value, allocating the bag if needed.
func (l *Lead) SetDetail(key string, value any) {
	if l.Details == nil {
		l.Details = make(map[string]any)
	}
	l.Details[key] = value
}

// ReplaceTierTag removes every existing "Tier *" tag and appends the given
// one, so a lead carries exactly one tier tag after scoring.
func (l *Lead) ReplaceTierTag(tier string) {
	kept := l.Tags[:0]
	for _, tag := range l.Tags {
		if !strings.HasPrefix(tag, "Tier ") {
			kept = append(kept, tag)
		}
	}
	l.Tags = append(kept, tier)
}

// LastInteraction returns the most recent interaction by timestamp, or nil.
func (l *Lead) LastInteraction() *Interaction {
	var last *Interaction
	for i := range l.Interactions {
		if last == nil || l.Interactions[i].Timestamp.After(last.Timestamp) {
			last = &l.Interactions[i]
		}
	}
	return last
}
