package model

import "time"

// OpportunityStage is the legacy display stage for opportunities.
type OpportunityStage string

const (
	OpportunityStageProspect  OpportunityStage = "Prospect"
	OpportunityStageQualified OpportunityStage = "Qualified"
	OpportunityStageProposed  OpportunityStage = "Proposed"
	OpportunityStageWon       OpportunityStage = "Won"
	OpportunityStageLost      OpportunityStage = "Lost"
)

// OpportunityStatus is the coarse open/won/lost state derived from the stage.
type OpportunityStatus string

const (
	OpportunityOpen       OpportunityStatus = "open"
	OpportunityWon        OpportunityStatus = "won"
	OpportunityLostStatus OpportunityStatus = "lost"
)

// Opportunity is the deal record derived from a qualified lead. It carries the
// same canonical funnel fields as Lead plus its own legacy stage/status pair.
type Opportunity struct {
	ID     string `json:"id"`
	LeadID string `json:"lead_id,omitempty"`
	Name   string `json:"name"`

	Stage  OpportunityStage  `json:"stage,omitempty"`
	Status OpportunityStatus `json:"status,omitempty"`
	Amount float64           `json:"amount,omitempty"`

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
