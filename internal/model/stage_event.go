package model

import "time"

// EntityType identifies what a stage event belongs to.
type EntityType string

const (
	EntityLead        EntityType = "lead"
	EntityOpportunity EntityType = "opportunity"
)

// EventSource records what triggered a stage transition.
type EventSource string

const (
	SourceManual     EventSource = "manual"
	SourceAutoRule   EventSource = "auto-rule"
	SourceAssignment EventSource = "assignment"
	SourceHandoff    EventSource = "handoff"
)

// StageEvent is one row of the append-only transition ledger. Events are
// never mutated or deleted; the ordered set of events for an entity is its
// full funnel history.
type StageEvent struct {
	ID         string         `json:"id"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	FromStage  string         `json:"from_stage,omitempty"`
	ToStage    string         `json:"to_stage"`
	Reason     string         `json:"reason,omitempty"`
	Actor      string         `json:"actor"`
	Source     EventSource    `json:"source"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
