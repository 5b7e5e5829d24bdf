// Package store persists leads, opportunities and the stage-event ledger.
// Two backends exist: SQLite for local single-operator use and Postgres for
// shared deployments. Records are stored as JSON documents with the columns
// the funnel queries filter on denormalized alongside.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/funnel-cli/internal/model"
)

// ErrNotFound is returned when a lead, opportunity or event does not exist.
var ErrNotFound = eris.New("store: not found")

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status         model.LeadStatus  `json:"status,omitempty"`
	StageCanonical string            `json:"stage_canonical,omitempty"`
	Outcome        model.LeadOutcome `json:"outcome,omitempty"`
	Limit          int               `json:"limit,omitempty"`
	Offset         int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for the funnel pipeline.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead *model.Lead) error
	SaveLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Opportunities
	CreateOpportunity(ctx context.Context, opp *model.Opportunity) error
	SaveOpportunity(ctx context.Context, opp *model.Opportunity) error
	GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error)

	// Stage ledger. CommitLeadTransition and CommitOpportunityTransition
	// write the entity update and its event in one transaction; a stage
	// change without its ledger row must never be observable.
	AppendStageEvent(ctx context.Context, event *model.StageEvent) error
	CommitLeadTransition(ctx context.Context, lead *model.Lead, event *model.StageEvent) error
	CommitOpportunityTransition(ctx context.Context, opp *model.Opportunity, event *model.StageEvent) error
	ListStageEvents(ctx context.Context, entityType model.EntityType, entityID string, limit int) ([]model.StageEvent, error)

	// Funnel reporting
	LeadStageCounts(ctx context.Context) (map[string]int, error)
	StageEntryCounts(ctx context.Context, since time.Time) (map[string]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
