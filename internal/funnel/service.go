package funnel

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-cli/internal/model"
	"github.com/sells-group/funnel-cli/internal/store"
)

// Service runs stage transitions against the store. Every transition writes
// the entity and its ledger event in one transaction.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a funnel service using wall-clock time.
func NewService(st store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source. Tests pin it to a fixed instant.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TransitionRequest carries the actor context for a stage change. A nil
// SyncLegacy means true: legacy fields follow the canonical stage unless the
// caller explicitly opts out.
type TransitionRequest struct {
	Actor      string
	Reason     string
	Source     model.EventSource
	SyncLegacy *bool
}

func (r TransitionRequest) syncLegacy() bool {
	return r.SyncLegacy == nil || *r.SyncLegacy
}

func (s *Service) newEvent(entityType model.EntityType, entityID, fromStage, toStage, reason, actor string, source model.EventSource, metadata map[string]any) *model.StageEvent {
	cleanActor := strings.TrimSpace(actor)
	if cleanActor == "" {
		cleanActor = "system"
	}
	if source == "" {
		source = model.SourceManual
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &model.StageEvent{
		EntityType: entityType,
		EntityID:   entityID,
		FromStage:  fromStage,
		ToStage:    toStage,
		Reason:     strings.TrimSpace(reason),
		Actor:      cleanActor,
		Source:     source,
		Metadata:   metadata,
		CreatedAt:  s.now(),
	}
}

// EnsureLeadDefaults backfills canonical funnel fields on a lead that predates
// them. It only fills gaps; set fields are left alone.
func (s *Service) EnsureLeadDefaults(lead *model.Lead) bool {
	changed := false
	canonical := CanonicalFromLead(lead)
	if strings.ToLower(strings.TrimSpace(lead.StageCanonical)) != canonical {
		lead.StageCanonical = canonical
		changed = true
	}
	if lead.StageEnteredAt == nil {
		entered := lead.UpdatedAt
		if entered.IsZero() {
			entered = lead.CreatedAt
		}
		if entered.IsZero() {
			entered = s.now()
		}
		lead.StageEnteredAt = &entered
		changed = true
	}
	if lead.SLADueAt == nil || lead.NextActionAt == nil {
		slaDueAt, nextActionAt := StageDeadlines(canonical, *lead.StageEnteredAt)
		if lead.SLADueAt == nil {
			lead.SLADueAt = &slaDueAt
		}
		if lead.NextActionAt == nil {
			lead.NextActionAt = &nextActionAt
		}
		changed = true
	}
	return changed
}

// TransitionLeadStage moves a lead to a canonical stage and records the
// transition. Re-entering the current stage records a no-op event without
// touching the lead or its deadlines.
func (s *Service) TransitionLeadStage(ctx context.Context, leadID, toStage string, req TransitionRequest) (*model.StageEvent, error) {
	nextStage, err := NormalizeStage(toStage)
	if err != nil {
		return nil, err
	}
	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	previousStage := CanonicalFromLead(lead)
	now := s.now()

	if previousStage == nextStage {
		reason := req.Reason
		if strings.TrimSpace(reason) == "" {
			reason = "no_change"
		}
		event := s.newEvent(model.EntityLead, lead.ID, previousStage, nextStage,
			reason, req.Actor, req.Source, map[string]any{"noop": true})
		if err := s.store.AppendStageEvent(ctx, event); err != nil {
			return nil, err
		}
		return event, nil
	}

	lead.StageCanonical = nextStage
	lead.StageEnteredAt = &now
	slaDueAt, nextActionAt := StageDeadlines(nextStage, now)
	lead.SLADueAt = &slaDueAt
	lead.NextActionAt = &nextActionAt
	lead.HandoffRequired = nextStage == "won" || nextStage == "post_sale"
	if nextStage == "post_sale" {
		lead.HandoffCompletedAt = &now
	}

	if req.syncLegacy() {
		lead.Status = legacyStatusFromCanonical(nextStage)
		lead.Stage = legacyLeadStageFromCanonical(nextStage)
	}

	event := s.newEvent(model.EntityLead, lead.ID, previousStage, nextStage,
		req.Reason, req.Actor, req.Source, map[string]any{"sync_legacy": req.syncLegacy()})
	if err := s.store.CommitLeadTransition(ctx, lead, event); err != nil {
		return nil, err
	}

	zap.L().Info("lead stage transition",
		zap.String("lead_id", lead.ID),
		zap.String("from", previousStage),
		zap.String("to", nextStage),
		zap.String("actor", event.Actor))
	return event, nil
}

// TransitionOpportunityStage moves an opportunity to a canonical stage. The
// legacy display stage and open/won/lost status always follow the canonical
// stage; opportunities have no opt-out.
func (s *Service) TransitionOpportunityStage(ctx context.Context, oppID, toStage string, req TransitionRequest) (*model.StageEvent, error) {
	nextStage, err := NormalizeStage(toStage)
	if err != nil {
		return nil, err
	}
	opp, err := s.store.GetOpportunity(ctx, oppID)
	if err != nil {
		return nil, err
	}

	previousStage := CanonicalFromOpportunity(opp)
	now := s.now()

	opp.StageCanonical = nextStage
	opp.StageEnteredAt = &now
	slaDueAt, nextActionAt := StageDeadlines(nextStage, now)
	opp.SLADueAt = &slaDueAt
	opp.NextActionAt = &nextActionAt
	opp.Stage = opportunityStageFromCanonical(nextStage)
	opp.Status = opportunityStatusFromCanonical(nextStage)
	opp.HandoffRequired = nextStage == "won" || nextStage == "post_sale"
	if nextStage == "post_sale" {
		opp.HandoffCompletedAt = &now
	}

	event := s.newEvent(model.EntityOpportunity, opp.ID, previousStage, nextStage,
		req.Reason, req.Actor, req.Source, map[string]any{
			"opportunity_stage":  string(opp.Stage),
			"opportunity_status": string(opp.Status),
		})
	if err := s.store.CommitOpportunityTransition(ctx, opp, event); err != nil {
		return nil, err
	}

	zap.L().Info("opportunity stage transition",
		zap.String("opportunity_id", opp.ID),
		zap.String("from", previousStage),
		zap.String("to", nextStage),
		zap.String("actor", event.Actor))
	return event, nil
}

// ReassignResult reports an ownership change and its ledger event.
type ReassignResult struct {
	LeadID              string            `json:"lead_id"`
	OwnerUserID         string            `json:"owner_user_id"`
	PreviousOwnerUserID string            `json:"previous_owner_user_id,omitempty"`
	Event               *model.StageEvent `json:"event"`
}

// ReassignLeadOwner hands a lead to a new owner. The stage does not change;
// the event records the ownership move in the same ledger. A lead without a
// pending next action gets one two hours out so the new owner sees it.
func (s *Service) ReassignLeadOwner(ctx context.Context, leadID, ownerUserID, actor, reason string) (*ReassignResult, error) {
	owner := strings.TrimSpace(ownerUserID)
	if owner == "" {
		return nil, eris.Wrap(ErrValidation, "owner user id is required")
	}
	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	previousOwner := lead.OwnerUserID
	lead.OwnerUserID = owner
	if lead.NextActionAt == nil {
		next := s.now().Add(2 * time.Hour)
		lead.NextActionAt = &next
	}

	stage := CanonicalFromLead(lead)
	if strings.TrimSpace(reason) == "" {
		reason = "owner_reassigned"
	}
	event := s.newEvent(model.EntityLead, lead.ID, stage, stage,
		reason, actor, model.SourceAssignment, map[string]any{
			"from_owner_user_id": previousOwner,
			"to_owner_user_id":   owner,
		})
	if err := s.store.CommitLeadTransition(ctx, lead, event); err != nil {
		return nil, err
	}

	return &ReassignResult{
		LeadID:              lead.ID,
		OwnerUserID:         owner,
		PreviousOwnerUserID: previousOwner,
		Event:               event,
	}, nil
}

// CreateHandoff closes the sales-to-delivery handoff for a won lead. It marks
// the handoff complete, optionally reassigns ownership, and records a
// won to post_sale event on the ledger.
func (s *Service) CreateHandoff(ctx context.Context, leadID, toUserID, actor, note string) (*model.StageEvent, error) {
	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lead.HandoffRequired = true
	lead.HandoffCompletedAt = &now
	if owner := strings.TrimSpace(toUserID); owner != "" {
		lead.OwnerUserID = owner
	}

	metadata := map[string]any{}
	if n := strings.TrimSpace(note); n != "" {
		metadata["note"] = n
	}
	if owner := strings.TrimSpace(toUserID); owner != "" {
		metadata["to_user_id"] = owner
	}

	event := s.newEvent(model.EntityLead, lead.ID, "won", "post_sale",
		"handoff_completed", actor, model.SourceHandoff, metadata)
	if err := s.store.CommitLeadTransition(ctx, lead, event); err != nil {
		return nil, err
	}
	return event, nil
}

// StageHistory returns the most recent ledger events for an entity.
func (s *Service) StageHistory(ctx context.Context, entityType model.EntityType, entityID string, limit int) ([]model.StageEvent, error) {
	return s.store.ListStageEvents(ctx, entityType, entityID, limit)
}

// StageSummary is one funnel stage's slice of the conversion report.
type StageSummary struct {
	Stage                  string  `json:"stage"`
	LeadCount              int     `json:"lead_count"`
	EntriesInWindow        int     `json:"entries_in_window"`
	ConversionFromPrevious float64 `json:"conversion_from_previous_percent"`
}

// SummaryTotals aggregates the funnel's end states.
type SummaryTotals struct {
	Won          int `json:"won"`
	PostSale     int `json:"post_sale"`
	Lost         int `json:"lost"`
	Disqualified int `json:"disqualified"`
}

// Summary is the conversion funnel report over a rolling window.
type Summary struct {
	WindowDays int            `json:"window_days"`
	From       time.Time      `json:"from"`
	To         time.Time      `json:"to"`
	Items      []StageSummary `json:"items"`
	Totals     SummaryTotals  `json:"totals"`
}

// ConversionFunnelSummary reports current stage population, entries within
// the window and stage-to-stage conversion. Days clamps to 1..365. Conversion
// for the first stage is 100 when populated; downstream stages divide by the
// previous stage's count floored at 1 so an empty stage never divides by zero.
func (s *Service) ConversionFunnelSummary(ctx context.Context, days int) (*Summary, error) {
	windowDays := days
	if windowDays < 1 {
		windowDays = 1
	}
	if windowDays > 365 {
		windowDays = 365
	}
	now := s.now()
	startAt := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	currentCounts, err := s.store.LeadStageCounts(ctx)
	if err != nil {
		return nil, err
	}
	entryCounts, err := s.store.StageEntryCounts(ctx, startAt)
	if err != nil {
		return nil, err
	}

	items := make([]StageSummary, 0, len(CanonicalStages))
	previousCount := -1
	for _, stage := range CanonicalStages {
		count := currentCounts[stage]
		var rate float64
		if previousCount < 0 {
			if count > 0 {
				rate = 100.0
			}
		} else if previousCount > 0 {
			rate = math.Round(float64(count)/float64(previousCount)*100.0*100) / 100
		}
		items = append(items, StageSummary{
			Stage:                  stage,
			LeadCount:              count,
			EntriesInWindow:        entryCounts[stage],
			ConversionFromPrevious: rate,
		})
		previousCount = count
		if previousCount < 1 {
			previousCount = 1
		}
	}

	return &Summary{
		WindowDays: windowDays,
		From:       startAt,
		To:         now,
		Items:      items,
		Totals: SummaryTotals{
			Won:          currentCounts["won"],
			PostSale:     currentCounts["post_sale"],
			Lost:         currentCounts["lost"],
			Disqualified: currentCounts["disqualified"],
		},
	}, nil
}
