package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/funnel-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	pgUpdateLead = `UPDATE leads
	 SET data = $1, status = $2, stage_canonical = $3, outcome = $4, owner_user_id = $5, sla_due_at = $6, next_action_at = $7, updated_at = $8
	 WHERE id = $9`
	pgUpdateOpportunity = `UPDATE opportunities
	 SET data = $1, stage_canonical = $2, status = $3, updated_at = $4
	 WHERE id = $5`
	pgInsertEvent = `INSERT INTO stage_events (id, entity_type, entity_id, from_stage, to_stage, reason, actor, source, metadata, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	pgGetLead        = `SELECT data FROM leads WHERE id = $1`
	pgGetOpportunity = `SELECT data FROM opportunities WHERE id = $1`
	pgListEvents     = `SELECT id, entity_type, entity_id, from_stage, to_stage, reason, actor, source, metadata, created_at
	 FROM stage_events WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC LIMIT $3`
	pgLeadStageCounts  = `SELECT lower(coalesce(nullif(stage_canonical, ''), 'new')), count(*) FROM leads GROUP BY 1`
	pgStageEntryCounts = `SELECT lower(to_stage), count(*) FROM stage_events WHERE created_at >= $1 GROUP BY 1`
)

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"update_lead":  pgUpdateLead,
	"get_lead":     pgGetLead,
	"insert_event": pgInsertEvent,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Tests use it with a mock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	data            JSONB NOT NULL,
	status          TEXT,
	stage_canonical TEXT,
	outcome         TEXT,
	owner_user_id   TEXT,
	sla_due_at      TIMESTAMPTZ,
	next_action_at  TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS opportunities (
	id              TEXT PRIMARY KEY,
	lead_id         TEXT,
	data            JSONB NOT NULL,
	stage_canonical TEXT,
	status          TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stage_events (
	id          TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	from_stage  TEXT,
	to_stage    TEXT NOT NULL,
	reason      TEXT,
	actor       TEXT NOT NULL,
	source      TEXT NOT NULL,
	metadata    JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_stage_canonical ON leads(stage_canonical);
CREATE INDEX IF NOT EXISTS idx_leads_owner ON leads(owner_user_id);
CREATE INDEX IF NOT EXISTS idx_leads_sla_due ON leads(sla_due_at);
CREATE INDEX IF NOT EXISTS idx_opportunities_lead_id ON opportunities(lead_id);
CREATE INDEX IF NOT EXISTS idx_stage_events_entity ON stage_events(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_stage_events_created_at ON stage_events(created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	prepareLead(lead)
	data, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, data, status, stage_canonical, outcome, owner_user_id, sla_due_at, next_action_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		lead.ID, data, string(lead.Status), lead.StageCanonical, string(lead.Outcome),
		lead.OwnerUserID, lead.SLADueAt, lead.NextActionAt, lead.CreatedAt, lead.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert lead %s", lead.ID)
}

func (s *PostgresStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}

	tag, err := s.pool.Exec(ctx, pgUpdateLead,
		data, string(lead.Status), lead.StageCanonical, string(lead.Outcome),
		lead.OwnerUserID, lead.SLADueAt, lead.NextActionAt, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", lead.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", lead.ID)
	}
	return nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, pgGetLead, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "lead %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}

	var lead model.Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal lead %s", id)
	}
	return &lead, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT data FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.StageCanonical != "" {
		query += fmt.Sprintf(` AND stage_canonical = $%d`, argIdx)
		args = append(args, filter.StageCanonical)
		argIdx++
	}
	if filter.Outcome != "" {
		query += fmt.Sprintf(` AND outcome = $%d`, argIdx)
		args = append(args, string(filter.Outcome))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal(data, &lead); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) CreateOpportunity(ctx context.Context, opp *model.Opportunity) error {
	prepareOpportunity(opp)
	data, err := json.Marshal(opp)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal opportunity")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO opportunities (id, lead_id, data, stage_canonical, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		opp.ID, opp.LeadID, data, opp.StageCanonical, string(opp.Status), opp.CreatedAt, opp.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert opportunity %s", opp.ID)
}

func (s *PostgresStore) SaveOpportunity(ctx context.Context, opp *model.Opportunity) error {
	opp.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(opp)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal opportunity")
	}

	tag, err := s.pool.Exec(ctx, pgUpdateOpportunity,
		data, opp.StageCanonical, string(opp.Status), opp.UpdatedAt, opp.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update opportunity %s", opp.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "opportunity %s", opp.ID)
	}
	return nil
}

func (s *PostgresStore) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, pgGetOpportunity, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "opportunity %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get opportunity %s", id)
	}

	var opp model.Opportunity
	if err := json.Unmarshal(data, &opp); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal opportunity %s", id)
	}
	return &opp, nil
}

func (s *PostgresStore) AppendStageEvent(ctx context.Context, event *model.StageEvent) error {
	prepareEvent(event)
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal event metadata")
	}

	_, err = s.pool.Exec(ctx, pgInsertEvent,
		event.ID, string(event.EntityType), event.EntityID, event.FromStage, event.ToStage,
		event.Reason, event.Actor, string(event.Source), metadata, event.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert stage event %s", event.ID)
}

func (s *PostgresStore) CommitLeadTransition(ctx context.Context, lead *model.Lead, event *model.StageEvent) error {
	lead.UpdatedAt = time.Now().UTC()
	prepareEvent(event)

	data, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal event metadata")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transition")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, pgUpdateLead,
		data, string(lead.Status), lead.StageCanonical, string(lead.Outcome),
		lead.OwnerUserID, lead.SLADueAt, lead.NextActionAt, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: transition lead %s", lead.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", lead.ID)
	}

	if _, err := tx.Exec(ctx, pgInsertEvent,
		event.ID, string(event.EntityType), event.EntityID, event.FromStage, event.ToStage,
		event.Reason, event.Actor, string(event.Source), metadata, event.CreatedAt,
	); err != nil {
		return eris.Wrapf(err, "postgres: insert transition event %s", event.ID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit transition")
}

func (s *PostgresStore) CommitOpportunityTransition(ctx context.Context, opp *model.Opportunity, event *model.StageEvent) error {
	opp.UpdatedAt = time.Now().UTC()
	prepareEvent(event)

	data, err := json.Marshal(opp)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal opportunity")
	}
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal event metadata")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transition")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, pgUpdateOpportunity,
		data, opp.StageCanonical, string(opp.Status), opp.UpdatedAt, opp.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: transition opportunity %s", opp.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "opportunity %s", opp.ID)
	}

	if _, err := tx.Exec(ctx, pgInsertEvent,
		event.ID, string(event.EntityType), event.EntityID, event.FromStage, event.ToStage,
		event.Reason, event.Actor, string(event.Source), metadata, event.CreatedAt,
	); err != nil {
		return eris.Wrapf(err, "postgres: insert transition event %s", event.ID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit transition")
}

func (s *PostgresStore) ListStageEvents(ctx context.Context, entityType model.EntityType, entityID string, limit int) ([]model.StageEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, pgListEvents, string(entityType), entityID, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list stage events")
	}
	defer rows.Close()

	var events []model.StageEvent
	for rows.Next() {
		var e model.StageEvent
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.FromStage, &e.ToStage,
			&e.Reason, &e.Actor, &e.Source, &metadata, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stage event")
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal event metadata")
			}
		}
		events = append(events, e)
	}
	return events, eris.Wrap(rows.Err(), "postgres: list stage events iterate")
}

func (s *PostgresStore) LeadStageCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, pgLeadStageCounts)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: lead stage counts")
	}
	defer rows.Close()
	return scanCounts(rows, "postgres: lead stage counts")
}

func (s *PostgresStore) StageEntryCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, pgStageEntryCounts, since)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stage entry counts")
	}
	defer rows.Close()
	return scanCounts(rows, "postgres: stage entry counts")
}
