package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/funnel-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	data            TEXT NOT NULL,
	status          TEXT,
	stage_canonical TEXT,
	outcome         TEXT,
	owner_user_id   TEXT,
	sla_due_at      DATETIME,
	next_action_at  DATETIME,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS opportunities (
	id              TEXT PRIMARY KEY,
	lead_id         TEXT,
	data            TEXT NOT NULL,
	stage_canonical TEXT,
	status          TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
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
	metadata    TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_stage_canonical ON leads(stage_canonical);
CREATE INDEX IF NOT EXISTS idx_leads_owner ON leads(owner_user_id);
CREATE INDEX IF NOT EXISTS idx_leads_sla_due ON leads(sla_due_at);
CREATE INDEX IF NOT EXISTS idx_opportunities_lead_id ON opportunities(lead_id);
CREATE INDEX IF NOT EXISTS idx_stage_events_entity ON stage_events(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_stage_events_created_at ON stage_events(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	prepareLead(lead)
	data, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, data, status, stage_canonical, outcome, owner_user_id, sla_due_at, next_action_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, string(data), string(lead.Status), lead.StageCanonical, string(lead.Outcome),
		lead.OwnerUserID, lead.SLADueAt, lead.NextActionAt, lead.CreatedAt, lead.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert lead %s", lead.ID)
}

func (s *SQLiteStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	res, err := s.db.ExecContext(ctx, sqliteUpdateLead,
		string(data), string(lead.Status), lead.StageCanonical, string(lead.Outcome),
		lead.OwnerUserID, lead.SLADueAt, lead.NextActionAt, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", lead.ID)
	}
	return checkRowsAffected(res, "lead", lead.ID)
}

const sqliteUpdateLead = `UPDATE leads
	 SET data = ?, status = ?, stage_canonical = ?, outcome = ?, owner_user_id = ?, sla_due_at = ?, next_action_at = ?, updated_at = ?
	 WHERE id = ?`

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM leads WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}

	var lead model.Lead
	if err := json.Unmarshal([]byte(data), &lead); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal lead %s", id)
	}
	return &lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT data FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.StageCanonical != "" {
		query += ` AND stage_canonical = ?`
		args = append(args, filter.StageCanonical)
	}
	if filter.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, string(filter.Outcome))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal([]byte(data), &lead); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) CreateOpportunity(ctx context.Context, opp *model.Opportunity) error {
	prepareOpportunity(opp)
	data, err := json.Marshal(opp)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal opportunity")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO opportunities (id, lead_id, data, stage_canonical, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		opp.ID, opp.LeadID, string(data), opp.StageCanonical, string(opp.Status), opp.CreatedAt, opp.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert opportunity %s", opp.ID)
}

func (s *SQLiteStore) SaveOpportunity(ctx context.Context, opp *model.Opportunity) error {
	opp.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(opp)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal opportunity")
	}

	res, err := s.db.ExecContext(ctx, sqliteUpdateOpportunity,
		string(data), opp.StageCanonical, string(opp.Status), opp.UpdatedAt, opp.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update opportunity %s", opp.ID)
	}
	return checkRowsAffected(res, "opportunity", opp.ID)
}

const sqliteUpdateOpportunity = `UPDATE opportunities
	 SET data = ?, stage_canonical = ?, status = ?, updated_at = ?
	 WHERE id = ?`

func (s *SQLiteStore) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM opportunities WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "opportunity %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get opportunity %s", id)
	}

	var opp model.Opportunity
	if err := json.Unmarshal([]byte(data), &opp); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal opportunity %s", id)
	}
	return &opp, nil
}

func (s *SQLiteStore) AppendStageEvent(ctx context.Context, event *model.StageEvent) error {
	prepareEvent(event)
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal event metadata")
	}

	_, err = s.db.ExecContext(ctx, sqliteInsertEvent,
		event.ID, string(event.EntityType), event.EntityID, event.FromStage, event.ToStage,
		event.Reason, event.Actor, string(event.Source), string(metadata), event.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert stage event %s", event.ID)
}

const sqliteInsertEvent = `INSERT INTO stage_events (id, entity_type, entity_id, from_stage, to_stage, reason, actor, source, metadata, created_at)
	 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) CommitLeadTransition(ctx context.Context, lead *model.Lead, event *model.StageEvent) error {
	lead.UpdatedAt = time.Now().UTC()
	prepareEvent(event)

	data, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal event metadata")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transition")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, sqliteUpdateLead,
		string(data), string(lead.Status), lead.StageCanonical, string(lead.Outcome),
		lead.OwnerUserID, lead.SLADueAt, lead.NextActionAt, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: transition lead %s", lead.ID)
	}
	if err := checkRowsAffected(res, "lead", lead.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, sqliteInsertEvent,
		event.ID, string(event.EntityType), event.EntityID, event.FromStage, event.ToStage,
		event.Reason, event.Actor, string(event.Source), string(metadata), event.CreatedAt,
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert transition event %s", event.ID)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit transition")
}

func (s *SQLiteStore) CommitOpportunityTransition(ctx context.Context, opp *model.Opportunity, event *model.StageEvent) error {
	opp.UpdatedAt = time.Now().UTC()
	prepareEvent(event)

	data, err := json.Marshal(opp)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal opportunity")
	}
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal event metadata")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transition")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, sqliteUpdateOpportunity,
		string(data), opp.StageCanonical, string(opp.Status), opp.UpdatedAt, opp.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: transition opportunity %s", opp.ID)
	}
	if err := checkRowsAffected(res, "opportunity", opp.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, sqliteInsertEvent,
		event.ID, string(event.EntityType), event.EntityID, event.FromStage, event.ToStage,
		event.Reason, event.Actor, string(event.Source), string(metadata), event.CreatedAt,
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert transition event %s", event.ID)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit transition")
}

func (s *SQLiteStore) ListStageEvents(ctx context.Context, entityType model.EntityType, entityID string, limit int) ([]model.StageEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, from_stage, to_stage, reason, actor, source, metadata, created_at
		 FROM stage_events WHERE entity_type = ? AND entity_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		string(entityType), entityID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list stage events")
	}
	defer rows.Close()

	var events []model.StageEvent
	for rows.Next() {
		var e model.StageEvent
		var metadata sql.NullString
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.FromStage, &e.ToStage,
			&e.Reason, &e.Actor, &e.Source, &metadata, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stage event")
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal event metadata")
			}
		}
		events = append(events, e)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: list stage events iterate")
}

func (s *SQLiteStore) LeadStageCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lower(coalesce(nullif(stage_canonical, ''), 'new')), count(*) FROM leads GROUP BY 1`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: lead stage counts")
	}
	defer rows.Close()
	return scanCounts(rows, "sqlite: lead stage counts")
}

func (s *SQLiteStore) StageEntryCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lower(to_stage), count(*) FROM stage_events WHERE created_at >= ? GROUP BY 1`,
		since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stage entry counts")
	}
	defer rows.Close()
	return scanCounts(rows, "sqlite: stage entry counts")
}

// helpers

func prepareLead(lead *model.Lead) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	if lead.UpdatedAt.IsZero() {
		lead.UpdatedAt = now
	}
}

func prepareOpportunity(opp *model.Opportunity) {
	if opp.ID == "" {
		opp.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = now
	}
	if opp.UpdatedAt.IsZero() {
		opp.UpdatedAt = now
	}
}

func prepareEvent(event *model.StageEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type countRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCounts(rows countRows, label string) (map[string]int, error) {
	counts := make(map[string]int)
	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, eris.Wrapf(err, "%s: scan", label)
		}
		counts[stage] = count
	}
	return counts, eris.Wrapf(rows.Err(), "%s: iterate", label)
}
