package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps one row per conversation identity. The record is
// written whole on every turn, so readers always see a consistent
// step/facts pair.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS chat_sessions (
    id TEXT PRIMARY KEY,
    step TEXT NOT NULL,
    facts JSONB NOT NULL DEFAULT '{}'::jsonb,
    language TEXT NOT NULL DEFAULT '',
    lang_inferred BOOLEAN NOT NULL DEFAULT FALSE,
    generated_at TIMESTAMP WITH TIME ZONE,
    outcome_asked BOOLEAN NOT NULL DEFAULT FALSE,
    outcome TEXT NOT NULL DEFAULT '',
    last_artifact_id TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_chat_sessions_outcome ON chat_sessions(step, outcome_asked, generated_at);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, fmt.Errorf("id is required")
	}
	if err := s.ensureSchema(); err != nil {
		return Session{}, err
	}
	var (
		sess        Session
		facts       []byte
		generatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT step, facts, language, lang_inferred, generated_at, outcome_asked, outcome, last_artifact_id, updated_at
FROM chat_sessions WHERE id=$1`, id).Scan(
		&sess.Step, &facts, &sess.Language, &sess.LangInferred,
		&generatedAt, &sess.OutcomeAsked, &sess.Outcome, &sess.LastArtifactID, &sess.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if generatedAt.Valid {
		t := generatedAt.Time
		sess.GeneratedAt = &t
	}
	sess.Facts = map[string]string{}
	if len(facts) > 0 {
		if err := json.Unmarshal(facts, &sess.Facts); err != nil {
			return Session{}, fmt.Errorf("decode facts: %w", err)
		}
	}
	return sess, nil
}

func (s *PostgresStore) Put(ctx context.Context, id string, sess Session) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	facts, err := json.Marshal(sess.Facts)
	if err != nil {
		return fmt.Errorf("encode facts: %w", err)
	}
	var generatedAt sql.NullTime
	if sess.GeneratedAt != nil {
		generatedAt = sql.NullTime{Time: *sess.GeneratedAt, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO chat_sessions (id, step, facts, language, lang_inferred, generated_at, outcome_asked, outcome, last_artifact_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    step=EXCLUDED.step, facts=EXCLUDED.facts, language=EXCLUDED.language,
    lang_inferred=EXCLUDED.lang_inferred, generated_at=EXCLUDED.generated_at,
    outcome_asked=EXCLUDED.outcome_asked, outcome=EXCLUDED.outcome,
    last_artifact_id=EXCLUDED.last_artifact_id, updated_at=EXCLUDED.updated_at
`, id, sess.Step, facts, sess.Language, sess.LangInferred, generatedAt,
		sess.OutcomeAsked, sess.Outcome, sess.LastArtifactID, time.Now())
	return err
}

func (s *PostgresStore) ListOutcomeDue(ctx context.Context, before time.Time) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id FROM chat_sessions
WHERE step=$1 AND outcome_asked=FALSE AND generated_at IS NOT NULL AND generated_at < $2
ORDER BY generated_at`, StepCompleted, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
