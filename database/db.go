package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"datachat/chart"
	"datachat/web/types"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(connStr string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            last_active TIMESTAMPTZ DEFAULT NOW(),
            title TEXT DEFAULT '',
            is_active BOOLEAN DEFAULT TRUE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active DESC)`,
		`CREATE TABLE IF NOT EXISTS turns (
            id UUID PRIMARY KEY,
            session_id UUID REFERENCES sessions(id) ON DELETE CASCADE,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            rendered TEXT DEFAULT '',
            follow_ups TEXT[] DEFAULT '{}'::TEXT[],
            chart JSONB,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session_created_at ON turns(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS session_state (
            session_id UUID PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
            last_chart JSONB,
            updated_at TIMESTAMPTZ DEFAULT NOW()
        )`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context) (uuid.UUID, error) {
	sessionID := uuid.New()
	now := time.Now()
	initialTitle := fmt.Sprintf("Chat from %s", now.Format("January 2, 2006"))

	query := `
        INSERT INTO sessions (id, created_at, last_active, title, is_active)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := s.DB.ExecContext(ctx, query, sessionID, now, now, initialTitle, true)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sessionID, nil
}

func (s *PostgresStore) GetSessions(ctx context.Context) ([]types.Session, error) {
	query := `
		SELECT id, created_at, last_active, title, is_active
		FROM sessions
		WHERE is_active = true
		ORDER BY last_active DESC
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []types.Session
	for rows.Next() {
		var sess types.Session
		if err := rows.Scan(&sess.ID, &sess.CreatedAt, &sess.LastActive, &sess.Title, &sess.IsActive); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *PostgresStore) UpdateSessionTitle(ctx context.Context, sessionID uuid.UUID, title string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE sessions SET title = $1 WHERE id = $2`, title, sessionID)
	return err
}

// CreateTurn persists one conversation turn together with its reply extras
// (rendered HTML, follow-up suggestions and an optional chart spec).
func (s *PostgresStore) CreateTurn(ctx context.Context, turn types.Turn, rendered string, followUps []string, spec *chart.Spec) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	turnUUID, err := uuid.Parse(turn.ID)
	if err != nil {
		return fmt.Errorf("invalid turn ID: %w", err)
	}
	sessionUUID, err := uuid.Parse(turn.SessionID)
	if err != nil {
		return fmt.Errorf("invalid session ID in turn: %w", err)
	}

	var chartJSON any
	if spec != nil {
		raw, err := json.Marshal(spec)
		if err != nil {
			return fmt.Errorf("marshal chart spec: %w", err)
		}
		chartJSON = raw
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO turns (id, session_id, role, content, rendered, follow_ups, chart, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, query, turnUUID, sessionUUID, turn.Role, turn.Content,
		rendered, pq.Array(followUps), chartJSON, createdAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `UPDATE sessions SET last_active = $1 WHERE id = $2`, time.Now(), sessionUUID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetTurnsBySession returns a session's turns in append order with their
// original timestamps.
func (s *PostgresStore) GetTurnsBySession(ctx context.Context, sessionID uuid.UUID) ([]types.Turn, error) {
	query := `
		SELECT id, session_id, role, content, created_at FROM turns
		WHERE session_id = $1 ORDER BY created_at ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []types.Turn
	for rows.Next() {
		var turn types.Turn
		var sessionUUID uuid.UUID
		if err := rows.Scan(&turn.ID, &sessionUUID, &turn.Role, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, err
		}
		turn.SessionID = sessionUUID.String()
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// SetLastChart caches the most recent chart spec for a session.
func (s *PostgresStore) SetLastChart(ctx context.Context, sessionID uuid.UUID, spec *chart.Spec) error {
	raw, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal chart spec: %w", err)
	}
	query := `
		INSERT INTO session_state (session_id, last_chart, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id) DO UPDATE SET last_chart = $2, updated_at = NOW()
	`
	_, err = s.DB.ExecContext(ctx, query, sessionID, raw)
	return err
}

// GetLastChart returns the cached chart spec for a session, or nil when
// none has been stored.
func (s *PostgresStore) GetLastChart(ctx context.Context, sessionID uuid.UUID) (*chart.Spec, error) {
	var raw []byte
	err := s.DB.QueryRowContext(ctx, `SELECT last_chart FROM session_state WHERE session_id = $1`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var spec chart.Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal cached chart: %w", err)
	}
	return &spec, nil
}

// ClearSession deletes a session's turns and cached chart but keeps the
// session row, matching an explicit user reset.
func (s *PostgresStore) ClearSession(ctx context.Context, sessionID uuid.UUID) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_state WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeactivateStaleSessions retires sessions whose last activity is older
// than the retention age. Returns the retired session ids so in-memory
// state can be dropped alongside.
func (s *PostgresStore) DeactivateStaleSessions(ctx context.Context, olderThan time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE sessions SET is_active = false
		WHERE is_active = true AND last_active < $1
		RETURNING id
	`
	rows, err := s.DB.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
