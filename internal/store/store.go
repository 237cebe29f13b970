// Package store handles SQLite persistence of session summaries.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/recitar-dev/recitar/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			constant TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			digits INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			pauses INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			auto_ended INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_tokens (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			symbol TEXT NOT NULL,
			correct INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_constant_started ON sessions(constant, started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const (
	tokenKindDigit = "digit"
	tokenKindPause = "pause"
)

// Append stores a finalized summary with its transcript in token order.
func (s *Store) Append(ctx context.Context, summary model.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	auto := 0
	if summary.Auto {
		auto = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, constant, started_at, duration_ms, digits, correct, wrong, pauses, accuracy, auto_ended)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		summary.Constant,
		summary.StartedAt.Format(time.RFC3339Nano),
		summary.Duration.Milliseconds(),
		summary.Digits,
		summary.Correct,
		summary.Wrong,
		summary.Pauses,
		summary.Accuracy,
		auto,
	)
	if err != nil {
		return err
	}

	if len(summary.Transcript) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_tokens (session_id, seq, kind, symbol, correct)
			 VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, tok := range summary.Transcript {
			kind := tokenKindDigit
			symbol := string(tok.Symbol)
			correct := 0
			if tok.Correct {
				correct = 1
			}
			if tok.Kind == model.TokenPause {
				kind = tokenKindPause
				symbol = ""
				correct = 0
			}
			if _, err = stmt.ExecContext(ctx, summary.ID, i, kind, symbol, correct); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListAll returns session aggregates for a constant, newest first.
func (s *Store) ListAll(ctx context.Context, constant string) ([]model.SessionAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, constant, started_at, duration_ms, digits, correct, wrong, pauses, accuracy
		 FROM sessions
		 WHERE (? = '' OR constant = ?)
		 ORDER BY started_at DESC, id DESC`, constant, constant)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

// ListAggregates returns up to lastN sessions for a constant, oldest
// first, for learning curves. lastN <= 0 means all sessions.
func (s *Store) ListAggregates(ctx context.Context, constant string, lastN int) ([]model.SessionAggregate, error) {
	limit := lastN
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, constant, started_at, duration_ms, digits, correct, wrong, pauses, accuracy
		 FROM (
			SELECT * FROM sessions
			WHERE (? = '' OR constant = ?)
			ORDER BY started_at DESC, id DESC
			LIMIT ?
		 )
		 ORDER BY started_at ASC, id ASC`, constant, constant, limit)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

func scanAggregates(rows *sql.Rows) ([]model.SessionAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var startedAt string
		if err := rows.Scan(&agg.ID, &agg.Constant, &startedAt, &agg.DurationMs, &agg.Digits, &agg.Correct, &agg.Wrong, &agg.Pauses, &agg.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		agg.StartedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetTranscript loads the ordered transcript of one session.
func (s *Store) GetTranscript(ctx context.Context, sessionID string) ([]model.Token, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, symbol, correct FROM session_tokens
		 WHERE session_id = ?
		 ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var tokens []model.Token
	for rows.Next() {
		var kind, symbol string
		var correct int
		if err := rows.Scan(&kind, &symbol, &correct); err != nil {
			return nil, err
		}
		switch kind {
		case tokenKindPause:
			tokens = append(tokens, model.PauseToken())
		case tokenKindDigit:
			var sym byte
			if symbol != "" {
				sym = symbol[0]
			}
			tokens = append(tokens, model.DigitToken(sym, correct != 0))
		default:
			return nil, fmt.Errorf("unknown token kind %q", kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteAt removes the session at the given index of the newest-first
// list for a constant.
func (s *Store) DeleteAt(ctx context.Context, constant string, index int) error {
	if index < 0 {
		return fmt.Errorf("index must be >= 0")
	}
	sessions, err := s.ListAll(ctx, constant)
	if err != nil {
		return err
	}
	if index >= len(sessions) {
		return fmt.Errorf("index %d out of range (have %d sessions)", index, len(sessions))
	}
	return s.deleteByID(ctx, sessions[index].ID)
}

func (s *Store) deleteByID(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM session_tokens WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// ClearAll removes every session (and transcript) for a constant.
func (s *Store) ClearAll(ctx context.Context, constant string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM session_tokens WHERE session_id IN (SELECT id FROM sessions WHERE constant = ?)`, constant); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE constant = ?`, constant); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// GetDigitAggregates aggregates per-symbol grading outcomes over the most
// recent window sessions of a constant.
func (s *Store) GetDigitAggregates(ctx context.Context, constant string, window int) ([]model.DigitAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR constant = ?)
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	)
	SELECT t.symbol,
		SUM(CASE WHEN t.correct = 1 THEN 1 ELSE 0 END) AS correct,
		SUM(CASE WHEN t.correct = 0 THEN 1 ELSE 0 END) AS wrong
	FROM session_tokens t
	JOIN recent_sessions r ON r.id = t.session_id
	WHERE t.kind = 'digit'
	GROUP BY t.symbol
	ORDER BY t.symbol ASC`

	rows, err := s.db.QueryContext(ctx, query, constant, constant, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.DigitAggregate
	for rows.Next() {
		var agg model.DigitAggregate
		if err := rows.Scan(&agg.Symbol, &agg.Correct, &agg.Wrong); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
