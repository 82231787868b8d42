package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Ensure PostgresJournal implements Journal.
var _ Journal = (*PostgresJournal)(nil)

// PostgresJournal stores edits in PostgreSQL.
type PostgresJournal struct {
	db *sql.DB
}

// NewPostgresJournal connects, pings and creates the edits table if needed.
func NewPostgresJournal(ctx context.Context, dsn string) (*PostgresJournal, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres DSN is required", ErrJournal)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrJournal, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrJournal, err)
	}

	j := &PostgresJournal{db: db}
	if err := j.initSchema(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema: %w", ErrJournal, err)
	}
	return j, nil
}

func (j *PostgresJournal) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS player_events_edits (
		id SERIAL PRIMARY KEY,
		run_id VARCHAR(64) NOT NULL,
		title VARCHAR(500) NOT NULL,
		old_hash CHAR(64) NOT NULL,
		new_hash CHAR(64) NOT NULL,
		summary VARCHAR(500) NOT NULL DEFAULT '',
		saved BOOLEAN NOT NULL,
		edited_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_player_events_edits_title ON player_events_edits(title);
	CREATE INDEX IF NOT EXISTS idx_player_events_edits_run ON player_events_edits(run_id);
	`
	_, err := j.db.ExecContext(ctx, query)
	return err
}

// Record inserts one edit row.
func (j *PostgresJournal) Record(ctx context.Context, e Edit) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO player_events_edits (run_id, title, old_hash, new_hash, summary, saved, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.RunID, e.Title, e.OldHash, e.NewHash, e.Summary, e.Saved, e.At)
	if err != nil {
		return fmt.Errorf("%w: insert %q: %w", ErrJournal, e.Title, err)
	}
	return nil
}

// Close releases the connection pool.
func (j *PostgresJournal) Close() error {
	return j.db.Close()
}

// Hash fingerprints page text for the journal.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
