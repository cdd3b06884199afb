// Package runs stores finished pipeline runs for reporting.
// Nothing in the pipeline reads the ledger back.
package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/utils"
	"github.com/rs/zerolog"
)

// Summary is one ledger row without the full result document
type Summary struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Backend        string        `json:"backend"`
	Shots          int           `json:"shots"`
	Digits         int           `json:"digits"`
	Radius         float64       `json:"radius"`
	Elapsed        time.Duration `json:"elapsed"`
	TopState       string        `json:"top_state"`
	TopProbability float64       `json:"top_probability"`
	SuccessRate    float64       `json:"success_rate"`
}

// Repository is the SQLite-backed run ledger
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a run repository on an already migrated database
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "runs").Logger(),
	}
}

// Save implements domain.RunRecorder. Saving the same id twice replaces the row.
func (r *Repository) Save(ctx context.Context, run domain.RunResult) error {
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}

	var topState string
	var topProb float64
	if len(run.Ranked) > 0 {
		topState = run.Ranked[0].BitString
		topProb = run.Ranked[0].Probability
	}

	done := utils.MeasureDBQuery("insert_run", r.log)
	res, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, started_at, backend, shots, digits, radius, elapsed_ms, top_state, top_probability, success_rate, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.Backend,
		run.Shots,
		run.Config.DecimalDigits,
		run.Config.InfluenceRadius,
		run.Elapsed.Milliseconds(),
		topState,
		topProb,
		run.SuccessRate,
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}
	n, _ := res.RowsAffected()
	done(n)
	return nil
}

// Get returns the full run document, or nil if the id is unknown
func (r *Repository) Get(ctx context.Context, id string) (*domain.RunResult, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT result FROM runs WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	var run domain.RunResult
	if err := json.Unmarshal([]byte(doc), &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	return &run, nil
}

// List returns the most recent runs first
func (r *Repository) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	done := utils.MeasureDBQuery("list_runs", r.log)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, backend, shots, digits, radius, elapsed_ms, top_state, top_probability, success_rate
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var startedMs, elapsedMs int64
		if err := rows.Scan(&s.ID, &startedMs, &s.Backend, &s.Shots, &s.Digits, &s.Radius,
			&elapsedMs, &s.TopState, &s.TopProbability, &s.SuccessRate); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.StartedAt = time.UnixMilli(startedMs).UTC()
		s.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	done(int64(len(out)))
	return out, nil
}

// DeleteBefore removes runs started before cutoff and returns how many were deleted
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
