package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one reasoner process writing to the journal.
type Run struct {
	ID          int64
	RunID       string
	Label       string
	StartedAt   int64
	EndedAt     *int64
	Status      string
	LastCycle   int64
	RecordCount int
}

const runColumns = `id, run_id, COALESCE(label, ''), started_at, ended_at, status, last_cycle, record_count`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.RunID, &r.Label, &r.StartedAt, &r.EndedAt, &r.Status, &r.LastCycle, &r.RecordCount); err != nil {
		return nil, err
	}
	return &r, nil
}

// StartRun opens a new active run with a fresh id.
func (db *DB) StartRun(label string) (*Run, error) {
	now := time.Now().UnixMilli()
	runID := uuid.NewString()
	result, err := db.Exec(`
		INSERT INTO runs (run_id, label, started_at, status)
		VALUES (?, ?, ?, 'active')
	`, runID, label, now)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, _ := result.LastInsertId()
	return &Run{
		ID:        id,
		RunID:     runID,
		Label:     label,
		StartedAt: now,
		Status:    "active",
	}, nil
}

// GetRun returns a run by its run_id, or nil when it does not exist.
func (db *DB) GetRun(runID string) (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// FinishRun closes an active run with the given status and the logical time
// the reasoner had reached.
func (db *DB) FinishRun(runID, status string, lastCycle int64) error {
	if status != "completed" && status != "failed" {
		return fmt.Errorf("finish run: invalid status %q", status)
	}
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE runs SET status = ?, ended_at = ?, last_cycle = ?
		WHERE run_id = ? AND status = 'active'
	`, status, now, lastCycle, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no active run found for %s", runID)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
