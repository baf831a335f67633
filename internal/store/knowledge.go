package store

import (
	"fmt"
	"time"
)

// maxTermText caps the rendered term stored per row.
const maxTermText = 4 * 1024

// Knowledge is one journal row: a statement the reasoner admitted, derived or
// revised. OccurrenceTime is nil for eternal statements.
type Knowledge struct {
	ID             int64
	RunID          string
	Kind           string
	Term           string
	Punctuation    string
	Frequency      float64
	Confidence     float64
	OccurrenceTime *int64
	Priority       float64
	LoggedAt       int64
}

const knowledgeColumns = `id, run_id, kind, term, punctuation, frequency, confidence, occurrence_time, priority, logged_at`

// AddKnowledge appends a row to the journal and bumps the run's record count.
func (db *DB) AddKnowledge(k Knowledge) error {
	if len(k.Term) > maxTermText {
		k.Term = k.Term[:maxTermText]
	}
	if k.LoggedAt == 0 {
		k.LoggedAt = time.Now().UnixMilli()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("add knowledge: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO knowledge (run_id, kind, term, punctuation, frequency, confidence, occurrence_time, priority, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, k.RunID, k.Kind, k.Term, k.Punctuation, k.Frequency, k.Confidence, k.OccurrenceTime, k.Priority, k.LoggedAt); err != nil {
		tx.Rollback()
		return fmt.Errorf("add knowledge: %w", err)
	}
	if _, err := tx.Exec(`UPDATE runs SET record_count = record_count + 1 WHERE run_id = ?`, k.RunID); err != nil {
		tx.Rollback()
		return fmt.Errorf("bump record count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit knowledge: %w", err)
	}
	return nil
}

func (db *DB) queryKnowledge(query string, args ...any) ([]Knowledge, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Knowledge
	for rows.Next() {
		var k Knowledge
		if err := rows.Scan(&k.ID, &k.RunID, &k.Kind, &k.Term, &k.Punctuation, &k.Frequency, &k.Confidence, &k.OccurrenceTime, &k.Priority, &k.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// RunKnowledge returns every row of a run in insertion order.
func (db *DB) RunKnowledge(runID string) ([]Knowledge, error) {
	out, err := db.queryKnowledge(`SELECT `+knowledgeColumns+` FROM knowledge WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("get run knowledge: %w", err)
	}
	return out, nil
}

// RecentKnowledge returns the most recent rows across all runs, newest first.
func (db *DB) RecentKnowledge(limit int) ([]Knowledge, error) {
	out, err := db.queryKnowledge(`SELECT `+knowledgeColumns+` FROM knowledge ORDER BY logged_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent knowledge: %w", err)
	}
	return out, nil
}

// CountByKind returns the number of rows of a run per kind.
func (db *DB) CountByKind(runID string) (map[string]int, error) {
	rows, err := db.Query(`SELECT kind, COUNT(*) FROM knowledge WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return nil, fmt.Errorf("count knowledge: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}
