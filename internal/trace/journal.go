package trace

import (
	"log"
	"sync/atomic"

	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/narsese"
	"github.com/patham9/YAN/internal/store"
)

// Journal appends records to the SQLite knowledge journal under one run.
// Write failures are logged and counted, never returned to memory.
type Journal struct {
	db       *store.DB
	runID    string
	vocab    *narsese.Vocabulary
	failures atomic.Int64
}

// NewJournal returns a sink writing rows for runID.
func NewJournal(db *store.DB, runID string, vocab *narsese.Vocabulary) *Journal {
	return &Journal{db: db, runID: runID, vocab: vocab}
}

func (j *Journal) Record(r Record) {
	k := store.Knowledge{
		RunID:       j.runID,
		Kind:        r.Kind.String(),
		Term:        j.vocab.Format(r.Term),
		Punctuation: r.Type.Punctuation(),
		Frequency:   r.Truth.Frequency,
		Confidence:  r.Truth.Confidence,
		Priority:    r.Priority,
	}
	if r.OccurrenceTime != event.Eternal {
		at := r.OccurrenceTime
		k.OccurrenceTime = &at
	}
	if err := j.db.AddKnowledge(k); err != nil {
		if j.failures.Add(1) == 1 {
			log.Printf("journal: write failed: %v", err)
		}
	}
}

// Failures returns the number of rows that could not be written.
func (j *Journal) Failures() int64 {
	return j.failures.Load()
}
