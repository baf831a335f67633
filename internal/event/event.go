// Package event defines the timestamped statements that flow between
// inference and memory.
package event

import (
	"github.com/patham9/YAN/internal/stamp"
	"github.com/patham9/YAN/internal/term"
	"github.com/patham9/YAN/internal/truth"
)

// Eternal marks an occurrence time that does not refer to any moment.
const Eternal = truth.Eternal

// Type is the kind of an event.
type Type uint8

const (
	// Deleted is the zero value: an empty concept slot, never queued.
	Deleted Type = iota
	Belief
	Goal
)

func (t Type) String() string {
	switch t {
	case Belief:
		return "belief"
	case Goal:
		return "goal"
	default:
		return "deleted"
	}
}

// Punctuation is the conventional sentence mark for the type.
func (t Type) Punctuation() string {
	switch t {
	case Belief:
		return "."
	case Goal:
		return "!"
	default:
		return "?"
	}
}

// Event is a belief or goal about a term, optionally at a point in time.
// Events are values: they change only by replacement.
type Event struct {
	Term           term.Term
	Type           Type
	Truth          truth.Truth
	Stamp          stamp.Stamp
	OccurrenceTime int64
	CreationTime   int64
}

// IsEternal reports whether the event holds regardless of time.
func (e Event) IsEternal() bool {
	return e.OccurrenceTime == Eternal
}

// Equal reports whether a and b are the same statement from the same evidence.
func (e Event) Equal(o Event) bool {
	return e.Type == o.Type &&
		e.OccurrenceTime == o.OccurrenceTime &&
		e.Truth.Equal(o.Truth) &&
		term.Equal(e.Term, o.Term) &&
		stamp.Equal(e.Stamp, o.Stamp)
}

// ConceptRef is a weak handle into the concept arena. The generation changes
// whenever the slot is handed to another term, so a stale handle can be
// detected. The zero value refers to no concept.
type ConceptRef struct {
	Slot int32
	Gen  uint32
}

// IsZero reports whether the handle refers to nothing.
func (r ConceptRef) IsZero() bool {
	return r.Gen == 0
}

// Implication is a learned <antecedent =/> consequent> with the expected
// delay between the two.
type Implication struct {
	Term                 term.Term
	Truth                truth.Truth
	Stamp                stamp.Stamp
	OccurrenceTimeOffset float64
	// Source is the concept holding the antecedent side; valid only while that
	// slot still stores SourceConceptTerm.
	Source            ConceptRef
	SourceConceptTerm term.Term
	CreationTime      int64
}
