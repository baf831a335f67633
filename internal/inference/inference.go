// Package inference holds the stateless derivation rules. Each rule merges the
// premises' stamps, keeps the latest creation time and computes the truth and
// occurrence time of its conclusion.
package inference

import (
	"fmt"

	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/narsese"
	"github.com/patham9/YAN/internal/stamp"
	"github.com/patham9/YAN/internal/term"
	"github.com/patham9/YAN/internal/truth"
)

// Rules applies the derivation rules with a fixed calculus.
type Rules struct {
	Truth truth.Calculus
	Vocab *narsese.Vocabulary
}

// New returns rules over the given calculus and vocabulary.
func New(calc truth.Calculus, vocab *narsese.Vocabulary) *Rules {
	return &Rules{Truth: calc, Vocab: vocab}
}

func require(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("inference: "+format, args...))
	}
}

func weightedAverage(a1, a2, w1, w2 float64) float64 {
	return (a1*w1 + a2*w2) / (w1 + w2)
}

// BeliefIntersection: {a., b., after(b,a)} |- (a &/ b).
func (r *Rules) BeliefIntersection(a, b event.Event) event.Event {
	require(b.OccurrenceTime >= a.OccurrenceTime, "after(b,a) violated in BeliefIntersection (%d < %d)", b.OccurrenceTime, a.OccurrenceTime)
	truthA := r.Truth.Projection(a.Truth, a.OccurrenceTime, b.OccurrenceTime)
	return event.Event{
		Term:           term.Sequence(a.Term, b.Term),
		Type:           event.Belief,
		Truth:          r.Truth.Intersection(truthA, b.Truth),
		Stamp:          stamp.Merge(a.Stamp, b.Stamp),
		OccurrenceTime: b.OccurrenceTime,
		CreationTime:   max(a.CreationTime, b.CreationTime),
	}
}

// BeliefInduction: {a., b., after(b,a)} |- <a =/> b>.
func (r *Rules) BeliefInduction(a, b event.Event) event.Implication {
	require(b.OccurrenceTime > a.OccurrenceTime, "after(b,a) violated in BeliefInduction (%d <= %d)", b.OccurrenceTime, a.OccurrenceTime)
	truthA := r.Truth.Projection(a.Truth, a.OccurrenceTime, b.OccurrenceTime)
	return event.Implication{
		Term:                 term.Implication(a.Term, b.Term),
		Truth:                r.Truth.Eternalize(r.Truth.Induction(truthA, b.Truth)),
		Stamp:                stamp.Merge(a.Stamp, b.Stamp),
		OccurrenceTimeOffset: float64(b.OccurrenceTime - a.OccurrenceTime),
		CreationTime:         max(a.CreationTime, b.CreationTime),
	}
}

// EventRevision: {a., a.} |- a. (and likewise for goals), keeping a's term and
// type and b's occurrence time.
func (r *Rules) EventRevision(a, b event.Event) event.Event {
	truthA := r.Truth.Projection(a.Truth, a.OccurrenceTime, b.OccurrenceTime)
	return event.Event{
		Term:           a.Term,
		Type:           a.Type,
		Truth:          r.Truth.Revision(truthA, b.Truth),
		Stamp:          stamp.Merge(a.Stamp, b.Stamp),
		OccurrenceTime: b.OccurrenceTime,
		CreationTime:   max(a.CreationTime, b.CreationTime),
	}
}

// ImplicationRevision: {<a =/> b>., <a =/> b>.} |- <a =/> b>. The time offset
// becomes the evidence-weighted average of both offsets.
func (r *Rules) ImplicationRevision(a, b event.Implication) event.Implication {
	offset := weightedAverage(a.OccurrenceTimeOffset, b.OccurrenceTimeOffset,
		r.Truth.C2W(a.Truth.Confidence), r.Truth.C2W(b.Truth.Confidence))
	return event.Implication{
		Term:                 a.Term,
		Truth:                r.Truth.Revision(a.Truth, b.Truth),
		Stamp:                stamp.Merge(a.Stamp, b.Stamp),
		OccurrenceTimeOffset: offset,
		Source:               a.Source,
		SourceConceptTerm:    a.SourceConceptTerm,
		CreationTime:         max(a.CreationTime, b.CreationTime),
	}
}

// GoalDeduction: {b!, <a =/> b>.} |- a!, with any trailing operation removed
// from a and the goal placed back in time by the implication's offset.
func (r *Rules) GoalDeduction(component event.Event, compound event.Implication) event.Event {
	require(narsese.CopulaEquals(compound.Term.Root(), "$"), "not a valid implication term in GoalDeduction")
	precondition := term.ExtractSubterm(compound.Term, 1)
	return event.Event{
		Term:           r.Vocab.PreconditionWithoutOp(precondition),
		Type:           event.Goal,
		Truth:          r.Truth.Deduction(compound.Truth, component.Truth),
		Stamp:          stamp.Merge(component.Stamp, compound.Stamp),
		OccurrenceTime: int64(float64(component.OccurrenceTime) - compound.OccurrenceTimeOffset),
		CreationTime:   max(component.CreationTime, compound.CreationTime),
	}
}

// BeliefDeduction: {a., <a =/> b>.} |- b.
func (r *Rules) BeliefDeduction(component event.Event, compound event.Implication) event.Event {
	require(narsese.CopulaEquals(compound.Term.Root(), "$"), "not a valid implication term in BeliefDeduction")
	occurrence := event.Eternal
	if !component.IsEternal() {
		occurrence = int64(float64(component.OccurrenceTime) + compound.OccurrenceTimeOffset)
	}
	return event.Event{
		Term:           term.WithHash(term.ExtractSubterm(compound.Term, 2)),
		Type:           event.Belief,
		Truth:          r.Truth.Deduction(compound.Truth, component.Truth),
		Stamp:          stamp.Merge(component.Stamp, compound.Stamp),
		OccurrenceTime: occurrence,
		CreationTime:   max(component.CreationTime, compound.CreationTime),
	}
}

// EventUpdate returns e projected to now.
func (r *Rules) EventUpdate(e event.Event, now int64) event.Event {
	e.Truth = r.Truth.Projection(e.Truth, e.OccurrenceTime, now)
	e.OccurrenceTime = now
	return e
}

// OperationDeduction: {(a &/ op)!, a.} |- op!: the goal of executing the
// compound's action now. The conclusion keeps the compound's term and time.
func (r *Rules) OperationDeduction(compound, component event.Event, now int64) event.Event {
	compoundNow := r.EventUpdate(compound, now)
	componentNow := r.EventUpdate(component, now)
	return event.Event{
		Term:           compound.Term,
		Type:           event.Goal,
		Truth:          r.Truth.Deduction(compoundNow.Truth, componentNow.Truth),
		Stamp:          stamp.Merge(component.Stamp, compound.Stamp),
		OccurrenceTime: compound.OccurrenceTime,
		CreationTime:   max(component.CreationTime, compound.CreationTime),
	}
}

// IncreasedActionPotential merges incoming into the live slot holding existing.
// An empty slot takes incoming. Overlapping evidence or differing terms lead to
// choice by projected confidence; otherwise the two are revised, falling back
// to choice when revision would lower the existing confidence. revised is true
// only when the revised event is returned.
func (r *Rules) IncreasedActionPotential(existing, incoming event.Event, now int64) (result event.Event, revised bool) {
	if existing.Type == event.Deleted {
		return incoming, false
	}
	confExisting := r.EventUpdate(existing, now).Truth.Confidence
	confIncoming := r.EventUpdate(incoming, now).Truth.Confidence

	if stamp.Overlaps(incoming.Stamp, existing.Stamp) || !term.Equal(existing.Term, incoming.Term) {
		if confIncoming > confExisting {
			return incoming, false
		}
		return existing, false
	}

	revisedSpike := r.EventRevision(existing, incoming)
	if revisedSpike.Truth.Confidence >= existing.Truth.Confidence {
		return revisedSpike, true
	}
	if confIncoming > confExisting {
		return incoming, false
	}
	return existing, false
}
