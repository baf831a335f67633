package engine

import (
	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/memory"
)

// EventView is the JSON form of an event. OccurrenceTime is nil for eternal
// events.
type EventView struct {
	Term           string  `json:"term"`
	Punctuation    string  `json:"punctuation"`
	Frequency      float64 `json:"frequency"`
	Confidence     float64 `json:"confidence"`
	OccurrenceTime *int64  `json:"occurrence_time,omitempty"`
	Stamp          string  `json:"stamp"`
}

// ImplicationView is the JSON form of a stored implication.
type ImplicationView struct {
	Term       string  `json:"term"`
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
	Offset     float64 `json:"offset"`
	Operation  int     `json:"operation,omitempty"`
}

// ConceptView is the JSON form of a concept.
type ConceptView struct {
	ID              int64             `json:"id"`
	Term            string            `json:"term"`
	Priority        float64           `json:"priority"`
	UseCount        int64             `json:"use_count"`
	LastUsed        int64             `json:"last_used"`
	Belief          *EventView        `json:"belief,omitempty"`
	BeliefSpike     *EventView        `json:"belief_spike,omitempty"`
	PredictedBelief *EventView        `json:"predicted_belief,omitempty"`
	Preconditions   []ImplicationView `json:"preconditions,omitempty"`
	Postconditions  []ImplicationView `json:"postconditions,omitempty"`
}

// CyclingView is a queued belief with its priority.
type CyclingView struct {
	Event    EventView `json:"event"`
	Priority float64   `json:"priority"`
}

// Snapshot is a consistent read of the whole memory.
type Snapshot struct {
	Time     int64         `json:"time"`
	Concepts []ConceptView `json:"concepts"`
	Cycling  []CyclingView `json:"cycling"`
}

func (e *Engine) eventView(ev event.Event) EventView {
	v := EventView{
		Term:        e.vocab.Format(ev.Term),
		Punctuation: ev.Type.Punctuation(),
		Frequency:   ev.Truth.Frequency,
		Confidence:  ev.Truth.Confidence,
		Stamp:       ev.Stamp.String(),
	}
	if !ev.IsEternal() {
		at := ev.OccurrenceTime
		v.OccurrenceTime = &at
	}
	return v
}

func (e *Engine) optionalEventView(ev event.Event) *EventView {
	if ev.Type == event.Deleted {
		return nil
	}
	v := e.eventView(ev)
	return &v
}

func (e *Engine) implicationView(imp event.Implication, op int) ImplicationView {
	return ImplicationView{
		Term:       e.vocab.Format(imp.Term),
		Frequency:  imp.Truth.Frequency,
		Confidence: imp.Truth.Confidence,
		Offset:     imp.OccurrenceTimeOffset,
		Operation:  op,
	}
}

func (e *Engine) conceptView(c *memory.Concept) ConceptView {
	v := ConceptView{
		ID:              c.ID,
		Term:            e.vocab.Format(c.Term),
		Priority:        c.Priority,
		UseCount:        c.Usage.Count,
		LastUsed:        c.Usage.LastUsed,
		Belief:          e.optionalEventView(c.Belief),
		BeliefSpike:     e.optionalEventView(c.BeliefSpike),
		PredictedBelief: e.optionalEventView(c.PredictedBelief),
	}
	for op := range c.PreconditionBeliefs {
		for _, imp := range c.PreconditionBeliefs[op].Items() {
			v.Preconditions = append(v.Preconditions, e.implicationView(imp, op))
		}
	}
	for _, imp := range c.PostconditionBeliefs.Items() {
		v.Postconditions = append(v.Postconditions, e.implicationView(imp, 0))
	}
	return v
}

// Concepts returns the concepts, highest priority first. A non-empty atom
// restricts the result to concepts whose term contains that atom; an atom
// the vocabulary has never seen matches nothing.
func (e *Engine) Concepts(atom string) []ConceptView {
	e.mu.Lock()
	defer e.mu.Unlock()

	var concepts []*memory.Concept
	if atom == "" {
		concepts = e.mem.Concepts()
	} else if a, ok := e.vocab.Lookup(atom); ok {
		concepts = e.mem.ConceptsWithAtom(a)
	}
	out := make([]ConceptView, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, e.conceptView(c))
	}
	return out
}

// Concept returns the view of the concept of the term node, if present.
func (e *Engine) Concept(node any) (ConceptView, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.vocab.Build(node)
	if err != nil {
		return ConceptView{}, false, err
	}
	c, ok := e.mem.FindConcept(t)
	if !ok {
		return ConceptView{}, false, nil
	}
	return e.conceptView(c), true, nil
}

// CyclingEvents returns the queued beliefs, highest priority first.
func (e *Engine) CyclingEvents() []CyclingView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cyclingViews()
}

func (e *Engine) cyclingViews() []CyclingView {
	events := e.mem.CyclingEvents()
	out := make([]CyclingView, len(events))
	for i, ce := range events {
		out[i] = CyclingView{Event: e.eventView(ce.Event), Priority: ce.Priority}
	}
	return out
}

// ConceptCount returns the number of concepts in memory.
func (e *Engine) ConceptCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.mem.Concepts())
}

// Snapshot returns the time, all concepts and the cycling pool in one read.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	concepts := e.mem.Concepts()
	s := Snapshot{
		Time:     e.now,
		Concepts: make([]ConceptView, 0, len(concepts)),
		Cycling:  e.cyclingViews(),
	}
	for _, c := range concepts {
		s.Concepts = append(s.Concepts, e.conceptView(c))
	}
	return s
}

// Format renders an event for display.
func (e *Engine) Format(ev event.Event) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab.Format(ev.Term) + ev.Type.Punctuation()
}

// View renders an event as returned by Input or Infer.
func (e *Engine) View(ev event.Event) EventView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eventView(ev)
}

// ImplicationView renders an implication as returned by Infer.
func (e *Engine) ImplicationView(imp event.Implication) ImplicationView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.implicationView(imp, 0)
}
