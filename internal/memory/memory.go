// Package memory is the concept store and the admission pipeline. Input and
// derived events are filtered by priority and confidence, merged into the
// concept of their term and queued for later selection; conditional beliefs
// become implications stored with the concepts they connect.
//
// Memory is not safe for concurrent use. Callers serialize every method
// behind one writer.
package memory

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/patham9/YAN/internal/config"
	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/inference"
	"github.com/patham9/YAN/internal/narsese"
	"github.com/patham9/YAN/internal/term"
	"github.com/patham9/YAN/internal/trace"
)

// Admission describes where an event comes from.
type Admission struct {
	Input   bool // original input
	Derived bool // conclusion of an inference rule
	Readded bool // selected event returned to the pool
	Revised bool // belief produced by revision inside memory
}

// Operation is a registered operator. Memory only resolves operation ids;
// it never executes anything.
type Operation struct {
	Term term.Term
}

// Memory holds the concepts, the inverted atom index, the input FIFOs, the
// cycling pool and the operation table.
type Memory struct {
	cfg   config.MemoryConfig
	print config.PrintConfig
	rules *inference.Rules
	vocab *narsese.Vocabulary
	sink  trace.Sink

	concepts      *conceptStore
	index         *atomIndex
	beliefEvents  FIFO
	goalEvents    FIFO
	cycling       cyclingPool
	selected      []event.Event
	operations    []Operation
	nextConceptID int64
}

type pending struct {
	ev       event.Event
	priority float64
	adm      Admission
}

// New returns an empty memory. sink may be nil.
func New(cfg *config.Config, rules *inference.Rules, sink trace.Sink) *Memory {
	if sink == nil {
		sink = trace.Discard
	}
	m := cfg.Memory
	return &Memory{
		cfg:          m,
		print:        cfg.Print,
		rules:        rules,
		vocab:        rules.Vocab,
		sink:         sink,
		concepts:     newConceptStore(m.ConceptsMax, m.OperationsMax, m.TableSize),
		index:        newAtomIndex(m.ConceptsMax),
		beliefEvents: newFIFO(m.FIFOSize),
		goalEvents:   newFIFO(m.FIFOSize),
		cycling:      newCyclingPool(m.CyclingEventsMax),
		selected:     make([]event.Event, 0, m.EventSelections),
		operations:   make([]Operation, m.OperationsMax),
	}
}

// Conceptualize returns the concept of t, creating it with full priority when
// absent. It returns nil for operations and when no slot can be freed.
func (m *Memory) Conceptualize(t term.Term, now int64) *Concept {
	return m.conceptualize(t, now, 1)
}

func (m *Memory) conceptualize(t term.Term, now int64, priority float64) *Concept {
	if m.vocab.IsOperation(t) {
		return nil
	}
	t = term.WithHash(t)
	if i, ok := m.concepts.find(t); ok {
		return &m.concepts.slots[i].concept
	}
	c, evicted, wasEvicted, ok := m.concepts.claim(t, m.nextConceptID, priority)
	if !ok {
		return nil
	}
	if wasEvicted {
		m.index.remove(evicted.Term, evicted.Ref)
	}
	m.index.add(t, c.Ref)
	c.Usage = Usage{Count: 1, LastUsed: now}
	m.nextConceptID++
	return c
}

// FindConcept returns the concept of t if it is in memory.
func (m *Memory) FindConcept(t term.Term) (*Concept, bool) {
	i, ok := m.concepts.find(term.WithHash(t))
	if !ok {
		return nil, false
	}
	return &m.concepts.slots[i].concept, true
}

// Concept dereferences a handle; nil when the slot has since been reused.
func (m *Memory) Concept(ref event.ConceptRef) *Concept {
	return m.concepts.get(ref)
}

// Concepts returns every concept, highest priority first.
func (m *Memory) Concepts() []*Concept {
	out := make([]*Concept, 0, m.concepts.Len())
	m.concepts.each(func(c *Concept) { out = append(out, c) })
	slices.SortFunc(out, func(a, b *Concept) int {
		switch {
		case a.Priority > b.Priority:
			return -1
		case a.Priority < b.Priority:
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// ConceptsWithAtom returns the concepts whose term contains a.
func (m *Memory) ConceptsWithAtom(a term.Atom) []*Concept {
	var out []*Concept
	for _, ref := range m.index.refs(a) {
		if c := m.concepts.get(ref); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// AddInputEvent admits an input event with full priority.
func (m *Memory) AddInputEvent(ev event.Event, now int64) {
	m.AddEvent(ev, now, 1, Admission{Input: true})
}

// AddEvent runs the admission pipeline for ev. Rejections are silent. A
// revision of the concept's eternal belief is admitted again after ev's own
// effects have been applied.
func (m *Memory) AddEvent(ev event.Event, now int64, priority float64, adm Admission) {
	queue := []pending{{ev: ev, priority: priority, adm: adm}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if next, ok := m.admit(p.ev, now, p.priority, p.adm); ok {
			queue = append(queue, next)
		}
	}
}

func (m *Memory) adjustPriority(t term.Term, priority float64, adm Admission) float64 {
	if adm.Readded {
		return priority * m.cfg.EventDurabilityOnUsage
	}
	if !adm.Revised {
		return priority / math.Log2(1+float64(term.Complexity(t)))
	}
	return priority
}

func (m *Memory) admit(ev event.Event, now int64, priority float64, adm Admission) (pending, bool) {
	switch ev.Type {
	case event.Belief:
	case event.Goal:
		if ev.IsEternal() {
			panic("memory: eternal goals are not supported")
		}
	default:
		panic(fmt.Sprintf("memory: cannot admit event of type %v", ev.Type))
	}

	priority = m.adjustPriority(ev.Term, priority, adm)
	if ev.Truth.Confidence < m.cfg.MinConfidence || priority < m.cfg.MinPriority {
		return pending{}, false
	}

	if !ev.IsEternal() && adm.Input {
		if ev.Type == event.Belief {
			m.beliefEvents.Add(ev)
		} else {
			m.goalEvents.Add(ev)
			m.record(ev, priority, adm)
		}
	}
	if ev.Type != event.Belief {
		return pending{}, false
	}

	var next pending
	var revised bool
	if !adm.Readded {
		eternal := ev
		if !ev.IsEternal() {
			eternal.OccurrenceTime = event.Eternal
			eternal.Truth = m.rules.Truth.Eternalize(ev.Truth)
		}
		if ev.Term.Root() == term.ImplicationCopula {
			imp := event.Implication{
				Term:         ev.Term,
				Truth:        eternal.Truth,
				Stamp:        eternal.Stamp,
				CreationTime: now,
			}
			if m.storeImplication(imp, now, priority) {
				m.record(ev, priority, adm)
			}
			return pending{}, false
		}
		if c := m.conceptualize(ev.Term, now, priority); c != nil {
			if priority > c.Priority {
				c.Priority = priority
				m.concepts.fix(c)
			}
			if !ev.IsEternal() && ev.OccurrenceTime <= now {
				c.BeliefSpike, _ = m.rules.IncreasedActionPotential(c.BeliefSpike, ev, now)
				c.BeliefSpike.CreationTime = now
			}
			if !ev.IsEternal() && ev.OccurrenceTime > now {
				c.PredictedBelief, _ = m.rules.IncreasedActionPotential(c.PredictedBelief, ev, now)
				c.PredictedBelief.CreationTime = now
			}
			c.Belief, revised = m.rules.IncreasedActionPotential(c.Belief, eternal, now)
			c.Belief.CreationTime = now
			if revised {
				next = pending{ev: c.Belief, priority: priority, adm: Admission{Revised: true}}
			}
		}
	}
	m.addCyclingEvent(ev, priority, now)
	if adm.Input || !adm.Readded {
		m.record(ev, priority, adm)
	}
	return next, revised
}

// AddImplication stores an implication produced by induction. It passes the
// same priority and confidence floors as events and keeps its time offset.
// It reports whether the implication was stored.
func (m *Memory) AddImplication(imp event.Implication, now int64, priority float64, adm Admission) bool {
	if imp.Term.Root() != term.ImplicationCopula {
		panic("memory: AddImplication needs an implication term")
	}
	priority = m.adjustPriority(imp.Term, priority, adm)
	if imp.Truth.Confidence < m.cfg.MinConfidence || priority < m.cfg.MinPriority {
		return false
	}
	if !m.storeImplication(imp, now, priority) {
		return false
	}
	m.record(event.Event{
		Term:           imp.Term,
		Type:           event.Belief,
		Truth:          imp.Truth,
		OccurrenceTime: event.Eternal,
	}, priority, adm)
	return true
}

// storeImplication files imp under the concept of its consequent, in the
// table of the operation its antecedent ends with, and for implications
// without an operation also under the concept of its antecedent.
func (m *Memory) storeImplication(imp event.Implication, now int64, priority float64) bool {
	subject := term.WithHash(term.ExtractSubterm(imp.Term, 1))
	predicate := term.WithHash(term.ExtractSubterm(imp.Term, 2))

	target := m.conceptualize(predicate, now, priority)
	if target == nil {
		return false
	}
	targetRef := target.Ref

	opID := 0
	source := subject
	if subject.Root() == term.SequenceCopula {
		op := term.ExtractSubterm(subject, 2)
		if m.vocab.IsOperation(op) {
			opID = m.OperationID(op)
			if opID == 0 {
				return false
			}
			source = term.WithHash(term.ExtractSubterm(subject, 1))
		}
	}
	sc := m.conceptualize(source, now, priority)
	if sc == nil {
		return false
	}
	if target = m.concepts.get(targetRef); target == nil {
		return false
	}

	imp.Term = term.Implication(subject, predicate)
	imp.Source = sc.Ref
	imp.SourceConceptTerm = source
	target.PreconditionBeliefs[opID].AddAndRevise(imp, m.rules)
	if opID == 0 {
		sc.PostconditionBeliefs.AddAndRevise(imp, m.rules)
	}
	return true
}

// ImplicationValid reports whether imp's source concept still holds the
// antecedent it was stored with.
func (m *Memory) ImplicationValid(imp event.Implication) bool {
	c := m.concepts.get(imp.Source)
	return c != nil && term.Equal(imp.SourceConceptTerm, c.Term)
}

func (m *Memory) containsEvent(e event.Event) bool {
	if m.cycling.contains(e) {
		return true
	}
	for i := range m.selected {
		if m.selected[i].Equal(e) {
			return true
		}
	}
	return false
}

// addCyclingEvent queues a belief for selection unless it is already queued
// or selected, or its concept already holds a stronger belief. Eternal events
// are compared with the eternal belief as they are, temporal events with the
// spike after projecting both to now.
func (m *Memory) addCyclingEvent(e event.Event, priority float64, now int64) bool {
	if e.Type != event.Belief {
		panic("memory: only beliefs cycle")
	}
	if m.containsEvent(e) {
		return false
	}
	if c, ok := m.FindConcept(e.Term); ok && c.Belief.Type != event.Deleted {
		if e.IsEternal() {
			if c.Belief.Truth.Confidence > e.Truth.Confidence {
				return false
			}
		} else {
			spike := m.rules.Truth.Projection(c.BeliefSpike.Truth, c.BeliefSpike.OccurrenceTime, now)
			incoming := m.rules.Truth.Projection(e.Truth, e.OccurrenceTime, now)
			if spike.Confidence > incoming.Confidence {
				return false
			}
		}
	}
	return m.cycling.push(e, priority)
}

func (m *Memory) record(ev event.Event, priority float64, adm Admission) {
	p := m.print
	if !((adm.Input && p.Input) || p.Derivations) || priority <= p.PriorityThreshold {
		return
	}
	if !(adm.Input || adm.Derived || adm.Revised) {
		return
	}
	kind := trace.Derived
	switch {
	case adm.Revised:
		kind = trace.Revised
	case adm.Input:
		kind = trace.Input
	}
	m.sink.Record(trace.Record{
		Kind:           kind,
		Term:           ev.Term,
		Type:           ev.Type,
		Truth:          ev.Truth,
		OccurrenceTime: ev.OccurrenceTime,
		Priority:       priority,
	})
}

// CyclingEvents returns the queued beliefs, highest priority first.
func (m *Memory) CyclingEvents() []CyclingEvent {
	return m.cycling.snapshot()
}

// PopCyclingEvent removes and returns the highest-priority queued belief.
func (m *Memory) PopCyclingEvent() (CyclingEvent, bool) {
	return m.cycling.pop()
}

// MarkSelected adds e to the events selected in the current step, so that it
// is not queued again until ClearSelected. It reports false when the
// selection is full.
func (m *Memory) MarkSelected(e event.Event) bool {
	if len(m.selected) == cap(m.selected) {
		return false
	}
	m.selected = append(m.selected, e)
	return true
}

// ClearSelected ends the current selection step.
func (m *Memory) ClearSelected() {
	m.selected = m.selected[:0]
}

// BeliefEvents returns the buffered input beliefs, oldest first.
func (m *Memory) BeliefEvents() []event.Event {
	return m.beliefEvents.Events()
}

// BeliefInputs returns how many temporal input beliefs were ever buffered.
func (m *Memory) BeliefInputs() uint64 {
	return m.beliefEvents.Added()
}

// GoalEvents returns the buffered input goals, oldest first.
func (m *Memory) GoalEvents() []event.Event {
	return m.goalEvents.Events()
}

// AddOperation registers op under the 1-based id.
func (m *Memory) AddOperation(id int, op Operation) {
	if id < 1 || id > len(m.operations) {
		panic(fmt.Sprintf("memory: operation id %d outside 1..%d", id, len(m.operations)))
	}
	if !m.vocab.IsOperation(op.Term) {
		panic("memory: operation term is not an operator")
	}
	op.Term = term.WithHash(op.Term)
	m.operations[id-1] = op
}

// OperationID returns the id of the registered operator of the operation
// term t, or 0 when none is registered.
func (m *Memory) OperationID(t term.Term) int {
	atom := m.vocab.OperatorAtom(t)
	for i, op := range m.operations {
		if !op.Term.IsZero() && m.vocab.OperatorAtom(op.Term) == atom {
			return i + 1
		}
	}
	return 0
}

// Operations returns the registered operations indexed by id-1.
func (m *Memory) Operations() []Operation {
	return append([]Operation(nil), m.operations...)
}
