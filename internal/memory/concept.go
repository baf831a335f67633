package memory

import (
	"container/heap"

	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/term"
)

// Usage tracks how often and how recently a concept was referenced.
type Usage struct {
	Count    int64
	LastUsed int64
}

// Concept is the memory unit for one term.
type Concept struct {
	Term     term.Term
	Ref      event.ConceptRef
	ID       int64
	Priority float64
	Usage    Usage

	Belief          event.Event // eternal
	BeliefSpike     event.Event // present
	PredictedBelief event.Event // future

	// PreconditionBeliefs holds one table per operation id; index 0 is for
	// implications without an operation.
	PreconditionBeliefs  []Table
	PostconditionBeliefs Table
}

// reset reuses the concept's tables for a new term.
func (c *Concept) reset(t term.Term, ref event.ConceptRef) {
	pre := c.PreconditionBeliefs
	for i := range pre {
		pre[i].clear()
	}
	post := c.PostconditionBeliefs
	post.clear()
	*c = Concept{
		Term:                 t,
		Ref:                  ref,
		PreconditionBeliefs:  pre,
		PostconditionBeliefs: post,
	}
}

type slot struct {
	concept Concept
	gen     uint32
	pos     int // position in the heap
}

// conceptStore is a fixed-capacity arena ranked by concept priority. Slots are
// never freed: once the arena is full every newcomer overwrites the
// lowest-priority occupant. Each reuse bumps the slot generation, which
// invalidates outstanding ConceptRefs.
type conceptStore struct {
	slots     []slot // len grows up to cap, never reallocated
	heap      []int32
	tableSize int
	tables    int
}

func newConceptStore(capacity, operations, tableSize int) *conceptStore {
	return &conceptStore{
		slots:     make([]slot, 0, capacity),
		heap:      make([]int32, 0, capacity),
		tableSize: tableSize,
		tables:    operations + 1,
	}
}

// heap.Interface over occupied slots, lowest priority first; among equal
// priorities the older concept comes first.
func (s *conceptStore) Len() int { return len(s.heap) }

func (s *conceptStore) Less(i, j int) bool {
	a, b := &s.slots[s.heap[i]].concept, &s.slots[s.heap[j]].concept
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}

func (s *conceptStore) Swap(i, j int) {
	s.heap[i], s.heap[j] = s.heap[j], s.heap[i]
	s.slots[s.heap[i]].pos = i
	s.slots[s.heap[j]].pos = j
}

func (s *conceptStore) Push(x any) {
	i := x.(int32)
	s.slots[i].pos = len(s.heap)
	s.heap = append(s.heap, i)
}

func (s *conceptStore) Pop() any {
	n := len(s.heap) - 1
	i := s.heap[n]
	s.heap = s.heap[:n]
	return i
}

// find returns the slot holding t.
func (s *conceptStore) find(t term.Term) (int32, bool) {
	for _, i := range s.heap {
		if term.Equal(s.slots[i].concept.Term, t) {
			return i, true
		}
	}
	return 0, false
}

// get dereferences a handle; nil when it is zero or stale.
func (s *conceptStore) get(ref event.ConceptRef) *Concept {
	if ref.IsZero() || int(ref.Slot) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[ref.Slot]
	if sl.gen != ref.Gen {
		return nil
	}
	return &sl.concept
}

// claim hands out a slot for a new concept with the given id and priority.
// When the store is full the lowest-priority occupant, oldest first among
// equals, is evicted and returned. Only a zero-capacity store refuses.
func (s *conceptStore) claim(t term.Term, id int64, priority float64) (c *Concept, evicted Concept, wasEvicted, ok bool) {
	if len(s.slots) < cap(s.slots) {
		i := int32(len(s.slots))
		s.slots = append(s.slots, slot{gen: 1})
		sl := &s.slots[i]
		sl.concept.PreconditionBeliefs = make([]Table, s.tables)
		for k := range sl.concept.PreconditionBeliefs {
			sl.concept.PreconditionBeliefs[k] = newTable(s.tableSize)
		}
		sl.concept.PostconditionBeliefs = newTable(s.tableSize)
		sl.concept.reset(t, event.ConceptRef{Slot: i, Gen: sl.gen})
		sl.concept.ID = id
		sl.concept.Priority = priority
		heap.Push(s, i)
		return &sl.concept, Concept{}, false, true
	}
	if len(s.heap) == 0 {
		return nil, Concept{}, false, false
	}
	i := s.heap[0]
	sl := &s.slots[i]
	evicted = Concept{Term: sl.concept.Term, Ref: sl.concept.Ref, ID: sl.concept.ID, Priority: sl.concept.Priority}
	sl.gen++
	if sl.gen == 0 {
		sl.gen = 1
	}
	sl.concept.reset(t, event.ConceptRef{Slot: i, Gen: sl.gen})
	sl.concept.ID = id
	sl.concept.Priority = priority
	heap.Fix(s, sl.pos)
	return &sl.concept, evicted, true, true
}

// fix restores heap order after c's priority changed.
func (s *conceptStore) fix(c *Concept) {
	heap.Fix(s, s.slots[c.Ref.Slot].pos)
}

// each visits every occupied concept in unspecified order.
func (s *conceptStore) each(fn func(*Concept)) {
	for _, i := range s.heap {
		fn(&s.slots[i].concept)
	}
}
