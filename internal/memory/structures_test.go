package memory

import (
	"testing"

	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/inference"
	"github.com/patham9/YAN/internal/narsese"
	"github.com/patham9/YAN/internal/stamp"
	"github.com/patham9/YAN/internal/term"
	"github.com/patham9/YAN/internal/truth"
)

func testRules() (*inference.Rules, *narsese.Vocabulary) {
	vocab := narsese.NewVocabulary()
	calc := truth.Calculus{Horizon: 1, ProjectionDecay: 0.8, MaxConfidence: 0.99, Structural: truth.Truth{Frequency: 1, Confidence: 0.9}}
	return inference.New(calc, vocab), vocab
}

func implication(v *narsese.Vocabulary, a, b string, f, c float64, id int64) event.Implication {
	return event.Implication{
		Term:  term.Implication(term.Atomic(v.MustAtom(a)), term.Atomic(v.MustAtom(b))),
		Truth: truth.Truth{Frequency: f, Confidence: c},
		Stamp: stamp.New(id),
	}
}

func TestTableOrderedByExpectation(t *testing.T) {
	rules, v := testRules()
	tb := newTable(3)
	tb.AddAndRevise(implication(v, "a", "x", 0.6, 0.9, 1), rules)
	tb.AddAndRevise(implication(v, "b", "x", 1.0, 0.9, 2), rules)
	tb.AddAndRevise(implication(v, "c", "x", 0.8, 0.9, 3), rules)

	var prev float64 = 2
	for i := 0; i < tb.Len(); i++ {
		exp := tb.At(i).Truth.Expectation()
		if exp > prev {
			t.Errorf("entry %d expectation %v above previous %v", i, exp, prev)
		}
		prev = exp
	}
}

func TestTableDropsWeakestWhenFull(t *testing.T) {
	rules, v := testRules()
	tb := newTable(2)
	tb.AddAndRevise(implication(v, "a", "x", 0.9, 0.9, 1), rules)
	tb.AddAndRevise(implication(v, "b", "x", 0.7, 0.9, 2), rules)

	if _, added := tb.AddAndRevise(implication(v, "c", "x", 0.1, 0.9, 3), rules); added {
		t.Error("weakest implication admitted into a full table")
	}
	if _, added := tb.AddAndRevise(implication(v, "d", "x", 0.8, 0.9, 4), rules); !added {
		t.Fatal("stronger implication rejected")
	}
	if tb.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tb.Len())
	}
	for _, imp := range tb.Items() {
		if term.Equal(imp.Term, implication(v, "b", "x", 0, 0, 0).Term) {
			t.Error("weakest entry b survived")
		}
	}
}

func TestTableRevisesSameTerm(t *testing.T) {
	rules, v := testRules()
	tb := newTable(4)
	tb.AddAndRevise(implication(v, "a", "x", 1, 0.5, 1), rules)
	got, added := tb.AddAndRevise(implication(v, "a", "x", 1, 0.5, 2), rules)
	if !added || tb.Len() != 1 {
		t.Fatalf("added=%v Len=%d, want one revised entry", added, tb.Len())
	}
	if got.Truth.Confidence <= 0.5 {
		t.Errorf("revised confidence = %v", got.Truth.Confidence)
	}
	if !stamp.Overlaps(got.Stamp, stamp.New(1)) || !stamp.Overlaps(got.Stamp, stamp.New(2)) {
		t.Error("revised stamp does not merge both premises")
	}
}

func TestTableIgnoresOverlappingEvidence(t *testing.T) {
	rules, v := testRules()
	tb := newTable(4)
	tb.AddAndRevise(implication(v, "a", "x", 1, 0.5, 1), rules)
	if _, added := tb.AddAndRevise(implication(v, "a", "x", 0, 0.8, 1), rules); added {
		t.Error("overlapping evidence changed the table")
	}
	if tb.Len() != 1 || tb.At(0).Truth.Frequency != 1 {
		t.Errorf("table = %+v", tb.Items())
	}
}

func TestAtomIndexAddRemove(t *testing.T) {
	v := narsese.NewVocabulary()
	x := newAtomIndex(4)
	shared := term.Atomic(v.MustAtom("s"))
	terms := make([]term.Term, 3)
	refs := make([]event.ConceptRef, 3)
	for i, n := range []string{"p", "q", "r"} {
		terms[i] = term.Compound(term.SimilarityCopula, term.Atomic(v.MustAtom(n)), shared)
		refs[i] = event.ConceptRef{Slot: int32(i), Gen: 1}
		x.add(terms[i], refs[i])
	}
	// Adding twice registers once.
	x.add(terms[0], refs[0])

	if got := x.refs(shared.Root()); len(got) != 3 {
		t.Fatalf("shared refs = %v", got)
	}

	x.remove(terms[1], refs[1])
	got := x.refs(shared.Root())
	if len(got) != 2 || got[0] != refs[0] || got[1] != refs[2] {
		t.Errorf("after removal = %v, want [%v %v]", got, refs[0], refs[2])
	}
	if len(x.refs(v.MustAtom("q"))) != 0 {
		t.Error("q still indexed")
	}

	// Removing an unknown handle is a no-op.
	x.remove(terms[1], event.ConceptRef{Slot: 9, Gen: 9})
	if len(x.refs(shared.Root())) != 2 {
		t.Error("unknown removal changed the list")
	}
}

func TestAtomIndexFullListRemoval(t *testing.T) {
	v := narsese.NewVocabulary()
	x := newAtomIndex(2)
	a := term.Atomic(v.MustAtom("a"))
	r1 := event.ConceptRef{Slot: 0, Gen: 1}
	r2 := event.ConceptRef{Slot: 1, Gen: 1}
	x.add(a, r1)
	x.add(a, r2)
	x.remove(a, r2)
	x.remove(a, r1)
	if len(x.refs(a.Root())) != 0 {
		t.Error("list not emptied")
	}
}

func TestAtomIndexOverflowPanics(t *testing.T) {
	v := narsese.NewVocabulary()
	x := newAtomIndex(1)
	a := term.Atomic(v.MustAtom("a"))
	x.add(a, event.ConceptRef{Slot: 0, Gen: 1})
	expectPanic(t, "overflow", func() { x.add(a, event.ConceptRef{Slot: 1, Gen: 1}) })
}

func TestFIFO(t *testing.T) {
	v := narsese.NewVocabulary()
	f := newFIFO(3)
	if _, ok := f.Newest(); ok {
		t.Error("empty FIFO has a newest event")
	}
	for i := int64(1); i <= 5; i++ {
		f.Add(ev(term.Atomic(v.MustAtom("a")), event.Belief, 1, 0.9, i, i))
	}
	if f.Len() != 3 {
		t.Fatalf("Len = %d, want 3", f.Len())
	}
	if f.Added() != 5 {
		t.Errorf("Added = %d, want 5", f.Added())
	}
	events := f.Events()
	for i, want := range []int64{3, 4, 5} {
		if events[i].OccurrenceTime != want {
			t.Errorf("event %d at %d, want %d", i, events[i].OccurrenceTime, want)
		}
	}
	if newest, _ := f.Newest(); newest.OccurrenceTime != 5 {
		t.Errorf("newest at %d, want 5", newest.OccurrenceTime)
	}
	expectPanic(t, "out of range", func() { f.At(3) })
}

func TestCyclingPool(t *testing.T) {
	v := narsese.NewVocabulary()
	p := newCyclingPool(3)
	mk := func(id int64) event.Event { return ev(term.Atomic(v.MustAtom("a")), event.Belief, 1, 0.9, 0, id) }

	p.push(mk(1), 0.5)
	p.push(mk(2), 0.9)
	p.push(mk(3), 0.5)
	if p.push(mk(4), 0.1) {
		t.Error("event below a full pool's minimum admitted")
	}
	if !p.push(mk(5), 0.7) {
		t.Fatal("stronger event rejected")
	}

	var order []int64
	for {
		ce, ok := p.pop()
		if !ok {
			break
		}
		order = append(order, ce.Event.Stamp.Base[0])
	}
	want := []int64{2, 5, 1}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestConceptStoreGenerations(t *testing.T) {
	v := narsese.NewVocabulary()
	s := newConceptStore(1, 0, 2)
	a := term.WithHash(term.Atomic(v.MustAtom("a")))
	b := term.WithHash(term.Atomic(v.MustAtom("b")))

	ca, _, _, ok := s.claim(a, 0, 0.5)
	if !ok {
		t.Fatal("claim a failed")
	}
	refA := ca.Ref
	ca.PostconditionBeliefs.add(event.Implication{Term: term.Implication(a, b)})

	cb, evicted, wasEvicted, ok := s.claim(b, 1, 0.5)
	if !ok || !wasEvicted {
		t.Fatal("claim b did not evict a")
	}
	if !term.Equal(evicted.Term, a) || evicted.Ref != refA {
		t.Errorf("evicted = %+v", evicted)
	}
	if s.get(refA) != nil {
		t.Error("old generation still resolves")
	}
	if cb.Ref.Slot != refA.Slot || cb.Ref.Gen == refA.Gen {
		t.Errorf("slot reuse refs: old %+v new %+v", refA, cb.Ref)
	}
	if cb.PostconditionBeliefs.Len() != 0 {
		t.Error("reused slot kept the previous tables")
	}
	if s.get(event.ConceptRef{}) != nil {
		t.Error("zero handle resolved")
	}
}
