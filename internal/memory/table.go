package memory

import (
	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/inference"
	"github.com/patham9/YAN/internal/stamp"
	"github.com/patham9/YAN/internal/term"
)

// Table is a bounded list of implications ordered by truth expectation,
// strongest first.
type Table struct {
	items []event.Implication
}

func newTable(capacity int) Table {
	return Table{items: make([]event.Implication, 0, capacity)}
}

func (t *Table) clear() {
	t.items = t.items[:0]
}

// Len returns the number of stored implications.
func (t *Table) Len() int { return len(t.items) }

// At returns the i-th strongest implication.
func (t *Table) At(i int) event.Implication { return t.items[i] }

// Items returns a copy of the table contents, strongest first.
func (t *Table) Items() []event.Implication {
	return append([]event.Implication(nil), t.items...)
}

// add inserts imp before the first entry with a lower expectation. When the
// table is full the weakest entry falls out; an implication weaker than every
// entry of a full table is not stored.
func (t *Table) add(imp event.Implication) bool {
	exp := imp.Truth.Expectation()
	for i := range t.items {
		if exp > t.items[i].Truth.Expectation() {
			if len(t.items) == cap(t.items) {
				t.items = t.items[:len(t.items)-1]
			}
			t.items = append(t.items, event.Implication{})
			copy(t.items[i+1:], t.items[i:])
			t.items[i] = imp
			return true
		}
	}
	if len(t.items) < cap(t.items) {
		t.items = append(t.items, imp)
		return true
	}
	return false
}

func (t *Table) remove(i int) {
	t.items = append(t.items[:i], t.items[i+1:]...)
}

// AddAndRevise stores imp. An entry with the same term is revised with it when
// their evidence is disjoint and revision does not lower the stored
// confidence; overlapping evidence leaves the table unchanged. It returns the
// stored implication and whether the table changed.
func (t *Table) AddAndRevise(imp event.Implication, rules *inference.Rules) (event.Implication, bool) {
	for i := range t.items {
		old := t.items[i]
		if !term.Equal(old.Term, imp.Term) {
			continue
		}
		if stamp.Overlaps(imp.Stamp, old.Stamp) {
			return old, false
		}
		revised := rules.ImplicationRevision(old, imp)
		if revised.Truth.Confidence < old.Truth.Confidence {
			return old, false
		}
		t.remove(i)
		return revised, t.add(revised)
	}
	return imp, t.add(imp)
}
