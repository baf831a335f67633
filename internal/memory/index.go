package memory

import (
	"fmt"

	"github.com/patham9/YAN/internal/event"
	"github.com/patham9/YAN/internal/narsese"
	"github.com/patham9/YAN/internal/term"
)

// atomIndex maps every simple atom to the concepts whose term contains it.
// Each list has the concept capacity as its length and is terminated by the
// first zero handle.
type atomIndex struct {
	lists [narsese.AtomsMax + 1][]event.ConceptRef
	size  int
}

func newAtomIndex(size int) *atomIndex {
	return &atomIndex{size: size}
}

func (x *atomIndex) list(a term.Atom) []event.ConceptRef {
	if x.lists[a] == nil {
		x.lists[a] = make([]event.ConceptRef, x.size)
	}
	return x.lists[a]
}

// add registers ref under every simple atom of t, once per atom.
func (x *atomIndex) add(t term.Term, ref event.ConceptRef) {
	for _, a := range t.Atoms {
		if !narsese.IsNonCopulaAtom(a) {
			continue
		}
		l := x.list(a)
		for j := 0; ; j++ {
			if j >= len(l) {
				panic(fmt.Sprintf("memory: inverted atom index overflow for atom %d", a))
			}
			if l[j] == ref {
				break
			}
			if l[j].IsZero() {
				l[j] = ref
				break
			}
		}
	}
}

// remove drops ref from the lists of every simple atom of t, closing the gap.
func (x *atomIndex) remove(t term.Term, ref event.ConceptRef) {
	for _, a := range t.Atoms {
		if !narsese.IsSimpleAtom(a) || x.lists[a] == nil {
			continue
		}
		l := x.lists[a]
		j := 0
		for j < len(l) && !l[j].IsZero() && l[j] != ref {
			j++
		}
		if j == len(l) || l[j].IsZero() {
			continue
		}
		k := j
		for k+1 < len(l) && !l[k+1].IsZero() {
			l[k] = l[k+1]
			k++
		}
		l[k] = event.ConceptRef{}
	}
}

// refs returns the handles registered under a.
func (x *atomIndex) refs(a term.Atom) []event.ConceptRef {
	l := x.lists[a]
	n := 0
	for n < len(l) && !l[n].IsZero() {
		n++
	}
	return append([]event.ConceptRef(nil), l[:n]...)
}
