package term

import "fmt"

// CompoundTermSizeMax is the number of atom slots in a term: a complete
// binary tree of depth 6.
const CompoundTermSizeMax = 64

// Atom is an interned symbol code. Zero means the slot is empty.
type Atom uint8

// Reserved copula atoms. Everything above ConjunctionCopula is a vocabulary atom.
const (
	InheritanceCopula Atom = iota + 1 // :
	SimilarityCopula                  // =
	ImplicationCopula                 // $
	SequenceCopula                    // +
	ProductCopula                     // *
	ConjunctionCopula                 // &
)

// CopulaCount is the number of reserved copula atoms.
const CopulaCount = int(ConjunctionCopula)

// CopulaSymbols maps each copula atom (index atom-1) to its symbol.
var CopulaSymbols = [CopulaCount]string{":", "=", "$", "+", "*", "&"}

// Term is a small expression tree stored as a flat array in complete binary
// tree order: the children of slot i live at 2i+1 and 2i+2.
// Hash is 0 until WithHash has been applied.
type Term struct {
	Atoms [CompoundTermSizeMax]Atom
	Hash  uint64
}

// Atomic returns the single-atom term for a, hashed.
func Atomic(a Atom) Term {
	var t Term
	t.Atoms[0] = a
	return WithHash(t)
}

// IsZero reports whether the term has no atoms at all.
func (t Term) IsZero() bool {
	return t.Atoms[0] == 0
}

// Root returns the atom at the top of the tree.
func (t Term) Root() Atom {
	return t.Atoms[0]
}

// relativeOverride writes the subtree of sub rooted at j into t at i.
func relativeOverride(t *Term, i int, sub *Term, j int) bool {
	if i >= CompoundTermSizeMax {
		return false
	}
	if j < CompoundTermSizeMax {
		t.Atoms[i] = sub.Atoms[j]
		left := 2*j + 1
		if left < CompoundTermSizeMax && sub.Atoms[left] != 0 {
			if !relativeOverride(t, 2*i+1, sub, left) {
				return false
			}
		}
		right := 2*j + 2
		if right < CompoundTermSizeMax && sub.Atoms[right] != 0 {
			if !relativeOverride(t, 2*i+2, sub, right) {
				return false
			}
		}
	}
	return true
}

// OverrideSubterm places sub into t with its root at index i. It returns false
// when the subtree does not fit; t may then be partially written and must be
// discarded by the caller. The hash of t is reset.
func OverrideSubterm(t *Term, i int, sub Term) bool {
	t.Hash = 0
	return relativeOverride(t, i, &sub, 0)
}

// ExtractSubterm copies the subtree rooted at i into a fresh, unhashed term.
func ExtractSubterm(t Term, i int) Term {
	var ret Term
	relativeOverride(&ret, 0, &t, i)
	return ret
}

// Complexity counts the non-empty atom slots.
func Complexity(t Term) int {
	n := 0
	for _, a := range t.Atoms {
		if a != 0 {
			n++
		}
	}
	return n
}

// WithHash returns t with its structural hash set. Already hashed terms are
// returned unchanged.
func WithHash(t Term) Term {
	if t.Hash != 0 {
		return t
	}
	var h uint64
	for i := 0; i < CompoundTermSizeMax; i += 8 {
		var w uint64
		for k := 0; k < 8; k++ {
			w |= uint64(t.Atoms[i+k]) << (8 * k)
		}
		h ^= w
	}
	h++
	if h == 0 {
		h = 1
	}
	t.Hash = h
	return t
}

// Equal compares two hashed terms.
func Equal(a, b Term) bool {
	if verifyBuild {
		if a.Hash == 0 || b.Hash == 0 {
			panic("term: unhashed terms are compared")
		}
		if a.Atoms == b.Atoms && a.Hash != b.Hash {
			panic("term: equal terms although hashes differ")
		}
	}
	if a.Hash != b.Hash {
		return false
	}
	return a.Atoms == b.Atoms
}

// Sequence joins a and b under the sequence copula. Panics when the result does
// not fit; check with Composable first where that can happen.
func Sequence(a, b Term) Term {
	return binaryCompound(SequenceCopula, a, b)
}

// Implication builds <antecedent =/> consequent>.
func Implication(antecedent, consequent Term) Term {
	return binaryCompound(ImplicationCopula, antecedent, consequent)
}

// Composable reports whether left and right fit as the two children of a
// binary compound.
func Composable(left, right Term) bool {
	var t Term
	t.Atoms[0] = SequenceCopula
	return OverrideSubterm(&t, 1, left) && OverrideSubterm(&t, 2, right)
}

// Compound builds a binary compound under the given copula.
func Compound(copula Atom, left, right Term) Term {
	return binaryCompound(copula, left, right)
}

func binaryCompound(copula Atom, left, right Term) Term {
	var t Term
	t.Atoms[0] = copula
	if !OverrideSubterm(&t, 1, left) || !OverrideSubterm(&t, 2, right) {
		panic(fmt.Sprintf("term: compound under copula %d exceeds %d slots", copula, CompoundTermSizeMax))
	}
	return WithHash(t)
}
