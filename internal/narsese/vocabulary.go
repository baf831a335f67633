// Package narsese owns the atom vocabulary: interning of symbols, atom
// classification and operation detection, plus a small structured codec used
// by the API and CLI surfaces.
package narsese

import (
	"fmt"
	"strings"

	"github.com/patham9/YAN/internal/term"
)

// AtomsMax is the size of the atom space, copulas included.
const AtomsMax = 255

// Vocabulary interns symbols into atoms. Copulas occupy the first codes.
type Vocabulary struct {
	names [AtomsMax + 1]string
	index map[string]term.Atom
	next  int
}

// NewVocabulary returns a vocabulary with the copulas pre-registered.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{
		index: make(map[string]term.Atom, AtomsMax),
		next:  term.CopulaCount + 1,
	}
	for i, sym := range term.CopulaSymbols {
		a := term.Atom(i + 1)
		v.names[a] = sym
		v.index[sym] = a
	}
	return v
}

// AtomIndex returns the atom for symbol, interning it on first use.
func (v *Vocabulary) AtomIndex(symbol string) (term.Atom, error) {
	if symbol == "" {
		return 0, fmt.Errorf("empty atom symbol")
	}
	if a, ok := v.index[symbol]; ok {
		return a, nil
	}
	if v.next > AtomsMax {
		return 0, fmt.Errorf("atom space exhausted (%d atoms), cannot intern %q", AtomsMax, symbol)
	}
	a := term.Atom(v.next)
	v.next++
	v.names[a] = symbol
	v.index[symbol] = a
	return a, nil
}

// MustAtom is AtomIndex for fixed symbols known to fit.
func (v *Vocabulary) MustAtom(symbol string) term.Atom {
	a, err := v.AtomIndex(symbol)
	if err != nil {
		panic(err)
	}
	return a
}

// Lookup returns the atom of an already interned symbol.
func (v *Vocabulary) Lookup(symbol string) (term.Atom, bool) {
	a, ok := v.index[symbol]
	return a, ok
}

// Name returns the symbol of a, or "" for unknown atoms.
func (v *Vocabulary) Name(a term.Atom) string {
	return v.names[a]
}

// Len returns the number of interned atoms, copulas included.
func (v *Vocabulary) Len() int {
	return v.next - 1
}

// IsCopula reports whether a is one of the reserved structural atoms.
func IsCopula(a term.Atom) bool {
	return a != 0 && int(a) <= term.CopulaCount
}

// IsNonCopulaAtom reports whether a names a vocabulary atom.
func IsNonCopulaAtom(a term.Atom) bool {
	return a != 0 && !IsCopula(a)
}

// IsSimpleAtom is the membership test of the inverted atom index. It must
// accept exactly the atoms IsNonCopulaAtom accepts so removal mirrors insertion.
func IsSimpleAtom(a term.Atom) bool {
	return IsNonCopulaAtom(a)
}

// CopulaEquals reports whether a is the copula written as symbol.
func CopulaEquals(a term.Atom, symbol string) bool {
	return IsCopula(a) && term.CopulaSymbols[a-1] == symbol
}

// IsOperator reports whether a names an operation (symbol starts with ^).
func (v *Vocabulary) IsOperator(a term.Atom) bool {
	return IsNonCopulaAtom(a) && strings.HasPrefix(v.names[a], "^")
}

// IsOperation reports whether t denotes an operation: either a bare operator
// atom or <(*,args) --> ^op>.
func (v *Vocabulary) IsOperation(t term.Term) bool {
	if v.IsOperator(t.Atoms[0]) {
		return true
	}
	return t.Atoms[0] == term.InheritanceCopula && v.IsOperator(t.Atoms[2])
}

// OperatorAtom returns the operator atom of an operation term.
func (v *Vocabulary) OperatorAtom(t term.Term) term.Atom {
	if t.Atoms[0] == term.InheritanceCopula {
		return t.Atoms[2]
	}
	return t.Atoms[0]
}

// PreconditionWithoutOp strips a trailing operation from a sequence:
// (a &/ ^op) becomes a. Other terms are returned as they are. The result is
// hashed.
func (v *Vocabulary) PreconditionWithoutOp(t term.Term) term.Term {
	if t.Atoms[0] == term.SequenceCopula {
		if v.IsOperation(term.ExtractSubterm(t, 2)) {
			return term.WithHash(term.ExtractSubterm(t, 1))
		}
	}
	return term.WithHash(t)
}
