package narsese

import (
	"fmt"
	"strings"

	"github.com/patham9/YAN/internal/term"
)

// copulaByName accepts both the internal one-character symbols and the
// conventional infix spellings.
var copulaByName = map[string]term.Atom{
	":": term.InheritanceCopula, "-->": term.InheritanceCopula,
	"=": term.SimilarityCopula, "<->": term.SimilarityCopula,
	"$": term.ImplicationCopula, "=/>": term.ImplicationCopula,
	"+": term.SequenceCopula, "&/": term.SequenceCopula,
	"*": term.ProductCopula,
	"&": term.ConjunctionCopula, "&&": term.ConjunctionCopula,
}

var infix = [term.CopulaCount]string{"-->", "<->", "=/>", "&/", "*", "&&"}

// Build turns a decoded JSON node into a hashed term. A node is either an atom
// symbol or a three element list [copula, left, right].
func (v *Vocabulary) Build(node any) (term.Term, error) {
	switch n := node.(type) {
	case string:
		if _, isCopula := copulaByName[n]; isCopula {
			return term.Term{}, fmt.Errorf("copula %q used as an atom", n)
		}
		a, err := v.AtomIndex(n)
		if err != nil {
			return term.Term{}, err
		}
		return term.Atomic(a), nil
	case []any:
		if len(n) != 3 {
			return term.Term{}, fmt.Errorf("compound needs [copula, left, right], got %d elements", len(n))
		}
		name, ok := n[0].(string)
		if !ok {
			return term.Term{}, fmt.Errorf("copula must be a string, got %T", n[0])
		}
		copula, ok := copulaByName[name]
		if !ok {
			return term.Term{}, fmt.Errorf("unknown copula %q", name)
		}
		left, err := v.Build(n[1])
		if err != nil {
			return term.Term{}, err
		}
		right, err := v.Build(n[2])
		if err != nil {
			return term.Term{}, err
		}
		if !term.Composable(left, right) {
			return term.Term{}, fmt.Errorf("term exceeds %d atom slots", term.CompoundTermSizeMax)
		}
		return term.Compound(copula, left, right), nil
	default:
		return term.Term{}, fmt.Errorf("unsupported term node %T", node)
	}
}

// Format renders t in conventional infix notation.
func (v *Vocabulary) Format(t term.Term) string {
	var b strings.Builder
	v.format(&b, &t, 0)
	return b.String()
}

func (v *Vocabulary) format(b *strings.Builder, t *term.Term, i int) {
	if i >= term.CompoundTermSizeMax || t.Atoms[i] == 0 {
		b.WriteString("@")
		return
	}
	a := t.Atoms[i]
	if !IsCopula(a) {
		name := v.Name(a)
		if name == "" {
			name = fmt.Sprintf("#%d", a)
		}
		b.WriteString(name)
		return
	}
	open, closing := "(", ")"
	switch a {
	case term.InheritanceCopula, term.SimilarityCopula, term.ImplicationCopula:
		open, closing = "<", ">"
	}
	b.WriteString(open)
	v.format(b, t, 2*i+1)
	b.WriteString(" " + infix[a-1] + " ")
	v.format(b, t, 2*i+2)
	b.WriteString(closing)
}
