package term

import "testing"

const (
	atomA Atom = Atom(CopulaCount) + 1 + iota
	atomB
	atomC
	atomD
)

func TestWithHashNeverZero(t *testing.T) {
	var empty Term
	h := WithHash(empty)
	if h.Hash == 0 {
		t.Fatal("hash of empty term is 0, want remapped")
	}

	// XOR of the words equal to all ones increments to 0 and must become 1.
	var ones Term
	for i := 0; i < 8; i++ {
		ones.Atoms[i] = 0xFF
	}
	if got := WithHash(ones).Hash; got != 1 {
		t.Errorf("hash = %d, want 1", got)
	}
}

func TestWithHashIdempotent(t *testing.T) {
	a := Atomic(atomA)
	again := WithHash(a)
	if again.Hash != a.Hash {
		t.Errorf("rehash changed hash: %d -> %d", a.Hash, again.Hash)
	}

	preset := Term{Hash: 42}
	preset.Atoms[0] = atomB
	if WithHash(preset).Hash != 42 {
		t.Error("WithHash recomputed a hash that was already set")
	}
}

func TestEqual(t *testing.T) {
	a1 := Atomic(atomA)
	a2 := Atomic(atomA)
	b := Atomic(atomB)

	if !Equal(a1, a2) {
		t.Error("identical atomic terms not equal")
	}
	if Equal(a1, b) {
		t.Error("different atomic terms equal")
	}
	if Equal(Sequence(a1, b), Sequence(b, a1)) {
		t.Error("sequence order ignored by Equal")
	}
}

func TestSequenceLayout(t *testing.T) {
	seq := Sequence(Atomic(atomA), Sequence(Atomic(atomB), Atomic(atomC)))
	want := map[int]Atom{0: SequenceCopula, 1: atomA, 2: SequenceCopula, 5: atomB, 6: atomC}
	for i, a := range want {
		if seq.Atoms[i] != a {
			t.Errorf("Atoms[%d] = %d, want %d", i, seq.Atoms[i], a)
		}
	}
	if Complexity(seq) != 5 {
		t.Errorf("Complexity = %d, want 5", Complexity(seq))
	}
	if seq.Hash == 0 {
		t.Error("Sequence result is not hashed")
	}
}

func TestExtractSubterm(t *testing.T) {
	inner := Sequence(Atomic(atomB), Atomic(atomC))
	imp := Implication(Atomic(atomA), inner)

	got := WithHash(ExtractSubterm(imp, 2))
	if !Equal(got, inner) {
		t.Errorf("extracted consequent = %v, want %v", got.Atoms[:7], inner.Atoms[:7])
	}
	if ExtractSubterm(imp, 2).Hash != 0 {
		t.Error("ExtractSubterm returned a hashed term")
	}
}

func TestOverrideExtractRoundTrip(t *testing.T) {
	subs := []Term{
		Atomic(atomD),
		Sequence(Atomic(atomA), Atomic(atomB)),
		Implication(Sequence(Atomic(atomA), Atomic(atomB)), Atomic(atomC)),
	}
	base := Implication(Atomic(atomA), Atomic(atomB))

	for _, s := range subs {
		for _, i := range []int{1, 2, 5} {
			target := base
			if !OverrideSubterm(&target, i, s) {
				t.Fatalf("OverrideSubterm(%d) failed for complexity %d", i, Complexity(s))
			}
			got := WithHash(ExtractSubterm(target, i))
			if !Equal(got, WithHash(s)) {
				t.Errorf("round trip at %d: got %v, want %v", i, got.Atoms[:15], s.Atoms[:15])
			}
		}
	}
}

func TestOverrideSubtermOverflow(t *testing.T) {
	// A full-depth chain rooted at the deepest left index cannot fit.
	deep := Atomic(atomA)
	for i := 0; i < 5; i++ {
		deep = Sequence(deep, Atomic(atomB))
	}
	var target Term
	if OverrideSubterm(&target, 31, deep) {
		t.Error("OverrideSubterm succeeded past capacity")
	}
	if Composable(deep, deep) {
		t.Error("Composable true for a depth-7 result")
	}
	if !Composable(Atomic(atomA), Atomic(atomB)) {
		t.Error("Composable false for two atoms")
	}
}

func TestCompoundPanicsOnOverflow(t *testing.T) {
	deep := Atomic(atomA)
	for i := 0; i < 5; i++ {
		deep = Sequence(deep, Atomic(atomB))
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for oversized sequence")
		}
	}()
	Sequence(deep, Atomic(atomC))
}

func TestEqualUnhashedPanicsInVerifyBuild(t *testing.T) {
	if !verifyBuild {
		t.Skip("only checked with -tags verify")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic comparing unhashed terms")
		}
	}()
	Equal(Term{}, Atomic(atomA))
}
