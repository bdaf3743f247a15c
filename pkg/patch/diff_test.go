package patch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func simpleTestDiff(lname, rname, oldWord, newWord string) Diff {
	h := Hunk{LStart: 1, RStart: 1, Lines: []Line{
		{Kind: KindContext, Content: "one\n"},
		{Kind: KindRemove, Content: oldWord + "\n"},
		{Kind: KindAdd, Content: newWord + "\n"},
		{Kind: KindContext, Content: "three\n"},
	}}
	h.Normalize()
	d := Diff{LName: lname, RName: rname, Hunks: []Hunk{h}}
	d.Normalize()
	return d
}

func TestDiffComposeWithIdentity(t *testing.T) {
	d := simpleTestDiff("a", "b", "two", "TWO")
	identity := Diff{LName: "b", RName: "b"}
	got, err := d.Compose(identity)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d.Shrinkwrapped(), got.Shrinkwrapped()); diff != "" {
		t.Errorf("compose with identity changed the diff:\n%s", diff)
	}
}

func TestDiffComposeThenInverseIsIdentity(t *testing.T) {
	d := simpleTestDiff("a", "b", "two", "TWO")
	got, err := d.Compose(d.Inverse())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Shrinkwrapped().IsIdentity() {
		t.Errorf("d composed with its own inverse should be identity, got %v", got)
	}
}

func TestDiffComposeMismatchedNames(t *testing.T) {
	d := simpleTestDiff("a", "b", "two", "TWO")
	other := Diff{LName: "not-b", RName: "c"}
	_, err := d.Compose(other)
	var mismatch *MismatchedFilenameError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchedFilenameError, got %v", err)
	}
}

func TestDiffOverConflict(t *testing.T) {
	left := Diff{LName: "a", RName: "left", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "left-version\n"}},
	}}}
	left.Normalize()
	right := Diff{LName: "a", RName: "right", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "right-version\n"}},
	}}}
	right.Normalize()

	_, err := left.Over(right)
	var conflict *ChangeToSameLineError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ChangeToSameLineError, got %v", err)
	}
}

func TestDiffOverConvergentChangeIsNotAConflict(t *testing.T) {
	left := Diff{LName: "a", RName: "left", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "same\n"}},
	}}}
	left.Normalize()
	right := Diff{LName: "a", RName: "right", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "same\n"}},
	}}}
	right.Normalize()

	got, err := left.Over(right)
	if err != nil {
		t.Fatalf("converging edits should not conflict: %v", err)
	}
	if !got.Shrinkwrapped().IsIdentity() {
		t.Errorf("converging edits should rebase to identity, got %v", got)
	}
}

func TestDiffSplitThenComposeReproducesOriginal(t *testing.T) {
	d := simpleTestDiff("a", "b", "two", "TWO")
	before, after, err := d.Split(2)
	if err != nil {
		t.Fatal(err)
	}
	recombined, err := before.Compose(after)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d.Shrinkwrapped(), recombined.Shrinkwrapped()); diff != "" {
		t.Errorf("split then compose did not reproduce original:\n%s", diff)
	}
}

func disjointEditPair() (a, b Diff) {
	a = Diff{LName: "f", RName: "f", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindContext, Content: "one\n"}, {Kind: KindRemove, Content: "two\n"}, {Kind: KindAdd, Content: "TWO\n"}, {Kind: KindContext, Content: "three\n"}},
	}}}
	a.Normalize()
	b = Diff{LName: "f", RName: "f", Hunks: []Hunk{{
		LStart: 4, RStart: 4,
		Lines: []Line{{Kind: KindContext, Content: "four\n"}, {Kind: KindRemove, Content: "five\n"}, {Kind: KindAdd, Content: "FIVE\n"}, {Kind: KindContext, Content: "six\n"}},
	}}}
	b.Normalize()
	return a, b
}

func TestDiffUnderInvertsOver(t *testing.T) {
	a, b := disjointEditPair()
	up, err := b.Over(a)
	if err != nil {
		t.Fatalf("b.Over(a): %v", err)
	}
	down, err := a.Under(b)
	if err != nil {
		t.Fatalf("a.Under(b): %v", err)
	}

	gotB, err := up.Under(down)
	if err != nil {
		t.Fatalf("up.Under(down): %v", err)
	}
	if diff := cmp.Diff(b.Shrinkwrapped(), gotB.Shrinkwrapped()); diff != "" {
		t.Errorf("up.Under(down) != b:\n%s", diff)
	}

	gotA, err := down.Over(up)
	if err != nil {
		t.Fatalf("down.Over(up): %v", err)
	}
	if diff := cmp.Diff(a.Shrinkwrapped(), gotA.Shrinkwrapped()); diff != "" {
		t.Errorf("down.Over(up) != a:\n%s", diff)
	}
}

func TestDiffUnderAgainstIdentityIsNoOp(t *testing.T) {
	d := simpleTestDiff("a", "a", "two", "TWO")
	identity := Diff{LName: "a", RName: "a"}
	got, err := d.Under(identity)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d.Shrinkwrapped(), got.Shrinkwrapped()); diff != "" {
		t.Errorf("Under against identity changed the diff:\n%s", diff)
	}
}

func TestDiffInverseSwapsNames(t *testing.T) {
	d := simpleTestDiff("a", "b", "two", "TWO")
	inv := d.Inverse()
	if inv.LName != "b" || inv.RName != "a" {
		t.Errorf("Inverse() names = %s/%s, want b/a", inv.LName, inv.RName)
	}
}
