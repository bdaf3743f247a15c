package patch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// overlappingEditPair builds b (f0->f, edits "two") and a (f->f2, edits
// "four") whose hunks overlap through shared context ("three") but never
// touch the same line, so they should commute even though Commute's old
// disjoint-only check would have rejected them as a DisjointHunkError.
func overlappingEditPair() (b, a Diff) {
	b = Diff{LName: "f0", RName: "f", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{
			{Kind: KindContext, Content: "one\n"},
			{Kind: KindRemove, Content: "two\n"},
			{Kind: KindAdd, Content: "TWO\n"},
			{Kind: KindContext, Content: "three\n"},
			{Kind: KindContext, Content: "four\n"},
		},
	}}}
	b.Normalize()
	a = Diff{LName: "f", RName: "f2", Hunks: []Hunk{{
		LStart: 2, RStart: 2,
		Lines: []Line{
			{Kind: KindContext, Content: "TWO\n"},
			{Kind: KindContext, Content: "three\n"},
			{Kind: KindRemove, Content: "four\n"},
			{Kind: KindAdd, Content: "FOUR\n"},
		},
	}}}
	a.Normalize()
	return b, a
}

func TestDiffCommuteOverlappingButDisjointLines(t *testing.T) {
	b, a := overlappingEditPair()

	aPrime, bPrime, err := b.Commute(a)
	if err != nil {
		t.Fatalf("expected overlapping-but-disjoint edits to commute, got %v", err)
	}
	if aPrime.LName != "f0" || aPrime.RName != "f" {
		t.Errorf("aPrime names = %s/%s, want f0/f", aPrime.LName, aPrime.RName)
	}
	if bPrime.LName != "f" || bPrime.RName != "f2" {
		t.Errorf("bPrime names = %s/%s, want f/f2", bPrime.LName, bPrime.RName)
	}

	// Recomposing in the new order must reproduce composing in the old order.
	orig, err := b.Compose(a)
	if err != nil {
		t.Fatalf("b.Compose(a): %v", err)
	}
	swapped, err := aPrime.Compose(bPrime)
	if err != nil {
		t.Fatalf("aPrime.Compose(bPrime): %v", err)
	}
	if diff := cmp.Diff(orig.Shrinkwrapped(), swapped.Shrinkwrapped()); diff != "" {
		t.Errorf("commuting changed the combined effect:\n%s", diff)
	}
}

func TestDiffCommuteSameLineConflict(t *testing.T) {
	b := Diff{LName: "f0", RName: "f", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "b-version\n"}},
	}}}
	b.Normalize()

	// conflicting's hunk targets the same pre-image line ("shared") that b
	// already rewrote, a genuine dependency Commute cannot route around.
	conflicting := Diff{LName: "f", RName: "f2", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "a-version\n"}},
	}}}
	conflicting.Normalize()

	_, _, err := b.Commute(conflicting)
	var conflictErr *ChangeToSameLineError
	var incompatibleErr *IncompatibleChangeToSameLineError
	if !errors.As(err, &conflictErr) && !errors.As(err, &incompatibleErr) {
		t.Fatalf("expected a same-line conflict error, got %v", err)
	}
}
