package patch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func conflictFixture(lname string) (d, other Diff) {
	d = Diff{LName: lname, RName: lname, Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "left-version\n"}},
	}, {
		LStart: 10, RStart: 10,
		Lines: []Line{{Kind: KindRemove, Content: "also-shared\n"}, {Kind: KindAdd, Content: "left-version-2\n"}},
	}}}
	d.Normalize()
	other = Diff{LName: lname, RName: lname, Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{{Kind: KindRemove, Content: "shared\n"}, {Kind: KindAdd, Content: "right-version\n"}},
	}, {
		LStart: 10, RStart: 10,
		Lines: []Line{{Kind: KindRemove, Content: "also-shared\n"}, {Kind: KindAdd, Content: "right-version-2\n"}},
	}}}
	other.Normalize()
	return d, other
}

func TestHunksWithConflictsMergesRepeatedCutsOnSameFile(t *testing.T) {
	d, other := conflictFixture("f")
	p := NewPatch(d)
	conflicts, remainder, err := HunksWithConflicts(p, NewPatch(other))
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts.Diffs) != 1 {
		t.Fatalf("expected both conflicting hunks to merge into 1 diff, got %d", len(conflicts.Diffs))
	}
	if len(conflicts.Diffs[0].Hunks) != 2 {
		t.Fatalf("expected the merged conflict diff to carry both hunks, got %d", len(conflicts.Diffs[0].Hunks))
	}
	if len(remainder.Diffs) != 0 {
		t.Errorf("both hunks conflicted, remainder should be empty, got %+v", remainder)
	}
}

func TestHunksWithConflictsLeavesCleanHunkWithFixedLeft(t *testing.T) {
	d := Diff{LName: "f", RName: "f", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{
			{Kind: KindContext, Content: "a\n"},
			{Kind: KindRemove, Content: "shared\n"},
			{Kind: KindAdd, Content: "left-version\n"},
			{Kind: KindAdd, Content: "left-version-extra\n"},
			{Kind: KindContext, Content: "c\n"},
		},
	}, {
		LStart: 10, RStart: 11,
		Lines: []Line{
			{Kind: KindContext, Content: "x\n"},
			{Kind: KindRemove, Content: "clean-old\n"},
			{Kind: KindAdd, Content: "clean-new\n"},
			{Kind: KindContext, Content: "y\n"},
		},
	}}}
	d.Normalize()
	other := Diff{LName: "f", RName: "f", Hunks: []Hunk{{
		LStart: 1, RStart: 1,
		Lines: []Line{
			{Kind: KindContext, Content: "a\n"},
			{Kind: KindRemove, Content: "shared\n"},
			{Kind: KindAdd, Content: "right-version\n"},
			{Kind: KindContext, Content: "c\n"},
		},
	}}}
	other.Normalize()

	conflicts, remainder, err := HunksWithConflicts(NewPatch(d), NewPatch(other))
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts.Diffs) != 1 || len(conflicts.Diffs[0].Hunks) != 1 {
		t.Fatalf("expected exactly the first hunk cut out, got %+v", conflicts)
	}
	if len(remainder.Diffs) != 1 || len(remainder.Diffs[0].Hunks) != 1 {
		t.Fatalf("expected the clean hunk to remain, got %+v", remainder)
	}
	clean := remainder.Diffs[0].Hunks[0]
	if clean.LStart != 11 {
		t.Errorf("clean hunk's LStart = %d, want 11 (rederived from its RStart, the conflicting hunk's +1 net change no longer precedes it)", clean.LStart)
	}
	if clean.RStart != 11 {
		t.Errorf("clean hunk's RStart should be unchanged at 11, got %d", clean.RStart)
	}
}

func TestFixLeftReproducesConsistentHunkSequence(t *testing.T) {
	h1 := Hunk{LStart: 1, RStart: 1, Lines: []Line{
		{Kind: KindContext, Content: "a\n"},
		{Kind: KindRemove, Content: "old\n"},
		{Kind: KindAdd, Content: "new1\n"},
		{Kind: KindAdd, Content: "new2\n"},
		{Kind: KindContext, Content: "c\n"},
	}}
	h1.Normalize()
	h2 := Hunk{LStart: 10, RStart: 11, Lines: []Line{
		{Kind: KindContext, Content: "x\n"},
		{Kind: KindRemove, Content: "foo\n"},
		{Kind: KindAdd, Content: "bar\n"},
		{Kind: KindContext, Content: "y\n"},
	}}
	h2.Normalize()

	got := fixLeft([]Hunk{h1, h2})
	if diff := cmp.Diff([]Hunk{h1, h2}, got); diff != "" {
		t.Errorf("fixLeft over an already-consistent sequence should be a no-op:\n%s", diff)
	}
}

func TestFixLeftRederivesAfterPrecedingHunkRemoved(t *testing.T) {
	// h2 as it appeared in a diff where a preceding hunk (now removed) had a
	// +1 net change: its RStart (11) still reflects that shift, but with the
	// preceding hunk gone, h2 is now first and its LStart must be rederived.
	h2 := Hunk{LStart: 10, RStart: 11, Lines: []Line{
		{Kind: KindContext, Content: "x\n"},
		{Kind: KindRemove, Content: "foo\n"},
		{Kind: KindAdd, Content: "bar\n"},
		{Kind: KindContext, Content: "y\n"},
	}}
	h2.Normalize()

	got := fixLeft([]Hunk{h2})
	if got[0].LStart != 11 {
		t.Errorf("LStart = %d, want 11 (rederived from RStart with no preceding hunk left to shift against)", got[0].LStart)
	}
}

func TestMergeDiffsCombinesSameNamePair(t *testing.T) {
	a := Diff{LName: "f", RName: "f", Hunks: []Hunk{{LStart: 1, RStart: 1, Lines: []Line{{Kind: KindRemove, Content: "one\n"}, {Kind: KindAdd, Content: "ONE\n"}}}}}
	a.Normalize()
	b := Diff{LName: "f", RName: "f", Hunks: []Hunk{{LStart: 10, RStart: 10, Lines: []Line{{Kind: KindRemove, Content: "two\n"}, {Kind: KindAdd, Content: "TWO\n"}}}}}
	b.Normalize()

	merged := mergeDiffs([]Diff{a, b})
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged diff, got %d", len(merged))
	}
	if len(merged[0].Hunks) != 2 {
		t.Fatalf("expected 2 hunks carried into the merged diff, got %d", len(merged[0].Hunks))
	}
}
