package fingerprint

import (
	"testing"

	"github.com/prdoyle/patlab/pkg/patch"
)

func TestOfIsDeterministic(t *testing.T) {
	a := Of([]byte("hello"))
	b := Of([]byte("hello"))
	if a != b {
		t.Errorf("Of is not deterministic: %q != %q", a, b)
	}
	if Of([]byte("hello")) == Of([]byte("world")) {
		t.Errorf("different content produced the same fingerprint")
	}
}

func TestHunkFingerprintIgnoresPosition(t *testing.T) {
	h1 := Hunk(mkHunk(1, 1))
	h2 := Hunk(mkHunk(50, 50))
	if h1 != h2 {
		t.Errorf("hunk fingerprint should depend on content, not position: %q != %q", h1, h2)
	}
}

func mkHunk(lstart, rstart int) patch.Hunk {
	h := patch.Hunk{LStart: lstart, RStart: rstart, Lines: []patch.Line{
		{Kind: patch.KindContext, Content: "a\n"},
		{Kind: patch.KindRemove, Content: "b\n"},
		{Kind: patch.KindAdd, Content: "B\n"},
	}}
	h.Normalize()
	return h
}

func TestDiffFingerprintChangesWithHunks(t *testing.T) {
	d1 := patch.Diff{LName: "a", RName: "b", Hunks: []patch.Hunk{mkHunk(1, 1)}}
	d2 := patch.Diff{LName: "a", RName: "b"}
	if Diff(d1) == Diff(d2) {
		t.Errorf("diffs with different hunks should have different fingerprints")
	}
}
