package patch

import "testing"

func TestDiffTextIdenticalIsEmpty(t *testing.T) {
	text := []byte("a\nb\nc\n")
	d := DiffText("f", "f", text, text, 3)
	if len(d.Hunks) != 0 {
		t.Errorf("expected no hunks for identical input, got %d", len(d.Hunks))
	}
}

func TestDiffTextSingleLineChange(t *testing.T) {
	old := []byte("one\ntwo\nthree\n")
	new := []byte("one\nTWO\nthree\n")
	d := DiffText("f", "f", old, new, 3)
	if len(d.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(d.Hunks))
	}
	h := d.Hunks[0]
	var removed, added []string
	for l := range h.Changes() {
		if l.Kind == KindRemove {
			removed = append(removed, l.Content)
		} else {
			added = append(added, l.Content)
		}
	}
	if len(removed) != 1 || removed[0] != "two\n" {
		t.Errorf("removed = %v, want [two\\n]", removed)
	}
	if len(added) != 1 || added[0] != "TWO\n" {
		t.Errorf("added = %v, want [TWO\\n]", added)
	}
}

func TestDiffTextAppliesCleanly(t *testing.T) {
	old := []byte("one\ntwo\nthree\nfour\nfive\n")
	new := []byte("one\nTWO\nthree\nfour\nFIVE\n")
	d := DiffText("f", "f", old, new, 1)
	// Composing the forward diff with its own inverse should be identity,
	// regardless of how many hunks the anchored-diff splits the edit into.
	got, err := d.Compose(d.Inverse())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Shrinkwrapped().IsIdentity() {
		t.Errorf("DiffText output composed with its inverse is not identity: %v", got)
	}
}
