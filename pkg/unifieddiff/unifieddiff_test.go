package unifieddiff

import (
	"errors"
	"testing"

	"github.com/prdoyle/patlab/pkg/patch"
)

const sample = `--- a/foo.txt
+++ b/foo.txt
@@ -1,4 +1,4 @@
 one
-two
+TWO
 three
 four
`

func TestParseBasic(t *testing.T) {
	p, err := Parse([]byte(sample), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Diffs) != 1 {
		t.Fatalf("expected 1 diff, got %d", len(p.Diffs))
	}
	d := p.Diffs[0]
	if d.LName != "foo.txt" || d.RName != "foo.txt" {
		t.Errorf("names = %s/%s, want foo.txt/foo.txt (strip=1)", d.LName, d.RName)
	}
	if len(d.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(d.Hunks))
	}
	h := d.Hunks[0]
	if h.LStart != 1 || h.RStart != 1 {
		t.Errorf("hunk anchors = %d/%d, want 1/1", h.LStart, h.RStart)
	}
	if len(h.Lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(h.Lines))
	}
}

func TestParseNoStrip(t *testing.T) {
	p, err := Parse([]byte(sample), 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Diffs[0].LName != "a/foo.txt" {
		t.Errorf("LName = %s, want a/foo.txt when strip=0", p.Diffs[0].LName)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	p, err := Parse([]byte(sample), 1)
	if err != nil {
		t.Fatal(err)
	}
	out := Write(p, "a/", "b/")
	reparsed, err := Parse([]byte(out), 1)
	if err != nil {
		t.Fatalf("re-parsing written output failed: %v", err)
	}
	if len(reparsed.Diffs) != len(p.Diffs) {
		t.Fatalf("round-tripped diff count = %d, want %d", len(reparsed.Diffs), len(p.Diffs))
	}
	orig := p.Diffs[0]
	got := reparsed.Diffs[0]
	if len(got.Hunks) != len(orig.Hunks) || len(got.Hunks[0].Lines) != len(orig.Hunks[0].Lines) {
		t.Errorf("round trip lost hunk content: got %+v, want %+v", got, orig)
	}
}

func TestNoNewlineAtEndOfHunk(t *testing.T) {
	const src = `--- a/foo.txt
+++ b/foo.txt
@@ -1,2 +1,2 @@
 one
-two
+TWO
\ No newline at end of file
`
	p, err := Parse([]byte(src), 1)
	if err != nil {
		t.Fatal(err)
	}
	lines := p.Diffs[0].Hunks[0].Lines
	last := lines[len(lines)-1]
	if last.Kind != patch.KindAdd || last.Content != "TWO" {
		t.Fatalf("last line = %+v, want unterminated add of TWO", last)
	}

	out := Write(p, "a/", "b/")
	if out != src {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", out, src)
	}
}

func TestNoNewlineMidHunk(t *testing.T) {
	const src = `--- a/foo.txt
+++ b/foo.txt
@@ -1,2 +1,3 @@
 one
-two
\ No newline at end of file
+TWO
+three
`
	p, err := Parse([]byte(src), 1)
	if err != nil {
		t.Fatal(err)
	}
	lines := p.Diffs[0].Hunks[0].Lines
	var removed patch.Line
	for _, l := range lines {
		if l.Kind == patch.KindRemove {
			removed = l
		}
	}
	if removed.Content != "two" {
		t.Fatalf("removed line = %+v, want unterminated two", removed)
	}

	out := Write(p, "a/", "b/")
	if out != src {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", out, src)
	}
}

func TestParseMalformedHeader(t *testing.T) {
	bad := "--- a/foo.txt\n"
	_, err := Parse([]byte(bad), 1)
	if err == nil {
		t.Fatal("expected an error for a missing +++ header")
	}
	var perr *patch.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("expected *patch.ParseError, got %T", err)
	}
}
