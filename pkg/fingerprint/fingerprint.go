// Package fingerprint gives patches, diffs, and hunks short, stable,
// human-typeable names so a session can refer back to one without a
// database. Grounded on the teacher's own content-addressed ID scheme
// (sha256 truncated to 5 bytes, cford32-encoded) used there to name
// uploaded diffs.
package fingerprint

import (
	"crypto/sha256"

	"github.com/thehowl/cford32"

	"github.com/prdoyle/patlab/pkg/patch"
)

// Of returns a short fingerprint for arbitrary content.
func Of(content []byte) string {
	sum := sha256.Sum256(content)
	return cford32.EncodeToStringLower(sum[:5])
}

// Hunk fingerprints a hunk by its line kinds and content only, not its
// header or position, so the same edit keeps the same fingerprint across
// rebases.
func Hunk(h patch.Hunk) string {
	var buf []byte
	for l := range h.All() {
		buf = append(buf, byte(l.Kind))
		buf = append(buf, l.Content...)
	}
	return Of(buf)
}

// Diff fingerprints a diff by its names and the fingerprints of its hunks.
func Diff(d patch.Diff) string {
	buf := []byte(d.LName + "\x00" + d.RName + "\x00")
	for _, h := range d.Hunks {
		buf = append(buf, Hunk(h)...)
	}
	return Of(buf)
}

// Patch fingerprints a patch by the fingerprints of its diffs.
func Patch(p patch.Patch) string {
	var buf []byte
	for _, d := range p.Diffs {
		buf = append(buf, Diff(d)...)
	}
	return Of(buf)
}
