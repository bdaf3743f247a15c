package unifieddiff

import (
	"fmt"
	"strings"

	"github.com/prdoyle/patlab/pkg/patch"
)

// Write renders p as unified-diff text. If prefixL/prefixR are non-empty
// they're prepended to each diff's names (conventionally "a/" and "b/"),
// the mirror image of Parse's strip.
func Write(p patch.Patch, prefixL, prefixR string) string {
	var b strings.Builder
	for _, d := range p.Diffs {
		writeDiff(&b, d, prefixL, prefixR)
	}
	return b.String()
}

func writeDiff(b *strings.Builder, d patch.Diff, prefixL, prefixR string) {
	fmt.Fprintf(b, "--- %s\n", prefixL+d.LName)
	fmt.Fprintf(b, "+++ %s\n", prefixR+d.RName)
	for _, h := range d.Hunks {
		writeHunk(b, h)
	}
}

func writeHunk(b *strings.Builder, h patch.Hunk) {
	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", h.LStart, h.NumLeftLines(), h.RStart, h.NumRightLines())
	for _, l := range h.Lines {
		content := l.Content
		hasNewline := strings.HasSuffix(content, "\n")
		content = strings.TrimSuffix(content, "\n")
		b.WriteByte(byte(l.Kind))
		b.WriteString(content)
		b.WriteByte('\n')
		if !hasNewline {
			b.WriteString(noNewlineMark)
			b.WriteByte('\n')
		}
	}
}
