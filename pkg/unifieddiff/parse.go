// Package unifieddiff reads and writes the unified diff text format that
// pkg/patch's Patch/Diff/Hunk model abstracts over. Grounded on
// original_source/patlab.py's Patch.parse/Patch.__str__ and on the header
// formatting in the corpus's own anchored-diff Unified.String.
package unifieddiff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/prdoyle/patlab/pkg/patch"
)

var (
	leftHeaderRe  = regexp.MustCompile(`^--- (\S+)`)
	rightHeaderRe = regexp.MustCompile(`^\+\+\+ (\S+)`)
	hunkHeaderRe  = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	noNewlineMark = `\ No newline at end of file`
)

// Parse reads a full unified-diff text (possibly covering many files) into
// a Patch, stripping strip leading path components from each filename (the
// conventional "-p" level: strip=1 turns "a/foo.go" into "foo.go").
func Parse(data []byte, strip int) (patch.Patch, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var p patch.Patch
	i := 0
	for i < len(lines) {
		lm := leftHeaderRe.FindStringSubmatch(lines[i])
		if lm == nil {
			i++
			continue
		}
		if i+1 >= len(lines) {
			return patch.Patch{}, &patch.ParseError{Header: lines[i]}
		}
		rm := rightHeaderRe.FindStringSubmatch(lines[i+1])
		if rm == nil {
			return patch.Patch{}, &patch.ParseError{Header: lines[i+1]}
		}
		d := patch.Diff{LName: stripPath(lm[1], strip), RName: stripPath(rm[1], strip)}
		i += 2

		for i < len(lines) {
			hm := hunkHeaderRe.FindStringSubmatch(lines[i])
			if hm == nil {
				break
			}
			i++
			lstart := atoi(hm[1])
			lcount := atoiDefault(hm[2], 1)
			rstart := atoi(hm[3])
			rcount := atoiDefault(hm[4], 1)
			h := patch.Hunk{LStart: lstart, RStart: rstart}

			left, right := 0, 0
			for i < len(lines) {
				line := lines[i]
				if line == noNewlineMark {
					stripTrailingNewline(&h)
					i++
					continue
				}
				if left >= lcount && right >= rcount {
					break
				}
				if len(line) == 0 {
					return patch.Patch{}, &patch.UnsupportedLineError{Line: line}
				}
				kind := patch.Kind(line[0])
				content := line[1:] + "\n"
				switch kind {
				case patch.KindRemove:
					left++
				case patch.KindAdd:
					right++
				case patch.KindContext:
					left++
					right++
				default:
					return patch.Patch{}, &patch.UnsupportedLineError{Line: line}
				}
				h.Lines = append(h.Lines, patch.Line{Kind: kind, Content: content})
				i++
			}
			h.Normalize()
			d.Hunks = append(d.Hunks, h)
		}
		d.Normalize()
		p.Diffs = append(p.Diffs, d)
	}
	return p, nil
}

// stripTrailingNewline removes the newline we optimistically appended to the
// most recently parsed line, since a following "\ No newline" marker says
// the source file itself had none there.
func stripTrailingNewline(h *patch.Hunk) {
	if n := len(h.Lines); n > 0 {
		h.Lines[n-1].Content = strings.TrimSuffix(h.Lines[n-1].Content, "\n")
	}
}

func stripPath(name string, strip int) string {
	if strip <= 0 || name == "/dev/null" {
		return name
	}
	parts := strings.Split(name, "/")
	if strip >= len(parts) {
		return parts[len(parts)-1]
	}
	return strings.Join(parts[strip:], "/")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}

