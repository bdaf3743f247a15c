package patch

import (
	"fmt"
	"iter"
	"strings"
)

// Hunk is a contiguous run of lines with left/right start numbers; a single
// local edit within one file. Every field is exported and comparable so
// Diff/Patch values containing hunks can be compared directly with
// reflect.DeepEqual or go-cmp without an Equal method or exporter option.
type Hunk struct {
	LStart, RStart int
	LStop, RStop   int
	Lines          []Line
}

// NewHunk returns an empty hunk anchored at the given 1-based start lines.
func NewHunk(lstart, rstart int) Hunk {
	h := Hunk{LStart: lstart, RStart: rstart}
	h.Normalize()
	return h
}

// NumLeftLines is the count of lines present on the left (kinds '-', ' ').
func (h Hunk) NumLeftLines() int { return len(matchingLines(h.Lines, KindRemove, KindContext)) }

// NumRightLines is the count of lines present on the right (kinds '+', ' ').
func (h Hunk) NumRightLines() int { return len(matchingLines(h.Lines, KindAdd, KindContext)) }

// IsIdentity reports whether every line in the hunk is context.
func (h Hunk) IsIdentity() bool {
	for _, l := range h.Lines {
		if l.Kind != KindContext {
			return false
		}
	}
	return true
}

// groupLines re-orders lines so that within each contiguous run of
// non-context lines, all '-' precede all '+', leaving context lines in
// place. Grounded on patlab.py's Hunk._group_lines.
func groupLines(lines []Line) []Line {
	var plusBuf []Line
	result := make([]Line, 0, len(lines))
	for _, l := range lines {
		switch l.Kind {
		case KindRemove:
			result = append(result, l)
		case KindAdd:
			plusBuf = append(plusBuf, l)
		default:
			result = append(result, plusBuf...)
			result = append(result, l)
			plusBuf = nil
		}
	}
	result = append(result, plusBuf...)
	return result
}

// Normalize recomputes LStop/RStop from the current line contents and
// regroups runs of removals/additions. Must be called after any mutation.
func (h *Hunk) Normalize() *Hunk {
	h.Lines = groupLines(h.Lines)
	h.LStop = h.LStart + h.NumLeftLines()
	h.RStop = h.RStart + h.NumRightLines()
	return h
}

// trimLines removes leading context-only lines from the front of lines, up
// to a limit, returning how many were removed.
func trimLines(lines []Line, limit int) ([]Line, int) {
	run := 0
	for run < len(lines) && lines[run].Kind == KindContext {
		run++
	}
	toTrim := run - limit
	if toTrim < 1 {
		return lines, 0
	}
	return lines[toTrim:], toTrim
}

func reverseLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[len(lines)-1-i] = l
	}
	return out
}

// trimContext trims leading and trailing context runs to at most limit
// lines, advancing LStart/RStart by the number of leading context lines
// removed.
func (h *Hunk) trimContext(limit int) {
	lines := reverseLines(h.Lines)
	lines, _ = trimLines(lines, limit)
	lines = reverseLines(lines)
	lines, trimmed := trimLines(lines, limit)
	h.Lines = lines
	h.LStart += trimmed
	h.RStart += trimmed
}

// Shrinkwrap re-emits lines through the pair iterator, collapsing redundant
// (-,+) / (+,-) pairs and duplicate kept lines into single context lines,
// then trims context to at most 3 lines on each end.
func (h Hunk) Shrinkwrap() Hunk {
	result := Hunk{LStart: h.LStart, RStart: h.RStart}
	it := newHunkLineIterator(h)
	var lines []Line
	for it.moreToGo() {
		lines = append(lines, it.pop()...)
	}
	result.Lines = lines
	result.trimContext(3)
	result.Normalize()
	return result
}

// Inverse swaps LStart/RStart, inverts every line, and renormalizes.
func (h Hunk) Inverse() Hunk {
	result := Hunk{RStart: h.LStart, LStart: h.RStart}
	result.Lines = make([]Line, len(h.Lines))
	for i, l := range h.Lines {
		result.Lines[i] = l.Inverse()
	}
	result.Normalize()
	return result
}

// rangeCmp is the 1-dimensional comparator underlying Lcmp: -1 if needle is
// at or past stop, +1 if needle precedes start, else 0 (inside the range).
func rangeCmp(start, stop, needle int) int {
	switch {
	case needle < start:
		return 1
	case stop <= needle:
		return -1
	default:
		return 0
	}
}

// LcmpLine compares the hunk's left interval against a bare line number:
// -1 if n is at/after LStop, +1 if n is before LStart, 0 if n falls inside.
func (h Hunk) LcmpLine(n int) int {
	return rangeCmp(h.LStart, h.LStop, n)
}

// Lcmp compares two hunks' left intervals: 0 if they overlap, else the
// common sign of comparing other's start and stop against self.
func (h Hunk) Lcmp(other Hunk) int {
	c1 := h.LcmpLine(other.LStart)
	c2 := h.LcmpLine(other.LStop)
	if c1 == c2 {
		return c1
	}
	return 0
}

// Rlcmp compares self's right interval against other's left interval, used
// by over to detect whether other touches lines self produces.
func (h Hunk) Rlcmp(other Hunk) int {
	c1 := other.LcmpLine(h.RStart)
	c2 := other.LcmpLine(h.RStop - 1)
	if c1 == c2 {
		return c1
	}
	return 0
}

// StopLineNumbers returns (LStop, RStop).
func (h Hunk) StopLineNumbers() (int, int) { return h.LStop, h.RStop }

func (h Hunk) header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.LStart, h.NumLeftLines(), h.RStart, h.NumRightLines())
}

func (h Hunk) String() string {
	var b strings.Builder
	b.WriteString(h.header())
	b.WriteByte('\n')
	for _, l := range h.Lines {
		b.WriteString(l.headline())
		b.WriteByte('\n')
	}
	return b.String()
}

// All iterates every line in the hunk in order.
func (h Hunk) All() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for _, l := range h.Lines {
			if !yield(l) {
				return
			}
		}
	}
}

// Changes iterates only the non-context lines (removals and additions).
func (h Hunk) Changes() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for _, l := range h.Lines {
			if l.Kind == KindContext {
				continue
			}
			if !yield(l) {
				return
			}
		}
	}
}
