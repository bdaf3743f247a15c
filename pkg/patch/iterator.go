package patch

// hunkLineIterator flattens a hunk into a stream where each step yields a
// pair of (left, right) lines keyed by the next line on each side. It is the
// engine that drives Diff.compose, Diff.over, shrinkwrap, and split.
//
// Grounded on original_source/patlab.py's _Hunk_Line_Iterator: lines1/lines2
// are treated as stacks (we pop from the front here instead of reversing
// first, which is equivalent).
type hunkLineIterator struct {
	lineNumber1, lineNumber2 int
	lines1, lines2           []Line
}

func newHunkLineIterator(h Hunk) *hunkLineIterator {
	return &hunkLineIterator{
		lineNumber1: h.LStart,
		lineNumber2: h.RStart,
		lines1:      matchingLines(h.Lines, KindRemove, KindContext),
		lines2:      matchingLines(h.Lines, KindAdd, KindContext),
	}
}

func matchingLines(lines []Line, kinds ...Kind) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		for _, k := range kinds {
			if l.Kind == k {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// topPair peeks at both sides without consuming. At most one of the
// returned lines is nil, unless both sides are exhausted.
func (it *hunkLineIterator) topPair() (line1, line2 *Line) {
	if len(it.lines1) > 0 {
		line1 = &it.lines1[0]
	}
	if len(it.lines2) > 0 {
		line2 = &it.lines2[0]
	}
	if line1 != nil && line2 != nil {
		if line1.Kind == KindRemove && line2.Kind != KindAdd {
			line2 = nil
		} else if line2.Kind == KindAdd && line1.Kind != KindRemove {
			line1 = nil
		}
	}
	return line1, line2
}

// popPair advances whichever side(s) are present in the current top pair,
// and advances line-number cursors independently.
func (it *hunkLineIterator) popPair() (line1, line2 *Line) {
	line1, line2 = it.topPair()
	if line1 != nil {
		it.lines1 = it.lines1[1:]
	}
	if line2 != nil {
		it.lines2 = it.lines2[1:]
	}
	next1, next2 := it.topPair()
	if next1 != nil {
		it.lineNumber1++
	}
	if next2 != nil {
		it.lineNumber2++
	}
	return line1, line2
}

// pop returns the lines that should be appended to a result hunk's line
// list to reproduce this step, collapsing a (x,x) pair that represents an
// unchanged line into a single context line.
func (it *hunkLineIterator) pop() []Line {
	l1, l2 := it.popPair()
	switch {
	case l1 != nil && l2 != nil:
		if l1.Equal(*l2) {
			if l1.IsBoth() {
				return []Line{*l1}
			}
			return []Line{{Kind: KindContext, Content: l1.Content}}
		}
		return []Line{*l1, *l2}
	case l1 != nil:
		return []Line{*l1}
	case l2 != nil:
		return []Line{*l2}
	default:
		return nil
	}
}

func (it *hunkLineIterator) moreToGo() bool {
	return len(it.lines1) > 0 || len(it.lines2) > 0
}
