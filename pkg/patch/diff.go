package patch

import (
	"sort"
	"strings"
)

// Diff is an ordered sequence of hunks against a single file, identified by
// its left (pre-image) and right (post-image) paths.
type Diff struct {
	LName, RName string
	Hunks        []Hunk
}

// NewDiff builds a diff between the given paths with no hunks (identity).
func NewDiff(lname, rname string) Diff {
	return Diff{LName: lname, RName: rname}
}

// Normalize sorts hunks by left position and merges any that now touch or
// overlap. Diffs returned by compose/over/parsing should already satisfy
// this, but callers that build hunks by hand should call it once before use.
func (d *Diff) Normalize() *Diff {
	sort.Slice(d.Hunks, func(i, j int) bool { return d.Hunks[i].LStart < d.Hunks[j].LStart })
	for i := range d.Hunks {
		d.Hunks[i].Normalize()
	}
	merged := d.Hunks[:0:0]
	for _, h := range d.Hunks {
		if n := len(merged); n > 0 && h.LStart <= merged[n-1].LStop {
			prev := merged[n-1]
			prev.Lines = append(prev.Lines, h.Lines...)
			prev.Normalize()
			merged[n-1] = prev
			continue
		}
		merged = append(merged, h)
	}
	d.Hunks = merged
	return d
}

// IsIdentity reports whether every hunk is pure context (or there are none).
func (d Diff) IsIdentity() bool {
	for _, h := range d.Hunks {
		if !h.IsIdentity() {
			return false
		}
	}
	return true
}

// Shrinkwrapped returns a copy with every hunk shrinkwrapped and hunks that
// became pure context dropped.
func (d Diff) Shrinkwrapped() Diff {
	result := Diff{LName: d.LName, RName: d.RName}
	for _, h := range d.Hunks {
		sw := h.Shrinkwrap()
		if !sw.IsIdentity() {
			result.Hunks = append(result.Hunks, sw)
		}
	}
	return result
}

// Inverse swaps LName/RName and inverts every hunk.
func (d Diff) Inverse() Diff {
	result := Diff{LName: d.RName, RName: d.LName}
	result.Hunks = make([]Hunk, len(d.Hunks))
	for i, h := range d.Hunks {
		result.Hunks[i] = h.Inverse()
	}
	return result
}

func (d Diff) String() string {
	var b strings.Builder
	b.WriteString("--- " + d.LName + "\n")
	b.WriteString("+++ " + d.RName + "\n")
	for _, h := range d.Hunks {
		b.WriteString(h.String())
	}
	return b.String()
}

func netChange(h Hunk) int { return (h.RStop - h.RStart) - (h.LStop - h.LStart) }

func checkNames(left, right string) error {
	if left != "" && right != "" && left != right {
		return &MismatchedFilenameError{Left: left, Right: right}
	}
	return nil
}

// Compose computes the diff equivalent to applying d then next in sequence:
// d.RName must agree with next.LName. Grounded on patlab.py's Diff.compose,
// which walks both hunk lists keyed by the shared "middle" file's line
// numbers (d's right numbering is next's left numbering).
func (d Diff) Compose(next Diff) (Diff, error) {
	if err := checkNames(d.RName, next.LName); err != nil {
		return Diff{}, err
	}
	hunks, err := composeHunks(d.Hunks, next.Hunks)
	if err != nil {
		return Diff{}, err
	}
	result := Diff{LName: d.LName, RName: next.RName, Hunks: hunks}
	result.Normalize()
	return result, nil
}

func composeHunks(aHunks, bHunks []Hunk) ([]Hunk, error) {
	var result []Hunk
	var aShift, bShift int
	i, j := 0, 0
	for i < len(aHunks) || j < len(bHunks) {
		switch {
		case i >= len(aHunks):
			h := bHunks[j]
			result = append(result, shiftHunk(h, -aShift, 0))
			bShift += netChange(h)
			j++
		case j >= len(bHunks):
			h := aHunks[i]
			result = append(result, shiftHunk(h, 0, bShift))
			aShift += netChange(h)
			i++
		case aHunks[i].RStop <= bHunks[j].LStart:
			h := aHunks[i]
			result = append(result, shiftHunk(h, 0, bShift))
			aShift += netChange(h)
			i++
		case bHunks[j].LStop <= aHunks[i].RStart:
			h := bHunks[j]
			result = append(result, shiftHunk(h, -aShift, 0))
			bShift += netChange(h)
			j++
		default:
			lines, err := combineComposeOverlap(aHunks[i], bHunks[j])
			if err != nil {
				return nil, err
			}
			// Anchor at whichever hunk starts first on the shared middle axis.
			m := min(aHunks[i].RStart, bHunks[j].LStart)
			merged := Hunk{LStart: m - aShift, RStart: m + bShift, Lines: lines}
			merged.Normalize()
			result = append(result, merged)
			aShift += netChange(aHunks[i])
			bShift += netChange(bHunks[j])
			i++
			j++
		}
	}
	return result, nil
}

// shiftHunk translates a pass-through hunk's anchors: dl shifts LStart (used
// when skipping past hunks from the other operand that preceded it on the
// shared axis), dr shifts RStart symmetrically.
func shiftHunk(h Hunk, dl, dr int) Hunk {
	h.LStart += dl
	h.RStart += dr
	h.Normalize()
	return h
}

// combineComposeOverlap merges two hunks whose connecting ranges (a's right,
// b's left) intersect, by walking a's hunk-internal iterator (keyed by its
// right/"middle" counter) alongside b's (keyed by its left/"middle" counter).
func combineComposeOverlap(a, b Hunk) ([]Line, error) {
	aIt := newHunkLineIterator(a)
	bIt := newHunkLineIterator(b)
	overlapStart := max(a.RStart, b.LStart)
	overlapEnd := min(a.RStop, b.LStop)

	var out []Line
	for aIt.moreToGo() && aIt.lineNumber2 < overlapStart {
		out = append(out, aIt.pop()...)
	}
	for bIt.moreToGo() && bIt.lineNumber1 < overlapStart {
		out = append(out, bIt.pop()...)
	}
	for aIt.moreToGo() && bIt.moreToGo() && aIt.lineNumber2 < overlapEnd && bIt.lineNumber1 < overlapEnd {
		aLeft, aRight := aIt.topPair()
		if aRight == nil {
			// a deletes without producing a middle line; b never sees it.
			l1, _ := aIt.popPair()
			out = append(out, *l1)
			continue
		}
		bLeft, bRight := bIt.topPair()
		if bLeft == nil {
			// b inserts a line a never produced.
			_, l2 := bIt.popPair()
			out = append(out, *l2)
			continue
		}
		_, aRight2 := aIt.popPair()
		bLeft2, bRight2 := bIt.popPair()
		if !aRight2.Equal(*bLeft2) {
			return nil, &IncompatibleChangeToSameLineError{ChangeToSameLineError{
				LeftHunk: a, RightHunk: b, LeftLine: *aRight2, RightLine: *bLeft2,
			}}
		}
		switch {
		case aLeft == nil && bRight == nil:
			// inserted by a, immediately removed by b: cancels out.
		case aLeft == nil:
			out = append(out, Line{Kind: KindAdd, Content: bRight2.Content})
		case bRight == nil:
			out = append(out, Line{Kind: KindRemove, Content: aLeft.Content})
		case aLeft.Content == bRight2.Content:
			out = append(out, Line{Kind: KindContext, Content: aLeft.Content})
		default:
			out = append(out, Line{Kind: KindRemove, Content: aLeft.Content})
			out = append(out, Line{Kind: KindAdd, Content: bRight2.Content})
		}
	}
	for aIt.moreToGo() {
		out = append(out, aIt.pop()...)
	}
	for bIt.moreToGo() {
		out = append(out, bIt.pop()...)
	}
	return out, nil
}

// Over rebases d so that it applies to other's output instead of other's
// input: both d and other must share a common ancestor (their left
// numbering). Grounded on patlab.py's Diff.over, the three-way merge at the
// heart of sink/float/stack rebasing.
func (d Diff) Over(other Diff) (Diff, error) {
	if err := checkNames(d.LName, other.LName); err != nil {
		return Diff{}, err
	}
	hunks, err := overHunks(d.Hunks, other.Hunks)
	if err != nil {
		return Diff{}, err
	}
	result := Diff{LName: other.RName, RName: d.RName, Hunks: hunks}
	result.Normalize()
	return result, nil
}

// Under is the mirror of Over for diffs sharing a common descendant (their
// right numbering) instead of a common ancestor: it rebases d, which
// currently ends where other ends, so that it applies before other instead.
// Defined as Over conjugated through Inverse, so it inherits Over's overlap
// handling and ChangeToSameLineError detection without duplicating them.
// Grounded on the stack-reordering formula `A.under(B)`, the dual half of
// `B.over(A)` used together to swap the order of two sequential patches.
func (d Diff) Under(other Diff) (Diff, error) {
	result, err := d.Inverse().Over(other.Inverse())
	if err != nil {
		return Diff{}, err
	}
	return result.Inverse(), nil
}

func overHunks(aHunks, bHunks []Hunk) ([]Hunk, error) {
	var result []Hunk
	var bShift int
	i, j := 0, 0
	for i < len(aHunks) || j < len(bHunks) {
		switch {
		case i >= len(aHunks):
			bShift += netChange(bHunks[j])
			j++
		case j >= len(bHunks):
			h := aHunks[i]
			result = append(result, shiftHunk(h, bShift, bShift))
			i++
		case aHunks[i].LStop <= bHunks[j].LStart:
			h := aHunks[i]
			result = append(result, shiftHunk(h, bShift, bShift))
			i++
		case bHunks[j].LStop <= aHunks[i].LStart:
			bShift += netChange(bHunks[j])
			j++
		default:
			lines, err := combineOverOverlap(aHunks[i], bHunks[j])
			if err != nil {
				return nil, err
			}
			if len(lines) > 0 {
				merged := Hunk{LStart: aHunks[i].LStart + bShift, RStart: aHunks[i].RStart + bShift, Lines: lines}
				merged.Normalize()
				result = append(result, merged)
			}
			bShift += netChange(bHunks[j])
			i++
			j++
		}
	}
	return result, nil
}

// combineOverOverlap merges two hunks that both modify the same ancestor
// range, walking each hunk's own internal iterator by its left (ancestor)
// counter. Lines only one side touches pass through (a's edits replayed
// verbatim; b's edits are dropped since they're already baked into the base
// the result applies to). Lines both sides touch must agree or this
// returns a ChangeToSameLineError.
func combineOverOverlap(a, b Hunk) ([]Line, error) {
	aIt := newHunkLineIterator(a)
	bIt := newHunkLineIterator(b)
	overlapStart := max(a.LStart, b.LStart)
	overlapEnd := min(a.LStop, b.LStop)

	var out []Line
	for aIt.moreToGo() && aIt.lineNumber1 < overlapStart {
		out = append(out, aIt.pop()...)
	}
	for bIt.moreToGo() && bIt.lineNumber1 < overlapStart {
		bIt.pop() // b's exclusive lead-in is already part of the base; drop it.
	}
	for aIt.moreToGo() && bIt.moreToGo() && aIt.lineNumber1 < overlapEnd && bIt.lineNumber1 < overlapEnd {
		aLeft, aRight := aIt.topPair()
		if aLeft == nil {
			// a's pure insertion, not anchored to an ancestor line b shares.
			_, l2 := aIt.popPair()
			out = append(out, *l2)
			continue
		}
		bLeft, bRight := bIt.topPair()
		if bLeft == nil {
			// b's pure insertion: already in the base, nothing to replay.
			bIt.popPair()
			continue
		}
		aLeft2, aRight2 := aIt.popPair()
		_, bRight2 := bIt.popPair()
		aChanged := aLeft2.Kind == KindRemove
		bChanged := bLeft.Kind == KindRemove
		switch {
		case !aChanged && !bChanged:
			out = append(out, Line{Kind: KindContext, Content: aLeft2.Content})
		case aChanged && !bChanged:
			if aRight2 == nil {
				out = append(out, Line{Kind: KindRemove, Content: aLeft2.Content})
			} else {
				out = append(out, Line{Kind: KindRemove, Content: aLeft2.Content})
				out = append(out, Line{Kind: KindAdd, Content: aRight2.Content})
			}
		case !aChanged && bChanged:
			// b already removed/replaced this line in the base; nothing left
			// for the result to do since the base already reflects it.
		default:
			aIsDelete := aRight2 == nil
			bIsDelete := bRight == nil
			switch {
			case aIsDelete && bIsDelete:
				// both delete: already gone from the base.
			case aIsDelete != bIsDelete:
				return nil, &ChangeToSameLineError{LeftHunk: a, RightHunk: b, LeftLine: aLeft2, RightLine: *bLeft}
			case aRight2.Content == bRight2.Content:
				// converge: already reflected in the base.
			default:
				return nil, &ChangeToSameLineError{LeftHunk: a, RightHunk: b, LeftLine: *aRight2, RightLine: *bRight2}
			}
		}
	}
	for aIt.moreToGo() {
		out = append(out, aIt.pop()...)
	}
	for bIt.moreToGo() {
		bIt.pop()
	}
	return out, nil
}

// Split partitions d into the part entirely before line n (left numbering)
// and the part at or after it, such that composing the two reproduces d.
func (d Diff) Split(n int) (Diff, Diff, error) {
	var before, after []Hunk
	claims := 0
	for _, h := range d.Hunks {
		switch h.LcmpLine(n) {
		case 1:
			after = append(after, h)
		case -1:
			before = append(before, h)
		default:
			claims++
			bh, ah, err := h.splitAt(n)
			if err != nil {
				return Diff{}, Diff{}, err
			}
			if len(bh.Lines) > 0 {
				before = append(before, bh)
			}
			if len(ah.Lines) > 0 {
				after = append(after, ah)
			}
		}
	}
	if claims > 1 {
		return Diff{}, Diff{}, &AmbiguousLineNumberError{LineNumber: n}
	}
	bd := Diff{LName: d.LName, RName: d.RName, Hunks: before}
	// after applies to before's output, so its left numbering is rederived
	// from its (unchanged) right numbering.
	ad := Diff{LName: d.LName, RName: d.RName, Hunks: fixLeft(after)}
	return bd, ad, nil
}

// splitAt divides h at ancestor line n into a before-hunk and after-hunk.
func (h Hunk) splitAt(n int) (Hunk, Hunk, error) {
	it := newHunkLineIterator(h)
	var beforeLines, afterLines []Line
	for it.moreToGo() {
		ln := it.lineNumber1
		lines := it.pop()
		if ln < n {
			beforeLines = append(beforeLines, lines...)
		} else {
			afterLines = append(afterLines, lines...)
		}
	}
	before := Hunk{LStart: h.LStart, RStart: h.RStart, Lines: beforeLines}
	before.Normalize()
	after := Hunk{LStart: n, RStart: before.RStop, Lines: afterLines}
	after.Normalize()
	return before, after, nil
}
