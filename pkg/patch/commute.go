package patch

import "go.uber.org/multierr"

// Commute swaps the application order of two sequential diffs: b applies
// first (producing the file b.RName == a.LName), then a applies second. It
// returns (aPrime, bPrime) such that applying aPrime then bPrime has the
// same effect as applying b then a, but with aPrime now playing the role
// formerly played by b. This is the primitive behind sinking and floating a
// patch within a stack. Disjoint hunks take a pure-shift fast path; hunks
// whose ranges overlap in the shared coordinate (typically through shared
// context, not a shared changed line) are merged by combineCommuteOverlap,
// which raises a ChangeToSameLineError only when both sides actually change
// the identical line — the same conflict Over raises, since spec-wise a
// commute failure and an over failure are the same kind of dependency.
func (b Diff) Commute(a Diff) (aPrime, bPrime Diff, err error) {
	if err := checkNames(b.RName, a.LName); err != nil {
		return Diff{}, Diff{}, err
	}
	aPrimeHunks, bPrimeHunks, err := commuteHunks(b.Hunks, a.Hunks)
	if err != nil {
		return Diff{}, Diff{}, err
	}
	aPrime = Diff{LName: b.LName, RName: a.LName, Hunks: aPrimeHunks}
	aPrime.Normalize()
	bPrime = Diff{LName: a.LName, RName: a.RName, Hunks: bPrimeHunks}
	bPrime.Normalize()
	return aPrime, bPrime, nil
}

// commuteHunks partitions bHunks and aHunks (in the shared Y coordinate)
// back into their own buckets, each translated by how much the other side's
// earlier hunks shift it once the application order is reversed. Disjoint
// hunks are pure-shifted (the fast path); overlapping ones are merged and
// redistributed by combineCommuteOverlap.
func commuteHunks(bHunks, aHunks []Hunk) (aPrimeHunks, bPrimeHunks []Hunk, err error) {
	var aShift, bShift int
	i, j := 0, 0
	for i < len(bHunks) || j < len(aHunks) {
		switch {
		case i >= len(bHunks):
			h := aHunks[j]
			aPrimeHunks = append(aPrimeHunks, shiftHunk(h, -aShift, -aShift))
			bShift += netChange(h)
			j++
		case j >= len(aHunks):
			h := bHunks[i]
			bPrimeHunks = append(bPrimeHunks, shiftHunk(h, bShift, bShift))
			aShift += netChange(h)
			i++
		case bHunks[i].RStop <= aHunks[j].LStart:
			h := bHunks[i]
			bPrimeHunks = append(bPrimeHunks, shiftHunk(h, bShift, bShift))
			aShift += netChange(h)
			i++
		case aHunks[j].LStop <= bHunks[i].RStart:
			h := aHunks[j]
			aPrimeHunks = append(aPrimeHunks, shiftHunk(h, -aShift, -aShift))
			bShift += netChange(h)
			j++
		default:
			bLines, aLines, merr := combineCommuteOverlap(bHunks[i], aHunks[j])
			if merr != nil {
				return nil, nil, merr
			}
			if len(bLines) > 0 {
				bPrime := Hunk{LStart: bHunks[i].LStart + bShift, RStart: bHunks[i].RStart + bShift, Lines: bLines}
				bPrime.Normalize()
				bPrimeHunks = append(bPrimeHunks, bPrime)
			}
			if len(aLines) > 0 {
				aPrime := Hunk{LStart: aHunks[j].LStart - aShift, RStart: aHunks[j].RStart - aShift, Lines: aLines}
				aPrime.Normalize()
				aPrimeHunks = append(aPrimeHunks, aPrime)
			}
			aShift += netChange(bHunks[i])
			bShift += netChange(aHunks[j])
			i++
			j++
		}
	}
	return aPrimeHunks, bPrimeHunks, nil
}

// combineCommuteOverlap redistributes the edits of b (applies first, X->Y)
// and a (applies second, Y->Z) across their overlapping Y range into bPrime
// (X->Y') and aPrime (Y'->Z), which swap roles: aPrime now runs first, on
// the untouched base, and bPrime runs second, on aPrime's output. A line
// only b changes keeps that edit in bPrime but must appear in aPrime as
// context carrying the *pre*-edit value, since aPrime runs before it now.
// Symmetrically, a line only a changes keeps that edit in aPrime but must
// appear in bPrime as context carrying a's *post*-edit value, since bPrime
// now runs after it. Untouched lines become identical context on both
// sides, and a line both change is a genuine dependency that blocks the
// commute, reported as a ChangeToSameLineError exactly as Over would.
func combineCommuteOverlap(b, a Hunk) (bLines, aLines []Line, err error) {
	bIt := newHunkLineIterator(b)
	aIt := newHunkLineIterator(a)
	overlapStart := max(b.RStart, a.LStart)
	overlapEnd := min(b.RStop, a.LStop)

	for bIt.moreToGo() && bIt.lineNumber2 < overlapStart {
		bLines = append(bLines, bIt.pop()...)
	}
	for aIt.moreToGo() && aIt.lineNumber1 < overlapStart {
		aLines = append(aLines, aIt.pop()...)
	}
	for bIt.moreToGo() && aIt.moreToGo() && bIt.lineNumber2 < overlapEnd && aIt.lineNumber1 < overlapEnd {
		bLeft, bRight := bIt.topPair()
		if bRight == nil {
			// b deletes without producing a middle line; a never sees it.
			l1, _ := bIt.popPair()
			bLines = append(bLines, *l1)
			continue
		}
		aLeft, aRight := aIt.topPair()
		if aLeft == nil {
			// a inserts a line that never came from b's output.
			_, l2 := aIt.popPair()
			aLines = append(aLines, *l2)
			continue
		}
		_, bRight2 := bIt.popPair()
		aLeft2, aRight2 := aIt.popPair()
		if !bRight2.Equal(*aLeft2) {
			return nil, nil, &IncompatibleChangeToSameLineError{ChangeToSameLineError{
				LeftHunk: b, RightHunk: a, LeftLine: *bRight2, RightLine: *aLeft2,
			}}
		}
		bChanged := bLeft == nil || bLeft.Content != bRight2.Content
		aChanged := aRight == nil || aLeft2.Content != aRight2.Content
		switch {
		case !bChanged && !aChanged:
			bLines = append(bLines, Line{Kind: KindContext, Content: bRight2.Content})
			aLines = append(aLines, Line{Kind: KindContext, Content: bRight2.Content})
		case bChanged && !aChanged:
			if bLeft != nil {
				bLines = append(bLines, Line{Kind: KindRemove, Content: bLeft.Content})
				aLines = append(aLines, Line{Kind: KindContext, Content: bLeft.Content})
			}
			bLines = append(bLines, Line{Kind: KindAdd, Content: bRight2.Content})
		case !bChanged && aChanged:
			aLines = append(aLines, Line{Kind: KindRemove, Content: aLeft2.Content})
			if aRight != nil {
				aLines = append(aLines, Line{Kind: KindAdd, Content: aRight2.Content})
				bLines = append(bLines, Line{Kind: KindContext, Content: aRight2.Content})
			}
		default:
			leftLine := bRight2
			if bLeft != nil {
				leftLine = bLeft
			}
			rightLine := aLeft2
			if aRight2 != nil {
				rightLine = aRight2
			}
			return nil, nil, &ChangeToSameLineError{LeftHunk: b, RightHunk: a, LeftLine: *leftLine, RightLine: *rightLine}
		}
	}
	for bIt.moreToGo() {
		bLines = append(bLines, bIt.pop()...)
	}
	for aIt.moreToGo() {
		aLines = append(aLines, aIt.pop()...)
	}
	return bLines, aLines, nil
}

// Commute swaps the application order of two sequential patches, the
// Patch-level lift of Diff.Commute: diffs only one side touches pass
// through untouched (ordering doesn't matter when they share no file).
func (b Patch) Commute(a Patch) (aPrime, bPrime Patch, err error) {
	byLeft := diffByLeft(a.Diffs)
	matchedA := make(map[string]bool, len(a.Diffs))
	var errs error
	for _, bd := range b.Diffs {
		ad, ok := byLeft[bd.RName]
		if !ok {
			bPrime.Diffs = append(bPrime.Diffs, bd)
			continue
		}
		matchedA[ad.LName] = true
		ap, bp, cerr := bd.Commute(ad)
		if cerr != nil {
			errs = multierr.Append(errs, cerr)
			continue
		}
		aPrime.Diffs = append(aPrime.Diffs, ap)
		bPrime.Diffs = append(bPrime.Diffs, bp)
	}
	for _, ad := range a.Diffs {
		if !matchedA[ad.LName] {
			aPrime.Diffs = append(aPrime.Diffs, ad)
		}
	}
	if errs != nil {
		return Patch{}, Patch{}, errs
	}
	aPrime.Normalize()
	bPrime.Normalize()
	return aPrime, bPrime, nil
}
