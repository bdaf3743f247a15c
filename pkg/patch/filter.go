package patch

import (
	"errors"
	"path/filepath"
	"regexp"
)

// Grep partitions p's diffs into those whose LName or RName match re and
// those that don't.
func (p Patch) Grep(re *regexp.Regexp) (matched, unmatched Patch) {
	for _, d := range p.Diffs {
		if re.MatchString(d.LName) || re.MatchString(d.RName) {
			matched.Diffs = append(matched.Diffs, d)
		} else {
			unmatched.Diffs = append(unmatched.Diffs, d)
		}
	}
	return matched, unmatched
}

// Glob partitions p's diffs by shell glob pattern, same semantics as Grep.
func (p Patch) Glob(pattern string) (matched, unmatched Patch, err error) {
	for _, d := range p.Diffs {
		lok, lerr := filepath.Match(pattern, d.LName)
		if lerr != nil {
			return Patch{}, Patch{}, lerr
		}
		rok, rerr := filepath.Match(pattern, d.RName)
		if rerr != nil {
			return Patch{}, Patch{}, rerr
		}
		if lok || rok {
			matched.Diffs = append(matched.Diffs, d)
		} else {
			unmatched.Diffs = append(unmatched.Diffs, d)
		}
	}
	return matched, unmatched, nil
}

// HunksWithConflicts extracts from p every hunk that would conflict with
// other (per Over), returning the conflicting hunks as a separate patch and
// the remainder of p with those hunks removed. Grounded on
// original_source/patlab.py's Hunks_With_Conflicts: Over is attempted
// repeatedly, and each time it raises a ChangeToSameLineError the offending
// hunk is carved out of its diff and the attempt retried, until Over
// succeeds clean. Per §4.8's hunk-filter convention (clean goes on top of
// conflicts), the clean remainder's left-line numbers are rederived once
// every conflicting hunk has been pulled out of it.
func HunksWithConflicts(p, other Patch) (conflicts, remainder Patch, err error) {
	remainder = p
	byLeft := diffByLeft(other.Diffs)
	var cutDiffs []Diff
	for {
		progress := false
		var nextDiffs []Diff
		for _, d := range remainder.Diffs {
			otherD, ok := byLeft[d.LName]
			if !ok {
				nextDiffs = append(nextDiffs, d)
				continue
			}
			_, overErr := d.Over(otherD)
			var conflictErr *ChangeToSameLineError
			if overErr == nil {
				nextDiffs = append(nextDiffs, d)
				continue
			}
			if !errors.As(overErr, &conflictErr) {
				return Patch{}, Patch{}, overErr
			}
			cut, rest, splitErr := extractHunk(d, conflictErr.LeftHunk)
			if splitErr != nil {
				return Patch{}, Patch{}, splitErr
			}
			cutDiffs = append(cutDiffs, cut)
			rest.Hunks = fixLeft(rest.Hunks)
			if len(rest.Hunks) > 0 {
				nextDiffs = append(nextDiffs, rest)
			}
			progress = true
		}
		remainder.Diffs = nextDiffs
		if !progress {
			break
		}
	}
	conflicts.Diffs = mergeDiffs(cutDiffs)
	remainder.Normalize()
	return conflicts, remainder, nil
}

// mergeDiffs combines diffs that share an (LName, RName) pair, concatenating
// their hunks, so repeated cuts out of the same file collapse into one diff
// instead of piling up as duplicates with the same name.
func mergeDiffs(diffs []Diff) []Diff {
	byName := make(map[[2]string]*Diff, len(diffs))
	var order [][2]string
	for _, d := range diffs {
		key := [2]string{d.LName, d.RName}
		if existing, ok := byName[key]; ok {
			existing.Hunks = append(existing.Hunks, d.Hunks...)
			continue
		}
		dCopy := d
		byName[key] = &dCopy
		order = append(order, key)
	}
	result := make([]Diff, 0, len(order))
	for _, key := range order {
		d := *byName[key]
		d.Normalize()
		result = append(result, d)
	}
	return result
}

// fixLeft rederives each hunk's LStart from a running offset on RStart,
// keeping RStart (and hence the file this diff's right side still produces)
// fixed while recomputing where each hunk now falls on the left once other
// hunks have been removed from the sequence. Mirrors fixRight; grounded on
// §4.8's filter fix routines, shared by the conflict-extraction retry here
// and by the editor bridge's side-by-side reload.
func fixLeft(hunks []Hunk) []Hunk {
	shift := 0
	for i := range hunks {
		hunks[i].LStart = hunks[i].RStart - shift
		shift += hunks[i].NumRightLines() - hunks[i].NumLeftLines()
		hunks[i].Normalize()
	}
	return hunks
}

// fixRight is fixLeft's mirror: LStart is authoritative and RStart is
// rederived, used when the diff being trimmed is the one applying first.
func fixRight(hunks []Hunk) []Hunk {
	shift := 0
	for i := range hunks {
		hunks[i].RStart = hunks[i].LStart + shift
		shift += hunks[i].NumRightLines() - hunks[i].NumLeftLines()
		hunks[i].Normalize()
	}
	return hunks
}

// FixLeft rederives LStart across every diff in p from its own RStart,
// leaving RStart untouched. Exported for the editor bridge's side-by-side
// edit2: the upper patch of a pair is reloaded with its right-line numbers
// still authoritative (nothing above it changed), so its left-line numbers
// need rederiving.
func (p Patch) FixLeft() Patch {
	out := Patch{Diffs: make([]Diff, len(p.Diffs))}
	for i, d := range p.Diffs {
		d.Hunks = fixLeft(append([]Hunk(nil), d.Hunks...))
		d.Normalize()
		out.Diffs[i] = d
	}
	return out
}

// FixRight is FixLeft's mirror, used for the lower patch of an edit2 pair.
func (p Patch) FixRight() Patch {
	out := Patch{Diffs: make([]Diff, len(p.Diffs))}
	for i, d := range p.Diffs {
		d.Hunks = fixRight(append([]Hunk(nil), d.Hunks...))
		d.Normalize()
		out.Diffs[i] = d
	}
	return out
}

// extractHunk splits off from d the single hunk matching the given
// anchors, returning it as a one-hunk diff and the remaining diff.
func extractHunk(d Diff, target Hunk) (cut, rest Diff, err error) {
	cut = Diff{LName: d.LName, RName: d.RName}
	rest = Diff{LName: d.LName, RName: d.RName}
	for _, h := range d.Hunks {
		if h.LStart == target.LStart && h.RStart == target.RStart {
			cut.Hunks = append(cut.Hunks, h)
		} else {
			rest.Hunks = append(rest.Hunks, h)
		}
	}
	return cut, rest, nil
}
