package patch

import (
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Patch is an unordered set of diffs, each touching a distinct file (keyed
// by the pair of names it connects), standing in for a single commit-sized
// change.
type Patch struct {
	Diffs []Diff
}

// NewPatch builds a patch from the given diffs.
func NewPatch(diffs ...Diff) Patch {
	return Patch{Diffs: diffs}
}

// Normalize sorts diffs by left name and normalizes each.
func (p *Patch) Normalize() *Patch {
	sort.Slice(p.Diffs, func(i, j int) bool { return p.Diffs[i].LName < p.Diffs[j].LName })
	for i := range p.Diffs {
		p.Diffs[i].Normalize()
	}
	return p
}

// IsIdentity reports whether every diff is identity.
func (p Patch) IsIdentity() bool {
	for _, d := range p.Diffs {
		if !d.IsIdentity() {
			return false
		}
	}
	return true
}

// Shrinkwrapped returns a copy with every diff shrinkwrapped and diffs that
// became identity dropped.
func (p Patch) Shrinkwrapped() Patch {
	result := Patch{}
	for _, d := range p.Diffs {
		sw := d.Shrinkwrapped()
		if !sw.IsIdentity() {
			result.Diffs = append(result.Diffs, sw)
		}
	}
	return result
}

// Inverse inverts every diff.
func (p Patch) Inverse() Patch {
	result := Patch{Diffs: make([]Diff, len(p.Diffs))}
	for i, d := range p.Diffs {
		result.Diffs[i] = d.Inverse()
	}
	return result
}

func (p Patch) String() string {
	var b strings.Builder
	for _, d := range p.Diffs {
		b.WriteString(d.String())
	}
	return b.String()
}

// diffByLeft indexes a patch's diffs by left name for O(1) pairing.
func diffByLeft(diffs []Diff) map[string]Diff {
	m := make(map[string]Diff, len(diffs))
	for _, d := range diffs {
		m[d.LName] = d
	}
	return m
}

// diffByRight indexes a patch's diffs by right name, used to detect rename
// collisions: two diffs in the same patch that both produce a file under the
// same name via different input files.
func diffByRight(diffs []Diff) map[string]Diff {
	m := make(map[string]Diff, len(diffs))
	for _, d := range diffs {
		m[d.RName] = d
	}
	return m
}

// Compose pairs up p's diffs with next's by p's right name meeting next's
// left name, composing the overlap and carrying through any diff that only
// one side touches untouched. A p-only diff whose right name collides with
// a different next-only diff's right name is a rename collision and raises
// IncompatibleFileRenameError.
func (p Patch) Compose(next Patch) (Patch, error) {
	byLeft := diffByLeft(next.Diffs)
	byRightNext := diffByRight(next.Diffs)
	consumed := make(map[string]bool, len(next.Diffs))
	var result []Diff
	var errs error
	for _, d := range p.Diffs {
		if other, ok := byLeft[d.RName]; ok {
			consumed[other.LName] = true
			merged, err := d.Compose(other)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			result = append(result, merged)
			continue
		}
		if other, ok := byRightNext[d.RName]; ok && other.LName != d.RName {
			errs = multierr.Append(errs, &IncompatibleFileRenameError{LeftPatchName: d.LName, RightPatchName: other.LName})
			continue
		}
		result = append(result, d)
	}
	for _, d := range next.Diffs {
		if !consumed[d.LName] {
			result = append(result, d)
		}
	}
	if errs != nil {
		return Patch{}, errs
	}
	out := Patch{Diffs: result}
	out.Normalize()
	return out, nil
}

// Over rebases every diff in p that shares a left name with a diff in other
// onto other's output; diffs only p touches pass through unchanged, and
// diffs only other touches vanish (already
// reflected in the base p will apply to).
func (p Patch) Over(other Patch) (Patch, error) {
	byLeft := diffByLeft(other.Diffs)
	var result []Diff
	var errs error
	for _, d := range p.Diffs {
		if otherD, ok := byLeft[d.LName]; ok {
			merged, err := d.Over(otherD)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if !merged.IsIdentity() {
				result = append(result, merged)
			}
		} else {
			result = append(result, d)
		}
	}
	if errs != nil {
		return Patch{}, errs
	}
	out := Patch{Diffs: result}
	out.Normalize()
	return out, nil
}

// Under is Patch's lift of Diff.Under: diffs only p touches pass through
// unchanged, and diffs only other touches vanish (they're already reflected
// in the state p will come to apply before).
func (p Patch) Under(other Patch) (Patch, error) {
	byRight := diffByRight(other.Diffs)
	var result []Diff
	var errs error
	for _, d := range p.Diffs {
		if otherD, ok := byRight[d.RName]; ok {
			merged, err := d.Under(otherD)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if !merged.IsIdentity() {
				result = append(result, merged)
			}
		} else {
			result = append(result, d)
		}
	}
	if errs != nil {
		return Patch{}, errs
	}
	out := Patch{Diffs: result}
	out.Normalize()
	return out, nil
}

// Split partitions each diff in p at n, returning (before,after) patches
// such that Compose(before,after) reproduces p.
func (p Patch) Split(n int) (Patch, Patch, error) {
	var before, after Patch
	var errs error
	for _, d := range p.Diffs {
		bd, ad, err := d.Split(n)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if len(bd.Hunks) > 0 {
			before.Diffs = append(before.Diffs, bd)
		}
		if len(ad.Hunks) > 0 {
			after.Diffs = append(after.Diffs, ad)
		}
	}
	if errs != nil {
		return Patch{}, Patch{}, errs
	}
	return before, after, nil
}

// ConflictReport names one hunk-level disagreement found while rebasing p
// over other, identifying the file it occurred in.
type ConflictReport struct {
	LName, RName string
	Err          error
}

// Conflicts rebases p over other diff-by-diff and collects every
// ChangeToSameLineError encountered instead of failing fast, so a caller can
// present them together (used by the Stack-level conflict scan).
func (p Patch) Conflicts(other Patch) []ConflictReport {
	byLeft := diffByLeft(other.Diffs)
	var reports []ConflictReport
	for _, d := range p.Diffs {
		otherD, ok := byLeft[d.LName]
		if !ok {
			continue
		}
		if _, err := d.Over(otherD); err != nil {
			reports = append(reports, ConflictReport{LName: d.LName, RName: d.RName, Err: err})
		}
	}
	return reports
}
