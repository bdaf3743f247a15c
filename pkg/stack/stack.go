// Package stack implements an ordered collection of patches: the working
// stack a patlab session manipulates. The patch at index 0 is the top (most
// recently pushed); Patches[i] is understood to apply strictly after
// Patches[i+1], so summing the stack means composing from the bottom up.
package stack

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"

	"github.com/prdoyle/patlab/pkg/patch"
)

// Stack is an ordered list of patches, front (index 0) is the top.
type Stack struct {
	Patches []patch.Patch
}

// Len returns the number of patches on the stack.
func (s *Stack) Len() int { return len(s.Patches) }

// Push places p on top of the stack.
func (s *Stack) Push(p patch.Patch) {
	s.Patches = append([]patch.Patch{p}, s.Patches...)
}

// Pop removes and returns the top patch.
func (s *Stack) Pop() (patch.Patch, error) {
	if len(s.Patches) == 0 {
		return patch.Patch{}, fmt.Errorf("stack: pop from empty stack")
	}
	top := s.Patches[0]
	s.Patches = s.Patches[1:]
	return top, nil
}

// Sum composes every patch on the stack, bottom to top, into one.
func (s *Stack) Sum() (patch.Patch, error) {
	if len(s.Patches) == 0 {
		return patch.Patch{}, nil
	}
	result := s.Patches[len(s.Patches)-1]
	for i := len(s.Patches) - 2; i >= 0; i-- {
		var err error
		result, err = result.Compose(s.Patches[i])
		if err != nil {
			return patch.Patch{}, err
		}
	}
	return result, nil
}

// Squash replaces the top n patches with their composition, preserving the
// combined effect of the stack while reducing those n patches to one.
func (s *Stack) Squash(n int) error {
	if n < 2 || n > len(s.Patches) {
		return fmt.Errorf("stack: squash count %d out of range for %d patches", n, len(s.Patches))
	}
	result := s.Patches[n-1]
	for i := n - 2; i >= 0; i-- {
		var err error
		result, err = result.Compose(s.Patches[i])
		if err != nil {
			return err
		}
	}
	s.Patches = append([]patch.Patch{result}, s.Patches[n:]...)
	return nil
}

// Sink swaps the patch at index i with the one below it (i+1). Both are
// rebuilt via Commute (the over/under-based swap: disjoint hunks take a
// pure-shift fast path, overlapping-but-compatible ones are merged) so the
// stack's combined effect is unchanged; it only fails when the pair
// genuinely touches the same line.
func (s *Stack) Sink(i int) error {
	if i < 0 || i+1 >= len(s.Patches) {
		return fmt.Errorf("stack: sink index %d out of range for %d patches", i, len(s.Patches))
	}
	b := s.Patches[i+1] // currently applies first
	a := s.Patches[i]   // currently applies second
	aPrime, bPrime, err := b.Commute(a)
	if err != nil {
		return err
	}
	s.Patches[i+1] = aPrime
	s.Patches[i] = bPrime
	return nil
}

// Float swaps the patch at index i with the one above it (i-1); the mirror
// image of Sink.
func (s *Stack) Float(i int) error {
	if i < 1 || i >= len(s.Patches) {
		return fmt.Errorf("stack: float index %d out of range for %d patches", i, len(s.Patches))
	}
	return s.Sink(i - 1)
}

// SinkRange sinks the patch at index i past count patches below it.
func (s *Stack) SinkRange(i, count int) error {
	for n := 0; n < count; n++ {
		if err := s.Sink(i + n); err != nil {
			return err
		}
	}
	return nil
}

// FloatRange floats the patch at index i past count patches above it.
func (s *Stack) FloatRange(i, count int) error {
	for n := 0; n < count; n++ {
		if err := s.Float(i - n); err != nil {
			return err
		}
	}
	return nil
}

// Grep partitions every patch on the stack by Patch.Grep, returning parallel
// stacks of the matching and non-matching remainders, empty patches dropped.
func (s *Stack) Grep(re *regexp.Regexp) (matched, unmatched Stack) {
	for _, p := range s.Patches {
		m, u := p.Grep(re)
		if len(m.Diffs) > 0 {
			matched.Patches = append(matched.Patches, m)
		}
		if len(u.Diffs) > 0 {
			unmatched.Patches = append(unmatched.Patches, u)
		}
	}
	return matched, unmatched
}

// Glob is Grep's shell-glob counterpart.
func (s *Stack) Glob(pattern string) (matched, unmatched Stack, err error) {
	for _, p := range s.Patches {
		m, u, gerr := p.Glob(pattern)
		if gerr != nil {
			return Stack{}, Stack{}, gerr
		}
		if len(m.Diffs) > 0 {
			matched.Patches = append(matched.Patches, m)
		}
		if len(u.Diffs) > 0 {
			unmatched.Patches = append(unmatched.Patches, u)
		}
	}
	return matched, unmatched, nil
}

// Conflicts reports, for each adjacent pair of patches, whether they could
// not be commuted: sinking/floating across that boundary is impossible only
// when the two patches genuinely change the same line, not merely when
// their hunks' ranges overlap through shared context.
func (s *Stack) Conflicts() []patch.ConflictReport {
	var reports []patch.ConflictReport
	for i := 0; i+1 < len(s.Patches); i++ {
		if _, _, err := s.Patches[i+1].Commute(s.Patches[i]); err != nil {
			reports = append(reports, patch.ConflictReport{Err: err})
		}
	}
	return reports
}

// Split divides every patch on the stack at line number n, producing two
// parallel stacks whose patch-wise composition reproduces the original.
func (s *Stack) Split(n int) (before, after Stack, err error) {
	var errs error
	for _, p := range s.Patches {
		bp, ap, serr := p.Split(n)
		if serr != nil {
			errs = multierr.Append(errs, serr)
			continue
		}
		if len(bp.Diffs) > 0 {
			before.Patches = append(before.Patches, bp)
		}
		if len(ap.Diffs) > 0 {
			after.Patches = append(after.Patches, ap)
		}
	}
	if errs != nil {
		return Stack{}, Stack{}, errs
	}
	return before, after, nil
}
