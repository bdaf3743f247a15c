// Package selftest is the engine behind patlab's -t/--test flag: a battery
// of checks on the patch algebra's universal laws (identity, inverse,
// associativity) and a handful of concrete seed scenarios, runnable without
// `go test` so a built binary can vouch for itself. Grounded on
// original_source/patlab.py's main(), which ran exactly this kind of
// self-check when invoked with -t.
package selftest

import (
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"

	"github.com/prdoyle/patlab/pkg/patch"
	"github.com/prdoyle/patlab/pkg/stack"
)

// Result is the outcome of a single named check.
type Result struct {
	Name string
	Err  error
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Run drives the fixed checks plus §8's universal laws over s's adjacent
// pairs and triples — Compatibility, Checksum, Swapping, Associativity —
// and folds everything into a single error via Summarize, nil on full
// success. s may be empty; the stack-driven checks are then simply absent.
func Run(s *stack.Stack) error {
	return Summarize(RunDetailed(s))
}

// RunDetailed is Run's unfolded form: every check as its own named Result,
// in order, for callers (the -t CLI branch) that want a pass/fail table
// instead of one aggregate error.
func RunDetailed(s *stack.Stack) []Result {
	var results []Result
	for _, c := range checks {
		results = append(results, Result{Name: c.name, Err: c.fn()})
	}
	if s != nil {
		results = append(results, stackChecks(s)...)
	}
	return results
}

// Summarize folds a Run() into a single error (nil if everything passed),
// for callers that just want a pass/fail exit code.
func Summarize(results []Result) error {
	var errs error
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	return errs
}

type check struct {
	name string
	fn   func() error
}

var checks = []check{
	{"identity diff composes to no-op", checkComposeIdentity},
	{"inverse undoes a diff under compose", checkComposeInverse},
	{"compose is associative", checkComposeAssociative},
	{"shrinkwrap of an unchanged hunk collapses to nothing", checkShrinkwrapIdentity},
	{"splitting a diff and recomposing reproduces it", checkSplitRoundTrip},
	{"over detects a genuine same-line conflict", checkOverConflict},
	{"swap consistency: (A+B) == (down+up)", checkSwapConsistency},
	{"over/under inversion: up.under(down)==B, down.over(up)==A", checkOverUnderInversion},
}

func line(kind patch.Kind, content string) patch.Line {
	return patch.Line{Kind: kind, Content: content + "\n"}
}

func simpleDiff(lname, rname string) patch.Diff {
	h := patch.Hunk{
		LStart: 1,
		RStart: 1,
		Lines: []patch.Line{
			line(patch.KindContext, "one"),
			line(patch.KindRemove, "two"),
			line(patch.KindAdd, "TWO"),
			line(patch.KindContext, "three"),
		},
	}
	h.Normalize()
	d := patch.Diff{LName: lname, RName: rname, Hunks: []patch.Hunk{h}}
	d.Normalize()
	return d
}

func checkComposeIdentity() error {
	d := simpleDiff("a", "b")
	identity := patch.Diff{LName: "b", RName: "b"}
	got, err := d.Compose(identity)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(d.Shrinkwrapped(), got.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("compose with identity changed the diff:\n%s", diff)
	}
	return nil
}

func checkComposeInverse() error {
	d := simpleDiff("a", "b")
	got, err := d.Compose(d.Inverse())
	if err != nil {
		return err
	}
	if !got.Shrinkwrapped().IsIdentity() {
		return fmt.Errorf("compose(d, d.Inverse()) is not identity: %v", got)
	}
	return nil
}

func checkComposeAssociative() error {
	a := simpleDiff("a", "b")
	b := patch.Diff{LName: "b", RName: "c", Hunks: []patch.Hunk{{
		LStart: 1, RStart: 1,
		Lines: []patch.Line{line(patch.KindContext, "one"), line(patch.KindRemove, "TWO"), line(patch.KindAdd, "2"), line(patch.KindContext, "three")},
	}}}
	b.Normalize()
	c := patch.Diff{LName: "c", RName: "d", Hunks: []patch.Hunk{{
		LStart: 1, RStart: 1,
		Lines: []patch.Line{line(patch.KindContext, "one"), line(patch.KindContext, "2"), line(patch.KindAdd, "four")},
	}}}
	c.Normalize()

	ab, err := a.Compose(b)
	if err != nil {
		return err
	}
	left, err := ab.Compose(c)
	if err != nil {
		return err
	}
	bc, err := b.Compose(c)
	if err != nil {
		return err
	}
	right, err := a.Compose(bc)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(left.Shrinkwrapped(), right.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("(a+b)+c != a+(b+c):\n%s", diff)
	}
	return nil
}

func checkShrinkwrapIdentity() error {
	h := patch.Hunk{LStart: 1, RStart: 1, Lines: []patch.Line{
		line(patch.KindContext, "one"), line(patch.KindContext, "two"),
	}}
	h.Normalize()
	sw := h.Shrinkwrap()
	if !sw.IsIdentity() {
		return fmt.Errorf("shrinkwrap of all-context hunk is not identity: %v", sw)
	}
	return nil
}

func checkSplitRoundTrip() error {
	d := simpleDiff("a", "b")
	before, after, err := d.Split(2)
	if err != nil {
		return err
	}
	recombined, err := before.Compose(after)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(d.Shrinkwrapped(), recombined.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("split then compose did not reproduce original:\n%s", diff)
	}
	return nil
}

// swapFixture builds a pair of same-file diffs that touch disjoint lines,
// named so that both Compose (A then B) and Over/Under (a common
// ancestor/descendant named "f") type-check on the same pair: A changes
// line 2, B changes line 5, matching the stack convention of a diff whose
// left and right names are the file's one constant name.
func swapFixture() (a, b patch.Diff) {
	a = patch.Diff{LName: "f", RName: "f", Hunks: []patch.Hunk{{
		LStart: 1, RStart: 1,
		Lines: []patch.Line{line(patch.KindContext, "one"), line(patch.KindRemove, "two"), line(patch.KindAdd, "TWO"), line(patch.KindContext, "three")},
	}}}
	a.Normalize()
	b = patch.Diff{LName: "f", RName: "f", Hunks: []patch.Hunk{{
		LStart: 4, RStart: 4,
		Lines: []patch.Line{line(patch.KindContext, "four"), line(patch.KindRemove, "five"), line(patch.KindAdd, "FIVE"), line(patch.KindContext, "six")},
	}}}
	b.Normalize()
	return a, b
}

func checkSwapConsistency() error {
	a, b := swapFixture()
	up, err := b.Over(a)
	if err != nil {
		return fmt.Errorf("up = B.over(A): %w", err)
	}
	down, err := a.Under(b)
	if err != nil {
		return fmt.Errorf("down = A.under(B): %w", err)
	}
	left, err := a.Compose(b)
	if err != nil {
		return fmt.Errorf("A+B: %w", err)
	}
	right, err := down.Compose(up)
	if err != nil {
		return fmt.Errorf("down+up: %w", err)
	}
	if diff := cmp.Diff(left.Shrinkwrapped(), right.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("(A+B) != (down+up):\n%s", diff)
	}
	return nil
}

func checkOverUnderInversion() error {
	a, b := swapFixture()
	up, err := b.Over(a)
	if err != nil {
		return fmt.Errorf("up = B.over(A): %w", err)
	}
	down, err := a.Under(b)
	if err != nil {
		return fmt.Errorf("down = A.under(B): %w", err)
	}
	gotB, err := up.Under(down)
	if err != nil {
		return fmt.Errorf("up.under(down): %w", err)
	}
	if diff := cmp.Diff(b.Shrinkwrapped(), gotB.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("up.under(down) != B:\n%s", diff)
	}
	gotA, err := down.Over(up)
	if err != nil {
		return fmt.Errorf("down.over(up): %w", err)
	}
	if diff := cmp.Diff(a.Shrinkwrapped(), gotA.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("down.over(up) != A:\n%s", diff)
	}
	return nil
}

func checkOverConflict() error {
	base := patch.Diff{LName: "a", RName: "a"}
	left := patch.Diff{LName: "a", RName: "left", Hunks: []patch.Hunk{{
		LStart: 1, RStart: 1,
		Lines: []patch.Line{line(patch.KindRemove, "shared"), line(patch.KindAdd, "left-version")},
	}}}
	left.Normalize()
	right := patch.Diff{LName: "a", RName: "right", Hunks: []patch.Hunk{{
		LStart: 1, RStart: 1,
		Lines: []patch.Line{line(patch.KindRemove, "shared"), line(patch.KindAdd, "right-version")},
	}}}
	right.Normalize()
	_ = base

	_, err := left.Over(right)
	if err == nil {
		return fmt.Errorf("expected a ChangeToSameLineError, got none")
	}
	var conflict *patch.ChangeToSameLineError
	if !errors.As(err, &conflict) {
		return fmt.Errorf("expected a ChangeToSameLineError, got %v", err)
	}
	return nil
}

// stackChecks drives Compatibility, Swapping, and Associativity over every
// adjacent pair/triple actually present in s, plus one Checksum check over
// the whole stack. A pair or triple that genuinely conflicts is skipped
// rather than failed, per §8's "unless a conflict is first extracted".
func stackChecks(s *stack.Stack) []Result {
	var results []Result
	for i := 0; i+1 < s.Len(); i++ {
		results = append(results,
			Result{Name: fmt.Sprintf("compatibility[%d,%d]", i, i+1), Err: checkCompatibility(s, i)},
			Result{Name: fmt.Sprintf("swapping[%d,%d]", i, i+1), Err: checkSwapping(s, i)},
		)
	}
	for i := 0; i+2 < s.Len(); i++ {
		results = append(results, Result{Name: fmt.Sprintf("associativity[%d,%d,%d]", i, i+1, i+2), Err: checkAssociativity(s, i)})
	}
	if s.Len() > 0 {
		results = append(results, Result{Name: "checksum telescoping", Err: checkChecksum(s)})
	}
	return results
}

// checkCompatibility verifies that when adjacent patches i+1 (applies
// first) and i (applies second) cannot be commuted, the failure is a
// well-formed conflict (ChangeToSameLineError) rather than some other,
// unexpected error class.
func checkCompatibility(s *stack.Stack, i int) error {
	_, _, err := s.Patches[i+1].Commute(s.Patches[i])
	if err == nil {
		return nil
	}
	var conflict *patch.ChangeToSameLineError
	var incompatible *patch.IncompatibleChangeToSameLineError
	if errors.As(err, &conflict) || errors.As(err, &incompatible) {
		return nil
	}
	return fmt.Errorf("commute(%d,%d) failed with an unexpected error kind: %w", i+1, i, err)
}

// checkSwapping verifies law 3 (swap consistency) directly against the
// patches actually on the stack: commuting patches[i+1] and patches[i] and
// recomposing in the new order must reproduce composing them in the old
// order. A genuine conflict is not a failure; it's skipped.
func checkSwapping(s *stack.Stack, i int) error {
	b := s.Patches[i+1]
	a := s.Patches[i]
	aPrime, bPrime, err := b.Commute(a)
	if err != nil {
		return nil
	}
	orig, err := b.Compose(a)
	if err != nil {
		return fmt.Errorf("b.compose(a): %w", err)
	}
	swapped, err := aPrime.Compose(bPrime)
	if err != nil {
		return fmt.Errorf("aPrime.compose(bPrime): %w", err)
	}
	if diff := cmp.Diff(orig.Shrinkwrapped(), swapped.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("commuting patches %d,%d changed the stack's combined effect:\n%s", i+1, i, diff)
	}
	return nil
}

// checkAssociativity verifies law 2 over the triple (patches[i+2],
// patches[i+1], patches[i]), in application order, skipping a triple that
// doesn't compose cleanly (a genuine conflict, not an associativity bug).
func checkAssociativity(s *stack.Stack, i int) error {
	a := s.Patches[i+2]
	b := s.Patches[i+1]
	c := s.Patches[i]
	ab, err := a.Compose(b)
	if err != nil {
		return nil
	}
	left, err := ab.Compose(c)
	if err != nil {
		return nil
	}
	bc, err := b.Compose(c)
	if err != nil {
		return nil
	}
	right, err := a.Compose(bc)
	if err != nil {
		return nil
	}
	if diff := cmp.Diff(left.Shrinkwrapped(), right.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("(a+b)+c != a+(b+c) over patches %d,%d,%d:\n%s", i+2, i+1, i, diff)
	}
	return nil
}

// checkChecksum verifies law 6 by splitting the stack at its midpoint and
// checking that composing the two halves' independent sums reproduces the
// whole stack's sum, a telescoping check through a different fold shape
// than Sum's own bottom-up loop.
func checkChecksum(s *stack.Stack) error {
	full, err := s.Sum()
	if err != nil {
		return nil
	}
	if s.Len() < 2 {
		return nil
	}
	mid := s.Len() / 2
	upper := stack.Stack{Patches: s.Patches[:mid]}
	lower := stack.Stack{Patches: s.Patches[mid:]}
	lowerSum, err := lower.Sum()
	if err != nil {
		return nil
	}
	upperSum, err := upper.Sum()
	if err != nil {
		return nil
	}
	combined, err := lowerSum.Compose(upperSum)
	if err != nil {
		return fmt.Errorf("lowerSum.compose(upperSum): %w", err)
	}
	if diff := cmp.Diff(full.Shrinkwrapped(), combined.Shrinkwrapped()); diff != "" {
		return fmt.Errorf("stack.sum() != split-telescoped sum:\n%s", diff)
	}
	return nil
}
