package patch

import "fmt"

// ParseError reports malformed patch text, carrying the offending header.
type ParseError struct {
	Header string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("patch: parse error at %q", e.Header)
}

// UnsupportedLineError reports a hunk body line with an unrecognized leading
// character.
type UnsupportedLineError struct {
	Line string
}

func (e *UnsupportedLineError) Error() string {
	return fmt.Sprintf("patch: unsupported line %q", e.Line)
}

// MismatchedFilenameError is raised when two diffs' connecting names
// disagree: A.RName != B.LName for compose and commute, and the two LNames
// for over.
type MismatchedFilenameError struct {
	Left, Right string
}

func (e *MismatchedFilenameError) Error() string {
	return fmt.Sprintf("patch: mismatched filenames %q and %q", e.Left, e.Right)
}

// DisjointHunkError is an internal assertion that a hunk operation was
// attempted on non-overlapping ranges.
type DisjointHunkError struct {
	Detail string
}

func (e *DisjointHunkError) Error() string {
	return "patch: disjoint hunk: " + e.Detail
}

// AmbiguousLineNumberError is raised by Diff.Split when more than one hunk
// claims a given line number. A line that no hunk claims is not an error,
// and Patch.Split does no diff-level check of its own.
type AmbiguousLineNumberError struct {
	LineNumber int
}

func (e *AmbiguousLineNumberError) Error() string {
	return fmt.Sprintf("patch: line %d does not fall in exactly one hunk", e.LineNumber)
}

// ChangeToSameLineError is raised by Over when both operands modify the same
// line incompatibly. It carries both hunks and both offending lines so that
// conflict extraction (Hunks_With_Conflicts) can move the hunk across
// buckets.
type ChangeToSameLineError struct {
	LeftHunk, RightHunk   Hunk
	LeftLine, RightLine   Line
}

func (e *ChangeToSameLineError) Error() string {
	return fmt.Sprintf("patch: conflicting change to the same line: %q vs %q", e.LeftLine.Content, e.RightLine.Content)
}

// IncompatibleChangeToSameLineError is a specialization raised by Compose
// when two sequential diffs disagree about the current content of a line.
type IncompatibleChangeToSameLineError struct {
	ChangeToSameLineError
}

func (e *IncompatibleChangeToSameLineError) Error() string {
	return fmt.Sprintf("patch: incompatible change to the same line: %q vs %q", e.LeftLine.Content, e.RightLine.Content)
}

// IncompatibleFileRenameError is raised when compose/over cannot reconcile a
// file-name rename (two diffs both claim the same middle name on opposite
// sides without a shared connector).
type IncompatibleFileRenameError struct {
	LeftPatchName, RightPatchName string
}

func (e *IncompatibleFileRenameError) Error() string {
	return fmt.Sprintf("patch: incompatible rename between patches %q and %q", e.LeftPatchName, e.RightPatchName)
}
