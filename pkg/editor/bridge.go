// Package editor bridges patlab's in-memory patches to an external $EDITOR,
// the way a human curates a patch by hand. Grounded on the corpus's
// exec.Command-and-tempfile idiom for editor invocation and on the
// teacher's multierr-based cleanup style for deferred error aggregation.
package editor

import (
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/multierr"

	"github.com/prdoyle/patlab/pkg/patch"
	"github.com/prdoyle/patlab/pkg/stack"
	"github.com/prdoyle/patlab/pkg/unifieddiff"
)

// Bridge shells out to an editor command to let a human revise text.
type Bridge struct {
	// Command is the editor to invoke, split into argv[0] plus any fixed
	// arguments (e.g. "code -w"). Defaults to $EDITOR, falling back to vim.
	Command []string
}

// New builds a Bridge from $EDITOR, defaulting to vim if unset.
func New() *Bridge {
	cmd := os.Getenv("EDITOR")
	if cmd == "" {
		cmd = "vim"
	}
	return &Bridge{Command: []string{cmd}}
}

// EditText writes initial to a scratch file, opens it in the configured
// editor connected to the controlling terminal, and returns the file's
// contents after the editor exits.
func (b *Bridge) EditText(initial string) (result string, err error) {
	f, err := os.CreateTemp("", "patlab-*.diff")
	if err != nil {
		return "", err
	}
	tmpPath := f.Name()
	defer func() {
		err = multierr.Append(err, os.Remove(tmpPath))
	}()

	if _, werr := f.WriteString(initial); werr != nil {
		return "", multierr.Append(werr, f.Close())
	}
	if cerr := f.Close(); cerr != nil {
		return "", cerr
	}

	if len(b.Command) == 0 {
		return "", fmt.Errorf("editor: no editor command configured")
	}
	args := append(append([]string{}, b.Command[1:]...), tmpPath)
	cmd := exec.Command(b.Command[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if runErr := cmd.Run(); runErr != nil {
		return "", fmt.Errorf("editor: %w", runErr)
	}

	out, rerr := os.ReadFile(tmpPath)
	if rerr != nil {
		return "", rerr
	}
	return string(out), nil
}

// EditPatch renders p as unified-diff text, lets a human revise it, and
// reparses the result. This is patlab's "edit" command: hand a patch to a
// human and trust whatever they hand back.
func (b *Bridge) EditPatch(p patch.Patch, strip int) (patch.Patch, error) {
	text := unifieddiff.Write(p, "", "")
	edited, err := b.EditText(text)
	if err != nil {
		return patch.Patch{}, err
	}
	return unifieddiff.Parse([]byte(edited), strip)
}

// EditPatchPair opens upper and lower as two tempfiles in a single editor
// invocation ("vim -o a b"-style), then reapplies the fix routines
// patch.HunksWithConflicts uses on a hunk-level split: the reloaded upper's
// left-line numbers are rederived from its own (unchanged) right-line
// numbers, and the reloaded lower's right-line numbers are rederived from
// its own (unchanged) left-line numbers, since the two were edited as
// independent files rather than applied one after the other.
func (b *Bridge) EditPatchPair(upper, lower patch.Patch, strip int) (newUpper, newLower patch.Patch, err error) {
	upperPath, uerr := writeTempPatch("upper", upper)
	if uerr != nil {
		return patch.Patch{}, patch.Patch{}, uerr
	}
	defer func() { err = multierr.Append(err, os.Remove(upperPath)) }()

	lowerPath, lerr := writeTempPatch("lower", lower)
	if lerr != nil {
		return patch.Patch{}, patch.Patch{}, lerr
	}
	defer func() { err = multierr.Append(err, os.Remove(lowerPath)) }()

	if len(b.Command) == 0 {
		return patch.Patch{}, patch.Patch{}, fmt.Errorf("editor: no editor command configured")
	}
	args := append(append([]string{}, b.Command[1:]...), "-o", upperPath, lowerPath)
	cmd := exec.Command(b.Command[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if runErr := cmd.Run(); runErr != nil {
		return patch.Patch{}, patch.Patch{}, fmt.Errorf("editor: %w", runErr)
	}

	upperText, rerr := os.ReadFile(upperPath)
	if rerr != nil {
		return patch.Patch{}, patch.Patch{}, rerr
	}
	lowerText, rerr := os.ReadFile(lowerPath)
	if rerr != nil {
		return patch.Patch{}, patch.Patch{}, rerr
	}

	reloadedUpper, perr := unifieddiff.Parse(upperText, strip)
	if perr != nil {
		return patch.Patch{}, patch.Patch{}, perr
	}
	reloadedLower, perr := unifieddiff.Parse(lowerText, strip)
	if perr != nil {
		return patch.Patch{}, patch.Patch{}, perr
	}

	return reloadedUpper.FixLeft(), reloadedLower.FixRight(), nil
}

func writeTempPatch(label string, p patch.Patch) (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("patlab-%s-*.patch", label))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(unifieddiff.Write(p, "", "")); err != nil {
		return "", multierr.Append(err, os.Remove(f.Name()))
	}
	return f.Name(), nil
}

// Edit2 opens the patches at stack indices i (upper, applies second) and i+1
// (lower, applies first) side by side, lets a human revise them together,
// and writes back whichever of the pair didn't edit down to the identity
// patch. Grounded on original_source/patlab.py's Stack.edit2/_edit2, whose
// `filter(None, ...)` drops whichever side an edit emptied out.
func (b *Bridge) Edit2(s *stack.Stack, i int, strip int) error {
	if i < 0 || i+1 >= s.Len() {
		return fmt.Errorf("editor: edit2 index %d out of range for %d patches", i, s.Len())
	}
	newUpper, newLower, err := b.EditPatchPair(s.Patches[i], s.Patches[i+1], strip)
	if err != nil {
		return err
	}
	var replacement []patch.Patch
	if !newUpper.Shrinkwrapped().IsIdentity() {
		replacement = append(replacement, newUpper)
	}
	if !newLower.Shrinkwrapped().IsIdentity() {
		replacement = append(replacement, newLower)
	}
	newPatches := make([]patch.Patch, 0, s.Len()-2+len(replacement))
	newPatches = append(newPatches, s.Patches[:i]...)
	newPatches = append(newPatches, replacement...)
	newPatches = append(newPatches, s.Patches[i+2:]...)
	s.Patches = newPatches
	return nil
}

// Sift lets a human trim the patch at stack index i down to just the hunks
// they want extracted, then splits the stack so the extracted hunks become
// their own new patch sitting just above the remainder. Grounded on
// original_source/patlab.py's Stack.sift, fixing its documented bug of
// mutating a module-level patches list instead of the stack's own.
func (b *Bridge) Sift(s *stack.Stack, i int, strip int) error {
	if i < 0 || i >= s.Len() {
		return fmt.Errorf("editor: sift index %d out of range for %d patches", i, s.Len())
	}
	original := s.Patches[i]
	text := unifieddiff.Write(original, "", "")
	edited, err := b.EditText(text)
	if err != nil {
		return err
	}
	selected, err := unifieddiff.Parse([]byte(edited), strip)
	if err != nil {
		return err
	}
	remainder, err := original.Compose(selected.Inverse())
	if err != nil {
		return err
	}
	s.Patches[i] = remainder
	newPatches := make([]patch.Patch, 0, s.Len()+1)
	newPatches = append(newPatches, s.Patches[:i]...)
	newPatches = append(newPatches, selected)
	newPatches = append(newPatches, s.Patches[i:]...)
	s.Patches = newPatches
	return nil
}
