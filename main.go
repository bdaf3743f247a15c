// Command patlab is an interactive laboratory for unified-diff patches: it
// treats patches as algebraic objects you can compose, rebase, invert,
// split, and shrinkwrap, and exposes those operations as a small CLI.
// Grounded on the teacher's main.go for its flag/env wiring style, rebuilt
// around cobra instead of the stdlib flag package for subcommand structure.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prdoyle/patlab/internal/config"
	"github.com/prdoyle/patlab/pkg/editor"
	"github.com/prdoyle/patlab/pkg/fingerprint"
	"github.com/prdoyle/patlab/pkg/patch"
	"github.com/prdoyle/patlab/pkg/selftest"
	"github.com/prdoyle/patlab/pkg/stack"
	"github.com/prdoyle/patlab/pkg/unifieddiff"
)

var cfg = config.Default()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var runSelfTest bool

	root := &cobra.Command{
		Use:   "patlab",
		Short: "An interactive laboratory for manipulating unified-diff patches",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runSelfTest {
				return runSelfTestCmd(cmd, args)
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolVarP(&runSelfTest, "test", "t", false, "run the self-test suite and exit")
	root.PersistentFlags().IntVarP(&cfg.Strip, "strip", "p", cfg.Strip, "leading path components to strip from diff filenames")
	root.PersistentFlags().IntVarP(&cfg.Context, "context", "c", cfg.Context, "context lines to keep around a change")
	root.PersistentFlags().StringVar(&cfg.Editor, "editor", cfg.Editor, "editor command for edit/edit2/sift (defaults to $EDITOR)")

	root.AddCommand(
		newDiffCmd(),
		newComposeCmd(),
		newOverCmd(),
		newInverseCmd(),
		newShrinkwrapCmd(),
		newSplitCmd(),
		newGrepCmd(),
		newGlobCmd(),
		newEditCmd(),
		newStackCmd(),
	)
	return root
}

func runSelfTestCmd(cmd *cobra.Command, patchPaths []string) error {
	s, err := loadStack(patchPaths)
	if err != nil {
		return err
	}
	results := selftest.RunDetailed(&s)
	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Passed() {
			status = "FAIL: " + r.Err.Error()
			failed++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-55s %s\n", r.Name, status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d checks passed\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d self-test check(s) failed", failed)
	}
	return nil
}

func readPatch(path string) (patch.Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return patch.Patch{}, err
	}
	return unifieddiff.Parse(data, cfg.Strip)
}

func printPatch(cmd *cobra.Command, p patch.Patch) {
	fmt.Fprint(cmd.OutOrStdout(), unifieddiff.Write(p, "", ""))
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff old new",
		Short: "Print the unified diff between two files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			newContent, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			d := patch.DiffText(args[0], args[1], old, newContent, cfg.Context)
			printPatch(cmd, patch.Patch{Diffs: []patch.Diff{d}})
			return nil
		},
	}
}

func newComposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compose a b",
		Short: "Compose two patches: the result of applying a then b",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[0])
			if err != nil {
				return err
			}
			b, err := readPatch(args[1])
			if err != nil {
				return err
			}
			result, err := a.Compose(b)
			if err != nil {
				return err
			}
			printPatch(cmd, result)
			return nil
		},
	}
}

func newOverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "over a b",
		Short: "Rebase a so it applies after b instead of sharing b's base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[0])
			if err != nil {
				return err
			}
			b, err := readPatch(args[1])
			if err != nil {
				return err
			}
			result, err := a.Over(b)
			if err != nil {
				return err
			}
			printPatch(cmd, result)
			return nil
		},
	}
}

func newInverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inverse a",
		Short: "Print the inverse of a patch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[0])
			if err != nil {
				return err
			}
			printPatch(cmd, a.Inverse())
			return nil
		},
	}
}

func newShrinkwrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shrinkwrap a",
		Short: "Canonicalize a patch, trimming context to its minimal form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[0])
			if err != nil {
				return err
			}
			printPatch(cmd, a.Shrinkwrapped())
			return nil
		},
	}
}

func newSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split a n",
		Short: "Split a patch at line n into a before-part and an after-part",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[0])
			if err != nil {
				return err
			}
			n, err := parseInt(args[1])
			if err != nil {
				return err
			}
			b, af, err := a.Split(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "# before")
			printPatch(cmd, b)
			fmt.Fprintln(cmd.OutOrStdout(), "# after")
			printPatch(cmd, af)
			return nil
		},
	}
}

func newGrepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grep pattern a",
		Short: "Partition a patch's diffs by a regular expression over filenames",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[1])
			if err != nil {
				return err
			}
			re, err := regexp.Compile(args[0])
			if err != nil {
				return err
			}
			matched, unmatched := a.Grep(re)
			fmt.Fprintln(cmd.OutOrStdout(), "# matched")
			printPatch(cmd, matched)
			fmt.Fprintln(cmd.OutOrStdout(), "# unmatched")
			printPatch(cmd, unmatched)
			return nil
		},
	}
}

func newGlobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "glob pattern a",
		Short: "Partition a patch's diffs by a shell glob over filenames",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[1])
			if err != nil {
				return err
			}
			matched, unmatched, err := a.Glob(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "# matched")
			printPatch(cmd, matched)
			fmt.Fprintln(cmd.OutOrStdout(), "# unmatched")
			printPatch(cmd, unmatched)
			return nil
		},
	}
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit a",
		Short: "Open a patch in $EDITOR and reparse whatever comes back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readPatch(args[0])
			if err != nil {
				return err
			}
			b := editorBridge()
			result, err := b.EditPatch(a, cfg.Strip)
			if err != nil {
				return err
			}
			printPatch(cmd, result)
			return nil
		},
	}
}

func editorBridge() *editor.Bridge {
	if cfg.Editor != "" {
		return &editor.Bridge{Command: []string{cfg.Editor}}
	}
	return editor.New()
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func newStackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Operations over an ordered list of patches, given as files",
	}
	cmd.AddCommand(
		newStackSumCmd(),
		newStackSquashCmd(),
		newStackSinkCmd(),
		newStackFloatCmd(),
		newStackConflictsCmd(),
		newStackEdit2Cmd(),
		newStackSiftCmd(),
	)
	return cmd
}

func loadStack(paths []string) (stack.Stack, error) {
	var s stack.Stack
	for _, p := range paths {
		patchVal, err := readPatch(p)
		if err != nil {
			return stack.Stack{}, err
		}
		s.Push(patchVal)
	}
	return s, nil
}

func newStackSumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sum patch...",
		Short: "Compose every patch file, in the order given, into one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(args)
			if err != nil {
				return err
			}
			result, err := s.Sum()
			if err != nil {
				return err
			}
			printPatch(cmd, result)
			return nil
		},
	}
}

func newStackSquashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "squash n patch...",
		Short: "Replace the top n patches with their composition",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseInt(args[0])
			if err != nil {
				return err
			}
			s, err := loadStack(args[1:])
			if err != nil {
				return err
			}
			if err := s.Squash(n); err != nil {
				return err
			}
			printStack(cmd, s)
			return nil
		},
	}
}

func newStackSinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sink i patch...",
		Short: "Sink the patch at index i below the one beneath it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseInt(args[0])
			if err != nil {
				return err
			}
			s, err := loadStack(args[1:])
			if err != nil {
				return err
			}
			if err := s.Sink(i); err != nil {
				return err
			}
			printStack(cmd, s)
			return nil
		},
	}
}

func newStackFloatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "float i patch...",
		Short: "Float the patch at index i above the one above it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseInt(args[0])
			if err != nil {
				return err
			}
			s, err := loadStack(args[1:])
			if err != nil {
				return err
			}
			if err := s.Float(i); err != nil {
				return err
			}
			printStack(cmd, s)
			return nil
		},
	}
}

func newStackConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts patch...",
		Short: "Report adjacent patches that cannot be commuted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStack(args)
			if err != nil {
				return err
			}
			reports := s.Conflicts()
			if len(reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no conflicts")
				return nil
			}
			for i, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "boundary %d/%d: %v\n", i, i+1, r.Err)
			}
			return nil
		},
	}
}

func newStackEdit2Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit2 i patch...",
		Short: "Open patches i and i+1 side by side in $EDITOR and reload both",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseInt(args[0])
			if err != nil {
				return err
			}
			s, err := loadStack(args[1:])
			if err != nil {
				return err
			}
			b := editorBridge()
			if err := b.Edit2(&s, i, cfg.Strip); err != nil {
				return err
			}
			printStack(cmd, s)
			return nil
		},
	}
}

func newStackSiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sift i patch...",
		Short: "Interactively extract hunks from patch i into a new patch above it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseInt(args[0])
			if err != nil {
				return err
			}
			s, err := loadStack(args[1:])
			if err != nil {
				return err
			}
			b := editorBridge()
			if err := b.Sift(&s, i, cfg.Strip); err != nil {
				return err
			}
			printStack(cmd, s)
			return nil
		},
	}
}

func printStack(cmd *cobra.Command, s stack.Stack) {
	for i, p := range s.Patches {
		fmt.Fprintf(cmd.OutOrStdout(), "# patch %d (%s)\n", i, fingerprint.Patch(p))
		printPatch(cmd, p)
	}
}
