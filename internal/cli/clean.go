package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/forktree/internal/config"
	"github.com/shinji-kodama/forktree/internal/model"
	"github.com/shinji-kodama/forktree/internal/worktree"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	base        string
	rmContainer bool
}

// newCleanCommand creates the "clean" command: remove every fork
// worktree whose branch is merged and whose tree is clean.
func (r *runner) newCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove all merged, clean worktrees",
		Long: `Remove every fork worktree whose branch is merged into the base branch
and whose tree has no uncommitted changes. Protected worktrees (unmerged
or dirty) are skipped silently.

When the current worktree qualifies it is removed last, and the main
repository root is printed as the last line of output so the shell
integration can move there. Running clean twice in a row removes
nothing the second time.

Examples:
  forktree clean
  forktree clean --rm-container`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runClean(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.base, "base", "b", "", "Base branch for the merge check")
	cmd.Flags().BoolVar(&flags.rmContainer, "rm-container", false, "Also remove each branch's container")

	return cmd
}

func (r *runner) runClean(ctx context.Context, flags *cleanFlags) error {
	s, err := r.newSession(func(set *config.Settings) {
		if flags.base != "" {
			set.BaseBranch = flags.base
		}
	})
	if err != nil {
		return err
	}

	forks, err := s.worktrees.ListForks()
	if err != nil {
		return err
	}
	classified, err := s.worktrees.Classify(forks, s.set.BaseBranch)
	if err != nil {
		return err
	}

	currentBranch, _ := worktree.BranchFromPath(s.cwd, s.forksDir)
	others, current := partitionCurrent(classified, currentBranch)

	removed := 0
	failed := 0
	remove := func(w model.Worktree) {
		if err := s.worktrees.Remove(w.Branch, s.set.BaseBranch, false); err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			failed++
			return
		}
		removed++
		if flags.rmContainer {
			s.containers.Remove(ctx, w.Branch)
		}
	}

	for _, w := range others {
		if w.Protected() {
			continue
		}
		remove(w)
	}

	// The current worktree goes last: the directories around it must be
	// gone before the caller is told to leave, and once removed the only
	// sensible destination is the main repository root.
	if current != nil && !current.Protected() {
		remove(*current)
		fmt.Fprintln(r.stdout, s.layout.MainRoot)
	}

	if removed == 0 && failed == 0 {
		fmt.Fprintln(r.stdout, "No worktrees removed")
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d worktrees", failed)
	}
	return nil
}

// partitionCurrent splits the listing into the worktree the caller is
// currently inside (nil when not inside any fork) and all the others.
func partitionCurrent(worktrees []model.Worktree, currentBranch string) ([]model.Worktree, *model.Worktree) {
	others := make([]model.Worktree, 0, len(worktrees))
	var current *model.Worktree
	for _, w := range worktrees {
		if w.Branch == currentBranch {
			w := w
			current = &w
			continue
		}
		others = append(others, w)
	}
	return others, current
}
