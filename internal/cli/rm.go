package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/forktree/internal/config"
	"github.com/shinji-kodama/forktree/internal/model"
	"github.com/shinji-kodama/forktree/internal/worktree"
)

// rmFlags holds the flag values for the rm command.
type rmFlags struct {
	base        string
	all         bool
	force       bool
	rmContainer bool
}

// newRmCommand creates the "rm" command: remove worktrees, guarded by
// the merge and dirty checks unless forced.
func (r *runner) newRmCommand() *cobra.Command {
	flags := &rmFlags{}

	cmd := &cobra.Command{
		Use:   "rm [<branch>...]",
		Short: "Remove worktrees",
		Long: `Remove the worktrees of the named branches. With no branches and no
--all, the branch of the current worktree is removed — the command must
then be run from inside a fork worktree.

Removal refuses branches that are not merged into the base branch and
worktrees with uncommitted, staged, or untracked changes. --force
bypasses both checks together. Branches are never deleted, only their
worktrees.

Examples:
  forktree rm feature-auth
  forktree rm feature-auth bugfix-login
  forktree rm --all
  forktree rm -f feature-auth
  forktree rm --rm-container feature-auth`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runRm(cmd.Context(), args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.base, "base", "b", "", "Base branch for the merge check")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Remove every fork worktree")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove even when unmerged or dirty")
	cmd.Flags().BoolVar(&flags.rmContainer, "rm-container", false, "Also remove each branch's container")

	return cmd
}

func (r *runner) runRm(ctx context.Context, args []string, flags *rmFlags) error {
	s, err := r.newSession(func(set *config.Settings) {
		if flags.base != "" {
			set.BaseBranch = flags.base
		}
	})
	if err != nil {
		return err
	}

	branches, err := r.rmTargets(s, args, flags.all)
	if err != nil {
		return err
	}

	failed := 0
	for _, branch := range branches {
		if err := s.worktrees.Remove(branch, s.set.BaseBranch, flags.force); err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			failed++
			continue
		}
		if flags.rmContainer {
			s.containers.Remove(ctx, branch)
		}
	}
	if failed > 0 {
		return fmt.Errorf("removed %d of %d worktrees", len(branches)-failed, len(branches))
	}
	return nil
}

// rmTargets resolves which branches rm operates on: the explicit
// arguments, every fork with --all, or the current worktree's branch
// when neither is given.
func (r *runner) rmTargets(s *session, args []string, all bool) ([]string, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: --all takes no branch arguments", model.ErrInvalidArgument)
		}
		forks, err := s.worktrees.ListForks()
		if err != nil {
			return nil, err
		}
		branches := make([]string, 0, len(forks))
		for _, w := range forks {
			branches = append(branches, w.Branch)
		}
		return branches, nil
	}

	if len(args) > 0 {
		return args, nil
	}

	branch, ok := worktree.BranchFromPath(s.cwd, s.forksDir)
	if !ok {
		return nil, fmt.Errorf("%w: no branch given and not inside a fork worktree",
			model.ErrInvalidArgument)
	}
	return []string{branch}, nil
}
