package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/forktree/internal/model"
)

// newCoCommand creates the "co" command: enter an existing worktree.
// Unlike "go" it never creates anything — a missing worktree is an error.
func (r *runner) newCoCommand() *cobra.Command {
	flags := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "co <branch>",
		Short: "Switch to an existing worktree",
		Long: `Switch to the worktree of an existing branch. The worktree path is
printed as the last line of output; the shell integration changes into it.

Fails when no worktree exists for the branch — use "forktree go" to
create one on the fly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runCo(cmd, args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (r *runner) runCo(cmd *cobra.Command, branch string, flags *sessionFlags) error {
	s, err := r.newSession(flags.apply)
	if err != nil {
		return err
	}

	exists, err := s.worktrees.Exists(branch)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s (use \"forktree go %s\" to create it)",
			model.ErrWorktreeNotFound, branch, branch)
	}

	return r.enter(cmd.Context(), s, branch)
}
