package cli

import (
	"github.com/spf13/cobra"
)

// newGoCommand creates the "go" command: enter a branch's worktree,
// creating it first when absent.
func (r *runner) newGoCommand() *cobra.Command {
	flags := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "go <branch>",
		Short: "Switch to a branch's worktree, creating it if needed",
		Long: `Switch to the worktree of a branch, creating the worktree first when it
does not exist yet. The worktree path is printed as the last line of
output; the shell integration changes into it.

With --container the session runs inside the branch's container.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runGo(cmd, args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (r *runner) runGo(cmd *cobra.Command, branch string, flags *sessionFlags) error {
	s, err := r.newSession(flags.apply)
	if err != nil {
		return err
	}

	exists, err := s.worktrees.Exists(branch)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.create(cmd.Context(), branch); err != nil {
			return err
		}
	}

	return r.enter(cmd.Context(), s, branch)
}
