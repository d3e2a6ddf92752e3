package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newNewCommand creates the "new" command: make a worktree for each
// named branch without entering any of them.
func (r *runner) newNewCommand() *cobra.Command {
	flags := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "new <branch>...",
		Short: "Create worktrees for one or more branches",
		Long: `Create a worktree under the fork directory for each named branch.

The source ref for each branch is resolved in priority order: a remote
tracking branch, an existing local branch, then a new branch cut from the
base branch. With --container, each worktree's keep-alive container is
brought up as well.

Examples:
  forktree new feature-auth
  forktree new feature-auth bugfix-login
  forktree new -b develop feature-auth`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runNew(cmd.Context(), args, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runNew creates every requested worktree, continuing past individual
// failures and failing the invocation at the end if any target failed.
func (r *runner) runNew(ctx context.Context, branches []string, flags *sessionFlags) error {
	s, err := r.newSession(flags.apply)
	if err != nil {
		return err
	}

	failed := 0
	for _, branch := range branches {
		if err := s.create(ctx, branch); err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("created %d of %d worktrees", len(branches)-failed, len(branches))
	}
	return nil
}
