package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMainCommand creates the "main" command: print the main repository
// root so the shell integration can return there from any worktree.
func (r *runner) newMainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "main",
		Short: "Switch back to the main repository",
		Long: `Print the main repository root as the last line of output; the shell
integration changes into it. Works from anywhere inside the repository,
including from within a fork worktree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := r.newSession(nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(r.stdout, s.layout.MainRoot)
			return nil
		},
	}
}
