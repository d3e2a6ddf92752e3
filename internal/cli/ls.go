package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/forktree/internal/config"
	"github.com/shinji-kodama/forktree/internal/model"
)

// lsFlags holds the flag values for the ls command.
type lsFlags struct {
	base     string
	merged   bool
	unmerged bool
	dirty    bool
	clean    bool
	jsonOut  bool
}

// newLsCommand creates the "ls" command: list fork worktrees with their
// merge and dirty status, optionally filtered.
func (r *runner) newLsCommand() *cobra.Command {
	flags := &lsFlags{}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List fork worktrees",
		Long: `List every fork worktree with its merge status (against the base
branch) and working-tree status. Filters narrow the listing; --merged
and --unmerged are mutually exclusive, as are --dirty and --clean.

Examples:
  forktree ls
  forktree ls --merged --clean
  forktree ls --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runLs(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.base, "base", "b", "", "Base branch for the merge check")
	cmd.Flags().BoolVar(&flags.merged, "merged", false, "Only branches merged into the base")
	cmd.Flags().BoolVar(&flags.unmerged, "unmerged", false, "Only branches not merged into the base")
	cmd.Flags().BoolVar(&flags.dirty, "dirty", false, "Only worktrees with uncommitted changes")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "Only worktrees without uncommitted changes")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Output as JSON")

	return cmd
}

func (r *runner) runLs(flags *lsFlags) error {
	if flags.merged && flags.unmerged {
		return fmt.Errorf("%w: --merged and --unmerged are mutually exclusive", model.ErrInvalidArgument)
	}
	if flags.dirty && flags.clean {
		return fmt.Errorf("%w: --dirty and --clean are mutually exclusive", model.ErrInvalidArgument)
	}

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

	filter := model.Filter{
		Merged:   flags.merged,
		Unmerged: flags.unmerged,
		Dirty:    flags.dirty,
		Clean:    flags.clean,
	}
	matched := filter.Apply(classified)

	if flags.jsonOut {
		enc := json.NewEncoder(r.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matched)
	}

	fmt.Fprint(r.stdout, formatWorktreeTable(matched))
	return nil
}

// formatWorktreeTable renders the text listing: a header row and one
// fixed-width row per worktree, or a placeholder line when the listing
// is empty.
func formatWorktreeTable(worktrees []model.Worktree) string {
	if len(worktrees) == 0 {
		return "No worktrees found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-10s %-7s %s\n", "BRANCH", "MERGED", "TREE", "PATH")
	for _, w := range worktrees {
		merged := "unmerged"
		if w.Merged {
			merged = "merged"
		}
		tree := "clean"
		if w.Dirty {
			tree = "dirty"
		}
		fmt.Fprintf(&b, "%-24s %-10s %-7s %s\n", w.Branch, merged, tree, w.Path)
	}
	return b.String()
}
