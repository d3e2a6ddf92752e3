// Package cli implements the cobra commands for forktree.
//
// Each verb (new, co, go, main, rm, ls, clean) lives in its own file.
// The entry point is Run, which takes the process arguments and streams
// explicitly so tests can drive the whole binary in-process.
package cli

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/forktree/internal/model"
)

// Run executes the CLI and returns the process exit code: 0 on success,
// 1 on failure, 2 when help was displayed, 127 when a required external
// binary (git or the container runtime) is missing.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	r := &runner{stdin: stdin, stdout: stdout, stderr: stderr}
	r.execute = r.runInteractive

	rootCmd := &cobra.Command{
		Use:   "forktree",
		Short: "Manage git worktrees in a standard fork layout",
		Long: `forktree keeps one worktree per branch under <repo>_forks, a sibling
directory of the repository, and can pair each worktree with an isolated
container session.

Branches resume existing work where possible: a remote tracking branch or
an existing local branch is checked out before a fresh branch is cut from
the base. Removal refuses to destroy unmerged or uncommitted work unless
forced.`,

		// Errors are formatted by Run itself, once.
		SilenceUsage:  true,
		SilenceErrors: true,

		// The bare command shows help, like git does.
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Enable verbose output")

	// Help display gets its own exit code so shell wrappers can tell
	// "showed usage" apart from success.
	helpShown := false
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpShown = true
		defaultHelp(cmd, args)
	})

	rootCmd.AddCommand(
		r.newNewCommand(),
		r.newCoCommand(),
		r.newGoCommand(),
		r.newMainCommand(),
		r.newRmCommand(),
		r.newLsCommand(),
		r.newCleanCommand(),
	)

	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return int(model.ExitCodeFor(err))
	}
	if helpShown {
		return int(model.ExitHelp)
	}
	return int(model.ExitSuccess)
}

// runner carries the streams and global flags through every command.
type runner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	verbose bool

	// execute runs an interactive command attached to the streams.
	// Replaced in tests.
	execute func(argv []string) error
}

// logf prints a trace line to stderr when --verbose is set.
func (r *runner) logf(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.stderr, format+"\n", args...)
	}
}

// runInteractive launches argv with the CLI's streams attached, for
// container enter commands that take over the terminal.
func (r *runner) runInteractive(argv []string) error {
	r.logf("exec: %s", strings.Join(argv, " "))
	// #nosec G204 — argv is assembled from internally derived names
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrContainerOperation, argv[0], err)
	}
	return nil
}
