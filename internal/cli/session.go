package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/forktree/internal/config"
	"github.com/shinji-kodama/forktree/internal/container"
	"github.com/shinji-kodama/forktree/internal/worktree"
)

// sessionFlags are the flags shared by the worktree-entering verbs
// (new, co, go). They overlay the loaded settings: a flag that was not
// passed leaves the configured value alone.
type sessionFlags struct {
	base      string
	container bool
	keepAlive bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.base, "base", "b", "", "Base branch for new branches and merge checks")
	cmd.Flags().BoolVar(&f.container, "container", false, "Run the worktree session in a container")
	cmd.Flags().BoolVar(&f.keepAlive, "keep-alive", false, "Keep the container running between sessions")
}

func (f *sessionFlags) apply(s *config.Settings) {
	if f.base != "" {
		s.BaseBranch = f.base
	}
	if f.container {
		s.Container = true
	}
	if f.keepAlive {
		s.KeepAlive = true
	}
}

// session is the per-invocation state every handler starts from: the
// resolved repository layout, the loaded settings, and the two managers.
// Everything is re-derived from git and the runtime on each invocation;
// nothing is cached across runs.
type session struct {
	cwd      string
	layout   worktree.Layout
	set      config.Settings
	forksDir string

	worktrees  *worktree.Manager
	containers *container.Manager
}

// newSession resolves the repository from the working directory and
// loads configuration. adjust, when non-nil, overlays command flags
// onto the loaded settings before the managers are built.
func (r *runner) newSession(adjust func(*config.Settings)) (*session, error) {
	if err := worktree.CheckGitAvailable(); err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	layout, err := worktree.Locate(cwd)
	if err != nil {
		return nil, err
	}
	r.logf("repository: %s (main root %s)", layout.RepoRoot, layout.MainRoot)

	set, err := config.Load(layout.MainRoot, os.Environ())
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(&set)
	}

	forksDir := set.ForksDir(layout.MainRoot, layout.RepoName)
	r.logf("fork directory: %s", forksDir)

	rt := container.NewRuntime(set)
	return &session{
		cwd:        cwd,
		layout:     layout,
		set:        set,
		forksDir:   forksDir,
		worktrees:  worktree.NewManager(layout.MainRoot, forksDir, r.stdout),
		containers: container.NewManager(rt, set, layout.RepoName, cwd, layout.RepoRoot, r.stdout),
	}, nil
}

// create makes the branch's worktree and, in keep-alive container mode,
// brings its container up alongside it.
func (s *session) create(ctx context.Context, branch string) error {
	if err := s.worktrees.Create(branch, s.set.BaseBranch); err != nil {
		return err
	}
	if s.set.Container {
		return s.containers.Ensure(ctx, branch, s.worktrees.PathFor(branch))
	}
	return nil
}

// enter finishes a co/go invocation. The worktree path is printed as
// the final stdout line — the shell integration reads it and cds there.
// In container mode the container is brought up first and the
// interactive enter command is run attached to the caller's terminal.
func (r *runner) enter(ctx context.Context, s *session, branch string) error {
	path := s.worktrees.PathFor(branch)
	if !s.set.Container {
		fmt.Fprintln(r.stdout, path)
		return nil
	}

	if err := s.containers.Ensure(ctx, branch, path); err != nil {
		return err
	}
	argv, err := s.containers.EnterCommand(ctx, branch, path)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.stdout, path)
	return r.execute(argv)
}
