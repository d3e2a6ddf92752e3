package container

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/shinji-kodama/forktree/internal/config"
	"github.com/shinji-kodama/forktree/internal/model"
)

// Name derives the container name for a branch:
// <prefix>_<branch>_fork, or <branch>_fork with no prefix configured.
// The derivation is pure and deterministic — the name is the only link
// between a worktree and its container.
func Name(prefix, branch string) string {
	if prefix == "" {
		return branch + "_fork"
	}
	return prefix + "_" + branch + "_fork"
}

// Manager drives the container lifecycle for one repository's forks.
type Manager struct {
	rt  Runtime
	set config.Settings

	// repoName determines the in-container mount point /<repoName>.
	repoName string

	// searchDirs are the Dockerfile discovery directories, already
	// deduplicated and in priority order.
	searchDirs []string

	// out receives notices and best-effort warnings.
	out io.Writer
}

// NewManager builds a Manager. cwd and repoRoot seed Dockerfile
// discovery; notices go to out.
func NewManager(rt Runtime, set config.Settings, repoName, cwd, repoRoot string, out io.Writer) *Manager {
	return &Manager{
		rt:         rt,
		set:        set,
		repoName:   repoName,
		searchDirs: SearchDirs(cwd, repoRoot),
		out:        out,
	}
}

// nameFor applies the configured prefix to a branch.
func (m *Manager) nameFor(branch string) string {
	return Name(m.set.Prefix, branch)
}

// mountPoint is where the worktree appears inside the container.
func (m *Manager) mountPoint() string {
	return "/" + m.repoName
}

// resolveAndBuild resolves the branch's image and builds it when the
// resolution picked a Dockerfile. The Dockerfile's own directory serves
// as the build context. A build failure is fatal to the container
// operation and names the Dockerfile.
func (m *Manager) resolveAndBuild(ctx context.Context, branch string) (string, error) {
	src := ResolveImage(branch, m.set, m.searchDirs)
	if !src.NeedsBuild() {
		return src.Tag, nil
	}
	if err := m.rt.Build(ctx, src.Dockerfile, filepath.Dir(src.Dockerfile), src.Tag); err != nil {
		return "", fmt.Errorf("building image from %s: %w", src.Dockerfile, err)
	}
	return src.Tag, nil
}

// runSpec assembles the RunSpec for a branch's session.
func (m *Manager) runSpec(branch, worktreePath, image string) RunSpec {
	return RunSpec{
		Image:      image,
		Name:       m.nameFor(branch),
		MountSrc:   worktreePath,
		MountDst:   m.mountPoint(),
		WorkingDir: m.mountPoint(),
	}
}

// Ensure brings the branch's container into the state EnterCommand
// expects. In ephemeral mode (keep-alive off) there is nothing to do:
// the enter step launches a one-shot auto-removed run directly. In
// keep-alive mode the container is created (building the image if
// needed), started if stopped, and left alone if already running.
func (m *Manager) Ensure(ctx context.Context, branch, worktreePath string) error {
	if !m.set.KeepAlive {
		return nil
	}
	if !m.rt.Available() {
		return fmt.Errorf("%w: %s", model.ErrRuntimeUnavailable, m.rt.Binary())
	}

	name := m.nameFor(branch)
	exists, err := m.rt.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		running, err := m.rt.Running(ctx, name)
		if err != nil {
			return err
		}
		if running {
			return nil
		}
		if err := m.rt.Start(ctx, name); err != nil {
			return fmt.Errorf("starting container %s: %w", name, err)
		}
		return nil
	}

	image, err := m.resolveAndBuild(ctx, branch)
	if err != nil {
		return err
	}
	if err := m.rt.RunDetached(ctx, m.runSpec(branch, worktreePath, image)); err != nil {
		return fmt.Errorf("creating container %s: %w", name, err)
	}
	fmt.Fprintf(m.out, "Created container %s\n", name)
	return nil
}

// EnterCommand returns the argv the caller should execute to enter the
// branch's container: an exec into the persistent container in
// keep-alive mode, or a one-shot `run --rm -it` otherwise. In ephemeral
// mode the image is resolved (and built, when a Dockerfile matched)
// here, since the run needs it immediately.
//
// The command is handed to the caller's environment for execution; this
// component never runs it itself.
func (m *Manager) EnterCommand(ctx context.Context, branch, worktreePath string) ([]string, error) {
	if !m.rt.Available() {
		return nil, fmt.Errorf("%w: %s", model.ErrRuntimeUnavailable, m.rt.Binary())
	}

	if m.set.KeepAlive {
		return m.rt.ExecArgs(m.nameFor(branch), m.mountPoint()), nil
	}

	image, err := m.resolveAndBuild(ctx, branch)
	if err != nil {
		return nil, err
	}
	return m.rt.RunArgs(m.runSpec(branch, worktreePath, image)), nil
}

// Remove deletes the branch's container, best-effort. Missing runtime
// or missing container are a successful no-op; an actual removal
// failure is reported as a warning, not an error — cleanup must never
// block worktree removal.
func (m *Manager) Remove(ctx context.Context, branch string) {
	if !m.rt.Available() {
		return
	}
	name := m.nameFor(branch)

	exists, err := m.rt.Exists(ctx, name)
	if err != nil || !exists {
		return
	}
	if err := m.rt.Remove(ctx, name); err != nil {
		fmt.Fprintf(m.out, "Warning: could not remove container %s: %v\n", name, err)
		return
	}
	fmt.Fprintf(m.out, "Removed container %s\n", name)
}
