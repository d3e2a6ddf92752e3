package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/forktree/internal/config"
	"github.com/shinji-kodama/forktree/internal/model"
)

// RunSpec describes the container a worktree session runs in: the
// resolved image, the worktree bind mount, and the working directory
// inside the container (the mount point).
type RunSpec struct {
	Image      string
	Name       string
	MountSrc   string
	MountDst   string
	WorkingDir string
}

// Runtime is the interface both container runtime flavors implement.
// All state queries go by container name; nothing is cached.
type Runtime interface {
	// Binary returns the runtime binary name ("docker" or "podman").
	Binary() string

	// Available reports whether the runtime binary is in PATH.
	Available() bool

	// Exists reports whether a container of that name exists (any state).
	Exists(ctx context.Context, name string) (bool, error)

	// Running reports whether a container of that name is running.
	Running(ctx context.Context, name string) (bool, error)

	// Start starts a stopped container.
	Start(ctx context.Context, name string) error

	// Remove force-removes a container.
	Remove(ctx context.Context, name string) error

	// RunDetached starts a long-lived background container per spec,
	// with a no-op entry process so it can be exec'd into later.
	RunDetached(ctx context.Context, spec RunSpec) error

	// Build builds an image from a Dockerfile and tags it.
	Build(ctx context.Context, dockerfile, contextDir, tag string) error

	// ExecArgs returns the argv that attaches an interactive shell to a
	// running container. The command is handed back to the caller for
	// execution, not run here.
	ExecArgs(name, workingDir string) []string

	// RunArgs returns the argv for a one-shot interactive session that
	// is removed on exit.
	RunArgs(spec RunSpec) []string
}

// NewRuntime selects the runtime implementation for the configured flavor.
func NewRuntime(set config.Settings) Runtime {
	if set.Runtime == config.RuntimePodman {
		return &podmanRuntime{}
	}
	return &dockerRuntime{}
}

// keepAliveEntry is the no-op process that keeps a detached container
// alive between sessions.
var keepAliveEntry = []string{"sleep", "infinity"}

// runCLI executes a runtime CLI command and returns combined output.
// Errors carry the runtime's own output, which is where both docker and
// podman report anything useful.
func runCLI(ctx context.Context, binary string, args ...string) (string, error) {
	// #nosec G204 — binary is one of two known runtimes, args built internally
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s %s: %s",
			model.ErrContainerOperation, binary, strings.Join(args, " "), msg)
	}
	return string(output), nil
}

// detachedRunArgs builds the argv tail shared by both flavors for
// RunDetached: a named background container with the worktree mounted
// read-write and the working directory at the mount point.
func detachedRunArgs(spec RunSpec) []string {
	args := []string{
		"run", "-d",
		"--name", spec.Name,
		"-v", spec.MountSrc + ":" + spec.MountDst,
		"-w", spec.WorkingDir,
		spec.Image,
	}
	return append(args, keepAliveEntry...)
}

// oneShotRunArgs builds the argv for an ephemeral interactive session.
func oneShotRunArgs(binary string, spec RunSpec) []string {
	return []string{
		binary, "run", "--rm", "-it",
		"--name", spec.Name,
		"-v", spec.MountSrc + ":" + spec.MountDst,
		"-w", spec.WorkingDir,
		spec.Image,
		defaultShell,
	}
}

// defaultShell is what interactive sessions drop into. The default
// fallback image (ubuntu) and every Dockerfile.fork in practice carry
// bash.
const defaultShell = "/bin/bash"

// buildArgs builds the image-build argv shared by both flavors.
func buildArgs(dockerfile, contextDir, tag string) []string {
	return []string{"build", "-f", dockerfile, "-t", tag, contextDir}
}
