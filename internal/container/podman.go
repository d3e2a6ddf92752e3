package container

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// podmanRuntime drives the podman binary. Podman ships no Go SDK worth
// depending on, and its CLI is flag-compatible with docker for every
// operation this tool needs.
type podmanRuntime struct{}

func (p *podmanRuntime) Binary() string { return "podman" }

func (p *podmanRuntime) Available() bool {
	_, err := exec.LookPath("podman")
	return err == nil
}

// Exists uses `podman container exists`, which answers through its exit
// status: 0 when the container exists, 1 when it does not.
func (p *podmanRuntime) Exists(ctx context.Context, name string) (bool, error) {
	// #nosec G204 — fixed binary, name derived internally
	cmd := exec.CommandContext(ctx, "podman", "container", "exists", name)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

func (p *podmanRuntime) Running(ctx context.Context, name string) (bool, error) {
	exists, err := p.Exists(ctx, name)
	if err != nil || !exists {
		return false, err
	}
	out, err := runCLI(ctx, "podman", "container", "inspect", "--format", "{{.State.Running}}", name)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

func (p *podmanRuntime) Start(ctx context.Context, name string) error {
	_, err := runCLI(ctx, "podman", "start", name)
	return err
}

func (p *podmanRuntime) Remove(ctx context.Context, name string) error {
	_, err := runCLI(ctx, "podman", "rm", "-f", name)
	return err
}

func (p *podmanRuntime) RunDetached(ctx context.Context, spec RunSpec) error {
	_, err := runCLI(ctx, "podman", detachedRunArgs(spec)...)
	return err
}

func (p *podmanRuntime) Build(ctx context.Context, dockerfile, contextDir, tag string) error {
	_, err := runCLI(ctx, "podman", buildArgs(dockerfile, contextDir, tag)...)
	return err
}

func (p *podmanRuntime) ExecArgs(name, workingDir string) []string {
	return []string{"podman", "exec", "-it", "-w", workingDir, name, defaultShell}
}

func (p *podmanRuntime) RunArgs(spec RunSpec) []string {
	return oneShotRunArgs("podman", spec)
}
