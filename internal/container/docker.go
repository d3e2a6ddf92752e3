package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/shinji-kodama/forktree/internal/model"
)

// dockerRuntime drives Docker. State queries and start/remove go through
// the Engine SDK; run and build shell out to the docker CLI, whose flag
// surface maps directly onto what we need (the SDK's Config/HostConfig
// pair buys nothing here).
type dockerRuntime struct {
	// inner is created lazily on first SDK use so that commands which
	// never touch Docker (everything outside container mode) don't pay
	// for socket detection.
	inner *client.Client
}

func (d *dockerRuntime) Binary() string { return "docker" }

func (d *dockerRuntime) Available() bool {
	_, err := exec.LookPath("docker")
	return err == nil
}

// sdk returns the Docker SDK client, creating it on first use.
//
// Host detection: DOCKER_HOST wins when set; otherwise the platform's
// default socket paths are probed. Existence of the socket file is
// checked rather than connectivity — a dead daemon surfaces on the
// first real call.
func (d *dockerRuntime) sdk() (*client.Client, error) {
	if d.inner != nil {
		return d.inner, nil
	}

	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectDockerHost()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrRuntimeUnavailable, err)
		}
		host = detected
	}

	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating Docker client for %q: %v",
			model.ErrRuntimeUnavailable, host, err)
	}
	d.inner = c
	return c, nil
}

// detectDockerHost probes the standard Docker socket locations for the
// current platform.
func detectDockerHost() (string, error) {
	paths := []string{"/var/run/docker.sock"}
	if runtime.GOOS == "darwin" {
		// Newer Docker Desktop versions skip the /var/run symlink and
		// put the socket under the user's home directory.
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, home+"/.docker/run/docker.sock")
		}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// findByName lists containers filtered by name and returns whether one
// matches exactly. The Docker name filter is a substring match, so the
// results are compared against the wanted name; the API also reports
// names with a leading "/" that must be stripped.
func (d *dockerRuntime) findByName(ctx context.Context, name string, all bool) (bool, error) {
	cli, err := d.sdk()
	if err != nil {
		return false, err
	}

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     all,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return false, fmt.Errorf("%w: listing containers: %v", model.ErrContainerOperation, err)
	}

	for _, c := range containers {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == name {
				return true, nil
			}
		}
	}
	return false, nil
}

func (d *dockerRuntime) Exists(ctx context.Context, name string) (bool, error) {
	return d.findByName(ctx, name, true)
}

func (d *dockerRuntime) Running(ctx context.Context, name string) (bool, error) {
	return d.findByName(ctx, name, false)
}

func (d *dockerRuntime) Start(ctx context.Context, name string) error {
	cli, err := d.sdk()
	if err != nil {
		return err
	}
	if err := cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return fmt.Errorf("%w: starting %q: %v", model.ErrContainerOperation, name, err)
	}
	return nil
}

func (d *dockerRuntime) Remove(ctx context.Context, name string) error {
	cli, err := d.sdk()
	if err != nil {
		return err
	}
	if err := cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("%w: removing %q: %v", model.ErrContainerOperation, name, err)
	}
	return nil
}

func (d *dockerRuntime) RunDetached(ctx context.Context, spec RunSpec) error {
	_, err := runCLI(ctx, "docker", detachedRunArgs(spec)...)
	return err
}

func (d *dockerRuntime) Build(ctx context.Context, dockerfile, contextDir, tag string) error {
	_, err := runCLI(ctx, "docker", buildArgs(dockerfile, contextDir, tag)...)
	return err
}

func (d *dockerRuntime) ExecArgs(name, workingDir string) []string {
	return []string{"docker", "exec", "-it", "-w", workingDir, name, defaultShell}
}

func (d *dockerRuntime) RunArgs(spec RunSpec) []string {
	return oneShotRunArgs("docker", spec)
}
