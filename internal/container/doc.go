// Package container manages the per-worktree isolation containers.
//
// Each fork worktree maps to at most one container whose name is a pure
// function of the branch name and the configured prefix. The container
// runtime (docker or podman, selected by configuration) is the source of
// truth for container state; this package queries it by name on every
// operation and caches nothing across invocations.
//
// The docker flavor uses the Docker Engine SDK for queries and lifecycle
// calls and the docker CLI for run/build, where the CLI flag surface is
// the simpler interface. The podman flavor drives the podman binary
// throughout.
package container
