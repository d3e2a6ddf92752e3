// Package model defines the domain types shared across the forktree CLI:
// the worktree entity, listing filters, the error taxonomy, and the
// CLIError type that maps failures to process exit codes.
//
// All state in this domain is transient. The tool never keeps its own
// index of worktrees or containers; every value here is re-derived from
// git and the container runtime at the start of each invocation.
package model
