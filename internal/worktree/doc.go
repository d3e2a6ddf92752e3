// Package worktree is the git integration layer: it locates the main
// repository and the fork directory, enumerates and mutates the worktree
// registry, and classifies branches (merged into base?) and working
// trees (dirty?).
//
// Mutating operations shell out to the git CLI — worktree semantics must
// match the git binary exactly, and go-git's worktree support is too
// limited to rely on. Read-only ref and ancestry queries use go-git
// against the main repository, which avoids a subprocess per check.
//
// The git CLI is the source of truth for the worktree registry; this
// package re-derives all state on every call and caches nothing.
package worktree
