package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFilterPartition verifies that the merged/unmerged and dirty/clean
// filters each partition a set of worktrees: the two halves are disjoint
// and their union is the unfiltered set.
func TestFilterPartition(t *testing.T) {
	all := []Worktree{
		{Branch: "a", Merged: true, Dirty: false},
		{Branch: "b", Merged: true, Dirty: true},
		{Branch: "c", Merged: false, Dirty: false},
		{Branch: "d", Merged: false, Dirty: true},
	}

	merged := Filter{Merged: true}.Apply(all)
	unmerged := Filter{Unmerged: true}.Apply(all)
	assert.Len(t, merged, 2)
	assert.Len(t, unmerged, 2)
	assert.Equal(t, len(all), len(merged)+len(unmerged))
	for _, w := range merged {
		assert.True(t, w.Merged)
	}
	for _, w := range unmerged {
		assert.False(t, w.Merged)
	}

	dirty := Filter{Dirty: true}.Apply(all)
	clean := Filter{Clean: true}.Apply(all)
	assert.Equal(t, len(all), len(dirty)+len(clean))
}

// TestFilterCombined verifies that combined predicates are ANDed.
func TestFilterCombined(t *testing.T) {
	all := []Worktree{
		{Branch: "a", Merged: true, Dirty: false},
		{Branch: "b", Merged: true, Dirty: true},
		{Branch: "c", Merged: false, Dirty: false},
	}

	got := Filter{Merged: true, Clean: true}.Apply(all)
	assert.Equal(t, []Worktree{{Branch: "a", Merged: true}}, got)
}

// TestProtected verifies the removal-protection rule: a worktree is
// protected when unmerged OR dirty.
func TestProtected(t *testing.T) {
	assert.False(t, Worktree{Merged: true, Dirty: false}.Protected())
	assert.True(t, Worktree{Merged: false, Dirty: false}.Protected())
	assert.True(t, Worktree{Merged: true, Dirty: true}.Protected())
	assert.True(t, Worktree{Merged: false, Dirty: true}.Protected())
}

// TestExitCodeFor verifies the error-to-exit-code mapping, including
// wrapped sentinels and explicit CLIError codes.
func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCodeFor(nil))
	assert.Equal(t, ExitFailure, ExitCodeFor(errors.New("boom")))
	assert.Equal(t, ExitFailure, ExitCodeFor(fmt.Errorf("rm: %w", ErrNotMerged)))
	assert.Equal(t, ExitMissingBinary, ExitCodeFor(fmt.Errorf("start: %w", ErrRuntimeUnavailable)))
	assert.Equal(t, ExitMissingBinary, ExitCodeFor(ErrMissingDependency))
	assert.Equal(t, ExitHelp, ExitCodeFor(NewCLIError(ExitHelp, "help shown")))
}

// TestCLIErrorUnwrap verifies that CLIError participates in errors.Is
// chains so handlers can still classify the underlying failure.
func TestCLIErrorUnwrap(t *testing.T) {
	err := WrapCLIError(ExitFailure, "remove failed", ErrDirtyWorktree)
	assert.True(t, errors.Is(err, ErrDirtyWorktree))
	assert.Equal(t, "remove failed: worktree has uncommitted changes", err.Error())
}
