package worktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchExists(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t, repo, nil)

	runTestGit(t, repo, "branch", "known")

	exists, err := m.BranchExists("known")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = m.BranchExists("unknown")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRemoteBranchExists(t *testing.T) {
	repo := setupTestRepo(t)
	base := defaultBranch(t, repo)
	setupRemote(t, repo)
	m := newTestManager(t, repo, nil)

	exists, err := m.RemoteBranchExists(base)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = m.RemoteBranchExists("never-pushed")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsMerged(t *testing.T) {
	repo := setupTestRepo(t)
	base := defaultBranch(t, repo)
	m := newTestManager(t, repo, nil)

	// A branch pointing at the base tip is merged (equal histories).
	runTestGit(t, repo, "branch", "same-tip")
	merged, err := m.IsMerged("same-tip", base)
	require.NoError(t, err)
	assert.True(t, merged)

	// A branch with its own commit is not merged.
	runTestGit(t, repo, "checkout", "-b", "ahead")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "ahead.txt"), []byte("a\n"), 0o644))
	runTestGit(t, repo, "add", ".")
	runTestGit(t, repo, "commit", "-m", "ahead of base")
	runTestGit(t, repo, "checkout", base)

	merged, err = m.IsMerged("ahead", base)
	require.NoError(t, err)
	assert.False(t, merged)

	// After merging into base it is merged again.
	runTestGit(t, repo, "merge", "--no-edit", "ahead")
	merged, err = m.IsMerged("ahead", base)
	require.NoError(t, err)
	assert.True(t, merged)
}

func TestIsMergedUnknownBranch(t *testing.T) {
	repo := setupTestRepo(t)
	base := defaultBranch(t, repo)
	m := newTestManager(t, repo, nil)

	_, err := m.IsMerged("no-such-branch", base)
	assert.Error(t, err)
}

func TestIsDirty(t *testing.T) {
	repo := setupTestRepo(t)
	base := defaultBranch(t, repo)
	m := newTestManager(t, repo, nil)
	require.NoError(t, m.Create("feature-a", base))
	wt := m.PathFor("feature-a")

	// Fresh checkout: clean.
	dirty, err := m.IsDirty(wt)
	require.NoError(t, err)
	assert.False(t, dirty)

	// Untracked file.
	untracked := filepath.Join(wt, "untracked.txt")
	require.NoError(t, os.WriteFile(untracked, []byte("u\n"), 0o644))
	dirty, err = m.IsDirty(wt)
	require.NoError(t, err)
	assert.True(t, dirty)

	// Staged-but-uncommitted change.
	runTestGit(t, wt, "add", "untracked.txt")
	dirty, err = m.IsDirty(wt)
	require.NoError(t, err)
	assert.True(t, dirty)

	// Unstaged modification to a tracked file.
	runTestGit(t, wt, "commit", "-m", "track it")
	require.NoError(t, os.WriteFile(untracked, []byte("changed\n"), 0o644))
	dirty, err = m.IsDirty(wt)
	require.NoError(t, err)
	assert.True(t, dirty)
}

// TestIsDirtyMissingWorktree verifies that an externally deleted
// worktree is an error, never silently clean.
func TestIsDirtyMissingWorktree(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t, repo, nil)

	_, err := m.IsDirty(filepath.Join(repo, "does-not-exist"))
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	repo := setupTestRepo(t)
	base := defaultBranch(t, repo)
	m := newTestManager(t, repo, nil)

	require.NoError(t, m.Create("merged-clean", base))
	require.NoError(t, m.Create("unmerged", base))

	wt := m.PathFor("unmerged")
	require.NoError(t, os.WriteFile(filepath.Join(wt, "w.txt"), []byte("w\n"), 0o644))
	runTestGit(t, wt, "add", ".")
	runTestGit(t, wt, "commit", "-m", "local work")

	forks, err := m.ListForks()
	require.NoError(t, err)
	classified, err := m.Classify(forks, base)
	require.NoError(t, err)
	require.Len(t, classified, 2)

	byBranch := map[string]bool{}
	for _, w := range classified {
		byBranch[w.Branch] = w.Merged
		assert.False(t, w.Dirty)
	}
	assert.True(t, byBranch["merged-clean"])
	assert.False(t, byBranch["unmerged"])
}
