package worktree

import (
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/shinji-kodama/forktree/internal/model"
)

// openRepo opens the main repository with go-git for read-only ref and
// ancestry queries. Always the main root — branch refs are repository
// level, and go-git handles a regular .git directory reliably.
func (m *Manager) openRepo() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(m.mainRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrNotARepository, m.mainRoot)
	}
	return repo, nil
}

// BranchExists reports whether a local branch ref exists.
func (m *Manager) BranchExists(branch string) (bool, error) {
	repo, err := m.openRepo()
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolving branch %s: %w", branch, err)
	}
	return true, nil
}

// RemoteBranchExists reports whether origin/<branch> exists.
func (m *Manager) RemoteBranchExists(branch string) (bool, error) {
	repo, err := m.openRepo()
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolving origin/%s: %w", branch, err)
	}
	return true, nil
}

// IsMerged reports whether branch's history is fully contained in
// baseBranch's history. The base tip is resolved from the local base
// branch, falling back to origin/<base> when no local ref exists.
func (m *Manager) IsMerged(branch, baseBranch string) (bool, error) {
	repo, err := m.openRepo()
	if err != nil {
		return false, err
	}

	branchCommit, err := tipCommit(repo, branch)
	if err != nil {
		return false, err
	}
	baseCommit, err := tipCommit(repo, baseBranch)
	if err != nil {
		return false, err
	}

	if branchCommit.Hash == baseCommit.Hash {
		return true, nil
	}
	merged, err := branchCommit.IsAncestor(baseCommit)
	if err != nil {
		return false, fmt.Errorf("checking ancestry of %s against %s: %w", branch, baseBranch, err)
	}
	return merged, nil
}

// tipCommit resolves a branch name to its tip commit, preferring the
// local ref and falling back to origin/<name>.
func tipCommit(repo *git.Repository, name string) (*object.Commit, error) {
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err == plumbing.ErrReferenceNotFound {
		ref, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", name), true)
	}
	if err != nil {
		return nil, fmt.Errorf("branch %s: %w", name, err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading commit %s for %s: %w", ref.Hash(), name, err)
	}
	return commit, nil
}

// IsDirty reports whether the worktree at path has any unstaged change
// to tracked files, any staged-but-uncommitted change, or any untracked
// file not covered by ignore rules. The three probes are independent
// and OR'd; the first positive answer short-circuits.
//
// A worktree directory that is missing or unreadable is an error, never
// silently clean — callers must not treat a vanished tree as removable.
func (m *Manager) IsDirty(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, fmt.Errorf("worktree not accessible at %s: %w", path, err)
	}

	// Unstaged modifications to tracked files.
	code, err := gitExitCode(path, "diff", "--quiet")
	if err != nil {
		return false, err
	}
	if code != 0 {
		return true, nil
	}

	// Staged but uncommitted changes.
	code, err = gitExitCode(path, "diff", "--cached", "--quiet")
	if err != nil {
		return false, err
	}
	if code != 0 {
		return true, nil
	}

	// Untracked files not excluded by ignore rules.
	out, err := runGit(path, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Classify fills in the computed Merged and Dirty fields for each
// worktree, using baseBranch for the merge check.
func (m *Manager) Classify(worktrees []model.Worktree, baseBranch string) ([]model.Worktree, error) {
	out := make([]model.Worktree, 0, len(worktrees))
	for _, w := range worktrees {
		merged, err := m.IsMerged(w.Branch, baseBranch)
		if err != nil {
			return nil, err
		}
		dirty, err := m.IsDirty(w.Path)
		if err != nil {
			return nil, err
		}
		w.Merged = merged
		w.Dirty = dirty
		out = append(out, w)
	}
	return out, nil
}
