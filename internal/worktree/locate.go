package worktree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/forktree/internal/model"
)

// Layout describes where a repository and its pieces live, resolved from
// the caller's working directory. All paths are absolute.
type Layout struct {
	// RepoRoot is the root of the working tree containing the caller's
	// directory — a fork worktree's root when invoked from inside one.
	RepoRoot string

	// MainRoot is the root of the main repository. Equal to RepoRoot when
	// the caller is not inside a fork worktree.
	MainRoot string

	// RepoName is the repository's short name: the basename of MainRoot.
	RepoName string
}

// Locate resolves the repository layout from cwd. Returns
// model.ErrNotARepository when cwd is not inside a git repository.
func Locate(cwd string) (Layout, error) {
	top, err := runGit(cwd, "rev-parse", "--show-toplevel")
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %s", model.ErrNotARepository, cwd)
	}
	repoRoot := strings.TrimSpace(top)

	// The common git dir is shared by all worktrees of a repository.
	// For the main checkout it is <root>/.git; from inside a linked
	// worktree it still points at the main repository's .git, which is
	// how we find the main root regardless of where we were invoked.
	common, err := runGit(cwd, "rev-parse", "--git-common-dir")
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %s", model.ErrNotARepository, cwd)
	}
	commonDir := strings.TrimSpace(common)
	if !filepath.IsAbs(commonDir) {
		// rev-parse prints paths relative to the directory it ran in.
		commonDir = filepath.Join(cwd, commonDir)
	}
	commonDir = filepath.Clean(commonDir)

	mainRoot := commonDir
	if filepath.Base(commonDir) == ".git" {
		mainRoot = filepath.Dir(commonDir)
	}

	return Layout{
		RepoRoot: repoRoot,
		MainRoot: mainRoot,
		RepoName: filepath.Base(mainRoot),
	}, nil
}

// BranchFromPath derives the branch name of the fork worktree containing
// path, given the fork base directory. It is a pure path computation:
// if path lies under forksDir, the first path segment beneath forksDir
// is the branch name. Returns ok=false when path is not inside forksDir.
func BranchFromPath(path, forksDir string) (string, bool) {
	rel, err := filepath.Rel(forksDir, filepath.Clean(path))
	if err != nil {
		return "", false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	return parts[0], true
}
