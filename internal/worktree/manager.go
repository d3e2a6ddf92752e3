package worktree

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shinji-kodama/forktree/internal/model"
)

// Entry is one worktree record parsed from
// `git worktree list --porcelain`.
type Entry struct {
	// Path is the absolute path of the worktree directory.
	Path string

	// Branch is the short branch name ("feature-x"), empty when detached.
	Branch string

	// HEAD is the commit the worktree currently points at.
	HEAD string

	// Bare marks a bare repository entry.
	Bare bool
}

// Manager drives the git worktree registry for one repository. It is
// constructed per invocation from the resolved layout and re-queries git
// for every operation.
type Manager struct {
	mainRoot string
	forksDir string

	// out receives the one-line user-facing notices ("Created ...",
	// "Removed ...").
	out io.Writer
}

// NewManager creates a Manager rooted at the main repository, managing
// worktrees under forksDir. Notices are written to out.
func NewManager(mainRoot, forksDir string, out io.Writer) *Manager {
	return &Manager{mainRoot: mainRoot, forksDir: forksDir, out: out}
}

// ForksDir returns the worktree base directory.
func (m *Manager) ForksDir() string {
	return m.forksDir
}

// PathFor returns the deterministic path of a branch's worktree. No
// other path is ever treated as that branch's worktree.
func (m *Manager) PathFor(branch string) string {
	return filepath.Join(m.forksDir, branch)
}

// List enumerates every worktree git has registered for the repository,
// including the main one (always the first entry).
func (m *Manager) List() ([]Entry, error) {
	output, err := runGit(m.mainRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(output), nil
}

// ListForks returns the registered worktrees that live under the fork
// base directory, sorted by branch name. Detached or bare entries under
// the base (which should not occur) are skipped.
func (m *Manager) ListForks() ([]model.Worktree, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}

	var forks []model.Worktree
	for _, e := range entries {
		if e.Bare || e.Branch == "" {
			continue
		}
		if _, ok := BranchFromPath(e.Path, m.forksDir); !ok {
			continue
		}
		forks = append(forks, model.Worktree{Branch: e.Branch, Path: e.Path})
	}
	sort.Slice(forks, func(i, j int) bool { return forks[i].Branch < forks[j].Branch })
	return forks, nil
}

// Exists reports whether a worktree for branch exists: the directory is
// present at the branch's path AND git's registry lists that exact path.
// Both conditions are required — a leftover directory without a registry
// entry is not a worktree, and a registry entry whose directory was
// deleted externally is not usable.
func (m *Manager) Exists(branch string) (bool, error) {
	path := m.PathFor(branch)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	entries, err := m.List()
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Path == path {
			return true, nil
		}
	}
	return false, nil
}

// Create makes a new worktree for branch under the fork base directory.
//
// The source ref is resolved in priority order:
//  1. a remote tracking branch origin/<branch> — check it out tracking
//     the remote;
//  2. an existing local <branch> — check it out as-is;
//  3. otherwise a new branch is created from origin/<baseBranch> when
//     that exists, else from the local <baseBranch>.
//
// Resuming existing work (local or remote) always wins over branching
// fresh from base; silently forking a duplicate of a branch that already
// exists elsewhere is the failure mode this ordering prevents.
func (m *Manager) Create(branch, baseBranch string) error {
	exists, err := m.Exists(branch)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", model.ErrWorktreeExists, branch)
	}

	if err := os.MkdirAll(m.forksDir, 0o755); err != nil {
		return fmt.Errorf("creating fork directory %s: %w", m.forksDir, err)
	}

	path := m.PathFor(branch)
	local, err := m.BranchExists(branch)
	if err != nil {
		return err
	}
	remote, err := m.RemoteBranchExists(branch)
	if err != nil {
		return err
	}

	switch {
	case !local && remote:
		_, err = runGit(m.mainRoot, "worktree", "add", "--track", "-b", branch, path, "origin/"+branch)
	case local:
		_, err = runGit(m.mainRoot, "worktree", "add", path, branch)
	default:
		source := baseBranch
		remoteBase, berr := m.RemoteBranchExists(baseBranch)
		if berr != nil {
			return berr
		}
		if remoteBase {
			source = "origin/" + baseBranch
		}
		_, err = runGit(m.mainRoot, "worktree", "add", "-b", branch, path, source)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Created worktree %s at %s\n", branch, path)
	return nil
}

// Remove deletes the worktree for branch.
//
// Unless force is set, two safety gates apply in order: the branch must
// be merged into baseBranch (ErrNotMerged otherwise), and the worktree
// must be clean (ErrDirtyWorktree otherwise). The order matters — when
// both hold, the caller sees the merge error. Force bypasses both gates
// together, never one at a time.
//
// Removal itself first tries git's soft path and falls back to a forced
// removal when the soft path fails for reasons other than the gates
// above (stale administrative files, filesystem quirks).
func (m *Manager) Remove(branch, baseBranch string, force bool) error {
	exists, err := m.Exists(branch)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", model.ErrWorktreeNotFound, branch)
	}
	path := m.PathFor(branch)

	if !force {
		merged, err := m.IsMerged(branch, baseBranch)
		if err != nil {
			return err
		}
		if !merged {
			return fmt.Errorf("%w into %s: %s (use --force to remove anyway)",
				model.ErrNotMerged, baseBranch, branch)
		}
		dirty, err := m.IsDirty(path)
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("%w: %s (use --force to remove anyway)",
				model.ErrDirtyWorktree, branch)
		}
	}

	if _, err := runGit(m.mainRoot, "worktree", "remove", path); err != nil {
		// The safety gates already passed (or were forced), so a soft
		// failure here is git being stricter than we need. Escalate.
		if _, ferr := runGit(m.mainRoot, "worktree", "remove", "--force", path); ferr != nil {
			return ferr
		}
	}

	fmt.Fprintf(m.out, "Removed worktree %s\n", branch)
	return nil
}

// parsePorcelain parses `git worktree list --porcelain` output. Blocks
// are separated by blank lines; each line is a key plus optional value.
// "bare" and "detached" are standalone markers — a detached worktree
// simply has an empty Branch.
func parsePorcelain(output string) []Entry {
	var entries []Entry

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *Entry
	for _, line := range lines {
		if line == "" {
			if current != nil {
				entries = append(entries, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			current = &Entry{Path: value}
		case "HEAD":
			if current != nil {
				current.HEAD = value
			}
		case "branch":
			if current != nil {
				current.Branch = strings.TrimPrefix(value, "refs/heads/")
			}
		case "bare":
			if current != nil {
				current.Bare = true
			}
		}
	}
	if current != nil {
		entries = append(entries, *current)
	}

	return entries
}
