package model

// Worktree is one checked-out working copy of a branch, living at the
// deterministic path <forks-dir>/<branch>. Merged and Dirty are computed
// by the classifier at listing time, never stored.
type Worktree struct {
	// Branch is the short branch name (e.g. "feature-auth"). Unique among
	// the active worktrees of a repository.
	Branch string `json:"branch"`

	// Path is the absolute filesystem path of the worktree directory.
	Path string `json:"path"`

	// Merged reports whether the branch's history is fully contained in
	// the base branch's history.
	Merged bool `json:"merged"`

	// Dirty reports whether the worktree has staged, unstaged, or
	// untracked changes.
	Dirty bool `json:"dirty"`
}

// Protected reports whether the worktree may not be removed without
// --force: either its branch is unmerged or the tree is dirty.
func (w Worktree) Protected() bool {
	return !w.Merged || w.Dirty
}

// Filter selects worktrees by merge and dirty state for the ls command.
// The zero value matches everything. Merged/Unmerged and Dirty/Clean are
// mutually exclusive pairs; the CLI rejects contradictory combinations
// before a Filter is built.
type Filter struct {
	Merged   bool
	Unmerged bool
	Dirty    bool
	Clean    bool
}

// Match reports whether the worktree passes every requested predicate.
func (f Filter) Match(w Worktree) bool {
	if f.Merged && !w.Merged {
		return false
	}
	if f.Unmerged && w.Merged {
		return false
	}
	if f.Dirty && !w.Dirty {
		return false
	}
	if f.Clean && w.Dirty {
		return false
	}
	return true
}

// Apply returns the worktrees matching the filter, preserving order.
func (f Filter) Apply(worktrees []Worktree) []Worktree {
	out := make([]Worktree, 0, len(worktrees))
	for _, w := range worktrees {
		if f.Match(w) {
			out = append(out, w)
		}
	}
	return out
}
