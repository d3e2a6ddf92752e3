package worktree

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/forktree/internal/model"
)

// CheckGitAvailable verifies the git binary is in PATH. Called once at
// startup; a missing git maps to exit code 127.
func CheckGitAvailable() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("%w: git", model.ErrMissingDependency)
	}
	return nil
}

// runGit executes a git command in the given directory and returns its
// stdout. The directory is passed via -C so the process's own working
// directory never changes. On failure the error message includes git's
// stderr, which is where git puts anything diagnosable.
func runGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, s)
		}
		return "", fmt.Errorf("%s: %w", msg, err)
	}

	return stdout.String(), nil
}

// gitExitCode runs a git command and returns its exit code. Commands
// like `git diff --quiet` communicate their answer through the exit
// status (0 = clean, 1 = differences), so a non-zero exit is data, not
// an error. Failures that are not plain exit statuses are returned as
// errors.
func gitExitCode(dir string, args ...string) (int, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
}
