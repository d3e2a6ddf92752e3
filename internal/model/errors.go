package model

import (
	"errors"
	"fmt"
)

// ExitCode defines the CLI exit codes. Scripts rely on these values,
// so they are part of the tool's public contract.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates a general failure: missing repository,
	// missing worktree, protected removal, bad flags, and so on.
	ExitFailure ExitCode = 1

	// ExitHelp is returned when help text was displayed.
	ExitHelp ExitCode = 2

	// ExitMissingBinary indicates a required external binary (git, or the
	// configured container runtime) was not found in PATH.
	ExitMissingBinary ExitCode = 127
)

// Sentinel errors for the failure modes the handlers distinguish.
// Callers classify errors with errors.Is, so lower layers must wrap
// these with fmt.Errorf("...: %w", ...) rather than invent new ones.
var (
	// ErrNotARepository: the current directory is not inside a git repository.
	ErrNotARepository = errors.New("not inside a git repository")

	// ErrWorktreeNotFound: no worktree exists for the requested branch.
	ErrWorktreeNotFound = errors.New("worktree not found")

	// ErrWorktreeExists: a worktree for the branch already exists.
	ErrWorktreeExists = errors.New("worktree already exists")

	// ErrNotMerged: the branch is not fully merged into the base branch.
	// Removal is refused unless forced.
	ErrNotMerged = errors.New("branch is not merged")

	// ErrDirtyWorktree: the worktree has staged, unstaged, or untracked
	// changes. Removal is refused unless forced.
	ErrDirtyWorktree = errors.New("worktree has uncommitted changes")

	// ErrRuntimeUnavailable: the configured container runtime binary was
	// not found in PATH.
	ErrRuntimeUnavailable = errors.New("container runtime not available")

	// ErrContainerOperation: a container create/start/build/remove failed.
	ErrContainerOperation = errors.New("container operation failed")

	// ErrInvalidArgument: bad flags, unknown option names, or unusable
	// positional arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingDependency: the git binary itself is absent.
	ErrMissingDependency = errors.New("required binary not found")
)

// ExitCodeFor maps an error to the exit code the process should return.
// Missing external binaries (git or the container runtime) map to 127;
// every other failure is a general error.
func ExitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	if errors.Is(err, ErrMissingDependency) || errors.Is(err, ErrRuntimeUnavailable) {
		return ExitMissingBinary
	}
	return ExitFailure
}

// CLIError is an error that carries an explicit exit code. It is used
// where the default ExitCodeFor mapping is not enough (e.g. help display).
type CLIError struct {
	Code    ExitCode
	Message string
	Err     error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
