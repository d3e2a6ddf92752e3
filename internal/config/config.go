// Package config builds the per-invocation Settings value object.
//
// Settings are assembled once at startup and passed as a parameter into
// every component; there is no package-level mutable configuration.
// Sources, lowest precedence first:
//
//  1. built-in defaults
//  2. a project file at the main repository root: .forktree.yaml,
//     .forktree.yml, or .forktree.json (JSONC comments allowed)
//  3. a .forkenv file at the main repository root (KEY=VALUE lines)
//  4. the process environment
//
// All environment-style option names share the reserved FORK_ prefix.
package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/forktree/internal/model"
)

// Runtime flavors accepted by the FORK_RUNTIME option.
const (
	RuntimeDocker = "docker"
	RuntimePodman = "podman"
)

// Settings holds every recognized option for a single invocation.
type Settings struct {
	// WorktreeDir is the fork-directory template. A "{repo}" placeholder
	// expands to the repository's short name; relative results are
	// resolved against the parent directory of the main repository root.
	WorktreeDir string

	// BaseBranch is the default branch new worktrees fork from and the
	// branch merge status is computed against.
	BaseBranch string

	// Container enables container mode without passing --container.
	Container bool

	// Image is the fallback container image when no Dockerfile resolves.
	Image string

	// Dockerfile is an explicit override Dockerfile path. Highest
	// priority in image resolution when the file exists.
	Dockerfile string

	// DefaultDockerfile is the last-resort Dockerfile path, consulted
	// after the automatic Dockerfile.fork discovery.
	DefaultDockerfile string

	// Runtime selects the container runtime binary: "docker" or "podman".
	Runtime string

	// Prefix is prepended (with an underscore) to derived container names.
	Prefix string

	// KeepAlive leaves containers running in the background between
	// invocations instead of using one-shot auto-removed runs.
	KeepAlive bool
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		WorktreeDir: "{repo}_forks",
		BaseBranch:  "main",
		Image:       "ubuntu:latest",
		Runtime:     RuntimeDocker,
	}
}

// envFileName is the optional env-format option file at the main repo root.
const envFileName = ".forkenv"

// projectFileNames are probed in order; the first that exists wins.
var projectFileNames = []string{".forktree.yaml", ".forktree.yml", ".forktree.json"}

// Load assembles Settings for one invocation. mainRoot is the main
// repository root (where the optional files live); environ is the
// process environment in os.Environ() form, passed in rather than read
// globally so tests can supply their own.
func Load(mainRoot string, environ []string) (Settings, error) {
	s := Default()

	if err := applyProjectFile(&s, mainRoot); err != nil {
		return s, err
	}
	if err := applyEnvFile(&s, filepath.Join(mainRoot, envFileName)); err != nil {
		return s, err
	}
	if err := applyEnviron(&s, environ); err != nil {
		return s, err
	}

	if s.Runtime != RuntimeDocker && s.Runtime != RuntimePodman {
		return s, fmt.Errorf("%w: FORK_RUNTIME must be %q or %q, got %q",
			model.ErrInvalidArgument, RuntimeDocker, RuntimePodman, s.Runtime)
	}
	return s, nil
}

// fileSettings mirrors Settings with pointer fields so absent keys are
// distinguishable from zero values. The same struct decodes both the
// YAML and the JSONC project file.
type fileSettings struct {
	WorktreeDir       *string `yaml:"worktree_dir" json:"worktree_dir"`
	BaseBranch        *string `yaml:"base_branch" json:"base_branch"`
	Container         *bool   `yaml:"container" json:"container"`
	Image             *string `yaml:"image" json:"image"`
	Dockerfile        *string `yaml:"dockerfile" json:"dockerfile"`
	DefaultDockerfile *string `yaml:"default_dockerfile" json:"default_dockerfile"`
	Runtime           *string `yaml:"runtime" json:"runtime"`
	Prefix            *string `yaml:"prefix" json:"prefix"`
	KeepAlive         *bool   `yaml:"keepalive" json:"keepalive"`
}

// merge overlays the present fields onto s.
func (f *fileSettings) merge(s *Settings) {
	if f.WorktreeDir != nil {
		s.WorktreeDir = *f.WorktreeDir
	}
	if f.BaseBranch != nil {
		s.BaseBranch = *f.BaseBranch
	}
	if f.Container != nil {
		s.Container = *f.Container
	}
	if f.Image != nil {
		s.Image = *f.Image
	}
	if f.Dockerfile != nil {
		s.Dockerfile = *f.Dockerfile
	}
	if f.DefaultDockerfile != nil {
		s.DefaultDockerfile = *f.DefaultDockerfile
	}
	if f.Runtime != nil {
		s.Runtime = *f.Runtime
	}
	if f.Prefix != nil {
		s.Prefix = *f.Prefix
	}
	if f.KeepAlive != nil {
		s.KeepAlive = *f.KeepAlive
	}
}

// applyProjectFile loads the first project file found at mainRoot.
// Unknown keys are rejected: a typo in an authored config file should
// fail loudly, not silently fall back to a default.
func applyProjectFile(s *Settings, mainRoot string) error {
	for _, name := range projectFileNames {
		path := filepath.Join(mainRoot, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var fs fileSettings
		if strings.HasSuffix(name, ".json") {
			// jsonc.ToJSON strips comments and trailing commas so the
			// standard decoder can handle the file.
			dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&fs); err != nil {
				return fmt.Errorf("%w: parsing %s: %v", model.ErrInvalidArgument, path, err)
			}
		} else {
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			if err := dec.Decode(&fs); err != nil {
				return fmt.Errorf("%w: parsing %s: %v", model.ErrInvalidArgument, path, err)
			}
		}

		fs.merge(s)
		return nil
	}
	return nil
}

// applyEnvFile loads KEY=VALUE lines from the optional .forkenv file.
// Blank lines and lines starting with # are skipped. Every key must be
// a recognized FORK_* name; the file exists solely for this tool, so an
// unknown key is an error rather than noise to ignore.
func applyEnvFile(s *Settings, path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%w: %s:%d: expected KEY=VALUE, got %q",
				model.ErrInvalidArgument, path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		ok, err := applyEnvOption(s, key, value)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s:%d: unknown option %q",
				model.ErrInvalidArgument, path, lineNo, key)
		}
	}
	return scanner.Err()
}

// applyEnviron overlays FORK_* variables from the process environment.
// Unrecognized FORK_* names in the ambient environment are ignored; the
// environment is shared with the user's shell and other tooling.
func applyEnviron(s *Settings, environ []string) error {
	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, "FORK_") {
			continue
		}
		if _, err := applyEnvOption(s, key, value); err != nil {
			return err
		}
	}
	return nil
}

// applyEnvOption applies one FORK_* option. Returns false when the key
// is not a recognized option name.
func applyEnvOption(s *Settings, key, value string) (bool, error) {
	switch key {
	case "FORK_WORKTREE_DIR":
		s.WorktreeDir = value
	case "FORK_BASE_BRANCH":
		s.BaseBranch = value
	case "FORK_CONTAINER":
		b, err := parseBool(key, value)
		if err != nil {
			return true, err
		}
		s.Container = b
	case "FORK_IMAGE":
		s.Image = value
	case "FORK_DOCKERFILE":
		s.Dockerfile = value
	case "FORK_DEFAULT_DOCKERFILE":
		s.DefaultDockerfile = value
	case "FORK_RUNTIME":
		s.Runtime = value
	case "FORK_PREFIX":
		s.Prefix = value
	case "FORK_KEEPALIVE":
		b, err := parseBool(key, value)
		if err != nil {
			return true, err
		}
		s.KeepAlive = b
	default:
		return false, nil
	}
	return true, nil
}

// parseBool accepts the boolean spellings shell users actually write.
func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s: not a boolean: %q", model.ErrInvalidArgument, key, value)
}

// ForksDir resolves the fork-directory template for a repository.
// "{repo}" expands to repoName; a relative result is anchored at the
// parent directory of the main repository root, so the default
// "{repo}_forks" yields a sibling of the repository itself.
func (s Settings) ForksDir(mainRoot, repoName string) string {
	dir := strings.ReplaceAll(s.WorktreeDir, "{repo}", repoName)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(mainRoot), dir)
	}
	return filepath.Clean(dir)
}
