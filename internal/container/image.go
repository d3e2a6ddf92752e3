package container

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/shinji-kodama/forktree/internal/config"
)

// forkDockerfile is the base name of automatically discovered
// Dockerfiles; Dockerfile.fork.<variant> selects a variant build.
const forkDockerfile = "Dockerfile.fork"

// ImageSource is the outcome of image resolution: either a Dockerfile
// to build (Dockerfile non-empty, Tag the deterministic image tag) or a
// pre-built image (Dockerfile empty, Tag the image name).
type ImageSource struct {
	Dockerfile string
	Variant    string
	Tag        string
}

// NeedsBuild reports whether the source is a Dockerfile build.
func (s ImageSource) NeedsBuild() bool {
	return s.Dockerfile != ""
}

// SearchDirs returns the Dockerfile discovery directories in priority
// order — current directory, its .docker subfolder, repository root,
// the root's .docker subfolder — with duplicates removed (cwd often IS
// the repository root).
func SearchDirs(cwd, repoRoot string) []string {
	candidates := []string{
		cwd,
		filepath.Join(cwd, ".docker"),
		repoRoot,
		filepath.Join(repoRoot, ".docker"),
	}

	seen := make(map[string]bool, len(candidates))
	dirs := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// ResolveImage decides what image backs the branch's container. The
// probes run in priority order, first hit wins:
//
//  1. the explicit override Dockerfile from configuration, if it exists;
//  2. a discovered Dockerfile.fork / Dockerfile.fork.<variant> in the
//     search directories;
//  3. the configured default-fallback Dockerfile, if it exists;
//  4. the configured pre-built image name.
//
// The last probe always succeeds, so resolution cannot fail — only a
// subsequent build can.
func ResolveImage(branch string, set config.Settings, searchDirs []string) ImageSource {
	probes := []func() (ImageSource, bool){
		func() (ImageSource, bool) { return probeFile(branch, set.Dockerfile) },
		func() (ImageSource, bool) { return probeDiscovered(branch, searchDirs) },
		func() (ImageSource, bool) { return probeFile(branch, set.DefaultDockerfile) },
	}

	for _, probe := range probes {
		if src, ok := probe(); ok {
			return src
		}
	}
	return ImageSource{Tag: set.Image}
}

// probeFile accepts a configured Dockerfile path when the file exists.
// A configured path that matches the Dockerfile.fork.<variant> naming
// still gets a variant tag.
func probeFile(branch, path string) (ImageSource, bool) {
	if path == "" {
		return ImageSource{}, false
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ImageSource{}, false
	}
	variant := variantOf(filepath.Base(path))
	return ImageSource{
		Dockerfile: path,
		Variant:    variant,
		Tag:        ImageTag(branch, variant),
	}, true
}

// probeDiscovered searches the directories for Dockerfile.fork files.
// Within one directory the plain Dockerfile.fork beats any variant, and
// variants are taken in sorted order so discovery is deterministic.
func probeDiscovered(branch string, searchDirs []string) (ImageSource, bool) {
	for _, dir := range searchDirs {
		plain := filepath.Join(dir, forkDockerfile)
		if info, err := os.Stat(plain); err == nil && !info.IsDir() {
			return ImageSource{Dockerfile: plain, Tag: ImageTag(branch, "")}, true
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		var variants []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasPrefix(e.Name(), forkDockerfile+".") {
				variants = append(variants, e.Name())
			}
		}
		if len(variants) == 0 {
			continue
		}
		sort.Strings(variants)
		name := variants[0]
		variant := variantOf(name)
		return ImageSource{
			Dockerfile: filepath.Join(dir, name),
			Variant:    variant,
			Tag:        ImageTag(branch, variant),
		}, true
	}
	return ImageSource{}, false
}

// variantOf extracts the <variant> suffix from a Dockerfile.fork.<variant>
// base name; empty for a plain Dockerfile.fork or any other name.
func variantOf(baseName string) string {
	if !strings.HasPrefix(baseName, forkDockerfile+".") {
		return ""
	}
	return strings.TrimPrefix(baseName, forkDockerfile+".")
}

// variantUnsafe matches characters that must not appear in an image tag.
var variantUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// ImageTag derives the deterministic tag for a built image:
// fork_<branch>_image, or fork_<branch>_<variant>_image with the variant
// normalized to tag-safe characters.
func ImageTag(branch, variant string) string {
	if variant == "" {
		return "fork_" + branch + "_image"
	}
	return "fork_" + branch + "_" + variantUnsafe.ReplaceAllString(variant, "_") + "_image"
}
