package container

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/forktree/internal/config"
	"github.com/shinji-kodama/forktree/internal/model"
)

func TestName(t *testing.T) {
	assert.Equal(t, "feature-a_fork", Name("", "feature-a"))
	assert.Equal(t, "myrepo_feature-a_fork", Name("myrepo", "feature-a"))
	// Same inputs, same name — the name is the only worktree/container link.
	assert.Equal(t, Name("p", "b"), Name("p", "b"))
}

// fakeRuntime records lifecycle calls and answers state queries from
// canned fields.
type fakeRuntime struct {
	available bool
	exists    bool
	running   bool

	started  []string
	removed  []string
	ran      []RunSpec
	built    [][3]string // dockerfile, contextDir, tag

	removeErr error
}

func (f *fakeRuntime) Binary() string  { return "fake" }
func (f *fakeRuntime) Available() bool { return f.available }

func (f *fakeRuntime) Exists(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func (f *fakeRuntime) Running(ctx context.Context, name string) (bool, error) {
	return f.running, nil
}

func (f *fakeRuntime) Start(ctx context.Context, name string) error {
	f.started = append(f.started, name)
	return nil
}

func (f *fakeRuntime) Remove(ctx context.Context, name string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, name)
	return nil
}

func (f *fakeRuntime) RunDetached(ctx context.Context, spec RunSpec) error {
	f.ran = append(f.ran, spec)
	return nil
}

func (f *fakeRuntime) Build(ctx context.Context, dockerfile, contextDir, tag string) error {
	f.built = append(f.built, [3]string{dockerfile, contextDir, tag})
	return nil
}

func (f *fakeRuntime) ExecArgs(name, workingDir string) []string {
	return []string{"fake", "exec", "-it", "-w", workingDir, name, defaultShell}
}

func (f *fakeRuntime) RunArgs(spec RunSpec) []string {
	return oneShotRunArgs("fake", spec)
}

func newTestContainerManager(t *testing.T, rt Runtime, set config.Settings, out *bytes.Buffer) *Manager {
	t.Helper()
	if out == nil {
		out = &bytes.Buffer{}
	}
	dir := t.TempDir()
	return NewManager(rt, set, "myrepo", dir, dir, out)
}

func TestEnsureEphemeralIsNoOp(t *testing.T) {
	rt := &fakeRuntime{} // not even available
	set := config.Default()
	m := newTestContainerManager(t, rt, set, nil)

	require.NoError(t, m.Ensure(context.Background(), "b", "/tmp/wt"))
	assert.Empty(t, rt.ran)
	assert.Empty(t, rt.started)
}

func TestEnsureKeepAliveCreatesContainer(t *testing.T) {
	rt := &fakeRuntime{available: true}
	set := config.Default()
	set.KeepAlive = true

	out := &bytes.Buffer{}
	m := newTestContainerManager(t, rt, set, out)

	require.NoError(t, m.Ensure(context.Background(), "feature-a", "/tmp/wt"))
	require.Len(t, rt.ran, 1)

	spec := rt.ran[0]
	assert.Equal(t, "feature-a_fork", spec.Name)
	assert.Equal(t, "ubuntu:latest", spec.Image)
	assert.Equal(t, "/tmp/wt", spec.MountSrc)
	assert.Equal(t, "/myrepo", spec.MountDst)
	assert.Equal(t, "/myrepo", spec.WorkingDir)
	assert.Contains(t, out.String(), "Created container feature-a_fork")
}

func TestEnsureKeepAliveStartsStopped(t *testing.T) {
	rt := &fakeRuntime{available: true, exists: true, running: false}
	set := config.Default()
	set.KeepAlive = true
	m := newTestContainerManager(t, rt, set, nil)

	require.NoError(t, m.Ensure(context.Background(), "b", "/tmp/wt"))
	assert.Equal(t, []string{"b_fork"}, rt.started)
	assert.Empty(t, rt.ran)
}

func TestEnsureKeepAliveRunningIsNoOp(t *testing.T) {
	rt := &fakeRuntime{available: true, exists: true, running: true}
	set := config.Default()
	set.KeepAlive = true
	m := newTestContainerManager(t, rt, set, nil)

	require.NoError(t, m.Ensure(context.Background(), "b", "/tmp/wt"))
	assert.Empty(t, rt.started)
	assert.Empty(t, rt.ran)
}

func TestEnsureRuntimeUnavailable(t *testing.T) {
	rt := &fakeRuntime{available: false}
	set := config.Default()
	set.KeepAlive = true
	m := newTestContainerManager(t, rt, set, nil)

	err := m.Ensure(context.Background(), "b", "/tmp/wt")
	assert.ErrorIs(t, err, model.ErrRuntimeUnavailable)
}

func TestEnsureBuildsDiscoveredDockerfile(t *testing.T) {
	rt := &fakeRuntime{available: true}
	set := config.Default()
	set.KeepAlive = true

	out := &bytes.Buffer{}
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Dockerfile.fork"))
	m := NewManager(rt, set, "myrepo", dir, dir, out)

	require.NoError(t, m.Ensure(context.Background(), "b", "/tmp/wt"))
	require.Len(t, rt.built, 1)
	assert.Equal(t, filepath.Join(dir, "Dockerfile.fork"), rt.built[0][0])
	assert.Equal(t, dir, rt.built[0][1])
	assert.Equal(t, "fork_b_image", rt.built[0][2])

	require.Len(t, rt.ran, 1)
	assert.Equal(t, "fork_b_image", rt.ran[0].Image)
}

func TestEnterCommandKeepAlive(t *testing.T) {
	rt := &fakeRuntime{available: true, exists: true, running: true}
	set := config.Default()
	set.KeepAlive = true
	set.Prefix = "pre"
	m := newTestContainerManager(t, rt, set, nil)

	argv, err := m.EnterCommand(context.Background(), "b", "/tmp/wt")
	require.NoError(t, err)
	assert.Equal(t, []string{"fake", "exec", "-it", "-w", "/myrepo", "pre_b_fork", "/bin/bash"}, argv)
	// Keep-alive enter never builds.
	assert.Empty(t, rt.built)
}

func TestEnterCommandEphemeral(t *testing.T) {
	rt := &fakeRuntime{available: true}
	set := config.Default()
	m := newTestContainerManager(t, rt, set, nil)

	argv, err := m.EnterCommand(context.Background(), "b", "/tmp/wt")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"fake", "run", "--rm", "-it",
		"--name", "b_fork",
		"-v", "/tmp/wt:/myrepo",
		"-w", "/myrepo",
		"ubuntu:latest",
		"/bin/bash",
	}, argv)
}

func TestEnterCommandUnavailable(t *testing.T) {
	rt := &fakeRuntime{}
	m := newTestContainerManager(t, rt, config.Default(), nil)

	_, err := m.EnterCommand(context.Background(), "b", "/tmp/wt")
	assert.ErrorIs(t, err, model.ErrRuntimeUnavailable)
}

func TestRemoveBestEffort(t *testing.T) {
	t.Run("removes existing container", func(t *testing.T) {
		rt := &fakeRuntime{available: true, exists: true}
		out := &bytes.Buffer{}
		m := newTestContainerManager(t, rt, config.Default(), out)

		m.Remove(context.Background(), "b")
		assert.Equal(t, []string{"b_fork"}, rt.removed)
		assert.Contains(t, out.String(), "Removed container b_fork")
	})

	t.Run("missing container is a silent no-op", func(t *testing.T) {
		rt := &fakeRuntime{available: true, exists: false}
		out := &bytes.Buffer{}
		m := newTestContainerManager(t, rt, config.Default(), out)

		m.Remove(context.Background(), "b")
		assert.Empty(t, rt.removed)
		assert.Empty(t, out.String())
	})

	t.Run("missing runtime is a silent no-op", func(t *testing.T) {
		rt := &fakeRuntime{available: false, exists: true}
		m := newTestContainerManager(t, rt, config.Default(), nil)
		m.Remove(context.Background(), "b")
		assert.Empty(t, rt.removed)
	})

	t.Run("failure degrades to a warning", func(t *testing.T) {
		rt := &fakeRuntime{available: true, exists: true, removeErr: errors.New("daemon hiccup")}
		out := &bytes.Buffer{}
		m := newTestContainerManager(t, rt, config.Default(), out)

		m.Remove(context.Background(), "b")
		assert.Contains(t, out.String(), "Warning: could not remove container b_fork")
	})
}

func TestNewRuntimeFlavor(t *testing.T) {
	set := config.Default()
	assert.Equal(t, "docker", NewRuntime(set).Binary())

	set.Runtime = config.RuntimePodman
	assert.Equal(t, "podman", NewRuntime(set).Binary())
}
