package cmd_test

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eip-monitor/eipmon/pkg/cli/cmd"
	"github.com/eip-monitor/eipmon/pkg/client/git"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/svc/release"
)

//nolint:paralleltest // uses t.Chdir
func TestReleaseCommandCutsFirstPatchRelease(t *testing.T) {
	requireGitOnPath(t)
	t.Chdir(t.TempDir())

	fsys := afero.NewMemMapFs()
	gitClient := releaseGitClient(t, "0.0.1")

	var out bytes.Buffer

	releaseCmd := cmd.NewReleaseCmd(newTestRuntime(withGitClient(gitClient), withFilesystem(fsys)))
	releaseCmd.SetOut(&out)
	releaseCmd.SetErr(&out)
	releaseCmd.SetArgs([]string{})

	require.NoError(t, releaseCmd.Execute())

	assert.Contains(t, out.String(), "no version file found, starting from 0.0.0")
	assert.Contains(t, out.String(), "bumped version 0.0.0 to 0.0.1")
	assert.Contains(t, out.String(), "released v0.0.1")
	assert.Equal(t, "0.0.1\n", readVersionFile(t, fsys))
	gitClient.AssertExpectations(t)
}

//nolint:paralleltest // uses t.Chdir
func TestReleaseCommandHonorsBumpFlag(t *testing.T) {
	requireGitOnPath(t)
	t.Chdir(t.TempDir())

	fsys := afero.NewMemMapFs()
	writeTestFile(t, fsys, versionFilePath(t), "1.2.3\n")

	gitClient := releaseGitClient(t, "1.3.0")

	var out bytes.Buffer

	releaseCmd := cmd.NewReleaseCmd(newTestRuntime(withGitClient(gitClient), withFilesystem(fsys)))
	releaseCmd.SetOut(&out)
	releaseCmd.SetErr(&out)
	releaseCmd.SetArgs([]string{"--bump", "minor"})

	require.NoError(t, releaseCmd.Execute())

	assert.Contains(t, out.String(), "bumped version 1.2.3 to 1.3.0")
	assert.Contains(t, out.String(), "released v1.3.0")
	assert.Equal(t, "1.3.0\n", readVersionFile(t, fsys))
	gitClient.AssertExpectations(t)
}

func TestReleaseCommandRejectsInvalidBumpType(t *testing.T) {
	t.Parallel()

	releaseCmd := cmd.NewReleaseCmd(newTestRuntime())
	releaseCmd.SetOut(&bytes.Buffer{})
	releaseCmd.SetErr(&bytes.Buffer{})
	releaseCmd.SetArgs([]string{"--bump", "banana"})

	require.ErrorIs(t, releaseCmd.Execute(), config.ErrInvalidBumpType)
}

//nolint:paralleltest // uses t.Chdir
func TestReleaseCommandRefusesDirtyWorktree(t *testing.T) {
	requireGitOnPath(t)
	t.Chdir(t.TempDir())

	gitClient := git.NewMockClient()
	gitClient.On("IsClean", mock.Anything).Return(false, nil)

	releaseCmd := cmd.NewReleaseCmd(newTestRuntime(
		withGitClient(gitClient),
		withFilesystem(afero.NewMemMapFs()),
	))
	releaseCmd.SetOut(&bytes.Buffer{})
	releaseCmd.SetErr(&bytes.Buffer{})
	releaseCmd.SetArgs([]string{})

	require.ErrorIs(t, releaseCmd.Execute(), release.ErrDirtyWorktree)
	gitClient.AssertExpectations(t)
}

// releaseGitClient expects the calls a release from 'main' makes. The current
// branch doubles as the release branch, so no merge happens.
func releaseGitClient(t *testing.T, version string) *git.MockClient {
	t.Helper()

	gitClient := git.NewMockClient()
	gitClient.On("IsClean", mock.Anything).Return(true, nil)
	gitClient.On("CurrentBranch", mock.Anything).Return("main", nil)
	gitClient.On("Add", mock.Anything, []string{release.VersionFile}).Return(nil)
	gitClient.On("Commit", mock.Anything, "release v"+version).Return(nil)
	gitClient.On("Tag", mock.Anything, "v"+version).Return(nil)
	gitClient.On("Push", mock.Anything, "origin", []string{"main", "v" + version}).Return(nil)
	gitClient.On("Checkout", mock.Anything, "main").Return(nil)

	return gitClient
}

func requireGitOnPath(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not on PATH")
	}
}

func versionFilePath(t *testing.T) string {
	t.Helper()

	workdir, err := filepath.Abs(".")
	require.NoError(t, err)

	return filepath.Join(workdir, release.VersionFile)
}

func readVersionFile(t *testing.T, fsys afero.Fs) string {
	t.Helper()

	raw, err := afero.ReadFile(fsys, versionFilePath(t))
	require.NoError(t, err)

	return string(raw)
}
