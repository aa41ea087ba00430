// Package release implements the version bump and branch merge workflow.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"

	"github.com/eip-monitor/eipmon/pkg/client/git"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

const (
	// VersionFile is the repository file holding the current semantic version.
	VersionFile = ".version"

	// DefaultReleaseBranch is merged into when no branches are configured.
	DefaultReleaseBranch = "main"

	// DefaultRemote is the git remote releases are pushed to.
	DefaultRemote = "origin"

	versionFileMode = 0o644
)

// ErrDirtyWorktree is returned when uncommitted changes block a release.
var ErrDirtyWorktree = errors.New("uncommitted changes in worktree")

// Options configures a release run.
type Options struct {
	// BumpType selects the semver component to bump (patch, minor, major).
	BumpType string
	// Branches are the release branches the working branch is merged into.
	// Defaults to main.
	Branches []string
	// Remote is the git remote pushed to. Defaults to origin.
	Remote string
}

// Releaser bumps the version file, commits and tags the bump, then merges
// the working branch into each release branch and pushes.
type Releaser struct {
	gitClient git.Interface
	fs        afero.Fs
	workdir   string
	out       io.Writer
}

// NewReleaser creates a releaser operating on the given repository directory.
func NewReleaser(gitClient git.Interface, fsys afero.Fs, workdir string, out io.Writer) *Releaser {
	return &Releaser{
		gitClient: gitClient,
		fs:        fsys,
		workdir:   workdir,
		out:       out,
	}
}

// Run performs the release and returns the released version.
func (r *Releaser) Run(ctx context.Context, opts Options) (string, error) {
	clean, err := r.gitClient.IsClean(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check worktree state: %w", err)
	}

	if !clean {
		return "", fmt.Errorf("%w: commit or stash your changes first", ErrDirtyWorktree)
	}

	branch, err := r.gitClient.CurrentBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve current branch: %w", err)
	}

	version, err := r.bumpVersion(opts.BumpType)
	if err != nil {
		return "", err
	}

	err = r.commitAndTag(ctx, version)
	if err != nil {
		return "", err
	}

	err = r.publish(ctx, branch, version, opts)
	if err != nil {
		return "", err
	}

	notify.Successf(r.out, "released v%s", version)

	return version, nil
}

// --- release steps ---

// bumpVersion reads the version file, bumps the requested component and
// writes the result back. A missing file starts the history at 0.0.0.
func (r *Releaser) bumpVersion(bumpType string) (string, error) {
	path := filepath.Join(r.workdir, VersionFile)

	current := semver.New(0, 0, 0, "", "")

	raw, err := afero.ReadFile(r.fs, path)

	switch {
	case os.IsNotExist(err):
		notify.Infof(r.out, "no version file found, starting from 0.0.0")
	case err != nil:
		return "", fmt.Errorf("failed to read version file: %w", err)
	default:
		current, err = semver.NewVersion(strings.TrimSpace(string(raw)))
		if err != nil {
			return "", fmt.Errorf("failed to parse version file: %w", err)
		}
	}

	var next semver.Version

	switch bumpType {
	case config.BumpPatch:
		next = current.IncPatch()
	case config.BumpMinor:
		next = current.IncMinor()
	case config.BumpMajor:
		next = current.IncMajor()
	default:
		return "", fmt.Errorf("%w: %q", config.ErrInvalidBumpType, bumpType)
	}

	err = afero.WriteFile(r.fs, path, []byte(next.String()+"\n"), versionFileMode)
	if err != nil {
		return "", fmt.Errorf("failed to write version file: %w", err)
	}

	notify.Activityf(r.out, "bumped version %s to %s", current, next.String())

	return next.String(), nil
}

func (r *Releaser) commitAndTag(ctx context.Context, version string) error {
	err := r.gitClient.Add(ctx, VersionFile)
	if err != nil {
		return fmt.Errorf("failed to stage version file: %w", err)
	}

	err = r.gitClient.Commit(ctx, "release v"+version)
	if err != nil {
		return fmt.Errorf("failed to commit version bump: %w", err)
	}

	err = r.gitClient.Tag(ctx, "v"+version)
	if err != nil {
		return fmt.Errorf("failed to tag release: %w", err)
	}

	notify.Activityf(r.out, "tagged v%s", version)

	return nil
}

// publish pushes the working branch and tag, then merges the working branch
// into each release branch and pushes those too. The worktree is returned to
// the working branch regardless of outcome.
func (r *Releaser) publish(
	ctx context.Context,
	branch, version string,
	opts Options,
) (err error) {
	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemote
	}

	branches := opts.Branches
	if len(branches) == 0 {
		branches = []string{DefaultReleaseBranch}
	}

	err = r.gitClient.Push(ctx, remote, branch, "v"+version)
	if err != nil {
		return fmt.Errorf("failed to push '%s': %w", branch, err)
	}

	notify.Activityf(r.out, "pushed '%s' and tag 'v%s' to '%s'", branch, version, remote)

	defer func() {
		restoreErr := r.gitClient.Checkout(ctx, branch)
		if restoreErr != nil && err == nil {
			err = fmt.Errorf("failed to return to branch '%s': %w", branch, restoreErr)
		}
	}()

	for _, target := range branches {
		if target == branch {
			continue
		}

		err = r.mergeInto(ctx, branch, target, remote)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *Releaser) mergeInto(ctx context.Context, branch, target, remote string) error {
	exists, err := r.gitClient.BranchExists(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to check release branch '%s': %w", target, err)
	}

	if !exists {
		notify.Warningf(r.out, "release branch '%s' not found, skipping", target)

		return nil
	}

	err = r.gitClient.Checkout(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to check out '%s': %w", target, err)
	}

	err = r.gitClient.Merge(ctx, branch)
	if err != nil {
		if errors.Is(err, git.ErrMergeConflict) {
			notify.Hintf(r.out,
				"resolve the conflict by hand: git checkout %s && git merge %s, then commit and push",
				target, branch)
		}

		return fmt.Errorf("failed to merge '%s' into '%s': %w", branch, target, err)
	}

	err = r.gitClient.Push(ctx, remote, target)
	if err != nil {
		return fmt.Errorf("failed to push '%s': %w", target, err)
	}

	notify.Activityf(r.out, "merged '%s' into '%s' and pushed", branch, target)

	return nil
}
