// Package git shells out to the git binary for the release workflow.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

const gitBinary = "git"

var (
	// ErrGitNotFound is returned when the git binary is not on PATH.
	ErrGitNotFound = errors.New("git binary not found on PATH")

	// ErrMergeConflict is returned when a merge stops on conflicting changes.
	// The merge is aborted before the error is returned, so the worktree is
	// left on the target branch with no unmerged files.
	ErrMergeConflict = errors.New("git merge conflict")
)

// Interface defines the subset of git functionality the release flow requires.
type Interface interface {
	IsClean(ctx context.Context) (bool, error)
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Tag(ctx context.Context, name string) error
	Checkout(ctx context.Context, branch string) error
	Merge(ctx context.Context, branch string) error
	Push(ctx context.Context, remote string, refs ...string) error
}

// Client runs git commands in a fixed working directory.
type Client struct {
	workdir string
}

var _ Interface = (*Client)(nil)

// NewClient creates a git client operating on the given repository directory.
func NewClient(workdir string) *Client {
	return &Client{workdir: workdir}
}

// CheckAvailable verifies the git binary is on PATH.
func CheckAvailable() error {
	_, err := exec.LookPath(gitBinary)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGitNotFound, err)
	}

	return nil
}

// IsClean reports whether the worktree has no uncommitted changes.
func (c *Client) IsClean(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}

	return out == "", nil
}

// CurrentBranch returns the name of the checked-out branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// BranchExists reports whether a local branch with the given name exists.
func (c *Client) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := c.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Add stages the given paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	_, err := c.run(ctx, append([]string{"add", "--"}, paths...)...)

	return err
}

// Commit records the staged changes with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)

	return err
}

// Tag creates an annotated tag at HEAD.
func (c *Client) Tag(ctx context.Context, name string) error {
	_, err := c.run(ctx, "tag", "-a", name, "-m", name)

	return err
}

// Checkout switches the worktree to the given branch.
func (c *Client) Checkout(ctx context.Context, branch string) error {
	_, err := c.run(ctx, "checkout", branch)

	return err
}

// Merge merges the given branch into the current one. When the merge stops on
// conflicts it is aborted and ErrMergeConflict is returned, leaving the
// worktree clean so a human can redo the merge by hand.
func (c *Client) Merge(ctx context.Context, branch string) error {
	_, err := c.run(ctx, "merge", "--no-edit", branch)
	if err == nil {
		return nil
	}

	unmerged, listErr := c.run(ctx, "ls-files", "--unmerged")
	if listErr == nil && unmerged != "" {
		_ = c.AbortMerge(ctx)

		return fmt.Errorf("%w: merging '%s'", ErrMergeConflict, branch)
	}

	return err
}

// AbortMerge resets an in-progress merge.
func (c *Client) AbortMerge(ctx context.Context) error {
	_, err := c.run(ctx, "merge", "--abort")

	return err
}

// Push pushes the given refs to the remote.
func (c *Client) Push(ctx context.Context, remote string, refs ...string) error {
	_, err := c.run(ctx, append([]string{"push", remote}, refs...)...)

	return err
}

// run executes a git subcommand and returns its trimmed stdout. Stderr is
// captured through a deferred-newline writer so error messages carry the
// subprocess output without a dangling blank line.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, gitBinary, args...)
	cmd.Dir = c.workdir

	var stdout strings.Builder

	stderr := notify.NewDeferredNewlineWriter(nil)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err != nil {
		if msg := stderr.String(); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}

		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
