package git

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of the Interface for testing.
type MockClient struct {
	mock.Mock
}

var _ Interface = (*MockClient)(nil)

// NewMockClient creates a new MockClient instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// IsClean mocks the worktree cleanliness check.
func (m *MockClient) IsClean(ctx context.Context) (bool, error) {
	args := m.Called(ctx)

	return args.Bool(0), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// CurrentBranch mocks resolving the checked-out branch.
func (m *MockClient) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)

	return args.String(0), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// BranchExists mocks the local branch existence check.
func (m *MockClient) BranchExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)

	return args.Bool(0), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Add mocks staging paths.
func (m *MockClient) Add(ctx context.Context, paths ...string) error {
	args := m.Called(ctx, paths)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Commit mocks recording a commit.
func (m *MockClient) Commit(ctx context.Context, message string) error {
	args := m.Called(ctx, message)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Tag mocks creating a tag.
func (m *MockClient) Tag(ctx context.Context, name string) error {
	args := m.Called(ctx, name)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Checkout mocks switching branches.
func (m *MockClient) Checkout(ctx context.Context, branch string) error {
	args := m.Called(ctx, branch)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Merge mocks merging a branch into the current one.
func (m *MockClient) Merge(ctx context.Context, branch string) error {
	args := m.Called(ctx, branch)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Push mocks pushing refs to a remote.
func (m *MockClient) Push(ctx context.Context, remote string, refs ...string) error {
	args := m.Called(ctx, remote, refs)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}
