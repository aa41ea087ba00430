package image

import (
	"context"
	"io"

	"github.com/docker/docker/api/types/build"
	imagetypes "github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/mock"
)

// MockEngineAPI is a mock implementation of the EngineAPI interface for testing.
type MockEngineAPI struct {
	mock.Mock
}

var _ EngineAPI = (*MockEngineAPI)(nil)

// NewMockEngineAPI creates a new MockEngineAPI instance.
func NewMockEngineAPI() *MockEngineAPI {
	return &MockEngineAPI{}
}

// ImageBuild mocks a daemon image build.
func (m *MockEngineAPI) ImageBuild(
	ctx context.Context,
	buildContext io.Reader,
	options build.ImageBuildOptions,
) (build.ImageBuildResponse, error) {
	args := m.Called(ctx, buildContext, options)

	resp, ok := args.Get(0).(build.ImageBuildResponse)
	if !ok {
		return build.ImageBuildResponse{}, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
	}

	return resp, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// ImagePush mocks a daemon image push.
func (m *MockEngineAPI) ImagePush(
	ctx context.Context,
	ref string,
	options imagetypes.PushOptions,
) (io.ReadCloser, error) {
	args := m.Called(ctx, ref, options)

	reader, ok := args.Get(0).(io.ReadCloser)
	if !ok {
		return nil, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
	}

	return reader, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}
