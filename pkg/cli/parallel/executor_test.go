package parallel_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eip-monitor/eipmon/pkg/cli/parallel"
)

var errTaskFailed = errors.New("task failed")

func TestExecuteRunsEveryTask(t *testing.T) {
	t.Parallel()

	var ran atomic.Int64

	tasks := make([]parallel.Task, 5)
	for i := range tasks {
		tasks[i] = func(_ context.Context) error {
			ran.Add(1)

			return nil
		}
	}

	err := parallel.NewExecutor(2).Execute(context.Background(), tasks...)

	require.NoError(t, err)
	assert.Equal(t, int64(5), ran.Load())
}

func TestExecuteReturnsFirstFailure(t *testing.T) {
	t.Parallel()

	err := parallel.NewExecutor(0).Execute(context.Background(),
		func(_ context.Context) error { return nil },
		func(_ context.Context) error { return errTaskFailed },
	)

	require.ErrorIs(t, err, errTaskFailed)
	assert.Contains(t, err.Error(), "parallel execution")
}

func TestExecuteRunsSingleTaskInline(t *testing.T) {
	t.Parallel()

	// The single-task path skips the errgroup, so the error arrives unwrapped.
	err := parallel.NewExecutor(0).Execute(context.Background(),
		func(_ context.Context) error { return errTaskFailed },
	)

	require.ErrorIs(t, err, errTaskFailed)
	assert.NotContains(t, err.Error(), "parallel execution")
}

func TestSyncWriterKeepsLinesWhole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := parallel.NewSyncWriter(&buf)

	var group sync.WaitGroup

	lines := []string{"removed service\n", "removed deployment\n", "removed config map\n"}
	for _, line := range lines {
		group.Add(1)

		go func() {
			defer group.Done()

			_, err := writer.Write([]byte(line))
			assert.NoError(t, err)
		}()
	}

	group.Wait()

	for _, line := range lines {
		assert.Contains(t, buf.String(), strings.TrimSuffix(line, "\n"))
	}
}

func TestResultsCollectsConcurrentValues(t *testing.T) {
	t.Parallel()

	results := parallel.NewResults[int]()

	var group sync.WaitGroup

	for i := range 20 {
		group.Add(1)

		go func() {
			defer group.Done()
			results.Add(i)
		}()
	}

	group.Wait()

	assert.Len(t, results.Values(), 20)
}
