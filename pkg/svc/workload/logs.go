package workload

import (
	"context"
	"fmt"
	"io"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// LogOptions tunes log streaming.
type LogOptions struct {
	// Follow keeps the stream open as new lines arrive, like tail -f.
	Follow bool
	// Tail limits output to the last N lines per pod; zero streams the full log.
	Tail int64
}

// Logs streams workload pod logs to the manager's writer. Without follow,
// every matching pod is streamed oldest first; with follow only the newest
// pod is tailed, since that is the one a fresh rollout left running. A
// canceled context ends a follow cleanly.
func (m *Manager) Logs(ctx context.Context, opts LogOptions) error {
	pods, err := m.clientset.CoreV1().Pods(m.opts.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: appSelector(),
	})
	if err != nil {
		return fmt.Errorf("failed to list workload pods: %w", err)
	}

	if len(pods.Items) == 0 {
		return fmt.Errorf("%w in namespace %q", ErrNoPods, m.opts.Namespace)
	}

	sort.Slice(pods.Items, func(i, j int) bool {
		return pods.Items[i].CreationTimestamp.Before(&pods.Items[j].CreationTimestamp)
	})

	if opts.Follow {
		newest := pods.Items[len(pods.Items)-1]
		notify.Activityf(m.out, "following logs from pod '%s'", newest.Name)

		return m.streamPodLogs(ctx, newest.Name, opts)
	}

	for _, pod := range pods.Items {
		notify.Activityf(m.out, "logs from pod '%s'", pod.Name)

		if err := m.streamPodLogs(ctx, pod.Name, opts); err != nil {
			return err
		}
	}

	return nil
}

func (m *Manager) streamPodLogs(ctx context.Context, podName string, opts LogOptions) error {
	logOptions := &corev1.PodLogOptions{Follow: opts.Follow}
	if opts.Tail > 0 {
		logOptions.TailLines = &opts.Tail
	}

	stream, err := m.clientset.CoreV1().
		Pods(m.opts.Namespace).
		GetLogs(podName, logOptions).
		Stream(ctx)
	if err != nil {
		return fmt.Errorf("failed to open log stream for pod %s: %w", podName, err)
	}

	defer func() { _ = stream.Close() }()

	if _, err := io.Copy(m.out, stream); err != nil {
		// Interrupting a follow cancels the context mid-read; that is the
		// normal way the stream ends.
		if ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("failed to stream logs for pod %s: %w", podName, err)
	}

	return nil
}
