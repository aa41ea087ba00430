package workload

import (
	"context"
	"fmt"
	"io"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/cli/parallel"
	"github.com/eip-monitor/eipmon/pkg/k8s"
	"github.com/eip-monitor/eipmon/pkg/k8s/readiness"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// DefaultRolloutTimeout bounds the wait for the exporter rollout after a
// deploy, and the readiness checks before the smoke test probes.
const DefaultRolloutTimeout = 5 * time.Minute

// Options configures the workload manager from the resolved CLI config.
type Options struct {
	// Namespace is where the workload lives.
	Namespace string
	// Image is the full exporter image reference to deploy.
	Image string
	// LogLevel is handed to the exporter through its ConfigMap.
	LogLevel string
}

// Manager deploys, tests, streams logs from and removes the exporter
// workload. All mutations go through the typed clientset and are idempotent.
type Manager struct {
	clientset kubernetes.Interface
	opts      Options
	timeout   time.Duration
	out       io.Writer
}

// NewManager creates a workload manager. The timeout bounds each readiness
// wait, not a whole operation.
func NewManager(
	clientset kubernetes.Interface,
	opts Options,
	timeout time.Duration,
	out io.Writer,
) *Manager {
	return &Manager{
		clientset: clientset,
		opts:      opts,
		timeout:   timeout,
		out:       out,
	}
}

// Deploy upserts the exporter's ServiceAccount, ConfigMap, Deployment and
// Service, then waits for the rollout. A rollout that is still converging
// when the timeout passes degrades to a warning; the resources are already
// applied and the cluster finishes on its own.
func (m *Manager) Deploy(ctx context.Context) error {
	if err := k8s.EnsureNamespace(ctx, m.clientset, m.opts.Namespace, nil); err != nil {
		return fmt.Errorf("failed to ensure namespace %s: %w", m.opts.Namespace, err)
	}

	if err := m.ensureServiceAccount(ctx); err != nil {
		return err
	}

	notify.Activityf(m.out, "applied service account '%s'", v1alpha1.WorkloadName)

	if err := m.ensureConfigMap(ctx); err != nil {
		return err
	}

	notify.Activityf(m.out, "applied config map '%s'", v1alpha1.WorkloadConfigName)

	if err := m.ensureDeployment(ctx); err != nil {
		return err
	}

	notify.Activityf(m.out, "applied deployment '%s' with image '%s'", v1alpha1.WorkloadName, m.opts.Image)

	if err := m.ensureService(ctx); err != nil {
		return err
	}

	notify.Activityf(m.out, "applied service '%s'", v1alpha1.WorkloadName)

	m.waitForRollout(ctx)

	return nil
}

// Clean removes the workload resources. Absent resources are skipped, so a
// clean of a namespace that never saw a deploy is a quiet no-op. Monitoring
// resources are owned by the installers and are not touched here.
func (m *Manager) Clean(ctx context.Context) error {
	out := parallel.NewSyncWriter(m.out)
	removed := parallel.NewResults[string]()

	err := parallel.NewExecutor(0).Execute(ctx,
		m.deleteTask(removed, out, "service", func(ctx context.Context) error {
			return m.clientset.CoreV1().Services(m.opts.Namespace).
				Delete(ctx, v1alpha1.WorkloadName, metav1.DeleteOptions{})
		}),
		m.deleteTask(removed, out, "deployment", func(ctx context.Context) error {
			return m.clientset.AppsV1().Deployments(m.opts.Namespace).
				Delete(ctx, v1alpha1.WorkloadName, metav1.DeleteOptions{})
		}),
		m.deleteTask(removed, out, "config map", func(ctx context.Context) error {
			return m.clientset.CoreV1().ConfigMaps(m.opts.Namespace).
				Delete(ctx, v1alpha1.WorkloadConfigName, metav1.DeleteOptions{})
		}),
		m.deleteTask(removed, out, "service account", func(ctx context.Context) error {
			return m.clientset.CoreV1().ServiceAccounts(m.opts.Namespace).
				Delete(ctx, v1alpha1.WorkloadName, metav1.DeleteOptions{})
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to remove workload resources: %w", err)
	}

	if len(removed.Values()) == 0 {
		notify.Infof(m.out, "no workload resources found in namespace '%s'", m.opts.Namespace)

		return nil
	}

	notify.Successf(m.out, "workload removed from namespace '%s'", m.opts.Namespace)

	return nil
}

// deleteTask wraps one resource deletion for the parallel executor. A
// not-found response records nothing; an actual deletion is reported and
// remembered so Clean can tell a real removal from a no-op.
func (m *Manager) deleteTask(
	removed *parallel.Results[string],
	out io.Writer,
	kind string,
	remove func(ctx context.Context) error,
) parallel.Task {
	return func(ctx context.Context) error {
		err := remove(ctx)
		if apierrors.IsNotFound(err) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", kind, err)
		}

		removed.Add(kind)
		notify.Activityf(out, "removed %s", kind)

		return nil
	}
}

// --- deploy steps ---

func (m *Manager) ensureServiceAccount(ctx context.Context) error {
	desired := buildServiceAccount(m.opts.Namespace)
	accounts := m.clientset.CoreV1().ServiceAccounts(m.opts.Namespace)

	existing, err := accounts.Get(ctx, desired.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, createErr := accounts.Create(ctx, desired, metav1.CreateOptions{})
		if createErr != nil {
			return fmt.Errorf("failed to create service account: %w", createErr)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get service account: %w", err)
	}

	if existing.Labels[v1alpha1.AppLabelKey] == v1alpha1.AppLabelValue {
		return nil
	}

	if existing.Labels == nil {
		existing.Labels = map[string]string{}
	}

	existing.Labels[v1alpha1.AppLabelKey] = v1alpha1.AppLabelValue

	if _, err := accounts.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update service account: %w", err)
	}

	return nil
}

func (m *Manager) ensureConfigMap(ctx context.Context) error {
	desired := buildConfigMap(m.opts.Namespace, m.opts.LogLevel)
	configMaps := m.clientset.CoreV1().ConfigMaps(m.opts.Namespace)

	existing, err := configMaps.Get(ctx, desired.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, createErr := configMaps.Create(ctx, desired, metav1.CreateOptions{})
		if createErr != nil {
			return fmt.Errorf("failed to create config map: %w", createErr)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get config map: %w", err)
	}

	existing.Labels = desired.Labels
	existing.Data = desired.Data

	if _, err := configMaps.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update config map: %w", err)
	}

	return nil
}

func (m *Manager) ensureDeployment(ctx context.Context) error {
	desired := buildDeployment(m.opts.Namespace, m.opts.Image)
	deployments := m.clientset.AppsV1().Deployments(m.opts.Namespace)

	existing, err := deployments.Get(ctx, desired.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, createErr := deployments.Create(ctx, desired, metav1.CreateOptions{})
		if createErr != nil {
			return fmt.Errorf("failed to create deployment: %w", createErr)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get deployment: %w", err)
	}

	existing.Labels = desired.Labels
	existing.Spec = desired.Spec

	if _, err := deployments.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update deployment: %w", err)
	}

	return nil
}

// ensureService overwrites only the fields this tool owns. ClusterIP is
// immutable and allocated by the API server, so the live spec is mutated in
// place rather than replaced.
func (m *Manager) ensureService(ctx context.Context) error {
	desired := buildService(m.opts.Namespace)
	services := m.clientset.CoreV1().Services(m.opts.Namespace)

	existing, err := services.Get(ctx, desired.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, createErr := services.Create(ctx, desired, metav1.CreateOptions{})
		if createErr != nil {
			return fmt.Errorf("failed to create service: %w", createErr)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get service: %w", err)
	}

	existing.Labels = desired.Labels
	existing.Spec.Selector = desired.Spec.Selector
	existing.Spec.Ports = desired.Spec.Ports
	existing.Spec.Type = desired.Spec.Type

	if _, err := services.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	return nil
}

func (m *Manager) waitForRollout(ctx context.Context) {
	notify.Activityf(m.out, "waiting for deployment '%s' rollout", v1alpha1.WorkloadName)

	err := readiness.WaitForDeploymentReady(
		ctx, m.clientset, m.opts.Namespace, v1alpha1.WorkloadName, m.timeout,
	)
	if err != nil {
		notify.Warningf(
			m.out,
			"deployment '%s' not ready after %s, continuing",
			v1alpha1.WorkloadName, m.timeout,
		)

		diagnosis := k8s.DiagnosePodFailures(ctx, m.clientset, m.opts.Namespace, appSelector())
		if diagnosis != "" {
			notify.Hintf(m.out, "%s", diagnosis)
		}

		return
	}

	notify.Successf(m.out, "workload deployed to namespace '%s'", m.opts.Namespace)
}
