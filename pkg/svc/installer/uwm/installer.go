package uwminstaller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/k8s"
	"github.com/eip-monitor/eipmon/pkg/k8s/readiness"
	"github.com/eip-monitor/eipmon/pkg/svc/detector"
	"github.com/eip-monitor/eipmon/pkg/svc/installer/internal/resources"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// prometheusPodSelector matches the user workload Prometheus pods.
const prometheusPodSelector = "app.kubernetes.io/name=prometheus"

// Options configures the UWM installer from the resolved CLI config.
type Options struct {
	// Namespace is where the scrape resources live.
	Namespace string
	// Persistent requests durable storage for the user workload Prometheus.
	Persistent bool
	// StorageClass for the Prometheus volume; empty means autodetect the
	// cluster default.
	StorageClass string
	// StorageSize is the requested volume size, for example "10Gi".
	StorageSize string
	// DeletePersistentStorage removes Prometheus PVCs on uninstall.
	DeletePersistentStorage bool
}

// Installer manages monitoring through OpenShift's built-in user workload
// monitoring: the platform ConfigMaps that enable and tune it, plus the
// scrape resources around the workload.
type Installer struct {
	clientset kubernetes.Interface
	crClient  ctrlclient.Client
	opts      Options
	timeout   time.Duration
	out       io.Writer
}

// NewInstaller creates a UWM installer. The timeout bounds each readiness
// poll, not the whole installation.
func NewInstaller(
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
	opts Options,
	timeout time.Duration,
	out io.Writer,
) *Installer {
	return &Installer{
		clientset: clientset,
		crClient:  crClient,
		opts:      opts,
		timeout:   timeout,
		out:       out,
	}
}

// Name returns the monitoring type this installer manages.
func (i *Installer) Name() string {
	return string(v1alpha1.TypeUWM)
}

// Install flips on user workload monitoring, tunes its config and applies
// the scrape resources. ConfigMap writes in the platform namespaces need
// cluster-admin and degrade to warnings when denied.
func (i *Installer) Install(ctx context.Context) error {
	if err := i.enableUserWorkload(ctx); err != nil {
		return err
	}

	i.waitForUserWorkloadStack(ctx)

	if err := i.ensureUserWorkloadConfig(ctx); err != nil {
		return err
	}

	if err := k8s.EnsureNamespace(ctx, i.clientset, i.opts.Namespace, nil); err != nil {
		return fmt.Errorf("failed to ensure namespace %s: %w", i.opts.Namespace, err)
	}

	err := resources.ApplyScrapeResources(
		ctx, i.clientset, i.crClient, i.opts.Namespace, v1alpha1.TypeUWM, i.out,
	)
	if err != nil {
		return err
	}

	if err := resources.LabelWorkload(ctx, i.clientset, i.opts.Namespace, i.out); err != nil {
		return err
	}

	notify.Successf(i.out, "uwm monitoring configured in namespace '%s'", i.opts.Namespace)

	return nil
}

// Uninstall removes what this installer created. The user workload stack
// itself belongs to the platform; only the enable flag and this tool's
// resources are touched, and a namespace with no UWM resources is a clean
// no-op.
func (i *Installer) Uninstall(ctx context.Context) error {
	observation, err := detector.NewDetector(i.clientset, i.crClient).Detect(ctx, i.opts.Namespace)
	if err != nil {
		return fmt.Errorf("failed to check for uwm monitoring: %w", err)
	}

	if !observation.HasUWM() {
		notify.Infof(i.out, "no uwm monitoring found in namespace '%s', nothing to remove", i.opts.Namespace)

		return nil
	}

	err = resources.DeleteScrapeResources(
		ctx, i.clientset, i.crClient, i.opts.Namespace, v1alpha1.TypeUWM,
	)
	if err != nil {
		return err
	}

	notify.Activityf(i.out, "removed uwm scrape resources")

	i.disableUserWorkload(ctx)

	if err := i.deleteUserWorkloadConfig(ctx); err != nil {
		return err
	}

	if i.opts.DeletePersistentStorage {
		err := resources.DeletePrometheusPVCs(
			ctx,
			i.clientset,
			v1alpha1.NamespaceUserWorkloadMonitoring,
			v1alpha1.UWMPrometheusPVCPrefix,
			i.out,
		)
		if err != nil {
			notify.Warningf(i.out, "failed to delete persistent storage: %v", err)
		}
	} else if i.opts.Persistent {
		notify.Infof(i.out, "persistent volumes retained, pass --delete-persistent-storage to remove them")
	}

	if !observation.HasCOO() {
		if err := resources.DeleteCombinedNetworkPolicy(ctx, i.clientset, i.opts.Namespace); err != nil {
			return err
		}
	} else {
		notify.Infof(i.out, "coo monitoring still present, keeping the shared network policy")
	}

	notify.Successf(i.out, "uwm monitoring removed from namespace '%s'", i.opts.Namespace)

	return nil
}

// --- install steps ---

// enableUserWorkload ensures enableUserWorkload is true in the cluster
// monitoring config, creating the ConfigMap when absent and leaving every
// other setting in it untouched.
func (i *Installer) enableUserWorkload(ctx context.Context) error {
	alreadyEnabled := false

	ensureErr := i.ensureMonitoringConfigMap(ctx,
		v1alpha1.NamespaceOpenShiftMonitoring,
		v1alpha1.ClusterMonitoringConfigName,
		true,
		func(config map[string]any) (bool, error) {
			if enabled, ok := config["enableUserWorkload"].(bool); ok && enabled {
				alreadyEnabled = true

				return false, nil
			}

			config["enableUserWorkload"] = true

			return true, nil
		})

	if err := i.privileged("enabling user workload monitoring", ensureErr); err != nil {
		return fmt.Errorf("failed to enable user workload monitoring: %w", err)
	}

	if ensureErr != nil {
		// Denied and degraded to a warning; nothing was changed.
		return nil
	}

	if alreadyEnabled {
		notify.Infof(i.out, "user workload monitoring is already enabled")
	} else {
		notify.Activityf(i.out, "enabled user workload monitoring")
	}

	return nil
}

func (i *Installer) waitForUserWorkloadStack(ctx context.Context) {
	notify.Activityf(i.out, "waiting for the user workload monitoring stack")

	err := readiness.WaitForNamespaceActive(
		ctx, i.clientset, v1alpha1.NamespaceUserWorkloadMonitoring, i.timeout,
	)
	if err != nil {
		notify.Warningf(
			i.out,
			"namespace '%s' not active after %s, continuing",
			v1alpha1.NamespaceUserWorkloadMonitoring, i.timeout,
		)

		return
	}

	err = readiness.WaitForPodsRunning(
		ctx,
		i.clientset,
		v1alpha1.NamespaceUserWorkloadMonitoring,
		prometheusPodSelector,
		1,
		i.timeout,
	)
	if err != nil {
		notify.Warningf(i.out, "prometheus pods not running after %s, continuing", i.timeout)

		diagnosis := k8s.DiagnosePodFailures(
			ctx, i.clientset, v1alpha1.NamespaceUserWorkloadMonitoring, prometheusPodSelector,
		)
		if diagnosis != "" {
			notify.Hintf(i.out, "%s", diagnosis)
		}
	}
}

// ensureUserWorkloadConfig turns on Alertmanager for user workloads and,
// when persistent storage is requested, renders a typed volume claim
// template into the prometheus section. Settings this tool does not own are
// preserved.
func (i *Installer) ensureUserWorkloadConfig(ctx context.Context) error {
	var claimTemplate map[string]any

	if i.opts.Persistent {
		rendered, err := i.renderVolumeClaimTemplate(ctx)
		if err != nil {
			return err
		}

		claimTemplate = rendered
	}

	ensureErr := i.ensureMonitoringConfigMap(ctx,
		v1alpha1.NamespaceUserWorkloadMonitoring,
		v1alpha1.UserWorkloadMonitoringConfigName,
		true,
		func(config map[string]any) (bool, error) {
			alertmanager := subSection(config, "alertmanager")
			alertmanager["enabled"] = true
			alertmanager["enableAlertmanagerConfig"] = true

			if claimTemplate != nil {
				prometheus := subSection(config, "prometheus")
				prometheus["volumeClaimTemplate"] = claimTemplate
			}

			return true, nil
		})

	if err := i.privileged("configuring user workload monitoring", ensureErr); err != nil {
		return fmt.Errorf("failed to configure user workload monitoring: %w", err)
	}

	if ensureErr == nil {
		notify.Activityf(i.out, "applied the user workload monitoring config")
	}

	return nil
}

// volumeClaimTemplate mirrors the embedded claim shape the cluster
// monitoring operator expects under prometheus.volumeClaimTemplate.
type volumeClaimTemplate struct {
	Spec corev1.PersistentVolumeClaimSpec `json:"spec"`
}

// renderVolumeClaimTemplate builds the claim as a typed struct and converts
// it to the generic form the config round-trip uses.
func (i *Installer) renderVolumeClaimTemplate(ctx context.Context) (map[string]any, error) {
	claim, err := resources.BuildClaimSpec(
		ctx, i.clientset, i.opts.StorageClass, i.opts.StorageSize, i.out,
	)
	if err != nil {
		return nil, err
	}

	rendered, err := yaml.Marshal(volumeClaimTemplate{Spec: *claim})
	if err != nil {
		return nil, fmt.Errorf("failed to render volume claim template: %w", err)
	}

	template := map[string]any{}
	if err := yaml.Unmarshal(rendered, &template); err != nil {
		return nil, fmt.Errorf("failed to render volume claim template: %w", err)
	}

	return template, nil
}

// --- uninstall steps ---

// disableUserWorkload flips enableUserWorkload off. Purely best-effort: a
// denial or failure leaves the platform flag on, which is harmless.
func (i *Installer) disableUserWorkload(ctx context.Context) {
	flipped := false

	err := i.ensureMonitoringConfigMap(ctx,
		v1alpha1.NamespaceOpenShiftMonitoring,
		v1alpha1.ClusterMonitoringConfigName,
		false,
		func(config map[string]any) (bool, error) {
			if enabled, ok := config["enableUserWorkload"].(bool); !ok || !enabled {
				return false, nil
			}

			config["enableUserWorkload"] = false
			flipped = true

			return true, nil
		})

	switch {
	case err == nil && flipped:
		notify.Activityf(i.out, "disabled user workload monitoring")
	case err == nil:
		// Nothing was on in the first place.
	case k8s.IsPermissionDenied(err):
		notify.Warningf(i.out, "disabling user workload monitoring requires cluster-admin permissions")
		notify.Hintf(i.out, "ask a cluster administrator to set enableUserWorkload to false")
	default:
		notify.Warningf(i.out, "failed to disable user workload monitoring: %v", err)
	}
}

func (i *Installer) deleteUserWorkloadConfig(ctx context.Context) error {
	err := i.clientset.CoreV1().
		ConfigMaps(v1alpha1.NamespaceUserWorkloadMonitoring).
		Delete(ctx, v1alpha1.UserWorkloadMonitoringConfigName, metav1.DeleteOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}

	err = i.privileged("deleting the user workload monitoring config", err)
	if err != nil {
		return fmt.Errorf("failed to delete the user workload monitoring config: %w", err)
	}

	return nil
}

// --- config plumbing ---

// ensureMonitoringConfigMap loads the named monitoring ConfigMap, passes the
// parsed config.yaml through mutate, and writes the result back only when
// mutate reports a change. With createIfMissing false an absent ConfigMap is
// a no-op.
func (i *Installer) ensureMonitoringConfigMap(
	ctx context.Context,
	namespace, name string,
	createIfMissing bool,
	mutate func(config map[string]any) (bool, error),
) error {
	configMaps := i.clientset.CoreV1().ConfigMaps(namespace)

	existing, err := configMaps.Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		if !createIfMissing {
			return nil
		}

		config := map[string]any{}

		changed, err := mutate(config)
		if err != nil || !changed {
			return err
		}

		rendered, err := yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to render monitoring config: %w", err)
		}

		configMap := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
			Data:       map[string]string{v1alpha1.MonitoringConfigKey: string(rendered)},
		}

		_, err = configMaps.Create(ctx, configMap, metav1.CreateOptions{})
		if err != nil {
			return fmt.Errorf("failed to create configmap %s/%s: %w", namespace, name, err)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get configmap %s/%s: %w", namespace, name, err)
	}

	config, err := parseMonitoringConfig(existing.Data[v1alpha1.MonitoringConfigKey])
	if err != nil {
		return fmt.Errorf("failed to parse configmap %s/%s: %w", namespace, name, err)
	}

	changed, err := mutate(config)
	if err != nil || !changed {
		return err
	}

	rendered, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to render monitoring config: %w", err)
	}

	if existing.Data == nil {
		existing.Data = map[string]string{}
	}

	existing.Data[v1alpha1.MonitoringConfigKey] = string(rendered)

	_, err = configMaps.Update(ctx, existing, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to update configmap %s/%s: %w", namespace, name, err)
	}

	return nil
}

func parseMonitoringConfig(data string) (map[string]any, error) {
	config := map[string]any{}

	if strings.TrimSpace(data) == "" {
		return config, nil
	}

	if err := yaml.Unmarshal([]byte(data), &config); err != nil {
		return nil, err
	}

	return config, nil
}

// subSection returns the named map under config, creating it when absent or
// of an unexpected shape.
func subSection(config map[string]any, name string) map[string]any {
	if section, ok := config[name].(map[string]any); ok {
		return section
	}

	section := map[string]any{}
	config[name] = section

	return section
}

// privileged handles the outcome of a mutation that may need cluster-admin.
// RBAC denials degrade to a warning with a hint; everything else is passed
// through.
func (i *Installer) privileged(step string, err error) error {
	if err == nil {
		return nil
	}

	if k8s.IsPermissionDenied(err) {
		notify.Warningf(i.out, "%s requires cluster-admin permissions, skipping", step)
		notify.Hintf(i.out, "ask a cluster administrator to run this step, then re-run the command")

		return nil
	}

	return err
}
