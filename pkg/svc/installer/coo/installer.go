package cooinstaller

import (
	"context"
	"fmt"
	"io"
	"time"

	corev1 "k8s.io/api/core/v1"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	obsopsv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/obsops/v1alpha1"
	olmv1 "github.com/eip-monitor/eipmon/pkg/apis/olm/v1"
	olmv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/olm/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/k8s"
	"github.com/eip-monitor/eipmon/pkg/k8s/readiness"
	"github.com/eip-monitor/eipmon/pkg/svc/detector"
	"github.com/eip-monitor/eipmon/pkg/svc/installer/internal/resources"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// Options configures the COO installer from the resolved CLI config.
type Options struct {
	// Namespace is where the MonitoringStack and scrape resources live.
	Namespace string
	// Persistent requests durable Prometheus storage.
	Persistent bool
	// StorageClass for the Prometheus volume; empty means autodetect the
	// cluster default.
	StorageClass string
	// StorageSize is the requested volume size, for example "10Gi".
	StorageSize string
	// RemoveOperator also removes the operator Subscription and CSV on
	// uninstall. Never done automatically; other stacks may depend on it.
	RemoveOperator bool
	// DeletePersistentStorage removes Prometheus PVCs on uninstall.
	DeletePersistentStorage bool
}

// Installer manages monitoring through the Cluster Observability Operator:
// the OLM subscription, the MonitoringStack and the scrape resources around
// it.
type Installer struct {
	clientset kubernetes.Interface
	crClient  ctrlclient.Client
	opts      Options
	timeout   time.Duration
	out       io.Writer
}

// NewInstaller creates a COO installer. The timeout bounds each readiness
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
	return string(v1alpha1.TypeCOO)
}

// Install stands up the operator, the MonitoringStack and the scrape
// resources. Steps that need cluster-admin degrade to warnings so namespace
// operators can still apply everything they are allowed to.
func (i *Installer) Install(ctx context.Context) error {
	if err := i.ensureOperator(ctx); err != nil {
		return err
	}

	i.waitForOperator(ctx)
	i.waitForStackCRD(ctx)

	if err := i.ensureMonitoringStack(ctx); err != nil {
		return err
	}

	i.waitForPrometheus(ctx)

	err := resources.ApplyScrapeResources(
		ctx, i.clientset, i.crClient, i.opts.Namespace, v1alpha1.TypeCOO, i.out,
	)
	if err != nil {
		return err
	}

	if err := i.ensureThanosQuerier(ctx); err != nil {
		return err
	}

	if err := resources.LabelWorkload(ctx, i.clientset, i.opts.Namespace, i.out); err != nil {
		return err
	}

	notify.Successf(i.out, "coo monitoring configured in namespace '%s'", i.opts.Namespace)

	return nil
}

// Uninstall tears the stack down in dependency order. The MonitoringStack
// goes first so the operator cascades its Prometheus before the scrape
// resources disappear.
func (i *Installer) Uninstall(ctx context.Context) error {
	stack := &obsopsv1alpha1.MonitoringStack{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.MonitoringStackName,
			Namespace: i.opts.Namespace,
		},
	}
	if err := k8s.Delete(ctx, i.crClient, stack); err != nil {
		return err
	}

	notify.Activityf(i.out, "removed monitoring stack '%s'", v1alpha1.MonitoringStackName)

	querier := &obsopsv1alpha1.ThanosQuerier{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.ThanosQuerierName,
			Namespace: i.opts.Namespace,
		},
	}
	if err := k8s.Delete(ctx, i.crClient, querier); err != nil {
		return err
	}

	err := resources.DeleteScrapeResources(
		ctx, i.clientset, i.crClient, i.opts.Namespace, v1alpha1.TypeCOO,
	)
	if err != nil {
		return err
	}

	notify.Activityf(i.out, "removed coo scrape resources")

	if i.opts.RemoveOperator {
		if err := i.removeOperator(ctx); err != nil {
			return err
		}
	}

	if err := i.cleanupSharedPolicy(ctx); err != nil {
		return err
	}

	if i.opts.DeletePersistentStorage {
		err := resources.DeletePrometheusPVCs(
			ctx, i.clientset, i.opts.Namespace, v1alpha1.COOPrometheusPVCPrefix, i.out,
		)
		if err != nil {
			notify.Warningf(i.out, "failed to delete persistent storage: %v", err)
		}
	} else if i.opts.Persistent {
		notify.Infof(i.out, "persistent volumes retained, pass --delete-persistent-storage to remove them")
	}

	notify.Successf(i.out, "coo monitoring removed from namespace '%s'", i.opts.Namespace)

	return nil
}

// --- install steps ---

func (i *Installer) ensureOperator(ctx context.Context) error {
	notify.Activityf(i.out, "installing the cluster observability operator")

	err := i.privileged(
		"creating namespace '"+v1alpha1.NamespaceCOOOperator+"'",
		k8s.EnsureNamespace(ctx, i.clientset, v1alpha1.NamespaceCOOOperator, nil),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure operator namespace: %w", err)
	}

	operatorGroup := &olmv1.OperatorGroup{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.COOOperatorGroupName,
			Namespace: v1alpha1.NamespaceCOOOperator,
		},
	}

	err = i.privileged("creating the operator group", k8s.Upsert(ctx, i.crClient, operatorGroup, func() error {
		// No target namespaces: the operator watches the whole cluster.
		operatorGroup.Spec = olmv1.OperatorGroupSpec{}

		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to ensure operator group: %w", err)
	}

	subscription := &olmv1alpha1.Subscription{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.COOSubscriptionName,
			Namespace: v1alpha1.NamespaceCOOOperator,
		},
	}

	err = i.privileged("creating the operator subscription", k8s.Upsert(ctx, i.crClient, subscription, func() error {
		subscription.Spec = olmv1alpha1.SubscriptionSpec{
			Channel:             v1alpha1.COOChannel,
			Package:             v1alpha1.COOPackageName,
			Source:              v1alpha1.COOCatalogSource,
			SourceNamespace:     v1alpha1.CatalogSourceNamespace,
			InstallPlanApproval: "Automatic",
		}

		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to ensure operator subscription: %w", err)
	}

	return nil
}

// waitForOperator polls until OLM reports the subscription at latest known
// and its CSV succeeded. A deadline overrun is a warning: the operator may
// still converge after we moved on.
func (i *Installer) waitForOperator(ctx context.Context) {
	notify.Activityf(i.out, "waiting for the observability operator to become ready")

	err := readiness.PollForReadiness(ctx, i.timeout, func(ctx context.Context) (bool, error) {
		subscription := &olmv1alpha1.Subscription{}
		err := i.crClient.Get(ctx, ctrlclient.ObjectKey{
			Namespace: v1alpha1.NamespaceCOOOperator,
			Name:      v1alpha1.COOSubscriptionName,
		}, subscription)
		if err != nil {
			return false, nil //nolint:nilerr // keep polling until the deadline
		}

		if !subscription.AtLatestKnown() {
			return false, nil
		}

		csvName := subscription.Status.InstalledCSV
		if csvName == "" {
			csvName = subscription.Status.CurrentCSV
		}

		if csvName == "" {
			return false, nil
		}

		csv := &olmv1alpha1.ClusterServiceVersion{}
		err = i.crClient.Get(ctx, ctrlclient.ObjectKey{
			Namespace: v1alpha1.NamespaceCOOOperator,
			Name:      csvName,
		}, csv)
		if err != nil {
			return false, nil //nolint:nilerr // keep polling until the deadline
		}

		return csv.Succeeded(), nil
	})
	if err != nil {
		notify.Warningf(i.out, "observability operator not ready after %s, continuing", i.timeout)
	}
}

// waitForStackCRD polls until the MonitoringStack CRD reports Established.
// The operator registers its CRDs shortly after the CSV succeeds; a timeout
// is a warning because the upsert below retries on missing kinds anyway.
func (i *Installer) waitForStackCRD(ctx context.Context) {
	err := readiness.PollForReadiness(ctx, i.timeout, func(ctx context.Context) (bool, error) {
		crd := &apiextensionsv1.CustomResourceDefinition{}
		err := i.crClient.Get(ctx, ctrlclient.ObjectKey{Name: v1alpha1.MonitoringStackCRDName}, crd)
		if err != nil {
			return false, nil //nolint:nilerr // keep polling until the deadline
		}

		for _, condition := range crd.Status.Conditions {
			if condition.Type == apiextensionsv1.Established {
				return condition.Status == apiextensionsv1.ConditionTrue, nil
			}
		}

		return false, nil
	})
	if err != nil {
		notify.Warningf(i.out, "monitoringstack crd not established after %s, continuing", i.timeout)
	}
}

func (i *Installer) ensureMonitoringStack(ctx context.Context) error {
	if err := k8s.EnsureNamespace(ctx, i.clientset, i.opts.Namespace, nil); err != nil {
		return fmt.Errorf("failed to ensure namespace %s: %w", i.opts.Namespace, err)
	}

	claim, err := i.persistentClaim(ctx)
	if err != nil {
		return err
	}

	stack := &obsopsv1alpha1.MonitoringStack{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.MonitoringStackName,
			Namespace: i.opts.Namespace,
		},
	}

	err = k8s.Upsert(ctx, i.crClient, stack, func() error {
		stack.Labels = resources.StackLabels(v1alpha1.TypeCOO)
		stack.Spec = obsopsv1alpha1.MonitoringStackSpec{
			LogLevel:  "info",
			Retention: "15d",
			ResourceSelector: &metav1.LabelSelector{
				MatchLabels: resources.AppLabels(),
			},
			PrometheusConfig: &obsopsv1alpha1.PrometheusConfig{
				Replicas:              ptr.To(int32(1)),
				PersistentVolumeClaim: claim,
			},
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to ensure monitoring stack: %w", err)
	}

	notify.Activityf(i.out, "applied monitoring stack '%s'", v1alpha1.MonitoringStackName)

	return nil
}

// persistentClaim renders the Prometheus volume claim when persistent
// storage is requested.
func (i *Installer) persistentClaim(ctx context.Context) (*corev1.PersistentVolumeClaimSpec, error) {
	if !i.opts.Persistent {
		return nil, nil
	}

	return resources.BuildClaimSpec(ctx, i.clientset, i.opts.StorageClass, i.opts.StorageSize, i.out)
}

func (i *Installer) waitForPrometheus(ctx context.Context) {
	notify.Activityf(i.out, "waiting for prometheus pods in namespace '%s'", i.opts.Namespace)

	selector := v1alpha1.ManagedByLabelKey + "=" + v1alpha1.COOManagedByValue

	err := readiness.WaitForPodsRunning(ctx, i.clientset, i.opts.Namespace, selector, 1, i.timeout)
	if err != nil {
		notify.Warningf(i.out, "prometheus pods not running after %s, continuing", i.timeout)

		if diagnosis := k8s.DiagnosePodFailures(ctx, i.clientset, i.opts.Namespace, selector); diagnosis != "" {
			notify.Hintf(i.out, "%s", diagnosis)
		}
	}
}

func (i *Installer) ensureThanosQuerier(ctx context.Context) error {
	querier := &obsopsv1alpha1.ThanosQuerier{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.ThanosQuerierName,
			Namespace: i.opts.Namespace,
		},
	}

	err := k8s.Upsert(ctx, i.crClient, querier, func() error {
		querier.Labels = resources.StackLabels(v1alpha1.TypeCOO)
		querier.Spec = obsopsv1alpha1.ThanosQuerierSpec{
			Selector: metav1.LabelSelector{
				MatchLabels: resources.StackLabels(v1alpha1.TypeCOO),
			},
			ReplicaLabels: []string{"prometheus_replica"},
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to ensure thanos querier: %w", err)
	}

	notify.Activityf(i.out, "applied thanos querier '%s'", v1alpha1.ThanosQuerierName)

	return nil
}

// --- uninstall steps ---

// removeOperator deletes the Subscription and its resolved CSV. OLM never
// cascades the CSV on its own, so its name is read before the subscription
// goes away.
func (i *Installer) removeOperator(ctx context.Context) error {
	subscription := &olmv1alpha1.Subscription{}
	err := i.crClient.Get(ctx, ctrlclient.ObjectKey{
		Namespace: v1alpha1.NamespaceCOOOperator,
		Name:      v1alpha1.COOSubscriptionName,
	}, subscription)

	if apierrors.IsNotFound(err) || k8s.IsMissingKind(err) {
		notify.Infof(i.out, "operator subscription already absent")

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get operator subscription: %w", err)
	}

	csvName := subscription.Status.InstalledCSV
	if csvName == "" {
		csvName = subscription.Status.CurrentCSV
	}

	deleteErr := k8s.Delete(ctx, i.crClient, subscription)
	if err := i.privileged("deleting the operator subscription", deleteErr); err != nil {
		return err
	}

	if deleteErr != nil {
		// Denied and degraded to a warning; leave the CSV alone too.
		return nil
	}

	if csvName != "" {
		csv := &olmv1alpha1.ClusterServiceVersion{
			ObjectMeta: metav1.ObjectMeta{
				Namespace: v1alpha1.NamespaceCOOOperator,
				Name:      csvName,
			},
		}

		err = i.privileged("deleting the operator csv", k8s.Delete(ctx, i.crClient, csv))
		if err != nil {
			return err
		}
	}

	notify.Activityf(i.out, "removed the observability operator")

	return nil
}

// cleanupSharedPolicy removes the combined NetworkPolicy, but only when no
// UWM resources remain to rely on it.
func (i *Installer) cleanupSharedPolicy(ctx context.Context) error {
	observation, err := detector.NewDetector(i.clientset, i.crClient).Detect(ctx, i.opts.Namespace)
	if err != nil {
		return fmt.Errorf("failed to check for remaining monitoring: %w", err)
	}

	if observation.HasUWM() {
		notify.Infof(i.out, "uwm monitoring still present, keeping the shared network policy")

		return nil
	}

	return resources.DeleteCombinedNetworkPolicy(ctx, i.clientset, i.opts.Namespace)
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
