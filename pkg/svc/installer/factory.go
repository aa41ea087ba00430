package installer

import (
	"fmt"
	"io"
	"time"

	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/config"
	cooinstaller "github.com/eip-monitor/eipmon/pkg/svc/installer/coo"
	uwminstaller "github.com/eip-monitor/eipmon/pkg/svc/installer/uwm"
)

// DefaultInstallTimeout bounds each readiness poll during monitoring setup:
// operator rollout, MonitoringStack pods, user workload stack startup.
const DefaultInstallTimeout = 5 * time.Minute

// Factory creates installers per monitoring type. It holds the shared
// dependencies every installer needs.
type Factory struct {
	clientset kubernetes.Interface
	crClient  ctrlclient.Client
	cfg       config.Config
	timeout   time.Duration
	out       io.Writer
}

// NewFactory creates an installer factory with the given clients and
// resolved configuration.
func NewFactory(
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
	cfg config.Config,
	timeout time.Duration,
	out io.Writer,
) *Factory {
	return &Factory{
		clientset: clientset,
		crClient:  crClient,
		cfg:       cfg,
		timeout:   timeout,
		out:       out,
	}
}

// ForType returns the installer managing the given monitoring type.
func (f *Factory) ForType(monitoringType v1alpha1.MonitoringType) (Installer, error) {
	switch monitoringType {
	case v1alpha1.TypeCOO:
		class, size := f.cfg.StorageFor(v1alpha1.TypeCOO)

		return cooinstaller.NewInstaller(f.clientset, f.crClient, cooinstaller.Options{
			Namespace:               f.cfg.Namespace,
			Persistent:              f.cfg.Persistent,
			StorageClass:            class,
			StorageSize:             size,
			RemoveOperator:          f.cfg.RemoveOperator,
			DeletePersistentStorage: f.cfg.DeletePersistentStorage,
		}, f.timeout, f.out), nil
	case v1alpha1.TypeUWM:
		class, size := f.cfg.StorageFor(v1alpha1.TypeUWM)

		return uwminstaller.NewInstaller(f.clientset, f.crClient, uwminstaller.Options{
			Namespace:               f.cfg.Namespace,
			Persistent:              f.cfg.Persistent,
			StorageClass:            class,
			StorageSize:             size,
			DeletePersistentStorage: f.cfg.DeletePersistentStorage,
		}, f.timeout, f.out), nil
	default:
		return nil, fmt.Errorf("%w: %q", v1alpha1.ErrInvalidMonitoringType, string(monitoringType))
	}
}
