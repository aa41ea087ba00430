package exporter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	cloudnetworkv1 "github.com/eip-monitor/eipmon/pkg/apis/cloudnetwork/v1"
	ovnv1 "github.com/eip-monitor/eipmon/pkg/apis/ovn/v1"
)

// maxConcurrentLists bounds how many API list calls one snapshot runs at
// once.
const maxConcurrentLists = 3

// ErrNoClients is returned when the collector was constructed without the
// clients it needs.
var ErrNoClients = errors.New("collector requires kubernetes and custom resource clients")

// Collector takes consistent snapshots of the cluster's egress IP posture
// by listing the three source kinds concurrently.
type Collector struct {
	clientset kubernetes.Interface
	crClient  ctrlclient.Client
}

var _ Snapshotter = (*Collector)(nil)

// NewCollector creates a collector with the required clients.
func NewCollector(clientset kubernetes.Interface, crClient ctrlclient.Client) *Collector {
	return &Collector{
		clientset: clientset,
		crClient:  crClient,
	}
}

// Snapshot lists EgressIPs, CloudPrivateIPConfigs and the egress-assignable
// nodes and merges them into one snapshot. Any list failure fails the whole
// snapshot; partial state is never reported.
func (c *Collector) Snapshot(ctx context.Context) (Snapshot, error) {
	if c.clientset == nil || c.crClient == nil {
		return Snapshot{}, ErrNoClients
	}

	var (
		egressIPs ovnv1.EgressIPList
		cloudIPs  cloudnetworkv1.CloudPrivateIPConfigList
		nodeNames []string
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentLists)

	group.Go(func() error {
		if err := c.crClient.List(groupCtx, &egressIPs); err != nil {
			return fmt.Errorf("list egress IPs: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		if err := c.crClient.List(groupCtx, &cloudIPs); err != nil {
			return fmt.Errorf("list cloud private IP configs: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		names, err := c.egressNodes(groupCtx)
		if err != nil {
			return err
		}

		nodeNames = names

		return nil
	})

	waitErr := group.Wait()
	if waitErr != nil {
		return Snapshot{}, fmt.Errorf("collect cluster state: %w", waitErr)
	}

	sort.Strings(nodeNames)

	return Snapshot{
		EgressIPs: egressIPs.Items,
		CloudIPs:  cloudIPs.Items,
		Nodes:     nodeNames,
		Taken:     time.Now(),
	}, nil
}

func (c *Collector) egressNodes(ctx context.Context) ([]string, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{
		LabelSelector: ovnv1.EgressAssignableLabel + "=true",
	})
	if err != nil {
		return nil, fmt.Errorf("list egress-assignable nodes: %w", err)
	}

	names := make([]string, 0, len(nodes.Items))
	for i := range nodes.Items {
		names = append(names, nodes.Items[i].Name)
	}

	return names, nil
}
