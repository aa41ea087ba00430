package exporter

import (
	"time"

	cloudnetworkv1 "github.com/eip-monitor/eipmon/pkg/apis/cloudnetwork/v1"
	ovnv1 "github.com/eip-monitor/eipmon/pkg/apis/ovn/v1"
)

const percentScale = 100

// Snapshot is one consistent view of the cluster's egress IP posture,
// taken by a single collection cycle.
type Snapshot struct {
	// EgressIPs are all EgressIP resources in the cluster.
	EgressIPs []ovnv1.EgressIP
	// CloudIPs are all CloudPrivateIPConfig resources in the cluster.
	CloudIPs []cloudnetworkv1.CloudPrivateIPConfig
	// Nodes are the names of egress-assignable nodes, sorted.
	Nodes []string
	// Taken is when the snapshot was collected.
	Taken time.Time
}

// CloudIPTally counts CloudPrivateIPConfig resources by the reason on their
// Assigned condition. Resources without a recognized reason are not counted.
type CloudIPTally struct {
	Success int
	Pending int
	Errored int
}

// Configured returns how many EgressIP resources exist.
func (s Snapshot) Configured() int {
	return len(s.EgressIPs)
}

// Assigned returns how many EgressIP resources have at least one address
// placed on a node.
func (s Snapshot) Assigned() int {
	assigned := 0

	for i := range s.EgressIPs {
		if len(s.EgressIPs[i].Status.Items) > 0 {
			assigned++
		}
	}

	return assigned
}

// Unassigned returns how many EgressIP resources have no address placed.
func (s Snapshot) Unassigned() int {
	return s.Configured() - s.Assigned()
}

// Utilization returns the percentage of EgressIP resources with at least one
// placed address. Zero when nothing is configured.
func (s Snapshot) Utilization() float64 {
	configured := s.Configured()
	if configured == 0 {
		return 0
	}

	return float64(s.Assigned()) / float64(configured) * percentScale
}

// AssignmentsByNode counts placed addresses per egress-assignable node.
// Every known node appears in the result, at zero when it carries nothing.
// Placements on nodes outside the egress-assignable set are ignored.
func (s Snapshot) AssignmentsByNode() map[string]int {
	counts := make(map[string]int, len(s.Nodes))
	for _, node := range s.Nodes {
		counts[node] = 0
	}

	for i := range s.EgressIPs {
		for _, item := range s.EgressIPs[i].Status.Items {
			if _, tracked := counts[item.Node]; tracked {
				counts[item.Node]++
			}
		}
	}

	return counts
}

// CloudIPTally buckets the cloud IP configs by assignment outcome.
func (s Snapshot) CloudIPTally() CloudIPTally {
	tally := CloudIPTally{}

	for i := range s.CloudIPs {
		switch s.CloudIPs[i].AssignedReason() {
		case cloudnetworkv1.ReasonSuccess:
			tally.Success++
		case cloudnetworkv1.ReasonPending:
			tally.Pending++
		case cloudnetworkv1.ReasonError:
			tally.Errored++
		}
	}

	return tally
}

// PendingDurations reports how long each pending cloud IP config has been
// waiting, keyed by resource name, relative to the snapshot time. Configs
// without a transition timestamp are skipped.
func (s Snapshot) PendingDurations() map[string]time.Duration {
	durations := make(map[string]time.Duration)

	for i := range s.CloudIPs {
		cloudIP := &s.CloudIPs[i]
		if cloudIP.AssignedReason() != cloudnetworkv1.ReasonPending {
			continue
		}

		transition := cloudIP.AssignedTransitionTime()
		if transition.IsZero() {
			continue
		}

		duration := s.Taken.Sub(transition.Time)
		if duration < 0 {
			duration = 0
		}

		durations[cloudIP.Name] = duration
	}

	return durations
}
