package exporter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// perNodeCapacity is the assumed egress IP ceiling per node. ARO's load
// balancer backend pools cap how many egress IPs one node can carry.
const perNodeCapacity = 75

// Metrics owns the Prometheus registry and every metric family the exporter
// publishes. Per-node and per-resource vectors are reset on each cycle so
// gone nodes and settled cloud IP configs drop out of the exposition.
type Metrics struct {
	registry *prometheus.Registry

	configured  prometheus.Gauge
	assigned    prometheus.Gauge
	unassigned  prometheus.Gauge
	utilization prometheus.Gauge

	nodeAssigned *prometheus.GaugeVec
	nodeCapacity *prometheus.GaugeVec

	cpicSuccess         prometheus.Gauge
	cpicPending         prometheus.Gauge
	cpicError           prometheus.Gauge
	cpicPendingDuration *prometheus.GaugeVec

	distributionStdDev prometheus.Gauge
	distributionGini   prometheus.Gauge

	healthScore        prometheus.Gauge
	stabilityScore     prometheus.Gauge
	changesLastHour    prometheus.Gauge
	recoveriesLastHour prometheus.Gauge

	scrapeDuration prometheus.Histogram
	scrapeErrors   prometheus.Counter
	lastUpdate     prometheus.Gauge
}

// NewMetrics builds the full metric set on a fresh registry.
//
//nolint:funlen // one declaration per published family
func NewMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),

		configured: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eips_configured_total",
			Help: "Number of EgressIP resources configured in the cluster.",
		}),
		assigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eips_assigned_total",
			Help: "Number of EgressIP resources with at least one address placed on a node.",
		}),
		unassigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eips_unassigned_total",
			Help: "Number of EgressIP resources with no address placed.",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eip_utilization_percent",
			Help: "Percentage of configured EgressIP resources currently placed.",
		}),

		nodeAssigned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "node_eips_assigned",
			Help: "Egress IP addresses placed on the node.",
		}, []string{"node"}),
		nodeCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "node_eip_capacity_total",
			Help: "Estimated egress IP capacity of the node.",
		}, []string{"node"}),

		cpicSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cpic_success_total",
			Help: "CloudPrivateIPConfig resources the cloud accepted.",
		}),
		cpicPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cpic_pending_total",
			Help: "CloudPrivateIPConfig resources awaiting a cloud response.",
		}),
		cpicError: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cpic_error_total",
			Help: "CloudPrivateIPConfig resources the cloud rejected.",
		}),
		cpicPendingDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cpic_pending_duration_seconds",
			Help: "How long a pending CloudPrivateIPConfig has been waiting.",
		}, []string{"resource_name"}),

		distributionStdDev: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eip_distribution_stddev",
			Help: "Standard deviation of egress IP placements across nodes.",
		}),
		distributionGini: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eip_distribution_gini_coefficient",
			Help: "Gini coefficient of egress IP placements, 0 for an even spread.",
		}),

		healthScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cluster_eip_health_score",
			Help: "Overall egress IP health score from 0 to 100.",
		}),
		stabilityScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eip_stability_score",
			Help: "Assignment churn score from 0 to 100, 100 meaning no recent changes.",
		}),
		changesLastHour: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eip_changes_last_hour",
			Help: "Egress IP assignment changes observed in the last hour.",
		}),
		recoveriesLastHour: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eip_recoveries_last_hour",
			Help: "CloudPrivateIPConfig error recoveries observed in the last hour.",
		}),

		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eip_scrape_duration_seconds",
			Help:    "Time taken by one collection cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eip_scrape_errors_total",
			Help: "Collection cycles that failed.",
		}),
		lastUpdate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eip_last_update_timestamp",
			Help: "Unix timestamp of the last successful collection.",
		}),
	}

	metrics.registry.MustRegister(
		metrics.configured,
		metrics.assigned,
		metrics.unassigned,
		metrics.utilization,
		metrics.nodeAssigned,
		metrics.nodeCapacity,
		metrics.cpicSuccess,
		metrics.cpicPending,
		metrics.cpicError,
		metrics.cpicPendingDuration,
		metrics.distributionStdDev,
		metrics.distributionGini,
		metrics.healthScore,
		metrics.stabilityScore,
		metrics.changesLastHour,
		metrics.recoveriesLastHour,
		metrics.scrapeDuration,
		metrics.scrapeErrors,
		metrics.lastUpdate,
	)

	return metrics
}

// Registry exposes the underlying registry for HTTP serving.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Record publishes one successful collection cycle.
func (m *Metrics) Record(snapshot Snapshot, trend Trend) {
	configured := snapshot.Configured()
	assigned := snapshot.Assigned()

	m.configured.Set(float64(configured))
	m.assigned.Set(float64(assigned))
	m.unassigned.Set(float64(snapshot.Unassigned()))
	m.utilization.Set(snapshot.Utilization())

	byNode := snapshot.AssignmentsByNode()

	m.nodeAssigned.Reset()
	m.nodeCapacity.Reset()

	for node, count := range byNode {
		m.nodeAssigned.WithLabelValues(node).Set(float64(count))
		m.nodeCapacity.WithLabelValues(node).Set(perNodeCapacity)
	}

	tally := snapshot.CloudIPTally()
	m.cpicSuccess.Set(float64(tally.Success))
	m.cpicPending.Set(float64(tally.Pending))
	m.cpicError.Set(float64(tally.Errored))

	m.cpicPendingDuration.Reset()

	for name, duration := range snapshot.PendingDurations() {
		m.cpicPendingDuration.WithLabelValues(name).Set(duration.Seconds())
	}

	distribution := DistributionOf(byNode)
	m.distributionStdDev.Set(distribution.StdDev)
	m.distributionGini.Set(distribution.Gini)

	m.healthScore.Set(HealthScore(configured, assigned, distribution.Gini))
	m.stabilityScore.Set(StabilityScore(trend.ChangeEvents))
	m.changesLastHour.Set(float64(trend.Changes))
	m.recoveriesLastHour.Set(float64(trend.Recoveries))

	m.lastUpdate.Set(float64(snapshot.Taken.Unix()))
}

// RecordError counts a failed collection cycle.
func (m *Metrics) RecordError() {
	m.scrapeErrors.Inc()
}

// ObserveScrape records how long one collection cycle took.
func (m *Metrics) ObserveScrape(duration time.Duration) {
	m.scrapeDuration.Observe(duration.Seconds())
}
