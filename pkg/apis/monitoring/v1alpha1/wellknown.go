package v1alpha1

// Well-known OpenShift namespaces and objects the monitoring flows touch.
// These are fixed by the platform, not by this tool.
const (
	// NamespaceOpenShiftMonitoring hosts the cluster monitoring stack and the
	// cluster-monitoring-config ConfigMap.
	NamespaceOpenShiftMonitoring = "openshift-monitoring"
	// NamespaceUserWorkloadMonitoring is created by the cluster monitoring
	// operator once enableUserWorkload is turned on.
	NamespaceUserWorkloadMonitoring = "openshift-user-workload-monitoring"
	// ClusterMonitoringConfigName is the ConfigMap carrying the cluster-wide
	// enableUserWorkload flag.
	ClusterMonitoringConfigName = "cluster-monitoring-config"
	// UserWorkloadMonitoringConfigName is the ConfigMap configuring the user
	// workload Prometheus and Alertmanager.
	UserWorkloadMonitoringConfigName = "user-workload-monitoring-config"
	// MonitoringConfigKey is the data key both monitoring ConfigMaps use.
	MonitoringConfigKey = "config.yaml"
)

// Cluster Observability Operator installation objects. Names must stay in
// sync with the OLM manifests the installer applies.
const (
	// NamespaceCOOOperator is where the observability operator is installed.
	NamespaceCOOOperator = "openshift-observability-operator"
	// COOSubscriptionName is the OLM Subscription for the operator.
	COOSubscriptionName = "observability-operator"
	// COOOperatorGroupName is the OperatorGroup accompanying the Subscription.
	COOOperatorGroupName = "observability-operator-og"
	// COOPackageName is the OLM package the Subscription tracks.
	COOPackageName = "cluster-observability-operator"
	// COOChannel is the Subscription channel.
	COOChannel = "stable"
	// COOCatalogSource is the catalog providing the package.
	COOCatalogSource = "redhat-operators"
	// CatalogSourceNamespace is where OpenShift hosts its catalogs.
	CatalogSourceNamespace = "openshift-marketplace"
	// MonitoringStackCRDName is the CustomResourceDefinition the operator
	// registers for MonitoringStack objects.
	MonitoringStackCRDName = "monitoringstacks.monitoring.rhobs"
)

// Prometheus storage naming. The prometheus operator derives PVC names from
// the owning stack, so teardown matches on these prefixes when the operator
// explicitly asked for persistent storage removal.
const (
	// COOPrometheusPVCPrefix matches PVCs of the COO-managed Prometheus in the
	// workload namespace.
	COOPrometheusPVCPrefix = "prometheus-eip-monitoring-stack-db"
	// UWMPrometheusPVCPrefix matches PVCs of the user workload Prometheus in
	// the openshift-user-workload-monitoring namespace.
	UWMPrometheusPVCPrefix = "prometheus-user-workload-db"
)

// DefaultStorageClassAnnotation marks a StorageClass as the cluster default.
// Storage autodetection selects the class carrying this annotation when no
// explicit class is configured.
const DefaultStorageClassAnnotation = "storageclass.kubernetes.io/is-default-class"

// Workload scrape surface. The Service port name is what ServiceMonitors
// reference; the number is where the exporter listens by default.
const (
	// WorkloadName names the exporter's ServiceAccount, Deployment and Service.
	WorkloadName = "eip-monitor"
	// WorkloadConfigName is the ConfigMap feeding the exporter its environment.
	WorkloadConfigName = "eip-monitor-config"
	// MetricsPortName is the named Service port ServiceMonitors scrape.
	MetricsPortName = "metrics"
	// MetricsPort is the exporter's default listen port.
	MetricsPort int32 = 8080
)

// Labels identifying pods the observability operator owns. Readiness polling
// and NetworkPolicy peers key on them.
const (
	// ManagedByLabelKey is the standard managed-by label.
	ManagedByLabelKey = "app.kubernetes.io/managed-by"
	// COOManagedByValue is set on every pod the observability operator owns.
	COOManagedByValue = "observability-operator"
)
