package v1alpha1

import "fmt"

// Well-known resource names probed by the detector and managed by the installers.
const (
	// MonitoringStackName is the MonitoringStack custom resource managed by the
	// Cluster Observability Operator.
	MonitoringStackName = "eip-monitoring-stack"
	// COOServiceMonitorName is the ServiceMonitor scraped by the COO-managed Prometheus.
	COOServiceMonitorName = "eip-monitor-coo"
	// COOPrometheusRuleName holds the alerting rules evaluated by the COO-managed stack.
	COOPrometheusRuleName = "eip-monitor-alerts-coo"
	// COONetworkPolicyName admits scrapes from the COO-managed Prometheus.
	COONetworkPolicyName = "eip-monitor-coo"
	// UWMServiceMonitorName is the ServiceMonitor scraped by User Workload Monitoring.
	UWMServiceMonitorName = "eip-monitor-uwm"
	// UWMPrometheusRuleName holds the alerting rules evaluated by User Workload Monitoring.
	UWMPrometheusRuleName = "eip-monitor-alerts-uwm"
	// UWMNetworkPolicyName admits scrapes from the User Workload Monitoring Prometheus.
	UWMNetworkPolicyName = "eip-monitor-uwm"
	// CombinedNetworkPolicyName admits scrapes from either stack. It is shared
	// and only removed once both stacks are gone.
	CombinedNetworkPolicyName = "eip-monitor-prometheus-access"
	// ThanosQuerierName is the ThanosQuerier fronting the COO-managed Prometheus.
	ThanosQuerierName = "eip-monitoring-stack"
)

// Labels applied to managed monitoring resources. Uninstall deletes by these
// selectors first and falls back to the well-known names above.
const (
	// AppLabelKey and AppLabelValue identify resources belonging to the EIP monitor.
	AppLabelKey   = "app"
	AppLabelValue = "eip-monitor"
	// StackLabelKey records which backend a monitoring resource belongs to
	// ("coo" or "uwm"), so one stack can be torn down without touching the other.
	StackLabelKey = "monitoring-type"
)

// Observation is a point-in-time snapshot of the cluster facts that drive
// monitoring reconciliation. It is re-derived fresh on every invocation and
// is never cached or persisted.
type Observation struct {
	// Namespace the observation was taken in.
	Namespace string

	// MonitoringStack reports whether the MonitoringStack CR exists.
	MonitoringStack bool
	// COOServiceMonitor reports whether the COO ServiceMonitor exists.
	COOServiceMonitor bool
	// COOSubscription reports whether the observability operator Subscription exists.
	COOSubscription bool

	// UWMServiceMonitor reports whether the UWM ServiceMonitor exists.
	UWMServiceMonitor bool
	// UWMPrometheusRule reports whether the UWM PrometheusRule exists.
	UWMPrometheusRule bool
	// UWMNetworkPolicy reports whether the UWM NetworkPolicy exists.
	UWMNetworkPolicy bool

	// UserWorkloadEnabled reports the cluster-wide enableUserWorkload flag.
	// The flag alone never classifies uwm as installed; classification requires
	// namespace-scoped resources. It is recorded for display and for install
	// logic that needs to know whether the flag still has to be flipped.
	UserWorkloadEnabled bool
}

// HasCOO reports whether the COO-managed stack is installed in the namespace.
func (o Observation) HasCOO() bool {
	return o.MonitoringStack || o.COOServiceMonitor
}

// HasUWM reports whether User Workload Monitoring resources are installed in
// the namespace.
func (o Observation) HasUWM() bool {
	return o.UWMServiceMonitor || o.UWMPrometheusRule || o.UWMNetworkPolicy
}

// Has reports whether the given monitoring type is detected.
// TypeNone is detected exactly when nothing else is.
func (o Observation) Has(monitoringType MonitoringType) bool {
	switch monitoringType {
	case TypeCOO:
		return o.HasCOO()
	case TypeUWM:
		return o.HasUWM()
	case TypeNone:
		return o.Empty()
	default:
		return false
	}
}

// Empty reports whether no monitoring backend is detected.
func (o Observation) Empty() bool {
	return !o.HasCOO() && !o.HasUWM()
}

// Types returns the detected monitoring types as a set. Coexistence is
// allowed, so the result may contain both coo and uwm.
func (o Observation) Types() []MonitoringType {
	types := make([]MonitoringType, 0, 2)

	if o.HasCOO() {
		types = append(types, TypeCOO)
	}

	if o.HasUWM() {
		types = append(types, TypeUWM)
	}

	return types
}

// Primary returns the single detected monitoring type for display purposes.
// The boolean is false when both stacks are present: coo is then returned by
// convention, but callers making removal decisions must not rely on it and
// should require an explicit type instead.
func (o Observation) Primary() (MonitoringType, bool) {
	hasCOO, hasUWM := o.HasCOO(), o.HasUWM()

	switch {
	case hasCOO && hasUWM:
		return TypeCOO, false
	case hasCOO:
		return TypeCOO, true
	case hasUWM:
		return TypeUWM, true
	default:
		return TypeNone, true
	}
}

// String renders the detected set for display, e.g. "coo", "coo+uwm" or "none".
func (o Observation) String() string {
	types := o.Types()

	switch len(types) {
	case 0:
		return string(TypeNone)
	case 1:
		return string(types[0])
	default:
		return string(types[0]) + "+" + string(types[1])
	}
}

// DesiredState is the operator-supplied target: which backend is requested,
// and whether the request is a removal.
type DesiredState struct {
	// Type is the requested backend. TypeNone means no explicit request was
	// made, which only matters for removal disambiguation.
	Type MonitoringType
	// Remove requests teardown of the detected stack instead of installation.
	Remove bool
}

// --- Reconciliation Actions ---

// ActionKind enumerates the decisions the reconciler can make.
type ActionKind string

const (
	// ActionNoOp leaves the cluster untouched.
	ActionNoOp ActionKind = "no-op"
	// ActionRemove tears down one monitoring stack.
	ActionRemove ActionKind = "remove"
	// ActionInstall installs or idempotently re-applies one monitoring stack.
	ActionInstall ActionKind = "install"
	// ActionSwitch removes one stack, waits for it to settle, then installs the other.
	ActionSwitch ActionKind = "switch"
	// ActionCoexistInstall re-applies the desired stack while another stack
	// remains installed alongside it.
	ActionCoexistInstall ActionKind = "coexist-install"
)

// Action is the reconciler's decision for a single invocation.
type Action struct {
	// Kind is the decision variant.
	Kind ActionKind
	// Target is the type being installed or removed.
	Target MonitoringType
	// From is the type removed first during a switch; TypeNone otherwise.
	From MonitoringType
	// Reason explains the decision for operator-facing logs.
	Reason string
}

// NoOp returns an Action that leaves the cluster untouched.
func NoOp(reason string) Action {
	return Action{Kind: ActionNoOp, Target: TypeNone, From: TypeNone, Reason: reason}
}

// Remove returns an Action tearing down the given type.
func Remove(target MonitoringType, reason string) Action {
	return Action{Kind: ActionRemove, Target: target, From: TypeNone, Reason: reason}
}

// Install returns an Action installing or re-applying the given type.
func Install(target MonitoringType, reason string) Action {
	return Action{Kind: ActionInstall, Target: target, From: TypeNone, Reason: reason}
}

// Switch returns an Action replacing one stack with another. Execution is
// strictly remove-then-install so both stacks never scrape concurrently.
func Switch(from, target MonitoringType, reason string) Action {
	return Action{Kind: ActionSwitch, Target: target, From: from, Reason: reason}
}

// CoexistInstall returns an Action re-applying the desired stack while the
// other stack stays installed.
func CoexistInstall(target MonitoringType, reason string) Action {
	return Action{Kind: ActionCoexistInstall, Target: target, From: TypeNone, Reason: reason}
}

// String renders the action for display, e.g. "install(coo)" or "switch(coo, uwm)".
func (a Action) String() string {
	switch a.Kind {
	case ActionNoOp:
		return string(ActionNoOp)
	case ActionSwitch:
		return fmt.Sprintf("%s(%s, %s)", a.Kind, a.From, a.Target)
	case ActionRemove, ActionInstall, ActionCoexistInstall:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Target)
	default:
		return string(a.Kind)
	}
}
