package workload

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	discoveryv1 "k8s.io/api/discovery/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/k8s/readiness"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

const (
	healthPath  = "health"
	metricsPath = "metrics"

	// healthyStatus is what the exporter's /health reports once metrics flow.
	healthyStatus = "healthy"

	// probeMetricFamily must appear in the exposition for the test to pass.
	// It is published on every collection cycle, so its absence means the
	// exporter never completed one.
	probeMetricFamily = "eips_configured_total"
)

// Test verifies the deployed workload end to end: the rollout has converged,
// the Service has ready endpoints, and the exporter answers through the API
// server proxy with a healthy status and live metric samples. Unlike deploy,
// a rollout that never converges fails the test.
func (m *Manager) Test(ctx context.Context) error {
	notify.Activityf(m.out, "waiting for deployment '%s' rollout", v1alpha1.WorkloadName)

	err := readiness.WaitForDeploymentReady(
		ctx, m.clientset, m.opts.Namespace, v1alpha1.WorkloadName, m.timeout,
	)
	if err != nil {
		return fmt.Errorf("deployment '%s' is not ready: %w", v1alpha1.WorkloadName, err)
	}

	notify.Activityf(m.out, "waiting for service '%s' endpoints", v1alpha1.WorkloadName)

	if err := m.waitForReadyEndpoints(ctx); err != nil {
		return fmt.Errorf("service '%s' has no ready endpoints: %w", v1alpha1.WorkloadName, err)
	}

	notify.Activityf(m.out, "probing /health through the API server proxy")

	if err := m.probeHealth(ctx); err != nil {
		return err
	}

	notify.Activityf(m.out, "probing /metrics through the API server proxy")

	if err := m.probeMetrics(ctx); err != nil {
		return err
	}

	notify.Successf(m.out, "workload '%s' is healthy and serving metrics", v1alpha1.WorkloadName)

	return nil
}

// waitForReadyEndpoints polls the Service's EndpointSlices until at least one
// endpoint is ready. Endpoint readiness lags pod readiness by a beat, so this
// runs after the rollout wait rather than relying on it.
func (m *Manager) waitForReadyEndpoints(ctx context.Context) error {
	return readiness.PollForReadiness(ctx, m.timeout, func(ctx context.Context) (bool, error) {
		slices, err := m.clientset.DiscoveryV1().
			EndpointSlices(m.opts.Namespace).
			List(ctx, metav1.ListOptions{
				LabelSelector: discoveryv1.LabelServiceName + "=" + v1alpha1.WorkloadName,
			})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		for _, slice := range slices.Items {
			for _, endpoint := range slice.Endpoints {
				// An unset Ready condition counts as ready, per the API contract.
				if endpoint.Conditions.Ready == nil || *endpoint.Conditions.Ready {
					return true, nil
				}
			}
		}

		return false, nil
	})
}

// probeHealth fetches /health and requires a healthy status. An unhealthy
// exporter answers 503 with the same JSON body, so the reported reason is
// pulled out of the response even when the proxy call itself errors.
func (m *Manager) probeHealth(ctx context.Context) error {
	raw, proxyErr := m.proxyGet(ctx, healthPath)

	var health struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	if len(raw) > 0 && json.Unmarshal(raw, &health) == nil && health.Status == healthyStatus {
		return nil
	}

	if health.Status == "" {
		if proxyErr != nil {
			return proxyErr
		}

		return fmt.Errorf("%w: unexpected health response", ErrUnhealthy)
	}

	if health.Message != "" {
		return fmt.Errorf("%w: %s", ErrUnhealthy, health.Message)
	}

	return fmt.Errorf("%w: status %q", ErrUnhealthy, health.Status)
}

// probeMetrics fetches /metrics and requires at least one sample of the
// probe family.
func (m *Manager) probeMetrics(ctx context.Context) error {
	raw, err := m.proxyGet(ctx, metricsPath)
	if err != nil {
		return err
	}

	if !hasMetricSample(raw, probeMetricFamily) {
		return fmt.Errorf("%w: no %s sample in the exposition", ErrMetricMissing, probeMetricFamily)
	}

	return nil
}

// proxyGet fetches a path from the workload Service through the API server
// proxy, so the test needs no port-forward or in-cluster network access. The
// body is returned even on error; a failing health probe carries its reason
// in the response.
func (m *Manager) proxyGet(ctx context.Context, path string) ([]byte, error) {
	raw, err := m.clientset.CoreV1().
		Services(m.opts.Namespace).
		ProxyGet("http", v1alpha1.WorkloadName, v1alpha1.MetricsPortName, path, nil).
		DoRaw(ctx)
	if err != nil {
		return raw, fmt.Errorf("failed to probe /%s through the API server proxy: %w", path, err)
	}

	return raw, nil
}

// hasMetricSample reports whether the exposition contains a sample line for
// the family, either bare or with labels.
func hasMetricSample(exposition []byte, family string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(exposition))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, family+" ") || strings.HasPrefix(line, family+"{") {
			return true
		}
	}

	return false
}
