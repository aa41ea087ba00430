package workload

import (
	"strconv"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/svc/exporter"
)

// appLabels returns the labels every workload resource carries. The scrape
// selectors and the logs pod selector both match on them.
func appLabels() map[string]string {
	return map[string]string{v1alpha1.AppLabelKey: v1alpha1.AppLabelValue}
}

// appSelector is the label selector string matching the workload's pods.
func appSelector() string {
	return v1alpha1.AppLabelKey + "=" + v1alpha1.AppLabelValue
}

func buildServiceAccount(namespace string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.WorkloadName,
			Namespace: namespace,
			Labels:    appLabels(),
		},
	}
}

// buildConfigMap renders the exporter's environment. Keys are the variables
// the exporter reads at startup.
func buildConfigMap(namespace, logLevel string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.WorkloadConfigName,
			Namespace: namespace,
			Labels:    appLabels(),
		},
		Data: map[string]string{
			exporter.EnvPort:           strconv.Itoa(int(v1alpha1.MetricsPort)),
			exporter.EnvScrapeInterval: strconv.Itoa(int(exporter.DefaultScrapeInterval / time.Second)),
			exporter.EnvLogLevel:       logLevel,
		},
	}
}

func buildDeployment(namespace, image string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.WorkloadName,
			Namespace: namespace,
			Labels:    appLabels(),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{MatchLabels: appLabels()},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: appLabels()},
				Spec: corev1.PodSpec{
					ServiceAccountName: v1alpha1.WorkloadName,
					Containers:         []corev1.Container{buildContainer(image)},
				},
			},
		},
	}
}

// buildContainer describes the exporter container. The liveness probe hits
// the index page so a cluster-side scrape outage does not restart the pod;
// readiness hits /health and only admits traffic once metrics are fresh.
func buildContainer(image string) corev1.Container {
	return corev1.Container{
		Name:  v1alpha1.WorkloadName,
		Image: image,
		EnvFrom: []corev1.EnvFromSource{{
			ConfigMapRef: &corev1.ConfigMapEnvSource{
				LocalObjectReference: corev1.LocalObjectReference{Name: v1alpha1.WorkloadConfigName},
			},
		}},
		Ports: []corev1.ContainerPort{{
			Name:          v1alpha1.MetricsPortName,
			ContainerPort: v1alpha1.MetricsPort,
			Protocol:      corev1.ProtocolTCP,
		}},
		Resources: corev1.ResourceRequirements{
			Requests: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("50m"),
				corev1.ResourceMemory: resource.MustParse("64Mi"),
			},
			Limits: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("200m"),
				corev1.ResourceMemory: resource.MustParse("128Mi"),
			},
		},
		LivenessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: "/",
					Port: intstr.FromString(v1alpha1.MetricsPortName),
				},
			},
			InitialDelaySeconds: 10,
			PeriodSeconds:       30,
		},
		ReadinessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: "/health",
					Port: intstr.FromString(v1alpha1.MetricsPortName),
				},
			},
			InitialDelaySeconds: 5,
			PeriodSeconds:       10,
		},
		SecurityContext: &corev1.SecurityContext{
			RunAsNonRoot:             ptr.To(true),
			AllowPrivilegeEscalation: ptr.To(false),
			ReadOnlyRootFilesystem:   ptr.To(true),
			Capabilities: &corev1.Capabilities{
				Drop: []corev1.Capability{"ALL"},
			},
			SeccompProfile: &corev1.SeccompProfile{
				Type: corev1.SeccompProfileTypeRuntimeDefault,
			},
		},
	}
}

func buildService(namespace string) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.WorkloadName,
			Namespace: namespace,
			Labels:    appLabels(),
		},
		Spec: corev1.ServiceSpec{
			Selector: appLabels(),
			Type:     corev1.ServiceTypeClusterIP,
			Ports: []corev1.ServicePort{{
				Name:       v1alpha1.MetricsPortName,
				Port:       v1alpha1.MetricsPort,
				TargetPort: intstr.FromString(v1alpha1.MetricsPortName),
				Protocol:   corev1.ProtocolTCP,
			}},
		},
	}
}
