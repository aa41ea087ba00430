package k8s

import (
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/runtime"

	cloudnetworkv1 "github.com/eip-monitor/eipmon/pkg/apis/cloudnetwork/v1"
	obsopsv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/obsops/v1alpha1"
	olmv1 "github.com/eip-monitor/eipmon/pkg/apis/olm/v1"
	olmv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/olm/v1alpha1"
	ovnv1 "github.com/eip-monitor/eipmon/pkg/apis/ovn/v1"
	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
)

// NewScheme builds the runtime scheme holding every custom resource kind
// eipmon touches. Core kinds stay on the typed clientset and are not
// registered here. CustomResourceDefinition is registered so installers can
// watch for operator CRDs becoming established.
func NewScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()

	// The AddToScheme implementations cannot fail; the error returns exist
	// for parity with generated scheme builders.
	_ = promopv1.AddToScheme(scheme)
	_ = obsopsv1alpha1.AddToScheme(scheme)
	_ = olmv1.AddToScheme(scheme)
	_ = olmv1alpha1.AddToScheme(scheme)
	_ = ovnv1.AddToScheme(scheme)
	_ = cloudnetworkv1.AddToScheme(scheme)
	_ = apiextensionsv1.AddToScheme(scheme)

	return scheme
}
