package v1alpha1_test

import (
	"testing"

	v1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/stretchr/testify/assert"
)

func TestObservation_Types(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		observation v1alpha1.Observation
		want        []v1alpha1.MonitoringType
	}{
		{
			name:        "empty namespace detects nothing",
			observation: v1alpha1.Observation{},
			want:        []v1alpha1.MonitoringType{},
		},
		{
			name:        "monitoring stack alone detects coo",
			observation: v1alpha1.Observation{MonitoringStack: true},
			want:        []v1alpha1.MonitoringType{v1alpha1.TypeCOO},
		},
		{
			name:        "coo service monitor alone detects coo",
			observation: v1alpha1.Observation{COOServiceMonitor: true},
			want:        []v1alpha1.MonitoringType{v1alpha1.TypeCOO},
		},
		{
			name:        "uwm prometheus rule alone detects uwm",
			observation: v1alpha1.Observation{UWMPrometheusRule: true},
			want:        []v1alpha1.MonitoringType{v1alpha1.TypeUWM},
		},
		{
			name:        "uwm network policy alone detects uwm",
			observation: v1alpha1.Observation{UWMNetworkPolicy: true},
			want:        []v1alpha1.MonitoringType{v1alpha1.TypeUWM},
		},
		{
			name: "coexistence detects both",
			observation: v1alpha1.Observation{
				COOServiceMonitor: true,
				UWMServiceMonitor: true,
			},
			want: []v1alpha1.MonitoringType{v1alpha1.TypeCOO, v1alpha1.TypeUWM},
		},
		{
			name:        "user workload flag alone detects nothing",
			observation: v1alpha1.Observation{UserWorkloadEnabled: true},
			want:        []v1alpha1.MonitoringType{},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.observation.Types())
		})
	}
}

func TestObservation_Primary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		observation v1alpha1.Observation
		want        v1alpha1.MonitoringType
		wantOK      bool
	}{
		{
			name:        "empty is none",
			observation: v1alpha1.Observation{},
			want:        v1alpha1.TypeNone,
			wantOK:      true,
		},
		{
			name:        "single coo",
			observation: v1alpha1.Observation{COOServiceMonitor: true},
			want:        v1alpha1.TypeCOO,
			wantOK:      true,
		},
		{
			name:        "single uwm",
			observation: v1alpha1.Observation{UWMServiceMonitor: true},
			want:        v1alpha1.TypeUWM,
			wantOK:      true,
		},
		{
			name: "both present is ambiguous, coo by convention",
			observation: v1alpha1.Observation{
				MonitoringStack:   true,
				UWMServiceMonitor: true,
			},
			want:   v1alpha1.TypeCOO,
			wantOK: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, unambiguous := testCase.observation.Primary()
			assert.Equal(t, testCase.want, got)
			assert.Equal(t, testCase.wantOK, unambiguous)
		})
	}
}

func TestObservation_String(t *testing.T) {
	t.Parallel()

	empty := v1alpha1.Observation{}
	assert.Equal(t, "none", empty.String())

	coo := v1alpha1.Observation{MonitoringStack: true}
	assert.Equal(t, "coo", coo.String())

	both := v1alpha1.Observation{MonitoringStack: true, UWMNetworkPolicy: true}
	assert.Equal(t, "coo+uwm", both.String())
}

func TestObservation_Has(t *testing.T) {
	t.Parallel()

	observation := v1alpha1.Observation{COOServiceMonitor: true}

	assert.True(t, observation.Has(v1alpha1.TypeCOO))
	assert.False(t, observation.Has(v1alpha1.TypeUWM))
	assert.False(t, observation.Has(v1alpha1.TypeNone))

	empty := v1alpha1.Observation{}
	assert.True(t, empty.Has(v1alpha1.TypeNone))
}

func TestAction_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no-op", v1alpha1.NoOp("nothing to do").String())
	assert.Equal(t, "install(coo)", v1alpha1.Install(v1alpha1.TypeCOO, "").String())
	assert.Equal(t, "remove(uwm)", v1alpha1.Remove(v1alpha1.TypeUWM, "").String())
	assert.Equal(
		t,
		"switch(coo, uwm)",
		v1alpha1.Switch(v1alpha1.TypeCOO, v1alpha1.TypeUWM, "").String(),
	)
	assert.Equal(
		t,
		"coexist-install(uwm)",
		v1alpha1.CoexistInstall(v1alpha1.TypeUWM, "").String(),
	)
}
