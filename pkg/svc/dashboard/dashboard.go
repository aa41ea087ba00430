// Package dashboard lints and repairs GrafanaDashboard manifests.
//
// Current-value panels (gauge, stat, pie chart, table, polystat) must issue
// instant queries or they render the first sample of a range instead of the
// latest one, and bare counter references fan out one series per label set
// unless wrapped in sum(). Lint reports both, Fix rewrites them in place
// without disturbing the surrounding panel JSON.
package dashboard

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/tidwall/sjson"

	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// FindingKind classifies a lint violation.
type FindingKind string

const (
	// FindingMissingInstant flags a current-value panel target that is not
	// an instant query.
	FindingMissingInstant FindingKind = "missing-instant"

	// FindingBareMetric flags an expression referencing bare metrics without
	// an aggregation wrapper.
	FindingBareMetric FindingKind = "bare-metric"
)

// Finding is one lint violation in a dashboard manifest.
type Finding struct {
	// File is the manifest file name the violation was found in.
	File string
	// Panel is the numeric id of the offending panel.
	Panel int64
	// RefID identifies the query target within the panel.
	RefID string
	// Kind classifies the violation.
	Kind FindingKind
}

// Lint reports every violation in the GrafanaDashboard manifests under dir.
// The caller decides what a non-empty result means for the exit status.
func Lint(fsys afero.Fs, dir string, out io.Writer) ([]Finding, error) {
	manifests, err := loadDashboards(fsys, dir)
	if err != nil {
		return nil, err
	}

	if len(manifests) == 0 {
		notify.Infof(out, "no dashboard manifests found in '%s'", dir)

		return nil, nil
	}

	var findings []Finding

	for _, m := range manifests {
		for _, v := range scan(m.json) {
			findings = append(findings, Finding{
				File:  m.name(),
				Panel: v.panelID,
				RefID: v.refID,
				Kind:  v.kind,
			})

			notify.Warningf(out, "%s: panel %d (%s): %s", m.name(), v.panelID, v.refID, v.message())
		}
	}

	if len(findings) == 0 {
		notify.Successf(out, "all dashboards in '%s' pass lint", dir)
	}

	return findings, nil
}

// Fix rewrites the violations Lint reports and returns the number of
// rewrites applied. Manifests without findings are left untouched.
func Fix(fsys afero.Fs, dir string, out io.Writer) (int, error) {
	manifests, err := loadDashboards(fsys, dir)
	if err != nil {
		return 0, err
	}

	if len(manifests) == 0 {
		notify.Infof(out, "no dashboard manifests found in '%s'", dir)

		return 0, nil
	}

	applied := 0
	changed := 0

	for _, m := range manifests {
		count, err := fixManifest(fsys, m, out)
		if err != nil {
			return applied, err
		}

		if count > 0 {
			applied += count
			changed++
		}
	}

	if applied == 0 {
		notify.Infof(out, "nothing to fix in '%s'", dir)

		return 0, nil
	}

	notify.Successf(out, "fixed %d of %d dashboards", changed, len(manifests))

	return applied, nil
}

// fixManifest applies every rewrite to one manifest and saves it when
// anything changed. Rewrites address targets by index, which stays stable
// because no fix adds or removes array elements.
func fixManifest(fsys afero.Fs, m *manifest, out io.Writer) (int, error) {
	raw := m.json

	violations := scan(raw)

	for _, v := range violations {
		var err error

		switch v.kind {
		case FindingMissingInstant:
			raw, err = sjson.Set(raw, v.path+".instant", true)
		case FindingBareMetric:
			raw, err = sjson.Set(raw, v.path+".expr", addSumAggregation(v.expr))
		}

		if err != nil {
			return 0, fmt.Errorf("failed to rewrite '%s': %w", m.path, err)
		}

		notify.Activityf(out, "%s: panel %d (%s): %s", m.name(), v.panelID, v.refID, v.remedy())
	}

	if len(violations) == 0 {
		return 0, nil
	}

	m.json = raw

	err := m.save(fsys)
	if err != nil {
		return 0, err
	}

	return len(violations), nil
}
