package dashboard

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"
)

const (
	dashboardKind    = "GrafanaDashboard"
	manifestFileMode = 0o644
)

// ErrNoDashboardJSON is returned when a GrafanaDashboard manifest carries no
// dashboard JSON under spec.json.
var ErrNoDashboardJSON = errors.New("manifest has no dashboard JSON")

// ErrInvalidDashboardJSON is returned when the embedded dashboard JSON does
// not parse.
var ErrInvalidDashboardJSON = errors.New("embedded dashboard JSON is not valid")

// manifest is one GrafanaDashboard YAML file with its embedded dashboard
// JSON. The decoded document is kept around so a save preserves manifest
// fields the tool does not touch.
type manifest struct {
	path string
	doc  map[string]any
	spec map[string]any
	json string
}

// loadDashboards reads every YAML file under dir and returns the
// GrafanaDashboard manifests in file name order. Files of other kinds, like
// Grafana instances or datasources, are skipped.
func loadDashboards(fsys afero.Fs, dir string) ([]*manifest, error) {
	paths, err := afero.Glob(fsys, filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboard manifests: %w", err)
	}

	manifests := make([]*manifest, 0, len(paths))

	for _, path := range paths {
		doc, err := decodeManifest(fsys, path)
		if err != nil {
			return nil, err
		}

		if doc["kind"] != dashboardKind {
			continue
		}

		m, err := newManifest(path, doc)
		if err != nil {
			return nil, err
		}

		manifests = append(manifests, m)
	}

	return manifests, nil
}

func decodeManifest(fsys afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest '%s': %w", path, err)
	}

	var doc map[string]any

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest '%s': %w", path, err)
	}

	return doc, nil
}

func newManifest(path string, doc map[string]any) (*manifest, error) {
	spec, ok := doc["spec"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNoDashboardJSON, path)
	}

	raw, ok := spec["json"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNoDashboardJSON, path)
	}

	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidDashboardJSON, path)
	}

	return &manifest{path: path, doc: doc, spec: spec, json: raw}, nil
}

func (m *manifest) name() string {
	return filepath.Base(m.path)
}

// save re-embeds the dashboard JSON and writes the manifest back.
func (m *manifest) save(fsys afero.Fs) error {
	m.spec["json"] = m.json

	data, err := yaml.Marshal(m.doc)
	if err != nil {
		return fmt.Errorf("failed to encode manifest '%s': %w", m.path, err)
	}

	err = afero.WriteFile(fsys, m.path, data, manifestFileMode)
	if err != nil {
		return fmt.Errorf("failed to write manifest '%s': %w", m.path, err)
	}

	return nil
}
