package dashboard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// currentValuePanelTypes are the Grafana panel types that render a single
// current value and therefore need instant queries.
var currentValuePanelTypes = []string{
	"gauge",
	"stat",
	"piechart",
	"table",
	"grafana-polystat-panel",
}

// aggregationMarkers mean the expression already aggregates and is left
// alone.
var aggregationMarkers = []string{
	"sum(", "avg(", "max(", "min(", "stddev", "rate(", "increase(", "count(",
}

// ambiguousMarkers suppress rewriting complex expressions. They match bare,
// so an expression merely containing "rate" or "avg" anywhere, metric names
// included, keeps its expression untouched.
var ambiguousMarkers = []string{"stddev", "avg", "rate"}

var (
	// metricPattern matches counter-style metric names inside an expression.
	metricPattern = regexp.MustCompile(`\b[a-z_][a-z0-9_]*(?:_total|_count|_percent|_score)\b`)

	// simpleMetricPattern matches an expression that is nothing but a single
	// metric name.
	simpleMetricPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// target is the slice of a Grafana query target the lint rules inspect.
// Unknown target fields survive because rewrites go through sjson rather
// than re-encoding this struct.
type target struct {
	Expr    string `json:"expr"`
	Instant bool   `json:"instant"`
	RefID   string `json:"refId"`
}

// violation pairs a finding with the JSON path that can address it, so the
// fixer rewrites exactly the location the linter flagged.
type violation struct {
	kind    FindingKind
	panelID int64
	refID   string
	path    string
	expr    string
}

func (v violation) message() string {
	switch v.kind {
	case FindingMissingInstant:
		return "current-value panel target is not an instant query"
	case FindingBareMetric:
		return "bare metric reference without aggregation"
	default:
		return string(v.kind)
	}
}

func (v violation) remedy() string {
	switch v.kind {
	case FindingMissingInstant:
		return "set instant=true"
	case FindingBareMetric:
		return "wrapped bare metrics in sum()"
	default:
		return string(v.kind)
	}
}

// scan walks every panel target in the dashboard JSON and returns the
// violations in document order.
func scan(raw string) []violation {
	var violations []violation

	for panelIdx, panel := range gjson.Get(raw, "panels").Array() {
		panelType := panel.Get("type").String()
		panelID := panel.Get("id").Int()

		for targetIdx, result := range panel.Get("targets").Array() {
			var tgt target

			err := json.Unmarshal([]byte(result.Raw), &tgt)
			if err != nil {
				continue
			}

			path := fmt.Sprintf("panels.%d.targets.%d", panelIdx, targetIdx)

			if isCurrentValuePanel(panelType) && !tgt.Instant {
				violations = append(violations, violation{
					kind:    FindingMissingInstant,
					panelID: panelID,
					refID:   tgt.RefID,
					path:    path,
				})
			}

			if needsSumAggregation(tgt.Expr) {
				violations = append(violations, violation{
					kind:    FindingBareMetric,
					panelID: panelID,
					refID:   tgt.RefID,
					path:    path,
					expr:    tgt.Expr,
				})
			}
		}
	}

	return violations
}

func isCurrentValuePanel(panelType string) bool {
	return slices.Contains(currentValuePanelTypes, panelType)
}

// needsSumAggregation reports whether a PromQL expression references bare
// metrics that would render one series per label set instead of one
// aggregated value.
func needsSumAggregation(expr string) bool {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return false
	}

	if containsAny(expr, aggregationMarkers) {
		return false
	}

	// Percentage calculations stay untouched unless they embed bare metrics.
	if strings.HasPrefix(trimmed, "100 -") {
		return metricPattern.MatchString(expr)
	}

	if simpleMetricPattern.MatchString(trimmed) {
		return true
	}

	return metricPattern.MatchString(expr) && !containsAny(expr, ambiguousMarkers)
}

// addSumAggregation wraps bare metric references in sum(). An expression
// that is a single metric name is wrapped whole, anything else keeps its
// structure and only the metric references change.
func addSumAggregation(expr string) string {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return expr
	}

	if simpleMetricPattern.MatchString(trimmed) {
		return "sum(" + trimmed + ")"
	}

	return metricPattern.ReplaceAllStringFunc(expr, func(metric string) string {
		return "sum(" + metric + ")"
	})
}

func containsAny(expr string, markers []string) bool {
	return slices.ContainsFunc(markers, func(marker string) bool {
		return strings.Contains(expr, marker)
	})
}
