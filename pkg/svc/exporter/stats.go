package exporter

import (
	"math"
	"sort"
)

// Distribution summarizes how evenly placed addresses spread across the
// egress-assignable nodes.
type Distribution struct {
	// Max is the highest per-node count.
	Max int
	// Min is the lowest per-node count.
	Min int
	// StdDev is the sample standard deviation of the per-node counts.
	StdDev float64
	// Gini is the gini coefficient of the per-node counts, from 0 for a
	// perfectly even spread to (n-1)/n for a single node carrying all.
	Gini float64
}

// DistributionOf computes the spread statistics for per-node counts. An
// empty input yields the zero Distribution.
func DistributionOf(counts map[string]int) Distribution {
	if len(counts) == 0 {
		return Distribution{}
	}

	values := make([]int, 0, len(counts))
	total := 0

	for _, count := range counts {
		values = append(values, count)
		total += count
	}

	sort.Ints(values)

	distribution := Distribution{
		Max: values[len(values)-1],
		Min: values[0],
	}

	size := float64(len(values))
	mean := float64(total) / size

	if len(values) > 1 {
		variance := 0.0
		for _, value := range values {
			deviation := float64(value) - mean
			variance += deviation * deviation
		}

		distribution.StdDev = math.Sqrt(variance / (size - 1))
	}

	if total > 0 {
		giniSum := 0.0
		for index, value := range values {
			giniSum += float64(2*(index+1)-len(values)-1) * float64(value)
		}

		distribution.Gini = math.Abs(giniSum / (size * float64(total)))
	}

	return distribution
}

// HealthScore grades the cluster's egress IP posture on a 0-100 scale. The
// assignment ratio carries up to 50 points, unassigned addresses subtract up
// to 20, a ratio above 0.8 adds 20 (10 above 0.6), and a fair spread adds 15
// when the gini coefficient stays under 0.1 (10 under 0.3). Zero when
// nothing is configured.
func HealthScore(configured, assigned int, gini float64) float64 {
	if configured <= 0 {
		return 0
	}

	ratio := float64(assigned) / float64(configured)
	score := ratio * 50

	score -= float64(configured-assigned) / float64(configured) * 20

	switch {
	case ratio > 0.8:
		score += 20
	case ratio > 0.6:
		score += 10
	}

	switch {
	case gini < 0.1:
		score += 15
	case gini < 0.3:
		score += 10
	}

	return math.Max(0, math.Min(100, score))
}

// StabilityScore grades assignment churn on a 0-100 scale. Every recent
// change event costs two points, capped at half the scale so a noisy cluster
// still scores 50.
func StabilityScore(changeEvents int) float64 {
	return 100 - math.Min(50, float64(changeEvents)*2)
}
