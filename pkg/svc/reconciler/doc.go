// Package reconciler decides how to move the cluster from the detected
// monitoring state to the desired one.
//
// Plan is a pure decision function over an Observation and a DesiredState;
// it never touches the cluster. Execute carries a planned Action out through
// the per-backend installers. Switching backends is strictly
// remove-then-install with a settle delay in between, so the old stack's
// scrape targets drain before the replacement registers.
package reconciler
