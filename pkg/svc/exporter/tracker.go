package exporter

import (
	"time"

	cloudnetworkv1 "github.com/eip-monitor/eipmon/pkg/apis/cloudnetwork/v1"
)

// historyWindow bounds the rolling window for change and recovery trends.
const historyWindow = time.Hour

// Trend reports rolling totals over the last hour of observations.
type Trend struct {
	// Changes sums how many assignments moved across recent observations.
	Changes int
	// ChangeEvents counts the observations where the assigned total moved.
	ChangeEvents int
	// Recoveries counts cloud IP configs that went from error back to
	// success.
	Recoveries int
}

type changeEvent struct {
	at    time.Time
	moved int
}

// Tracker folds successive snapshots into rolling trend totals. The
// collection loop is the only caller, so no locking is needed.
type Tracker struct {
	seeded           bool
	previousAssigned int
	previousReasons  map[string]string
	changes          []changeEvent
	recoveries       []time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{previousReasons: make(map[string]string)}
}

// Observe folds one snapshot into the history and returns the trend as of
// the snapshot time. Time flows through snapshot.Taken, so replayed or
// out-of-order snapshots age the history accordingly.
func (t *Tracker) Observe(snapshot Snapshot) Trend {
	assigned := snapshot.Assigned()

	if t.seeded {
		if moved := intAbs(assigned - t.previousAssigned); moved > 0 {
			t.changes = append(t.changes, changeEvent{at: snapshot.Taken, moved: moved})
		}
	}

	t.previousAssigned = assigned
	t.seeded = true

	t.observeRecoveries(snapshot)
	t.prune(snapshot.Taken)

	trend := Trend{
		ChangeEvents: len(t.changes),
		Recoveries:   len(t.recoveries),
	}
	for _, change := range t.changes {
		trend.Changes += change.moved
	}

	return trend
}

// observeRecoveries compares each cloud IP config's assignment reason with
// the previous observation. The API retains only the latest condition, so a
// recovery is visible only as an error-to-success flip between snapshots.
func (t *Tracker) observeRecoveries(snapshot Snapshot) {
	reasons := make(map[string]string, len(snapshot.CloudIPs))

	for i := range snapshot.CloudIPs {
		cloudIP := &snapshot.CloudIPs[i]
		reason := cloudIP.AssignedReason()
		reasons[cloudIP.Name] = reason

		if reason == cloudnetworkv1.ReasonSuccess &&
			t.previousReasons[cloudIP.Name] == cloudnetworkv1.ReasonError {
			t.recoveries = append(t.recoveries, snapshot.Taken)
		}
	}

	t.previousReasons = reasons
}

func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-historyWindow)

	keptChanges := t.changes[:0]

	for _, change := range t.changes {
		if !change.at.Before(cutoff) {
			keptChanges = append(keptChanges, change)
		}
	}

	t.changes = keptChanges

	keptRecoveries := t.recoveries[:0]

	for _, recovery := range t.recoveries {
		if !recovery.Before(cutoff) {
			keptRecoveries = append(keptRecoveries, recovery)
		}
	}

	t.recoveries = keptRecoveries
}

func intAbs(value int) int {
	if value < 0 {
		return -value
	}

	return value
}
