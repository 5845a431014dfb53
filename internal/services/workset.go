package services

import "time"

// maxTickStaleness is how old the latest persisted tick may be before a
// backup slot takes over for a missed primary run.
const maxTickStaleness = 10 * time.Minute

// dayRolloverGrace shifts the clock back when probing for a day boundary,
// so the rollup fires on the first run after midnight even if cron drifts a
// few minutes.
const dayRolloverGrace = 15 * time.Minute

// WorkSet is the flat decision table for one invocation: which of the
// tick / snapshot-flush / daily-rollup work items this run performs.
type WorkSet struct {
	Tick          bool
	SnapshotFlush bool
	DailyRollup   bool
	Backup        bool
	Skip          bool
}

// ComputeWorkSet decides the work set from the wall clock and the freshness
// of the latest persisted tick. haveLast is false on a first-ever run
// (empty channels table), in which case the backup slots always run.
//
// Minute 0 of the hour is the heavier tick that also flushes the day
// snapshot. Minutes 5 and 35 are recovery slots: they only run when the
// primary tick for the slot appears to have been missed. Crossing local
// midnight (with grace) adds the daily-family rollup.
func ComputeWorkSet(now time.Time, lastUpdate time.Time, haveLast bool) WorkSet {
	ws := WorkSet{Tick: true}

	switch now.Minute() {
	case 5, 35:
		if haveLast && now.Sub(lastUpdate) <= maxTickStaleness {
			return WorkSet{Skip: true}
		}
		ws.Backup = true
	case 0:
		ws.SnapshotFlush = true
	}

	if !ws.Backup && now.Add(-dayRolloverGrace).Day() != now.Day() {
		ws.SnapshotFlush = true
		ws.DailyRollup = true
	}

	return ws
}
