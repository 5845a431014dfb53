package services

import (
	"time"

	"overlap/internal/models"
	"overlap/internal/providers"
	"overlap/internal/snapshot"
)

// Merger reconstructs rolling-window chatter maps from per-day snapshots.
// Day 1 is yesterday relative to "now": today's snapshot is still
// accumulating and never participates in a rollup.
type Merger struct {
	store  snapshot.StoreInterface
	logger providers.Logger
}

func NewMerger(store snapshot.StoreInterface, logger providers.Logger) *Merger {
	return &Merger{store: store, logger: logger}
}

// Load unions the snapshots for days dayStart..dayEnd (inclusive) into the
// accumulator. Missing days are skipped with a log entry so partial windows
// degrade gracefully. The daily windows are tiered, so callers reuse one
// accumulator across ascending windows and each day is read exactly once.
func (m *Merger) Load(acc models.ChatterMap, now time.Time, dayStart, dayEnd int) {
	for day := dayStart; day <= dayEnd; day++ {
		date := now.AddDate(0, 0, -day)
		chatters, err := m.store.Get(date)
		if err != nil {
			m.logger.Errorf(providers.TypeStore, "Failed to load snapshot for %s: %s", date.Format("2006-01-02"), err)
			continue
		}
		if chatters == nil {
			m.logger.Infof(providers.TypeStore, "No snapshot for %s, skipping day", date.Format("2006-01-02"))
			continue
		}
		acc.Union(chatters)
	}
}

// PruneSnapshots deletes snapshots older than the horizon no configured
// window can ever reach again.
func (m *Merger) PruneSnapshots(now time.Time) {
	cutoff := now.AddDate(0, 0, -models.SnapshotRetentionDays())
	removed, err := m.store.Prune(cutoff)
	if err != nil {
		m.logger.Errorf(providers.TypeStore, "Snapshot prune failed: %s", err)
		return
	}
	if removed > 0 {
		m.logger.Infof(providers.TypeStore, "Pruned %d snapshots older than %s", removed, cutoff.Format("2006-01-02"))
	}
}
