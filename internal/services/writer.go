package services

import (
	"encoding/binary"
	"fmt"
	"time"

	"overlap/internal/models"
	"overlap/internal/providers"
	"overlap/internal/storage"
)

const idCachePrefix = "chid:"

// Writer ranks aggregation output into size-capped rows and persists them.
// Each window's write is a bulk batch followed by that table's retention
// prune; re-running a window is a logical overwrite on (timestamp, channel).
type Writer struct {
	store   storage.StoreInterface
	cache   providers.CacheProviderInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewWriter(store storage.StoreInterface, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *Writer {
	return &Writer{
		store:   store,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// HasWindow reports whether rows already exist for the window key. The
// daily rollup calls this before recomputing, so overlapping scheduler
// invocations degrade to a no-op instead of duplicate work.
func (w *Writer) HasWindow(window models.WindowSpec, key time.Time) (bool, error) {
	return w.store.HasRows(window, key)
}

// WriteWindow builds one row per channel in the result, bulk-writes the
// batch and prunes rows past the window's retention horizon. Returns the
// number of rows written.
func (w *Writer) WriteWindow(window models.WindowSpec, key time.Time, res *models.AggregateResult) (int, error) {
	for login := range res.Pairs {
		if _, ok := res.Unique[login]; !ok {
			w.logger.Errorf(providers.TypeAggregate, "Invariant violation: pair entries for %s without a unique count", login)
		}
	}

	logins := make([]string, 0, len(res.Unique))
	for login := range res.Unique {
		logins = append(logins, login)
	}

	ids, err := w.channelIDs(logins)
	if err != nil {
		return 0, fmt.Errorf("resolve channel ids: %w", err)
	}

	rows := make([]models.OverlapRow, 0, len(ids))
	for login, id := range ids {
		rows = append(rows, models.OverlapRow{
			Key:          key,
			Channel:      id,
			TotalUnique:  res.Unique[login],
			TotalOverlap: res.TotalOverlap[login],
			Shared:       models.RankShared(res.Pairs[login], window.MinShared, window.Cap),
		})
	}

	if err := w.store.InsertOverlap(window, rows); err != nil {
		return 0, fmt.Errorf("insert %s rows: %w", window.Table, err)
	}

	cutoff := key.AddDate(0, 0, -window.RetentionDays)
	if err := w.store.PruneOverlap(window, cutoff); err != nil {
		return len(rows), fmt.Errorf("prune %s: %w", window.Table, err)
	}

	w.metrics.AddRowsWritten(string(window.Kind), len(rows))
	w.logger.Infof(providers.TypeStore, "Wrote %d rows to %s for %s", len(rows), window.Table, key.Format(time.RFC3339))
	return len(rows), nil
}

// channelIDs resolves login names to channel ids through the cache, hitting
// the store only for misses. Logins unknown to the store are dropped; their
// channels were never discovered and have nowhere to be reported.
func (w *Writer) channelIDs(logins []string) (map[string]int, error) {
	ids := make(map[string]int, len(logins))
	missing := make([]string, 0)

	for _, login := range logins {
		if val, ok := w.cache.Get(idCachePrefix + login); ok && len(val) == 4 {
			ids[login] = int(binary.LittleEndian.Uint32(val))
			continue
		}
		missing = append(missing, login)
	}

	if len(missing) > 0 {
		resolved, err := w.store.ChannelIDs(missing)
		if err != nil {
			return nil, err
		}
		for login, id := range resolved {
			ids[login] = id
			val := make([]byte, 4)
			binary.LittleEndian.PutUint32(val, uint32(id))
			w.cache.Set(idCachePrefix+login, val)
		}
	}

	return ids, nil
}
