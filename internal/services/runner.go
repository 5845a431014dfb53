package services

import (
	"context"
	"fmt"
	"time"

	"overlap/internal/models"
	"overlap/internal/providers"
	"overlap/internal/snapshot"
	"overlap/internal/storage"
	"overlap/internal/structures"
)

const historyRetentionDays = 30

// ChannelSource supplies the fleet of live channels to aggregate over.
type ChannelSource interface {
	Channels(ctx context.Context) ([]*models.Channel, error)
}

// Runner drives one engine invocation end to end: decide the work set,
// collect rosters, aggregate the tick, persist, and on a day boundary run
// the daily-family rollup and the snapshot lifecycle.
type Runner struct {
	conf       *structures.Config
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	source     ChannelSource
	collector  *Collector
	aggregator *Aggregator
	merger     *Merger
	writer     *Writer
	snapshots  snapshot.StoreInterface
	store      storage.StoreInterface
}

func NewRunner(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	source ChannelSource,
	collector *Collector,
	aggregator *Aggregator,
	merger *Merger,
	writer *Writer,
	snapshots snapshot.StoreInterface,
	store storage.StoreInterface,
) *Runner {
	return &Runner{
		conf:       conf,
		logger:     logger,
		metrics:    metrics,
		source:     source,
		collector:  collector,
		aggregator: aggregator,
		merger:     merger,
		writer:     writer,
		snapshots:  snapshots,
		store:      store,
	}
}

// Run performs one invocation. Component-local failures (one channel's
// roster, one day's snapshot) are logged and skipped inside the components;
// an error returned here means the run could not proceed at all and the
// process should exit non-zero for the outer scheduler to observe.
func (r *Runner) Run(ctx context.Context) error {
	now := time.Now().UTC()
	started := time.Now()

	lastUpdate, haveLast, err := r.store.LatestChannelUpdate()
	if err != nil {
		return fmt.Errorf("read latest update: %w", err)
	}

	ws := ComputeWorkSet(now, lastUpdate, haveLast)
	if ws.Skip {
		r.logger.Infof(providers.TypeApp, "Overlap already calculated for this slot, exiting")
		return nil
	}
	if ws.Backup {
		r.logger.Infof(providers.TypeApp, "Latest calculation not found, starting backup run")
	}

	channels, err := r.source.Channels(ctx)
	if err != nil {
		return fmt.Errorf("channel discovery: %w", err)
	}
	r.logger.Infof(providers.TypeApp, "Retrieved %d channels", len(channels))

	if err := r.store.UpsertChannels(channels); err != nil {
		return fmt.Errorf("upsert channels: %w", err)
	}

	var day models.ChatterMap
	if ws.SnapshotFlush {
		day, err = r.snapshots.Get(now)
		if err != nil {
			// Do not risk overwriting the day file with partial data.
			r.logger.Errorf(providers.TypeStore, "Cannot read today's snapshot, skipping flush: %s", err)
		} else if day == nil {
			day = make(models.ChatterMap)
		}
	}

	collectStart := time.Now()
	tick := r.collector.Collect(ctx, channels, day)
	r.metrics.ObserveStageDuration("collect", time.Since(collectStart))

	aggregateStart := time.Now()
	result := r.aggregator.Aggregate(tick)
	r.metrics.ObserveStageDuration("aggregate", time.Since(aggregateStart))

	if _, err := r.writer.WriteWindow(models.TickWindow, now, result); err != nil {
		return fmt.Errorf("write tick window: %w", err)
	}

	if err := r.writeChannelActivity(now, channels, result); err != nil {
		return err
	}

	if ws.SnapshotFlush && day != nil {
		if err := r.snapshots.Put(now, day); err != nil {
			return fmt.Errorf("flush day snapshot: %w", err)
		}
		r.logger.Infof(providers.TypeStore, "Flushed day snapshot with %d chatters", len(day))
	}

	if ws.DailyRollup {
		if err := r.runDailyRollup(now); err != nil {
			return err
		}
	}

	if err := r.metrics.Push(); err != nil {
		r.logger.Warnf(providers.TypeApp, "Metrics push failed: %s", err)
	}

	r.logger.Infof(providers.TypeApp, "Run complete in %s", time.Since(started).Round(time.Millisecond))
	return nil
}

// writeChannelActivity persists each active channel's chatter and
// total-shared counts plus one history point for this tick.
func (r *Runner) writeChannelActivity(now time.Time, channels []*models.Channel, result *models.AggregateResult) error {
	active := make([]*models.Channel, 0, len(channels))
	logins := make([]string, 0, len(channels))
	for _, ch := range channels {
		if ch.Chatters == 0 {
			continue
		}
		ch.Shared = result.TotalOverlap[ch.LoginName]
		ch.LastUpdate = now
		active = append(active, ch)
		logins = append(logins, ch.LoginName)
	}

	if err := r.store.UpdateChannelActivity(active); err != nil {
		return fmt.Errorf("update channel activity: %w", err)
	}

	ids, err := r.store.ChannelIDs(logins)
	if err != nil {
		return fmt.Errorf("resolve history channel ids: %w", err)
	}

	history := make([]models.ChannelHistory, 0, len(active))
	for _, ch := range active {
		id, ok := ids[ch.LoginName]
		if !ok {
			continue
		}
		history = append(history, models.ChannelHistory{
			ChannelID: id,
			Timestamp: now,
			Viewers:   ch.Viewers,
			Chatters:  ch.Chatters,
			Shared:    ch.Shared,
		})
	}

	if err := r.store.InsertHistory(history); err != nil {
		return fmt.Errorf("insert channel history: %w", err)
	}
	if err := r.store.PruneHistory(now.AddDate(0, 0, -historyRetentionDays)); err != nil {
		return fmt.Errorf("prune channel history: %w", err)
	}
	return nil
}

// runDailyRollup recomputes every rolling window over the snapshot store.
// The windows are tiered: the accumulator carries earlier windows' days
// forward, so the 30-day window sees days 1-30 while each snapshot is read
// once.
func (r *Runner) runDailyRollup(now time.Time) error {
	yesterday := now.AddDate(0, 0, -1)
	key := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)

	done, err := r.writer.HasWindow(models.DailyWindows[0], key)
	if err != nil {
		return fmt.Errorf("rollup idempotency check: %w", err)
	}
	if done {
		r.logger.Infof(providers.TypeApp, "Daily rollup for %s already present, skipping", key.Format("2006-01-02"))
		return nil
	}

	acc := make(models.ChatterMap)
	for _, window := range models.DailyWindows {
		r.merger.Load(acc, now, window.DayStart, window.DayEnd)

		start := time.Now()
		result := r.aggregator.Aggregate(acc)
		r.metrics.ObserveStageDuration("rollup_"+string(window.Kind), time.Since(start))

		if _, err := r.writer.WriteWindow(window, key, result); err != nil {
			return fmt.Errorf("write %s window: %w", window.Kind, err)
		}
	}

	r.merger.PruneSnapshots(now)
	return nil
}
