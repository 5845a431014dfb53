package services

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/atomic"

	"overlap/internal/models"
	"overlap/internal/providers"
	"overlap/internal/structures"
)

// RosterClient supplies the current chat roster of a single channel.
// Implementations must tolerate concurrent calls; errors are non-fatal to
// the collector.
type RosterClient interface {
	GetChatters(ctx context.Context, login string) (*models.Roster, error)
}

// Collector builds the current tick's chatter → channels mapping from
// per-channel roster fetches, and optionally folds the same observations
// into the day-scoped snapshot accumulating across ticks.
type Collector struct {
	client  RosterClient
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewCollector(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, client RosterClient) *Collector {
	return &Collector{
		client:  client,
		conf:    conf,
		logger:  logger,
		metrics: metrics,
	}
}

// Collect fetches all channel rosters concurrently and returns the tick
// mapping. When daySnapshot is non-nil, channels at or above the snapshot
// threshold are also unioned into it. Each channel's Chatters field is
// updated from its roster; channels whose fetch fails are logged and left
// out of this tick.
func (c *Collector) Collect(ctx context.Context, channels []*models.Channel, daySnapshot models.ChatterMap) models.ChatterMap {
	tick := make(models.ChatterMap)

	var tickMu sync.Mutex
	var dayMu sync.Mutex
	failures := atomic.NewInt64(0)

	sem := make(chan struct{}, c.conf.Collector.FetchWorkers)
	var wg sync.WaitGroup

	for _, channel := range channels {
		wg.Add(1)
		sem <- struct{}{}
		go func(ch *models.Channel) {
			defer wg.Done()
			defer func() { <-sem }()

			roster, err := c.client.GetChatters(ctx, ch.LoginName)
			if err != nil {
				failures.Inc()
				c.metrics.IncRosterFailures()
				c.logger.Warnf(providers.TypeRoster, "Could not retrieve chatters for %s: %s", ch.LoginName, err)
				return
			}
			c.metrics.IncRostersFetched()

			if roster.ChatterCount < c.conf.Collector.MinTickChatters {
				return
			}
			ch.Chatters = roster.ChatterCount

			intoDay := daySnapshot != nil && roster.ChatterCount >= c.conf.Collector.MinSnapshotChatters

			accepted := 0
			for _, name := range roster.Chatters {
				username := strings.ToLower(name)
				if username == "" || strings.HasSuffix(username, "bot") {
					continue
				}
				accepted++

				tickMu.Lock()
				tick.Add(username, ch.LoginName)
				tickMu.Unlock()

				if intoDay {
					dayMu.Lock()
					daySnapshot.Add(username, ch.LoginName)
					dayMu.Unlock()
				}
			}
			c.metrics.AddChattersCollected(accepted)
		}(channel)
	}
	wg.Wait()

	if n := failures.Load(); n > 0 {
		c.logger.Warnf(providers.TypeRoster, "%d of %d roster fetches failed", n, len(channels))
	}
	c.logger.Infof(providers.TypeRoster, "Collected %d chatters from %d channels", len(tick), len(channels))

	return tick
}
