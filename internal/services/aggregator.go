package services

import (
	"runtime"
	"sync"

	"overlap/internal/models"
	"overlap/internal/providers"
	"overlap/internal/structures"
)

// Aggregator computes per-channel unique-chatter counts, total-overlap
// counts and the symmetric pair-overlap map from a chatter → channels
// mapping. It is a pure function of its input: the chatter set is
// partitioned across workers that each fill a private accumulator, and the
// accumulators are summed single-threaded at the end, so no lock is held on
// the hot path.
type Aggregator struct {
	ceiling int
	workers int
	logger  providers.Logger
}

func NewAggregator(conf *structures.Config, logger providers.Logger) *Aggregator {
	return &Aggregator{
		ceiling: conf.Aggregator.FanOutCeiling,
		workers: conf.Aggregator.Workers,
		logger:  logger,
	}
}

func (a *Aggregator) Aggregate(chatters models.ChatterMap) *models.AggregateResult {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	feed := make(chan []string, workers*4)
	locals := make(chan *models.AggregateResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := models.NewAggregateResult()
			for channels := range feed {
				local.AddChatter(channels, a.ceiling)
			}
			locals <- local
		}()
	}

	for _, channels := range chatters {
		feed <- channels.Names()
	}
	close(feed)
	wg.Wait()
	close(locals)

	result := models.NewAggregateResult()
	for local := range locals {
		result.Merge(local)
	}

	a.logger.Debugf(providers.TypeAggregate, "Aggregated %d chatters into %d channels", len(chatters), len(result.Unique))
	return result
}
