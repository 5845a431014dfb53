package services

import (
	"context"
	"sync"

	"github.com/roylee0704/gron"

	"overlap/internal/providers"
	"overlap/internal/structures"
)

type SchedulerInterface interface {
	Init()
	Stop()
}

// Scheduler drives periodic invocations in daemon mode. opsMu serializes
// runs so a slow rollup never overlaps the next tick.
type Scheduler struct {
	conf   *structures.Config
	logger providers.Logger
	runner *Runner
	cron   *gron.Cron
	opsMu  sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.conf.Daemon.Interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.runner.Run(context.Background()); err != nil {
			s.logger.Errorf(providers.TypeApp, "Run failed: %s", err)
		}
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Scheduler started, interval %s", s.conf.Daemon.Interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func NewScheduler(conf *structures.Config, logger providers.Logger, runner *Runner) SchedulerInterface {
	return &Scheduler{
		conf:   conf,
		logger: logger,
		runner: runner,
	}
}
