package internal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"overlap/internal/providers"
	"overlap/internal/services"
	"overlap/internal/structures"
)

type App struct{}

// NewApp runs the engine. The default mode is a single batch invocation for
// an external cron; daemon mode keeps the process alive and lets the
// scheduler fire invocations until a shutdown signal arrives.
func NewApp(runner *services.Runner, scheduler services.SchedulerInterface, conf *structures.Config, logger providers.Logger) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	app := &App{}

	if !conf.Daemon.Enabled {
		if err := runner.Run(context.Background()); err != nil {
			logger.Errorf(providers.TypeApp, "Run failed: %s", err)
			return nil, err
		}
		return app, nil
	}

	scheduler.Init()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Infof(providers.TypeApp, "Shutdown signal received")
	scheduler.Stop()
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
