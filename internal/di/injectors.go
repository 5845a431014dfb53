//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"overlap/internal"
	"overlap/internal/providers"
	"overlap/internal/services"
	"overlap/internal/snapshot"
	"overlap/internal/storage"
	"overlap/internal/structures"
	"overlap/internal/twitch"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,

		snapshot.NewGzipCompressor,
		snapshot.NewSnapshotStore,
		storage.NewStorageProvider,

		twitch.NewClient,
		wire.Bind(new(services.ChannelSource), new(*twitch.Client)),
		wire.Bind(new(services.RosterClient), new(*twitch.Client)),

		services.NewAggregator,
		services.NewCollector,
		services.NewMerger,
		services.NewWriter,
		services.NewRunner,
		services.NewScheduler,
		internal.NewApp,
	)

	return nil, nil
}
