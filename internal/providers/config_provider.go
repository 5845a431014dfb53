package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"overlap/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "OVERLAP_LOG_LEVEL")
	viper.BindEnv("twitch.clientId", "TWITCH_CLIENT")
	viper.BindEnv("twitch.token", "TWITCH_TOKEN")
	viper.BindEnv("database.path", "OVERLAP_DB_PATH")
	viper.BindEnv("snapshot.dir", "OVERLAP_SNAPSHOT_DIR")
	viper.BindEnv("metrics.gateway", "OVERLAP_PUSHGATEWAY")

	viper.SetDefault("twitch.helixUrl", "https://api.twitch.tv/helix")
	viper.SetDefault("twitch.chattersUrl", "https://tmi.twitch.tv/group/user")
	viper.SetDefault("twitch.minViewers", 1000)
	viper.SetDefault("collector.minTickChatters", 500)
	viper.SetDefault("collector.minSnapshotChatters", 1000)
	viper.SetDefault("collector.fetchWorkers", 64)
	viper.SetDefault("aggregator.fanOutCeiling", 10)
	viper.SetDefault("metrics.job", "overlap")
	viper.SetDefault("daemon.interval", "30m")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "ChatOverlapAggregator"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	if flags.Once {
		conf.Daemon.Enabled = false
	}

	return &conf, nil
}
