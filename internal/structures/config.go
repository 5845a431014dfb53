package structures

import "time"

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type TwitchConfig struct {
	ClientID    string `yaml:"clientId" validate:"required"`
	Token       string `yaml:"token" validate:"required"`
	HelixURL    string `yaml:"helixUrl"`
	ChattersURL string `yaml:"chattersUrl"`
	MinViewers  int    `yaml:"minViewers" validate:"min:0"`
}

type CollectorConfig struct {
	MinTickChatters     int `yaml:"minTickChatters" validate:"min:0"`
	MinSnapshotChatters int `yaml:"minSnapshotChatters" validate:"min:0"`
	FetchWorkers        int `yaml:"fetchWorkers" validate:"required|min:1"`
}

type AggregatorConfig struct {
	FanOutCeiling int `yaml:"fanOutCeiling" validate:"required|min:2"`
	Workers       int `yaml:"workers"`
}

type SnapshotConfig struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Gateway string `yaml:"gateway"`
	Job     string `yaml:"job"`
}

type DaemonConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	Logger     LoggerConfig     `yaml:"logger"`
	Twitch     TwitchConfig     `yaml:"twitch"`
	Collector  CollectorConfig  `yaml:"collector"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Daemon     DaemonConfig     `yaml:"daemon"`
}
