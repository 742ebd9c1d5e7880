package engine

import (
	"time"
)

type Config struct {
	Server ServerConfig
	Log    LogConfig
	Engine EngineConfig
	Store  StoreConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type EngineConfig struct {
	ThrottleWindow time.Duration
	QueueSize      int
}

type StoreConfig struct {
	MaxTracks              int
	BloomFalsePositiveRate float64
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			ThrottleWindow: DefaultThrottleWindow,
			QueueSize:      64,
		},
		Store: StoreConfig{
			MaxTracks:              10000,
			BloomFalsePositiveRate: 0.001,
		},
	}
}
