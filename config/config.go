package config

import (
	"errors"
	"log/slog"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	Bun        BunConfig
	Redis      RedisConfig
	Feed       FeedConfig
	Blob       BlobConfig
	JWT        JWT
	Chat       ChatConfig
	LoggerMode LoggerMode
}

type Server struct {
	Port           string
	Environment    string
	AllowedOrigins []string
}

type BunConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Profile cache TTL in seconds. Zero disables the cache.
	ProfileTTL int
}

type FeedConfig struct {
	// "postgres" uses LISTEN/NOTIFY on the message channel,
	// "websocket" dials a managed realtime endpoint.
	Driver  string
	WSURL   string
	Channel string
}

type BlobConfig struct {
	Dir       string
	PublicURL string
}

type ChatConfig struct {
	// Max messages retained per open conversation view.
	RetentionBound int
}

type LoggerMode struct {
	Development bool
	Prod        bool
	Level       string
}

type JWT struct {
	Secret    string
	ExpiredIn int
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}
	if c.Chat.RetentionBound <= 0 {
		c.Chat.RetentionBound = 200
	}
	if c.Feed.Channel == "" {
		c.Feed.Channel = "message_created"
	}
	return &c, nil
}
