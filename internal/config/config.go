// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the full runtime configuration of the limit service.
type Config struct {
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Queue    QueueConfig
	FX       FXConfig
	Journal  JournalConfig
}

// ServerConfig configures the HTTP configuration API.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the order feed and event topics.
type KafkaConfig struct {
	Brokers      []string
	GroupID      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisConfig configures the optional FX rate snapshot cache.
type RedisConfig struct {
	Addr string
}

// QueueConfig configures the sequential order processor.
type QueueConfig struct {
	Capacity int
}

// FXConfig configures the periodic rate refresh.
type FXConfig struct {
	RefreshInterval time.Duration
}

// JournalConfig configures invalid-message journaling.
type JournalConfig struct {
	Dir string
}

// LoadConfig reads configuration from .env and the environment, applying
// defaults for anything unset.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("DB_DSN", "host=localhost user=limits password=limits dbname=limits port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA_GROUP_ID", "limit-service")
	v.SetDefault("KAFKA_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("KAFKA_WRITE_TIMEOUT", time.Second)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("QUEUE_CAPACITY", 4096)
	v.SetDefault("FX_REFRESH_INTERVAL", 5*time.Minute)
	v.SetDefault("JOURNAL_DIR", "invalid_messages")

	// A missing .env file is fine; the environment still applies.
	_ = v.ReadInConfig()

	cfg := &Config{
		LogLevel: v.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Addr: v.GetString("SERVER_ADDR"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Kafka: KafkaConfig{
			Brokers:      v.GetStringSlice("KAFKA_BROKERS"),
			GroupID:      v.GetString("KAFKA_GROUP_ID"),
			ReadTimeout:  v.GetDuration("KAFKA_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("KAFKA_WRITE_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("REDIS_ADDR"),
		},
		Queue: QueueConfig{
			Capacity: v.GetInt("QUEUE_CAPACITY"),
		},
		FX: FXConfig{
			RefreshInterval: v.GetDuration("FX_REFRESH_INTERVAL"),
		},
		Journal: JournalConfig{
			Dir: v.GetString("JOURNAL_DIR"),
		},
	}

	return cfg, nil
}
