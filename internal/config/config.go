// internal/config/config.go
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the document analytics services.
// The mapstructure tags are used by Viper to unmarshal the data.
type Config struct {
	EtcdEndpoints       []string      `mapstructure:"etcd_endpoints"`
	EtcdTimeout         time.Duration `mapstructure:"etcd_timeout"`
	KafkaBrokers        []string      `mapstructure:"kafka_brokers"`
	BroadcastTopic      string        `mapstructure:"broadcast_topic"`
	HttpListenAddr      string        `mapstructure:"http_listen_addr"`
	AdvertiseURL        string        `mapstructure:"advertise_url"`
	ProcessTimeout      time.Duration `mapstructure:"process_timeout"`
	WorkerTTL           time.Duration `mapstructure:"worker_ttl"`
	DistributeCron      string        `mapstructure:"distribute_cron"`
	DocumentFallbackDir string        `mapstructure:"document_fallback_dir"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("etcd_timeout", "5s")
	viper.SetDefault("broadcast_topic", "doc-topics")
	viper.SetDefault("http_listen_addr", ":8080")
	// Document processing can be slow; keep the per-item timeout generous.
	viper.SetDefault("process_timeout", "30s")
	viper.SetDefault("worker_ttl", "10s")
	viper.SetDefault("document_fallback_dir", "/documents")

	// Set config file details
	viper.SetConfigName("config")    // name of config file (without extension)
	viper.SetConfigType("yaml")      // or "json", "toml"
	viper.AddConfigPath("./configs") // path to look for the config file in
	viper.AddConfigPath(".")         // optionally look for config in the working directory

	// Read environment variables
	viper.AutomaticEnv()

	// Read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; rely on defaults and env vars
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
