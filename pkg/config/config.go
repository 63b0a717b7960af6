package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Storage struct {
		Source    string `yaml:"source"` // local or s3
		LocalPath string `yaml:"local_path"`
		S3        struct {
			Bucket       string        `yaml:"bucket"`
			Region       string        `yaml:"region"`
			Prefix       string        `yaml:"prefix"`
			FetchTimeout time.Duration `yaml:"fetch_timeout"`
			MaxRetries   uint64        `yaml:"max_retries"`
		} `yaml:"s3"`
	} `yaml:"storage"`
	Loader struct {
		AllowInactive bool `yaml:"allow_inactive"`
		BytesCache    struct {
			Type       string        `yaml:"type"` // memory, redis, layered, none
			TTL        time.Duration `yaml:"ttl"`
			MaxEntries int           `yaml:"max_entries"`
			Redis      struct {
				Host     string `yaml:"host"`
				Port     int    `yaml:"port"`
				Password string `yaml:"password"`
				DB       int    `yaml:"db"`
				Prefix   string `yaml:"prefix"`
			} `yaml:"redis"`
		} `yaml:"bytes_cache"`
	} `yaml:"loader"`
	Costs struct {
		Enabled        bool          `yaml:"enabled"`
		Region         string        `yaml:"region"`
		ProjectTag     string        `yaml:"project_tag"`
		WarningUSD     float64       `yaml:"warning_usd"`
		CriticalUSD    float64       `yaml:"critical_usd"`
		PollInterval   time.Duration `yaml:"poll_interval"`
		StreamInterval time.Duration `yaml:"stream_interval"`
	} `yaml:"costs"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		AlertTopic   string        `yaml:"alert_topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MODEL_SOURCE"); v != "" {
		c.Storage.Source = v
	}
	if v := os.Getenv("MODEL_BUCKET"); v != "" {
		c.Storage.S3.Bucket = v
	}
	if v := os.Getenv("MODEL_BASE_PATH"); v != "" {
		c.Storage.LocalPath = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Storage.S3.Region = v
		c.Costs.Region = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Storage.Source != "local" && c.Storage.Source != "s3" {
		return fmt.Errorf("storage.source must be 'local' or 's3', got %q", c.Storage.Source)
	}
	if c.Storage.Source == "local" && c.Storage.LocalPath == "" {
		return fmt.Errorf("storage.local_path is required for local source")
	}
	if c.Storage.Source == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required for s3 source")
	}
	switch c.Loader.BytesCache.Type {
	case "", "none", "memory", "redis", "layered":
	default:
		return fmt.Errorf("loader.bytes_cache.type must be one of none, memory, redis, layered")
	}
	if c.Costs.Enabled && c.Costs.CriticalUSD > 0 && c.Costs.WarningUSD > c.Costs.CriticalUSD {
		return fmt.Errorf("costs.warning_usd must not exceed costs.critical_usd")
	}
	return nil
}
