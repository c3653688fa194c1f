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
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Ingest struct {
		Enabled      bool          `yaml:"enabled"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"ingest"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Binance struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		RestURL        string        `yaml:"rest_url"`
		Symbols        []string      `yaml:"symbols"`
		Interval       string        `yaml:"interval"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"binance"`
	Analytics struct {
		Window              int     `yaml:"window"`
		MinPeriods          int     `yaml:"min_periods"`
		AnnualizationFactor float64 `yaml:"annualization_factor"`
		Regime              struct {
			MinObservations int `yaml:"min_observations"`
		} `yaml:"regime"`
		Tension struct {
			Window     int     `yaml:"window"`
			MinPeriods int     `yaml:"min_periods"`
			Threshold  float64 `yaml:"threshold"`
		} `yaml:"tension"`
		Weights  map[string]float64 `yaml:"weights"`
		CacheTTL struct {
			Oscillator time.Duration `yaml:"oscillator"`
			Regime     time.Duration `yaml:"regime"`
			Dataset    time.Duration `yaml:"dataset"`
		} `yaml:"cache_ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Refresh struct {
			Enabled  bool          `yaml:"enabled"`
			Interval time.Duration `yaml:"interval"`
			Datasets []string      `yaml:"datasets"`
		} `yaml:"refresh"`
	} `yaml:"analytics"`
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

	c.applyDefaults()

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Binance.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Analytics.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Analytics.Window == 0 {
		c.Analytics.Window = 30
	}
	if c.Analytics.MinPeriods == 0 {
		c.Analytics.MinPeriods = 10
	}
	if c.Analytics.AnnualizationFactor == 0 {
		c.Analytics.AnnualizationFactor = 252
	}
	if c.Analytics.Regime.MinObservations == 0 {
		c.Analytics.Regime.MinObservations = 30
	}
	if c.Analytics.Tension.Window == 0 {
		c.Analytics.Tension.Window = 30
	}
	if c.Analytics.Tension.MinPeriods == 0 {
		c.Analytics.Tension.MinPeriods = 10
	}
	if c.Analytics.Tension.Threshold == 0 {
		c.Analytics.Tension.Threshold = 2.0
	}
	if c.Analytics.CacheTTL.Oscillator == 0 {
		c.Analytics.CacheTTL.Oscillator = time.Hour
	}
	if c.Analytics.CacheTTL.Regime == 0 {
		c.Analytics.CacheTTL.Regime = time.Hour
	}
	if c.Analytics.CacheTTL.Dataset == 0 {
		c.Analytics.CacheTTL.Dataset = time.Hour
	}
	if c.Analytics.Refresh.Interval == 0 {
		c.Analytics.Refresh.Interval = 15 * time.Minute
	}
	if c.Binance.Interval == "" {
		c.Binance.Interval = "1d"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Ingest.Enabled {
		if len(c.Binance.Symbols) == 0 {
			return fmt.Errorf("binance.symbols cannot be empty when ingest is enabled")
		}
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when ingest is enabled")
		}
	}
	if c.Analytics.MinPeriods > c.Analytics.Window {
		return fmt.Errorf("analytics.min_periods (%d) cannot exceed analytics.window (%d)", c.Analytics.MinPeriods, c.Analytics.Window)
	}
	for name, w := range c.Analytics.Weights {
		if w < 0 {
			return fmt.Errorf("analytics.weights[%s] must be non-negative, got %v", name, w)
		}
	}
	return nil
}
