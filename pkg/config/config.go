package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type" default:"clickhouse"`
		BatchSize    int           `yaml:"batch_size" default:"500"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"2s"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		BatchesTopic string   `yaml:"batches_topic" default:"scraper.batches"`
		AlertsTopic  string   `yaml:"alerts_topic" default:"sentry.alerts"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"5s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"coinsentry"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"coinsentry"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Binance struct {
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://stream.binance.com:9443/ws"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"3s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"binance"`
	Engine struct {
		Quality struct {
			NullWeight      float64 `yaml:"null_weight" default:"0.4"`
			DuplicateWeight float64 `yaml:"duplicate_weight" default:"0.3"`
			OutlierWeight   float64 `yaml:"outlier_weight" default:"0.3"`
			IQRMultiplier   float64 `yaml:"iqr_multiplier" default:"1.5"`
		} `yaml:"quality"`
		BotDetection struct {
			Enabled   bool    `yaml:"enabled" default:"true"`
			Threshold float64 `yaml:"threshold" default:"50"`
		} `yaml:"bot_detection"`
		Volume struct {
			SpikeWindow       int     `yaml:"spike_window" default:"24"`
			SpikeMultiplier   float64 `yaml:"spike_multiplier" default:"2"`
			AnomalyZThreshold float64 `yaml:"anomaly_z_threshold" default:"3"`
			IQRMultiplier     float64 `yaml:"iqr_multiplier" default:"1.5"`
			WashWindow        int     `yaml:"wash_window" default:"20"`
			WashCVThreshold   float64 `yaml:"wash_cv_threshold" default:"0.05"`
			WashCorrThreshold float64 `yaml:"wash_corr_threshold" default:"0.1"`
			RetainPoints      int     `yaml:"retain_points" default:"2160"`
			SeedPoints        int     `yaml:"seed_points" default:"720"`
		} `yaml:"volume"`
		Scan struct {
			Enabled  bool          `yaml:"enabled"`
			Interval time.Duration `yaml:"interval" default:"1h"`
			Webhook  string        `yaml:"webhook"`
		} `yaml:"scan"`
	} `yaml:"engine"`
	Analytics struct {
		CacheTTL struct {
			Spike       time.Duration `yaml:"spike" default:"30s"`
			Anomaly     time.Duration `yaml:"anomaly" default:"2m"`
			Correlation time.Duration `yaml:"correlation" default:"2m"`
			Wash        time.Duration `yaml:"wash" default:"5m"`
			Trend       time.Duration `yaml:"trend" default:"2m"`
		} `yaml:"cache_ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"analytics"`
}

// Load reads and parses a YAML configuration file. Defaults apply before the
// file so the YAML only has to name what differs.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

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
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BATCHES_TOPIC"); v != "" {
		c.Kafka.BatchesTopic = v
	}
	if v := os.Getenv("KAFKA_ALERTS_TOPIC"); v != "" {
		c.Kafka.AlertsTopic = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty")
	}
	w := c.Engine.Quality
	if w.NullWeight < 0 || w.DuplicateWeight < 0 || w.OutlierWeight < 0 {
		return fmt.Errorf("engine.quality weights must be non-negative")
	}
	if sum := w.NullWeight + w.DuplicateWeight + w.OutlierWeight; sum <= 0 {
		return fmt.Errorf("engine.quality weights must not all be zero")
	}
	if c.Engine.BotDetection.Threshold < 0 || c.Engine.BotDetection.Threshold > 100 {
		return fmt.Errorf("engine.bot_detection.threshold must be within [0,100]")
	}
	return nil
}
