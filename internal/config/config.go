package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging         logger.LoggingConfig `yaml:"logging"`
	Sources         []string             `yaml:"sources"`
	Filter          FilterConfig         `yaml:"filter"`
	UseKafka        bool                 `yaml:"use_kafka"`
	Kafka           KafkaConfig          `yaml:"kafka"`
	Mongo           MongoConfig          `yaml:"mongo"`
	BatchSize       int                  `yaml:"batch_size"`
	BatchTimeout    time.Duration        `yaml:"batch_timeout"`
	ScanConcurrency int                  `yaml:"scan_concurrency"`
	MetricsHost     string               `yaml:"metrics_host"`
}

type KafkaConfig struct {
	BootstrapServer string `yaml:"bootstrap_server"`
	RecordsTopic    string `yaml:"records_topic"`
	GroupID         string `yaml:"group_id"`
}

type MongoConfig struct {
	URL        string `yaml:"url"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// FilterConfig is the textual form of entity.FilterParams.
type FilterConfig struct {
	Level      string `yaml:"level"`
	Since      string `yaml:"since"`
	Thread     string `yaml:"thread"`
	Message    string `yaml:"message"`
	Logger     string `yaml:"logger"`
	Expression string `yaml:"expression"`
}

var sinceLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// Params converts the textual filter. Since values without a zone are read
// in local time, matching how record timestamps are stored.
func (f FilterConfig) Params() (*entity.FilterParams, error) {
	level, err := entity.ParseLevel(f.Level)
	if err != nil {
		return nil, err
	}

	params := &entity.FilterParams{
		Level:      level,
		Thread:     f.Thread,
		Message:    f.Message,
		Logger:     f.Logger,
		Expression: f.Expression,
	}

	if since := strings.TrimSpace(f.Since); since != "" {
		date, err := parseSince(since)
		if err != nil {
			return nil, err
		}
		params.Date = &date
	}
	return params, nil
}

func parseSince(s string) (time.Time, error) {
	for _, layout := range sinceLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid since date %q", s)
}

func Default() *Config {
	return &Config{
		Logging: logger.LoggingConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Kafka: KafkaConfig{
			RecordsTopic: "log4j_records",
			GroupID:      "log4j_record_sink",
		},
		Mongo: MongoConfig{
			Collection: "records",
		},
		BatchSize:       500,
		BatchTimeout:    500 * time.Millisecond,
		ScanConcurrency: 4,
		MetricsHost:     "127.0.0.1:8080",
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// yamlPath, the optional env file and finally the process environment.
func Load(envFile, yamlPath string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load the environment variables file: %w", err)
		}
	}

	cfg := Default()
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Path, "LOG_PATH")
	setString(&c.Filter.Level, "LOG4J_FILTER_LEVEL")
	setString(&c.Filter.Since, "LOG4J_FILTER_SINCE")
	setString(&c.Filter.Thread, "LOG4J_FILTER_THREAD")
	setString(&c.Filter.Message, "LOG4J_FILTER_MESSAGE")
	setString(&c.Filter.Logger, "LOG4J_FILTER_LOGGER")
	setString(&c.Filter.Expression, "LOG4J_FILTER_EXPR")
	setString(&c.Kafka.BootstrapServer, "KAFKA_BOOTSTRAP_SERVER")
	setString(&c.Kafka.RecordsTopic, "KAFKA_RECORDS_TOPIC")
	setString(&c.Kafka.GroupID, "KAFKA_GROUP_ID")
	setString(&c.Mongo.URL, "MONGODB_URL")
	setString(&c.Mongo.Database, "MONGODB_DATABASE")
	setString(&c.Mongo.Collection, "MONGODB_COLLECTION")
	setString(&c.MetricsHost, "METRICS_HOST")

	if v := os.Getenv("LOG4J_SOURCES"); v != "" {
		c.Sources = splitList(v)
	}
	if v := os.Getenv("USE_KAFKA"); v != "" {
		c.UseKafka = v == "true"
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BATCH_SIZE %q: %w", v, err)
		}
		c.BatchSize = n
	}
	if v := os.Getenv("BATCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BATCH_TIMEOUT %q: %w", v, err)
		}
		c.BatchTimeout = d
	}
	if v := os.Getenv("SCAN_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCAN_CONCURRENCY %q: %w", v, err)
		}
		c.ScanConcurrency = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.BatchTimeout <= 0 {
		return fmt.Errorf("batch timeout must be positive, got %s", c.BatchTimeout)
	}
	if c.ScanConcurrency <= 0 {
		return fmt.Errorf("scan concurrency must be positive, got %d", c.ScanConcurrency)
	}
	if c.UseKafka && c.Kafka.BootstrapServer == "" {
		return errors.New("KAFKA_BOOTSTRAP_SERVER is required when USE_KAFKA=true")
	}
	if _, err := c.Filter.Params(); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
