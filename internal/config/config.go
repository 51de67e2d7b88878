package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Queue drivers.
const (
	QueueDriverRedis    = "redis"
	QueueDriverRabbitMQ = "rabbitmq"
)

// Config holds the recall service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConfig     `yaml:"redis"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Queue     QueueConfig     `yaml:"queue"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Content   ContentConfig   `yaml:"content"`
	Validator ValidatorConfig `yaml:"validator"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RedisConfig holds the connection to Redis (registry, job state, embedding cache).
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// QdrantConfig holds the vector database connection.
type QdrantConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"` // gRPC
	APIKey           string `yaml:"api_key"`
	UseTLS           bool   `yaml:"use_tls"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the embedding server and default models.
type EmbeddingConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	DefaultTextModel  string `yaml:"default_text_model"`
	DefaultImageModel string `yaml:"default_image_model"`
	CacheTTLSec       int    `yaml:"cache_ttl_sec"` // 0 disables the embedding cache
}

// QueueConfig holds job queue and worker settings.
type QueueConfig struct {
	Driver        string `yaml:"driver"` // redis, rabbitmq (default: redis)
	MaxJobs       int    `yaml:"max_jobs"`
	JobTimeoutSec int    `yaml:"job_timeout_sec"`
	KeepResultSec int    `yaml:"keep_result_sec"`
	PollTimeoutMS int    `yaml:"poll_timeout_ms"`
}

// RabbitMQConfig holds broker settings for the rabbitmq queue driver.
type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Queue    string `yaml:"queue"`
	Prefetch int    `yaml:"prefetch"`
}

// ContentConfig holds settings for fetching content by URI.
type ContentConfig struct {
	TimeoutSec int      `yaml:"timeout_sec"`
	MaxBytes   int64    `yaml:"max_bytes"`
	S3         S3Config `yaml:"s3"`
}

// S3Config holds object storage credentials for s3:// URIs.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ValidatorConfig holds payload validator settings.
type ValidatorConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// JobTimeout returns the per-job timeout.
func (q QueueConfig) JobTimeout() time.Duration {
	return time.Duration(q.JobTimeoutSec) * time.Second
}

// KeepResult returns how long finished job state is retained.
func (q QueueConfig) KeepResult() time.Duration {
	return time.Duration(q.KeepResultSec) * time.Second
}

// PollTimeout returns how long a worker blocks waiting for a job.
func (q QueueConfig) PollTimeout() time.Duration {
	return time.Duration(q.PollTimeoutMS) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Redis.Addrs) == 0 {
		c.Redis.Addrs = []string{"localhost:6379"}
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Qdrant.Host == "" {
		c.Qdrant.Host = "localhost"
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
	if c.Qdrant.ReadinessTimeout <= 0 {
		c.Qdrant.ReadinessTimeout = 10
	}
	if c.Embedding.DefaultTextModel == "" {
		c.Embedding.DefaultTextModel = "all-MiniLM-L6-v2"
	}
	if c.Embedding.DefaultImageModel == "" {
		c.Embedding.DefaultImageModel = "clip-ViT-B-32"
	}
	if c.Queue.Driver == "" {
		c.Queue.Driver = QueueDriverRedis
	}
	if c.Queue.MaxJobs <= 0 {
		c.Queue.MaxJobs = 10
	}
	if c.Queue.JobTimeoutSec <= 0 {
		c.Queue.JobTimeoutSec = 300
	}
	if c.Queue.KeepResultSec <= 0 {
		c.Queue.KeepResultSec = 3600
	}
	if c.Queue.PollTimeoutMS <= 0 {
		c.Queue.PollTimeoutMS = 500
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "recall.jobs"
	}
	if c.RabbitMQ.Prefetch <= 0 {
		c.RabbitMQ.Prefetch = c.Queue.MaxJobs
	}
	if c.Content.TimeoutSec <= 0 {
		c.Content.TimeoutSec = 30
	}
	if c.Content.MaxBytes <= 0 {
		c.Content.MaxBytes = 20 << 20
	}
	if c.Validator.CacheSize <= 0 {
		c.Validator.CacheSize = 128
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "recall:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("qdrant.port must be between 1 and 65535, got %d", c.Qdrant.Port)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	switch c.Queue.Driver {
	case QueueDriverRedis:
	case QueueDriverRabbitMQ:
		if c.RabbitMQ.URL == "" {
			return fmt.Errorf("rabbitmq.url is required when queue.driver is %q", QueueDriverRabbitMQ)
		}
	default:
		return fmt.Errorf("queue.driver must be %q or %q, got %q",
			QueueDriverRedis, QueueDriverRabbitMQ, c.Queue.Driver)
	}
	if c.Embedding.CacheTTLSec < 0 {
		return fmt.Errorf("embedding.cache_ttl_sec must not be negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
