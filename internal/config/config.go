// Package config loads application configuration from a YAML file with
// environment variable overrides. A .env file is honored when present.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/newsscraper/internal/archive"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/queue"
	"github.com/jonesrussell/newsscraper/internal/scraper"
	"github.com/jonesrussell/newsscraper/internal/storage"
)

// envPrefix namespaces environment overrides, e.g. NEWSSCRAPER_SERVER_ADDRESS.
const envPrefix = "NEWSSCRAPER"

// Server defaults.
const (
	defaultServerAddress      = ":8080"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
)

// Worker defaults.
const (
	defaultWorkerJobTimeout = 30 * time.Minute
	defaultScheduleSpec     = "0 */6 * * *"
	defaultScheduleMaxPages = 5
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// WorkerConfig holds scrape worker settings.
type WorkerConfig struct {
	ConsumerGroup string        `yaml:"consumer_group"`
	ConsumerID    string        `yaml:"consumer_id"`
	JobTimeout    time.Duration `yaml:"job_timeout"`
}

// ScheduleConfig holds the recurring scrape schedule.
type ScheduleConfig struct {
	// Spec is a cron expression.
	Spec string `yaml:"spec"`
	// Categories are the category slugs scraped on each tick. Empty means
	// all supported categories.
	Categories []string `yaml:"categories"`
	MaxPages   int      `yaml:"max_pages"`
}

// Config is the root application configuration.
type Config struct {
	Logger        logger.Config
	Server        ServerConfig
	Scraper       *scraper.Config
	Elasticsearch *storage.Config
	MinIO         *archive.Config
	Database      *ledger.Config
	Redis         queue.StreamsConfig
	Worker        WorkerConfig
	Schedule      ScheduleConfig
}

// Load reads configuration from the given YAML file. An empty path falls
// back to ./config.yml when it exists. Environment variables with the
// NEWSSCRAPER_ prefix override file values.
func Load(path string) (*Config, error) {
	// best effort, absence of .env is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Scraper.BaseURL == "" {
		return errors.New("scraper: base_url is required")
	}
	if c.Scraper.PageSize < 1 {
		return errors.New("scraper: page_size must be at least 1")
	}
	if len(c.Elasticsearch.Addresses) == 0 {
		return errors.New("elasticsearch: at least one address is required")
	}
	if c.Elasticsearch.IndexName == "" {
		return errors.New("elasticsearch: index_name is required")
	}
	if c.MinIO.Bucket == "" {
		return errors.New("minio: bucket is required")
	}
	if c.Schedule.MaxPages < 1 {
		return errors.New("schedule: max_pages must be at least 1")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.development", false)

	v.SetDefault("server.address", defaultServerAddress)
	v.SetDefault("server.read_timeout", defaultServerReadTimeout)
	v.SetDefault("server.write_timeout", defaultServerWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultServerIdleTimeout)

	scraperDefaults := scraper.NewConfig()
	v.SetDefault("scraper.base_url", scraperDefaults.BaseURL)
	v.SetDefault("scraper.page_size", scraperDefaults.PageSize)
	v.SetDefault("scraper.request_timeout", scraperDefaults.RequestTimeout)
	v.SetDefault("scraper.pacing_delay", scraperDefaults.PacingDelay)
	v.SetDefault("scraper.user_agent", scraperDefaults.UserAgent)

	esDefaults := storage.NewConfig()
	v.SetDefault("elasticsearch.addresses", esDefaults.Addresses)
	v.SetDefault("elasticsearch.index_name", esDefaults.IndexName)
	v.SetDefault("elasticsearch.insecure_skip_verify", false)

	minioDefaults := archive.NewConfig()
	v.SetDefault("minio.endpoint", minioDefaults.Endpoint)
	v.SetDefault("minio.access_key", minioDefaults.AccessKey)
	v.SetDefault("minio.secret_key", minioDefaults.SecretKey)
	v.SetDefault("minio.use_ssl", minioDefaults.UseSSL)
	v.SetDefault("minio.bucket", minioDefaults.Bucket)

	dbDefaults := ledger.NewConfig()
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "newsscraper")

	v.SetDefault("worker.consumer_group", "scrapers")
	v.SetDefault("worker.job_timeout", defaultWorkerJobTimeout)

	v.SetDefault("schedule.spec", defaultScheduleSpec)
	v.SetDefault("schedule.max_pages", defaultScheduleMaxPages)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Logger: logger.Config{
			Level:       v.GetString("logger.level"),
			Encoding:    v.GetString("logger.encoding"),
			Development: v.GetBool("logger.development"),
		},
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		Scraper: &scraper.Config{
			BaseURL:        v.GetString("scraper.base_url"),
			PageSize:       v.GetInt("scraper.page_size"),
			RequestTimeout: v.GetDuration("scraper.request_timeout"),
			PacingDelay:    v.GetDuration("scraper.pacing_delay"),
			UserAgent:      v.GetString("scraper.user_agent"),
		},
		Elasticsearch: &storage.Config{
			Addresses:          v.GetStringSlice("elasticsearch.addresses"),
			Username:           v.GetString("elasticsearch.username"),
			Password:           v.GetString("elasticsearch.password"),
			APIKey:             v.GetString("elasticsearch.api_key"),
			IndexName:          v.GetString("elasticsearch.index_name"),
			InsecureSkipVerify: v.GetBool("elasticsearch.insecure_skip_verify"),
		},
		MinIO: &archive.Config{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.access_key"),
			SecretKey: v.GetString("minio.secret_key"),
			UseSSL:    v.GetBool("minio.use_ssl"),
			Bucket:    v.GetString("minio.bucket"),
		},
		Database: &ledger.Config{
			Host:     v.GetString("database.host"),
			Port:     v.GetString("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Redis: queue.StreamsConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		Worker: WorkerConfig{
			ConsumerGroup: v.GetString("worker.consumer_group"),
			ConsumerID:    v.GetString("worker.consumer_id"),
			JobTimeout:    v.GetDuration("worker.job_timeout"),
		},
		Schedule: ScheduleConfig{
			Spec:       v.GetString("schedule.spec"),
			Categories: v.GetStringSlice("schedule.categories"),
			MaxPages:   v.GetInt("schedule.max_pages"),
		},
	}
}
