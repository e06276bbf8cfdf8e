package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string           `mapstructure:"env"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"`
	Checks     ChecksConfig     `mapstructure:"checks"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Salesforce SalesforceConfig `mapstructure:"salesforce"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Sessions   SessionsConfig   `mapstructure:"sessions"`
}

type ArtifactsConfig struct {
	// пусто = ~/Downloads
	Root           string `mapstructure:"root"`
	Retention      string `mapstructure:"retention"`
	PollIntervalMS int    `mapstructure:"poll_interval_ms"`
	WaitTimeout    int    `mapstructure:"wait_timeout"`
}

type FetcherConfig struct {
	MaxWorkers int `mapstructure:"max_workers"`
	Timeout    int `mapstructure:"timeout"`
}

type ChecksConfig struct {
	Timeout        int `mapstructure:"timeout"`
	ElementTimeout int `mapstructure:"element_timeout"`
}

type BrowserConfig struct {
	ChromePath     string `mapstructure:"chrome_path"`
	RemoteURL      string `mapstructure:"remote_url"`
	Headless       bool   `mapstructure:"headless"`
	StartupTimeout int    `mapstructure:"startup_timeout"`
}

type SalesforceConfig struct {
	Domain         string `mapstructure:"domain"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	SecurityToken  string `mapstructure:"security_token"`
	ConsumerKey    string `mapstructure:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret"`
}

type KafkaConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Brokers []string    `mapstructure:"brokers"`
	Topics  KafkaTopics `mapstructure:"topics"`
}

type KafkaTopics struct {
	Events  string `mapstructure:"events"`
	Reports string `mapstructure:"reports"`
}

type SessionsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads defaults, then config/local.yaml (or the given file), then the
// environment. SALESFORCE_PASSWORD overrides salesforce.password and so on.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("local")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	// Artifacts defaults
	v.SetDefault("artifacts.root", "")
	v.SetDefault("artifacts.retention", "overwrite")
	v.SetDefault("artifacts.poll_interval_ms", 250)
	v.SetDefault("artifacts.wait_timeout", 30)

	// Fetcher defaults
	v.SetDefault("fetcher.max_workers", 25)
	v.SetDefault("fetcher.timeout", 60)

	// Checks defaults
	v.SetDefault("checks.timeout", 180)
	v.SetDefault("checks.element_timeout", 20)

	// Browser defaults
	// пусто = спросить, затем искать Chrome в PATH
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.startup_timeout", 15)

	// Salesforce defaults
	v.SetDefault("salesforce.domain", "login")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.password", "")
	v.SetDefault("salesforce.security_token", "")
	v.SetDefault("salesforce.consumer_key", "")
	v.SetDefault("salesforce.consumer_secret", "")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topics.events", "vendor-check-events")
	v.SetDefault("kafka.topics.reports", "vendor-check-reports")

	v.SetDefault("sessions.dir", ".vendorcheck/sessions")
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case "local", "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("env must be local, dev or prod, got %q", c.Env))
	}
	switch c.Artifacts.Retention {
	case "overwrite", "archive":
	default:
		errs = append(errs, fmt.Errorf("artifacts.retention must be overwrite or archive, got %q", c.Artifacts.Retention))
	}
	if c.Fetcher.MaxWorkers <= 0 {
		errs = append(errs, fmt.Errorf("fetcher.max_workers must be positive, got %d", c.Fetcher.MaxWorkers))
	}
	if c.Checks.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("checks.timeout must be positive, got %d", c.Checks.Timeout))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}

	return errors.Join(errs...)
}

func (c *Config) GetCheckTimeout() time.Duration {
	return time.Duration(c.Checks.Timeout) * time.Second
}

func (c *Config) GetElementTimeout() time.Duration {
	return time.Duration(c.Checks.ElementTimeout) * time.Second
}

func (c *Config) GetFetchTimeout() time.Duration {
	return time.Duration(c.Fetcher.Timeout) * time.Second
}

func (c *Config) GetWaitTimeout() time.Duration {
	return time.Duration(c.Artifacts.WaitTimeout) * time.Second
}

func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Artifacts.PollIntervalMS) * time.Millisecond
}

func (c *Config) GetBrowserStartupTimeout() time.Duration {
	return time.Duration(c.Browser.StartupTimeout) * time.Second
}
