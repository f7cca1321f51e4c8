package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Storage  StorageConfig  `mapstructure:"storage"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	ExpiryHours int    `mapstructure:"expiry_hours" envconfig:"JWT_EXPIRY_HOURS"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url" envconfig:"REDIS_URL"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" envconfig:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" envconfig:"LOG_PRETTY"`
}

type OutboxConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxRetries   int           `mapstructure:"max_retries"`
	Channel      string        `mapstructure:"channel"`
}

type ReminderConfig struct {
	Interval time.Duration `mapstructure:"interval" envconfig:"REMINDER_INTERVAL"`
}

type StorageConfig struct {
	BasePath string `mapstructure:"base_path" envconfig:"STORAGE_BASE_PATH"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

type AuditConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// LoadConfig reads config.yaml and then applies CLINIC_* environment
// overrides on top, so deployments can override any secret without
// touching the file.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("clinic", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.ExpiryHours == 0 {
		c.JWT.ExpiryHours = 24
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Outbox.BatchSize == 0 {
		c.Outbox.BatchSize = 100
	}
	if c.Outbox.PollInterval == 0 {
		c.Outbox.PollInterval = 5 * time.Second
	}
	if c.Outbox.MaxRetries == 0 {
		c.Outbox.MaxRetries = 3
	}
	if c.Outbox.Channel == "" {
		c.Outbox.Channel = "clinic.events"
	}
	if c.Reminder.Interval == 0 {
		c.Reminder.Interval = time.Hour
	}
	if c.Storage.BasePath == "" {
		c.Storage.BasePath = "./data/storage"
	}
	if c.Audit.RetentionDays == 0 {
		c.Audit.RetentionDays = 365
	}
}
