package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OTel     OTelConfig     `mapstructure:"otel"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
}

type AuthConfig struct {
	AdminKey      string `mapstructure:"admin_key"`
	SessionSecret string `mapstructure:"session_secret"`
	// SessionStore is "memory" or "redis".
	SessionStore  string `mapstructure:"session_store"`
	SessionTTLHrs int    `mapstructure:"session_ttl_hours"`
}

// NotifyConfig selects the transport used for admin notifications.
// Backend is one of "log", "smtp", "nats", "kafka".
type NotifyConfig struct {
	Backend   string `mapstructure:"backend"`
	Recipient string `mapstructure:"recipient"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type OTelConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("database.path", "data/ave.db")
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("auth.admin_key", "changeme-admin-key")
	v.SetDefault("auth.session_secret", "change-this-secret")
	v.SetDefault("auth.session_store", "memory")
	v.SetDefault("auth.session_ttl_hours", 8)
	v.SetDefault("notify.backend", "log")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	v.SetDefault("nats.subject", "membership.notifications")
	v.SetDefault("kafka.topic", "membership.notifications")
	v.SetDefault("redis.addr", "localhost:6379")
}

// envBindings maps config keys to the flat environment names the site has
// always used.
var envBindings = map[string]string{
	"env":                 "ENV",
	"server.port":         "PORT",
	"server.cors_origins": "CORS_ORIGINS",
	"database.path":       "DATABASE_PATH",
	"auth.admin_key":      "ADMIN_KEY",
	"auth.session_secret": "SESSION_SECRET",
	"auth.session_store":  "SESSION_STORE",
	"notify.backend":      "NOTIFY_BACKEND",
	"notify.recipient":    "NOTIFY_RECIPIENT",
	"smtp.host":           "SMTP_HOST",
	"smtp.port":           "SMTP_PORT",
	"smtp.user":           "SMTP_USER",
	"smtp.password":       "SMTP_PASSWORD",
	"smtp.from":           "SMTP_FROM",
	"nats.url":            "NATS_URL",
	"nats.subject":        "NATS_SUBJECT",
	"kafka.brokers":       "KAFKA_BROKERS",
	"kafka.topic":         "KAFKA_TOPIC",
	"redis.addr":          "REDIS_ADDR",
	"redis.password":      "REDIS_PASSWORD",
	"otel.endpoint":       "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func Load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // container mount
	v.AddConfigPath("./configs")  // repo root
	v.AddConfigPath("../configs") // IDE from cmd/

	// Config file is optional - continue with defaults and ENV variables
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envName := range envBindings {
		if err := v.BindEnv(key, envName); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envName, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Comma separated lists arrive as a single element from the environment.
	config.Server.CORSOrigins = splitList(config.Server.CORSOrigins)
	config.Kafka.Brokers = splitList(config.Kafka.Brokers)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Auth.SessionSecret == "" {
		return errors.New("session secret is required")
	}
	switch c.Auth.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Auth.SessionStore)
	}
	switch c.Notify.Backend {
	case "log", "smtp", "nats", "kafka":
	default:
		return fmt.Errorf("unknown notify backend %q", c.Notify.Backend)
	}
	return nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
