package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	PublicURL    string        `mapstructure:"public_url"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BackendConfig points at the gym REST backend.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig configures the OIDC login and the console session cookie.
type AuthConfig struct {
	Domain        string        `mapstructure:"domain"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	CallbackURL   string        `mapstructure:"callback_url"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	PostLoginPath string        `mapstructure:"post_login_path"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	URL      string        `mapstructure:"url"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	StatsTTL time.Duration `mapstructure:"stats_ttl"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type SchedulerConfig struct {
	StatsRefreshSchedule string `mapstructure:"stats_refresh_schedule"`
	SessionPurgeSchedule string `mapstructure:"session_purge_schedule"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"server.address":                   ":8080",
	"server.public_url":                "http://localhost:8080",
	"server.cookie_secure":             false,
	"server.read_timeout":              "10s",
	"server.write_timeout":             "10s",
	"backend.base_url":                 "http://localhost:3000/api",
	"backend.timeout":                  "15s",
	"auth.domain":                      "",
	"auth.client_id":                   "",
	"auth.client_secret":               "",
	"auth.callback_url":                "http://localhost:8080/auth/callback",
	"auth.session_secret":              "",
	"auth.session_ttl":                 "12h",
	"auth.post_login_path":             "/clientes",
	"database.uri":                     "mongodb://localhost:27017",
	"database.name":                    "gym_console",
	"redis.addr":                       "localhost:6379",
	"redis.url":                        "",
	"redis.password":                   "",
	"redis.db":                         0,
	"redis.stats_ttl":                  "24h",
	"s3.endpoint":                      "",
	"s3.region":                        "us-east-1",
	"s3.access_key_id":                 "",
	"s3.secret_access_key":             "",
	"s3.bucket_name":                   "gym-statements",
	"s3.use_ssl":                       true,
	"scheduler.stats_refresh_schedule": "@every 10m",
	"scheduler.session_purge_schedule": "@hourly",
	"log.level":                        "info",
	"log.format":                       "json",
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// auth.client_id -> AUTH_CLIENT_ID
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// Durations such as "12h" decode straight into time.Duration fields.
	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}

// Validate reports every setting the server cannot start without.
func (c Config) Validate() error {
	var err error
	if c.Backend.BaseURL == "" {
		err = multierr.Append(err, errors.New("backend.base_url is required"))
	}
	if c.Auth.Domain == "" {
		err = multierr.Append(err, errors.New("auth.domain is required"))
	}
	if c.Auth.ClientID == "" {
		err = multierr.Append(err, errors.New("auth.client_id is required"))
	}
	if len(c.Auth.SessionSecret) < 32 {
		err = multierr.Append(err, errors.New("auth.session_secret must be at least 32 characters"))
	}
	if c.Auth.SessionTTL <= 0 {
		err = multierr.Append(err, errors.New("auth.session_ttl must be positive"))
	}
	if c.Database.URI == "" {
		err = multierr.Append(err, errors.New("database.uri is required"))
	}
	return err
}
