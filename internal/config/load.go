package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. TASKAPI_DATABASE_URL for database.url.
const EnvPrefix = "TASKAPI"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, so keys
	// without defaults are bound explicitly.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"mail.sendgrid_api_key",
		"avatar.s3.bucket",
		"avatar.s3.region",
		"avatar.s3.endpoint",
		"avatar.s3.access_key_id",
		"avatar.s3.secret_access_key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Avatar.S3.Enabled = cfg.Avatar.Backend == "s3"

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.token_lifetime_minutes", 0)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("avatar.backend", "database")
	v.SetDefault("avatar.size", 250)
	v.SetDefault("avatar.max_upload_bytes", 1000000)
	v.SetDefault("avatar.max_dimension", 4096)
	v.SetDefault("avatar.s3.region", "us-east-1")

	v.SetDefault("mail.from_address", "no-reply@task-manager.local")
	v.SetDefault("mail.from_name", "Task Manager")
	v.SetDefault("mail.base_url", "https://api.sendgrid.com")

	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.queue_size", 100)
}
