package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Avatar   AvatarConfig   `mapstructure:"avatar"   validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes of zero issues tokens without an expiry claim.
	// Sessions then end only through logout.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
	BcryptCost           int `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// AvatarConfig controls how profile pictures are accepted and stored.
type AvatarConfig struct {
	// Backend selects where processed avatars are kept: "database" stores the
	// bytes on the user row, "s3" writes one object per user.
	Backend        string `mapstructure:"backend"          validate:"required,oneof=database s3"`
	Size           int    `mapstructure:"size"             validate:"gt=0,lte=2048"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"gt=0"`
	// MaxDimension caps the width and height of an upload in pixels.
	MaxDimension int            `mapstructure:"max_dimension" validate:"gt=0,lte=16384"`
	S3           AvatarS3Config `mapstructure:"s3"`
}

// AvatarS3Config holds the S3-compatible bucket settings used when
// AvatarConfig.Backend is "s3".
type AvatarS3Config struct {
	Bucket          string `mapstructure:"bucket"            validate:"required_if=Enabled true"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"          validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Enabled         bool   `mapstructure:"-"`
}

// MailConfig contains the transactional e-mail provider settings.
// An empty SendGridAPIKey switches the service to a logging mailer.
type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromAddress    string `mapstructure:"from_address"     validate:"omitempty,email"`
	FromName       string `mapstructure:"from_name"`
	BaseURL        string `mapstructure:"base_url"         validate:"omitempty,url"`
}

// WorkerConfig sizes the background job pool used for notifications.
type WorkerConfig struct {
	Count     int `mapstructure:"count"      validate:"gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"gt=0"`
}
