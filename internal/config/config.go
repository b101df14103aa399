package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	Log     LogConfig
	DB      DBConfig
	Admin   AdminConfig
	Mail    MailConfig
	Storage StorageConfig
	Limits  LimitConfig
}

type ServerConfig struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	AssetsDir   string   `env:"ASSETS_DIR" envDefault:"./assets"`
	UploadsDir  string   `env:"UPLOADS_DIR" envDefault:"./uploads"`
	ResumePath  string   `env:"RESUME_PATH" envDefault:"./assets/resume.pdf"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

type AppConfig struct {
	Environment  string `env:"APP_ENV" envDefault:"development"`
	Version      string `env:"APP_VERSION" envDefault:"1.0.0"`
	OwnerName    string `env:"OWNER_NAME" envDefault:"Rusith Fernando"`
	DefaultTheme string `env:"DEFAULT_THEME" envDefault:"dark"`
	CatalogPath  string `env:"CATALOG_PATH"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// DBConfig covers the sqlite file and visitor tracking. An empty VisitorSalt
// means a random salt per process, so visitor hashes change on restart.
type DBConfig struct {
	Path            string        `env:"DB_PATH" envDefault:"portfolio.db"`
	TrackingEnabled bool          `env:"TRACKING_ENABLED" envDefault:"true"`
	Retention       time.Duration `env:"VISITOR_RETENTION" envDefault:"8760h"`
	CleanupSchedule string        `env:"CLEANUP_SCHEDULE" envDefault:"@daily"`
	VisitorSalt     string        `env:"VISITOR_SALT"`
}

type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

// MailConfig selects and configures the contact form mailer. An empty
// Provider picks emailjs, then smtp, then demo depending on what is set.
type MailConfig struct {
	Provider        string `env:"MAIL_PROVIDER"`
	EmailJSService  string `env:"EMAILJS_SERVICE_ID"`
	EmailJSTemplate string `env:"EMAILJS_TEMPLATE_ID"`
	EmailJSUser     string `env:"EMAILJS_USER_ID"`
	EmailJSToken    string `env:"EMAILJS_ACCESS_TOKEN"`
	EmailJSEndpoint string `env:"EMAILJS_ENDPOINT" envDefault:"https://api.emailjs.com/api/v1.0/email/send"`
	SMTPHost        string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort        string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPass        string `env:"SMTP_PASS"`
	ToEmail         string `env:"TO_EMAIL"`
}

type StorageConfig struct {
	Backend         string `env:"STORAGE_BACKEND" envDefault:"local"`
	CredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	Bucket          string `env:"FIREBASE_STORAGE_BUCKET"`
}

type LimitConfig struct {
	RedisURL      string `env:"REDIS_URL"`
	ContactPerMin int    `env:"CONTACT_RATE_LIMIT" envDefault:"5"`
	ContactBurst  int    `env:"CONTACT_RATE_BURST" envDefault:"3"`
}

// Load parses the process environment. Callers that want .env support load
// it before calling Load.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.DB.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}

	switch c.Mail.Provider {
	case "", "emailjs", "smtp", "demo":
	default:
		return fmt.Errorf("MAIL_PROVIDER %q is not one of emailjs, smtp, demo", c.Mail.Provider)
	}

	switch c.Storage.Backend {
	case "local":
	case "firebase":
		if c.Storage.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firebase storage backend")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("FIREBASE_STORAGE_BUCKET is required for the firebase storage backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND %q is not one of local, firebase", c.Storage.Backend)
	}

	switch c.App.DefaultTheme {
	case "dark", "light":
	default:
		return fmt.Errorf("DEFAULT_THEME must be dark or light, got %q", c.App.DefaultTheme)
	}

	if c.Limits.ContactPerMin < 0 || c.Limits.ContactBurst < 0 {
		return fmt.Errorf("contact rate limits must not be negative")
	}

	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}
