package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"agrocommunity_backend/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		Env             string        `yaml:"env"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, memory
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	Auth struct {
		ActivationSecret string        `yaml:"activation_secret"`
		AccessSecret     string        `yaml:"access_secret"`
		RefreshSecret    string        `yaml:"refresh_secret"`
		ActivationTTL    time.Duration `yaml:"activation_ttl"`
		AccessTTL        time.Duration `yaml:"access_ttl"`
		RefreshTTL       time.Duration `yaml:"refresh_ttl"`
		SecureCookies    bool          `yaml:"secure_cookies"`
		CookieDomain     string        `yaml:"cookie_domain"`
	} `yaml:"auth"`

	Email struct {
		Driver       string `yaml:"driver"` // smtp, log
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Storage struct {
		Type      string `yaml:"type"`      // local, s3
		BasePath  string `yaml:"base_path"` // local
		BaseURL   string `yaml:"base_url"`
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Endpoint  string `yaml:"endpoint"` // R2 or any S3-compatible endpoint
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64 `yaml:"max_size"`
		ImageQuality int   `yaml:"image_quality"`
		ImageMaxSide int   `yaml:"image_max_side"`
	} `yaml:"upload"`

	Realtime struct {
		SendBuffer int           `yaml:"send_buffer"`
		PingPeriod time.Duration `yaml:"ping_period"`
	} `yaml:"realtime"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Username string `yaml:"username"`
	} `yaml:"admin"`
}

// Default returns a configuration that runs without external services:
// in-memory storage, logged mail and local files.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.Env = "development"
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Database.Driver = "memory"

	cfg.Auth.ActivationTTL = 5 * time.Minute
	cfg.Auth.AccessTTL = 15 * time.Minute
	cfg.Auth.RefreshTTL = 7 * 24 * time.Hour

	cfg.Email.Driver = "log"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromName = "AgroCommunity"

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/files"

	cfg.Upload.MaxSize = 10 * 1024 * 1024
	cfg.Upload.ImageQuality = 80
	cfg.Upload.ImageMaxSide = 800

	cfg.Realtime.SendBuffer = 64
	cfg.Realtime.PingPeriod = 30 * time.Second

	cfg.Admin.Username = "admin"

	return &cfg
}

// LoadConfig reads .env (if present), then the YAML file at CONFIG_PATH
// (default config/config.yaml, optional), then applies environment overrides.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("Config file not found, using defaults and environment", "path", path)
			return nil
		}
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Env, "SERVER_ENV")
	setInt(&c.Server.Port, "PORT")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	if os.Getenv("DATABASE_URL") != "" && os.Getenv("DATABASE_DRIVER") == "" {
		c.Database.Driver = "postgres"
	}

	setString(&c.Auth.ActivationSecret, "ACTIVATION_SECRET")
	setString(&c.Auth.AccessSecret, "ACCESS_TOKEN")
	setString(&c.Auth.RefreshSecret, "REFRESH_TOKEN")
	setBool(&c.Auth.SecureCookies, "SECURE_COOKIES")

	setString(&c.Email.SMTPHost, "SMTP_HOST")
	setInt(&c.Email.SMTPPort, "SMTP_PORT")
	setString(&c.Email.SMTPUsername, "SMTP_MAIL")
	setString(&c.Email.SMTPPassword, "SMTP_PASSWORD")
	if c.Email.SMTPHost != "" && os.Getenv("EMAIL_DRIVER") == "" {
		c.Email.Driver = "smtp"
	}
	setString(&c.Email.Driver, "EMAIL_DRIVER")

	setString(&c.Storage.Type, "STORAGE_TYPE")
	setString(&c.Storage.Bucket, "STORAGE_BUCKET")
	setString(&c.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&c.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&c.Storage.Endpoint, "STORAGE_ENDPOINT")

	setString(&c.Admin.Email, "FIRST_ADMIN_EMAIL")
	setString(&c.Admin.Password, "FIRST_ADMIN_PASSWORD")
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.ActivationSecret == "" {
		errs = append(errs, errors.New("auth.activation_secret is required"))
	}
	if c.Auth.AccessSecret == "" {
		errs = append(errs, errors.New("auth.access_secret is required"))
	}
	if c.Auth.RefreshSecret == "" {
		errs = append(errs, errors.New("auth.refresh_secret is required"))
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %q", c.Database.Driver))
	}
	if c.IsProduction() {
		errs = append(errs, c.validateProduction()...)
	}
	return errors.Join(errs...)
}

// devSecretPrefix marks the placeholder secrets shipped in config/config.yaml.
const devSecretPrefix = "dev-"

// validateProduction refuses the permissive development defaults: an empty
// or wildcard origin list makes CORS and the socket upgrade accept any site
// with credentials.
func (c *Config) validateProduction() []error {
	var errs []error
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("server.allowed_origins is required in production"))
	}
	for _, origin := range c.Server.AllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			errs = append(errs, errors.New("server.allowed_origins must not contain * in production"))
		}
	}

	secrets := []struct{ name, value string }{
		{"auth.activation_secret", c.Auth.ActivationSecret},
		{"auth.access_secret", c.Auth.AccessSecret},
		{"auth.refresh_secret", c.Auth.RefreshSecret},
	}
	for _, secret := range secrets {
		if strings.HasPrefix(secret.value, devSecretPrefix) {
			errs = append(errs, fmt.Errorf("%s still holds a development placeholder", secret.name))
		}
	}
	return errs
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
