package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// UploadURLPrefix is the public path uploaded images are served under.
const UploadURLPrefix = "/static/uploads"

// DefaultSessionSecret is only meant for local development.
const DefaultSessionSecret = "dev_fallback_secret"

type Database struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// Contact is shown on the /contacts page.
type Contact struct {
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email" validate:"omitempty,email"`
	Address string `yaml:"address"`
}

type Config struct {
	Port             int      `yaml:"port" validate:"min=1,max=65535"`
	Database         Database `yaml:"database"`
	StaticDir        string   `yaml:"staticDir" validate:"required"`
	SessionName      string   `yaml:"sessionName" validate:"required"`
	SessionSecret    string   `yaml:"sessionSecret" validate:"required,min=8"`
	MaxUploadMB      int64    `yaml:"maxUploadMB" validate:"min=1"`
	AllowedImageExts []string `yaml:"allowedImageExts" validate:"dive,startswith=."`
	LogLevel         string   `yaml:"logLevel" validate:"oneof=debug info warn error"`
	Contact          Contact  `yaml:"contact"`
}

func Default() *Config {
	return &Config{
		Port: 8080,
		Database: Database{
			Driver: "sqlite",
			DSN:    "catalog.db",
		},
		StaticDir:        filepath.Join("frontend", "static"),
		SessionName:      "admin_session",
		SessionSecret:    DefaultSessionSecret,
		MaxUploadMB:      32,
		AllowedImageExts: []string{".jpg", ".jpeg", ".png", ".webp", ".gif"},
		LogLevel:         "info",
	}
}

// UploadDir is where uploaded images are written; it lives inside StaticDir
// so the /static file server exposes it under UploadURLPrefix.
func (c *Config) UploadDir() string {
	return filepath.Join(c.StaticDir, "uploads")
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Path returns CONFIG_PATH or config.yaml in the working directory.
func Path() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(cwd, "config.yaml")
}

// LoadEnvFiles грузит .env из текущей папки, родительской и корня репо
// (когда запускаем из cmd/server). Missing files are skipped; variables
// already present in the environment win.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env", "../.env", "../../.env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("loaded env file", "path", f)
		}
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// configPath and environment overrides, then validates it.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", configPath)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	for i, ext := range cfg.AllowedImageExts {
		cfg.AllowedImageExts[i] = strings.ToLower(ext)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid APP_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("SESSION_NAME"); v != "" {
		cfg.SessionName = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB %q: %w", v, err)
		}
		cfg.MaxUploadMB = mb
	}
	return nil
}
