package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	EnvAPIURL   = "FORGE_API_URL"
	EnvLogLevel = "FORGE_LOG_LEVEL"

	DefaultAPIURL = "http://localhost:8080"
)

type Config struct {
	APIURL         string `yaml:"api_url" validate:"omitempty,url"`
	PageSize       int    `yaml:"page_size" validate:"gte=1,lte=500"`
	OnLoadError    string `yaml:"on_load_error" validate:"oneof=ignore surface"`
	RequestTimeout string `yaml:"request_timeout" validate:"omitempty,duration"`
	MarkdownStyle  string `yaml:"markdown_style" validate:"required"`
	LogLevel       string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	Cache          bool   `yaml:"cache"`
	CacheFile      string `yaml:"cache_file"`
	LogFile        string `yaml:"log_file"`
}

// Timeout returns the per-request timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// CacheFilePath is cache_file, or the XDG cache location when unset.
func (c *Config) CacheFilePath() string {
	if c.CacheFile != "" {
		return c.CacheFile
	}
	return CachePath()
}

func (c *Config) LogFilePath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return LogPath()
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "forge", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "forge", "notes.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "forge", "forge.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path (or the default location) over the embedded defaults and
// applies environment overrides. A missing file is created from the defaults.
func Load(path string) (*Config, error) {
	// A .env in the working directory never overrides the real environment.
	_ = godotenv.Load()

	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Non-fatal: the embedded defaults are used as is.
		_ = writeDefaults(path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets FORGE_API_URL win whenever it is set, even to "".
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvAPIURL); ok {
		cfg.APIURL = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

var validate = newValidator()

func newValidator() func(*Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d >= 0
	})

	return func(cfg *Config) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: invalid value %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), describe(fe)))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be an absolute URL or empty"
	case "duration":
		return "must be a duration like 30s or 2m"
	case "gte", "lte":
		return "must be between 1 and 500"
	case "required":
		return "is required"
	default:
		return fe.Tag()
	}
}
