package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/devlog/internal/theme"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Content ContentConfig     `yaml:"content"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Theme   ThemeConfig       `yaml:"theme"`
	Events  EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Theme.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig locates the section and post catalog.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ContentConfig controls where post bodies come from.
//
// Dir is always served under /posts. When BaseURL is set, bodies are
// fetched from it over HTTP instead of being read from Dir.
type ContentConfig struct {
	Dir          string        `yaml:"dir"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.BaseURL, validation.By(httpURL)),
		validation.Field(&c.Timeout,
			validation.Min(time.Duration(0)),
			validation.When(c.BaseURL != "", validation.Required.Error("is required when base_url is set")),
		),
		validation.Field(&c.MaxBodyBytes, validation.Min(int64(0))),
	)
}

// Remote reports whether bodies are fetched over HTTP.
func (c *ContentConfig) Remote() bool {
	return c.BaseURL != ""
}

func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ThemeConfig holds the theme used until the reader picks one.
type ThemeConfig struct {
	Default string `yaml:"default"`
}

// Validate validates the theme configuration.
func (c *ThemeConfig) Validate() error {
	// Normalise empty default to light.
	if c.Default == "" {
		c.Default = string(theme.Light)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Default, validation.In(string(theme.Light), string(theme.Dark))),
	)
}

// Mode returns the default as a theme mode.
func (c *ThemeConfig) Mode() theme.Mode {
	return theme.Mode(c.Default)
}

// EventsConfig holds SSE configuration.
type EventsConfig struct {
	ReloadThrottle time.Duration `yaml:"reload_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ReloadThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Catalog: CatalogConfig{
			Path:  "./config/catalog.yaml",
			Watch: true,
		},
		Content: ContentConfig{
			Dir:          "./content",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 5 << 20,
		},
		SQLite: SQLiteConfig{
			Path: "./devlog.db",
		},
		Theme: ThemeConfig{
			Default: string(theme.Light),
		},
		Events: EventsConfig{
			ReloadThrottle: 2 * time.Second,
		},
	}
}
