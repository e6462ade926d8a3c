package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Environment variables holding the catalog credentials.
const (
	EnvAPIURL = "DXHUB_KB_API_URL"
	EnvAPIKey = "DXHUB_KB_API_KEY"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Source   SourceConfig      `yaml:"source"`
	Site     SiteConfig        `yaml:"site"`
	Snapshot SnapshotConfig    `yaml:"snapshot"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	Index    IndexConfig       `yaml:"index"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Snapshot.Validate(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return c.Catalog.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// SourceConfig locates the glossary documents.
type SourceConfig struct {
	// ContentRoot is the directory document paths are made relative to.
	ContentRoot string `yaml:"content_root"`
	// Pattern is a glob relative to ContentRoot.
	Pattern string `yaml:"pattern"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ContentRoot, validation.Required),
		validation.Field(&c.Pattern, validation.Required),
	)
}

// SiteConfig holds the public URLs records link to.
type SiteConfig struct {
	BaseURL   string  `yaml:"base_url"`
	PageURL   URLRule `yaml:"page_url"`
	SourceURL URLRule `yaml:"source_url"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.PageURL),
		validation.Field(&c.SourceURL),
	)
}

// URLRule maps a content-relative path to a URL with a regular expression.
// Replacement may reference capture groups as ${1}.
type URLRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Validate validates the rule.
func (r URLRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Pattern, validation.Required, validation.By(compiles)),
		validation.Field(&r.Replacement, validation.Required),
	)
}

func compiles(value any) error {
	s, _ := value.(string)
	if _, err := regexp.Compile(s); err != nil {
		return errors.New("must be a valid regular expression")
	}
	return nil
}

// SnapshotConfig holds the JSON snapshot location.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the snapshot configuration.
func (c *SnapshotConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CatalogConfig holds the knowledge-base endpoint settings.
//
// APIURL and APIKey are required while Enabled is true. They normally come
// from DXHUB_KB_API_URL and DXHUB_KB_API_KEY.
type CatalogConfig struct {
	Enabled      bool          `yaml:"enabled"`
	APIURL       string        `yaml:"api_url"`
	APIKey       string        `yaml:"api_key"`
	EndpointPath string        `yaml:"endpoint_path"`
	Name         string        `yaml:"name"`
	SummaryField string        `yaml:"summary_field"`
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.EndpointPath, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if c.APIKey == "" {
		return fmt.Errorf("catalog: api_key is empty (set %s)", EnvAPIKey)
	}
	return nil
}

// IndexConfig holds the optional SQLite record index location.
// An empty Path disables the index.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
		},
		Source: SourceConfig{
			ContentRoot: "../../content",
			Pattern:     "en/*.md",
		},
		Site: SiteConfig{
			BaseURL: "https://glossary.cncf.io/",
			PageURL: URLRule{
				Pattern:     `^en/(.*)\.md$`,
				Replacement: "https://glossary.cncf.io/${1}",
			},
			SourceURL: URLRule{
				Pattern:     `^(.*)\.md$`,
				Replacement: "https://github.com/cncf/glossary/blob/main/content/${1}.md",
			},
		},
		Snapshot: SnapshotConfig{
			Path: "patterns.json",
		},
		Catalog: CatalogConfig{
			Enabled:      true,
			EndpointPath: "/api/patterns",
			Name:         "CNCF Cloud Native Glossary",
			SummaryField: "what_it_is",
			UserAgent:    "patterns-sync/1.0",
		},
	}
}
