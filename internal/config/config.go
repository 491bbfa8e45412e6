package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the docpage configuration
type Config struct {
	Render RenderConfig `yaml:"render"`
	Lint   LintConfig   `yaml:"lint"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// RenderConfig holds page rendering options
type RenderConfig struct {
	Engine      string `yaml:"engine"`        // "minimal" or "gfm"
	TOCMaxLevel int    `yaml:"toc_max_level"` // Deepest heading level listed in the TOC. Default: 3
	TOCTitle    string `yaml:"toc_title"`     // Heading of the TOC box. Default: "Contents"
	Lang        string `yaml:"lang"`          // html lang attribute. Default: "en"
}

// LintConfig holds front-matter linter options
type LintConfig struct {
	DocsDir         string   `yaml:"docs_dir"`         // Relative to the lint root. Default: "docs"
	Skip            []string `yaml:"skip"`             // Path prefixes (slash form, relative to root) that are not linted
	RequiredFields  []string `yaml:"required_fields"`  // Fields that must be present and non-blank
	AllowedStatuses []string `yaml:"allowed_statuses"` // Valid values for the status field
	ArchiveDir      string   `yaml:"archive_dir"`      // Where archived documents live. Default: "<docs_dir>/archive/"
	Manifest        string   `yaml:"manifest"`         // Manifest file name inside docs_dir. Default: "context-manifest.json"
	MermaidURL      string   `yaml:"mermaid_url"`      // Script URL used by the --mermaid check
}

// ServerConfig holds preview server configuration
type ServerConfig struct {
	Port      int     `yaml:"port"`
	Host      string  `yaml:"host"`
	Watch     bool    `yaml:"watch"`
	RateLimit float64 `yaml:"rate_limit"` // Requests per second per client. Default: 20
	Burst     int     `yaml:"burst"`      // Default: 40
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console, json, pretty
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Engine:      "minimal",
			TOCMaxLevel: 3,
			TOCTitle:    "Contents",
			Lang:        "en",
		},
		Lint: LintConfig{
			DocsDir: "docs",
			Skip: []string{
				"docs/_meta/templates/",
				"docs/plans/",
				"docs/archive/plans/",
			},
			RequiredFields:  []string{"title", "owner", "status", "last_reviewed"},
			AllowedStatuses: []string{"draft", "active", "deprecated", "archived"},
			Manifest:        "context-manifest.json",
			MermaidURL:      "https://cdn.jsdelivr.net/npm/mermaid@10.9.5/dist/mermaid.min.js",
		},
		Server: ServerConfig{
			Port:      8080,
			Host:      "localhost",
			Watch:     true,
			RateLimit: 20,
			Burst:     40,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// GetTOCMaxLevel returns the TOC depth (default: 3)
func (c RenderConfig) GetTOCMaxLevel() int {
	if c.TOCMaxLevel <= 0 || c.TOCMaxLevel > 6 {
		return 3
	}
	return c.TOCMaxLevel
}

// GetDocsDir returns the docs directory in slash form without trailing slash (default: "docs")
func (c LintConfig) GetDocsDir() string {
	dir := strings.Trim(path.Clean(filepath.ToSlash(strings.TrimSpace(c.DocsDir))), "/")
	if dir == "" || dir == "." {
		return "docs"
	}
	return dir
}

// GetArchiveDir returns the archive prefix with a trailing slash (default: "<docs_dir>/archive/")
func (c LintConfig) GetArchiveDir() string {
	dir := strings.Trim(path.Clean(filepath.ToSlash(strings.TrimSpace(c.ArchiveDir))), "/")
	if dir == "" || dir == "." {
		return c.GetDocsDir() + "/archive/"
	}
	return dir + "/"
}

// GetManifest returns the manifest file name (default: "context-manifest.json")
func (c LintConfig) GetManifest() string {
	if strings.TrimSpace(c.Manifest) == "" {
		return "context-manifest.json"
	}
	return c.Manifest
}

// GetRateLimit returns requests per second per client (default: 20)
func (c ServerConfig) GetRateLimit() float64 {
	if c.RateLimit <= 0 {
		return 20
	}
	return c.RateLimit
}

// GetBurst returns the rate limiter burst size (default: 40)
func (c ServerConfig) GetBurst() int {
	if c.Burst <= 0 {
		return 40
	}
	return c.Burst
}

// Addr returns host:port
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration from a YAML file
// If the file doesn't exist, returns the default configuration.
// Environment overrides are applied in both cases.
func Load(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromDir looks for docpage.yaml, then .docpage.yaml in the given directory.
// A .env file in dir is loaded first so DOCPAGE_* variables can live next to the docs.
// If no config file is found, returns the default configuration
func LoadFromDir(dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	for _, name := range []string{"docpage.yaml", ".docpage.yaml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Load("")
}

// applyEnv overrides file values with DOCPAGE_* environment variables
func (c *Config) applyEnv() error {
	if v := os.Getenv("DOCPAGE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DOCPAGE_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("DOCPAGE_DOCS_DIR"); v != "" {
		c.Lint.DocsDir = v
	}
	if v := os.Getenv("DOCPAGE_ENGINE"); v != "" {
		c.Render.Engine = v
	}
	if v := os.Getenv("DOCPAGE_TOC_LEVEL"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DOCPAGE_TOC_LEVEL %q: %w", v, err)
		}
		c.Render.TOCMaxLevel = level
	}
	return nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
