// Package config loads the proposalviewer configuration: where documents are
// read from and how they are cached and filtered.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bascanada/proposalviewer/pkg/ty"
)

// Sentinel errors returned by Load so callers can detect exact failure modes
// using errors.Is().
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("invalid config content")
	ErrNoSources      = errors.New("no sources found in config file")
	ErrUnknownSource  = errors.New("unknown source")
	ErrInvalidSource  = errors.New("invalid source configuration")
)

const (
	// EnvConfigPath is the environment variable used to override the config path
	EnvConfigPath = "PROPOSALVIEWER_CONFIG"

	// DefaultConfigDir is the directory under the user's home where the config
	// file is expected when no explicit path or env var is provided.
	DefaultConfigDir = ".proposalviewer"

	// DefaultConfigFile is the config filename to look for in the default dir.
	DefaultConfigFile = "config.yaml"
)

// Source types
const (
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
)

type Source struct {
	Type    string `json:"type" yaml:"type"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	DSN     string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Headers ty.MS  `json:"headers,omitempty" yaml:"headers,omitempty"`
	// Migrate applies pending schema migrations when a SQL source is opened.
	Migrate bool `json:"migrate,omitempty" yaml:"migrate,omitempty"`
}

type DocumentRef struct {
	Source      string `json:"source" yaml:"source"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type CacheSettings struct {
	// TTL is a Go duration string. Empty or "0" caches until invalidated.
	TTL      string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

type FilterSettings struct {
	// LegacyRange reads every hyphenated value as a min-max range, not only
	// values of range capable fields.
	LegacyRange bool `json:"legacyRange,omitempty" yaml:"legacyRange,omitempty"`
}

type Sources map[string]Source

type Documents map[string]DocumentRef

type Config struct {
	Sources   `json:"sources" yaml:"sources"`
	Documents `json:"documents,omitempty" yaml:"documents,omitempty"`
	Cache     CacheSettings  `json:"cache,omitempty" yaml:"cache,omitempty"`
	Filter    FilterSettings `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// ResolvePath returns the config path to use: configPath when set, then the
// PROPOSALVIEWER_CONFIG env var, then $HOME/.proposalviewer/config.yaml.
func ResolvePath(configPath string) string {
	if strings.TrimSpace(configPath) != "" {
		return configPath
	}
	if envPath := strings.TrimSpace(os.Getenv(EnvConfigPath)); envPath != "" {
		return envPath
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	}
	return ""
}

func Load(configPath string) (*Config, error) {
	configPath = ResolvePath(configPath)

	if configPath == "" {
		return nil, fmt.Errorf("%w: no path provided", ErrConfigNotFound)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	// Read file contents and support JSON or YAML formats
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := Parse(data, filepath.Ext(configPath))
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, configPath)
	}

	return config, nil
}

// Parse decodes and validates config content. ext selects the format
// (".json", ".yaml", ".yml"); anything else tries JSON then YAML.
func Parse(data []byte, ext string) (*Config, error) {
	var config Config

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: parsing JSON: %v", ErrConfigParse, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: parsing YAML: %v", ErrConfigParse, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			config = Config{}
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("%w: unsupported or invalid config format", ErrConfigParse)
			}
		}
	}

	if len(config.Sources) == 0 {
		return nil, ErrNoSources
	}

	if config.Documents == nil {
		config.Documents = Documents{}
	}

	for name, src := range config.Sources {
		config.Sources[name] = src.resolveVariables()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// resolveVariables expands ${VAR} and $VAR references from the environment
// in connection settings.
func (s Source) resolveVariables() Source {
	resolved := ty.MS{"path": s.Path, "dsn": s.DSN, "url": s.URL}.ResolveVariables()
	s.Path = resolved["path"]
	s.DSN = resolved["dsn"]
	s.URL = resolved["url"]
	if s.Headers != nil {
		s.Headers = s.Headers.ResolveVariables()
	}
	return s
}

// Validate performs lightweight validation of sources and document references
// and returns a combined error describing every problem found.
func (c *Config) Validate() error {
	problems := []string{}
	var sentinel error = ErrInvalidSource

	for _, name := range c.SourceNames() {
		src := c.Sources[name]
		switch strings.ToLower(src.Type) {
		case SourceFile:
			if src.Path == "" {
				problems = append(problems, fmt.Sprintf("source '%s' (file) missing required option 'path'", name))
			}
		case SourceSQLite, SourcePostgres:
			if src.DSN == "" {
				problems = append(problems, fmt.Sprintf("source '%s' (%s) missing required option 'dsn'", name, src.Type))
			}
		case SourceHTTP:
			if src.URL == "" {
				problems = append(problems, fmt.Sprintf("source '%s' (http) missing required option 'url'", name))
			}
		default:
			problems = append(problems, fmt.Sprintf("source '%s' has unsupported type '%s'", name, src.Type))
		}
	}

	docs := make([]string, 0, len(c.Documents))
	for name := range c.Documents {
		docs = append(docs, name)
	}
	sort.Strings(docs)
	for _, name := range docs {
		if _, ok := c.Sources[c.Documents[name].Source]; !ok {
			if len(problems) == 0 {
				sentinel = ErrUnknownSource
			}
			problems = append(problems, fmt.Sprintf("document '%s' references unknown source '%s'", name, c.Documents[name].Source))
		}
	}

	if _, err := c.CacheTTL(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  %s", sentinel, strings.Join(problems, "\n  "))
	}
	return nil
}

// SourceNames returns the configured source names in sorted order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CacheTTL parses the cache TTL. Zero means no expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl '%s': %w", c.Cache.TTL, err)
	}
	if ttl < 0 {
		return 0, fmt.Errorf("invalid cache ttl '%s': must not be negative", c.Cache.TTL)
	}
	return ttl, nil
}

// Save writes the config as YAML, or JSON when path ends in .json.
func Save(path string, config *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
