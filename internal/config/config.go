// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// Config is the root configuration structure.
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Database DatabaseConfig `toml:"database"`
	Review   ReviewConfig   `toml:"review"`
	Log      LogConfig      `toml:"log"`
	User     UserConfig     `toml:"user"`
}

type LibraryConfig struct {
	Root           string `toml:"root"`
	Purge          bool   `toml:"purge"`           // delete for good instead of moving to the trash dir
	TrashRetention string `toml:"trash_retention"` // Go duration; "0" keeps staged deletions forever
}

// TrashRetentionDuration parses TrashRetention. Invalid values, which
// Validate reports, yield 0.
func (l LibraryConfig) TrashRetentionDuration() time.Duration {
	d, err := time.ParseDuration(l.TrashRetention)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ReviewConfig struct {
	BatchSize   int    `toml:"batch_size"`
	Filter      string `toml:"filter"`
	PreviewSize int    `toml:"preview_size"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// UserConfig holds the reviewer's preferences.
type UserConfig struct {
	Name     string `toml:"name"`
	Language string `toml:"language"` // "en" or "es"
}

// DisplayName returns the configured name, or a generic greeting word in
// the configured language.
func (u UserConfig) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if isSpanish(u.Language) {
		return "usuario"
	}
	return "user"
}

func isSpanish(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return base.String() == "es"
}

// Default values applied by Load.
const (
	DefaultDatabasePath   = "./data/culler.db"
	DefaultTrashRetention = "720h"
	DefaultBatchSize      = 20
	DefaultFilter         = "random"
	DefaultPreviewSize    = 800
	DefaultLogLevel       = "info"
	DefaultLanguage       = "en"
)

// Load reads, parses and validates the configuration file.
// Unresolved environment variables and validation failures are reported
// together as a *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation and missing-variable checks.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	cfg.Library.Root = expandHome(cfg.Library.Root)
	cfg.Database.Path = expandHome(cfg.Database.Path)
	return &cfg, missing, nil
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

func (c *Config) applyDefaults() {
	if c.Library.TrashRetention == "" {
		c.Library.TrashRetention = DefaultTrashRetention
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Review.BatchSize == 0 {
		c.Review.BatchSize = DefaultBatchSize
	}
	if c.Review.Filter == "" {
		c.Review.Filter = DefaultFilter
	}
	if c.Review.PreviewSize == 0 {
		c.Review.PreviewSize = DefaultPreviewSize
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.User.Language == "" {
		c.User.Language = DefaultLanguage
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces environment variable references and returns the
// names (or "NAME: message" for ${VAR:?message}) that could not be resolved.
// Unresolved references are left in place. Comment lines are not expanded.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	expand := func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case "-":
			if value != "" {
				return value
			}
			return arg
		case "?":
			if value != "" {
				return value
			}
			missing = append(missing, name+": "+arg)
			return match
		default:
			if ok {
				return value
			}
			missing = append(missing, name)
			return match
		}
	}

	lines := strings.SplitAfter(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = envVarPattern.ReplaceAllStringFunc(line, expand)
	}
	return strings.Join(lines, ""), missing
}
