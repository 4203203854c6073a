package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Graph contains remote drive API and authentication settings.
type Graph struct {
	ClientID  string   `toml:"client_id"`
	TenantID  string   `toml:"tenant_id"`
	Scopes    []string `toml:"scopes"`
	BaseURL   string   `toml:"base_url"`
	TokenPath string   `toml:"token_path"`
}

// Filters controls which discovered files are skipped during analysis.
type Filters struct {
	SkipAlreadyOrganized bool     `toml:"skip_already_organized"`
	ExcludeExtensions    []string `toml:"exclude_extensions"`
	MinAgeDays           int      `toml:"min_age_days"`
}

// Safety contains guard rails applied before a live run.
type Safety struct {
	DryRunDefault       bool `toml:"dry_run_default"`
	MaxFilesPerRun      int  `toml:"max_files_per_run"`
	RequireConfirmation bool `toml:"require_confirmation"`
}

// Organize contains the core pipeline settings.
type Organize struct {
	SourceFolder    string  `toml:"source_folder"`
	DestinationRoot string  `toml:"destination_root"`
	DateField       string  `toml:"date_field"`
	FolderStructure string  `toml:"folder_structure"`
	Recursive       bool    `toml:"recursive"`
	Filters         Filters `toml:"filters"`
	Safety          Safety  `toml:"safety"`
}

// CategoryRule defines one content category. Rule order in the file is
// significant: score ties resolve to the first-declared rule.
type CategoryRule struct {
	Name       string   `toml:"name"`
	Keywords   []string `toml:"keywords"`
	Extensions []string `toml:"extensions"`
	Patterns   []string `toml:"patterns"`
	Priority   int      `toml:"priority"`
}

// Categories contains content categorization settings.
type Categories struct {
	Enabled bool           `toml:"enabled"`
	Default string         `toml:"default"`
	Rules   []CategoryRule `toml:"rules"`
}

// History contains journal storage settings.
type History struct {
	DBPath        string `toml:"db_path"`
	RetentionDays int    `toml:"retention_days"`
}

// Schedule contains settings for unattended scheduled runs.
type Schedule struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	LogDir string `toml:"log_dir"`
}

// Config encapsulates all configuration values for drivesort.
type Config struct {
	Graph      Graph      `toml:"graph"`
	Organize   Organize   `toml:"organize"`
	Categories Categories `toml:"categories"`
	History    History    `toml:"history"`
	Schedule   Schedule   `toml:"schedule"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/drivesort/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("drivesort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local directories drivesort writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.History.DBPath),
		filepath.Dir(c.Graph.TokenPath),
	}
	if strings.TrimSpace(c.Logging.LogDir) != "" {
		dirs = append(dirs, c.Logging.LogDir)
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Graph.TokenPath, err = expandPath(c.Graph.TokenPath); err != nil {
		return err
	}
	if c.History.DBPath, err = expandPath(c.History.DBPath); err != nil {
		return err
	}
	if strings.TrimSpace(c.Logging.LogDir) != "" {
		if c.Logging.LogDir, err = expandPath(c.Logging.LogDir); err != nil {
			return err
		}
	}

	c.Organize.SourceFolder = strings.Trim(strings.TrimSpace(c.Organize.SourceFolder), "/")
	c.Organize.DestinationRoot = strings.Trim(strings.TrimSpace(c.Organize.DestinationRoot), "/")
	c.Organize.DateField = strings.TrimSpace(c.Organize.DateField)

	for i, ext := range c.Organize.Filters.ExcludeExtensions {
		cleaned := strings.ToLower(strings.TrimSpace(ext))
		if cleaned != "" && !strings.HasPrefix(cleaned, ".") {
			cleaned = "." + cleaned
		}
		c.Organize.Filters.ExcludeExtensions[i] = cleaned
	}

	for i := range c.Categories.Rules {
		rule := &c.Categories.Rules[i]
		rule.Name = strings.TrimSpace(rule.Name)
		for j, ext := range rule.Extensions {
			cleaned := strings.ToLower(strings.TrimSpace(ext))
			if cleaned != "" && !strings.HasPrefix(cleaned, ".") {
				cleaned = "." + cleaned
			}
			rule.Extensions[j] = cleaned
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
