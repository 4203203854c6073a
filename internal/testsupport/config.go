// Package testsupport provides shared helpers for package tests, including
// a config builder seeded with per-test temp directories and an in-memory
// fake drive.
package testsupport

import (
	"path/filepath"
	"testing"

	"drivesort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Graph.ClientID = "test-client"
	cfgVal.Graph.TokenPath = filepath.Join(base, "tokens.json")
	cfgVal.History.DBPath = filepath.Join(base, "history.db")
	cfgVal.Logging.LogDir = filepath.Join(base, "logs")
	cfgVal.Organize.Safety.RequireConfirmation = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSourceFolder sets the organize source folder on the test config.
func WithSourceFolder(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.SourceFolder = path
	}
}

// WithFolderStructure overrides the destination template on the test config.
func WithFolderStructure(structure string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.FolderStructure = structure
	}
}

// WithCategories enables content categorization with the default rule set.
func WithCategories() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Categories.Enabled = true
		b.cfg.Categories.Rules = config.DefaultCategoryRules()
	}
}
