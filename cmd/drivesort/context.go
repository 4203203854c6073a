package main

import (
	"log/slog"
	"strings"
	"sync"

	"drivesort/internal/config"
	"drivesort/internal/history"
	"drivesort/internal/logging"
	"drivesort/internal/services/graph"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{"stderr"},
		})
	})
	return c.logger, c.loggerErr
}

// drive builds the remote drive surface from stored credentials. Commands
// that touch the drive fail fast here when the user has not logged in.
func (c *commandContext) drive() (*graph.Operations, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	tokens, err := graph.NewTokenManager(cfg.Graph.TokenPath, cfg.Graph.ClientID, cfg.Graph.TenantID, cfg.Graph.Scopes)
	if err != nil {
		return nil, err
	}
	client := graph.NewClient(cfg.Graph.BaseURL, tokens, nil, logger)
	return graph.NewOperations(client, logger), nil
}

func (c *commandContext) tokenManager() (*graph.TokenManager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return graph.NewTokenManager(cfg.Graph.TokenPath, cfg.Graph.ClientID, cfg.Graph.TenantID, cfg.Graph.Scopes)
}

// withStore opens the history database for the duration of fn.
func (c *commandContext) withStore(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
