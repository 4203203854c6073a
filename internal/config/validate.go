package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if c.Organize.DestinationRoot == "" {
		return errors.New("organize.destination_root must be set")
	}
	switch c.Organize.DateField {
	case "createdDateTime", "lastModifiedDateTime":
	default:
		return fmt.Errorf("organize.date_field must be createdDateTime or lastModifiedDateTime, got %q", c.Organize.DateField)
	}
	if strings.TrimSpace(c.Organize.FolderStructure) == "" {
		return errors.New("organize.folder_structure must be set")
	}
	if c.Organize.Filters.MinAgeDays < 0 {
		return errors.New("organize.filters.min_age_days must not be negative")
	}
	if c.Organize.Safety.MaxFilesPerRun < 0 {
		return errors.New("organize.safety.max_files_per_run must not be negative")
	}
	return nil
}

func (c *Config) validateCategories() error {
	if strings.TrimSpace(c.Categories.Default) == "" {
		return errors.New("categories.default must be set")
	}
	seen := make(map[string]struct{}, len(c.Categories.Rules))
	for i, rule := range c.Categories.Rules {
		if rule.Name == "" {
			return fmt.Errorf("categories.rules[%d].name must be set", i)
		}
		if _, dup := seen[rule.Name]; dup {
			return fmt.Errorf("categories.rules: duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if rule.Priority <= 0 {
			return fmt.Errorf("categories.rules[%q].priority must be positive", rule.Name)
		}
		for _, pattern := range rule.Patterns {
			if _, err := regexp.Compile("(?i)" + pattern); err != nil {
				return fmt.Errorf("categories.rules[%q]: invalid pattern %q: %w", rule.Name, pattern, err)
			}
		}
	}
	return nil
}

func (c *Config) validateHistory() error {
	if strings.TrimSpace(c.History.DBPath) == "" {
		return errors.New("history.db_path must be set")
	}
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must not be negative")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.Enabled && strings.TrimSpace(c.Schedule.Cron) == "" {
		return errors.New("schedule.cron must be set when schedule.enabled is true")
	}
	return nil
}
