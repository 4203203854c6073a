// Package categorize scores files against configured category rules.
//
// Categorization is a pure function of the item name, its full path, and the
// compiled rule set, so repeated runs over the same listing produce identical
// category statistics.
package categorize

import (
	"path"
	"regexp"
	"strings"

	"drivesort/internal/config"
	"drivesort/internal/services"
)

const (
	extensionScore = 100
	keywordScore   = 50
	patternScore   = 75
)

type compiledRule struct {
	name       string
	keywords   []string
	extensions map[string]struct{}
	patterns   []*regexp.Regexp
	priority   int
}

// Categorizer assigns category names based on file metadata.
type Categorizer struct {
	rules           []compiledRule
	defaultCategory string
}

// New compiles the configured rules. Pattern compilation failures are
// configuration errors.
func New(cfg config.Categories) (*Categorizer, error) {
	rules := make([]compiledRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		compiled := compiledRule{
			name:     rule.Name,
			priority: rule.Priority,
		}
		for _, keyword := range rule.Keywords {
			compiled.keywords = append(compiled.keywords, strings.ToLower(keyword))
		}
		if len(rule.Extensions) > 0 {
			compiled.extensions = make(map[string]struct{}, len(rule.Extensions))
			for _, ext := range rule.Extensions {
				compiled.extensions[strings.ToLower(ext)] = struct{}{}
			}
		}
		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "categorize", "compile pattern",
					"category "+rule.Name+" pattern "+pattern, err)
			}
			compiled.patterns = append(compiled.patterns, re)
		}
		rules = append(rules, compiled)
	}
	return &Categorizer{rules: rules, defaultCategory: cfg.Default}, nil
}

// Categorize scores name and fullPath against every rule and returns the
// category with the strictly highest positive score. Ties resolve to the
// first-declared rule; no positive score yields the default category.
func (c *Categorizer) Categorize(name, fullPath string) string {
	lowerName := strings.ToLower(name)
	lowerPath := strings.ToLower(fullPath)
	ext := path.Ext(lowerName)

	best := c.defaultCategory
	bestScore := 0.0

	for _, rule := range c.rules {
		score := 0
		if _, ok := rule.extensions[ext]; ok {
			score += extensionScore
		}
		for _, keyword := range rule.keywords {
			if strings.Contains(lowerName, keyword) || strings.Contains(lowerPath, keyword) {
				score += keywordScore
			}
		}
		for _, pattern := range rule.patterns {
			if pattern.MatchString(name) || pattern.MatchString(fullPath) {
				score += patternScore
			}
		}

		weighted := float64(score) * float64(rule.priority) / 50.0
		if weighted > bestScore {
			bestScore = weighted
			best = rule.name
		}
	}

	return best
}
