package config

import (
	"errors"
	"fmt"
	"path"

	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// ValidateConfig checks the structure of the configuration. Rule semantics
// (ordering, conflicts) are checked when the rule sets are built.
func ValidateConfig(cfg *Config) error {
	var errs []error
	for i, r := range cfg.Rules {
		if r.Match == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: match is required", i))
		}
		switch r.Kind {
		case "", rewrite.MatchExact, rewrite.MatchPrefix:
		default:
			errs = append(errs, fmt.Errorf("rules[%d]: unknown kind %q (expected exact or prefix)", i, r.Kind))
		}
		switch r.Target {
		case "", rewrite.TargetLeaf, rewrite.TargetDirectory:
		default:
			errs = append(errs, fmt.Errorf("rules[%d]: unknown target %q (expected leaf or directory)", i, r.Target))
		}
	}
	for i, p := range cfg.PrefixRules {
		if p.Source == "" {
			errs = append(errs, fmt.Errorf("prefix_rules[%d]: source is required", i))
		}
	}
	for _, pattern := range append(append([]string(nil), cfg.Rewrite.Include...), cfg.Rewrite.Exclude...) {
		if err := validatePattern(pattern); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Navigation.Input == "" && cfg.Navigation.Sidebar != "" {
		errs = append(errs, errors.New("navigation.sidebar requires navigation.input"))
	}
	return errors.Join(errs...)
}

func validatePattern(pattern string) error {
	if pattern == "" {
		return errors.New("empty glob pattern")
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}
