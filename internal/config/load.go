package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// Load reads, expands, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the filesystem and .env handling.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported configuration version: %q (expected %s)", config.Version, CurrentVersion)
	}

	for _, w := range NormalizeConfig(&config).Warnings {
		slog.Warn("Config normalization", "detail", w)
	}
	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	root := true
	example := Config{
		Version:      CurrentVersion,
		ContentRoots: []string{"docs/", "../"},
		Rules: []RuleConfig{
			{
				Match:       "/apis/resources/admin",
				Replacement: "/docs/references/api-v1/admin",
				Kind:        rewrite.MatchPrefix,
				Target:      rewrite.TargetDirectory,
			},
		},
		Mappings: Mappings{
			{From: "/apis/resources/system/limits", To: "/docs/references/api-v1/system/SetLimits"},
		},
		PrefixRules: []PrefixRuleConfig{
			{Source: "guides/", Dest: ""},
			{Source: "concepts/", Dest: "../concepts/"},
			{Source: "apis/", Dest: "../apis/"},
		},
		Rewrite: RewriteConfig{
			Include:     []string{"content/docs/**/*.md", "content/docs/**/*.mdx"},
			Exclude:     []string{"**/node_modules/**"},
			Concurrency: defaultConcurrency,
		},
		Navigation: NavigationConfig{
			Input:  "sidebars.json",
			Output: "content/docs/meta.json",
			Root:   &root,
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
