package config

import "runtime"

const defaultConcurrency = 4

var (
	defaultInclude = []string{"**/*.md", "**/*.mdx"}
	defaultExclude = []string{"**/node_modules/**", "**/.git/**"}
)

func applyDefaults(cfg *Config) {
	if cfg.Rewrite.Concurrency == 0 {
		cfg.Rewrite.Concurrency = min(defaultConcurrency, runtime.NumCPU())
	}
	if len(cfg.Rewrite.Include) == 0 {
		cfg.Rewrite.Include = append([]string(nil), defaultInclude...)
	}
	if cfg.Rewrite.Exclude == nil {
		cfg.Rewrite.Exclude = append([]string(nil), defaultExclude...)
	}
	if cfg.Navigation.Output == "" && cfg.Navigation.Input != "" {
		cfg.Navigation.Output = "meta.json"
	}
}
