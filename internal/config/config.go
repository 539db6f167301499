// Package config loads and validates docmigrate.yaml.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = "1.0"

// DefaultPath is used when no --config flag is given.
const DefaultPath = "docmigrate.yaml"

// Config is the root of docmigrate.yaml.
type Config struct {
	Version string `yaml:"version"`
	// Path roots that are already valid in the destination layout.
	ContentRoots []string           `yaml:"content_roots,omitempty"`
	Rules        []RuleConfig       `yaml:"rules,omitempty"`
	Mappings     Mappings           `yaml:"mappings,omitempty"`
	PrefixRules  []PrefixRuleConfig `yaml:"prefix_rules,omitempty"`
	Rewrite      RewriteConfig      `yaml:"rewrite"`
	Navigation   NavigationConfig   `yaml:"navigation"`
	Metrics      MetricsConfig      `yaml:"metrics,omitempty"`
}

// RuleConfig is one authored rewrite rule.
type RuleConfig struct {
	Match       string             `yaml:"match"`
	Replacement string             `yaml:"replacement"`
	Kind        rewrite.MatchKind  `yaml:"kind,omitempty"`
	Target      rewrite.TargetKind `yaml:"target,omitempty"`
}

// PrefixRuleConfig is one fallback prefix rule for navigation ids.
type PrefixRuleConfig struct {
	Source string `yaml:"source"`
	Dest   string `yaml:"dest"`
}

// RewriteConfig drives the `rewrite` command.
type RewriteConfig struct {
	Include           []string `yaml:"include,omitempty"`
	Exclude           []string `yaml:"exclude,omitempty"`
	Concurrency       int      `yaml:"concurrency,omitempty"`
	SegmentBoundaries bool     `yaml:"segment_boundaries,omitempty"`
	RequireCleanGit   bool     `yaml:"require_clean_git,omitempty"`
	// KeepBackups leaves <file>.backup next to every rewritten file.
	KeepBackups bool `yaml:"keep_backups,omitempty"`
}

// NavigationConfig drives the `nav` command.
type NavigationConfig struct {
	Input             string `yaml:"input,omitempty"`
	Sidebar           string `yaml:"sidebar,omitempty"`
	Output            string `yaml:"output,omitempty"`
	Title             string `yaml:"title,omitempty"`
	Root              *bool  `yaml:"root,omitempty"`
	ExpandDirectories bool   `yaml:"expand_directories,omitempty"`
}

// IsRoot reports whether the generated meta.json is a navigation root.
func (n NavigationConfig) IsRoot() bool {
	return n.Root == nil || *n.Root
}

// MetricsConfig controls the optional Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Mapping is one entry of the simple mappings table.
type Mapping struct {
	From string
	To   string
}

// Mappings is an ordered key to value table. YAML mappings are unordered in
// most decoders, so the node is walked directly to keep authored order.
type Mappings []Mapping

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mappings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: mappings must be a key/value map", node.Line)
	}
	seen := make(map[string]int, len(node.Content)/2)
	out := make(Mappings, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mappings entries must be string pairs", k.Line)
		}
		if prev, dup := seen[k.Value]; dup {
			return fmt.Errorf("line %d: duplicate mapping %q (first on line %d)", k.Line, k.Value, prev)
		}
		seen[k.Value] = k.Line
		out = append(out, Mapping{From: k.Value, To: v.Value})
	}
	*m = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m Mappings) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.From},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.To},
		)
	}
	return node, nil
}

// RewriteRules returns the authored rules followed by the mappings table as
// exact leaf rules.
func (c *Config) RewriteRules() []rewrite.Rule {
	out := make([]rewrite.Rule, 0, len(c.Rules)+len(c.Mappings))
	for _, r := range c.Rules {
		out = append(out, rewrite.Rule{Match: r.Match, Replacement: r.Replacement, Kind: r.Kind, Target: r.Target})
	}
	for _, m := range c.Mappings {
		out = append(out, rewrite.Rule{Match: m.From, Replacement: m.To, Kind: rewrite.MatchExact, Target: rewrite.TargetLeaf})
	}
	return out
}

// BuildRuleSets validates and freezes the configured rules.
func (c *Config) BuildRuleSets() (*rewrite.RuleSet, *rewrite.PrefixRuleSet, error) {
	var opts []rewrite.Option
	if c.Rewrite.SegmentBoundaries {
		opts = append(opts, rewrite.WithSegmentBoundaries())
	}
	rules, err := rewrite.NewRuleSet(c.RewriteRules(), opts...)
	if err != nil {
		return nil, nil, err
	}

	prefixRules := make([]rewrite.PrefixRule, len(c.PrefixRules))
	for i, p := range c.PrefixRules {
		prefixRules[i] = rewrite.PrefixRule{Source: p.Source, Dest: p.Dest}
	}
	prefixes, err := rewrite.NewPrefixRuleSet(prefixRules)
	if err != nil {
		return nil, nil, err
	}
	return rules, prefixes, nil
}
