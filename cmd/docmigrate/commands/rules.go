package commands

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	"git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// RulesCmd groups rule inspection commands.
type RulesCmd struct {
	Check RulesCheckCmd `cmd:"" default:"1" help:"Validate rule order and conflicts"`
}

// RulesCheckCmd implements 'rules check'.
type RulesCheckCmd struct {
	FixOrder bool `name:"fix-order" help:"Print the rules reordered most specific first"`
}

func (r *RulesCheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	return r.check(g.out(), cfg)
}

func (r *RulesCheckCmd) check(out io.Writer, cfg *config.Config) error {
	rules, prefixes, err := cfg.BuildRuleSets()
	if err == nil {
		_, _ = fmt.Fprintf(out, "%d rules and %d prefix rules are valid\n", rules.Len(), prefixes.Len())
		return nil
	}

	problems := unjoin(err)
	_, _ = fmt.Fprintf(out, "%d problems found:\n", len(problems))
	for _, p := range problems {
		_, _ = fmt.Fprintf(out, "  %v\n", p)
	}

	if r.FixOrder {
		sorted := rewrite.SortMostSpecific(cfg.RewriteRules())
		if _, serr := rewrite.NewRuleSet(sorted); serr != nil {
			_, _ = fmt.Fprintln(out, "\nReordering alone does not fix these rules.")
		} else {
			_, _ = fmt.Fprintln(out, "\nReordered rules (mappings folded in as exact rules):")
			if werr := writeRulesYAML(out, sorted); werr != nil {
				return errors.WrapError(werr, errors.CategoryInternal, "render rules").Build()
			}
		}
	}

	return errors.WrapError(err, errors.CategoryRules, fmt.Sprintf("%d rule problems", len(problems))).
		WithContext("rules", len(cfg.RewriteRules())).Build()
}

func writeRulesYAML(out io.Writer, rules []rewrite.Rule) error {
	doc := struct {
		Rules []config.RuleConfig `yaml:"rules"`
	}{}
	for _, r := range rules {
		doc.Rules = append(doc.Rules, config.RuleConfig{Match: r.Match, Replacement: r.Replacement, Kind: r.Kind, Target: r.Target})
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// unjoin flattens an errors.Join tree into its leaves.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, unjoin(e)...)
		}
		return out
	}
	return []error{err}
}
