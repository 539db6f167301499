package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docmigrate/internal/docpath"
	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// NormalizationResult captures adjustments made before defaults apply.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig case-folds enumerations, trims whitespace and clamps
// bounds. Rule matches and replacements are trimmed but otherwise kept
// verbatim since they are matched as literal text.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	for i := range c.Rules {
		r := &c.Rules[i]
		r.Match = strings.TrimSpace(r.Match)
		r.Replacement = strings.TrimSpace(r.Replacement)
		if k := rewrite.MatchKind(strings.ToLower(strings.TrimSpace(string(r.Kind)))); k != r.Kind {
			res.Warnings = append(res.Warnings, warnChanged(fmt.Sprintf("rules[%d].kind", i), r.Kind, k))
			r.Kind = k
		}
		if t := rewrite.TargetKind(strings.ToLower(strings.TrimSpace(string(r.Target)))); t != r.Target {
			res.Warnings = append(res.Warnings, warnChanged(fmt.Sprintf("rules[%d].target", i), r.Target, t))
			r.Target = t
		}
	}
	for i := range c.PrefixRules {
		c.PrefixRules[i].Source = strings.TrimSpace(c.PrefixRules[i].Source)
		c.PrefixRules[i].Dest = strings.TrimSpace(c.PrefixRules[i].Dest)
	}

	roots := c.ContentRoots[:0]
	for _, r := range c.ContentRoots {
		if n := docpath.Normalize(r); n != "" {
			roots = append(roots, n)
		}
	}
	c.ContentRoots = roots

	if c.Rewrite.Concurrency < 0 {
		res.Warnings = append(res.Warnings, warnChanged("rewrite.concurrency", c.Rewrite.Concurrency, 0))
		c.Rewrite.Concurrency = 0
	}
	c.Navigation.Input = strings.TrimSpace(c.Navigation.Input)
	c.Navigation.Output = strings.TrimSpace(c.Navigation.Output)
	return res
}

func warnChanged(field string, from, to interface{}) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}
