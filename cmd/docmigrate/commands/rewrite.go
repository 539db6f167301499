package commands

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	"git.home.luguber.info/inful/docmigrate/internal/fixlinks"
	"git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/gitguard"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/metrics"
	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// RewriteCmd implements the 'rewrite' command.
type RewriteCmd struct {
	Files       []string `arg:"" optional:"" help:"Files to rewrite; defaults to the configured include globs"`
	Root        string   `default:"." help:"Directory the include and exclude globs are relative to"`
	DryRun      bool     `name:"dry-run" help:"Report what would change without writing files"`
	Yes         bool     `short:"y" help:"Apply changes without asking for confirmation"`
	Concurrency int      `help:"Files processed in parallel (overrides rewrite.concurrency)"`
}

func (r *RewriteCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	m := newRunMetrics("rewrite", cfg)
	report, err := r.run(g, cfg, m)
	warnings := 0
	if report != nil {
		warnings = len(report.Residue)
	}
	m.finish(g.logger(), outcomeFor(err, warnings))
	return err
}

func (r *RewriteCmd) run(g *Global, cfg *config.Config, m *runMetrics) (*fixlinks.Report, error) {
	logger := g.logger().With(logfields.Command("rewrite"))
	out := g.out()

	rules, prefixes, err := cfg.BuildRuleSets()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRules, "invalid rewrite rules (run 'docmigrate rules check')").Build()
	}

	files := r.Files
	if len(files) == 0 {
		files, err = fixlinks.Discover(r.Root, cfg.Rewrite.Include, cfg.Rewrite.Exclude)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "discover files").WithContext("root", r.Root).Build()
		}
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintln(out, "No files matched")
		return nil, nil
	}
	logger.Debug("Files selected", logfields.Count(len(files)))

	opts := fixlinks.Options{
		Rules:          rules,
		ResidueSources: residueSources(rules, prefixes),
		DryRun:         r.DryRun,
		KeepBackups:    cfg.Rewrite.KeepBackups,
		Concurrency:    cfg.Rewrite.Concurrency,
		Recorder:       m.recorder,
		Logger:         logger,
	}
	if r.Concurrency > 0 {
		opts.Concurrency = r.Concurrency
	}
	if cfg.Rewrite.RequireCleanGit {
		opts.Guard = gitguard.New(r.Root)
	}

	if !r.DryRun && !r.Yes {
		preview := opts
		preview.DryRun = true
		preview.Recorder = metrics.NoopRecorder{}
		report, err := fixlinks.NewDriver(preview).Run(g.context(), files)
		if err != nil {
			return nil, classifyDriverError(err)
		}
		report.Print(out)
		if !report.HasChanges() {
			return report, nil
		}
		if !confirm(g.In, out, "Apply these changes?") {
			_, _ = fmt.Fprintln(out, "Aborted; no files were changed")
			return report, nil
		}
	}

	report, err := fixlinks.NewDriver(opts).Run(g.context(), files)
	if err != nil {
		return report, classifyDriverError(err)
	}
	report.Print(out)
	return report, nil
}

// residueSources are the old-layout prefixes worth flagging after a rewrite.
func residueSources(rules *rewrite.RuleSet, prefixes *rewrite.PrefixRuleSet) []string {
	sources := prefixes.Sources()
	for _, r := range rules.Rules() {
		if r.Kind == rewrite.MatchPrefix {
			sources = append(sources, r.Match)
		}
	}
	return sources
}

func classifyDriverError(err error) error {
	var dirty *gitguard.DirtyError
	if stderrors.As(err, &dirty) {
		return errors.WrapError(err, errors.CategoryGit, "refusing to rewrite files with uncommitted changes").
			WithContext("files", len(dirty.Files)).Build()
	}
	return errors.WrapError(err, errors.CategoryFileSystem, "rewrite failed").Build()
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	if in == nil {
		return false
	}
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
