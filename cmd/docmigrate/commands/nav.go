package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/docmigrate/internal/config"
	"git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/meta"
	"git.home.luguber.info/inful/docmigrate/internal/nav"
	"git.home.luguber.info/inful/docmigrate/internal/sidebar"
	"git.home.luguber.info/inful/docmigrate/internal/watch"
)

// NavCmd implements the 'nav' command.
type NavCmd struct {
	Input    string        `short:"i" help:"Sidebar file, JSON or YAML (overrides navigation.input)"`
	Output   string        `short:"o" help:"meta.json to write (overrides navigation.output)"`
	Sidebar  string        `help:"Sidebar name inside the input file (overrides navigation.sidebar)"`
	Strict   bool          `help:"Fail without writing when any reference is unresolved"`
	Watch    bool          `short:"w" help:"Regenerate whenever the sidebar or configuration changes"`
	Debounce time.Duration `default:"500ms" help:"Quiet period after a change before regenerating (with --watch)"`
}

func (n *NavCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if err := n.generate(g, cfg); err != nil {
		if !n.Watch || n.input(cfg) == "" {
			return err
		}
		g.logger().Error("Navigation update failed", logfields.Error(err))
	}
	if !n.Watch {
		return nil
	}
	return n.watch(g, root.Config, n.input(cfg))
}

// watch regenerates on every change of the sidebar or the configuration.
// When a reload points navigation.input at another file the watcher is
// rebuilt around the new file.
func (n *NavCmd) watch(g *Global, configPath, input string) error {
	ctx := g.context()
	for {
		wctx, cancel := context.WithCancel(ctx)
		next := input
		w, err := watch.New([]string{input, configPath}, n.Debounce, func(_ context.Context, changed []string) error {
			g.logger().Info("Regenerating navigation", slog.Any("changed", changed))
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if in := n.input(cfg); in != "" && in != input {
				g.logger().Info("Sidebar input changed; watching the new file", logfields.Path(in))
				next = in
				cancel()
			}
			return n.generate(g, cfg)
		})
		if err != nil {
			cancel()
			return errors.WrapError(err, errors.CategoryFileSystem, "start watcher").Build()
		}
		err = w.WithLogger(g.logger()).Run(wctx)
		cancel()
		if err != nil || ctx.Err() != nil || next == input {
			return err
		}
		input = next
	}
}

func (n *NavCmd) input(cfg *config.Config) string {
	if n.Input != "" {
		return n.Input
	}
	return cfg.Navigation.Input
}

func (n *NavCmd) settings(cfg *config.Config) (input, output, name string) {
	input = n.input(cfg)
	output = cfg.Navigation.Output
	if n.Output != "" {
		output = n.Output
	}
	if output == "" {
		output = "meta.json"
	}
	name = cfg.Navigation.Sidebar
	if n.Sidebar != "" {
		name = n.Sidebar
	}
	return input, output, name
}

func (n *NavCmd) generate(g *Global, cfg *config.Config) error {
	m := newRunMetrics("nav", cfg)
	unresolved, err := n.transcode(g, cfg, m)
	m.finish(g.logger(), outcomeFor(err, unresolved))
	return err
}

func (n *NavCmd) transcode(g *Global, cfg *config.Config, m *runMetrics) (int, error) {
	logger := g.logger().With(logfields.Command("nav"))
	input, output, name := n.settings(cfg)
	if input == "" {
		return 0, errors.ValidationError("no sidebar input; set navigation.input or pass --input").Build()
	}

	rules, prefixes, err := cfg.BuildRuleSets()
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryRules, "invalid rewrite rules (run 'docmigrate rules check')").Build()
	}

	tree, err := sidebar.LoadFile(input, name)
	if err != nil {
		var schemaErr *sidebar.SchemaError
		if stderrors.As(err, &schemaErr) {
			return 0, errors.WrapError(err, errors.CategoryValidation, err.Error()).Build()
		}
		return 0, errors.WrapError(err, errors.CategoryFileSystem, "load sidebar").WithContext("path", input).Build()
	}

	res := nav.Transcode(tree, rules, prefixes, nav.Options{ContentRoots: cfg.ContentRoots})
	for _, d := range res.Diagnostics {
		logger.Warn("Unresolved reference", logfields.NodeID(d.ID), logfields.Breadcrumb(strings.Join(d.Breadcrumb, " > ")))
	}
	m.recorder.AddUnresolvedRefs(len(res.Diagnostics))
	if n.Strict && len(res.Diagnostics) > 0 {
		return len(res.Diagnostics), errors.WrapError(res.Err(), errors.CategoryNavigation,
			fmt.Sprintf("%d unresolved references; %s not written", len(res.Diagnostics), output)).Build()
	}

	out := g.out()
	changed, err := meta.WriteFile(output, res.Tree, meta.Options{
		Root:              cfg.Navigation.IsRoot(),
		Title:             cfg.Navigation.Title,
		ExpandDirectories: cfg.Navigation.ExpandDirectories,
	})
	if err != nil {
		return len(res.Diagnostics), errors.WrapError(err, errors.CategoryFileSystem, "write meta.json").WithContext("path", output).Build()
	}

	verb := "Wrote"
	if !changed {
		verb = "Unchanged"
	}
	s := res.Stats
	_, _ = fmt.Fprintf(out, "%s %s: %d pages, %d categories, %d links (%d by rule, %d by prefix, %d kept, %d unresolved)\n",
		verb, output, s.Docs, s.Categories, s.Links, s.ByRule, s.ByPrefix, s.Identity, s.Unresolved)
	return len(res.Diagnostics), nil
}
