// Package fixlinks applies a rewrite rule set to documentation files in place.
//
// A run reads and rewrites every file concurrently, then writes the changed
// files one by one. Each write is preceded by a <file>.backup copy; when any
// write fails every file already written in the run is restored.
package fixlinks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docmigrate/internal/docpath"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/markdown"
	"git.home.luguber.info/inful/docmigrate/internal/metrics"
	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

const backupSuffix = ".backup"

// ErrBackupExists is returned when a file about to be rewritten already has
// a backup next to it, typically left by an earlier run with keep_backups.
var ErrBackupExists = errors.New("backup file already exists")

// CleanChecker rejects files that must not be rewritten, typically because
// they carry uncommitted changes.
type CleanChecker interface {
	CheckClean(paths []string) error
}

// Options configures a Driver.
type Options struct {
	Rules *rewrite.RuleSet
	// ResidueSources are old path prefixes; link destinations that still
	// start with one after the rewrite are reported.
	ResidueSources []string
	DryRun         bool
	KeepBackups    bool
	Concurrency    int
	Guard          CleanChecker
	Recorder       metrics.Recorder
	Logger         *slog.Logger
}

// Driver runs a rule set over files.
type Driver struct {
	opts Options
}

// NewDriver returns a Driver with defaults filled in.
func NewDriver(opts Options) *Driver {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Driver{opts: opts}
}

type fileResult struct {
	path     string
	mode     os.FileMode
	original []byte
	updated  []byte
	hits     []rewrite.Hit
	residue  []Residue
}

func (r *fileResult) changed() bool { return r.updated != nil }

// Run rewrites files. Reading and rewriting happen in parallel; writes are
// applied only after every file was processed successfully. In dry-run mode
// nothing is written but the report is identical.
func (d *Driver) Run(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()
	files = dedupe(files)

	if d.opts.Guard != nil && !d.opts.DryRun {
		if err := d.opts.Guard.CheckClean(files); err != nil {
			return nil, err
		}
	}

	results := make([]*fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.process(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := newReport(d.opts.DryRun, results)
	d.opts.Recorder.AddFilesScanned(report.Scanned)

	if !d.opts.DryRun {
		if err := d.write(ctx, results); err != nil {
			return report, err
		}
	}

	d.opts.Recorder.AddFilesChanged(len(report.Changed))
	for _, h := range report.RuleHits {
		d.opts.Recorder.AddRuleHits(h.Match, h.Count)
	}
	d.opts.Logger.Info("Rewrite finished",
		logfields.Count(len(report.Changed)),
		slog.Int("scanned", report.Scanned),
		slog.Int("replacements", report.Replacements()),
		slog.Bool("dry_run", d.opts.DryRun),
		logfields.Duration(time.Since(start)))
	return report, nil
}

func (d *Driver) process(path string) (*fileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	// #nosec G304 -- paths come from discovery or explicit CLI arguments
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	res := &fileResult{path: path, mode: info.Mode().Perm(), original: content}
	out, hits := d.opts.Rules.RewriteCounting(string(content))
	final := content
	if len(hits) > 0 && out != string(content) {
		res.updated = []byte(out)
		res.hits = hits
		final = res.updated
		d.opts.Logger.Debug("File rewritten", logfields.File(path), logfields.Count(totalHits(hits)))
	}
	res.residue = d.residue(path, final)
	return res, nil
}

func (d *Driver) residue(path string, content []byte) []Residue {
	if len(d.opts.ResidueSources) == 0 {
		return nil
	}
	body, skipped := markdown.Body(content)
	links, err := markdown.ExtractLinks(body, markdown.Options{HTML: true})
	if err != nil {
		return nil
	}
	var out []Residue
	for _, l := range links {
		src, ok := staleSource(l.Destination, d.opts.ResidueSources)
		if !ok {
			continue
		}
		line := l.Line
		if line > 0 {
			line += skipped
		}
		out = append(out, Residue{File: path, Line: line, Destination: l.Destination, Source: src})
	}
	return out
}

// staleSource matches a link destination against old prefixes, ignoring a
// leading "./" or "/" on either side. External URLs never match.
func staleSource(dest string, sources []string) (string, bool) {
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "mailto:") {
		return "", false
	}
	d := trimLead(dest)
	for _, s := range sources {
		bare := trimLead(s)
		if bare == "" {
			continue
		}
		if docpath.HasSegmentPrefix(d, bare) {
			return s, true
		}
	}
	return "", false
}

func trimLead(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		default:
			return p
		}
	}
}

// write persists changed files sequentially. Nothing is written when any
// backup name is taken. On failure every file written so far is restored
// from its backup.
func (d *Driver) write(ctx context.Context, results []*fileResult) error {
	for _, res := range results {
		if !res.changed() {
			continue
		}
		backup := res.path + backupSuffix
		if _, err := os.Lstat(backup); err == nil {
			return fmt.Errorf("%w: %s (restore or remove it first)", ErrBackupExists, backup)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check backup %s: %w", backup, err)
		}
	}

	var written []*fileResult
	for _, res := range results {
		if !res.changed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			d.rollback(written)
			return err
		}
		backup := res.path + backupSuffix
		if err := os.WriteFile(backup, res.original, res.mode); err != nil {
			d.rollback(written)
			return fmt.Errorf("failed to create backup for %s: %w", res.path, err)
		}
		written = append(written, res)
		if err := os.WriteFile(res.path, res.updated, res.mode); err != nil {
			d.rollback(written)
			return fmt.Errorf("failed to write updated %s: %w", res.path, err)
		}
	}

	if !d.opts.KeepBackups {
		for _, res := range written {
			_ = os.Remove(res.path + backupSuffix)
		}
	}
	return nil
}

// rollback restores files from their backups and removes the backups.
func (d *Driver) rollback(written []*fileResult) {
	for _, res := range written {
		if err := os.WriteFile(res.path, res.original, res.mode); err != nil {
			d.opts.Logger.Error("Rollback failed; restore from backup manually",
				logfields.File(res.path), logfields.Error(err))
			continue
		}
		_ = os.Remove(res.path + backupSuffix)
	}
	if len(written) > 0 {
		d.opts.Logger.Warn("Rolled back rewritten files", logfields.Count(len(written)))
	}
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func totalHits(hits []rewrite.Hit) int {
	n := 0
	for _, h := range hits {
		n += h.Count
	}
	return n
}
