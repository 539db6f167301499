package fixlinks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

func testRules(t *testing.T) *rewrite.RuleSet {
	t.Helper()
	rs, err := rewrite.NewRuleSet([]rewrite.Rule{
		{Match: "/apis/resources/system/limits", Replacement: "/docs/references/api-v1/system/SetLimits"},
		{Match: "/apis/resources/system", Replacement: "/docs/references/api-v1/system"},
		{Match: "/guides/integrate", Replacement: "/docs/integrate"},
	})
	require.NoError(t, err)
	return rs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

type recordingGuard struct {
	paths []string
	err   error
}

func (g *recordingGuard) CheckClean(paths []string) error {
	g.paths = paths
	return g.err
}

func TestDriver_Run(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mdx")
	b := filepath.Join(dir, "b.md")
	c := filepath.Join(dir, "c.md")
	writeFile(t, a, "---\ntitle: A\n---\nSee [limits](/apis/resources/system/limits) and [sys](/apis/resources/system).\n")
	writeFile(t, b, "Start with [integrate](/guides/integrate/login).\n\n[old](/guides/manage/users)\n")
	writeFile(t, c, "Nothing to see.\n")

	d := NewDriver(Options{Rules: testRules(t), ResidueSources: []string{"/guides/"}, Concurrency: 2})
	report, err := d.Run(context.Background(), []string{c, b, a, b})
	require.NoError(t, err)

	assert.Equal(t, "---\ntitle: A\n---\nSee [limits](/docs/references/api-v1/system/SetLimits) and [sys](/docs/references/api-v1/system).\n", readFile(t, a))
	assert.Equal(t, "Start with [integrate](/docs/integrate/login).\n\n[old](/guides/manage/users)\n", readFile(t, b))
	assert.Equal(t, "Nothing to see.\n", readFile(t, c))

	assert.Equal(t, 3, report.Scanned)
	require.Len(t, report.Changed, 2)
	assert.Equal(t, a, report.Changed[0].Path)
	assert.Equal(t, 2, report.Changed[0].Replacements())
	assert.Equal(t, 3, report.Replacements())
	assert.Equal(t, []rewrite.Hit{
		{Rule: 0, Match: "/apis/resources/system/limits", Count: 1},
		{Rule: 1, Match: "/apis/resources/system", Count: 1},
		{Rule: 2, Match: "/guides/integrate", Count: 1},
	}, report.RuleHits)

	require.Len(t, report.Residue, 1)
	assert.Equal(t, Residue{File: b, Line: 3, Destination: "/guides/manage/users", Source: "/guides/"}, report.Residue[0])

	for _, p := range []string{a, b} {
		_, err := os.Stat(p + backupSuffix)
		assert.True(t, os.IsNotExist(err), "backup left behind for %s", p)
	}

	again, err := d.Run(context.Background(), []string{a, b, c})
	require.NoError(t, err)
	assert.False(t, again.HasChanges())
}

func TestDriver_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	original := "[x](/guides/integrate/y)\n"
	writeFile(t, a, original)
	guard := &recordingGuard{err: errors.New("dirty")}

	report, err := NewDriver(Options{Rules: testRules(t), DryRun: true, Guard: guard}).Run(context.Background(), []string{a})
	require.NoError(t, err)
	assert.True(t, report.HasChanges())
	assert.Nil(t, guard.paths, "guard is skipped for dry runs")
	assert.Equal(t, original, readFile(t, a))

	var buf bytes.Buffer
	report.Print(&buf)
	assert.Contains(t, buf.String(), "Would rewrite 1 of 1 files (1 replacements)")
}

func TestDriver_GuardBlocksRun(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	writeFile(t, a, "[x](/guides/integrate/y)\n")
	guard := &recordingGuard{err: errors.New("dirty")}

	_, err := NewDriver(Options{Rules: testRules(t), Guard: guard}).Run(context.Background(), []string{a})
	require.EqualError(t, err, "dirty")
	assert.Equal(t, []string{a}, guard.paths)
	assert.Equal(t, "[x](/guides/integrate/y)\n", readFile(t, a))
}

func TestDriver_KeepBackups(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	writeFile(t, a, "[x](/guides/integrate/y)\n")

	_, err := NewDriver(Options{Rules: testRules(t), KeepBackups: true}).Run(context.Background(), []string{a})
	require.NoError(t, err)
	assert.Equal(t, "[x](/guides/integrate/y)\n", readFile(t, a+backupSuffix))
	assert.Equal(t, "[x](/docs/integrate/y)\n", readFile(t, a))
}

func TestDriver_RefusesToOverwriteBackup(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	writeFile(t, a, "[x](/guides/integrate/a)\n")
	writeFile(t, b, "[x](/guides/integrate/b)\n")
	writeFile(t, b+backupSuffix, "earlier original\n")

	_, err := NewDriver(Options{Rules: testRules(t)}).Run(context.Background(), []string{a, b})
	require.ErrorIs(t, err, ErrBackupExists)
	assert.ErrorContains(t, err, b+backupSuffix)

	assert.Equal(t, "[x](/guides/integrate/a)\n", readFile(t, a))
	assert.Equal(t, "earlier original\n", readFile(t, b+backupSuffix))
	assert.NoFileExists(t, a+backupSuffix)

	report, err := NewDriver(Options{Rules: testRules(t), DryRun: true}).Run(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Len(t, report.Changed, 2)
}

func TestDriver_RollsBackOnWriteFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs POSIX permissions enforced")
	}
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	writeFile(t, a, "[x](/guides/integrate/a)\n")

	locked := filepath.Join(dir, "locked")
	b := filepath.Join(locked, "b.md")
	writeFile(t, b, "[x](/guides/integrate/b)\n")
	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	_, err := NewDriver(Options{Rules: testRules(t)}).Run(context.Background(), []string{a, b})
	require.ErrorContains(t, err, "failed to create backup")

	assert.Equal(t, "[x](/guides/integrate/a)\n", readFile(t, a))
	_, statErr := os.Stat(a + backupSuffix)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDriver_MissingFileFailsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	writeFile(t, a, "[x](/guides/integrate/a)\n")

	_, err := NewDriver(Options{Rules: testRules(t)}).Run(context.Background(), []string{a, filepath.Join(dir, "missing.md")})
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "[x](/guides/integrate/a)\n", readFile(t, a))
}

func TestDriver_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	writeFile(t, a, "[x](/guides/integrate/a)\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDriver(Options{Rules: testRules(t)}).Run(ctx, []string{a})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "[x](/guides/integrate/a)\n", readFile(t, a))
}

func TestStaleSource(t *testing.T) {
	sources := []string{"guides/", "/apis/resources"}
	tests := []struct {
		dest string
		want string
		ok   bool
	}{
		{"/guides/start", "guides/", true},
		{"./guides/start", "guides/", true},
		{"apis/resources/admin", "/apis/resources", true},
		{"/apis/resourcesx", "", false},
		{"https://example.com/guides/start", "", false},
		{"#guides", "", false},
		{"/docs/guides", "", false},
	}
	for _, tt := range tests {
		got, ok := staleSource(tt.dest, sources)
		assert.Equal(t, tt.ok, ok, tt.dest)
		assert.Equal(t, tt.want, got, tt.dest)
	}
}
