package gitguard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitAll(t *testing.T, wt *git.Worktree) {
	t.Helper()
	_, err := wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("snapshot", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestCheckClean(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	a := filepath.Join(docs, "a.md")
	b := filepath.Join(docs, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("a\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b\n"), 0o644))
	commitAll(t, wt)

	guard := New(docs)
	require.NoError(t, guard.CheckClean([]string{a, b}))
	require.NoError(t, guard.CheckClean(nil))

	require.NoError(t, os.WriteFile(b, []byte("changed\n"), 0o644))
	require.NoError(t, guard.CheckClean([]string{a}))

	err = guard.CheckClean([]string{a, b})
	var dirty *DirtyError
	require.ErrorAs(t, err, &dirty)
	assert.Equal(t, []string{b}, dirty.Files)
	assert.Contains(t, err.Error(), "commit or stash")

	err = guard.CheckClean(nil)
	require.ErrorAs(t, err, &dirty)
	assert.Equal(t, []string{"docs/b.md"}, dirty.Files)

	untracked := filepath.Join(docs, "new.md")
	require.NoError(t, os.WriteFile(untracked, []byte("new\n"), 0o644))
	require.Error(t, guard.CheckClean([]string{untracked}))
}

func TestCheckClean_OutsideRepository(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0o644))
	assert.NoError(t, New(dir).CheckClean([]string{file}))
}

func TestDirtyError_Truncates(t *testing.T) {
	err := &DirtyError{Files: []string{"1", "2", "3", "4", "5", "6", "7"}}
	assert.Equal(t, "uncommitted changes in 1, 2, 3, 4, 5 and 2 more; commit or stash them first", err.Error())
}
