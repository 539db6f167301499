// Package gitguard refuses in-place rewrites of files with uncommitted
// changes, so every rewrite can be reviewed and reverted with git.
package gitguard

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
)

// DirtyError lists files that have uncommitted changes.
type DirtyError struct {
	Files []string
}

func (e *DirtyError) Error() string {
	const shown = 5
	files := e.Files
	more := ""
	if len(files) > shown {
		more = fmt.Sprintf(" and %d more", len(files)-shown)
		files = files[:shown]
	}
	return fmt.Sprintf("uncommitted changes in %s%s; commit or stash them first", strings.Join(files, ", "), more)
}

// Guard checks worktree status for the repository containing Dir.
type Guard struct {
	Dir string
}

// New returns a Guard rooted at dir; the repository is found by walking up.
func New(dir string) *Guard {
	return &Guard{Dir: dir}
}

// CheckClean returns a *DirtyError when any of paths has staged, unstaged or
// untracked changes. With no paths the whole worktree is checked. A
// directory outside any git repository always passes.
func (g *Guard) CheckClean(paths []string) error {
	repo, err := git.PlainOpenWithOptions(g.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open git repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get git worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("get git status: %w", err)
	}

	var dirty []string
	if len(paths) == 0 {
		for file, st := range status {
			if changed(st) {
				dirty = append(dirty, file)
			}
		}
	} else {
		root := resolve(wt.Filesystem.Root())
		for _, p := range paths {
			rel, ok := relative(root, p)
			if !ok {
				continue
			}
			if st, found := status[rel]; found && changed(st) {
				dirty = append(dirty, p)
			}
		}
	}

	if len(dirty) == 0 {
		return nil
	}
	sort.Strings(dirty)
	return &DirtyError{Files: dirty}
}

func changed(st *git.FileStatus) bool {
	return st.Staging != git.Unmodified || st.Worktree != git.Unmodified
}

func relative(root, p string) (string, bool) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, resolve(abs))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// resolve follows symlinks where possible; temp dirs on macOS live behind one.
func resolve(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return p
}
