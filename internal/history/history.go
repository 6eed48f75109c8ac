// Package history records every store mutation as a git commit in the store
// root, using go-git (pure Go, no git binary dependency).
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/maruel/jsondb/internal/jsondb"
)

// Repo is a git repository whose work tree is a store root.
type Repo struct {
	dir   string
	name  string
	email string

	mu   sync.Mutex
	repo *gogit.Repository
}

// Commit is one entry of the history.
type Commit struct {
	Hash    string
	Message string
	Author  string
	When    time.Time
}

// Open opens the repository in dir, initializing it if needed. name and
// email sign the commits.
func Open(dir, name, email string) (*Repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: data directory
		return nil, fmt.Errorf("failed to create repo directory: %w", err)
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		if !errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("failed to open git repo: %w", err)
		}
		if repo, err = gogit.PlainInit(dir, false); err != nil {
			return nil, fmt.Errorf("failed to initialize git repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = name
		cfg.User.Email = email
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &Repo{dir: dir, name: name, email: email, repo: repo}, nil
}

// Record commits the file touched by c. It has the signature of
// jsondb.Options.OnChange.
func (r *Repo) Record(c jsondb.Change) error {
	rel, err := filepath.Rel(r.dir, c.Path)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("%s %s", c.Op, rel)
	if c.Op != jsondb.OpDrop {
		msg += fmt.Sprintf(" (%d records)", c.N)
	}
	return r.Commit(msg, filepath.ToSlash(rel))
}

// Commit stages files, relative to the repository root, and commits them.
// Files that no longer exist are removed from the index. Nothing is
// committed when the files are unchanged.
func (r *Repo) Commit(msg string, files ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(r.dir, filepath.FromSlash(f))); err == nil {
			if _, err := w.Add(f); err != nil {
				return fmt.Errorf("failed to stage %s: %w", f, err)
			}
			continue
		}
		if _, err := w.Remove(f); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
			return fmt.Errorf("failed to unstage %s: %w", f, err)
		}
	}
	status, err := w.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	if !staged(status) {
		return nil
	}
	now := time.Now()
	sig := &object.Signature{Name: r.name, Email: r.email, When: now}
	if _, err := w.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Log returns up to n commits, newest first, touching path if not empty.
func (r *Repo) Log(path string, n int) ([]Commit, error) {
	if n <= 0 || n > 1000 {
		n = 1000
	}
	opts := &gogit.LogOptions{}
	if path != "" && path != "." {
		opts.FileName = &path
	}
	iter, err := r.repo.Log(opts)
	if err != nil {
		// No commits yet.
		return nil, nil
	}
	defer iter.Close()

	var commits []Commit
	for range n {
		c, err := iter.Next()
		if err != nil {
			break
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Message: subject,
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
	}
	return commits, nil
}

func staged(s gogit.Status) bool {
	for _, fs := range s {
		if fs.Staging != gogit.Unmodified && fs.Staging != gogit.Untracked {
			return true
		}
	}
	return false
}
