package jsondb

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultRoot is the store root used when Options.Root is empty.
const DefaultRoot = "db"

// Options configures a Store.
type Options struct {
	// Root is the directory holding every file of the store. It is created on
	// first access. Defaults to DefaultRoot.
	Root string
	// Compression selects zstd-compressed ".jsondb" files instead of plain
	// ".json" files. Defaults to true when nil.
	Compression *bool
	// InPlaceWrites truncates and rewrites files directly instead of writing a
	// temporary file and renaming it. Readers can then observe torn files.
	InPlaceWrites bool
	// Logger receives a debug record per mutation. Defaults to slog.Default().
	Logger *slog.Logger
	// OnChange, if set, is called after each successful mutation while the
	// mutation lock is still held. Its error is returned to the caller; the
	// file has already been written at that point.
	OnChange func(Change) error
}

// Op names a mutating operation.
type Op string

// Mutating operations reported through Options.OnChange.
const (
	OpSave      Op = "save"
	OpPush      Op = "push"
	OpPushBatch Op = "push_batch"
	OpDrop      Op = "drop"
	OpUpdate    Op = "update"
)

// Change describes one completed mutation.
type Change struct {
	Op         Op
	ID         string
	Collection bool
	Path       string
	// N is the number of records in the file after the change.
	N int
}

// Store persists record types as whole-collection files under one root
// directory. It is safe for concurrent use by multiple goroutines.
//
// Reads take no lock and always reload from disk. Mutations are serialized
// by a single store-wide lock, so writes to different record types wait for
// each other. Every push rewrites the entire collection: cost grows linearly
// with collection size.
//
// Two Stores pointed at the same root do not coordinate.
type Store struct {
	root     string
	compress atomic.Bool
	inPlace  bool
	log      *slog.Logger
	onChange func(Change) error
	guard    guard

	mu       sync.Mutex
	bindings map[string]reflect.Type
}

// New returns a Store configured by opts. It touches no files.
func New(opts Options) *Store {
	s := &Store{
		root:     opts.Root,
		inPlace:  opts.InPlaceWrites,
		log:      opts.Logger,
		onChange: opts.OnChange,
		bindings: map[string]reflect.Type{},
	}
	if s.root == "" {
		s.root = DefaultRoot
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.compress.Store(opts.Compression == nil || *opts.Compression)
	return s
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// Compression reports whether files are currently written compressed.
func (s *Store) Compression() bool {
	return s.compressed()
}

// SetCompression switches between ".jsondb" and ".json" files. Files written
// under the other setting are left untouched and become invisible until the
// setting is switched back.
func (s *Store) SetCompression(on bool) {
	s.compress.Store(on)
}

func (s *Store) compressed() bool {
	return s.compress.Load()
}

// Transaction runs fn while holding the store's transaction lock.
//
// No two Transaction calls on the same Store overlap. Operations outside a
// Transaction are not held back by it.
func (s *Store) Transaction(fn func() error) error {
	return s.guard.transaction(fn)
}

// File is an entry of the store root.
type File struct {
	Name       string
	Path       string
	Compressed bool
	Size       int64
	// ID and Collection are set when Name matches an identity bound on this
	// Store through NewTable. ID is empty otherwise.
	ID         string
	Collection bool
}

// Files lists the slot and collection files present under the root, sorted
// by name. A missing root yields no files.
func (s *Store) Files() ([]File, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, annotate("files", s.root, err)
	}
	var out []File
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		f, ok := s.Lookup(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, annotate("files", f.Path, err)
		}
		f.Size = info.Size()
		out = append(out, f)
	}
	return out, nil
}

// Lookup classifies a base file name from the store root. It returns false
// for names that cannot be store files.
func (s *Store) Lookup(name string) (File, bool) {
	stem, compressed, ok := splitFileName(name)
	if !ok || ValidateIdentity(stem) != nil {
		return File{}, false
	}
	f := File{Name: name, Path: filepath.Join(s.root, name), Compressed: compressed}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bindings[stem]; ok {
		f.ID = stem
	} else if id, found := strings.CutSuffix(stem, "s"); found {
		if _, ok := s.bindings[id]; ok {
			f.ID = id
			f.Collection = true
		}
	}
	return f, true
}

// Identities returns the identities bound on this Store, sorted.
func (s *Store) Identities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.bindings))
	for id := range s.bindings {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// bind records that id stores values of type t.
func (s *Store) bind(id string, t reflect.Type) error {
	if err := ValidateIdentity(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.bindings[id]; ok && prev != t {
		return fmt.Errorf("%w: %q is %s, not %s", ErrIdentityConflict, id, prev, t)
	}
	s.bindings[id] = t
	return nil
}

// write stores data at path using the configured replacement strategy.
func (s *Store) write(path string, data []byte) error {
	if s.inPlace {
		return overwriteFile(path, data)
	}
	return replaceFile(path, data)
}

// changed logs and reports a completed mutation. Must be called with the
// mutation lock held.
func (s *Store) changed(c Change) error {
	s.log.Debug("jsondb", "op", string(c.Op), "id", c.ID, "path", c.Path, "n", c.N)
	if s.onChange == nil {
		return nil
	}
	if err := s.onChange(c); err != nil {
		return fmt.Errorf("change hook for %s %s: %w", c.Op, c.Path, err)
	}
	return nil
}
