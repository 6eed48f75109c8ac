package jsondb

import (
	"path/filepath"
	"reflect"
)

// Table is the view of one record type on a Store.
//
// T is any type encoding/json can round-trip. A Table owns two files: the
// slot, holding at most one value and replaced by Save, and the collection,
// an ordered list appended to by Push and PushBatch. They are independent.
type Table[T any] struct {
	s  *Store
	id string
}

// NewTable binds T to id on s.
//
// id names the files, so it must be stable across releases and unique among
// the record types sharing the root. Binding an id already bound to a
// different type on s fails with ErrIdentityConflict.
func NewTable[T any](s *Store, id string) (*Table[T], error) {
	if err := s.bind(id, reflect.TypeFor[T]()); err != nil {
		return nil, err
	}
	return &Table[T]{s: s, id: id}, nil
}

// ID returns the identity the table is bound to.
func (t *Table[T]) ID() string {
	return t.id
}

// Store returns the Store the table is bound to.
func (t *Table[T]) Store() *Store {
	return t.s
}

// Path returns the current path of the slot or collection file.
func (t *Table[T]) Path(collection bool) string {
	return filepath.Join(t.s.root, FileName(t.id, collection, t.s.compressed()))
}

// GetOne returns the slot value, or false if it was never saved or has been
// dropped.
func (t *Table[T]) GetOne() (T, bool, error) {
	var zero T
	path, err := t.s.resolve(t.id, false)
	if err != nil {
		return zero, false, annotate("get_one", path, err)
	}
	v, ok, err := t.load(path)
	if err != nil {
		return zero, false, annotate("get_one", path, err)
	}
	return v, ok, nil
}

// GetAll returns the collection in insertion order. A missing or empty file
// yields an empty, non-nil slice.
func (t *Table[T]) GetAll() ([]T, error) {
	path, err := t.s.resolve(t.id, true)
	if err != nil {
		return nil, annotate("get_all", path, err)
	}
	rows, err := t.loadAll(path)
	if err != nil {
		return nil, annotate("get_all", path, err)
	}
	return rows, nil
}

// Save replaces the slot with v. The collection is not touched.
func (t *Table[T]) Save(v T) error {
	return t.s.guard.mutate(func() error {
		path, err := t.s.resolve(t.id, false)
		if err != nil {
			return annotate("save", path, err)
		}
		data, err := Encode(v, isCompressedPath(path))
		if err != nil {
			return annotate("save", path, err)
		}
		if err := t.s.write(path, data); err != nil {
			return annotate("save", path, err)
		}
		return t.s.changed(Change{Op: OpSave, ID: t.id, Path: path, N: 1})
	})
}

// Push appends v to the collection.
//
// The whole collection is loaded, extended and written back.
func (t *Table[T]) Push(v T) error {
	return t.appendRows(OpPush, []T{v})
}

// PushBatch appends rows to the collection, in order, with a single rewrite.
func (t *Table[T]) PushBatch(rows []T) error {
	return t.appendRows(OpPushBatch, rows)
}

// Drop removes the collection file if collection is set, the slot file
// otherwise. Dropping a missing file succeeds.
func (t *Table[T]) Drop(collection bool) error {
	return t.s.guard.mutate(func() error {
		path, err := t.s.resolve(t.id, collection)
		if err != nil {
			return annotate("drop", path, err)
		}
		if err := removeFile(path); err != nil {
			return annotate("drop", path, err)
		}
		return t.s.changed(Change{Op: OpDrop, ID: t.id, Collection: collection, Path: path})
	})
}

// Update runs fn on the loaded collection and writes back the slice it
// returns, under the mutation lock. It is the general form of PushBatch for
// callers that need to rewrite or filter rows.
func (t *Table[T]) Update(fn func(rows []T) ([]T, error)) error {
	return t.s.guard.mutate(func() error {
		path, err := t.s.resolve(t.id, true)
		if err != nil {
			return annotate("update", path, err)
		}
		rows, err := t.loadAll(path)
		if err != nil {
			return annotate("update", path, err)
		}
		if rows, err = fn(rows); err != nil {
			return err
		}
		if err := t.store(path, rows); err != nil {
			return annotate("update", path, err)
		}
		return t.s.changed(Change{Op: OpUpdate, ID: t.id, Collection: true, Path: path, N: len(rows)})
	})
}

//

func (t *Table[T]) appendRows(op Op, add []T) error {
	return t.s.guard.mutate(func() error {
		path, err := t.s.resolve(t.id, true)
		if err != nil {
			return annotate(string(op), path, err)
		}
		rows, err := t.loadAll(path)
		if err != nil {
			return annotate(string(op), path, err)
		}
		rows = append(rows, add...)
		if err := t.store(path, rows); err != nil {
			return annotate(string(op), path, err)
		}
		return t.s.changed(Change{Op: op, ID: t.id, Collection: true, Path: path, N: len(rows)})
	})
}

func (t *Table[T]) load(path string) (T, bool, error) {
	data, err := readFile(path)
	if err != nil {
		var zero T
		return zero, false, err
	}
	// The extension is derived from the compression flag, so the flag that
	// picked the path is the one that wrote the file.
	return Decode[T](data, isCompressedPath(path))
}

func (t *Table[T]) loadAll(path string) ([]T, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	rows, _, err := Decode[[]T](data, isCompressedPath(path))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (t *Table[T]) store(path string, rows []T) error {
	data, err := Encode(rows, isCompressedPath(path))
	if err != nil {
		return err
	}
	return t.s.write(path, data)
}

func isCompressedPath(path string) bool {
	return filepath.Ext(path) == "."+extCompressed
}
