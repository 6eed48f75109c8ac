// Maps record identities to files under the store root.

package jsondb

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

const (
	extPlain      = "json"
	extCompressed = "jsondb"
)

// ValidateIdentity checks that id can be used verbatim as a file name stem.
//
// Allowed characters are ASCII letters, digits, '.', '_' and '-'. The
// identity must not start with '.' so that it never names a hidden or
// relative path.
func ValidateIdentity(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIdentity)
	}
	if id[0] == '.' {
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidIdentity, id)
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return fmt.Errorf("%w: %q has invalid character %q at %d", ErrInvalidIdentity, id, c, i)
		}
	}
	return nil
}

// TypeName returns the unqualified name of T, dereferencing pointers.
//
// Two types with the same name in different packages share a TypeName, so
// using it as an identity makes them share files. Prefer a namespaced
// identity such as "billing.Invoice".
func TypeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// FileName returns the base name of the slot or collection file for id.
func FileName(id string, collection, compressed bool) string {
	ext := extPlain
	if compressed {
		ext = extCompressed
	}
	if collection {
		return id + "s." + ext
	}
	return id + "." + ext
}

// splitFileName returns the stem of a store file name and whether its
// extension marks compressed content.
func splitFileName(name string) (stem string, compressed, ok bool) {
	stem, ext, found := cutLast(name, ".")
	if !found || stem == "" {
		return "", false, false
	}
	switch ext {
	case extPlain:
	case extCompressed:
		compressed = true
	default:
		return "", false, false
	}
	return stem, compressed, true
}

// resolve returns the path of the slot or collection file for id, creating
// the root directory first if needed.
func (s *Store) resolve(id string, collection bool) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil { //nolint:gosec // G301: data directory
		return "", err
	}
	return filepath.Join(s.root, FileName(id, collection, s.compressed())), nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
