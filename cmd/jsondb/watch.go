package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/maruel/jsondb/internal/jsondb"
)

// watch logs changes to store files under the root until ctx is canceled.
// Rewrites of one file are reported at most every 250ms.
func (a *app) watch(ctx context.Context) error {
	root := a.store.Root()
	if err := os.MkdirAll(root, 0o755); err != nil { //nolint:gosec // G301: data directory
		return fmt.Errorf("failed to create root: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	slog.InfoContext(ctx, "Watching", "root", root)

	throttle := map[string]*rate.Sometimes{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			f, ok := a.store.Lookup(filepath.Base(event.Name))
			if !ok {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(throttle, f.Name)
				slog.InfoContext(ctx, "Removed", "file", f.Name)
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			s := throttle[f.Name]
			if s == nil {
				s = &rate.Sometimes{First: 1, Interval: 250 * time.Millisecond}
				throttle[f.Name] = s
			}
			s.Do(func() {
				n, err := countRecords(f)
				if err != nil {
					slog.WarnContext(ctx, "Unreadable", "file", f.Name, "err", err)
					return
				}
				slog.InfoContext(ctx, "Changed", "file", f.Name, "id", f.ID, "records", n)
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Error watching root", "err", err)
		}
	}
}

// countRecords returns the number of records in f: the array length for a
// collection, 1 for a filled slot.
func countRecords(f jsondb.File) (int, error) {
	data, err := os.ReadFile(f.Path) //nolint:gosec // G304: path comes from the store root listing
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	v, ok, err := jsondb.Decode[any](data, f.Compressed)
	if err != nil || !ok {
		return 0, err
	}
	if rows, isArray := v.([]any); isArray {
		return len(rows), nil
	}
	return 1, nil
}
