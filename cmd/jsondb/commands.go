// Command implementations.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/maruel/ksid"
	"golang.org/x/sync/errgroup"

	"github.com/maruel/jsondb/internal/history"
	"github.com/maruel/jsondb/internal/jsondb"
)

type app struct {
	store  *jsondb.Store
	things *jsondb.Table[Thing]
	repo   *history.Repo
	w      io.Writer
}

func newApp(s *jsondb.Store, repo *history.Repo, w io.Writer) (*app, error) {
	things, err := jsondb.NewTable[Thing](s, thingID)
	if err != nil {
		return nil, err
	}
	return &app{store: s, things: things, repo: repo, w: w}, nil
}

func (a *app) demo() error {
	t := Thing{ID: ksid.NewID(), Name: "Boss", Age: 25}
	if err := a.things.Save(t); err != nil {
		return err
	}
	if err := a.things.Push(t); err != nil {
		return err
	}
	one, ok, err := a.things.GetOne()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("slot is empty after save")
	}
	all, err := a.things.GetAll()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.w)
	enc.SetIndent("", "  ")
	fmt.Fprintln(a.w, "slot:")
	if err := enc.Encode(one); err != nil {
		return err
	}
	fmt.Fprintf(a.w, "collection (%d):\n", len(all))
	return enc.Encode(all)
}

func (a *app) bench(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	n := fs.Int("n", 1000, "Number of records to write")
	concurrency := fs.Int("concurrency", 0, "Push one record at a time from this many goroutines; 0 writes a single batch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 0 || *concurrency < 0 {
		return errors.New("-n and -concurrency must not be negative")
	}
	things := makeThings(*n)

	start := time.Now()
	if *concurrency == 0 {
		if err := a.things.PushBatch(things); err != nil {
			return err
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(*concurrency)
		for _, t := range things {
			if egCtx.Err() != nil {
				break
			}
			eg.Go(func() error {
				return a.things.Push(t)
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	wrote := time.Since(start)

	start = time.Now()
	all, err := a.things.GetAll()
	if err != nil {
		return err
	}
	read := time.Since(start)
	slog.DebugContext(ctx, "bench", "n", *n, "concurrency", *concurrency, "compression", a.store.Compression())
	fmt.Fprintf(a.w, "wrote %d records in %s\n", *n, ms(wrote))
	fmt.Fprintf(a.w, "read %d records in %s\n", len(all), ms(read))
	return nil
}

func (a *app) ls() error {
	files, err := a.store.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		kind := "-"
		switch {
		case f.ID != "" && f.Collection:
			kind = "collection"
		case f.ID != "":
			kind = "slot"
		}
		enc := "json"
		if f.Compressed {
			enc = "zstd"
		}
		fmt.Fprintf(a.w, "%-10s %-4s %10d  %s\n", kind, enc, f.Size, f.Name)
	}
	return nil
}

func (a *app) drop() error {
	if err := a.things.Drop(false); err != nil {
		return err
	}
	return a.things.Drop(true)
}

func (a *app) schema() error {
	b, err := json.MarshalIndent(a.things.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = fmt.Fprintf(a.w, "%s\n", b)
	return err
}

func (a *app) history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	n := fs.Int("n", 20, "Maximum number of commits to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.repo == nil {
		return errors.New("history is not enabled in the configuration")
	}
	var path string
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	commits, err := a.repo.Log(path, *n)
	if err != nil {
		return err
	}
	for _, c := range commits {
		fmt.Fprintf(a.w, "%s %s %s\n", c.Hash[:12], c.When.Format(time.DateTime), c.Message)
	}
	return nil
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d.Microseconds())/1000)
}
