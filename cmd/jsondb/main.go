// Package main is the jsondb command line tool.
//
// jsondb stores whole collections of records as JSON files, optionally zstd
// compressed, under a root directory. The tool exercises a store: it writes
// demo records, benchmarks batch writes, lists and drops files, watches the
// root for changes and prints the git history of the root when enabled.
// Configuration is read from an optional YAML file; flags override it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/maruel/jsondb/internal/config"
	"github.com/maruel/jsondb/internal/history"
	"github.com/maruel/jsondb/internal/jsondb"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "jsondb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	slog.SetDefault(newLogger(os.Stderr, ll))
	return run(ctx, os.Args[1:], os.Stdout, ll)
}

const usage = `usage: jsondb [flags] <command> [args]

commands:
  demo                         save and push one record, then read them back
  bench [-n N] [-concurrency C] batch write N records, then read them all
  ls                           list the files under the root
  drop                         delete the demo slot and collection
  watch                        log every change under the root
  schema                       print the JSON Schema of the demo record
  history [-n N]               print the git history of the root
  version                      print build information

flags:
`

// run parses args and executes one command, writing its output to w.
func run(ctx context.Context, args []string, w io.Writer, ll *slog.LevelVar) error {
	fs := flag.NewFlagSet("jsondb", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	cfgPath := fs.String("config", "", "YAML configuration file")
	root := fs.String("root", jsondb.DefaultRoot, "Store root directory")
	compress := fs.Bool("compress", true, "Compress files with zstd")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	if cmd == "version" {
		printVersion(w)
		return nil
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	// Flags explicitly set on the command line win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.Root = *root
		case "compress":
			cfg.Compression = compress
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	ll.Set(lvl)

	opts := cfg.Options()
	opts.Logger = slog.Default()
	var repo *history.Repo
	if cfg.History.Enabled {
		if repo, err = history.Open(cfg.Root, cfg.History.Author, cfg.History.Email); err != nil {
			return err
		}
		opts.OnChange = repo.Record
	}
	a, err := newApp(jsondb.New(opts), repo, w)
	if err != nil {
		return err
	}

	switch cmd {
	case "demo":
		return a.demo()
	case "bench":
		return a.bench(ctx, cmdArgs)
	case "ls":
		return a.ls()
	case "drop":
		return a.drop()
	case "watch":
		return a.watch(ctx)
	case "schema":
		return a.schema()
	case "history":
		return a.history(cmdArgs)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command: %q", cmd)
	}
}

func newLogger(w *os.File, ll *slog.LevelVar) *slog.Logger {
	return slog.New(tint.NewHandler(colorable.NewColorable(w), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(w.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			skip := false
			switch t := a.Value.Any().(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func printVersion(w io.Writer) {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Fprintf(w, "jsondb %s\n", version)
	fmt.Fprintf(w, "  Go version: %s\n", goVersion)
	fmt.Fprintf(w, "  Revision:   %s\n", revision)
	if dirty {
		fmt.Fprintf(w, "  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
