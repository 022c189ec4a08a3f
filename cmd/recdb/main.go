// Package main is the entry point for the recdb command line tool.
//
// recdb loads a dataset of records into an in-memory indexed store and answers
// lookups by id, by user, and by timestamp or karma range. Configuration is
// read from CLI flags and an optional YAML config file.
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

	"github.com/maruel/recdb/internal/config"
	"github.com/maruel/recdb/internal/dataset"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "recdb: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: recdb [flags] <command> [args]\n\n")
	fmt.Fprintf(out, "commands:\n")
	fmt.Fprintf(out, "  get <id>               print the record with this id\n")
	fmt.Fprintf(out, "  user <name>            print all records of a user\n")
	fmt.Fprintf(out, "  timestamp <low> <high> print records with low <= timestamp <= high\n")
	fmt.Fprintf(out, "  karma <low> <high>     print records with low <= karma <= high\n")
	fmt.Fprintf(out, "  dump                   print all records by id\n")
	fmt.Fprintf(out, "  schema                 print the JSON schema of dataset rows\n")
	fmt.Fprintf(out, "  watch                  reload the dataset on change; read commands from stdin\n\n")
	fmt.Fprintf(out, "flags:\n")
	flag.PrintDefaults()
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "recdb.yaml", "YAML config file; ignored when missing")
	dataPath := flag.String("data", "", "Dataset file (.jsonl or .yaml); overrides config")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides config")
	limit := flag.Int("limit", 0, "Maximum number of records printed per query (0 = no limit); overrides config")
	flag.Usage = usage
	flag.Parse()

	if *version {
		printVersion()
		return nil
	}
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	slog.SetDefault(newLogger(os.Stderr, ll))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Flags explicitly set override the config file.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if set["data"] {
		cfg.Data = *dataPath
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if set["limit"] {
		cfg.Limit = *limit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	ll.Set(level)

	if args[0] == "schema" {
		data, err := dataset.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Printf("%s\n", data)
		return err
	}

	s, st, err := dataset.Build(ctx, cfg.Data)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Loaded dataset", "path", cfg.Data, "records", st.Loaded, "duplicates", st.Duplicates, "generated", st.Generated)

	if args[0] == "watch" {
		if len(args) != 1 {
			return fmt.Errorf("watch: unexpected arguments %v", args[1:])
		}
		return watch(ctx, cfg, s, os.Stdin, os.Stdout)
	}
	return query(s, os.Stdout, args, cfg.Limit)
}

func printVersion() {
	info, _ := debug.ReadBuildInfo()
	writeVersion(os.Stdout, newBuildInfo(info))
}

// buildInfo is the subset of the binary's build metadata shown by -version.
type buildInfo struct {
	version   string
	goVersion string
	revision  string
	dirty     bool
}

// newBuildInfo extracts version details from info, which may be nil when the
// binary was built without module support.
func newBuildInfo(info *debug.BuildInfo) buildInfo {
	b := buildInfo{version: "unknown", goVersion: "unknown", revision: "unknown"}
	if info == nil {
		return b
	}
	b.version = info.Main.Version
	if b.version == "" || b.version == "(devel)" {
		b.version = "dev"
	}
	b.goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.revision = setting.Value
		case "vcs.modified":
			b.dirty = setting.Value == "true"
		}
	}
	return b
}

func writeVersion(w io.Writer, b buildInfo) {
	fmt.Fprintf(w, "recdb %s\n", b.version)
	fmt.Fprintf(w, "  Go version: %s\n", b.goVersion)
	fmt.Fprintf(w, "  Revision:   %s\n", b.revision)
	if b.dirty {
		fmt.Fprintf(w, "  Modified:   true\n")
	}
}
