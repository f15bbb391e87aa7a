// Command splitzip archives files and directories into multi-volume
// ("split") zip archives sized for fixed-capacity media and upload limits.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/meigma/splitzip"
)

const rootUsage = `splitzip writes multi-volume ("split") zip archives.

Usage:
  splitzip create -o OUT.zip -s SIZE [flags] PATH...
  splitzip --version

Commands:
  create   archive the given paths into split volumes

Run 'splitzip create --help' for the create flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		// Library errors already carry the module prefix; strip it so
		// the tool name appears once.
		msg := strings.TrimPrefix(err.Error(), "splitzip: ")
		fmt.Fprintf(os.Stderr, "splitzip: %s\n", msg)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return errors.New("command required")
	}
	switch args[0] {
	case "create":
		return runCreate(args[1:])
	case "help", "-h", "--help":
		fmt.Print(rootUsage)
		return nil
	case "version", "--version":
		fmt.Println(versionString())
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\nRun 'splitzip --help' for usage.", args[0])
	}
}

type createConfig struct {
	output    string
	sizeSpec  string
	store     bool
	level     int
	noRecurse bool
	quiet     bool
	debug     bool
}

func runCreate(args []string) error {
	var cfg createConfig

	flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.SetOutput(io.Discard)
	flags.StringVarP(&cfg.output, "output", "o", "", "path of the final .zip volume (required)")
	flags.StringVarP(&cfg.sizeSpec, "split-size", "s", "", `volume capacity, e.g. "100MB" or "64KiB" (required)`)
	flags.BoolVarP(&cfg.store, "store", "0", false, "store entries without compression")
	flags.IntVarP(&cfg.level, "level", "l", splitzip.DefaultLevel, "deflate compression level (1-9)")
	flags.BoolVar(&cfg.noRecurse, "no-recursive", false, "do not descend into directories")
	flags.BoolVarP(&cfg.quiet, "quiet", "q", false, "suppress progress and summary output")
	flags.BoolVar(&cfg.debug, "debug", false, "enable debug logging")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printCreateUsage(flags)
			return nil
		}
		return fmt.Errorf("%w\n\nRun 'splitzip create --help' for usage.", err)
	}

	sources := flags.Args()
	switch {
	case cfg.output == "":
		return errors.New("create: --output is required")
	case cfg.sizeSpec == "":
		return errors.New("create: --split-size is required")
	case len(sources) == 0:
		return errors.New("create: at least one PATH is required")
	case cfg.store && flags.Changed("level"):
		return errors.New("create: --store and --level are mutually exclusive")
	}

	splitSize, err := splitzip.ParseSize(cfg.sizeSpec)
	if err != nil {
		return err
	}

	// Catch missing sources before any volume file is created.
	for _, src := range sources {
		if _, err := os.Lstat(src); err != nil {
			return err
		}
	}

	return create(cfg, splitSize, sources)
}

func printCreateUsage(flags *pflag.FlagSet) {
	fmt.Printf("Usage:\n  splitzip create -o OUT.zip -s SIZE [flags] PATH...\n\nFlags:\n%s", flags.FlagUsages())
}

func create(cfg createConfig, splitSize int64, sources []string) error {
	status := newStatusLine(os.Stderr, !cfg.quiet)
	logger := newLogger(cfg.debug, cfg.quiet)

	opts := []splitzip.Option{
		splitzip.WithLogger(logger),
		splitzip.WithLevel(cfg.level),
	}
	if cfg.store {
		opts = append(opts, splitzip.WithMethod(splitzip.Store))
	}
	if status.enabled {
		opts = append(opts, splitzip.WithProgress(status.progress))
	}

	w, err := splitzip.NewWriter(cfg.output, splitSize, opts...)
	if err != nil {
		return err
	}

	var addOpts []splitzip.AddOption
	if cfg.noRecurse {
		addOpts = append(addOpts, splitzip.AddWithoutRecursion())
	}

	for _, src := range sources {
		if err := w.Add(src, addOpts...); err != nil {
			status.clear()
			return errors.Join(err, w.Abort())
		}
	}

	volumes, err := w.Close()
	status.clear()
	if err != nil {
		return errors.Join(err, w.Abort())
	}

	if cfg.quiet {
		return nil
	}
	return printSummary(os.Stdout, volumes, len(w.Entries()))
}

func printSummary(out io.Writer, volumes []string, entries int) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	var total int64
	for _, path := range volumes {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		total += info.Size()
		fmt.Fprintf(tw, "%s\t%s\n", path, splitzip.FormatSize(info.Size()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%s, %s, %s total\n",
		count(entries, "entry", "entries"),
		count(len(volumes), "volume", "volumes"),
		splitzip.FormatSize(total))
	return err
}

func count(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// versionString reports the module version recorded by the Go toolchain.
// Builds from 'go install github.com/meigma/splitzip/cmd/splitzip@vX.Y.Z'
// carry the tagged version; source builds report (devel).
func versionString() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return "splitzip " + info.Main.Version
	}
	return "splitzip (devel)"
}
