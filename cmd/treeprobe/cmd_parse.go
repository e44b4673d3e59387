package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"treeprobe/internal/config"
	"treeprobe/internal/logging"
	"treeprobe/internal/probe"
)

// errParseFailures makes the process exit non-zero after every file was
// reported. The summary lines already say what failed.
var errParseFailures = errors.New("one or more files failed to parse cleanly")

type parseFlags struct {
	edits       []string
	format      string
	all         bool
	quiet       bool
	printTime   bool
	timeout     string
	tags        bool
	lang        string
	color       string
	stat        bool
	metricsFile string
	showSource  bool
	workers     int
	pathsFile   string
}

func newParseCmd() *cobra.Command {
	var f parseFlags
	cmd := &cobra.Command{
		Use:   "parse [paths...]",
		Short: "Parse files, apply edits and print their syntax trees",
		Long: `Parses each file, applies every --edit in order with an incremental re-parse
after each one, prints the final tree and reports the first parse error.

Edit strings have the form '<START_BYTE_OR_POSITION> <REMOVED_LENGTH> <NEW_TEXT>'
where the position is a byte offset, a 'row,column' pair or '$' for the end of
the file.

Examples:
  treeprobe parse main.go
  treeprobe parse --format sexp --edit '$ 0 }' main.go
  treeprobe parse --quiet --time --stat src/*.rs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.edits, "edit", "e", nil, "Apply an edit before printing (repeatable)")
	flags.StringVarP(&f.format, "format", "f", "", "Output format: annotated, sexp, kinds, xml")
	flags.BoolVarP(&f.all, "all", "a", false, "Include anonymous nodes")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "Do not print the tree")
	flags.BoolVarP(&f.printTime, "time", "t", false, "Print a timing line for every file")
	flags.StringVar(&f.timeout, "timeout", "", "Abort each parse after this long (bare numbers are microseconds)")
	flags.BoolVarP(&f.tags, "xml", "x", false, "Also print the tree as markup")
	flags.StringVarP(&f.lang, "lang", "l", "", "Grammar to use instead of detecting it from the extension")
	flags.StringVar(&f.color, "color", "", "Color output: auto, always, never")
	flags.BoolVarP(&f.stat, "stat", "s", false, "Print parse statistics after all files")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write parse metrics in Prometheus text format to this file")
	flags.BoolVar(&f.showSource, "show-source", false, "Print the source before and after every edit")
	flags.IntVarP(&f.workers, "workers", "j", 0, "Files parsed in parallel (default from config)")
	flags.StringVar(&f.pathsFile, "paths", "", "File listing paths to parse, one per line")
	return cmd
}

func runParse(cmd *cobra.Command, f parseFlags, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Render.Format = f.format
	}
	if flags.Changed("all") {
		cfg.Render.ShowAll = f.all
	}
	if flags.Changed("color") {
		cfg.Render.Color = f.color
	}
	if flags.Changed("timeout") {
		cfg.Parse.Timeout = f.timeout
	}
	if flags.Changed("lang") {
		cfg.Parse.Language = f.lang
	}
	if flags.Changed("workers") {
		cfg.Parse.Workers = f.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	paths := args
	if f.pathsFile != "" {
		listed, err := readPathsFile(f.pathsFile)
		if err != nil {
			return err
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files")
	}

	opts, err := proberOptions(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	opts.Edits = f.edits
	opts.Quiet = f.quiet
	opts.PrintTime = f.printTime
	opts.Tags = f.tags
	opts.ShowSource = f.showSource
	opts.MaxPathLength = probe.MaxPathLength(paths)

	stats := probe.NewStats()
	p := probe.New(opts, stats)
	results, err := p.ProbeFiles(cmd.Context(), paths, cfg.Parse.Workers, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if f.stat {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", stats)
	}
	if f.metricsFile != "" {
		if err := stats.WriteTextfile(f.metricsFile); err != nil {
			return err
		}
		logging.Get(logging.CategoryStats).Info("wrote metrics to %s", f.metricsFile)
	}

	for _, r := range results {
		if r.HasError() || r.TimedOut {
			return errParseFailures
		}
	}
	return nil
}

// proberOptions maps the render and parse sections of c onto probe options.
func proberOptions(c *config.Config, out io.Writer) (probe.Options, error) {
	opts := probe.DefaultOptions()

	format, err := c.RenderFormat()
	if err != nil {
		return opts, err
	}
	timeout, err := c.ParseTimeout()
	if err != nil {
		return opts, err
	}

	opts.Format = format
	opts.ShowAll = c.Render.ShowAll
	opts.QuoteAnonymous = c.Render.QuoteAnonymous
	opts.Profile = colorProfile(c.Render.Color, out)
	opts.Timeout = timeout
	opts.Language = c.Parse.Language
	opts.Languages = c.Languages
	return opts, nil
}

func colorProfile(mode string, out io.Writer) termenv.Profile {
	switch mode {
	case "always":
		return termenv.TrueColor
	case "never":
		return termenv.Ascii
	}
	return termenv.NewOutput(out).EnvColorProfile()
}

func readPathsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read paths file: %w", err)
	}
	defer file.Close()

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read paths file: %w", err)
	}
	return paths, nil
}
