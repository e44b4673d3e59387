// Package probe runs the parse, edit, render and diagnose pipeline over source
// files and collects parse statistics.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"treeprobe/internal/diagnose"
	"treeprobe/internal/edit"
	"treeprobe/internal/logging"
	"treeprobe/internal/render"
	"treeprobe/internal/syntax"
)

// Options configures a Prober.
type Options struct {
	// Language forces a grammar; empty means detect it from the file extension.
	Language string
	// Languages maps extensions to grammar names ahead of the built-in table.
	Languages map[string]string
	// Edits are edit specs applied in order, with a re-parse after each.
	Edits []string

	Format         render.Format
	ShowAll        bool
	QuoteAnonymous bool
	Profile        termenv.Profile
	// Quiet suppresses the tree rendering.
	Quiet bool
	// Tags appends a markup rendering after the main one.
	Tags bool
	// ShowSource prints the buffer before the first edit and after every edit.
	ShowSource bool

	// PrintTime prints the summary line even for files without errors.
	PrintTime bool
	// Timeout bounds every engine parse; zero means no limit.
	Timeout time.Duration
	// MaxPathLength pads paths in summary lines so columns line up.
	MaxPathLength int
}

// DefaultOptions matches the classic parse output: annotated, every node,
// quoted anonymous kinds.
func DefaultOptions() Options {
	return Options{
		Format:         render.FormatAnnotated,
		ShowAll:        true,
		QuoteAnonymous: true,
		Profile:        termenv.Ascii,
	}
}

// Result is the outcome of probing one file.
type Result struct {
	Path     string
	Language string
	Duration time.Duration
	// Output is everything the probe printed for this file.
	Output string
	// FirstError describes the first located error, or is empty.
	FirstError string
	Edits      []syntax.EditInput
	TimedOut   bool
}

// HasError reports whether a parse error was located.
func (r *Result) HasError() bool {
	return r.FirstError != ""
}

// Prober runs probes with fixed options. It is safe for concurrent use; every
// probe builds its own engine parser.
type Prober struct {
	opts  Options
	stats *Stats
}

// New returns a Prober. stats may be nil.
func New(opts Options, stats *Stats) *Prober {
	return &Prober{opts: opts, stats: stats}
}

// ProbeFile reads path and probes its contents.
func (p *Prober) ProbeFile(ctx context.Context, path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading source file %s: %w", path, err)
	}
	return p.Probe(ctx, path, source)
}

// Probe parses source, applies the configured edits with incremental re-parses,
// renders the final tree and locates its first error. Options.Timeout bounds
// each engine parse separately; a parse that exceeds it yields a Result with
// TimedOut set and no rendering. Cancelling ctx aborts the probe with ctx's error.
func (p *Prober) Probe(ctx context.Context, path string, source []byte) (*Result, error) {
	language := p.opts.Language
	if language == "" {
		detected, err := syntax.DetectLanguage(path, p.opts.Languages)
		if err != nil {
			return nil, err
		}
		language = detected
	}

	parser, err := syntax.NewParser(language)
	if err != nil {
		return nil, err
	}
	defer parser.Close()
	parser.SetTimeout(p.opts.Timeout)

	result := &Result{Path: path, Language: parser.LanguageName()}
	var out strings.Builder
	start := time.Now()

	tree, err := parser.Parse(ctx, source, nil)
	if err != nil {
		return p.finishAborted(ctx, result, &out, start, err)
	}
	defer func() { tree.Close() }()

	if p.opts.ShowSource && len(p.opts.Edits) > 0 {
		fmt.Fprintf(&out, "BEFORE:\n%s\n", source)
	}

	reparses := 0
	final, applied, err := edit.ApplySpecs(tree, &source, p.opts.Edits, func(syntax.Tree) (syntax.Tree, error) {
		next, err := parser.Parse(ctx, source, tree)
		if err != nil {
			return nil, err
		}
		tree.Close()
		tree = next
		if p.opts.ShowSource {
			fmt.Fprintf(&out, "AFTER %d:\n%s\n", reparses, source)
		}
		reparses++
		return next, nil
	})
	result.Edits = applied
	if err != nil {
		return p.finishAborted(ctx, result, &out, start, err)
	}
	result.Duration = time.Since(start)

	if !p.opts.Quiet {
		if err := p.render(&out, final, source, p.opts.Format, p.opts.ShowAll); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if p.opts.Tags {
		if err := p.render(&out, final, source, render.FormatTags, false); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if node := diagnose.FindFirstError(final); node != nil {
		result.FirstError = diagnose.Describe(node)
	}
	if result.HasError() || p.opts.PrintTime {
		fmt.Fprintf(&out, "%-*s\t%d ms", p.opts.MaxPathLength, path, result.Duration.Milliseconds())
		if result.HasError() {
			fmt.Fprintf(&out, "\t(%s)", result.FirstError)
		}
		out.WriteString("\n")
	}

	result.Output = out.String()
	p.record(result)
	logging.ParseDebug("probed %s: %d edits, error=%q in %v", path, len(applied), result.FirstError, result.Duration)
	return result, nil
}

func (p *Prober) render(out *strings.Builder, tree syntax.Tree, source []byte, format render.Format, showAll bool) error {
	strategy, err := render.NewStrategy(format, render.Options{
		Source:         source,
		Profile:        p.opts.Profile,
		QuoteAnonymous: p.opts.QuoteAnonymous,
	})
	if err != nil {
		return err
	}
	text, err := render.Render(tree, strategy, showAll)
	if err != nil {
		return err
	}
	out.WriteString(text)
	return nil
}

// finishAborted turns an engine abort caused by the per-parse timeout into a
// timed-out Result. Cancellation of ctx itself and every other error pass through.
func (p *Prober) finishAborted(ctx context.Context, result *Result, out *strings.Builder, start time.Time, err error) (*Result, error) {
	if !errors.Is(err, syntax.ErrParseAborted) {
		return nil, fmt.Errorf("%s: %w", result.Path, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", result.Path, ctxErr)
	}
	result.TimedOut = true
	result.Duration = time.Since(start)
	if p.opts.PrintTime {
		fmt.Fprintf(out, "%-*s\t%d ms (timed out)\n", p.opts.MaxPathLength, result.Path, result.Duration.Milliseconds())
	}
	result.Output = out.String()
	p.record(result)
	logging.Get(logging.CategoryParse).Warn("%s: %v", result.Path, err)
	return result, nil
}

func (p *Prober) record(result *Result) {
	if p.stats != nil {
		p.stats.Record(result)
	}
}
