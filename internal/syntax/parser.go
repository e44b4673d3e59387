package syntax

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"treeprobe/internal/logging"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrParseAborted is returned when the engine produced no tree because the parse
// hit its deadline or was cancelled.
var ErrParseAborted = errors.New("parse aborted")

// Parser drives the tree-sitter engine for a single grammar.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser   *sitter.Parser
	language string
	timeout  time.Duration
}

// NewParser creates a parser for the named grammar.
func NewParser(language string) (*Parser, error) {
	lang, err := Language(language)
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	logging.ParseDebug("created %s parser", language)
	return &Parser{parser: p, language: strings.ToLower(language)}, nil
}

// SetTimeout bounds every subsequent Parse call on its own; zero removes the
// limit. Time spent between calls does not count.
func (p *Parser) SetTimeout(d time.Duration) {
	p.timeout = d
}

// LanguageName returns the lower-case name of the grammar this parser was created for.
func (p *Parser) LanguageName() string {
	return p.language
}

// Parse parses source. When previous is non-nil it must already carry every edit
// made to source since it was produced, and the engine reuses its unchanged
// subtrees.
func (p *Parser) Parse(ctx context.Context, source []byte, previous *SitterTree) (*SitterTree, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	var old *sitter.Tree
	if previous != nil {
		old = previous.Raw()
	}

	tree, err := p.parser.ParseCtx(ctx, old, source)
	if ctx.Err() != nil || (tree == nil && err == nil) {
		if tree != nil {
			tree.Close()
		}
		p.parser.Reset()
		cause := context.Cause(ctx)
		if cause == nil {
			cause = errors.New("engine returned no tree")
		}
		logging.Get(logging.CategoryParse).Warn("%s parse aborted after %v: %v", p.language, time.Since(start), cause)
		return nil, fmt.Errorf("%w after %v: %w", ErrParseAborted, time.Since(start).Round(time.Millisecond), cause)
	}
	if err != nil {
		return nil, fmt.Errorf("%s parse failed: %w", p.language, err)
	}

	logging.ParseDebug("%s parsed %d bytes in %v (incremental=%v)", p.language, len(source), time.Since(start), previous != nil)
	return NewSitterTree(tree), nil
}

// Close releases the engine parser.
func (p *Parser) Close() {
	p.parser.Close()
}
