package render

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// Format names an output encoding.
type Format string

const (
	FormatAnnotated Format = "annotated"
	FormatRanges    Format = "sexp"
	FormatKinds     Format = "kinds"
	FormatTags      Format = "xml"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatAnnotated, FormatRanges, FormatKinds, FormatTags}
}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(names, ", "))
}

// Options configures NewStrategy.
type Options struct {
	// Source is the buffer the tree was parsed from. Annotated output omits
	// inline text without it; tag output requires it.
	Source []byte
	// Profile selects the color profile for annotated output.
	Profile termenv.Profile
	// QuoteAnonymous renders anonymous kinds as string literals in annotated output.
	QuoteAnonymous bool
}

// NewStrategy builds a fresh strategy for one traversal. Strategies may keep
// state between steps and must not be shared between walks.
func NewStrategy(format Format, opts Options) (Strategy, error) {
	switch format {
	case FormatAnnotated:
		return NewAnnotated(NewPalette(opts.Profile), opts.Source).QuoteAnonymous(opts.QuoteAnonymous), nil
	case FormatRanges:
		return Ranges{}, nil
	case FormatKinds:
		return Kinds{}, nil
	case FormatTags:
		if opts.Source == nil {
			return nil, fmt.Errorf("%s output needs the source buffer", format)
		}
		return NewTags(opts.Source), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
