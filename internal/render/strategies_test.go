package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeprobe/internal/syntax"
	"treeprobe/internal/syntax/syntaxtest"
)

// incompleteSum is the tree an engine recovers from "1+": the right operand is
// a zero-width missing identifier.
func incompleteSum() ([]byte, *syntaxtest.Tree) {
	source := []byte("1+")
	root := syntaxtest.Named("program", 0, 2,
		syntaxtest.Named("expression_statement", 0, 2,
			syntaxtest.Named("binary_expression", 0, 2,
				syntaxtest.Named("number", 0, 1).Field("left"),
				syntaxtest.Anon("+", 1, 2).Field("operator"),
				syntaxtest.Missing("identifier", true, 2).Field("right"),
			),
		),
	)
	return source, syntaxtest.NewTree(source, root)
}

func TestRanges_IncompleteSum(t *testing.T) {
	_, tree := incompleteSum()
	out, err := Render(tree, Ranges{}, false)
	require.NoError(t, err)

	want := `(program [0, 0] - [0, 2]
  (expression_statement [0, 0] - [0, 2]
    (binary_expression [0, 0] - [0, 2]
      left: (number [0, 0] - [0, 1])
      right: (MISSING identifier [0, 2] - [0, 2])))))
`
	assert.Equal(t, want, out)
}

func TestRanges_ShowAll(t *testing.T) {
	_, tree := incompleteSum()
	out, err := Render(tree, Ranges{}, true)
	require.NoError(t, err)
	assert.Contains(t, out, "      operator: (+ [0, 1] - [0, 2])\n")
}

func TestKinds(t *testing.T) {
	_, tree := incompleteSum()

	out, err := Render(tree, Kinds{}, false)
	require.NoError(t, err)
	assert.Equal(t, "program\n  expression_statement\n    binary_expression\n      left: number\n      right: identifier\n", out)

	out, err = Render(tree, Kinds{}, true)
	require.NoError(t, err)
	assert.Equal(t, "program\n  expression_statement\n    binary_expression\n      left: number\n      operator: +\n      right: identifier\n", out)
}

func TestAnnotated_Plain(t *testing.T) {
	source, tree := incompleteSum()
	strategy := NewAnnotated(NewPalette(termenv.Ascii), source).QuoteAnonymous(true)

	out, err := Render(tree, strategy, true)
	require.NoError(t, err)

	want := strings.Join([]string{
		"0:0  - 0:2    program",
		"0:0  - 0:2      expression_statement",
		"0:0  - 0:2        binary_expression",
		"0:0  - 0:1          left: number `1`",
		`0:1  - 0:2          operator: "+"`,
		"0:2  - 0:2          right: MISSING identifier ``",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestAnnotated_UnquotedWithoutSource(t *testing.T) {
	_, tree := incompleteSum()
	out, err := Render(tree, NewAnnotated(NewPalette(termenv.Ascii), nil), true)
	require.NoError(t, err)
	assert.Contains(t, out, "operator: +\n")
	assert.NotContains(t, out, "`")
}

func TestAnnotated_EscapesAnonymousKinds(t *testing.T) {
	source := []byte("a\n\"\tb")
	root := syntaxtest.Named("document", 0, 5,
		syntaxtest.Named("word", 0, 1),
		syntaxtest.Anon("\n", 1, 2),
		syntaxtest.Anon(`"`, 2, 3),
		syntaxtest.Anon("\t", 3, 4),
		syntaxtest.Named("word", 4, 5),
	)
	tree := syntaxtest.NewTree(source, root)

	out, err := Render(tree, NewAnnotated(NewPalette(termenv.Ascii), source).QuoteAnonymous(true), true)
	require.NoError(t, err)
	assert.Contains(t, out, `"\n"`)
	assert.Contains(t, out, `"\""`)
	assert.Contains(t, out, `"\t"`)
	assert.Equal(t, 6, strings.Count(out, "\n"), "escaped kinds must not break lines")
}

func TestAnnotated_SourceOnlyForSingleRowLeaves(t *testing.T) {
	source := []byte("s = \"a\nb\"\nt = 1")
	root := syntaxtest.Named("module", 0, len(source),
		syntaxtest.Named("assignment", 0, 9,
			syntaxtest.Named("identifier", 0, 1).Field("left"),
			syntaxtest.Anon("=", 2, 3),
			syntaxtest.Named("string", 4, 9).Field("right"),
		),
		syntaxtest.Named("assignment", 10, 15,
			syntaxtest.Named("identifier", 10, 11).Field("left"),
			syntaxtest.Anon("=", 12, 13),
			syntaxtest.Named("integer", 14, 15).Field("right"),
		),
	)
	tree := syntaxtest.NewTree(source, root)

	out, err := Render(tree, NewAnnotated(NewPalette(termenv.Ascii), source), false)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)

	assert.True(t, strings.HasSuffix(lines[2], "left: identifier `s`"), lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "right: string"), "multi-row string gets no inline text: %q", lines[3])
	assert.True(t, strings.HasSuffix(lines[4], "assignment"), "single-row node with named children gets no inline text: %q", lines[4])
	assert.True(t, strings.HasSuffix(lines[6], "right: integer `1`"), lines[6])
}

func TestAnnotated_ColorsNewRows(t *testing.T) {
	source := []byte("a\nb")
	root := syntaxtest.Named("module", 0, 3,
		syntaxtest.Named("word", 0, 1),
		syntaxtest.Named("word", 2, 3),
	)
	tree := syntaxtest.NewTree(source, root)

	out, err := Render(tree, NewAnnotated(NewPalette(termenv.TrueColor), source), false)
	require.NoError(t, err)

	lineColor := "38;2;122;209;143"
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], lineColor, "first row starts")
	assert.NotContains(t, lines[1], lineColor, "still on row 0")
	assert.Contains(t, lines[2], lineColor, "row 1 starts")
	assert.Contains(t, out, "\x1b[")
}

func TestTags(t *testing.T) {
	source, tree := incompleteSum()

	want := `<program>
  <expression_statement>
    <binary_expression>
      <number type="left">1</number>
      <identifier type="right"></identifier>
    </binary_expression>
  </expression_statement>
</program>
`
	for _, showAll := range []bool{false, true} {
		out, err := Render(tree, NewTags(source), showAll)
		require.NoError(t, err)
		assert.Equal(t, want, out, "showAll=%v", showAll)
	}
}

func TestTags_EscapesText(t *testing.T) {
	source := []byte(`a<b && "c"`)
	root := syntaxtest.Named("expression", 0, len(source),
		syntaxtest.Named("comparison", 0, 3),
		syntaxtest.Anon("&&", 4, 6),
		syntaxtest.Named("string", 7, 10, syntaxtest.Anon(`"`, 7, 8), syntaxtest.Anon(`"`, 9, 10)),
	)
	tree := syntaxtest.NewTree(source, root)

	out, err := Render(tree, NewTags(source), false)
	require.NoError(t, err)
	assert.Contains(t, out, "<comparison>a&lt;b</comparison>")
	assert.Contains(t, out, "<string>&#34;c&#34;</string>")
	assert.NotContains(t, out, "&amp;&amp;", "anonymous nodes are omitted")
}

func TestSpanErrors(t *testing.T) {
	tests := []struct {
		name   string
		source []byte
	}{
		{"range past end of buffer", []byte("ab")},
		{"invalid utf-8", []byte("a\xffc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := syntaxtest.Named("doc", 0, 3, syntaxtest.Named("word", 0, 3))
			tree := syntaxtest.NewTree([]byte("abc"), root)

			for _, strategy := range []Strategy{
				NewTags(tt.source),
				NewAnnotated(NewPalette(termenv.Ascii), tt.source),
			} {
				out, err := Render(tree, strategy, false)
				assert.Empty(t, out)
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidSpan))

				var span *SpanError
				require.True(t, errors.As(err, &span))
				assert.Equal(t, "word", span.Kind)
			}
		})
	}
}

func TestNewStrategy(t *testing.T) {
	for _, f := range Formats() {
		s, err := NewStrategy(f, Options{Source: []byte("x"), Profile: termenv.Ascii})
		require.NoError(t, err, f)
		assert.NotNil(t, s)
	}

	_, err := NewStrategy(FormatTags, Options{})
	assert.Error(t, err)

	f, err := ParseFormat("SEXP")
	require.NoError(t, err)
	assert.Equal(t, FormatRanges, f)

	_, err = ParseFormat("json")
	assert.Error(t, err)
}

func TestRanges_RealEngine(t *testing.T) {
	parser, err := syntax.NewParser("go")
	require.NoError(t, err)
	defer parser.Close()

	tree, err := parser.Parse(context.Background(), []byte("package main\n"), nil)
	require.NoError(t, err)
	defer tree.Close()

	out, err := Render(tree, Ranges{}, false)
	require.NoError(t, err)
	assert.Equal(t, `(source_file [0, 0] - [1, 0]
  (package_clause [0, 0] - [0, 12]
    (package_identifier [0, 8] - [0, 12])))
`, out)
}
