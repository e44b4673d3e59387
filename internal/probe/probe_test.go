package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeprobe/internal/edit"
	"treeprobe/internal/render"
	"treeprobe/internal/syntax"
)

func newTestProber(mutate func(*Options)) (*Prober, *Stats) {
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	stats := NewStats()
	return New(opts, stats), stats
}

func TestProbe_CleanFileQuiet(t *testing.T) {
	p, stats := newTestProber(func(o *Options) { o.Quiet = true })

	result, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
	require.NoError(t, err)

	assert.Equal(t, "go", result.Language)
	assert.Empty(t, result.Output)
	assert.False(t, result.HasError())
	assert.False(t, result.TimedOut)
	assert.Equal(t, 1, stats.Successful())
}

func TestProbe_RangesRendering(t *testing.T) {
	p, _ := newTestProber(func(o *Options) {
		o.Format = render.FormatRanges
		o.ShowAll = false
	})

	result, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
	require.NoError(t, err)

	want := "(source_file [0, 0] - [1, 0]\n" +
		"  (package_clause [0, 0] - [0, 12]\n" +
		"    (package_identifier [0, 8] - [0, 12])))\n"
	assert.Equal(t, want, result.Output)
}

func TestProbe_EditIntroducesError(t *testing.T) {
	p, stats := newTestProber(func(o *Options) {
		o.Quiet = true
		o.Edits = []string{"2 1"}
	})

	result, err := p.Probe(context.Background(), "sum.js", []byte("1+2\n"))
	require.NoError(t, err)

	require.Len(t, result.Edits, 1)
	assert.Equal(t, 2, result.Edits[0].StartByte)
	assert.Equal(t, 3, result.Edits[0].OldEndByte)
	assert.Equal(t, 2, result.Edits[0].NewEndByte)

	require.True(t, result.HasError())
	assert.Regexp(t, `^sum\.js\t\d+ ms\t\(.+\)\n$`, result.Output)
	assert.Equal(t, 0, stats.Successful())
	assert.Equal(t, 1, stats.Total())
}

func TestProbe_PrintTimePadsPath(t *testing.T) {
	p, _ := newTestProber(func(o *Options) {
		o.Quiet = true
		o.PrintTime = true
		o.MaxPathLength = 10
	})

	result, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
	require.NoError(t, err)
	assert.Regexp(t, `^main\.go   \t\d+ ms\n$`, result.Output)
}

func TestProbe_ShowSource(t *testing.T) {
	p, _ := newTestProber(func(o *Options) {
		o.Quiet = true
		o.ShowSource = true
		o.Edits = []string{"0 0 //c\n", "$ 0 var x = 1\n"}
	})

	result, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
	require.NoError(t, err)

	want := "BEFORE:\npackage main\n\n" +
		"AFTER 0:\n//c\npackage main\n\n" +
		"AFTER 1:\n//c\npackage main\nvar x = 1\n\n"
	assert.Equal(t, want, result.Output)
	assert.False(t, result.HasError())
}

func TestProbe_TagsDumpFollowsRendering(t *testing.T) {
	p, _ := newTestProber(func(o *Options) {
		o.Format = render.FormatKinds
		o.ShowAll = false
		o.Tags = true
	})

	result, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
	require.NoError(t, err)

	assert.Contains(t, result.Output, "source_file\n  package_clause\n    package_identifier\n")
	assert.Contains(t, result.Output, `<package_identifier>main</package_identifier>`)
}

func TestProbe_Errors(t *testing.T) {
	t.Run("malformed edit", func(t *testing.T) {
		p, _ := newTestProber(func(o *Options) { o.Edits = []string{"abc"} })
		_, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
		require.ErrorIs(t, err, edit.ErrMalformedSpec)
		assert.Contains(t, err.Error(), "'abc'")
	})

	t.Run("edit out of range", func(t *testing.T) {
		p, _ := newTestProber(func(o *Options) { o.Edits = []string{"100 1 x"} })
		_, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
		require.ErrorIs(t, err, edit.ErrEditOutOfRange)
	})

	t.Run("unknown language", func(t *testing.T) {
		p, _ := newTestProber(nil)
		_, err := p.Probe(context.Background(), "notes.txt", []byte("hello"))
		require.ErrorIs(t, err, syntax.ErrUnknownLanguage)
	})

	t.Run("missing file", func(t *testing.T) {
		p, _ := newTestProber(nil)
		_, err := p.ProbeFile(context.Background(), filepath.Join(t.TempDir(), "absent.go"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestProbe_LanguageOverrides(t *testing.T) {
	p, _ := newTestProber(func(o *Options) {
		o.Quiet = true
		o.Languages = map[string]string{".tmpl": "Go"}
	})

	result, err := p.Probe(context.Background(), "main.tmpl", []byte("package main\n"))
	require.NoError(t, err)
	assert.Equal(t, "go", result.Language)
}

func TestProbe_CancelledContextIsAnError(t *testing.T) {
	p, stats := newTestProber(func(o *Options) { o.PrintTime = true })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Probe(ctx, "main.go", []byte("package main\n"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Equal(t, 0, stats.Total())
}

func TestProbe_ParseTimeoutMarksResult(t *testing.T) {
	p, stats := newTestProber(func(o *Options) {
		o.PrintTime = true
		o.MaxPathLength = 7
		o.Timeout = time.Nanosecond
	})

	result, err := p.Probe(context.Background(), "main.go", []byte("package main\n"))
	require.NoError(t, err)

	assert.True(t, result.TimedOut)
	assert.Regexp(t, `^main\.go\t\d+ ms \(timed out\)\n$`, result.Output)
	assert.Equal(t, 1, stats.Total())
	assert.Equal(t, 0, stats.Successful())
}

func TestProbe_TimeoutBoundsEachParse(t *testing.T) {
	if testing.Short() {
		t.Skip("parses a large buffer many times")
	}
	source := []byte(strings.Repeat("var a = [1, 2, 3].map(function (x) { return x * 2; });\n", 6000))

	parser, err := syntax.NewParser("javascript")
	require.NoError(t, err)
	start := time.Now()
	tree, err := parser.Parse(context.Background(), source, nil)
	require.NoError(t, err)
	single := time.Since(start)
	tree.Close()
	parser.Close()

	// Opening a comment at the top and closing it again costs a re-parse each
	// time; together they outlast any one parse by a wide margin.
	var edits []string
	for i := 0; i < 100; i++ {
		edits = append(edits, "0 0 /*", "0 2 ")
	}
	timeout := 2 * single
	p, _ := newTestProber(func(o *Options) {
		o.Quiet = true
		o.Timeout = timeout
		o.Edits = edits
	})

	result, err := p.Probe(context.Background(), "big.js", source)
	require.NoError(t, err)
	if result.Duration <= timeout {
		t.Skipf("re-parses finished in %v, within a single %v timeout", result.Duration, timeout)
	}
	assert.False(t, result.TimedOut)
	assert.False(t, result.HasError())
	assert.Len(t, result.Edits, len(edits))
}
