package preproc

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/txtplus/internal/config"
	"github.com/jcorbin/txtplus/internal/directive"
	"github.com/jcorbin/txtplus/internal/plusutil"
)

func lines(ss ...string) string { return strings.Join(ss, "\n") + "\n" }

func TestProcessor(t *testing.T) {
	for _, tc := range []struct {
		name  string
		mod   func(*config.Config)
		in    string
		out   string
		stats Stats
		err   error
	}{
		{
			name:  "pass through",
			in:    "plain\n\n  indented \t\nlast, no newline",
			out:   "plain\n\n  indented \t\nlast, no newline",
			stats: Stats{Lines: 4, Passed: 4},
		},

		{
			name: "box",
			in: lines(
				"Intro",
				"@@start::box",
				"[Hello]",
				"@@end::box",
				"Outro",
			),
			out: lines(
				"Intro",
				"+-------+",
				"| Hello |",
				"+-------+",
				"Outro",
			),
			stats: Stats{Lines: 5, Passed: 2, Boxes: 1},
		},

		{
			name: "multi box",
			in: lines(
				"@@start::box",
				"[Hello] [World]",
				"@@end::box",
			),
			out: lines(
				"+-------+ +-------+",
				"| Hello | | World |",
				"+-------+ +-------+",
			),
			stats: Stats{Lines: 3, Boxes: 1},
		},

		{
			name: "tree",
			in: lines(
				"@@start::tree",
				"- First",
				"    - Second",
				"    - Third",
				"- Fourth",
				"@@end::tree",
				"done",
			),
			out: lines(
				".",
				"    ├── First",
				"    │   ├── Second",
				"    │   └── Third",
				"    └── Fourth",
				"done",
			),
			stats: Stats{Lines: 7, Passed: 1, Trees: 1},
		},

		{
			name: "unknown kind",
			in: lines(
				"a",
				"@@start::table",
				"| x |",
				"@@end::table",
				"b",
			),
			out: lines(
				"a",
				"not implemented",
				"b",
			),
			stats: Stats{Lines: 5, Passed: 2, Placeholder: 1},
		},

		{
			name: "unterminated directive dropped",
			in: lines(
				"a",
				"@@start::box",
				"[lost]",
			),
			out:   lines("a"),
			stats: Stats{Lines: 3, Passed: 1, Dropped: 1},
		},

		{
			name: "stray end dropped",
			in: lines(
				"a",
				"@@end::box",
				"b",
			),
			out:   lines("a", "b"),
			stats: Stats{Lines: 3, Passed: 2, Dropped: 1},
		},

		{
			name: "malformed end keeps prior output",
			in: lines(
				"kept",
				"@@start::box",
				"[Hello]",
				"@@end",
				"lost",
			),
			out:   lines("kept"),
			stats: Stats{Lines: 4, Passed: 1},
			err:   directive.ErrMalformedDirectiveEnd,
		},

		{
			name: "strict unterminated",
			mod:  func(cfg *config.Config) { cfg.Strict = true },
			in: lines(
				"a",
				"@@start::box",
				"[lost]",
			),
			out:   lines("a"),
			stats: Stats{Lines: 3, Passed: 1, Dropped: 1},
			err:   ErrUnterminatedDirective,
		},

		{
			name: "strict stray end",
			mod:  func(cfg *config.Config) { cfg.Strict = true },
			in: lines(
				"a",
				"@@end::box",
				"b",
			),
			out:   lines("a"),
			stats: Stats{Lines: 2, Passed: 1, Dropped: 1},
			err:   ErrStrayDirectiveEnd,
		},

		{
			name: "fenced",
			mod:  func(cfg *config.Config) { cfg.Fence = true },
			in: lines(
				"# Doc",
				"@@start::box",
				"[x]",
				"@@end::box",
				"@@start::nope",
				"@@end::nope",
			),
			out: lines(
				"# Doc",
				"```",
				"+---+",
				"| x |",
				"+---+",
				"```",
				"```",
				"not implemented",
				"```",
			),
			stats: Stats{Lines: 6, Passed: 1, Boxes: 1, Placeholder: 1},
		},

		{
			name: "configured rendering",
			mod: func(cfg *config.Config) {
				cfg.StartMarker = "%%begin"
				cfg.EndMarker = "%%done"
				cfg.Separator = ":"
				cfg.BoxWords = 1
				cfg.TreeRoot = "root"
				cfg.TreeIndent = 2
				cfg.Placeholder = "TODO"
			},
			in: lines(
				"%%begin:box",
				"[a b]",
				"%%done:box",
				"%%begin:tree",
				"- x",
				"  - y",
				"%%done:tree",
				"%%begin:x",
				"%%done:x",
			),
			out: lines(
				"+---+",
				"| a |",
				"| b |",
				"+---+",
				"root",
				"    └── x",
				"        └── y",
				"TODO",
			),
			stats: Stats{Lines: 9, Boxes: 1, Trees: 1, Placeholder: 1},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			if tc.mod != nil {
				tc.mod(&cfg)
			}
			require.NoError(t, cfg.Validate())

			var out bytes.Buffer
			stats, err := New(cfg, nil).Process(strings.NewReader(tc.in), &out)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err), "expected %v error, got %v", tc.err, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.out, out.String(), "expected output")
			assert.Equal(t, tc.stats, stats, "expected stats")
		})
	}
}

func TestProcessor_logs(t *testing.T) {
	var logBuf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := New(config.Default(), log).Process(strings.NewReader(lines(
		"@@start::box",
		"[x]",
		"@@end::box",
		"@@start::what",
		"@@end::what",
		"@@start::tree",
	)), io.Discard)
	require.NoError(t, err)

	logs := logBuf.String()
	assert.Contains(t, logs, `msg="rendering directive" kind=box line=1 lines=1`)
	assert.Contains(t, logs, `msg="unrecognized directive kind" line=4 end=@@end::what`)
	assert.Contains(t, logs, `msg="dropping unterminated directive" line=6 lines=0`)
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestProcessor_writeError(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
	}{
		{"text", "a\nb\n"},
		{"fenced box", "@@start::box\n[x]\n@@end::box\n"},
		{"fenced placeholder", "@@start::x\n@@end::x\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Fence = true
			_, err := New(cfg, nil).Process(strings.NewReader(tc.in), failWriter{})
			assert.EqualError(t, err, "disk full")
		})
	}
}

func TestProcessor_longLines(t *testing.T) {
	long := strings.Repeat("x", 2<<20) + "\n"
	in := long + "@@start::box\n[Hello]\n@@end::box\n" + long
	var out bytes.Buffer
	stats, err := New(config.Default(), nil).Process(strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, long+lines("+-------+", "| Hello |", "+-------+")+long, out.String())
	assert.Equal(t, Stats{Lines: 5, Passed: 2, Boxes: 1}, stats)
}

func TestProcessor_idempotent(t *testing.T) {
	in := lines("no", "directives", "", "here")
	var a, b bytes.Buffer
	_, err := New(config.Default(), nil).Process(strings.NewReader(in), &a)
	require.NoError(t, err)
	_, err = New(config.Default(), nil).Process(strings.NewReader(in), &b)
	require.NoError(t, err)
	assert.Equal(t, in, a.String())
	assert.Equal(t, a.String(), b.String())
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeInput(t *testing.T, name, content string) string {
	dir := t.TempDir()
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func readFile(t *testing.T, name string) string {
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(b)
}

func TestRun(t *testing.T) {
	input := writeInput(t, "test.txt", lines(
		"Title",
		"@@start::box",
		"[Hello]",
		"@@end::box",
	))
	output := filepath.Join(filepath.Dir(input), "test.plus.txt")
	require.NoError(t, os.WriteFile(output, []byte("stale content\n"), 0666))

	want := lines(
		"Title",
		"+-------+",
		"| Hello |",
		"+-------+",
	)
	for _, atomic := range []bool{false, true} {
		cfg := config.Default()
		cfg.Atomic = atomic
		res, err := Run(cfg, input, quietLog())
		require.NoError(t, err)
		assert.Equal(t, input, res.Input)
		assert.Equal(t, output, res.Output)
		assert.Empty(t, res.HTML)
		assert.Equal(t, 1, res.Directives())
		assert.Equal(t, want, readFile(t, output), "expected output (atomic: %v)", atomic)
	}
}

func TestRun_stdout(t *testing.T) {
	input := writeInput(t, "doc.txt", lines(
		"@@start::box",
		"[Hello]",
		"@@end::box",
	))
	output := plusutil.OutputPath(input)
	require.NoError(t, os.WriteFile(output, []byte("previous\n"), 0666))

	cfg := config.Default()
	cfg.Stdout = true
	res, err := Run(cfg, input, quietLog())
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Equal(t, lines("+-------+", "| Hello |", "+-------+"), res.Content)
	assert.Equal(t, 1, res.Directives())
	assert.Equal(t, "previous\n", readFile(t, output), "expected output file untouched")
}

func TestRun_html(t *testing.T) {
	input := writeInput(t, "notes.md", lines(
		"# Notes",
		"",
		"@@start::tree",
		"- a",
		"@@end::tree",
	))
	cfg := config.Default()
	cfg.Fence = true
	cfg.HTML = true
	res, err := Run(cfg, input, quietLog())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(input), "notes.plus.html"), res.HTML)
	html := readFile(t, res.HTML)
	assert.Contains(t, html, "<pre><code>.\n    └── a\n</code></pre>")
}

func TestRun_errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Run(config.Default(), filepath.Join(dir, "nope.txt"), quietLog())
		require.Error(t, err)
		assert.True(t, errors.Is(err, plusutil.ErrPathResolution))
		_, statErr := os.Stat(filepath.Join(dir, "nope.plus.txt"))
		assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output must be created")
	})

	malformed := lines(
		"kept",
		"@@start::box",
		"[x]",
		"@@end",
	)

	t.Run("malformed end, append mode", func(t *testing.T) {
		input := writeInput(t, "doc.txt", malformed)
		res, err := Run(config.Default(), input, quietLog())
		require.Error(t, err)
		assert.True(t, errors.Is(err, directive.ErrMalformedDirectiveEnd))
		assert.Equal(t, "kept\n", readFile(t, res.Output), "expected partial output to remain")
	})

	t.Run("malformed end, atomic mode", func(t *testing.T) {
		input := writeInput(t, "doc.txt", malformed)
		output := plusutil.OutputPath(input)
		require.NoError(t, os.WriteFile(output, []byte("previous\n"), 0666))
		cfg := config.Default()
		cfg.Atomic = true
		_, err := Run(cfg, input, quietLog())
		require.Error(t, err)
		assert.True(t, errors.Is(err, directive.ErrMalformedDirectiveEnd))
		assert.Equal(t, "previous\n", readFile(t, output), "expected prior output untouched")
	})
}
