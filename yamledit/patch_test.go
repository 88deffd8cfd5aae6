package yamledit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alacrittyConfig = `# Alacritty configuration
env:
  TERM: xterm-256color

window:
  padding:
    x: 4
    y: 4
  decorations: full

font:
  normal:
    family: "JetBrains Mono"
  size: 11.0

# Colors (Gruvbox dark)
colors:
  primary:
    background: '0x282828'   # bg0
    foreground: '0xebdbb2'
  normal:
    black:   '0x282828'
    red:     '0xcc241d'
    green:   '0x98971a'
  bright:
    black:   '0x928374'
    red:     '0xfb4934'

draw_bold_text_with_bright_colors: true
live_config_reload: true
`

const lightScheme = `colors:
  primary:
    background: '0xfbf1c7'
    foreground: '0x3c3836'
  normal:
    black:   '0xfbf1c7'
    red:     '0xcc241d'
    green:   '0x98971a'
  bright:
    black:   '0x928374'
    red:     '0x9d0006'
draw_bold_text_with_bright_colors: false
`

func mustTree(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := LoadTree([]byte(src))
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	return tree
}

func mustPatch(t *testing.T, src string, tree *Tree, opts ...Option) string {
	t.Helper()
	out, err := Patch([]byte(src), tree, opts...)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	return string(out)
}

var trackerModes = []struct {
	name string
	opts []Option
}{
	{name: "structural"},
	{name: "indent", opts: []Option{WithIndentHeuristic(2)}},
}

func TestScenarioA_NestedValue(t *testing.T) {
	in := "colors:\n  primary:\n    background: '0x000000'\n"
	tree := mustTree(t, "colors:\n  primary:\n    background: \"0x111111\"\n")
	want := "colors:\n  primary:\n    background: '0x111111'\n"
	for _, m := range trackerModes {
		if got := mustPatch(t, in, tree, m.opts...); got != want {
			t.Fatalf("%s: got %q, want %q", m.name, got, want)
		}
	}
}

func TestScenarioB_OnlyMatchingSibling(t *testing.T) {
	in := "colors:\n  normal:\n    black: '#000000'\n    red: '#ff0000'\n"
	tree := mustTree(t, "colors:\n  normal:\n    red: '#aa0000'\n")
	want := "colors:\n  normal:\n    black: '#000000'\n    red: '#aa0000'\n"
	for _, m := range trackerModes {
		if got := mustPatch(t, in, tree, m.opts...); got != want {
			t.Fatalf("%s: got %q, want %q", m.name, got, want)
		}
	}
}

func TestScenarioC_NonScalarReplacementIsSkipped(t *testing.T) {
	in := "colors:\n  normal:\n    black: '#000000'\n    red: '#ff0000'\n"
	tree := mustTree(t, "colors:\n  normal:\n    red:\n      hex: '#aa0000'\n    black: [1, 2]\n")
	for _, m := range trackerModes {
		if got := mustPatch(t, in, tree, m.opts...); got != in {
			t.Fatalf("%s: expected no change, got %q", m.name, got)
		}
	}
}

func TestScenarioD_MalformedInputFails(t *testing.T) {
	in := "colors: {primary: {background: '0x000000'}\n"
	_, err := Patch([]byte(in), mustTree(t, "colors: {}\n"))
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}

	dir := t.TempDir()
	p := filepath.Join(dir, "alacritty.yml")
	require.NoError(t, os.WriteFile(p, []byte(in), 0o644))
	err = PatchFile(p, mustTree(t, "colors:\n  primary:\n    background: '0x111111'\n"))
	require.ErrorIs(t, err, ErrMalformedDocument)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, in, string(got), "malformed file must be left untouched")
	assertNoTempFiles(t, dir)
}

func TestNoOpReplacementIsByteIdentical(t *testing.T) {
	tree := mustTree(t, "unrelated:\n  key: 'value'\ncolors:\n  missing: 1\n")
	inputs := []string{
		alacrittyConfig,
		strings.TrimSuffix(alacrittyConfig, "\n"),
		strings.ReplaceAll(alacrittyConfig, "\n", "\r\n"),
		"",
		"# only a comment\n",
		"a: 1\n\n\n",
	}
	for _, in := range inputs {
		for _, m := range trackerModes {
			if got := mustPatch(t, in, tree, m.opts...); got != in {
				t.Fatalf("%s: no-op patch changed input\n%s", m.name, unifiedDiff(in, got))
			}
		}
	}
}

func TestExactSpanPreservation(t *testing.T) {
	tree := mustTree(t, lightScheme)
	out := mustPatch(t, alacrittyConfig, tree)

	inLines := strings.Split(alacrittyConfig, "\n")
	outLines := strings.Split(out, "\n")
	require.Equal(t, len(inLines), len(outLines), "single-line values keep the line count")

	changed := 0
	for i := range inLines {
		if inLines[i] == outLines[i] {
			continue
		}
		changed++
		colon := strings.Index(inLines[i], ":")
		require.GreaterOrEqual(t, colon, 0)
		prefix := inLines[i][:colon+1]
		assert.True(t, strings.HasPrefix(outLines[i], prefix), "line %d prefix changed: %q -> %q", i, inLines[i], outLines[i])
	}

	// background, foreground, normal.black, bright.red, draw_bold...
	diff := unifiedDiff(alacrittyConfig, out)
	adds, removes := diffStats(diff)
	assert.Equal(t, 5, changed, diff)
	assert.Equal(t, 5, adds, diff)
	assert.Equal(t, 5, removes, diff)
}

func TestPatchKeepsAlignmentAndInlineComments(t *testing.T) {
	out := mustPatch(t, alacrittyConfig, mustTree(t, lightScheme))

	assert.Equal(t, "    background: '0xfbf1c7'   # bg0", getLineContaining(out, "background:"))
	assert.Equal(t, "    black:   '0xfbf1c7'", getLineContaining(out, "black:   '0xfb"))
	assert.Equal(t, "draw_bold_text_with_bright_colors: false", getLineContaining(out, "draw_bold"))
	// untouched values keep their original quoting
	assert.Equal(t, `    family: "JetBrains Mono"`, getLineContaining(out, "family:"))
	assert.Equal(t, "live_config_reload: true", getLineContaining(out, "live_config_reload"))
}

func TestPatchScalarKinds(t *testing.T) {
	in := "font:\n  size: 11\n  bold: true\n  family: Mono\n"
	tree := mustTree(t, "font:\n  size: 13\n  bold: false\n  family: Hack\n")
	want := "font:\n  size: 13\n  bold: false\n  family: 'Hack'\n"
	assert.Equal(t, want, mustPatch(t, in, tree))
}

func TestPatchStringIsNotEscaped(t *testing.T) {
	in := "a: 'x'\n"
	assert.Equal(t, "a: 'it's'\n", mustPatch(t, in, mustTree(t, "a: \"it's\"\n")))
}

func TestPatchQuotedValuesWithTrailingText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "double quotes with escapes",
			in:   "a: \"say \\\"hi\\\"\" # greeting\n",
			want: "a: 'x' # greeting\n",
		},
		{
			name: "single quotes with doubled quote",
			in:   "a: 'it''s' # note\n",
			want: "a: 'x' # note\n",
		},
		{
			name: "plain with comment",
			in:   "a: hello world   # c\n",
			want: "a: 'x'   # c\n",
		},
		{
			name: "hash inside plain value",
			in:   "a: C#sharp # lang\n",
			want: "a: 'x' # lang\n",
		},
	}
	tree := mustTree(t, "a: x\n")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustPatch(t, tt.in, tree))
		})
	}
}

func TestPatchMultiLineValues(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single quoted across lines",
			in:   "a:\n  b: 'first\n    second'  # c\n  c: 1\n",
			want: "a:\n  b: 'x'  # c\n  c: 1\n",
		},
		{
			name: "double quoted across lines",
			in:   "a:\n  b: \"first\n    second\"\n  c: 1\n",
			want: "a:\n  b: 'x'\n  c: 1\n",
		},
		{
			name: "plain across lines",
			in:   "a:\n  b: first\n    second\n    third\n  c: 1\n",
			want: "a:\n  b: 'x'\n  c: 1\n",
		},
		{
			name: "literal block",
			in:   "a:\n  b: |\n    line1\n\n    line2\n\n  c: 1\n",
			want: "a:\n  b: 'x'\n\n  c: 1\n",
		},
		{
			name: "folded block at end of file",
			in:   "a:\n  b: >-\n    line1\n    line2\n",
			want: "a:\n  b: 'x'\n",
		},
	}
	tree := mustTree(t, "a:\n  b: x\n")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustPatch(t, tt.in, tree))
		})
	}
}

func TestPatchLeavesSequencesAndEmptyValuesAlone(t *testing.T) {
	in := `colors:
  indexed_colors:
    - { index: 16, color: '0x000000' }
  cursor:
  selection:
    text: CellForeground
`
	tree := mustTree(t, `colors:
  indexed_colors: 'flat'
  cursor: '0xffffff'
  selection:
    text: '0x000000'
`)
	want := strings.Replace(in, "text: CellForeground", "text: '0x000000'", 1)
	assert.Equal(t, want, mustPatch(t, in, tree))
}

func TestPatchLeavesFlowCollectionsAlone(t *testing.T) {
	tree := mustTree(t, `colors:
  primary:
    background: '0x111111'
    fg: '0x222222'
  cursor:
    text: '0x333333'
`)
	for _, in := range []string{
		"colors:\n  primary: {background: x, fg: y}\n",
		"colors: {primary: {background: x}}\n",
		"{colors: {cursor: {text: x}}}\n",
	} {
		for _, m := range trackerModes {
			assert.Equal(t, in, mustPatch(t, in, tree, m.opts...), "%s: %q", m.name, in)
		}
	}

	// a flow mapping spanning lines looks like block keys to the indent tracker
	multi := "colors:\n  primary: {background: x,\n    fg: y}\n"
	assert.Equal(t, multi, mustPatch(t, multi, tree))

	// block siblings of a flow mapping are still patched
	in := "colors:\n  primary: {background: x, fg: y}\n  cursor:\n    text: x\n"
	want := "colors:\n  primary: {background: x, fg: y}\n  cursor:\n    text: '0x333333'\n"
	assert.Equal(t, want, mustPatch(t, in, tree))
}

func TestPatchValueOnItsOwnLine(t *testing.T) {
	in := "a:\n  b:\n    'old'\n"
	assert.Equal(t, "a:\n  b:\n    'new'\n", mustPatch(t, in, mustTree(t, "a:\n  b: new\n")))
}

func TestPatchPreservesLineEndings(t *testing.T) {
	tree := mustTree(t, "a:\n  b: 'y'\n")
	assert.Equal(t, "a:\r\n  b: 'y'\r\n", mustPatch(t, "a:\r\n  b: 'x'\r\n", tree))
	assert.Equal(t, "a:\n  b: 'y'", mustPatch(t, "a:\n  b: 'x'", tree))
}

func TestPatchMultibyteKeys(t *testing.T) {
	in := "цвета:\n  фон: 'old'  # ü\n"
	tree := mustTree(t, "цвета:\n  фон: new\n")
	for _, m := range trackerModes {
		assert.Equal(t, "цвета:\n  фон: 'new'  # ü\n", mustPatch(t, in, tree, m.opts...), m.name)
	}
}

func TestPatchFileAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "alacritty.yml")
	require.NoError(t, os.WriteFile(p, []byte(alacrittyConfig), 0o600))

	require.NoError(t, PatchFile(p, mustTree(t, lightScheme)))

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(got), "background: '0xfbf1c7'")

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assertNoTempFiles(t, dir)
}

func TestPatchFileFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "dotfiles-alacritty.yml")
	link := filepath.Join(dir, "alacritty.yml")
	require.NoError(t, os.WriteFile(real, []byte("colors:\n  primary:\n    background: '0x000000'\n"), 0o644))
	require.NoError(t, os.Symlink(real, link))

	require.NoError(t, PatchFile(link, mustTree(t, "colors:\n  primary:\n    background: '0x111111'\n")))

	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.True(t, fi.Mode()&os.ModeSymlink != 0, "link must stay a symlink")

	got, err := os.ReadFile(real)
	require.NoError(t, err)
	assert.Equal(t, "colors:\n  primary:\n    background: '0x111111'\n", string(got))
}

func TestPatchFileMissing(t *testing.T) {
	err := PatchFile(filepath.Join(t.TempDir(), "nope.yml"), mustTree(t, "a: 1\n"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPathsReportsPositions(t *testing.T) {
	vps, err := Paths([]byte("colors:\n  primary:\n    background: '0x000000'\n"))
	require.NoError(t, err)
	require.Len(t, vps, 1)
	assert.Equal(t, "3:17 colors.primary.background", vps[0].String())
	assert.Equal(t, "0x000000", vps[0].Value)
}

// --- helpers for tests ---

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func unifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func diffStats(diff string) (adds, removes int) {
	for _, line := range strings.Split(diff, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			if !strings.HasPrefix(line, "+++") {
				adds++
			}
		case '-':
			if !strings.HasPrefix(line, "---") {
				removes++
			}
		}
	}
	return
}

func getLineContaining(s, substr string) string {
	for _, ln := range strings.Split(s, "\n") {
		if strings.Contains(ln, substr) {
			return ln
		}
	}
	return ""
}
