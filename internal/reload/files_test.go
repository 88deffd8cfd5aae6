package reload

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kevinwang15/alco/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTmuxCopiesAndSources(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "gruvbox.conf", "set -g status-style bg=colour237\n")
	sel := writeSelector(t, dir, "gruvbox-dark: "+src+"\n")
	dst := writeFixture(t, dir, "current.conf", "old\n")
	cmd := &fakeCommander{}

	tm := &Tmux{File: dst, Selector: sel, Cmd: cmd}
	require.NoError(t, tm.Reload(context.Background(), "gruvbox-dark"))

	assert.Equal(t, "set -g status-style bg=colour237\n", readString(t, dst))
	want := [][]string{{"tmux", "source-file", dst}}
	if diff := cmp.Diff(want, cmd.calls); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestTmuxMissingMappingRunsNothing(t *testing.T) {
	dir := t.TempDir()
	sel := writeSelector(t, dir, "dark: x\n")
	dst := writeFixture(t, dir, "current.conf", "old\n")
	cmd := &fakeCommander{}

	err := (&Tmux{File: dst, Selector: sel, Cmd: cmd}).Reload(context.Background(), "light")
	assert.True(t, errors.Is(err, selector.ErrNoMapping), "got %v", err)
	assert.Empty(t, cmd.calls)
	assert.Equal(t, "old\n", readString(t, dst))
}

func TestTmuxCommandFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "dark.conf", "x\n")
	sel := writeSelector(t, dir, "default: "+src+"\n")
	dst := writeFixture(t, dir, "current.conf", "")
	cmd := &fakeCommander{err: errors.New("no server running")}

	err := (&Tmux{File: dst, Selector: sel, Cmd: cmd}).Reload(context.Background(), "dark")
	assert.EqualError(t, err, "no server running")
	assert.Equal(t, "x\n", readString(t, dst), "the file is replaced even when sourcing fails")
}

func TestDeltaCopies(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "delta-light.gitconfig", "[delta]\n\tlight = true\n")
	sel := writeSelector(t, dir, "light: "+src+"\n")
	dst := writeFixture(t, dir, "colors.gitconfig", "")

	require.NoError(t, (&Delta{File: dst, Selector: sel}).Reload(context.Background(), "light"))
	assert.Equal(t, "[delta]\n\tlight = true\n", readString(t, dst))
}

func TestBatRendersTemplate(t *testing.T) {
	dir := t.TempDir()
	sel := writeSelector(t, dir, "gruvbox-dark: gruvbox-dark\ndefault: \"Monokai Extended\"\n")
	tmpl := writeFixture(t, dir, "config.in", "--theme=\"<theme>\"\n--style=numbers\n# <theme>\n")
	dst := writeFixture(t, dir, "config", "")

	b := &Bat{File: dst, Template: tmpl, Selector: sel}
	require.NoError(t, b.Reload(context.Background(), "nord"))
	assert.Equal(t, "--theme=\"Monokai Extended\"\n--style=numbers\n# Monokai Extended\n", readString(t, dst))

	require.NoError(t, b.Reload(context.Background(), "gruvbox-dark"))
	assert.Equal(t, "--theme=\"gruvbox-dark\"\n--style=numbers\n# gruvbox-dark\n", readString(t, dst))
}

func TestBatMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	sel := writeSelector(t, dir, "default: x\n")
	err := (&Bat{File: dir + "/config", Template: dir + "/missing.in", Selector: sel}).Reload(context.Background(), "dark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read template")
}

func TestStarshipRendersPalette(t *testing.T) {
	dir := t.TempDir()
	palette := writeFixture(t, dir, "gruvbox.yml", `fg: '#ebdbb2'
bg: '#282828'
accent: '<bg>'
size: 3
nested:
  x: '#000000'
`)
	sel := writeSelector(t, dir, "default: "+palette+"\n")
	tmpl := writeFixture(t, dir, "starship.toml.in", `[directory]
style = "bold <fg> bg:<bg>"
[git_branch]
style = "<accent> <size> <nested> <missing>"
`)
	dst := writeFixture(t, dir, "starship.toml", "")

	require.NoError(t, (&Starship{File: dst, Template: tmpl, Selector: sel}).Reload(context.Background(), "dark"))
	want := `[directory]
style = "bold #ebdbb2 bg:#282828"
[git_branch]
style = "<bg> <size> <nested> <missing>"
`
	assert.Equal(t, want, readString(t, dst))
}

func TestRenderIsSinglePass(t *testing.T) {
	got := render("<a><b>", map[string]string{"a": "<b>", "b": "B"})
	assert.Equal(t, "<b>B", got)
	assert.Equal(t, "plain", render("plain", nil))
}
