package reload

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kevinwang15/alco/yamledit"
)

// Tmux copies the selected colors file over File and sources it in the
// running tmux server.
type Tmux struct {
	File     string
	Selector string
	Cmd      Commander
}

func (t *Tmux) Name() string { return "tmux" }

func (t *Tmux) Reload(ctx context.Context, scheme string) error {
	src, err := resolve(t.Selector, scheme)
	if err != nil {
		return err
	}
	if err := copyFile(src, t.File); err != nil {
		return err
	}
	return t.Cmd.Run(ctx, "tmux", "source-file", t.File)
}

// Delta copies the selected config over File; delta reads it on every run.
type Delta struct {
	File     string
	Selector string
}

func (d *Delta) Name() string { return "delta" }

func (d *Delta) Reload(_ context.Context, scheme string) error {
	src, err := resolve(d.Selector, scheme)
	if err != nil {
		return err
	}
	return copyFile(src, d.File)
}

// ThemePlaceholder is replaced with the selected theme name in bat templates.
const ThemePlaceholder = "<theme>"

// Bat renders Template into File with the selected bat theme.
type Bat struct {
	File     string
	Template string
	Selector string
}

func (b *Bat) Name() string { return "bat" }

func (b *Bat) Reload(_ context.Context, scheme string) error {
	theme, err := resolve(b.Selector, scheme)
	if err != nil {
		return err
	}
	tmpl, err := os.ReadFile(b.Template)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	return writeFile(b.File, []byte(strings.ReplaceAll(string(tmpl), ThemePlaceholder, theme)))
}

// Starship renders Template into File, replacing every <key> with the
// matching top-level string of the selected palette file.
type Starship struct {
	File     string
	Template string
	Selector string
}

func (s *Starship) Name() string { return "starship" }

func (s *Starship) Reload(_ context.Context, scheme string) error {
	src, err := resolve(s.Selector, scheme)
	if err != nil {
		return err
	}
	palette, err := yamledit.LoadTreeFile(src)
	if err != nil {
		return fmt.Errorf("read palette: %w", err)
	}
	tmpl, err := os.ReadFile(s.Template)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	return writeFile(s.File, []byte(render(string(tmpl), palette.Strings())))
}

// render replaces each <key> of vars in one pass, so substituted text is
// never expanded again.
func render(tmpl string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "<"+k+">", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
