package reload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinwang15/alco/internal/config"
)

const cmusColorPrefix = "set color_"

// DefaultCmusThemeDirs are searched in order for <name>.theme.
var DefaultCmusThemeDirs = []string{"~/.config/cmus", "/usr/share/cmus"}

// Cmus switches the running cmus to the selected theme and rewrites the
// color settings of its autosave file so the theme survives a restart.
type Cmus struct {
	// File is cmus' autosave file.
	File      string
	Selector  string
	ThemeDirs []string
	Cmd       Commander
	Log       *slog.Logger
}

func (c *Cmus) Name() string { return "cmus" }

func (c *Cmus) Reload(ctx context.Context, scheme string) error {
	theme, err := resolve(c.Selector, scheme)
	if err != nil {
		return err
	}
	// cmus may not be running; the autosave file is still updated.
	if err := c.Cmd.Run(ctx, "cmus-remote", "-C", "colorscheme "+theme); err != nil {
		c.log().Warn("cmus-remote failed", "theme", theme, "error", err)
	}
	themeData, err := c.readTheme(theme)
	if err != nil {
		return err
	}
	autosave, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read autosave: %w", err)
	}
	return writeFile(c.File, []byte(rewriteColors(string(autosave), string(themeData))))
}

func (c *Cmus) log() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

func (c *Cmus) readTheme(name string) ([]byte, error) {
	dirs := c.ThemeDirs
	if dirs == nil {
		dirs = DefaultCmusThemeDirs
	}
	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(config.ExpandHome(dir), name+".theme"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read cmus theme: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("cmus theme %q not found", name)
}

// rewriteColors sets every color_* variable of autosave to its value in
// theme, or to "default" when the theme leaves it unset.
func rewriteColors(autosave, theme string) string {
	values := map[string]string{}
	for _, l := range strings.Split(theme, "\n") {
		name, val, ok := colorSetting(l)
		if !ok {
			continue
		}
		if _, seen := values[name]; !seen {
			values[name] = val
		}
	}
	lines := strings.Split(autosave, "\n")
	for i, l := range lines {
		name, _, ok := colorSetting(l)
		if !ok {
			continue
		}
		val, found := values[name]
		if !found {
			val = "default"
		}
		lines[i] = name + "=" + val
	}
	return strings.Join(lines, "\n")
}

// colorSetting splits "set color_x=value" into "set color_x" and "value".
func colorSetting(line string) (name, value string, ok bool) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, cmusColorPrefix) {
		return "", "", false
	}
	name, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), true
}
