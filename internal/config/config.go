package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Target names, in the order they are reloaded and listed.
const (
	Alacritty = "alacritty"
	Tmux      = "tmux"
	Kitty     = "kitty"
	Cmus      = "cmus"
	Bat       = "bat"
	Starship  = "starship"
	Delta     = "delta"
	Neovim    = "neovim"
)

// TargetNames lists every known target.
var TargetNames = []string{Alacritty, Tmux, Kitty, Cmus, Bat, Starship, Delta, Neovim}

type Config struct {
	SchemeDir string            `toml:"scheme_dir"`
	Targets   map[string]Target `toml:"targets"`
}

// Target configures one application that follows the colorscheme.
// Which fields matter depends on the application.
type Target struct {
	Enabled   bool           `toml:"enabled"`
	File      string         `toml:"file"`
	Selector  string         `toml:"selector"`
	Template  string         `toml:"template"`
	Socket    string         `toml:"socket"`
	Commands  []string       `toml:"commands"`
	Overrides map[string]any `toml:"overrides"`
}

// fileConfig is the on-disk shape. Unset fields keep their defaults.
type fileConfig struct {
	SchemeDir string                `toml:"scheme_dir"`
	Targets   map[string]fileTarget `toml:"targets"`
}

type fileTarget struct {
	Enabled   *bool          `toml:"enabled"`
	File      string         `toml:"file"`
	Selector  string         `toml:"selector"`
	Template  string         `toml:"template"`
	Socket    string         `toml:"socket"`
	Commands  []string       `toml:"commands"`
	Overrides map[string]any `toml:"overrides"`
}

// Default returns the built-in configuration. Only alacritty is enabled.
func Default() Config {
	return Config{
		SchemeDir: "~/.config/alacritty/colors/",
		Targets: map[string]Target{
			Alacritty: {
				Enabled: true,
				File:    "~/.config/alacritty/alacritty.yml",
			},
			Tmux: {
				File:     "~/.config/tmux/colors/current.conf",
				Selector: "~/.config/tmux/colors/selector.yml",
			},
			Kitty: {
				File:     "~/.config/kitty/colors.conf",
				Selector: "~/.config/kitty/colors/selector.yml",
				Socket:   "/tmp/kitty.sock",
			},
			Cmus: {
				File:     "~/.config/cmus/autosave",
				Selector: "~/.config/cmus/selector.yml",
			},
			Bat: {
				File:     "~/.config/bat/config",
				Selector: "~/.config/bat/selector.yml",
				Template: "~/.config/bat/config.in",
			},
			Starship: {
				File:     "~/.config/starship.toml",
				Selector: "~/.config/starship/selector.yml",
				Template: "~/.config/starship/starship.toml.in",
			},
			Delta: {
				File:     "~/.config/delta/colors.gitconfig",
				Selector: "~/.config/delta/selector.yml",
			},
			Neovim: {
				Socket:   "/tmp/nvim*/0",
				Commands: []string{"source ~/.config/nvim/init.vim"},
			},
		},
	}
}

// Path returns the default config file location.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "alco", "config.toml")
	}
	return ExpandHome(filepath.Join("~", ".config", "alco", "config.toml"))
}

// Load reads the config at path, or at Path() when path is empty, on top
// of the defaults. A missing file yields the defaults. Every path in the
// result has ~ expanded.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg.expand(), nil
	case err != nil:
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := cfg.apply(data); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg.expand(), nil
}

// Parse decodes data on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.apply(data); err != nil {
		return Config{}, err
	}
	return cfg.expand(), nil
}

func (c *Config) apply(data []byte) error {
	var fc fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return err
	}
	if fc.SchemeDir != "" {
		c.SchemeDir = fc.SchemeDir
	}
	for name, ft := range fc.Targets {
		t, ok := c.Targets[name]
		if !ok {
			return fmt.Errorf("unknown target %q", name)
		}
		if ft.Enabled != nil {
			t.Enabled = *ft.Enabled
		}
		t.File = override(t.File, ft.File)
		t.Selector = override(t.Selector, ft.Selector)
		t.Template = override(t.Template, ft.Template)
		t.Socket = override(t.Socket, ft.Socket)
		if ft.Commands != nil {
			t.Commands = ft.Commands
		}
		if ft.Overrides != nil {
			t.Overrides = ft.Overrides
		}
		c.Targets[name] = t
	}
	return nil
}

func override(def, v string) string {
	if v == "" {
		return def
	}
	return v
}

func (c Config) expand() Config {
	c.SchemeDir = ExpandHome(c.SchemeDir)
	targets := make(map[string]Target, len(c.Targets))
	for name, t := range c.Targets {
		t.File = ExpandHome(t.File)
		t.Selector = ExpandHome(t.Selector)
		t.Template = ExpandHome(t.Template)
		t.Socket = ExpandHome(t.Socket)
		targets[name] = t
	}
	c.Targets = targets
	return c
}

// Enabled lists the enabled targets in TargetNames order.
func (c Config) Enabled() []string {
	var out []string
	for _, name := range TargetNames {
		if c.Targets[name].Enabled {
			out = append(out, name)
		}
	}
	return out
}

// ExpandHome replaces a leading ~ with the user's home directory.
// ~user forms are left alone.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
