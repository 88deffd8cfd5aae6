package reload

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/kevinwang15/alco/internal/config"
	"github.com/kevinwang15/alco/yamledit"
)

// Deps are the collaborators shared by targets built from config.
type Deps struct {
	Cmd     Commander
	Log     *slog.Logger
	Options []yamledit.Option
}

// New builds the named target from its config section.
func New(cfg config.Config, name string, deps Deps) (Target, error) {
	t, ok := cfg.Targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", name)
	}
	cmd := deps.Cmd
	if cmd == nil {
		cmd = ExecCommander{}
	}
	switch name {
	case config.Alacritty:
		return &Alacritty{
			File:      t.File,
			SchemeDir: cfg.SchemeDir,
			Selector:  t.Selector,
			Overrides: t.Overrides,
			Options:   deps.Options,
		}, nil
	case config.Tmux:
		return &Tmux{File: t.File, Selector: t.Selector, Cmd: cmd}, nil
	case config.Kitty:
		return &Kitty{File: t.File, Selector: t.Selector, Socket: t.Socket}, nil
	case config.Cmus:
		return &Cmus{File: t.File, Selector: t.Selector, Cmd: cmd, Log: deps.Log}, nil
	case config.Bat:
		return &Bat{File: t.File, Template: t.Template, Selector: t.Selector}, nil
	case config.Starship:
		return &Starship{File: t.File, Template: t.Template, Selector: t.Selector}, nil
	case config.Delta:
		return &Delta{File: t.File, Selector: t.Selector}, nil
	case config.Neovim:
		return &Neovim{Sockets: t.Socket, Commands: t.Commands}, nil
	}
	return nil, fmt.Errorf("unknown target %q", name)
}

// Enabled builds every enabled target except those named in skip.
func Enabled(cfg config.Config, deps Deps, skip ...string) ([]Target, error) {
	var out []Target
	for _, name := range cfg.Enabled() {
		if slices.Contains(skip, name) {
			continue
		}
		t, err := New(cfg, name, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
