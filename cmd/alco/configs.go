package main

import (
	"log/slog"

	"github.com/kevinwang15/alco/internal/config"
	"github.com/kevinwang15/alco/internal/scheme"
	"github.com/kevinwang15/alco/yamledit"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	ConfigFile string `cli:"name=c aliases=config desc='config file'"`
	SchemeDir  string `cli:"name=C aliases=scheme-dir desc='directory of colorscheme files'"`
	Verbose    bool   `cli:"name=v aliases=verbose desc='log every reload'"`
	Indent     bool   `cli:"name=indent desc='track alacritty key paths by indentation'"`

	Main *cli.Command
}

// env is everything a subcommand needs, built from the global options.
type env struct {
	cfg   config.Config
	store scheme.Store
	log   *slog.Logger
	opts  []yamledit.Option
}

func (cfg *MainConfig) env() (*env, error) {
	c, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.SchemeDir != "" {
		c.SchemeDir = config.ExpandHome(cfg.SchemeDir)
	}
	e := &env{
		cfg:   c,
		store: scheme.Store{Dir: c.SchemeDir},
		log:   newLogger(cfg.Verbose),
	}
	if cfg.Indent {
		e.opts = append(e.opts, yamledit.WithIndentHeuristic(0))
	}
	return e, nil
}

type ApplyConfig struct {
	*MainConfig
	DryRun bool `cli:"name=n aliases=dry-run desc='show the alacritty change without writing anything'"`

	Apply *cli.Command
}

type ToggleConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r aliases=reverse desc='toggle to the previous colorscheme'"`

	Toggle *cli.Command
}

type ListConfig struct {
	*MainConfig

	List *cli.Command
}

type StatusConfig struct {
	*MainConfig
	Time bool `cli:"name=t aliases=time desc='also show when the colorscheme was applied'"`

	Status *cli.Command
}

type PathsConfig struct {
	*MainConfig
	Width int `cli:"name=i aliases=indent-width desc='track paths by indentation of this width (0 detects it)'"`

	Paths *cli.Command
}
