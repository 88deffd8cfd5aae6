package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "alco").
		WithSynopsis("alco [opts] command [opts]").
		WithDescription("alco switches the colorscheme of alacritty and the tools around it.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return alcoMain(cfg, cc, args)
		}).
		WithSubs(
			ApplyCommand(cfg),
			ToggleCommand(cfg),
			ListCommand(cfg),
			StatusCommand(cfg),
			PathsCommand(cfg))
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Apply, "apply").
		WithAliases("a").
		WithSynopsis("apply [-n] <colorscheme>").
		WithDescription("apply a colorscheme and reload the enabled applications").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
}

func ToggleCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ToggleConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Toggle, "toggle").
		WithAliases("t").
		WithSynopsis("toggle [-r]").
		WithDescription("apply the next colorscheme in alphabetical order").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return toggle(cfg, cc, args)
		})
}

func ListCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ListConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.List, "list").
		WithAliases("l", "ls").
		WithSynopsis("list").
		WithDescription("list the available colorschemes").
		WithRun(func(cc *cli.Context, args []string) error {
			return list(cfg, cc, args)
		})
}

func StatusCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &StatusConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Status, "status").
		WithAliases("s").
		WithSynopsis("status [-t]").
		WithDescription("print the current colorscheme").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return status(cfg, cc, args)
		})
}

func PathsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PathsConfig{MainConfig: mainCfg, Width: -1}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Paths, "paths").
		WithSynopsis("paths [-i width] <file>").
		WithDescription("print the key path of every value in a YAML file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return paths(cfg, cc, args)
		})
}
