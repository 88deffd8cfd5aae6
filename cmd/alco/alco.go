package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/dustin/go-humanize"
	"github.com/kevinwang15/alco/internal/config"
	"github.com/kevinwang15/alco/internal/reload"
	"github.com/kevinwang15/alco/internal/scheme"
	"github.com/kevinwang15/alco/yamledit"
	"github.com/scott-cotton/cli"
)

func alcoMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	if err != nil {
		printError(os.Stderr, err)
		return cli.ExitCodeErr(1)
	}
	return nil
}

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: apply requires one argument, a colorscheme", cli.ErrUsage)
	}
	e, err := cfg.env()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return e.apply(ctx, cc.Out, args[0], cfg.DryRun)
}

func toggle(cfg *ToggleConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Toggle.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: toggle takes no arguments", cli.ErrUsage)
	}
	e, err := cfg.env()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return e.toggle(ctx, cc.Out, cfg.Reverse)
}

func list(cfg *ListConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.List.Parse(cc, args); err != nil {
		return err
	}
	e, err := cfg.env()
	if err != nil {
		return err
	}
	return e.list(cc.Out)
}

func status(cfg *StatusConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Status.Parse(cc, args); err != nil {
		return err
	}
	e, err := cfg.env()
	if err != nil {
		return err
	}
	return e.status(cc.Out, cfg.Time, time.Now())
}

func paths(cfg *PathsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Paths.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: paths requires one argument, a file", cli.ErrUsage)
	}
	var opts []yamledit.Option
	if cfg.Width >= 0 {
		opts = append(opts, yamledit.WithIndentHeuristic(cfg.Width))
	}
	return printPaths(cc.Out, args[0], opts...)
}

// apply patches alacritty, records the scheme as current and reloads the
// other enabled targets. A failing alacritty patch stops everything else.
func (e *env) apply(ctx context.Context, w io.Writer, name string, dryRun bool) error {
	if _, err := os.Stat(e.store.Path(name)); err != nil {
		return fmt.Errorf("colorscheme %q: %w", name, err)
	}
	deps := reload.Deps{Cmd: reload.ExecCommander{}, Log: e.log, Options: e.opts}

	if e.cfg.Targets[config.Alacritty].Enabled {
		tgt, err := reload.New(e.cfg, config.Alacritty, deps)
		if err != nil {
			return err
		}
		a := tgt.(*reload.Alacritty)
		if dryRun {
			return preview(w, a, name)
		}
		if err := a.Reload(ctx, name); err != nil {
			return fmt.Errorf("apply colorscheme %s: %w", name, err)
		}
	} else if dryRun {
		return nil
	}

	if err := e.store.MarkCurrent(name, time.Now()); err != nil {
		return err
	}
	others, err := reload.Enabled(e.cfg, deps, config.Alacritty)
	if err != nil {
		return err
	}
	runner := &reload.Runner{Log: e.log}
	return reload.Err(runner.Run(ctx, name, others...))
}

func preview(w io.Writer, a *reload.Alacritty, name string) error {
	before, after, err := a.Preview(name)
	if err != nil {
		return fmt.Errorf("apply colorscheme %s: %w", name, err)
	}
	_, err = io.WriteString(w, udiff.Unified(a.File, a.File, string(before), string(after)))
	return err
}

func (e *env) toggle(ctx context.Context, w io.Writer, reverse bool) error {
	name, err := e.store.Next(reverse)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, name)
	return e.apply(ctx, w, name, false)
}

func (e *env) list(w io.Writer) error {
	names, err := e.store.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

func (e *env) status(w io.Writer, withTime bool, now time.Time) error {
	st, err := e.store.Status(now)
	if err != nil {
		if errors.Is(err, scheme.ErrNoCurrent) {
			return fmt.Errorf("get current colorscheme: %w", err)
		}
		return err
	}
	switch {
	case !withTime:
		fmt.Fprintln(w, st.Name)
	case st.Changed.IsZero():
		fmt.Fprintf(w, "%s changed at an unknown time\n", st.Name)
	default:
		fmt.Fprintf(w, "%s changed %s\n", st.Name, humanize.RelTime(now.Add(-st.Since), now, "ago", "from now"))
	}
	return nil
}

func printPaths(w io.Writer, file string, opts ...yamledit.Option) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	vps, err := yamledit.Paths(src, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	for _, vp := range vps {
		fmt.Fprintln(w, vp)
	}
	return nil
}
