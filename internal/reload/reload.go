// Package reload points applications at a new colorscheme and asks running
// instances to pick it up.
package reload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kevinwang15/alco/internal/selector"
	"github.com/kevinwang15/alco/yamledit"
	"golang.org/x/sync/errgroup"
)

// Target is one application that follows the colorscheme.
type Target interface {
	Name() string
	Reload(ctx context.Context, scheme string) error
}

// Commander runs external programs.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecCommander runs programs with os/exec. A failing program's output is
// part of the returned error.
type ExecCommander struct{}

func (ExecCommander) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

type Result struct {
	Target  string
	Err     error
	Elapsed time.Duration
}

// Runner reloads targets concurrently.
type Runner struct {
	Log *slog.Logger
}

// Run reloads every target in its own goroutine and waits for all of them.
// A failing target does not stop the others and nothing is rolled back.
// Results are in target order.
func (r *Runner) Run(ctx context.Context, scheme string, targets ...Target) []Result {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	results := make([]Result, len(targets))
	var g errgroup.Group
	for i, t := range targets {
		g.Go(func() error {
			start := time.Now()
			err := t.Reload(ctx, scheme)
			results[i] = Result{Target: t.Name(), Err: err, Elapsed: time.Since(start)}
			if err != nil {
				log.Error("reload failed", "target", t.Name(), "scheme", scheme, "error", err)
				return nil
			}
			log.Debug("reloaded", "target", t.Name(), "scheme", scheme, "elapsed", results[i].Elapsed)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Err joins the failures in results, each prefixed with its target.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Target, r.Err))
		}
	}
	return errors.Join(errs...)
}

// resolve looks scheme up in the selector file at path.
func resolve(path, scheme string) (string, error) {
	sel, err := selector.Load(path)
	if err != nil {
		return "", err
	}
	return sel.Resolve(scheme)
}

// copyFile replaces dst with the content of src. An existing dst keeps its
// mode; a new one gets 0644.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFile(dst, data)
}

// writeFile atomically replaces path, skipping the write when the content
// is unchanged.
func writeFile(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if cur, err := os.ReadFile(path); err == nil {
		if bytes.Equal(cur, data) {
			return nil
		}
		if info, err := os.Stat(path); err == nil {
			perm = info.Mode().Perm()
		}
	}
	return yamledit.WriteFile(path, data, perm)
}
