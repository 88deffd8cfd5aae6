// Package scheme manages the colorscheme directory: the available schemes
// and the marker recording which one is applied.
package scheme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentDir is the subdirectory holding the current-scheme marker.
const CurrentDir = "current"

var (
	ErrNoSchemes = errors.New("no colorschemes available")
	ErrNoCurrent = errors.New("no current colorscheme")
)

// Store is a directory of colorscheme files. Every regular file directly
// inside Dir is a scheme named after the file.
type Store struct {
	Dir string
}

// marker is the content of Dir/current/<scheme>.
type marker struct {
	Changed string `yaml:"changed"`
}

type Status struct {
	Name    string
	Changed time.Time
	// Since is how long ago the scheme was applied; zero when the marker
	// cannot be read.
	Since time.Duration
}

// Path returns the file of the named scheme.
func (s Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// List returns the scheme names in sorted order.
func (s Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("list colorschemes: %w", err)
	}
	var names []string
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(s.Dir, e.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MarkCurrent records name as the applied scheme, replacing any previous
// marker.
func (s Store) MarkCurrent(name string, now time.Time) error {
	dir := filepath.Join(s.Dir, CurrentDir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear current colorscheme: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create current colorscheme dir: %w", err)
	}
	data, err := yaml.Marshal(marker{Changed: now.UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write current colorscheme: %w", err)
	}
	return nil
}

// Status reports the applied scheme and how long before now it was applied.
func (s Store) Status(now time.Time) (Status, error) {
	dir := filepath.Join(s.Dir, CurrentDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Status{}, ErrNoCurrent
	}
	if err != nil {
		return Status{}, fmt.Errorf("read current colorscheme: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		st := Status{Name: e.Name()}
		if changed, err := readMarker(filepath.Join(dir, e.Name())); err == nil {
			st.Changed = changed
			if d := now.Sub(changed); d > 0 {
				st.Since = d
			}
		}
		return st, nil
	}
	return Status{}, ErrNoCurrent
}

func readMarker(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	var m marker
	if err := yaml.Unmarshal(data, &m); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, m.Changed)
}

// Next returns the scheme after the current one in sorted order, or the one
// before it when reverse is set, wrapping at either end. Without a usable
// current scheme it returns the first scheme.
func (s Store) Next(reverse bool) (string, error) {
	names, err := s.List()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoSchemes
	}
	st, err := s.Status(time.Now())
	if err != nil {
		return names[0], nil
	}
	i := sort.SearchStrings(names, st.Name)
	if i == len(names) || names[i] != st.Name {
		return names[0], nil
	}
	if reverse {
		return names[(i+len(names)-1)%len(names)], nil
	}
	return names[(i+1)%len(names)], nil
}
