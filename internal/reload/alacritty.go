package reload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kevinwang15/alco/yamledit"
)

// Alacritty patches the colors of the alacritty config in place. Alacritty
// reloads the file on its own.
type Alacritty struct {
	// File is the alacritty config.
	File string
	// SchemeDir holds the scheme files, used when Selector is empty.
	SchemeDir string
	// Selector optionally maps scheme names to colors files.
	Selector string
	// Overrides is merged into every scheme before patching.
	Overrides map[string]any
	Options   []yamledit.Option
}

func (a *Alacritty) Name() string { return "alacritty" }

func (a *Alacritty) Reload(_ context.Context, scheme string) error {
	tree, err := a.Colors(scheme)
	if err != nil {
		return err
	}
	return yamledit.PatchFile(a.File, tree, a.Options...)
}

// Preview returns the config as it is and as Reload would leave it.
func (a *Alacritty) Preview(scheme string) (before, after []byte, err error) {
	tree, err := a.Colors(scheme)
	if err != nil {
		return nil, nil, err
	}
	before, err = os.ReadFile(a.File)
	if err != nil {
		return nil, nil, err
	}
	after, err = yamledit.Patch(before, tree, a.Options...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", a.File, err)
	}
	return before, after, nil
}

// Colors loads the replacement tree for scheme with the overrides applied.
func (a *Alacritty) Colors(scheme string) (*yamledit.Tree, error) {
	path := filepath.Join(a.SchemeDir, scheme)
	if a.Selector != "" {
		p, err := resolve(a.Selector, scheme)
		if err != nil {
			return nil, err
		}
		path = p
	}
	tree, err := yamledit.LoadTreeFile(path)
	if err != nil {
		return nil, fmt.Errorf("read colorscheme: %w", err)
	}
	if len(a.Overrides) == 0 {
		return tree, nil
	}
	patch, err := json.Marshal(a.Overrides)
	if err != nil {
		return nil, fmt.Errorf("encode overrides: %w", err)
	}
	merged, err := tree.Merge(patch)
	if err != nil {
		return nil, fmt.Errorf("apply overrides: %w", err)
	}
	return merged, nil
}
