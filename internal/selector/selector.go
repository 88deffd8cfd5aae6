// Package selector maps colorscheme names to per-application values, such
// as the theme file a scheme uses in tmux. A "default" entry catches
// schemes without their own mapping.
package selector

import (
	"errors"
	"fmt"
	"os"

	"github.com/kevinwang15/alco/internal/config"
	"gopkg.in/yaml.v3"
)

// DefaultKey is consulted when a scheme has no entry of its own.
const DefaultKey = "default"

var ErrNoMapping = errors.New("no mapping in selector")

type Selector struct {
	entries map[string]string
}

// Load reads and parses the selector document at path.
func Load(path string) (*Selector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selector: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse selector %q: %w", path, err)
	}
	return s, nil
}

// Parse decodes a mapping of scheme names to strings. Entries whose key
// or value is not a string are ignored; for repeated keys the first wins.
func Parse(data []byte) (*Selector, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	s := &Selector{entries: map[string]string{}}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return s, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: selector must be a mapping", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if !isString(k) || !isString(v) {
			continue
		}
		if _, dup := s.entries[k.Value]; dup {
			continue
		}
		s.entries[k.Value] = v.Value
	}
	return s, nil
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// Resolve returns the value for name, falling back to the default entry,
// with a leading ~ expanded.
func (s *Selector) Resolve(name string) (string, error) {
	if v, ok := s.entries[name]; ok {
		return config.ExpandHome(v), nil
	}
	if v, ok := s.entries[DefaultKey]; ok {
		return config.ExpandHome(v), nil
	}
	return "", fmt.Errorf("%w for %q", ErrNoMapping, name)
}

// Len reports the number of entries.
func (s *Selector) Len() int { return len(s.entries) }
