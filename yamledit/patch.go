package yamledit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Option configures Patch, PatchFile and Paths.
type Option func(*options)

type options struct {
	indentHeuristic bool
	indentWidth     int
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithIndentHeuristic reconstructs key paths from scalar columns instead of
// the document structure, assuming width spaces per nesting level. A width
// of 0 detects the width from the file.
func WithIndentHeuristic(width int) Option {
	return func(o *options) {
		o.indentHeuristic = true
		o.indentWidth = width
	}
}

// Patch replaces every scalar value of src whose key path has a string,
// integer or boolean leaf in tree, and leaves every other byte as it was.
func Patch(src []byte, tree *Tree, opts ...Option) ([]byte, error) {
	stream, err := Read(src)
	if err != nil {
		return nil, err
	}
	tracker := NewTracker(src, opts...)
	p := newPatcher(src)
	for {
		ev, ok := stream.Next()
		if !ok {
			break
		}
		step := tracker.Track(ev)
		if !step.Value || ev.Empty {
			continue
		}
		v, ok := tree.Lookup(step.Path)
		if !ok {
			continue
		}
		text, ok := v.Stringify()
		if !ok {
			continue
		}
		p.replace(ev, step.Key, text)
	}
	return p.finish(), nil
}

// PatchFile patches the file at path in place. The file is replaced
// atomically and only when its content changes; symlinks are followed.
func PatchFile(path string, tree *Tree, opts ...Option) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(target)
	if err != nil {
		return err
	}
	out, err := Patch(src, tree, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if bytes.Equal(out, src) {
		return nil
	}
	return WriteFile(target, out, info.Mode().Perm())
}

// ValuePath is a scalar value and the key path it was found under.
type ValuePath struct {
	Path  []string
	Pos   Position
	Value string
}

func (vp ValuePath) String() string {
	return fmt.Sprintf("%s %s", vp.Pos, strings.Join(vp.Path, "."))
}

// Paths lists every value of src with its key path, in document order.
func Paths(src []byte, opts ...Option) ([]ValuePath, error) {
	stream, err := Read(src)
	if err != nil {
		return nil, err
	}
	tracker := NewTracker(src, opts...)
	var out []ValuePath
	for {
		ev, ok := stream.Next()
		if !ok {
			break
		}
		step := tracker.Track(ev)
		if !step.Value {
			continue
		}
		out = append(out, ValuePath{
			Path:  append([]string(nil), step.Path...),
			Pos:   ev.Pos,
			Value: ev.Value,
		})
	}
	return out, nil
}

// patcher copies source lines into the output, splicing replacements in
// event order. Lines are split on \n and re-joined with \n, so untouched
// content round-trips byte for byte.
type patcher struct {
	lines []string
	out   strings.Builder
	next  int // first source line not yet written
}

func newPatcher(src []byte) *patcher {
	p := &patcher{lines: strings.Split(string(src), "\n")}
	p.out.Grow(len(src))
	return p
}

func (p *patcher) replace(ev Event, key Position, text string) {
	line := ev.Pos.Line
	if line < p.next || line >= len(p.lines) {
		return
	}
	start := byteOffset(p.lines[line], ev.Pos.Column)
	endLine, end := scalarEnd(p.lines, line, start, ev.Style, key.Column)

	for p.next < line {
		p.emit(p.lines[p.next], p.next)
		p.next++
	}
	p.emit(p.lines[line][:start]+text+p.lines[endLine][end:], endLine)
	p.next = endLine + 1
}

// emit writes one output line standing in for source lines up to last.
func (p *patcher) emit(s string, last int) {
	p.out.WriteString(s)
	if last < len(p.lines)-1 {
		p.out.WriteByte('\n')
	}
}

func (p *patcher) finish() []byte {
	for p.next < len(p.lines) {
		p.emit(p.lines[p.next], p.next)
		p.next++
	}
	return []byte(p.out.String())
}
