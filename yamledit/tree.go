package yamledit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	gyaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// Kind is the kind of a replacement value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindBoolean
	KindFloat
	KindSequence
	KindMap
	KindOther
)

// Value is one node of a replacement tree.
type Value struct {
	Kind Kind
	text string // canonical text for scalar kinds
	seq  []Value
	tree *Tree
}

// Text returns the scalar text of v; empty for collections.
func (v Value) Text() string { return v.text }

// Tree returns the nested tree of a KindMap value.
func (v Value) Tree() *Tree { return v.tree }

// Stringify renders v as it is written into a patched file. Only strings,
// integers and booleans can be written; strings are single-quoted and not
// escaped.
func (v Value) Stringify() (string, bool) {
	switch v.Kind {
	case KindString:
		return "'" + v.text + "'", true
	case KindInteger, KindBoolean:
		return v.text, true
	default:
		return "", false
	}
}

// Tree is an ordered mapping from string keys to values. It is not
// modified after loading.
type Tree struct {
	entries []entry
}

type entry struct {
	key   string
	value Value
}

// LoadTree decodes a replacement document. An empty document yields an
// empty tree; a document whose top level is not a mapping is malformed.
// Repeated keys are kept in order and the first one wins on lookup.
func LoadTree(data []byte) (*Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Tree{}, nil
	}
	var ms gyaml.MapSlice
	err := gyaml.UnmarshalWithOptions(data, &ms, gyaml.UseOrderedMap(), gyaml.AllowDuplicateMapKey())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	big, err := bigIntPaths(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return treeFromMapSlice(ms, nil, big), nil
}

// LoadTreeFile reads and decodes the replacement document at path.
func LoadTreeFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := LoadTree(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// treeFromMapSlice builds the tree at path. Values at a path in big are
// plain integers the decoder could only return as strings.
func treeFromMapSlice(ms gyaml.MapSlice, path []string, big map[string]bool) *Tree {
	t := &Tree{entries: make([]entry, 0, len(ms))}
	for _, item := range ms {
		k, ok := keyString(item.Key)
		if !ok {
			continue
		}
		p := append(path[:len(path):len(path)], k)
		v := valueOf(item.Value, p, big)
		if s, ok := item.Value.(string); ok && big[pathKey(p)] && outOfRangeInt(s) {
			v = Value{Kind: KindOther, text: s}
		}
		t.entries = append(t.entries, entry{key: k, value: v})
	}
	return t
}

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

// bigIntPaths returns the key paths of plain scalars that are decimal
// integers outside the 64-bit range.
func bigIntPaths(data []byte) (map[string]bool, error) {
	f, err := parser.ParseBytes(data, 0, parser.AllowDuplicateMapKey())
	if err != nil {
		return nil, err
	}
	out := map[string]bool{}
	for _, doc := range f.Docs {
		collectBigInts(doc.Body, nil, out)
	}
	return out, nil
}

func collectBigInts(n ast.Node, path []string, out map[string]bool) {
	switch n := n.(type) {
	case *ast.MappingNode:
		for _, mv := range n.Values {
			collectBigInts(mv, path, out)
		}
	case *ast.MappingValueNode:
		k, ok := n.Key.(*ast.StringNode)
		if !ok {
			return
		}
		collectBigInts(n.Value, append(path[:len(path):len(path)], k.Value), out)
	case *ast.AnchorNode:
		collectBigInts(n.Value, path, out)
	case *ast.StringNode:
		if n.Token != nil && n.Token.Type == token.StringType && outOfRangeInt(n.Value) {
			out[pathKey(path)] = true
		}
	}
}

func outOfRangeInt(s string) bool {
	s = strings.TrimPrefix(s, "+")
	var err error
	if strings.HasPrefix(s, "-") {
		_, err = strconv.ParseInt(s, 10, 64)
	} else {
		_, err = strconv.ParseUint(s, 10, 64)
	}
	return errors.Is(err, strconv.ErrRange)
}

// keyString only accepts string keys: "1:" or "true:" never match a path.
func keyString(k interface{}) (string, bool) {
	switch vv := k.(type) {
	case string:
		return vv, true
	default:
		return "", false
	}
}

func valueOf(v interface{}, path []string, big map[string]bool) Value {
	switch vv := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case string:
		return Value{Kind: KindString, text: vv}
	case bool:
		return Value{Kind: KindBoolean, text: strconv.FormatBool(vv)}
	case int:
		return Value{Kind: KindInteger, text: strconv.Itoa(vv)}
	case int64:
		return Value{Kind: KindInteger, text: strconv.FormatInt(vv, 10)}
	case uint64:
		return Value{Kind: KindInteger, text: strconv.FormatUint(vv, 10)}
	case int32, int16, int8, uint, uint32, uint16, uint8:
		return Value{Kind: KindInteger, text: fmt.Sprint(vv)}
	case float64:
		return Value{Kind: KindFloat, text: strconv.FormatFloat(vv, 'g', -1, 64)}
	case float32:
		return Value{Kind: KindFloat, text: strconv.FormatFloat(float64(vv), 'g', -1, 32)}
	case gyaml.MapSlice:
		return Value{Kind: KindMap, tree: treeFromMapSlice(vv, path, big)}
	case []interface{}:
		seq := make([]Value, len(vv))
		for i := range vv {
			seq[i] = valueOf(vv[i], nil, nil)
		}
		return Value{Kind: KindSequence, seq: seq}
	case time.Time:
		return Value{Kind: KindOther, text: vv.Format(time.RFC3339Nano)}
	default:
		return Value{Kind: KindOther, text: fmt.Sprint(vv)}
	}
}

// Len is the number of top-level entries.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Keys returns the top-level keys in document order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.key
	}
	return keys
}

// Get returns the first top-level entry named key.
func (t *Tree) Get(key string) (Value, bool) {
	if t == nil {
		return Value{}, false
	}
	for _, e := range t.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return Value{}, false
}

// Lookup walks path one segment at a time. A missing key, a leaf reached
// before the path is used up, or an empty path is no match.
func (t *Tree) Lookup(path []string) (Value, bool) {
	if t == nil || len(path) == 0 {
		return Value{}, false
	}
	cur := t
	for i, seg := range path {
		v, ok := cur.Get(seg)
		if !ok {
			return Value{}, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if v.Kind != KindMap {
			return Value{}, false
		}
		cur = v.tree
	}
	return Value{}, false
}

// Strings returns the top-level entries that are plain strings.
func (t *Tree) Strings() map[string]string {
	out := map[string]string{}
	if t == nil {
		return out
	}
	for _, e := range t.entries {
		if e.value.Kind != KindString {
			continue
		}
		if _, dup := out[e.key]; dup {
			continue
		}
		out[e.key] = e.value.text
	}
	return out
}

// Merge returns a new tree with an RFC 7386 JSON merge patch applied. A
// null in the patch removes the key.
func (t *Tree) Merge(patch []byte) (*Tree, error) {
	doc, err := t.MarshalJSON()
	if err != nil {
		return nil, err
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, fmt.Errorf("yamledit: merge patch: %w", err)
	}
	return LoadTree(merged)
}

// MarshalJSON encodes the tree as a JSON object in key order. Duplicate
// keys are dropped after the first, matching Lookup.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Tree) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	seen := map[string]bool{}
	first := true
	if t != nil {
		for _, e := range t.entries {
			if seen[e.key] {
				continue
			}
			seen[e.key] = true
			if !first {
				buf.WriteByte(',')
			}
			first = false
			k, err := json.Marshal(e.key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := e.value.writeJSON(buf); err != nil {
				return err
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindInteger, KindBoolean:
		buf.WriteString(v.text)
	case KindFloat:
		f, err := strconv.ParseFloat(v.text, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			// .inf and .nan have no JSON form
			s, _ := json.Marshal(v.text)
			buf.Write(s)
			return nil
		}
		buf.WriteString(v.text)
	case KindMap:
		return v.tree.writeJSON(buf)
	case KindOther:
		if n := strings.TrimPrefix(v.text, "+"); outOfRangeInt(n) && json.Valid([]byte(n)) {
			// stays a number so a merged tree skips it again
			buf.WriteString(n)
			return nil
		}
		s, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(s)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		s, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(s)
	}
	return nil
}
