package yamledit

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrMalformedDocument is returned when a document cannot be parsed as YAML.
var ErrMalformedDocument = errors.New("yamledit: malformed document")

// Position is the 0-based start of an event in the source. Column counts
// characters, not bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

type EventKind int

const (
	StreamEnd EventKind = iota
	DocumentStart
	DocumentEnd
	MappingStart
	MappingEnd
	SequenceStart
	SequenceEnd
	Scalar
	Alias
)

var eventKindNames = [...]string{
	StreamEnd:     "stream-end",
	DocumentStart: "document-start",
	DocumentEnd:   "document-end",
	MappingStart:  "mapping-start",
	MappingEnd:    "mapping-end",
	SequenceStart: "sequence-start",
	SequenceEnd:   "sequence-end",
	Scalar:        "scalar",
	Alias:         "alias",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// ScalarStyle is how a scalar is written in the source.
type ScalarStyle int

const (
	Plain ScalarStyle = iota
	SingleQuoted
	DoubleQuoted
	Literal
	Folded
)

// Event is one parse event. Only Scalar events carry Value and Style.
type Event struct {
	Kind  EventKind
	Pos   Position
	Value string
	Style ScalarStyle
	// Empty marks an implicit null ("key:" with nothing after it); such a
	// scalar has no text in the source.
	Empty bool
	// Flow marks a MappingStart or SequenceStart written in flow style.
	Flow bool
}

// Stream yields the events of a parsed document in document order. It is
// not restartable.
type Stream struct {
	docs  []*yaml.Node
	stack []frame
	done  bool
}

type frame struct {
	node *yaml.Node
	next int  // next child to visit
	open bool // start event already emitted
}

// Read parses src and returns a stream over its events. Parse failures are
// reported here, before any event is produced.
func Read(src []byte) (*Stream, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	var docs []*yaml.Node
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		docs = append(docs, &n)
	}
	return &Stream{docs: docs}, nil
}

// Next returns the next event. The final event is StreamEnd; after it Next
// reports false.
func (s *Stream) Next() (Event, bool) {
	if s.done {
		return Event{}, false
	}
	for {
		if len(s.stack) == 0 {
			if len(s.docs) == 0 {
				s.done = true
				return Event{Kind: StreamEnd}, true
			}
			s.stack = append(s.stack, frame{node: s.docs[0]})
			s.docs = s.docs[1:]
		}

		top := &s.stack[len(s.stack)-1]
		n := top.node
		switch n.Kind {
		case yaml.ScalarNode:
			s.stack = s.stack[:len(s.stack)-1]
			return scalarEvent(n), true
		case yaml.AliasNode:
			s.stack = s.stack[:len(s.stack)-1]
			return Event{Kind: Alias, Pos: nodePos(n), Value: n.Value}, true
		}

		if !top.open {
			top.open = true
			if ev, ok := startEvent(n); ok {
				return ev, true
			}
			continue
		}
		if top.next < len(n.Content) {
			child := n.Content[top.next]
			top.next++
			s.stack = append(s.stack, frame{node: child})
			continue
		}
		s.stack = s.stack[:len(s.stack)-1]
		if ev, ok := endEvent(n); ok {
			return ev, true
		}
	}
}

func startEvent(n *yaml.Node) (Event, bool) {
	switch n.Kind {
	case yaml.DocumentNode:
		return Event{Kind: DocumentStart, Pos: nodePos(n)}, true
	case yaml.MappingNode:
		return Event{Kind: MappingStart, Pos: nodePos(n), Flow: n.Style&yaml.FlowStyle != 0}, true
	case yaml.SequenceNode:
		return Event{Kind: SequenceStart, Pos: nodePos(n), Flow: n.Style&yaml.FlowStyle != 0}, true
	}
	return Event{}, false
}

// End events have no source position of their own in the node API; they
// carry the position of the collection they close.
func endEvent(n *yaml.Node) (Event, bool) {
	switch n.Kind {
	case yaml.DocumentNode:
		return Event{Kind: DocumentEnd, Pos: nodePos(n)}, true
	case yaml.MappingNode:
		return Event{Kind: MappingEnd, Pos: nodePos(n)}, true
	case yaml.SequenceNode:
		return Event{Kind: SequenceEnd, Pos: nodePos(n)}, true
	}
	return Event{}, false
}

func scalarEvent(n *yaml.Node) Event {
	ev := Event{Kind: Scalar, Pos: nodePos(n), Value: n.Value}
	switch {
	case n.Style&yaml.SingleQuotedStyle != 0:
		ev.Style = SingleQuoted
	case n.Style&yaml.DoubleQuotedStyle != 0:
		ev.Style = DoubleQuoted
	case n.Style&yaml.LiteralStyle != 0:
		ev.Style = Literal
	case n.Style&yaml.FoldedStyle != 0:
		ev.Style = Folded
	}
	ev.Empty = ev.Style == Plain && n.Value == "" && n.Tag == "!!null"
	return ev
}

func nodePos(n *yaml.Node) Position {
	p := Position{Line: n.Line - 1, Column: n.Column - 1}
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Column < 0 {
		p.Column = 0
	}
	return p
}
