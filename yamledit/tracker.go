package yamledit

// Step is what a Tracker learned from one event.
type Step struct {
	// Value is set when the event is a scalar value of a mapping key.
	Value bool
	// Path is the key path of the value. It aliases tracker state and is
	// only valid until the next call to Track.
	Path []string
	// Key is where the owning key starts.
	Key Position
}

// Tracker turns a stream of positioned events into key paths.
type Tracker interface {
	Track(ev Event) Step
}

// NewTracker returns the tracker selected by opts.
func NewTracker(src []byte, opts ...Option) Tracker {
	o := buildOptions(opts)
	if !o.indentHeuristic {
		return &StructuralTracker{}
	}
	width := o.indentWidth
	if width <= 0 {
		width = detectIndent(src)
	}
	return NewIndentTracker(width)
}

// StructuralTracker derives paths from mapping and sequence boundaries:
// a frame is pushed on every collection start and popped on its end, and
// each mapping frame remembers the key whose value is being read. Scalars
// inside sequences or flow collections are never reported as values.
type StructuralTracker struct {
	frames []trackFrame
	path   []string
}

type trackFrame struct {
	seq     bool
	flow    bool
	asKey   bool // collection used as a complex mapping key
	key     string
	keyPos  Position
	haveKey bool
}

func (t *StructuralTracker) Track(ev Event) Step {
	switch ev.Kind {
	case MappingStart, SequenceStart:
		f := trackFrame{seq: ev.Kind == SequenceStart, flow: ev.Flow}
		if n := len(t.frames); n > 0 && !t.frames[n-1].seq && !t.frames[n-1].haveKey {
			f.asKey = true
		}
		t.frames = append(t.frames, f)
		return Step{}
	case MappingEnd, SequenceEnd:
		if len(t.frames) == 0 {
			return Step{}
		}
		closed := t.frames[len(t.frames)-1]
		t.frames = t.frames[:len(t.frames)-1]
		if n := len(t.frames); n > 0 && !t.frames[n-1].seq {
			parent := &t.frames[n-1]
			if closed.asKey {
				parent.key, parent.keyPos, parent.haveKey = "", ev.Pos, true
			} else {
				parent.haveKey = false
			}
		}
		return Step{}
	case Scalar, Alias:
	default:
		return Step{}
	}

	if len(t.frames) == 0 {
		return Step{}
	}
	top := &t.frames[len(t.frames)-1]
	if top.seq {
		return Step{}
	}
	if !top.haveKey {
		top.key, top.keyPos, top.haveKey = ev.Value, ev.Pos, true
		return Step{}
	}
	top.haveKey = false
	if ev.Kind != Scalar {
		return Step{}
	}

	t.path = t.path[:0]
	for _, f := range t.frames {
		if f.seq || f.flow {
			return Step{}
		}
		t.path = append(t.path, f.key)
	}
	return Step{Value: true, Path: t.path, Key: top.keyPos}
}

// IndentTracker reconstructs key paths from scalar positions alone,
// assuming every nesting level is indented by a fixed width. A scalar on a
// new line is a key; a scalar on the same line as the last key is its
// value. Input that breaks the indent assumption yields wrong paths
// rather than an error.
type IndentTracker struct {
	width    int
	path     []string
	lastLine int
	lastCol  int
}

func NewIndentTracker(width int) *IndentTracker {
	if width <= 0 {
		width = 2
	}
	return &IndentTracker{width: width, lastLine: -1}
}

func (t *IndentTracker) Track(ev Event) Step {
	if ev.Kind != Scalar || ev.Empty {
		return Step{}
	}
	line, col := ev.Pos.Line, ev.Pos.Column
	if line == t.lastLine {
		return Step{Value: true, Path: t.path, Key: Position{Line: t.lastLine, Column: t.lastCol}}
	}

	switch {
	case col == t.lastCol && len(t.path) > 0:
		t.path[len(t.path)-1] = ev.Value
	case col == t.lastCol:
		t.path = append(t.path, ev.Value)
	case col == t.lastCol+t.width:
		t.path = append(t.path, ev.Value)
	case col < t.lastCol:
		depth := col / t.width
		if depth < len(t.path) {
			t.path = t.path[:depth]
		}
		t.path = append(t.path, ev.Value)
	default:
		// deeper than one level at once: not produced by well-indented input
		return Step{}
	}
	t.lastLine, t.lastCol = line, col
	return Step{}
}
