// Package directive recognizes directive blocks within a line oriented text
// document:
//
// 	@@start::box
// 	[Hello] [World]
// 	@@end::box
//
// Lines outside of any directive are passed through untouched; lines inside
// one are buffered until its end marker, which names the block Kind.
package directive

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDirectiveEnd is wrapped by the error returned when an end marker
// line carries no kind separator.
var ErrMalformedDirectiveEnd = errors.New("malformed directive end")

// MalformedEndError locates a malformed directive end marker.
type MalformedEndError struct {
	Line int    // 1-based line number of the end marker
	Text string // end marker line, without its line terminator
}

func (me *MalformedEndError) Error() string {
	return fmt.Sprintf("line %v: %v %q: missing kind separator", me.Line, ErrMalformedDirectiveEnd, me.Text)
}

func (me *MalformedEndError) Unwrap() error { return ErrMalformedDirectiveEnd }

// Markers are the line prefixes that open and close a directive, and the
// separator between a marker and its kind token.
type Markers struct {
	Start string
	End   string
	Sep   string
}

// DefaultMarkers returns the standard "@@start::kind" / "@@end::kind" markers.
func DefaultMarkers() Markers {
	return Markers{Start: "@@start", End: "@@end", Sep: "::"}
}

// kind reads the kind token following the separator in an end marker line.
func (m Markers) kind(line string) (Kind, bool) {
	i := strings.Index(line, m.Sep)
	if i < 0 {
		return Unknown, false
	}
	tail := line[i+len(m.Sep):]
	if j := strings.Index(tail, m.Sep); j >= 0 {
		tail = tail[:j]
	}
	return ParseKind(tail), true
}

// EventType distinguishes the observable outcomes of a state transition.
type EventType int

const (
	// None means the line was consumed without producing output, e.g. a
	// start marker or a buffered body line.
	None EventType = iota

	// Text is a line outside of any directive, to be copied verbatim.
	Text

	// Closed is a complete directive, ready to be rendered.
	Closed

	// Dropped is directive content that will never be rendered: a partial
	// directive interrupted by another start marker, an end marker seen
	// outside any directive, or (at EOF) an unterminated directive.
	Dropped
)

// Directive is one closed (or dropped) directive block.
type Directive struct {
	Kind  Kind
	Line  int      // 1-based line number of the start marker (or stray end marker)
	Lines []string // body lines, with the end marker line last once closed

	endMarked bool
}

// Terminated reports whether the last of Lines is an end marker; only false
// for directives dropped at EOF or by a subsequent start marker.
func (d Directive) Terminated() bool { return d.endMarked }

// Body returns the directive content lines, excluding any end marker.
func (d Directive) Body() []string {
	if n := len(d.Lines); n > 0 && d.endMarked {
		return d.Lines[:n-1]
	}
	return d.Lines
}

// Event is the result of feeding one line through State.Next.
type Event struct {
	Type      EventType
	Text      string    // the line, for Text events
	Directive Directive // for Closed and Dropped events
}

// State tracks whether scanning is inside a directive.
// The zero value is outside any directive.
type State struct {
	Open   bool
	Line   int      // line number of the last line fed to Next
	Start  int      // line number of the open directive's start marker
	Buffer []string // lines of the open directive
}

// Next feeds a line through the receiver state, returning the successor state
// and the resulting event. The line should retain any terminator, so that
// Text events may be copied byte for byte.
//
// The only error is a *MalformedEndError; the returned state is then outside
// of any directive, and the partial directive is lost.
func (st State) Next(m Markers, line string) (State, Event, error) {
	st.Line++
	switch {
	case strings.HasPrefix(line, m.Start):
		var ev Event
		if st.Open {
			ev = st.dropped(st.Start)
		}
		st.Open = true
		st.Start = st.Line
		st.Buffer = nil
		return st, ev, nil

	case strings.HasPrefix(line, m.End):
		if !st.Open {
			return st, Event{Type: Dropped, Directive: Directive{
				Line:      st.Line,
				Lines:     []string{line},
				endMarked: true,
			}}, nil
		}
		lines := append(st.Buffer[:len(st.Buffer):len(st.Buffer)], line)
		start := st.Start
		st.Open = false
		st.Start = 0
		st.Buffer = nil
		kind, ok := m.kind(line)
		if !ok {
			return st, Event{}, &MalformedEndError{
				Line: st.Line,
				Text: strings.TrimRight(line, "\r\n"),
			}
		}
		return st, Event{Type: Closed, Directive: Directive{
			Kind:      kind,
			Line:      start,
			Lines:     lines,
			endMarked: true,
		}}, nil

	case st.Open:
		if strings.TrimSpace(line) != "" {
			st.Buffer = append(st.Buffer, line)
		}
		return st, Event{}, nil

	default:
		return st, Event{Type: Text, Text: line}, nil
	}
}

// Close finishes scanning at end of input. If a directive is still open, its
// buffered content is returned in a Dropped event.
func (st State) Close() (State, Event) {
	var ev Event
	if st.Open {
		ev = st.dropped(st.Start)
	}
	st.Open = false
	st.Start = 0
	st.Buffer = nil
	return st, ev
}

func (st State) dropped(line int) Event {
	return Event{Type: Dropped, Directive: Directive{
		Line:  line,
		Lines: st.Buffer,
	}}
}
