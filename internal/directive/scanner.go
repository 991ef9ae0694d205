package directive

import (
	"bufio"
	"io"

	"github.com/jcorbin/txtplus/internal/plusutil"
)

// Scanner runs a State over all lines read from a source stream, stopping
// after every line that produces an Event.
//
// Example:
//
// 	var sc directive.Scanner
// 	sc.Reset(src)
// 	for sc.Scan() {
// 		switch ev := sc.Event(); ev.Type {
// 		case directive.Text:
// 			io.WriteString(out, ev.Text)
// 		case directive.Closed:
// 			render(out, ev.Directive)
// 		}
// 	}
// 	if err := sc.Err(); err != nil {
// 		log.Fatalln(err)
// 	}
type Scanner struct {
	// Markers used to recognize directives; zero value means DefaultMarkers.
	Markers Markers

	lines *bufio.Reader
	state State
	event Event
	err   error
	done  bool
}

// Reset (re)initializes receiver state to scan a new document from src.
func (sc *Scanner) Reset(src io.Reader) {
	if sc.Markers == (Markers{}) {
		sc.Markers = DefaultMarkers()
	}
	if sc.lines == nil {
		sc.lines = bufio.NewReader(src)
	} else {
		sc.lines.Reset(src)
	}
	sc.state = State{}
	sc.event = Event{}
	sc.err = nil
	sc.done = false
}

// Scan advances to the next Event, returning false at end of input or after
// an error. Once input ends, any still open directive produces a final
// Dropped event before Scan returns false.
func (sc *Scanner) Scan() bool {
	sc.event = Event{}
	if sc.err != nil || sc.done || sc.lines == nil {
		return false
	}
	for {
		line, err := plusutil.ReadLine(sc.lines)
		if err == io.EOF {
			break
		} else if err != nil {
			sc.err = err
			return false
		}
		sc.state, sc.event, err = sc.state.Next(sc.Markers, line)
		if err != nil {
			sc.err = err
			sc.event = Event{}
			return false
		}
		if sc.event.Type != None {
			return true
		}
	}
	sc.done = true
	sc.state, sc.event = sc.state.Close()
	return sc.event.Type != None
}

// Event returns the event produced by the last successful Scan.
func (sc *Scanner) Event() Event { return sc.event }

// Line returns the number of lines read so far.
func (sc *Scanner) Line() int { return sc.state.Line }

// Err returns any read error or *MalformedEndError encountered.
func (sc *Scanner) Err() error { return sc.err }
