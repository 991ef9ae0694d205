// Package preproc expands directive blocks within text documents into their
// rendered ASCII form, copying all other text through unchanged.
package preproc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jcorbin/txtplus/internal/config"
	"github.com/jcorbin/txtplus/internal/directive"
	"github.com/jcorbin/txtplus/internal/plusutil"
	"github.com/jcorbin/txtplus/internal/textbox"
	"github.com/jcorbin/txtplus/internal/tree"
)

var (
	// ErrUnterminatedDirective is returned in strict mode when input ends
	// inside a directive, or a directive is interrupted by another start
	// marker.
	ErrUnterminatedDirective = errors.New("unterminated directive")

	// ErrStrayDirectiveEnd is returned in strict mode for an end marker
	// outside of any directive.
	ErrStrayDirectiveEnd = errors.New("directive end without start")
)

const fence = "```\n"

// Processor expands directives from a source document into an output one.
type Processor struct {
	Markers     directive.Markers
	Box         textbox.Renderer
	Tree        tree.Renderer
	Placeholder string
	Fence       bool
	Strict      bool
	Log         *slog.Logger
}

// New creates a Processor from a validated configuration.
func New(cfg config.Config, log *slog.Logger) *Processor {
	return &Processor{
		Markers:     cfg.Markers(),
		Box:         textbox.Renderer{Words: cfg.BoxWords},
		Tree:        tree.Renderer{Indent: cfg.TreeIndent, Root: cfg.TreeRoot},
		Placeholder: cfg.Placeholder,
		Fence:       cfg.Fence,
		Strict:      cfg.Strict,
		Log:         log,
	}
}

// Stats counts what a Process call did.
type Stats struct {
	Lines       int // input lines read
	Passed      int // lines copied through
	Boxes       int // box directives rendered
	Trees       int // tree directives rendered
	Placeholder int // directives of unknown kind
	Dropped     int // unterminated or stray directive content
}

// Directives returns the total number of closed directives.
func (st Stats) Directives() int { return st.Boxes + st.Trees + st.Placeholder }

// Process scans r, writing passed through lines and rendered directives to w
// in document order. Output is flushed after every event, so that everything
// produced before any error has reached w.
func (p *Processor) Process(r io.Reader, w io.Writer) (stats Stats, rerr error) {
	log := p.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var sc directive.Scanner
	sc.Markers = p.Markers
	sc.Reset(r)
	defer func() {
		stats.Lines = sc.Line()
		if rerr == nil {
			rerr = sc.Err()
		}
	}()

	var err error
	werr := plusutil.WriteLines(w, func(w io.Writer) bool {
		if err != nil || !sc.Scan() {
			return false
		}
		ev := sc.Event()
		switch ev.Type {
		case directive.Text:
			stats.Passed++
			_, err = io.WriteString(w, ev.Text)

		case directive.Closed:
			err = p.render(w, ev.Directive, &stats, log)

		case directive.Dropped:
			stats.Dropped++
			err = p.dropped(ev.Directive, log)
		}
		return err == nil
	})
	if err != nil {
		return stats, err
	}
	return stats, werr
}

func (p *Processor) render(w io.Writer, d directive.Directive, stats *Stats, log *slog.Logger) error {
	log.Debug("rendering directive", "kind", d.Kind.String(), "line", d.Line, "lines", len(d.Body()))
	if p.Fence {
		if _, err := io.WriteString(w, fence); err != nil {
			return err
		}
	}
	var err error
	switch d.Kind {
	case directive.Box:
		stats.Boxes++
		err = p.Box.Render(w, d.Body())
	case directive.Tree:
		stats.Trees++
		err = p.Tree.Render(w, d.Body())
	case directive.Unknown:
		stats.Placeholder++
		log.Warn("unrecognized directive kind", "line", d.Line, "end", strings.TrimRight(d.Lines[len(d.Lines)-1], "\r\n"))
		_, err = io.WriteString(w, p.Placeholder+"\n")
	default:
		panic(fmt.Sprintf("unhandled directive kind %v", d.Kind))
	}
	if err != nil {
		return fmt.Errorf("rendering %v directive at line %v: %w", d.Kind, d.Line, err)
	}
	if p.Fence {
		_, err = io.WriteString(w, fence)
	}
	return err
}

func (p *Processor) dropped(d directive.Directive, log *slog.Logger) error {
	if d.Terminated() {
		if p.Strict {
			return fmt.Errorf("line %v: %w", d.Line, ErrStrayDirectiveEnd)
		}
		log.Warn("ignoring directive end without start", "line", d.Line)
		return nil
	}
	if p.Strict {
		return fmt.Errorf("line %v: %w", d.Line, ErrUnterminatedDirective)
	}
	log.Warn("dropping unterminated directive", "line", d.Line, "lines", len(d.Lines))
	return nil
}
