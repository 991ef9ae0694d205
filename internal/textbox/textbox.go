// Package textbox renders bracketed text segments as bordered ASCII boxes.
//
// Each "[...]" segment on a line becomes one box, its words wrapped a fixed
// number per row; boxes from the same line are laid out side by side:
//
// 	[Hello] [World]
//
// renders as
//
// 	+-------+ +-------+
// 	| Hello | | World |
// 	+-------+ +-------+
//
// Any text outside of brackets is ignored.
package textbox

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultWords is the number of words wrapped onto each box row.
const DefaultWords = 3

var segmentPattern = regexp.MustCompile(`\[([^\]]*)\]`)

// Segments returns the content of every bracket-delimited segment in line, in
// order of appearance.
func Segments(line string) []string {
	var segs []string
	for _, m := range segmentPattern.FindAllStringSubmatch(line, -1) {
		segs = append(segs, m[1])
	}
	return segs
}

// Wrap splits text into whitespace separated words, and groups them into rows
// of at most n words joined by a single space. Text without any words yields a
// single empty row.
func Wrap(text string, n int) []string {
	if n <= 0 {
		n = DefaultWords
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	rows := make([]string, 0, (len(words)+n-1)/n)
	for len(words) > 0 {
		m := n
		if m > len(words) {
			m = len(words)
		}
		rows = append(rows, strings.Join(words[:m], " "))
		words = words[m:]
	}
	return rows
}

// Box is a rendered text box: a top border, one row per content line, and a
// bottom border, all of the same character width.
type Box struct {
	Width int      // content width, excluding margins and borders
	Rows  []string // all box lines, borders included
}

// New renders a box around the given content lines. Width is measured in
// characters (runes).
func New(lines []string) Box {
	width := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > width {
			width = n
		}
	}

	border := "+" + strings.Repeat("-", width+2) + "+"
	rows := make([]string, 0, len(lines)+2)
	rows = append(rows, border)
	for _, line := range lines {
		pad := width - utf8.RuneCountInString(line)
		rows = append(rows, "| "+line+strings.Repeat(" ", pad)+" |")
	}
	rows = append(rows, border)
	return Box{Width: width, Rows: rows}
}

// OuterWidth returns the character width of every row in the box.
func (b Box) OuterWidth() int { return b.Width + 4 }

// String returns the box rows joined by newlines, without a final newline.
func (b Box) String() string { return strings.Join(b.Rows, "\n") }

// Join lays boxes out side by side, returning one line per row index of the
// tallest box. Rows are separated by sep; a box with fewer rows is padded with
// blanks as wide as its own rows.
func Join(boxes []Box, sep string) []string {
	height := 0
	for _, b := range boxes {
		if len(b.Rows) > height {
			height = len(b.Rows)
		}
	}

	lines := make([]string, 0, height)
	var sb strings.Builder
	for i := 0; i < height; i++ {
		sb.Reset()
		for j, b := range boxes {
			if j > 0 {
				sb.WriteString(sep)
			}
			if i < len(b.Rows) {
				sb.WriteString(b.Rows[i])
			} else {
				sb.WriteString(strings.Repeat(" ", b.OuterWidth()))
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// Renderer renders box directive bodies.
type Renderer struct {
	// Words per box row; zero means DefaultWords.
	Words int
}

// Line renders all segments found in a single directive line, returning the
// joined box rows; a line without segments renders nothing.
func (r Renderer) Line(line string) []string {
	segs := Segments(line)
	if len(segs) == 0 {
		return nil
	}
	boxes := make([]Box, len(segs))
	for i, seg := range segs {
		boxes[i] = New(Wrap(seg, r.Words))
	}
	return Join(boxes, " ")
}

// Render writes the boxes for every body line into w, one newline terminated
// output line per box row, in body line order.
func (r Renderer) Render(w io.Writer, body []string) error {
	for _, line := range body {
		for _, row := range r.Line(line) {
			if _, err := io.WriteString(w, row+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
