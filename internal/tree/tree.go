// Package tree renders indented bullet lists as ASCII tree diagrams.
//
// For example the bullet lines:
//
// 	- First
// 	    - Second
// 	    - Third
// 	- Fourth
//
// render as:
//
// 	.
// 	    ├── First
// 	    │   ├── Second
// 	    │   └── Third
// 	    └── Fourth
package tree

import (
	"io"
	"strings"
)

// Defaults for Renderer fields.
const (
	DefaultIndent = 4
	DefaultRoot   = "."
)

const (
	connector     = "├── "
	lastConnector = "└── "
	continuation  = "│   "
	blank         = "    "
)

// Node is one labeled tree node with ordered children.
type Node struct {
	Value    string
	Children []*Node
}

type entry struct {
	depth int
	value string
}

// parseEntry computes a bullet line's depth, from its count of leading spaces
// divided by indent, and its value with one leading "-" removed.
func parseEntry(line string, indent int) entry {
	spaces := len(line) - len(strings.TrimLeft(line, " "))
	value := strings.TrimLeft(line, " \t")
	value = strings.TrimPrefix(value, "-")
	return entry{
		depth: spaces / indent,
		value: strings.TrimSpace(value),
	}
}

// Parse builds a tree under a root node labeled root from indented bullet
// lines. Each line is a child of the nearest preceding line one level
// shallower; depth 0 lines are children of the root. A line indented more than
// one level below its predecessor has no parent, and is skipped along with
// anything nested under it.
func Parse(lines []string, indent int, root string) *Node {
	if indent <= 0 {
		indent = DefaultIndent
	}
	p := parser{entries: make([]entry, len(lines))}
	for i, line := range lines {
		p.entries[i] = parseEntry(line, indent)
	}
	node := &Node{Value: root}
	p.children(node, 0)
	return node
}

type parser struct {
	entries []entry
	i       int // cursor within entries
}

// children consumes entries at depth (or deeper) as descendants of parent,
// returning on the first shallower entry.
func (p *parser) children(parent *Node, depth int) {
	for p.i < len(p.entries) {
		e := p.entries[p.i]
		if e.depth < depth {
			return
		}
		p.i++
		if e.depth == depth {
			child := &Node{Value: e.value}
			parent.Children = append(parent.Children, child)
			p.children(child, depth+1)
		}
	}
}

// Render writes the tree, pre-order, one node per line. The receiver is
// rendered bare; every descendant line starts with a prefix of continuation
// bars and blanks, followed by a connector showing whether it is its parent's
// last child.
func (n *Node) Render(w io.Writer) error {
	_, err := io.WriteString(w, n.String())
	return err
}

func (n *Node) render(sb *strings.Builder, prefix string, isLast bool) {
	if prefix != "" {
		sb.WriteString(prefix)
		if isLast {
			sb.WriteString(lastConnector)
		} else {
			sb.WriteString(connector)
		}
	}
	sb.WriteString(strings.TrimSpace(n.Value))
	sb.WriteString("\n")

	childPrefix := prefix + continuation
	if isLast {
		childPrefix = prefix + blank
	}
	for i, child := range n.Children {
		child.render(sb, childPrefix, i == len(n.Children)-1)
	}
}

// String returns the rendered tree.
func (n *Node) String() string {
	var sb strings.Builder
	n.render(&sb, "", true)
	return sb.String()
}

// Renderer renders tree directive bodies.
type Renderer struct {
	// Indent is the number of spaces per depth level; zero means DefaultIndent.
	Indent int

	// Root labels the synthetic root node; empty means DefaultRoot.
	Root string
}

// Render parses body bullet lines into a tree and writes its rendering to w.
func (r Renderer) Render(w io.Writer, body []string) error {
	root := r.Root
	if root == "" {
		root = DefaultRoot
	}
	return Parse(body, r.Indent, root).Render(w)
}
