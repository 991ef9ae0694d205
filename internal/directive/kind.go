package directive

import (
	"fmt"
	"io"
	"strings"
)

// Kind identifies which renderer handles a directive block.
type Kind int

const (
	// Unknown is any kind token that no renderer is registered for.
	Unknown Kind = iota
	Box
	Tree
)

// ParseKind maps a kind token, as read from an end marker, to a Kind.
// Surrounding whitespace is ignored; matching is case sensitive.
func ParseKind(token string) Kind {
	switch strings.TrimSpace(token) {
	case "box":
		return Box
	case "tree":
		return Tree
	default:
		return Unknown
	}
}

// Format writes the kind token for known kinds.
func (k Kind) Format(f fmt.State, _ rune) {
	switch k {
	case Unknown:
		io.WriteString(f, "unknown")
	case Box:
		io.WriteString(f, "box")
	case Tree:
		io.WriteString(f, "tree")
	default:
		fmt.Fprintf(f, "InvalidKind%v", int(k))
	}
}

func (k Kind) String() string { return fmt.Sprint(k) }
