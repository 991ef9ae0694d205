// Package export converts processed documents into other formats.
package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"github.com/russross/blackfriday"
)

// HTMLSuffix is the file extension of exported HTML documents.
const HTMLSuffix = ".html"

var extensions = blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs

// HTML renders markdown source as a standalone HTML document, titled title.
// Rendered directive blocks survive the conversion only when fenced (see the
// fence option); unfenced ASCII art is reflowed as paragraph text.
func HTML(w io.Writer, src []byte, title string) error {
	body := blackfriday.Run(src, blackfriday.WithExtensions(extensions))
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	_, err := buf.WriteTo(w)
	return err
}

// HTMLPath derives the HTML export path for an output document path,
// e.g. "notes.plus.txt" => "notes.plus.html".
func HTMLPath(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + HTMLSuffix
}

// HTMLFile reads the named document, and atomically writes its HTML export
// next to it, returning the path written.
func HTMLFile(name string) (string, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := HTML(&buf, src, filepath.Base(name)); err != nil {
		return "", err
	}
	dest := HTMLPath(name)
	if err := renameio.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing html export: %w", err)
	}
	return dest, nil
}
