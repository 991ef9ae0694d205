// Package sink provides the destinations that processed documents are written
// into: files appended to as output is produced, files atomically replaced
// once output is complete, and memory.
package sink

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/google/renameio"
)

var errSinkClosed = errors.New("write to closed sink")

// Sink is an output document under construction.
//
// Close commits any written content; Cleanup abandons the sink after a
// failure, and is a no-op after a successful Close, so that it may always be
// deferred.
type Sink interface {
	io.Writer
	Close() error
	Cleanup() error
}

// Open opens a sink for the named file, atomic or not.
func Open(name string, atomic bool) (Sink, error) {
	if atomic {
		return OpenAtomic(name)
	}
	return OpenAppend(name)
}

// OpenAppend removes any existing file, and then opens a new one for
// appending. Content is visible as soon as it is written, and remains in
// place should processing fail later.
func OpenAppend(name string) (Sink, error) {
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	return &appendFile{File: f}, nil
}

type appendFile struct {
	*os.File
	closed bool
}

func (af *appendFile) Close() error {
	if af.closed {
		return nil
	}
	err := af.File.Close()
	af.closed = err == nil
	return err
}

// Cleanup closes the file, keeping anything already appended.
func (af *appendFile) Cleanup() error {
	if af.closed {
		return nil
	}
	af.closed = true
	return af.File.Close()
}

// OpenAtomic opens a pending temporary file, which replaces any named file
// only once closed; Cleanup leaves any prior file untouched.
func OpenAtomic(name string) (Sink, error) {
	pf, err := renameio.TempFile("", name)
	if err != nil {
		return nil, err
	}
	if err := pf.Chmod(0644); err != nil {
		pf.Cleanup()
		return nil, err
	}
	return &atomicFile{PendingFile: pf}, nil
}

type atomicFile struct {
	*renameio.PendingFile
	closed bool
}

func (af *atomicFile) Close() error {
	if af.closed {
		return nil
	}
	err := af.CloseAtomicallyReplace()
	af.closed = err == nil
	return err
}

func (af *atomicFile) Cleanup() error {
	if af.closed {
		return nil
	}
	af.closed = true
	return af.PendingFile.Cleanup()
}

// Memory is an in-memory Sink, whose content becomes available once closed.
type Memory struct {
	buf     bytes.Buffer
	content string
	defined bool
	closed  bool
}

// Write appends to the pending content.
func (ms *Memory) Write(p []byte) (int, error) {
	if ms.closed {
		return 0, errSinkClosed
	}
	return ms.buf.Write(p)
}

// WriteString appends to the pending content.
func (ms *Memory) WriteString(s string) (int, error) {
	if ms.closed {
		return 0, errSinkClosed
	}
	return ms.buf.WriteString(s)
}

// Close commits the pending content.
func (ms *Memory) Close() error {
	if !ms.closed {
		ms.closed = true
		ms.content = ms.buf.String()
		ms.defined = true
		ms.buf.Reset()
	}
	return nil
}

// Cleanup discards any pending content.
func (ms *Memory) Cleanup() error {
	if !ms.closed {
		ms.closed = true
		ms.buf.Reset()
	}
	return nil
}

// Content returns the committed content, and whether there is any.
func (ms *Memory) Content() (string, bool) { return ms.content, ms.defined }
