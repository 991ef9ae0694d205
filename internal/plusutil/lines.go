package plusutil

import (
	"bufio"
	"io"
)

// ReadLine reads the next line from r, retaining its line terminator so that
// copying lines yields the original bytes. Lines have no length limit.
// A final non-terminated line is returned with a nil error; io.EOF is only
// returned once no input remains.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return line, err
}
