package plusutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputSuffix replaces the input file extension to form the output file name.
const OutputSuffix = ".plus.txt"

// ErrPathResolution is wrapped by every error returned from ResolvePath.
var ErrPathResolution = errors.New("cannot resolve path")

// PathError records the path that failed to resolve and why.
type PathError struct {
	Path string
	Err  error
}

func (pe *PathError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrPathResolution, pe.Path, pe.Err)
}

// Unwrap supports errors.Is(err, ErrPathResolution) as well as matching the
// underlying cause, e.g. os.ErrNotExist.
func (pe *PathError) Unwrap() []error { return []error{ErrPathResolution, pe.Err} }

// ResolvePath expands a leading "~" and any $VAR or ${VAR} references within
// path, and then returns its absolute, symlink-free form.
// The path must exist.
func ResolvePath(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", &PathError{path, err}
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", &PathError{path, err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &PathError{path, err}
	}
	return resolved, nil
}

func expandPath(path string) (string, error) {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	if path == "" {
		return "", errors.New("empty path")
	}
	return path, nil
}

// OutputPath derives the output file path for an (absolute) input path: the
// same directory, with the input's final extension replaced by OutputSuffix.
func OutputPath(input string) string {
	dir, base := filepath.Split(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+OutputSuffix)
}

// FindWDFile attempts to find a named file relative to the current working
// directory, checking every parent directory until one is found.
// It returns stat info and an absolute path, or a nil info if none was found.
func FindWDFile(name string) (os.FileInfo, string, error) {
	info, err := os.Stat(name)
	if err == nil {
		path, err := filepath.Abs(name)
		return info, path, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	for {
		path := filepath.Join(wd, name)
		if info, err = os.Stat(path); err == nil {
			return info, path, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return nil, "", nil
		}
		wd = parent
	}
}
