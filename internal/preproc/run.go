package preproc

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jcorbin/txtplus/internal/config"
	"github.com/jcorbin/txtplus/internal/export"
	"github.com/jcorbin/txtplus/internal/plusutil"
	"github.com/jcorbin/txtplus/internal/sink"
)

// Result describes a completed Run.
type Result struct {
	Input   string // resolved input path
	Output  string // output document path, empty when rendered to memory
	Content string // rendered document, when rendered to memory
	HTML    string // HTML export path, if any
	Stats
}

// Run processes the named input file into its derived output file (see
// plusutil.OutputPath), which is replaced if it already exists. With
// cfg.Stdout, the document is rendered into Result.Content instead, and no
// file is written.
//
// Path resolution errors are returned before any output is touched. In the
// default append mode, output produced before a processing error remains in
// the output file; in atomic mode, a failed run leaves any prior output file
// untouched.
func Run(cfg config.Config, input string, log *slog.Logger) (res Result, rerr error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	in, err := plusutil.ResolvePath(input)
	if err != nil {
		return res, err
	}
	res.Input = in
	log = log.With("input", res.Input)

	f, err := os.Open(res.Input)
	if err != nil {
		return res, err
	}
	defer f.Close()

	var out sink.Sink
	var mem *sink.Memory
	if cfg.Stdout {
		mem = &sink.Memory{}
		out = mem
	} else {
		res.Output = plusutil.OutputPath(in)
		out, err = sink.Open(res.Output, cfg.Atomic)
		if err != nil {
			return res, fmt.Errorf("opening output: %w", err)
		}
	}
	defer func() {
		if cerr := out.Cleanup(); rerr == nil {
			rerr = cerr
		}
	}()

	log.Debug("processing", "output", res.Output, "atomic", cfg.Atomic)
	res.Stats, err = New(cfg, log).Process(f, out)
	if err != nil {
		return res, err
	}
	if err := out.Close(); err != nil {
		return res, fmt.Errorf("closing output: %w", err)
	}
	if mem != nil {
		res.Content, _ = mem.Content()
		return res, nil
	}

	if cfg.HTML {
		res.HTML, err = export.HTMLFile(res.Output)
		if err != nil {
			return res, err
		}
		log.Debug("exported html", "path", res.HTML)
	}

	return res, nil
}
