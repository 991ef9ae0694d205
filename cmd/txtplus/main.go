// Command txtplus expands box and tree directives in a text document,
// writing the result next to it as <name>.plus.txt.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jcorbin/txtplus/internal/config"
	"github.com/jcorbin/txtplus/internal/preproc"
)

// version is set via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "txtplus [flags] FILE",
		Short: "Render box and tree directives in a text document",
		Long: `txtplus copies FILE to FILE's stem plus ".plus.txt", replacing every
@@start::KIND ... @@end::KIND block with its rendered ASCII form.

Supported kinds are "box", which draws bordered boxes around [bracketed]
segments, and "tree", which draws an indented outline as a file tree.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+" or ~/.config/txtplus/config.toml)")
	flags.Bool("fence", false, "wrap rendered blocks in markdown code fences")
	flags.Bool("strict", false, "fail on unterminated or stray directives")
	flags.Bool("atomic", false, "only replace the output file after a successful run")
	flags.Bool("html", false, "also export the output as HTML")
	flags.Bool("stdout", false, "print the output instead of writing the output file")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.Int("words", 0, "words per box line")
	flags.Int("indent", 0, "spaces per tree level")
	flags.String("placeholder", "", "text emitted for unrecognized directive kinds")

	for key, name := range map[string]string{
		config.KeyFence:       "fence",
		config.KeyStrict:      "strict",
		config.KeyAtomic:      "atomic",
		config.KeyHTML:        "html",
		config.KeyStdout:      "stdout",
		config.KeyVerbose:     "verbose",
		config.KeyBoxWords:    "words",
		config.KeyTreeIndent:  "indent",
		config.KeyPlaceholder: "placeholder",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		stderr := cmd.ErrOrStderr()

		cfg, used, err := loadConfig(v, cfgFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return err
		}

		log := newLogger(stderr, cfg.Verbose)
		if used != "" {
			log.Debug("using config file", "path", used)
		}

		res, err := preproc.Run(cfg, args[0], log)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return err
		}
		if cfg.Stdout {
			if _, err := io.WriteString(cmd.OutOrStdout(), res.Content); err != nil {
				return err
			}
		}
		log.Info("processed",
			"output", res.Output,
			"lines", res.Lines,
			"directives", res.Directives(),
			"boxes", res.Boxes,
			"trees", res.Trees,
			"placeholders", res.Placeholder,
			"dropped", res.Dropped)
		if res.HTML != "" {
			log.Info("wrote html", "path", res.HTML)
		}
		return nil
	}

	return cmd
}

func loadConfig(v *viper.Viper, cfgFile string) (config.Config, string, error) {
	config.SetDefaults(v)
	config.BindEnv(v)
	used, err := config.ReadFile(v, cfgFile)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(v)
	return cfg, used, err
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
