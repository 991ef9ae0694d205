package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jcorbin/txtplus/internal/directive"
	"github.com/jcorbin/txtplus/internal/plusutil"
	"github.com/jcorbin/txtplus/internal/textbox"
	"github.com/jcorbin/txtplus/internal/tree"
)

// FileName is the project local config file, searched for from the working
// directory upward.
const FileName = ".txtplus.toml"

// EnvPrefix prefixes environment variable overrides, e.g. TXTPLUS_FENCE=1.
const EnvPrefix = "TXTPLUS"

// ErrInvalid is wrapped by all Validate errors.
var ErrInvalid = errors.New("invalid configuration")

// Config key names.
const (
	KeyStartMarker = "start_marker"
	KeySeparator   = "separator"
	KeyEndMarker   = "end_marker"
	KeyPlaceholder = "placeholder"
	KeyBoxWords    = "box.words"
	KeyTreeIndent  = "tree.indent"
	KeyTreeRoot    = "tree.root"
	KeyFence       = "fence"
	KeyStrict      = "strict"
	KeyAtomic      = "atomic"
	KeyHTML        = "html"
	KeyStdout      = "stdout"
	KeyVerbose     = "verbose"
)

// Config holds all settings for a run, see Load and Validate.
type Config struct {
	// Directive syntax
	StartMarker string
	EndMarker   string
	Separator   string

	// Placeholder replaces directives of unrecognized kind.
	Placeholder string

	// Rendering
	BoxWords   int
	TreeIndent int
	TreeRoot   string

	// Fence wraps rendered blocks in markdown code fences.
	Fence bool

	// Strict fails on dropped directive content instead of warning.
	Strict bool

	// Atomic writes output into a temporary file, replacing the output file
	// only after success.
	Atomic bool

	// HTML additionally exports the output document as HTML.
	HTML bool

	// Stdout renders into memory for printing, instead of an output file.
	Stdout bool

	Verbose bool
}

// Default returns the standard configuration.
func Default() Config {
	m := directive.DefaultMarkers()
	return Config{
		StartMarker: m.Start,
		EndMarker:   m.End,
		Separator:   m.Sep,
		Placeholder: "not implemented",
		BoxWords:    textbox.DefaultWords,
		TreeIndent:  tree.DefaultIndent,
		TreeRoot:    tree.DefaultRoot,
	}
}

// SetDefaults registers Default values with v.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault(KeyStartMarker, def.StartMarker)
	v.SetDefault(KeyEndMarker, def.EndMarker)
	v.SetDefault(KeySeparator, def.Separator)
	v.SetDefault(KeyPlaceholder, def.Placeholder)
	v.SetDefault(KeyBoxWords, def.BoxWords)
	v.SetDefault(KeyTreeIndent, def.TreeIndent)
	v.SetDefault(KeyTreeRoot, def.TreeRoot)
	v.SetDefault(KeyFence, def.Fence)
	v.SetDefault(KeyStrict, def.Strict)
	v.SetDefault(KeyAtomic, def.Atomic)
	v.SetDefault(KeyHTML, def.HTML)
	v.SetDefault(KeyStdout, def.Stdout)
	v.SetDefault(KeyVerbose, def.Verbose)
}

// BindEnv makes every key overridable by a TXTPLUS_ prefixed environment
// variable, with "." replaced by "_", e.g. TXTPLUS_BOX_WORDS.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// ReadFile reads a TOML config file into v: the explicit file if given,
// else FileName found upward from the working directory, else
// ~/.config/txtplus/config.toml. Returns the file used, or "" if none was
// found; only an explicit file is required to exist.
func ReadFile(v *viper.Viper, explicit string) (string, error) {
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else if info, path, err := plusutil.FindWDFile(FileName); err != nil {
		return "", err
	} else if info != nil && !info.IsDir() {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", nil
		}
		v.AddConfigPath(filepath.Join(home, ".config", "txtplus"))
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load builds a Config from v, which should have SetDefaults applied, and
// validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		StartMarker: v.GetString(KeyStartMarker),
		EndMarker:   v.GetString(KeyEndMarker),
		Separator:   v.GetString(KeySeparator),
		Placeholder: v.GetString(KeyPlaceholder),
		BoxWords:    v.GetInt(KeyBoxWords),
		TreeIndent:  v.GetInt(KeyTreeIndent),
		TreeRoot:    v.GetString(KeyTreeRoot),
		Fence:       v.GetBool(KeyFence),
		Strict:      v.GetBool(KeyStrict),
		Atomic:      v.GetBool(KeyAtomic),
		HTML:        v.GetBool(KeyHTML),
		Stdout:      v.GetBool(KeyStdout),
		Verbose:     v.GetBool(KeyVerbose),
	}
	return cfg, cfg.Validate()
}

// Validate checks that c describes an unambiguous directive syntax and
// usable rendering parameters; all errors wrap ErrInvalid.
func (c Config) Validate() error {
	if c.StartMarker == "" {
		return fmt.Errorf("%w: %v must not be empty", ErrInvalid, KeyStartMarker)
	}
	if c.EndMarker == "" {
		return fmt.Errorf("%w: %v must not be empty", ErrInvalid, KeyEndMarker)
	}
	if c.Separator == "" {
		return fmt.Errorf("%w: %v must not be empty", ErrInvalid, KeySeparator)
	}
	if strings.HasPrefix(c.StartMarker, c.EndMarker) || strings.HasPrefix(c.EndMarker, c.StartMarker) {
		return fmt.Errorf("%w: %v %q and %v %q are ambiguous", ErrInvalid,
			KeyStartMarker, c.StartMarker, KeyEndMarker, c.EndMarker)
	}
	if c.BoxWords <= 0 {
		return fmt.Errorf("%w: %v must be positive, got %v", ErrInvalid, KeyBoxWords, c.BoxWords)
	}
	if c.TreeIndent <= 0 {
		return fmt.Errorf("%w: %v must be positive, got %v", ErrInvalid, KeyTreeIndent, c.TreeIndent)
	}
	if c.Stdout && c.HTML {
		return fmt.Errorf("%w: %v and %v are exclusive", ErrInvalid, KeyStdout, KeyHTML)
	}
	if strings.ContainsAny(c.Placeholder, "\r\n") {
		return fmt.Errorf("%w: %v must be a single line", ErrInvalid, KeyPlaceholder)
	}
	return nil
}

// Markers returns the configured directive markers.
func (c Config) Markers() directive.Markers {
	return directive.Markers{
		Start: c.StartMarker,
		End:   c.EndMarker,
		Sep:   c.Separator,
	}
}
