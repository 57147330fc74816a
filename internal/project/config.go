package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"mirck/internal/borrowck"
)

var (
	ErrUnknownKey    = errors.New("unknown configuration key")
	ErrInvalidFormat = errors.New("invalid output format")
	ErrInvalidColor  = errors.New("invalid color mode")
)

// CheckSection is the [check] table.
type CheckSection struct {
	Mode      string `toml:"mode"`
	Dataflow  string `toml:"dataflow"`
	Jobs      int    `toml:"jobs"`
	Lifetimes bool   `toml:"lifetimes"`
	Simplify  bool   `toml:"simplify"`
	DiskCache bool   `toml:"disk_cache"`
}

// OutputSection is the [output] table.
type OutputSection struct {
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	PathMode       string `toml:"path_mode"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

// InputsSection is the [inputs] table. Paths are relative to the file.
type InputsSection struct {
	Paths []string `toml:"paths"`
}

// Config is the parsed mirck.toml.
type Config struct {
	Check  CheckSection  `toml:"check"`
	Output OutputSection `toml:"output"`
	Inputs InputsSection `toml:"inputs"`

	// Path is the file the config came from; empty for defaults.
	Path string `toml:"-"`
}

// Default returns the configuration used when no mirck.toml exists.
func Default() Config {
	return Config{
		Check: CheckSection{
			Mode:      "collect",
			Dataflow:  "single",
			Lifetimes: true,
		},
		Output: OutputSection{
			Format:         "pretty",
			Color:          "auto",
			PathMode:       "auto",
			MaxDiagnostics: 100,
		},
	}
}

// Load parses path on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest mirck.toml above startDir, or Default when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks every enumerated value.
func (c *Config) Validate() error {
	var errs []error
	if _, err := borrowck.ParseMode(c.Check.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := borrowck.ParseDataflow(c.Check.Dataflow); err != nil {
		errs = append(errs, err)
	}
	if c.Check.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must be >= 0, got %d", c.Check.Jobs))
	}
	switch c.Output.Format {
	case "", "pretty", "json", "short":
	default:
		errs = append(errs, fmt.Errorf("%w: %q (expected: pretty|json|short)", ErrInvalidFormat, c.Output.Format))
	}
	switch c.Output.Color {
	case "", "auto", "on", "off":
	default:
		errs = append(errs, fmt.Errorf("%w: %q (expected: auto|on|off)", ErrInvalidColor, c.Output.Color))
	}
	if c.Output.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("max_diagnostics must be >= 0, got %d", c.Output.MaxDiagnostics))
	}
	return errors.Join(errs...)
}

// CheckerConfig converts the [check] table.
func (c *Config) CheckerConfig() (borrowck.Config, error) {
	mode, err := borrowck.ParseMode(c.Check.Mode)
	if err != nil {
		return borrowck.Config{}, err
	}
	dataflow, err := borrowck.ParseDataflow(c.Check.Dataflow)
	if err != nil {
		return borrowck.Config{}, err
	}
	return borrowck.Config{
		Mode:          mode,
		Dataflow:      dataflow,
		Jobs:          c.Check.Jobs,
		SkipLifetimes: !c.Check.Lifetimes,
	}, nil
}

// InputPaths returns [inputs].paths resolved against the config directory.
func (c *Config) InputPaths() []string {
	base := "."
	if c.Path != "" {
		base = filepath.Dir(c.Path)
	}
	out := make([]string, 0, len(c.Inputs.Paths))
	for _, p := range c.Inputs.Paths {
		if filepath.IsAbs(p) {
			out = append(out, p)
			continue
		}
		out = append(out, filepath.Join(base, filepath.FromSlash(p)))
	}
	return out
}
