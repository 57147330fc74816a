package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirck/internal/project"
)

// loadProjectConfig reads --config, or the nearest mirck.toml, and lays the
// flags the user set explicitly over it.
func loadProjectConfig(cmd *cobra.Command) (project.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg project.Config
	if path != "" {
		cfg, err = project.Load(path)
	} else {
		cfg, err = project.Discover(".")
	}
	if err != nil {
		return project.Config{}, err
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()
	overrides := []struct {
		name  string
		apply func() error
	}{
		{"mode", func() (err error) { cfg.Check.Mode, err = flags.GetString("mode"); return }},
		{"dataflow", func() (err error) { cfg.Check.Dataflow, err = flags.GetString("dataflow"); return }},
		{"jobs", func() (err error) { cfg.Check.Jobs, err = flags.GetInt("jobs"); return }},
		{"simplify", func() (err error) { cfg.Check.Simplify, err = flags.GetBool("simplify"); return }},
		{"disk-cache", func() (err error) { cfg.Check.DiskCache, err = flags.GetBool("disk-cache"); return }},
		{"no-lifetimes", func() error {
			skip, err := flags.GetBool("no-lifetimes")
			cfg.Check.Lifetimes = !skip
			return err
		}},
		{"format", func() (err error) { cfg.Output.Format, err = flags.GetString("format"); return }},
		{"path-mode", func() (err error) { cfg.Output.PathMode, err = flags.GetString("path-mode"); return }},
	}
	for _, o := range overrides {
		if flags.Lookup(o.name) == nil || !flags.Changed(o.name) {
			continue
		}
		if err := o.apply(); err != nil {
			return project.Config{}, fmt.Errorf("failed to get %s flag: %w", o.name, err)
		}
	}
	if root.Changed("color") {
		if cfg.Output.Color, err = root.GetString("color"); err != nil {
			return project.Config{}, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if root.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return project.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return project.Config{}, err
	}
	return cfg, nil
}
