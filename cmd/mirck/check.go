package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mirck/internal/diag"
	"mirck/internal/diagfmt"
	"mirck/internal/driver"
	"mirck/internal/observ"
	"mirck/internal/project"
	"mirck/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [<file.mirpk|directory>...]",
	Short: "Check MIR modules for ownership and borrow violations",
	Long: `Check decodes every given module (directories are searched for *.mirpk),
validates it and runs the borrow and lifetime checks on each body. Without
arguments the [inputs] paths of mirck.toml are used. Exits 1 if any error
was found.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().String("mode", "collect", "report every violation or stop at the first (collect|failfast)")
	checkCmd.Flags().String("dataflow", "single", "loop handling (single|fixpoint)")
	checkCmd.Flags().Int("jobs", 0, "max bodies and files checked in parallel (0=auto)")
	checkCmd.Flags().Bool("simplify", false, "simplify the CFG before checking")
	checkCmd.Flags().Bool("disk-cache", false, "reuse results of unchanged bodies across runs")
	checkCmd.Flags().Bool("no-lifetimes", false, "skip the lifetime pass")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().String("path-mode", "auto", "file paths in output (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("with-notes", true, "include notes in output")
	checkCmd.Flags().Bool("context", true, "show the offending MIR statement (pretty only)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	checkerCfg, err := cfg.CheckerConfig()
	if err != nil {
		return err
	}
	pathMode, err := diagfmt.ParsePathMode(cfg.Output.PathMode)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	showContext, err := cmd.Flags().GetBool("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = cfg.InputPaths()
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%s: no inputs given and no [inputs] paths configured", diag.ProjNoInputs.ID())
	}
	paths, err := project.ExpandInputs(inputs)
	if err != nil {
		if errors.Is(err, project.ErrNoInputs) {
			return fmt.Errorf("%s: %w", diag.ProjNoInputs.ID(), err)
		}
		return err
	}

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)
	run := trace.Begin(tracer, trace.ScopeDriver, "mirck check", 0)
	ctx = trace.WithSpan(ctx, run)

	opts := driver.Options{
		Checker:        checkerCfg,
		Simplify:       cfg.Check.Simplify,
		Timer:          observ.NewTimer(),
		MaxDiagnostics: cfg.Output.MaxDiagnostics,
		BaseDir:        ".",
		Jobs:           cfg.Check.Jobs,
	}
	if cfg.Check.DiskCache {
		if opts.Cache, err = driver.OpenCache("mirck"); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}

	var res *driver.Result
	if !quiet && cfg.Output.Format == "pretty" && shouldUseTUI(mode, len(paths)) {
		res, err = runCheckWithUI(ctx, "checking", paths, opts)
	} else {
		res, err = driver.CheckFiles(ctx, paths, opts)
	}
	if err != nil {
		run.End("failed")
		return err
	}

	// json output carries the timings itself, so render ends before writing
	timingsInOutput := showTimings && cfg.Output.Format == "json"
	idx := opts.Timer.Begin("render")
	res.Bag.Sort()
	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case "json":
		if timingsInOutput {
			opts.Timer.End(idx, "")
			driver.AppendTimings(res.Bag, opts.Timer)
		}
		err = diagfmt.JSON(out, res.Bag, diagfmt.JSONOpts{PathMode: pathMode, BaseDir: ".", IncludeNotes: withNotes})
	case "short":
		err = diagfmt.Short(out, res.Bag, withNotes)
	default:
		diagfmt.Pretty(out, res.Bag, res.Modules(), diagfmt.PrettyOpts{
			Color:     colorEnabled(cfg.Output.Color),
			Context:   showContext,
			PathMode:  pathMode,
			BaseDir:   ".",
			ShowNotes: withNotes,
		})
		if !quiet {
			printSummary(out, res)
		}
	}
	if err != nil {
		run.End("failed")
		return fmt.Errorf("render diagnostics: %w", err)
	}
	if !timingsInOutput {
		opts.Timer.End(idx, "")
		if showTimings {
			fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
		}
	}

	errorCount := res.Bag.ErrorCount()
	run.End(fmt.Sprintf("%d errors", errorCount))
	if errorCount > 0 {
		return errViolations
	}
	return nil
}

func printSummary(w io.Writer, res *driver.Result) {
	if w == nil {
		w = os.Stdout
	}
	files := len(res.Files)
	bodies, cached := 0, 0
	for i := range res.Files {
		if m := res.Files[i].Module; m != nil {
			bodies += len(m.Bodies)
		}
		cached += res.Files[i].Cached
	}
	errs := res.Bag.ErrorCount()
	if res.Bag.Len() > 0 {
		fmt.Fprintln(w)
	}
	line := fmt.Sprintf("%d errors in %d files (%d bodies", errs, files, bodies)
	if cached > 0 {
		line += fmt.Sprintf(", %d cached", cached)
	}
	fmt.Fprintln(w, line+")")
}
