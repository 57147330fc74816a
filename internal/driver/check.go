package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"mirck/internal/borrowck"
	"mirck/internal/diag"
	"mirck/internal/diagfmt"
	"mirck/internal/mir"
	"mirck/internal/observ"
	"mirck/internal/pipeline"
	"mirck/internal/trace"
)

// Options controls CheckFiles.
type Options struct {
	Checker  borrowck.Config
	Simplify bool
	// Cache, when set, answers bodies checked before with the same config.
	Cache    *Cache
	Progress pipeline.ProgressSink
	Timer    *observ.Timer
	// MaxDiagnostics bounds the result bag; 0 means unlimited.
	MaxDiagnostics int
	// BaseDir shortens file names in diagnostics and progress events.
	BaseDir string
	// Jobs bounds files processed at once; 0 means GOMAXPROCS.
	Jobs int
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path   string
	Name   string
	Module *mir.Module
	Errors []borrowck.BorrowError
	// Cached counts bodies answered from the cache.
	Cached int
	// Failed is set when the file could not be loaded or validated.
	Failed bool

	diags   []diag.Diagnostic
	elapsed time.Duration
}

// Result is the outcome of CheckFiles, in input order.
type Result struct {
	Files []FileResult
	Bag   *diag.Bag
}

// Modules indexes the loaded modules by display name for rendering.
func (r *Result) Modules() diagfmt.Modules {
	out := make(diagfmt.Modules, len(r.Files))
	for i := range r.Files {
		if r.Files[i].Module != nil {
			out[r.Files[i].Name] = r.Files[i].Module
		}
	}
	return out
}

// ErrorCount counts violations and load failures over every file.
func (r *Result) ErrorCount() int {
	n := 0
	for i := range r.Files {
		n += len(r.Files[i].Errors)
		if r.Files[i].Failed {
			n++
		}
	}
	return n
}

// CheckFiles loads every path, checks the modules and collects the
// diagnostics. Files are handled concurrently but the result does not
// depend on scheduling. The only error returned is the context's.
func CheckFiles(ctx context.Context, paths []string, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	pass := trace.Begin(tracer, trace.ScopePass, "check-files", trace.ParentSpan(ctx))
	ctx = trace.WithSpan(ctx, pass)

	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}

	files := make([]FileResult, len(paths))
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = pipeline.DisplayName(p, opts.BaseDir)
		files[i] = FileResult{Path: p, Name: names[i]}
	}
	pipeline.EmitQueued(opts.Progress, names)

	idx := timer.Begin("load")
	if err := forEachFile(ctx, files, opts.Jobs, func(ctx context.Context, f *FileResult) error {
		loadFile(ctx, f, opts)
		return nil
	}); err != nil {
		pass.End("canceled")
		return nil, err
	}
	timer.End(idx, fmt.Sprintf("%d files", len(files)))

	idx = timer.Begin("check")
	checker := borrowck.New(opts.Checker)
	if err := forEachFile(ctx, files, opts.Jobs, func(ctx context.Context, f *FileResult) error {
		return checkFile(ctx, checker, f, opts)
	}); err != nil {
		pass.End("canceled")
		return nil, err
	}
	bodies, cached := 0, 0
	for i := range files {
		if files[i].Module != nil && !files[i].Failed {
			bodies += len(files[i].Module.Bodies)
		}
		cached += files[i].Cached
	}
	timer.End(idx, fmt.Sprintf("%d bodies, %d cached", bodies, cached))

	res := &Result{Files: files, Bag: diag.NewBag(opts.MaxDiagnostics)}
	reporter := &diag.BagReporter{Bag: res.Bag}
	for i := range files {
		for _, d := range files[i].diags {
			reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		}
		borrowck.Report(reporter, files[i].Name, files[i].Errors)
	}

	pass.WithExtra("files", strconv.Itoa(len(files))).
		WithExtra("bodies", strconv.Itoa(bodies)).
		End(fmt.Sprintf("%d errors", res.ErrorCount()))
	return res, nil
}

func forEachFile(ctx context.Context, files []FileResult, jobs int, fn func(context.Context, *FileResult) error) error {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, &files[i])
		})
	}
	return g.Wait()
}

func loadFile(ctx context.Context, f *FileResult, opts Options) {
	start := time.Now()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "load:"+f.Name, trace.ParentSpan(ctx))
	pipeline.Emit(opts.Progress, pipeline.Event{File: f.Name, Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})

	fail := func(code diag.Code, err error) {
		f.Failed = true
		f.diags = append(f.diags, diag.NewError(code, diag.FileSpan(f.Name), err.Error()))
		f.elapsed += time.Since(start)
		span.End("failed")
		pipeline.Emit(opts.Progress, pipeline.Event{File: f.Name, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: err, Elapsed: f.elapsed})
	}

	m, err := mir.ReadModuleFile(f.Path)
	if err != nil {
		fail(loadErrorCode(err), err)
		return
	}
	f.Module = m

	if len(m.Bodies) == 0 {
		f.diags = append(f.diags, diag.New(diag.SevWarning, diag.MirEmptyModule, diag.FileSpan(f.Name), "module "+m.Name+" has no bodies"))
	}
	seen := make(map[string]struct{}, len(m.Bodies))
	for _, b := range m.Bodies {
		if b == nil {
			continue
		}
		if _, dup := seen[b.Name]; dup {
			fail(diag.MirDuplicateBody, fmt.Errorf("function %s is defined more than once", b.Name))
			return
		}
		seen[b.Name] = struct{}{}
	}
	if err := mir.ValidateModule(m); err != nil {
		f.Failed = true
		for _, e := range splitJoined(err) {
			f.diags = append(f.diags, diag.NewError(diag.MirInvalidBody, diag.FileSpan(f.Name), e.Error()))
		}
		f.elapsed += time.Since(start)
		span.End("invalid")
		pipeline.Emit(opts.Progress, pipeline.Event{File: f.Name, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: err, Elapsed: f.elapsed})
		return
	}
	if opts.Simplify {
		for _, b := range m.Bodies {
			if b != nil {
				mir.SimplifyCFG(b)
			}
		}
	}
	f.elapsed += time.Since(start)
	span.WithExtra("bodies", strconv.Itoa(len(m.Bodies))).End("")
}

func loadErrorCode(err error) diag.Code {
	switch {
	case errors.Is(err, mir.ErrSchemaMismatch):
		return diag.IOSchemaMismatch
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return diag.IOLoadFileError
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return diag.IOLoadFileError
	}
	return diag.IODecodeError
}

// splitJoined undoes errors.Join so each invariant gets its own diagnostic.
func splitJoined(err error) []error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		return u.Unwrap()
	}
	return []error{err}
}

func checkFile(ctx context.Context, checker *borrowck.Checker, f *FileResult, opts Options) error {
	if f.Failed || f.Module == nil {
		return nil
	}
	start := time.Now()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "module:"+f.Name, trace.ParentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	pipeline.Emit(opts.Progress, pipeline.Event{File: f.Name, Stage: pipeline.StageCheck, Status: pipeline.StatusWorking})

	bodies := f.Module.Bodies
	perBody := make([][]borrowck.BorrowError, len(bodies))
	keys := make([]CacheKey, len(bodies))
	var pending []*mir.Body
	pendingIdx := make(map[string]int)

	for i, b := range bodies {
		if b == nil {
			continue
		}
		if opts.Cache != nil {
			if d, err := mir.BodyDigest(b); err == nil {
				keys[i] = NewCacheKey(d, checker.Config())
				if errs, ok, _ := opts.Cache.Get(keys[i]); ok {
					perBody[i] = errs
					f.Cached++
					continue
				}
			}
		}
		pending = append(pending, b)
		pendingIdx[b.Name] = i
	}

	errs, err := checker.CheckModule(ctx, pending)
	if err != nil {
		span.End("canceled")
		return err
	}
	for _, e := range errs {
		i := pendingIdx[e.Func]
		perBody[i] = append(perBody[i], e)
	}
	if opts.Cache != nil {
		for _, b := range pending {
			i := pendingIdx[b.Name]
			if keys[i] == (CacheKey{}) {
				continue
			}
			if err := opts.Cache.Put(keys[i], perBody[i]); err != nil {
				f.diags = append(f.diags, diag.New(diag.SevWarning, diag.IOWriteError, diag.FileSpan(f.Name), "cache: "+err.Error()))
			}
		}
	}
	for i := range perBody {
		f.Errors = append(f.Errors, perBody[i]...)
	}

	f.elapsed += time.Since(start)
	status := pipeline.StatusDone
	if len(f.Errors) > 0 {
		status = pipeline.StatusError
	}
	span.WithExtra("cached", strconv.Itoa(f.Cached)).End(fmt.Sprintf("%d errors", len(f.Errors)))
	pipeline.Emit(opts.Progress, pipeline.Event{
		File:    f.Name,
		Stage:   pipeline.StageCheck,
		Status:  status,
		Elapsed: f.elapsed,
		Errors:  len(f.Errors),
		Cached:  len(pending) == 0 && len(bodies) > 0,
	})
	return nil
}
