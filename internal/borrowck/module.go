package borrowck

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"mirck/internal/mir"
	"mirck/internal/trace"
)

// CheckBody checks one body with the default configuration: every
// violation is collected and loops are visited once.
func CheckBody(body *mir.Body) []BorrowError {
	return New(Config{}).Check(body)
}

// CheckModule checks bodies independently and concatenates their errors in
// input order.
func CheckModule(bodies []*mir.Body) []BorrowError {
	var out []BorrowError
	for _, b := range bodies {
		out = append(out, CheckBody(b)...)
	}
	return out
}

// CheckModule checks bodies concurrently, at most Jobs at a time. The
// result is identical to checking them one by one in input order. The
// only error is the context's.
func (c *Checker) CheckModule(ctx context.Context, bodies []*mir.Body) ([]BorrowError, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.ParentSpan(ctx)

	results := make([][]BorrowError, len(bodies))
	g, gctx := errgroup.WithContext(ctx)
	jobs := c.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(jobs)

	for i, body := range bodies {
		if body == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeBody, "body:"+body.Name, parent)
			errs := c.Check(body)
			results[i] = errs
			span.WithExtra("blocks", strconv.Itoa(len(body.Blocks))).End(fmt.Sprintf("%d errors", len(errs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []BorrowError
	for _, errs := range results {
		out = append(out, errs...)
	}
	return out, nil
}
