package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// CompareGenerators runs req against every generator in the catalog and ranks
// the results: feasible before infeasible, then by total capacity, with
// catalog order breaking ties. req.GeneratorID is ignored.
func (e *Engine) CompareGenerators(ctx context.Context, req shield.Request) (*shield.CompareResponse, error) {
	gens := e.catalog.Generators()

	check := req.Clone()
	check.GeneratorID = gens[0].ID
	if err := check.Validate(); err != nil {
		return nil, err
	}

	results := make([]*shield.Result, len(gens))
	g, gctx := errgroup.WithContext(ctx)
	for i, gen := range gens {
		g.Go(func() error {
			r := req.Clone()
			r.GeneratorID = gen.ID
			res, err := e.optimize(gctx, r)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := results[order[a]], results[order[b]]
		if ra.Feasible != rb.Feasible {
			return ra.Feasible
		}
		return ra.TotalCapacity > rb.TotalCapacity
	})

	resp := &shield.CompareResponse{
		Request:     req.Clone(),
		Comparisons: make([]shield.GeneratorComparison, 0, len(results)),
	}
	resp.Request.GeneratorID = ""
	for rank, idx := range order {
		resp.Comparisons = append(resp.Comparisons, shield.GeneratorComparison{
			Rank:   rank + 1,
			Result: results[idx],
		})
	}

	e.logger.Debug("compared generators", "count", len(results))
	return resp, nil
}
