package embed

import (
	"context"

	"github.com/san-kum/takens/internal/continuity"
	"github.com/san-kum/takens/internal/series"
	"github.com/san-kum/takens/internal/uzal"
)

// Reconstruct runs the embedding search with the default collaborators:
// the binomial continuity engine, the Uzal trajectory cost and the
// improvement break criterion.
func Reconstruct(ctx context.Context, s series.Set, opts Options) (*Result, error) {
	engine := &continuity.Engine{
		Theiler:      opts.TheilerWindow,
		MaxNeighbors: opts.MaxNeighbors,
		Alpha:        opts.SignificanceAlpha,
		P:            opts.BinomialP,
		SampleFrac:   opts.SampleFraction,
		Norm:         opts.Norm,
	}
	cost := &uzal.Cost{
		K:          opts.CostNeighbors,
		Theiler:    opts.TheilerWindow,
		Horizon:    opts.HorizonFactor * opts.TheilerWindow,
		SampleFrac: opts.SampleFraction,
		Norm:       opts.Norm,
	}
	o, err := New(engine, cost, BreakCriterion{}, opts)
	if err != nil {
		return nil, err
	}
	return o.Run(ctx, s)
}
