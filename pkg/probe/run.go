package probe

import (
	"context"
	"runtime"

	"github.com/df07/go-raykernel/pkg/core"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// batchSize is how many rays one task handles
const batchSize = 64

// Result is the outcome of one probe ray
type Result struct {
	Index    int
	Hit      bool
	Occluded bool // IntersectP's answer, which must agree with Hit
	T        float64
	P        core.Point3
	N        core.Normal3
	UV       core.Point2
	Shape    int // probe file shape index, -1 on a miss
	Kind     string
}

// Summary counts results
type Summary struct {
	Rays         int
	Hits         int
	Disagreement int // rays where Intersect and IntersectP differ
	HitsByKind   map[string]int
}

// Run intersects every ray with the scene using up to workers goroutines,
// all sharing the same shapes. Results are ordered by ray index.
func Run(ctx context.Context, scene *Scene, rays []core.Ray, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(rays))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(rays); start += batchSize {
		end := min(start+batchSize, len(rays))
		g.Go(func() error {
			// Each batch writes a disjoint range of results
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = trace(scene, i, rays[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "probe rays")
	}
	return results, nil
}

func trace(scene *Scene, index int, ray core.Ray) Result {
	r := Result{Index: index, Shape: -1}
	r.Occluded = scene.Aggregate.IntersectP(ray, true)
	t, si, ok := scene.Aggregate.Intersect(ray, true)
	if !ok {
		return r
	}
	r.Hit = true
	r.T = t
	r.P = si.P
	r.N = si.N
	r.UV = si.UV
	r.Shape = scene.SpecIndex(si)
	if r.Shape >= 0 {
		r.Kind = scene.Kinds[r.Shape]
	}
	return r
}

// Summarize tallies hits per shape kind
func Summarize(results []Result) Summary {
	hits := lo.Filter(results, func(r Result, _ int) bool { return r.Hit })
	return Summary{
		Rays:         len(results),
		Hits:         len(hits),
		Disagreement: lo.CountBy(results, func(r Result) bool { return r.Hit != r.Occluded }),
		HitsByKind:   lo.CountValuesBy(hits, func(r Result) string { return r.Kind }),
	}
}
