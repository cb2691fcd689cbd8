package render

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Point is a sub-pixel image position.
type Point struct {
	X float64
	Y float64
}

// Centroid is the mean position of the pixels at offsets (y*width+x).
func Centroid(offsets []uint32, width int) (Point, bool) {
	if len(offsets) == 0 || width <= 0 {
		return Point{}, false
	}
	var sx, sy int64
	w := uint32(width)
	for _, off := range offsets {
		sx += int64(off % w)
		sy += int64(off / w)
	}
	n := float64(len(offsets))
	return Point{X: float64(sx) / n, Y: float64(sy) / n}, true
}

// Centroids computes the centroid of every footprint. Each state is
// independent, so up to workers states are processed at once; the map is
// only assembled after every worker is done.
func Centroids(ctx context.Context, footprints map[int][]uint32, width, workers int) (map[int]Point, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ids := make([]int, 0, len(footprints))
	for id := range footprints {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	type result struct {
		p  Point
		ok bool
	}
	results := make([]result, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, ok := Centroid(footprints[id], width)
			results[i] = result{p: p, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int]Point, len(ids))
	for i, id := range ids {
		if results[i].ok {
			out[id] = results[i].p
		}
	}
	return out, nil
}
