// SPDX-License-Identifier: MIT

package topology

import (
	"context"
	"fmt"
)

// Option configures Walk via functional arguments. An invalid Option is
// recorded and surfaced as ErrOptionViolation when Walk runs.
type Option func(*WalkOptions)

// WalkOptions holds the parameters of a breadth-first walk.
type WalkOptions struct {
	// Ctx allows cancellation.
	Ctx context.Context

	// OnVisit runs for each bus in visit order; an error aborts the walk.
	OnVisit func(bus, depth int) error

	// MaxDepth, if > 0, stops exploring beyond this hop count.
	MaxDepth int

	// FilterNeighbor can skip an edge by returning false.
	FilterNeighbor func(curr, next int) bool

	err error
}

// DefaultOptions returns a background context, no depth limit and no-op hooks.
func DefaultOptions() WalkOptions {
	return WalkOptions{
		Ctx:            context.Background(),
		OnVisit:        func(int, int) error { return nil },
		FilterNeighbor: func(int, int) bool { return true },
	}
}

// WithContext sets a context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *WalkOptions) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithOnVisit registers a visit callback.
func WithOnVisit(fn func(bus, depth int) error) Option {
	return func(o *WalkOptions) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}

// WithMaxDepth limits the walk to d hops. d == 0 removes the limit and
// d < 0 is rejected.
func WithMaxDepth(d int) Option {
	return func(o *WalkOptions) {
		if d < 0 {
			o.err = fmt.Errorf("%w: MaxDepth cannot be negative (%d)", ErrOptionViolation, d)
			return
		}
		o.MaxDepth = d
	}
}

// WithFilterNeighbor skips edges for which fn returns false, e.g. to test
// connectivity with a branch taken out.
func WithFilterNeighbor(fn func(curr, next int) bool) Option {
	return func(o *WalkOptions) {
		if fn != nil {
			o.FilterNeighbor = fn
		}
	}
}

// WalkResult holds the visit order and hop distance of every reached bus.
type WalkResult struct {
	Order  []int
	Depth  map[int]int
	Parent map[int]int
}

// Reached reports whether bus was visited.
func (r *WalkResult) Reached(bus int) bool {
	_, ok := r.Depth[bus]

	return ok
}

type walker struct {
	g       *Graph
	opts    WalkOptions
	queue   [][2]int // {bus, depth}
	visited map[int]bool
	res     *WalkResult
}

// Walk runs a breadth-first search from start.
// Returns ErrGraphNil, ErrBusNotFound, ErrOptionViolation, the context
// error on cancellation, or the OnVisit error wrapped with the bus id.
func Walk(g *Graph, start int, opts ...Option) (*WalkResult, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if !g.HasBus(start) {
		return nil, fmt.Errorf("%w: %d", ErrBusNotFound, start)
	}

	w := &walker{
		g:       g,
		opts:    o,
		visited: make(map[int]bool),
		res: &WalkResult{
			Depth:  make(map[int]int),
			Parent: make(map[int]int),
		},
	}
	w.enqueue(start, 0, start)

	return w.res, w.loop()
}

func (w *walker) enqueue(bus, depth, parent int) {
	w.visited[bus] = true
	w.res.Depth[bus] = depth
	if parent != bus {
		w.res.Parent[bus] = parent
	}
	w.queue = append(w.queue, [2]int{bus, depth})
}

func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.opts.Ctx.Done():
			return w.opts.Ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]
		bus, depth := item[0], item[1]

		w.res.Order = append(w.res.Order, bus)
		if err := w.opts.OnVisit(bus, depth); err != nil {
			return fmt.Errorf("topology: OnVisit error at bus %d: %w", bus, err)
		}

		next := depth + 1
		if w.opts.MaxDepth > 0 && next > w.opts.MaxDepth {
			continue
		}
		nbrs, err := w.g.Neighbors(bus)
		if err != nil {
			return err
		}
		for _, v := range nbrs {
			if w.visited[v] || !w.opts.FilterNeighbor(bus, v) {
				continue
			}
			w.enqueue(v, next, bus)
		}
	}

	return nil
}
