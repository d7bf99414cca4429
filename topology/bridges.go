// SPDX-License-Identifier: MIT

package topology

import (
	"context"
	"sort"
)

// Bridges returns the branches whose removal splits their island, as
// ascending (from, to) pairs sorted lexicographically. A pair joined by
// parallel branches is never a bridge.
func Bridges(ctx context.Context, g *Graph) ([][2]int, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	w := &bridgeWalker{
		g:    g,
		ctx:  ctx,
		disc: make(map[int]int),
		low:  make(map[int]int),
	}
	for _, id := range g.Buses() {
		if _, seen := w.disc[id]; seen {
			continue
		}
		if err := w.traverse(id, id); err != nil {
			return nil, err
		}
	}

	sort.Slice(w.out, func(i, j int) bool {
		if w.out[i][0] != w.out[j][0] {
			return w.out[i][0] < w.out[j][0]
		}
		return w.out[i][1] < w.out[j][1]
	})

	return w.out, nil
}

// bridgeWalker holds the discovery times and low-links of one DFS forest.
type bridgeWalker struct {
	g     *Graph
	ctx   context.Context
	disc  map[int]int
	low   map[int]int
	clock int
	out   [][2]int
}

func (w *bridgeWalker) traverse(u, parent int) error {
	select {
	case <-w.ctx.Done():
		return w.ctx.Err()
	default:
	}

	w.clock++
	w.disc[u] = w.clock
	w.low[u] = w.clock

	nbs, err := w.g.Neighbors(u)
	if err != nil {
		return err
	}
	for _, v := range nbs {
		if _, seen := w.disc[v]; !seen {
			if err := w.traverse(v, u); err != nil {
				return err
			}
			w.low[u] = min(w.low[u], w.low[v])
			if w.low[v] > w.disc[u] && w.g.multiplicity(u, v) == 1 {
				w.out = append(w.out, [2]int{min(u, v), max(u, v)})
			}
			continue
		}
		if v != parent {
			w.low[u] = min(w.low[u], w.disc[v])
		}
	}

	return nil
}
