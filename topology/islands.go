// SPDX-License-Identifier: MIT

package topology

import (
	"context"
	"sort"
)

// Islands returns the connected components of g. Each component is sorted by
// bus id and components are ordered by their smallest id.
func Islands(ctx context.Context, g *Graph) ([][]int, error) {
	if g == nil {
		return nil, ErrGraphNil
	}

	seen := make(map[int]bool)
	var out [][]int
	for _, id := range g.Buses() {
		if seen[id] {
			continue
		}
		res, err := Walk(g, id, WithContext(ctx))
		if err != nil {
			return nil, err
		}
		comp := append([]int(nil), res.Order...)
		for _, b := range comp {
			seen[b] = true
		}
		sort.Ints(comp)
		out = append(out, comp)
	}

	return out, nil
}

// Unreachable returns, in ascending order, the buses with no path to root.
func Unreachable(ctx context.Context, g *Graph, root int) ([]int, error) {
	res, err := Walk(g, root, WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var out []int
	for _, id := range g.Buses() {
		if !res.Reached(id) {
			out = append(out, id)
		}
	}

	return out, nil
}
