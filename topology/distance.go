// SPDX-License-Identifier: MIT

package topology

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/gridload/grid"
)

// ElectricalDistances returns, for every bus of net, the smallest total
// series reactance |X| (per unit) of a path from source over modeled
// branches. Parallel branches combine as parallel reactances. Unreachable
// buses map to +Inf.
func ElectricalDistances(ctx context.Context, net *grid.Network, source int) (map[int]float64, error) {
	if net == nil {
		return nil, ErrGraphNil
	}
	if _, ok := net.Index(source); !ok {
		return nil, fmt.Errorf("%w: %d", ErrBusNotFound, source)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// admittance sums per bus pair, inverted below
	adm := make(map[int]map[int]float64)
	link := func(u, v int, y float64) {
		row, ok := adm[u]
		if !ok {
			row = make(map[int]float64)
			adm[u] = row
		}
		row[v] += y
	}
	for _, br := range net.Branches() {
		if !br.Modeled() || br.From == br.To {
			continue
		}
		y := 1 / math.Abs(br.X)
		link(br.From, br.To, y)
		link(br.To, br.From, y)
	}

	dist := make(map[int]float64, net.NumBuses())
	for _, b := range net.Buses() {
		dist[b.ID] = math.Inf(1)
	}
	dist[source] = 0

	done := make(map[int]bool, len(dist))
	pq := distPQ{{bus: source}}
	for pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := heap.Pop(&pq).(distItem)
		u := item.bus
		if done[u] {
			continue
		}
		done[u] = true

		for v, y := range adm[u] {
			nd := dist[u] + 1/y
			if nd < dist[v] {
				dist[v] = nd
				heap.Push(&pq, distItem{bus: v, dist: nd})
			}
		}
	}

	return dist, nil
}

// distItem is a lazy-decrease-key heap entry; stale ones are skipped on pop.
type distItem struct {
	bus  int
	dist float64
}

type distPQ []distItem

func (pq distPQ) Len() int { return len(pq) }
func (pq distPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].bus < pq[j].bus
}
func (pq distPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *distPQ) Push(x any) { *pq = append(*pq, x.(distItem)) }
func (pq *distPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
